package metrics

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Range string

const (
	RangeDay       Range = "day"
	RangeWeek      Range = "week"
	RangeMonth     Range = "month"
	RangeSixMonths Range = "6m"
)

const dateLayout = "2006-01-02"

func ParseRange(s string) (Range, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day", "d":
		return RangeDay, nil
	case "", "week", "w":
		return RangeWeek, nil
	case "month", "m":
		return RangeMonth, nil
	case "6m", "six-months", "6months":
		return RangeSixMonths, nil
	default:
		return "", fmt.Errorf("invalid range %q (use day, week, month, 6m)", s)
	}
}

type Bucket struct {
	Key      string    `json:"key"`
	Label    string    `json:"label"`
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`
	Value    int       `json:"value"`
	IsActive bool      `json:"is_active"`
}

// Buckets is a dense, ordered set of calendar slots for one range, anchored at now.
type Buckets struct {
	Range Range
	Items []Bucket

	loc   *time.Location
	index map[string]int
}

func NewBuckets(r Range, now time.Time) (*Buckets, error) {
	loc := now.Location()
	today := beginningOfDay(now)

	b := &Buckets{Range: r, loc: loc}
	switch r {
	case RangeDay:
		b.Items = make([]Bucket, 0, 24)
		for h := 0; h < 24; h++ {
			from := time.Date(today.Year(), today.Month(), today.Day(), h, 0, 0, 0, loc)
			b.Items = append(b.Items, Bucket{
				Key:   strconv.Itoa(h),
				Label: hourLabel(h),
				From:  from,
			})
		}
		b.closeIntervals(today.AddDate(0, 0, 1))
	case RangeWeek, RangeMonth:
		days := 7
		if r == RangeMonth {
			days = 30
		}
		start := today.AddDate(0, 0, -(days - 1))
		b.Items = make([]Bucket, 0, days)
		for i := 0; i < days; i++ {
			d := start.AddDate(0, 0, i)
			label := d.Weekday().String()[:1]
			if r == RangeMonth {
				label = ""
				if i%5 == 0 {
					label = strconv.Itoa(d.Day())
				}
			}
			b.Items = append(b.Items, Bucket{
				Key:   d.Format(dateLayout),
				Label: label,
				From:  d,
			})
		}
		b.closeIntervals(today.AddDate(0, 0, 1))
	case RangeSixMonths:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)
		start := first.AddDate(0, -5, 0)
		b.Items = make([]Bucket, 0, 6)
		for i := 0; i < 6; i++ {
			m := start.AddDate(0, i, 0)
			b.Items = append(b.Items, Bucket{
				Key:   monthKey(m),
				Label: m.Month().String()[:3],
				From:  m,
			})
		}
		b.closeIntervals(first.AddDate(0, 1, 0))
	default:
		return nil, fmt.Errorf("invalid range %q (use day, week, month, 6m)", r)
	}

	b.index = make(map[string]int, len(b.Items))
	active := -1
	for i := range b.Items {
		b.index[b.Items[i].Key] = i
		if !now.Before(b.Items[i].From) && now.Before(b.Items[i].To) {
			active = i
		}
	}
	if active >= 0 {
		b.Items[active].IsActive = true
	}
	return b, nil
}

func (b *Buckets) closeIntervals(end time.Time) {
	for i := range b.Items {
		if i+1 < len(b.Items) {
			b.Items[i].To = b.Items[i+1].From
			continue
		}
		b.Items[i].To = end
	}
}

// Window returns the half-open interval covered by all buckets.
func (b *Buckets) Window() (time.Time, time.Time) {
	if len(b.Items) == 0 {
		return time.Time{}, time.Time{}
	}
	return b.Items[0].From, b.Items[len(b.Items)-1].To
}

func (b *Buckets) KeyFor(t time.Time) string {
	t = t.In(b.loc)
	switch b.Range {
	case RangeDay:
		return strconv.Itoa(t.Hour())
	case RangeSixMonths:
		return monthKey(t)
	default:
		return t.Format(dateLayout)
	}
}

// Index reports the bucket position for t, or false when t is outside the window.
func (b *Buckets) Index(t time.Time) (int, bool) {
	from, to := b.Window()
	if t.Before(from) || !t.Before(to) {
		return 0, false
	}
	i, ok := b.index[b.KeyFor(t)]
	return i, ok
}

func (b *Buckets) Len() int {
	return len(b.Items)
}

func hourLabel(h int) string {
	if h%3 != 0 {
		return ""
	}
	switch {
	case h == 0:
		return "12a"
	case h < 12:
		return fmt.Sprintf("%da", h)
	case h == 12:
		return "12p"
	default:
		return fmt.Sprintf("%dp", h-12)
	}
}

func monthKey(t time.Time) string {
	return fmt.Sprintf("%d-%d", t.Year(), int(t.Month()))
}

func beginningOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func dateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dateLayout)
}
