package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/prajyotrote/coaching-os-sub000/internal/provider/openfoodfacts"
	"github.com/prajyotrote/coaching-os-sub000/internal/store"
)

type BasketItem struct {
	Name     string  `json:"name"`
	Servings float64 `json:"servings"`
	Calories int     `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
	Barcode  string  `json:"barcode,omitempty"`
}

type BasketState struct {
	Items    []BasketItem `json:"items"`
	Calories int          `json:"calories"`
	ProteinG float64      `json:"protein_g"`
	CarbsG   float64      `json:"carbs_g"`
	FatG     float64      `json:"fat_g"`
}

type BarcodeLookup interface {
	LookupBarcode(ctx context.Context, barcode string) (openfoodfacts.Product, error)
}

// Basket collects meal items before they are committed as one meal log.
type Basket struct {
	state *store.Store[BasketState]
}

func NewBasket() *Basket {
	return &Basket{state: store.New(BasketState{Items: []BasketItem{}})}
}

func (b *Basket) State() BasketState { return b.state.Get() }

func (b *Basket) Subscribe(fn func(BasketState)) func() { return b.state.Subscribe(fn) }

func (b *Basket) Add(item BasketItem) error {
	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("item name is required")
	}
	if err := validateNonNegativeInt("calories", item.Calories); err != nil {
		return err
	}
	for name, v := range map[string]float64{"protein": item.ProteinG, "carbs": item.CarbsG, "fat": item.FatG} {
		if err := validateNonNegativeFloat(name, v); err != nil {
			return err
		}
	}
	if item.Servings == 0 {
		item.Servings = 1
	}
	if item.Servings < 0 {
		return fmt.Errorf("servings must be > 0")
	}
	item.Name = strings.TrimSpace(item.Name)
	b.state.Update(func(s BasketState) BasketState {
		items := append(append([]BasketItem{}, s.Items...), item)
		return totalBasket(items)
	})
	return nil
}

// AddBarcode scales the product's serving values by servings.
func (b *Basket) AddBarcode(ctx context.Context, lookup BarcodeLookup, barcode string, servings float64) (BasketItem, error) {
	if servings <= 0 {
		servings = 1
	}
	p, err := lookup.LookupBarcode(ctx, barcode)
	if err != nil {
		return BasketItem{}, err
	}
	name := p.Name
	if p.Brand != "" {
		name = p.Brand + " " + p.Name
	}
	item := BasketItem{
		Name:     name,
		Servings: servings,
		Calories: int(math.Round(float64(p.Calories) * servings)),
		ProteinG: roundGrams(p.ProteinG * servings),
		CarbsG:   roundGrams(p.CarbsG * servings),
		FatG:     roundGrams(p.FatG * servings),
		Barcode:  p.Barcode,
	}
	if err := b.Add(item); err != nil {
		return BasketItem{}, err
	}
	return item, nil
}

func (b *Basket) Remove(index int) error {
	if index < 0 || index >= len(b.state.Get().Items) {
		return fmt.Errorf("basket item %d does not exist", index)
	}
	b.state.Update(func(s BasketState) BasketState {
		if index >= len(s.Items) {
			return s
		}
		items := append(append([]BasketItem{}, s.Items[:index]...), s.Items[index+1:]...)
		return totalBasket(items)
	})
	return nil
}

func (b *Basket) Clear() {
	b.state.Set(BasketState{Items: []BasketItem{}})
}

// Commit writes the basket as a single meal and empties it.
func (b *Basket) Commit(ctx context.Context, w LogWriter, userID, name string, at time.Time) (int64, error) {
	s := b.state.Get()
	if len(s.Items) == 0 {
		return 0, fmt.Errorf("basket is empty")
	}
	if strings.TrimSpace(name) == "" {
		names := make([]string, 0, len(s.Items))
		for _, it := range s.Items {
			names = append(names, it.Name)
		}
		name = strings.Join(names, ", ")
	}
	id, err := LogMeal(ctx, w, userID, MealInput{
		Name:     name,
		Calories: s.Calories,
		ProteinG: s.ProteinG,
		CarbsG:   s.CarbsG,
		FatG:     s.FatG,
		At:       at,
	})
	if err != nil {
		return 0, err
	}
	b.Clear()
	return id, nil
}

func totalBasket(items []BasketItem) BasketState {
	out := BasketState{Items: items}
	for _, it := range items {
		out.Calories += it.Calories
		out.ProteinG += it.ProteinG
		out.CarbsG += it.CarbsG
		out.FatG += it.FatG
	}
	out.ProteinG = roundGrams(out.ProteinG)
	out.CarbsG = roundGrams(out.CarbsG)
	out.FatG = roundGrams(out.FatG)
	return out
}

func roundGrams(v float64) float64 {
	return math.Round(v*10) / 10
}

// ParseBasketItem parses "name:kcal[:protein:carbs:fat]".
func ParseBasketItem(raw string) (BasketItem, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 2 && len(parts) != 5 {
		return BasketItem{}, fmt.Errorf("invalid item %q, expected name:kcal or name:kcal:protein:carbs:fat", raw)
	}
	item := BasketItem{Name: strings.TrimSpace(parts[0]), Servings: 1}
	kcal, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return BasketItem{}, fmt.Errorf("invalid calories in item %q", raw)
	}
	item.Calories = kcal
	if len(parts) == 5 {
		macros := make([]float64, 3)
		for i, p := range parts[2:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return BasketItem{}, fmt.Errorf("invalid macro value %q in item %q", p, raw)
			}
			macros[i] = v
		}
		item.ProteinG, item.CarbsG, item.FatG = macros[0], macros[1], macros[2]
	}
	return item, nil
}
