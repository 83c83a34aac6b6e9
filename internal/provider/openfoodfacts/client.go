package openfoodfacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://world.openfoodfacts.org"
	userAgent      = "coach/1.0"
)

var ErrNotFound = errors.New("product not found")

// Product carries per-serving macros, falling back to per-100g values.
type Product struct {
	Barcode  string  `json:"barcode"`
	Name     string  `json:"name"`
	Brand    string  `json:"brand,omitempty"`
	Serving  string  `json:"serving"`
	Calories int     `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func ValidBarcode(code string) bool {
	code = strings.TrimSpace(code)
	if len(code) < 8 || len(code) > 14 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (c *Client) LookupBarcode(ctx context.Context, barcode string) (Product, error) {
	barcode = strings.TrimSpace(barcode)
	if !ValidBarcode(barcode) {
		return Product{}, fmt.Errorf("barcode must be 8-14 digits")
	}
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api/v2/product/%s.json", base, barcode), nil)
	if err != nil {
		return Product{}, fmt.Errorf("create openfoodfacts request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return Product{}, fmt.Errorf("execute openfoodfacts request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Product{}, fmt.Errorf("read openfoodfacts response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return Product{}, fmt.Errorf("barcode %q: %w", barcode, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Product{}, fmt.Errorf("openfoodfacts request failed with status %d", resp.StatusCode)
	}

	var parsed offResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Product{}, fmt.Errorf("decode openfoodfacts response: %w", err)
	}
	if parsed.Status != 1 || strings.TrimSpace(parsed.Product.ProductName) == "" {
		return Product{}, fmt.Errorf("barcode %q: %w", barcode, ErrNotFound)
	}

	p := parsed.Product
	calories, perServing := nutrientValue(p.Nutriments, "energy-kcal")
	protein, _ := nutrientValue(p.Nutriments, "proteins")
	carbs, _ := nutrientValue(p.Nutriments, "carbohydrates")
	fat, _ := nutrientValue(p.Nutriments, "fat")
	serving := "100g"
	if perServing {
		serving = servingLabel(p)
	}
	return Product{
		Barcode:  barcode,
		Name:     strings.TrimSpace(p.ProductName),
		Brand:    strings.TrimSpace(p.Brands),
		Serving:  serving,
		Calories: int(calories + 0.5),
		ProteinG: protein,
		CarbsG:   carbs,
		FatG:     fat,
	}, nil
}

// nutrientValue reports whether the value came from the per-serving field.
func nutrientValue(n map[string]any, base string) (float64, bool) {
	if v, ok := parseFloatAny(n[base+"_serving"]); ok {
		return v, true
	}
	if v, ok := parseFloatAny(n[base+"_100g"]); ok {
		return v, false
	}
	return 0, false
}

func parseFloatAny(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func servingLabel(p offProduct) string {
	if p.ServingQuantity > 0 {
		unit := strings.TrimSpace(p.ServingQuantityUnit)
		if unit == "" {
			unit = "g"
		}
		return strconv.FormatFloat(p.ServingQuantity, 'f', -1, 64) + unit
	}
	if s := strings.TrimSpace(p.ServingSize); s != "" {
		return s
	}
	return "1 serving"
}

type offResponse struct {
	Status  int        `json:"status"`
	Product offProduct `json:"product"`
}

type offProduct struct {
	ProductName         string         `json:"product_name"`
	Brands              string         `json:"brands"`
	ServingSize         string         `json:"serving_size"`
	ServingQuantity     float64        `json:"serving_quantity"`
	ServingQuantityUnit string         `json:"serving_quantity_unit"`
	Nutriments          map[string]any `json:"nutriments"`
}
