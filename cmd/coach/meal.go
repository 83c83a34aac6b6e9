package coach

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/prajyotrote/coaching-os-sub000/internal/provider/openfoodfacts"
	"github.com/prajyotrote/coaching-os-sub000/internal/service"
)

var mealCmd = &cobra.Command{
	Use:   "meal",
	Short: "Log meals",
}

var (
	mealItems    []string
	mealBarcodes []string
	mealServings float64
	mealName     string
	mealDate     string
	mealTime     string
	mealOFFURL   string
	mealJSON     bool
)

var mealAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Build a meal from items and barcodes and log it",
	Example: `  coach meal add --item "oats:389:13:66:7" --item "banana:105"
  coach meal add --barcode 3017620422003 --servings 0.5 --name snack`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(mealItems) == 0 && len(mealBarcodes) == 0 {
			return fmt.Errorf("add at least one --item or --barcode")
		}
		basket := service.NewBasket()
		for _, raw := range mealItems {
			item, err := service.ParseBasketItem(raw)
			if err != nil {
				return err
			}
			if err := basket.Add(item); err != nil {
				return err
			}
		}
		if len(mealBarcodes) > 0 {
			client := &openfoodfacts.Client{BaseURL: mealOFFURL}
			for _, code := range mealBarcodes {
				item, err := basket.AddBarcode(cmd.Context(), client, strings.TrimSpace(code), mealServings)
				if err != nil {
					return err
				}
				log.Debug("barcode resolved", "barcode", code, "name", item.Name, "calories", item.Calories)
			}
		}

		return withSession(cmd.Context(), func(s *session) error {
			at, err := parseDateTimeOrNow(mealDate, mealTime, s.now)
			if err != nil {
				return err
			}
			state := basket.State()
			id, err := basket.Commit(cmd.Context(), s.repo, s.settings.UserID, mealName, at)
			if err != nil {
				return err
			}
			if mealJSON {
				return printJSON(cmd.OutOrStdout(), map[string]any{"id": id, "meal": state})
			}
			for _, it := range state.Items {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s: %d kcal | P %.1fg | C %.1fg | F %.1fg\n", it.Name, it.Calories, it.ProteinG, it.CarbsG, it.FatG)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged meal %d: %d kcal | P %.1fg | C %.1fg | F %.1fg\n", id, state.Calories, state.ProteinG, state.CarbsG, state.FatG)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(mealCmd)
	mealCmd.AddCommand(mealAddCmd)

	mealAddCmd.Flags().StringArrayVar(&mealItems, "item", nil, "Item as name:kcal or name:kcal:protein:carbs:fat (repeatable)")
	mealAddCmd.Flags().StringArrayVar(&mealBarcodes, "barcode", nil, "Product barcode looked up on Open Food Facts (repeatable)")
	mealAddCmd.Flags().Float64Var(&mealServings, "servings", 1, "Servings per barcode item")
	mealAddCmd.Flags().StringVar(&mealName, "name", "", "Meal name (default: item names)")
	mealAddCmd.Flags().StringVar(&mealDate, "date", "", "Date YYYY-MM-DD (default today)")
	mealAddCmd.Flags().StringVar(&mealTime, "time", "", "Time HH:MM (default now)")
	mealAddCmd.Flags().StringVar(&mealOFFURL, "off-url", "", "Open Food Facts base URL override")
	mealAddCmd.Flags().BoolVar(&mealJSON, "json", false, "Output JSON")
}
