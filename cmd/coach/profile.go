package coach

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prajyotrote/coaching-os-sub000/internal/service"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage the body profile used for BMI, BMR, and TDEE",
}

var (
	profileGender     string
	profileDOB        string
	profileHeight     float64
	profileWeight     float64
	profileActivity   float64
	profileSmokes     bool
	profileDrinks     bool
	profileConditions []string
	profileJSON       bool
)

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Save the body profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(s *session) error {
			if err := service.SetProfile(cmd.Context(), s.repo, s.settings.UserID, service.ProfileInput{
				Gender:             profileGender,
				DOB:                profileDOB,
				HeightCm:           profileHeight,
				WeightKg:           profileWeight,
				ActivityMultiplier: profileActivity,
				Smokes:             profileSmokes,
				Drinks:             profileDrinks,
				Conditions:         profileConditions,
			}, s.now); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Saved profile")
			return nil
		})
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show body metrics derived from the profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(s *session) error {
			body, err := service.Body(cmd.Context(), s.repo, s.settings.UserID, s.now)
			if err != nil {
				return err
			}
			if profileJSON {
				return printJSON(cmd.OutOrStdout(), body)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Age: %d\n", body.AgeYears)
			fmt.Fprintf(cmd.OutOrStdout(), "BMI: %.1f (%s)\n", body.BMI, body.BMICategory)
			fmt.Fprintf(cmd.OutOrStdout(), "BMR: %d kcal\n", body.BMR)
			fmt.Fprintf(cmd.OutOrStdout(), "TDEE: %d kcal (x%.2f)\n", body.TDEE, body.ActivityMultiplier)
			fmt.Fprintf(cmd.OutOrStdout(), "Protein target: %.1f g\n", body.ProteinTargetG)
			fmt.Fprintf(cmd.OutOrStdout(), "Health score: %d\n", body.HealthScore)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileSetCmd, profileShowCmd)

	profileSetCmd.Flags().StringVar(&profileGender, "gender", "", "male, female, or other")
	profileSetCmd.Flags().StringVar(&profileDOB, "dob", "", "Date of birth YYYY-MM-DD")
	profileSetCmd.Flags().Float64Var(&profileHeight, "height", 0, "Height in cm")
	profileSetCmd.Flags().Float64Var(&profileWeight, "weight", 0, "Weight in kg")
	profileSetCmd.Flags().Float64Var(&profileActivity, "activity", 0, "Activity multiplier (default 1.2)")
	profileSetCmd.Flags().BoolVar(&profileSmokes, "smokes", false, "Smoker")
	profileSetCmd.Flags().BoolVar(&profileDrinks, "drinks", false, "Drinks alcohol")
	profileSetCmd.Flags().StringArrayVar(&profileConditions, "condition", nil, "Health condition (repeatable)")
	_ = profileSetCmd.MarkFlagRequired("height")
	_ = profileSetCmd.MarkFlagRequired("weight")
	profileShowCmd.Flags().BoolVar(&profileJSON, "json", false, "Output JSON")
}
