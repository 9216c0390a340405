package main

import (
	"encoding/json"
	"fmt"

	"estudio/internal/config"
	"estudio/internal/recategorization"
	"estudio/internal/seed"

	"github.com/spf13/cobra"
)

func classifyCmd() *cobra.Command {
	var (
		periodPath string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "classify --period FILE CLIENT_FILE...",
		Short: "Recategorize clients against a period",
		Long: `Classify each client fixture into a category of the period fixture and
compose its monthly fee. Policy constants are read from the RECAT_* environment.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fixture, err := seed.LoadPeriod(periodPath)
			if err != nil {
				return err
			}
			engine := recategorization.NewEngine(fixture.Source(), config.EngineConfig())

			items := make([]recategorization.BatchItem, 0, len(args))
			for _, path := range args {
				client, err := seed.LoadClient(path)
				if err != nil {
					return err
				}
				items = append(items, recategorization.BatchItem{
					Period:  fixture.Period.Code,
					Metrics: client.Metrics(),
				})
			}

			report := engine.RecategorizeBatch(cmd.Context(), items, recategorization.BatchOptions{})

			if asJSON {
				out, err := json.MarshalIndent(jsonOutcomes(report.Outcomes), "", "  ")
				if err != nil {
					return fmt.Errorf("encode outcomes: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}

			failed := 0
			for _, o := range report.Outcomes {
				if o.Err != nil {
					failed++
				}
				fmt.Fprint(cmd.OutOrStdout(), formatOutcome(o))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d clients failed", failed, len(report.Outcomes))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&periodPath, "period", "", "period fixture (YAML)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print outcomes as JSON")
	_ = cmd.MarkFlagRequired("period")

	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate PERIOD_FILE",
		Short: "Check a period fixture's tables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fixture, err := seed.LoadPeriod(args[0])
			if err != nil {
				return err
			}
			scales, components := fixture.Tables()
			if err := recategorization.ValidateScale(scales); err != nil {
				return err
			}
			if err := recategorization.ValidateFeeTable(components); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s period %s: %d categories, %d components\n",
				green("✓"), fixture.Period.Code, len(scales), len(components))
			return nil
		},
	}
}
