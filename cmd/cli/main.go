package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"kickpredict/domain/campaign"
	"kickpredict/internal/config"
	"kickpredict/internal/container"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "kickpredict",
		Short:         "Train and query the crowdfunding success predictor",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newTrainCmd(),
		newPredictCmd(),
		newTablesCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openContainer loads config and the artifact store
func openContainer(ctx context.Context) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	c, err := container.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := c.InitStore(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func newTrainCmd() *cobra.Command {
	var dataPath string

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Build rate tables and fit the classifier from a historical dataset",
		Long: `Read a Kickstarter export (CSV or XLSX), drop unusable rows, rebuild the
mean-goal rate tables, fit the classifier and persist every artifact.

Example: kickpredict train --data ks-projects-201801.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			trainer, err := c.Trainer(dataPath)
			if err != nil {
				return err
			}
			result, err := trainer.Train(cmd.Context())
			if err != nil {
				return err
			}

			m := result.Manifest
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run:       %s\n", m.RunID)
			fmt.Fprintf(out, "rows:      %d kept / %d read\n", m.Clean.Kept, m.Clean.Total)
			fmt.Fprintf(out, "accuracy:  %.4f\n", m.Metrics.Accuracy)
			fmt.Fprintf(out, "auc:       %.4f\n", m.Metrics.AUC)
			fmt.Fprintf(out, "tables:    %d categories, %d countries\n",
				result.Tables.ByCategory.Len(), result.Tables.ByCountry.Len())
			fmt.Fprintf(out, "duration:  %s\n", result.Duration)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "", "Path to the historical dataset (defaults to DATASET_FILE)")
	return cmd
}

func newPredictCmd() *cobra.Command {
	var in campaign.Input
	var pledged, goal string

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict whether a campaign will reach its goal",
		Long: `Predict one campaign with the latest trained model.

Example: kickpredict predict --name "Tiny Dungeon" --category Games --country US \
  --launched 01/01/2020 --deadline 31/01/2020 --pledged 150 --goal 5000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if in.USDPledgedReal, err = optionalFloat("pledged", pledged); err != nil {
				return err
			}
			if in.USDGoalReal, err = optionalFloat("goal", goal); err != nil {
				return err
			}

			c, err := openContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			predictor, err := c.Predictor(cmd.Context())
			if err != nil {
				return err
			}
			v, err := predictor.Predict(cmd.Context(), in)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", v.Label, v.Confidence())
			fmt.Fprintln(out, v.Message)
			for _, f := range v.Fallbacks {
				fmt.Fprintf(out, "note: no history for %s, default rate used\n", f)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "Campaign title")
	cmd.Flags().StringVar(&in.MainCategory, "category", "", "Main category, e.g. Games")
	cmd.Flags().StringVar(&in.Currency, "currency", "USD", "Currency (informational)")
	cmd.Flags().StringVar(&in.Country, "country", "", "Country code or name")
	cmd.Flags().StringVar(&in.Launched, "launched", "", "Launch date, DD/MM/YYYY or YYYY-MM-DD")
	cmd.Flags().StringVar(&in.Deadline, "deadline", "", "Deadline date, DD/MM/YYYY or YYYY-MM-DD")
	cmd.Flags().StringVar(&pledged, "pledged", "", "Amount pledged so far in USD")
	cmd.Flags().StringVar(&goal, "goal", "", "Funding goal in USD")
	return cmd
}

func newTablesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Inspect persisted rate tables",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print both mean-goal tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			tables, err := c.Store.LoadRateTables(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, t := range tables.Tables() {
				fmt.Fprintf(out, "%s (%d keys, %s)\n", t.Name(), t.Len(), t.Hash().Short())
				for _, key := range t.Keys() {
					mean, _ := t.Lookup(key)
					fmt.Fprintf(out, "  %-20s %14.2f\n", key, mean)
				}
			}
			return nil
		},
	})
	return cmd
}

// optionalFloat leaves blank flags nil so the predictor reports them missing
func optionalFloat(name, s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("--%s must be a number: %w", name, err)
	}
	return &v, nil
}
