package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gundash/adapters/plot"
	"gundash/domain/artifact"
	"gundash/domain/core"
	"gundash/internal/config"
	"gundash/internal/container"
	"gundash/internal/dashboard"
	"gundash/internal/intent"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// dataPath overrides DATASET_PATH when set
var dataPath string

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:          "gundash-cli",
		Short:        "Gun violence dashboard CLI: train the intent model, score victims, render charts",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "dataset path (.csv or .xlsx); defaults to DATASET_PATH")

	rootCmd.AddCommand(
		newTrainCmd(),
		newPredictCmd(),
		newChartCmd(),
		newInfoCmd(),
		newDeleteCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openContainer loads configuration and wires the services
func openContainer(ctx context.Context) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dataPath != "" {
		cfg.Data.Path = dataPath
	}
	c, err := container.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTrainCmd() *cobra.Command {
	var inputs artifact.Inputs
	var plotPath string

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train (or reuse) the intent model for the given inputs",
		Long: `Train the multinomial logistic regression that predicts incident intent.

The age, sex and race inputs are added to every training row. A stored model
for the same dataset and inputs is reused instead of retraining.

Example: gundash-cli train --age 30 --sex Male --race White --plot intent_race.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := openContainer(ctx)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			res, err := c.Models.Ensure(ctx, inputs)
			if err != nil {
				return err
			}
			m := res.Model
			status := "trained"
			if res.Reused {
				status = "reused"
			}
			fmt.Printf("Model %s (%s, %d train / %d test rows)\n", m.ID, status, m.TrainRows, m.TestRows)
			fmt.Printf("Model Accuracy: %v\n", m.Accuracy)
			fmt.Println("Classification Report:")
			fmt.Println(m.Report)

			if plotPath == "" {
				return nil
			}
			t, err := c.Dataset.Get(ctx)
			if err != nil {
				return err
			}
			f, err := os.Create(plotPath)
			if err != nil {
				return err
			}
			if err := plot.IntentByRace().Render(f, t); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Printf("Plot written to %s\n", plotPath)
			return nil
		},
	}

	cmd.Flags().IntVar(&inputs.Age, "age", 30, "age input (0-100)")
	cmd.Flags().StringVar(&inputs.Sex, "sex", "Male", "sex input")
	cmd.Flags().StringVar(&inputs.Race, "race", "White", "race input")
	cmd.Flags().StringVar(&plotPath, "plot", "", "write the Intent vs. Race count plot to this PNG file")
	return cmd
}

func newPredictCmd() *cobra.Command {
	var (
		modelID string
		age     float64
		req     intent.PredictRequest
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the intent for one victim with a stored model",
		Long: `Score one victim against a stored model (the latest when --model is omitted).
Fields that are not given are filled with the training mode.

Example: gundash-cli predict --age 45 --sex M --race White --place Home`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := openContainer(ctx)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			var id core.ModelID
			if modelID != "" {
				if id, err = core.ParseModelID(modelID); err != nil {
					return err
				}
			}
			req.Age = &age
			m, pred, err := c.Models.Predict(ctx, id, req)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{
				"model_id":      m.ID,
				"intent":        pred.Intent,
				"probabilities": pred.Probabilities,
				"filled":        pred.Filled,
			})
		},
	}

	cmd.Flags().StringVar(&modelID, "model", "", "model id (default: latest)")
	cmd.Flags().Float64Var(&age, "age", 30, "victim age")
	cmd.Flags().StringVar(&req.Sex, "sex", "M", "victim sex as recorded in the dataset")
	cmd.Flags().StringVar(&req.Race, "race", "White", "victim race")
	cmd.Flags().StringVar(&req.Education, "education", "", "education level")
	cmd.Flags().StringVar(&req.Time, "time", "", "time (month) of the incident")
	cmd.Flags().StringVar(&req.Place, "place", "", "place of death")
	cmd.Flags().StringVar(&req.Police, "police", "", "police presence (0/1)")
	return cmd
}

func newChartCmd() *cobra.Command {
	var (
		assignments []string
		aggregate   bool
	)

	cmd := &cobra.Command{
		Use:   "chart [chart-id]",
		Short: "Render a catalog chart as Vega-Lite JSON",
		Long: `Render one dashboard chart for the given widget selections.
Without an id the catalog ids are listed.

Example: gundash-cli chart age_race_histogram --set race_options=White --set age_range_slider=0,30`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := dashboard.DefaultCatalog()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				for _, comp := range catalog.Components("") {
					fmt.Printf("%-26s %-9s %s\n", comp.ID(), comp.Definition().Page, comp.Title())
				}
				return nil
			}

			comp, err := catalog.Get(args[0])
			if err != nil {
				return err
			}
			sel, err := dashboard.ParseAssignments(assignments)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			c, err := openContainer(ctx)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())
			t, err := c.Dataset.Get(ctx)
			if err != nil {
				return err
			}

			res, err := comp.Render(t, sel)
			if err != nil {
				return err
			}
			if aggregate {
				return printJSON(res.Aggregate)
			}
			return printJSON(res.Spec)
		},
	}

	cmd.Flags().StringArrayVar(&assignments, "set", nil, "widget selection key=value (repeatable)")
	cmd.Flags().BoolVar(&aggregate, "aggregate", false, "print the aggregate instead of the chart spec")
	return cmd
}

func newInfoCmd() *cobra.Command {
	var models int

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Describe the dataset and stored models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := openContainer(ctx)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			t, err := c.Dataset.Get(ctx)
			if err != nil {
				return err
			}
			out := map[string]any{"dataset": c.Profiler.Profile(t)}
			if models > 0 {
				list, err := c.Models.List(ctx, models)
				if err != nil {
					return err
				}
				out["models"] = list
			}
			return printJSON(out)
		},
	}

	cmd.Flags().IntVar(&models, "models", 5, "number of stored models to list (0 to skip)")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <model-id>",
		Short: "Remove a stored model so the next train refits it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := core.ParseModelID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			c, err := openContainer(ctx)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			if err := c.Models.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Printf("deleted model %s\n", id)
			return nil
		},
	}
}
