package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kube-rca/aiops-processor/internal/model"
)

func analyzeCmd() *cobra.Command {
	var (
		file   string
		notify bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a single alert and print the result",
		Long: "Reads one alert (the POST /analyze body) from a JSON file, runs the\n" +
			"metrics/logs/LLM analysis once and prints the result as JSON.",
		Example: `  aiops-processor analyze --file alert.json
  aiops-processor analyze --file alert.json --notify`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading alert file: %w", err)
			}
			var req model.AnalyzeRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				return fmt.Errorf("parsing alert file: %w", err)
			}
			alert := req.ToAlert()
			if err := alert.Validate(); err != nil {
				return err
			}

			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx := cmd.Context()
			a, err := buildApp(ctx, cfg, logger, notify)
			if err != nil {
				return err
			}
			defer a.Close()

			var result *model.AnalysisResult
			if notify {
				result, err = a.pipeline.AnalyzeAndNotify(ctx, alert)
			} else {
				result, err = a.analyzer.Analyze(ctx, alert)
			}
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "alert JSON file")
	cmd.Flags().BoolVar(&notify, "notify", false, "send the result to configured channels")
	cobra.CheckErr(cmd.MarkFlagRequired("file"))
	return cmd
}
