// Package cmd implements the aiops-processor CLI commands.
package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kube-rca/aiops-processor/internal/config"
	"github.com/kube-rca/aiops-processor/internal/logging"
)

var (
	envFile string
	rootCmd = &cobra.Command{
		Use:   "aiops-processor",
		Short: "Alertmanager webhook receiver with LLM root cause analysis",
		Long: "aiops-processor receives Alertmanager webhooks, collects related\n" +
			"Prometheus metrics and Loki logs, asks an LLM for a root cause analysis\n" +
			"and posts the result to Slack or a generic webhook.",
		SilenceUsage: true,
	}
)

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadEnvFile)

	rootCmd.PersistentFlags().
		StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading configuration")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(tokenCmd())
}

// loadEnvFile - 이미 설정된 환경변수는 덮어쓰지 않음
func loadEnvFile() {
	if envFile == "" {
		return
	}
	if _, err := os.Stat(envFile); err != nil {
		return
	}
	_ = godotenv.Load(envFile)
}

// loadConfig - 설정 로드 후 로거 생성, 기본값으로 대체된 항목은 경고로 남김
func loadConfig() (config.Config, *zap.Logger, error) {
	cfg := config.Load()
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return cfg, nil, err
	}
	for _, w := range cfg.Warnings {
		logger.Warn("Invalid configuration value, using default", zap.String("detail", w))
	}
	return cfg, logger, nil
}
