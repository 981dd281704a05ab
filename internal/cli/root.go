package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sorynlabs/soryn/internal/config"
)

var (
	apiURL  string
	dataDir string
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "soryn",
		Short: "Chat with AI models and make them debate each other",
		Long: `Soryn - Talk to local and remote AI models from your terminal, or give
several of them the same prompt and let an evaluator pick the winner.
Running soryn without a subcommand opens the interactive client.`,
		Version: "0.1.0",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI()
		},
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "Backend origin (default: http://localhost:5000)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory (default: ~/.soryn)")

	rootCmd.AddCommand(
		NewTUICommand(),
		NewServeCommand(),
		NewModelsCommand(),
		NewHistoryCommand(),
		NewAskCommand(),
	)

	return rootCmd
}

// loadConfig reads the environment and lets the persistent flags win
// over it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.APIBaseURL = apiURL
	}
	origin, err := NormalizeOrigin(cfg.APIBaseURL)
	if err != nil {
		return nil, err
	}
	cfg.APIBaseURL = origin
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	return cfg, nil
}

func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
