package cli

import (
	"github.com/spf13/cobra"

	"github.com/sorynlabs/soryn/internal/api"
	"github.com/sorynlabs/soryn/internal/tui"
)

func NewTUICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive client",
		Long:  `Open the terminal UI with the chat, debate, models and history panels.`,
		Example: `  # Open the client against the default backend
  soryn tui

  # Open the client against a backend on another port
  soryn tui --api http://localhost:8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI()
		},
	}
}

func runTUI() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// The settings file lives in the data dir alongside the server's
	// files, so make sure it exists even when serve never ran.
	if err := cfg.EnsureDataDir(); err != nil {
		return err
	}

	client := api.NewClient(cfg.APIBaseURL)
	return tui.NewApp(client, cfg.SettingsPath()).Run()
}
