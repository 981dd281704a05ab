package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sorynlabs/soryn/internal/api"
)

func NewModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the model catalog",
		Long:  `List every model the backend knows about, local and remote.`,
		Example: `  # List models from the default backend
  soryn models`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runModels(cfg.APIBaseURL)
		},
	}
}

func runModels(baseURL string) error {
	client := api.NewClient(baseURL)
	models, err := client.Models(context.Background())
	if err != nil {
		return err
	}

	if len(models) == 0 {
		fmt.Println("No models found. Is Ollama running, and are any remote models configured?")
		return nil
	}

	fmt.Printf("Available models:\n\n")

	for _, m := range models {
		marker := color.GreenString("●")
		if !m.IsAvailable {
			marker = color.RedString("○")
		}
		fmt.Printf("%s %s\n", marker, m.Name)
		fmt.Printf("  ID: %s | Provider: %s", m.ID, m.Provider)
		if !m.IsAvailable {
			fmt.Printf(" | unavailable")
		}
		fmt.Println()
		if m.Description != "" {
			fmt.Printf("  %s\n", m.Description)
		}
		fmt.Println()
	}

	return nil
}
