package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sorynlabs/soryn/internal/api"
)

func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved chats and debates",
		Long:  `List the history the backend holds, newest first.`,
		Example: `  # List history
  soryn history

  # Delete one item
  soryn history delete chat 550e8400-e29b-41d4-a716-446655440000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runHistoryList(cfg.APIBaseURL)
		},
	}

	cmd.AddCommand(newHistoryDeleteCommand())

	return cmd
}

func newHistoryDeleteCommand() *cobra.Command {
	var skipConfirm bool

	cmd := &cobra.Command{
		Use:   "delete <type> <id>",
		Short: "Delete a history item",
		Long:  `Delete one chat or debate from the backend's history.`,
		Example: `  # Delete a chat with confirmation
  soryn history delete chat 550e8400-e29b-41d4-a716-446655440000

  # Delete a debate without the prompt
  soryn history delete debate 6fa459ea-ee8a-3ca4-894e-db77e160355e --yes`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runHistoryDelete(cfg.APIBaseURL, args[0], args[1], skipConfirm)
		},
	}

	cmd.Flags().BoolVar(&skipConfirm, "yes", false, "Skip confirmation prompt")

	return cmd
}

func runHistoryList(baseURL string) error {
	client := api.NewClient(baseURL)
	items, err := client.History(context.Background())
	if err != nil {
		return err
	}

	if len(items) == 0 {
		fmt.Println("No history yet.")
		return nil
	}

	fmt.Printf("History (%d items):\n\n", len(items))

	for _, item := range items {
		fmt.Printf("[%s] %s\n", item.Kind, item.Title)
		fmt.Printf("  ID: %s", item.ID)
		if item.ModelID != "" {
			fmt.Printf(" | Model: %s", item.ModelID)
		}
		fmt.Printf("\n  Date: %s\n", item.SortDate.Format("2006-01-02 15:04:05"))
		fmt.Println()
	}

	return nil
}

func runHistoryDelete(baseURL, kind, id string, skipConfirm bool) error {
	if err := ValidateHistoryKind(kind); err != nil {
		return err
	}

	if !skipConfirm {
		fmt.Printf("Delete %s %s? [y/N]: ", kind, id)
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	client := api.NewClient(baseURL)
	if err := client.DeleteHistory(context.Background(), kind, id); err != nil {
		return err
	}

	fmt.Printf("✓ Deleted %s (ID: %s)\n", kind, id)
	return nil
}
