package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sorynlabs/soryn/internal/api"
	"github.com/sorynlabs/soryn/internal/domain"
)

func NewAskCommand() *cobra.Command {
	var modelID string
	var chatID string

	cmd := &cobra.Command{
		Use:   "ask <prompt>",
		Short: "Send one chat prompt",
		Long: `Send a single prompt to one model and print the reply. The exchange is
saved to history like any other chat; pass --chat to continue an
existing session.`,
		Example: `  # Ask a local model
  soryn ask --model llama3:latest "explain goroutines in one paragraph"

  # Continue an earlier session
  soryn ask --model llama3:latest --chat 550e8400-e29b-41d4-a716-446655440000 "shorter"

  # Pipe the answer into a file
  soryn ask --model gpt4 "write a haiku about terminals" > haiku.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			prompt := strings.Join(args, " ")
			return runAsk(cfg.APIBaseURL, modelID, chatID, prompt)
		},
	}

	cmd.Flags().StringVar(&modelID, "model", "", "Model ID to ask (see soryn models)")
	cmd.Flags().StringVar(&chatID, "chat", "", "Chat session to continue")
	cmd.MarkFlagRequired("model")

	return cmd
}

func runAsk(baseURL, modelID, chatID, prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("prompt is empty")
	}

	client := api.NewClient(baseURL)
	resp, err := client.SendChat(context.Background(), domain.ChatRequest{
		ModelID: modelID,
		Prompt:  prompt,
		ChatID:  chatID,
	})
	if err != nil {
		return err
	}

	fmt.Println(resp.Response)
	// The session id goes to stderr so piped output stays clean.
	fmt.Fprintln(os.Stderr, color.HiBlackString("session: "+resp.ChatID))

	return nil
}
