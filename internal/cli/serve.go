package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sorynlabs/soryn/internal/config"
	"github.com/sorynlabs/soryn/internal/inference"
	"github.com/sorynlabs/soryn/internal/logger"
	"github.com/sorynlabs/soryn/internal/registry"
	"github.com/sorynlabs/soryn/internal/server"
	"github.com/sorynlabs/soryn/internal/storage"
)

func NewServeCommand() *cobra.Command {
	var listenAddr string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the backend API server",
		Long: `Run the REST backend the client talks to. The server owns the model
catalog, runs chat and debate inference, and stores history in a local
sqlite database under the data directory.`,
		Example: `  # Run on the default port
  soryn serve

  # Run on another port with verbose logs
  soryn serve --listen :8080 --verbose

  # Keep data somewhere else
  soryn serve --data-dir /tmp/soryn`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(listenAddr, verbose)
		},
	}

	cmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address (default: :5000)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")

	return cmd
}

func runServe(listenAddr string, verbose bool) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(logger.NewHandler(os.Stdout, level)))

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if listenAddr == "" {
		listenAddr = cfg.ListenAddr
	}
	if err := cfg.EnsureDataDir(); err != nil {
		return err
	}

	store, err := storage.NewStore(cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	defer store.Close()

	catalog, err := registry.NewManager(cfg.ModelsPath(), cfg.OllamaHost)
	if err != nil {
		return fmt.Errorf("failed to load model catalog: %w", err)
	}

	providers := buildProviders(cfg)

	slog.Info("starting soryn backend", "data_dir", cfg.DataDir)
	return server.NewServer(store, catalog, providers, listenAddr).Start()
}

// buildProviders wires every inference backend. Providers with no key
// configured still register; per-model keys can supply one at call
// time.
func buildProviders(cfg *config.Config) *inference.Registry {
	providers := inference.NewRegistry()
	providers.Register(inference.NewOllamaProvider(cfg.OllamaHost))
	providers.Register(inference.NewOpenAIProvider(cfg.OpenAIKey))
	providers.Register(inference.NewGeminiProvider(cfg.GeminiKey))
	return providers
}
