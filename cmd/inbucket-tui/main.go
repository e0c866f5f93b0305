// Command inbucket-tui is a terminal client for an Inbucket test mail server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/grptx/inbucket/cmd/inbucket-tui/shell"
	"github.com/grptx/inbucket/cmd/inbucket-tui/ui"
	"github.com/grptx/inbucket/internal/config"
	"github.com/grptx/inbucket/internal/inbucket"
	"github.com/grptx/inbucket/internal/logging"
	"github.com/grptx/inbucket/internal/navigate"
	"github.com/grptx/inbucket/internal/store"
)

var (
	// Global flags
	configPath string
	serverURL  string
	backend    string
	ephemeral  bool
	verbose    bool

	// Logger for subcommands. The TUI logs through internal/logging.
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "inbucket-tui [path]",
	Short: "Terminal client for the Inbucket test mail server",
	Long: `inbucket-tui browses an Inbucket server from the terminal.

Run without arguments to open the home page, or pass an in-app path such as
/mailbox/swaks, /monitor or /status to start there. Recently opened mailboxes
are shared by every running client through the session store.`,
	Args: cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The TUI owns the terminal; zap output would corrupt it.
		if cmd == cmd.Root() {
			logger = zap.NewNop()
			return nil
		}

		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath(), "Config file")
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "Inbucket server URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&backend, "store", "", "Session store backend: file, sqlite, sqlite-pure, memory")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "Keep the session in memory only")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(routeCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if serverURL != "" {
		cfg.Server.URL = serverURL
	}
	if backend != "" {
		cfg.Store.Backend = backend
	}
	if ephemeral {
		cfg.Store.Backend = store.BackendMemory
	}
	if verbose {
		cfg.Logging.DebugMode = true
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// startPath turns the optional path argument into an in-app URL.
func startPath(args []string) string {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "/"
	}
	p := strings.TrimSpace(args[0])
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

func newEnv(cfg *config.Config, api ui.MailAPI, feed ui.MonitorFeed) ui.Env {
	theme := ui.DetectTheme()
	if cfg.UI.DarkMode {
		theme = ui.DarkTheme()
	}
	return ui.Env{
		API:            api,
		Feed:           feed,
		Styles:         ui.NewStyles(theme),
		Width:          80,
		Height:         24,
		Timeout:        cfg.GetServerTimeout(),
		MailboxRefresh: cfg.GetMailboxRefresh(),
		StatusRefresh:  cfg.GetStatusRefresh(),
		MaxMonitorRows: cfg.Monitor.MaxMessages,
		Greeting:       cfg.UI.Greeting,
		BaseURL:        cfg.Server.URL,
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := logging.Initialize(cfg.Store.Dir, cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.CloseAll()
	if err := logging.InitAudit(); err != nil {
		return err
	}
	defer logging.CloseAudit()
	logging.Boot("starting against %s with %s store (instance %s)", cfg.Server.URL, cfg.Store.Backend, logging.InstanceID())

	client, err := inbucket.NewClient(cfg.Server.URL, cfg.GetServerTimeout())
	if err != nil {
		return err
	}
	monitor, err := inbucket.NewMonitor(cfg.Server.URL, cfg.GetReconnectDelay())
	if err != nil {
		return err
	}

	kv, err := store.Open(cfg.Store, cfg.GetPollInterval())
	if err != nil {
		return err
	}
	defer kv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := startPath(args)
	p := shell.NewProgram(ctx, shell.Options{
		Env:       newEnv(cfg, client, monitor),
		Store:     kv,
		History:   navigate.NewHistory(start, nil),
		StartURL:  start,
		ServerURL: client.BaseURL(),
	})
	defer p.Close()

	if _, err := tea.NewProgram(p, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	logging.Boot("shutting down")
	return nil
}
