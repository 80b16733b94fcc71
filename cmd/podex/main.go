package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/podexhq/podex/internal/announce"
	"github.com/podexhq/podex/internal/api"
	"github.com/podexhq/podex/internal/app"
	"github.com/podexhq/podex/internal/config"
	"github.com/podexhq/podex/internal/layout"
	"github.com/podexhq/podex/internal/logging"
	"github.com/podexhq/podex/internal/settings"
)

var version = "dev"

func main() {
	app.Version = version

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "podex",
		Short: "Terminal client for Podex workspaces",
		Long: "Podex is a terminal workbench: dockable sidebar panels around an\n" +
			"editor pane, an embedded shell, and layout preferences that follow\n" +
			"you between the terminal and the web app.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runWorkbench,
	}

	flags := root.Flags()
	flags.String("config", "", "config file (default ~/.config/podex/config.yaml)")
	flags.String("api-url", "", "Podex API base URL")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-file", "", "log file path")
	flags.String("workspace", "", "workspace root directory")
	flags.Bool("no-sync", false, "disable preference sync")

	root.AddCommand(newLoginCmd(), newLogoutCmd())
	return root
}

func runWorkbench(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	cfgPath, _ := flags.GetString("config")
	if cfgPath == "" {
		// A missing default path just means no config file.
		cfgPath, _ = config.DefaultConfigPath()
	}
	cfg, err := config.Load(cfgPath, flags)
	if err != nil {
		return err
	}

	logPath := cfg.Log.File
	if logPath == "" {
		if logPath, err = logging.DefaultLogPath(); err != nil {
			return fmt.Errorf("resolve log path: %w", err)
		}
	}
	logger, err := logging.New(logPath, cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logger.Sync()

	settingsPath, err := settings.DefaultPath()
	if err != nil {
		return fmt.Errorf("resolve settings path: %w", err)
	}
	store := settings.NewStore(settingsPath, logger)
	if result := store.Load(); result.WasMigrated {
		logger.Info("settings schema upgraded",
			zap.Int("from", result.FromVersion),
			zap.Int("to", result.ToVersion))
	}

	tokenPath, err := api.DefaultTokenPath()
	if err != nil {
		return fmt.Errorf("resolve token path: %w", err)
	}
	tokens := api.NewTokenManager(tokenPath)
	client := api.NewClient(cfg.API.BaseURL, tokens, logger)
	client.SetTimeout(cfg.API.Timeout)

	var syncer *api.Syncer
	if cfg.Sync.Enabled {
		syncer = api.NewSyncer(client, func() api.UIPreferences {
			return api.PreferencesFrom(store.Get())
		}, logger)
	}

	// Out-of-loop events (announcer, settings watcher) are pushed here and
	// drained by the model. Dropping on a full buffer is fine: the next
	// event carries the same "re-read state" meaning.
	events := make(chan tea.Msg, 16)
	push := func(msg tea.Msg) {
		select {
		case events <- msg:
		default:
		}
	}

	announcer := announce.New(func(string) {
		push(app.AnnounceChangedMsg{})
	})
	defer announcer.Close()

	manager := layout.NewManager(store.Get().SidebarLayout, layout.Hooks{
		Announce: announcer.Announce,
		OnChange: store.SetSidebarLayout,
		RequestSync: func() {
			if syncer != nil {
				syncer.Request()
			}
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := store.Watch(ctx, func(s settings.Settings) {
		push(app.SettingsReloadedMsg{Settings: s})
	}); err != nil {
		logger.Warn("settings watch unavailable", zap.Error(err))
	}

	m := app.New(app.Options{
		Config:    cfg,
		Logger:    logger,
		Store:     store,
		Manager:   manager,
		Announcer: announcer,
		Client:    client,
		Syncer:    syncer,
		Events:    events,
	})

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, runErr := p.Run()

	m.Close()
	if syncer != nil {
		syncer.Flush()
		syncer.Close()
	}
	return runErr
}

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login [token]",
		Short: "Save an access token so layout preferences sync to your account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := ""
			if len(args) == 1 {
				token = args[0]
			} else {
				fmt.Fprint(cmd.OutOrStdout(), "Access token: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return err
				}
				token = strings.TrimSpace(line)
			}
			if token == "" {
				return errors.New("no token provided")
			}

			path, err := api.DefaultTokenPath()
			if err != nil {
				return err
			}
			user, _ := cmd.Flags().GetString("user")
			if err := api.NewTokenManager(path).SetToken(token, user); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed in. Preferences sync on the next run.")
			return nil
		},
	}
	cmd.Flags().String("user", "", "display name stored with the token")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := api.DefaultTokenPath()
			if err != nil {
				return err
			}
			if err := api.NewTokenManager(path).ClearToken(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}
