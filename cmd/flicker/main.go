package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/amberpine/flicker/internal/clipboard"
	"github.com/amberpine/flicker/internal/config"
	"github.com/amberpine/flicker/internal/metadata"
	"github.com/amberpine/flicker/internal/servers"
	"github.com/amberpine/flicker/internal/store"
	"github.com/amberpine/flicker/internal/tui"
	"github.com/amberpine/flicker/pkg/types"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "none"
	date    = "unknown"

	// Global flags
	cfgFile  string
	logLevel string
	noColor  bool
	debug    bool

	cfg    *config.Config
	logger *slog.Logger
	st     *store.Store
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "flicker",
	Short: "A terminal front-end for free streaming servers",
	Long: `flicker aggregates free streaming servers behind one terminal UI:
pick a title, pick a server, and playback opens in your browser with the
resolved embed URL. Watch progress and server unlocks persist locally.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// config init must run before a config file exists
		if cmd.Name() == "init" && cmd.Parent() != nil && cmd.Parent().Name() == "config" {
			return nil
		}

		if err := config.InitializeDirs(); err != nil {
			return fmt.Errorf("failed to initialize directories: %w", err)
		}

		var err error
		var v *viper.Viper
		cfg, v, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if debug {
			cfg.Advanced.Debug = true
			if logLevel == "" {
				cfg.Logging.Level = "debug"
			}
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		if noColor {
			cfg.Logging.Color = false
		}

		logger, err = config.InitLogger(&cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		// A broken database degrades to in-memory state, never a startup
		// failure
		st = store.Open(&cfg.Database, store.Preferences{
			Quality:         cfg.Playback.Quality,
			Region:          cfg.Playback.Region,
			DownloadMode:    cfg.Playback.DownloadMode,
			PerformanceMode: cfg.Playback.PerformanceMode,
		}, logger)

		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			logger.Info("config file changed", "name", e.Name)
			if err := v.Unmarshal(&cfg); err != nil {
				logger.Error("failed to reload config", "error", err)
			}
		})

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if st != nil {
			if err := st.Close(); err != nil {
				logger.Error("failed to close store", "error", err)
			}
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Info("flicker starting", "version", version)
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		return tui.Run(deps, nil)
	},
}

func buildDeps() (tui.Deps, error) {
	registry, err := servers.Default()
	if err != nil {
		return tui.Deps{}, fmt.Errorf("failed to build server registry: %w", err)
	}

	return tui.Deps{
		Config:   cfg,
		Logger:   logger,
		Store:    st,
		Registry: registry,
		Gate:     servers.NewGate(st, logger),
		Metadata: metadata.NewClient(&cfg.Metadata, logger),
		Clip:     clipboard.NewService(cfg.Advanced.ClipboardCommand, logger),
	}, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/flicker/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serversCmd)
	rootCmd.AddCommand(historyCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("flicker version %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := cfgFile
		if configPath == "" {
			configPath = filepath.Join(config.GetConfigDir(), "config.yaml")
		}

		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s", configPath)
		}

		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}

		if err := config.SaveDefaultConfig(configPath); err != nil {
			return fmt.Errorf("failed to save default configuration: %w", err)
		}

		fmt.Printf("Default configuration generated at: %s\n", configPath)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Config file: %s\n", cfgFile)
		fmt.Printf("Log level: %s\n", cfg.Logging.Level)
		fmt.Printf("Database: %s\n", cfg.Database.Path)
		fmt.Printf("Metadata backend: %s\n", cfg.Metadata.BaseURL)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Display configuration file path",
	Run: func(cmd *cobra.Command, args []string) {
		if cfgFile != "" {
			fmt.Println(cfgFile)
			return
		}
		fmt.Println(filepath.Join(config.GetConfigDir(), "config.yaml"))
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Open the watch view for a title",
	Long: `Open the watch view directly for a known title, skipping the home view.

Examples:
  flicker watch --type movie --id 603
  flicker watch --type tv --id 1399 --season 2 --episode 4
  flicker watch --type tv --id 1399 --server 3`,
	RunE: func(cmd *cobra.Command, args []string) error {
		typeFlag, _ := cmd.Flags().GetString("type")
		id, _ := cmd.Flags().GetString("id")
		season, _ := cmd.Flags().GetInt("season")
		episode, _ := cmd.Flags().GetInt("episode")
		serverIndex, _ := cmd.Flags().GetInt("server")

		contentType, err := types.ParseContentType(typeFlag)
		if err != nil {
			return err
		}
		if id == "" {
			return fmt.Errorf("--id is required")
		}

		deps, err := buildDeps()
		if err != nil {
			return err
		}

		return tui.Run(deps, &tui.DeepLink{
			ContentType: contentType,
			ContentID:   id,
			Season:      season,
			Episode:     episode,
			ServerIndex: serverIndex,
		})
	},
}

func init() {
	watchCmd.Flags().String("type", "movie", "content type (movie or tv)")
	watchCmd.Flags().String("id", "", "content id")
	watchCmd.Flags().Int("season", 0, "season number (tv only)")
	watchCmd.Flags().Int("episode", 0, "episode number (tv only)")
	watchCmd.Flags().Int("server", 0, "server index to start with")
}

var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "List the available streaming servers",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := servers.Default()
		if err != nil {
			return err
		}
		gate := servers.NewGate(st, logger)

		for i, s := range registry.All() {
			var tags []string
			if s.IsRecommended {
				tags = append(tags, "recommended")
			}
			if s.HasSandboxSupport {
				tags = append(tags, "sandbox")
			}
			if s.HasAds {
				tags = append(tags, "ads")
			}
			if s.IsLocked {
				if gate.RequiresUnlock(s) {
					tags = append(tags, "locked")
				} else {
					tags = append(tags, "unlocked")
				}
			}

			line := fmt.Sprintf("%2d. %s", i, s.Name)
			if len(tags) > 0 {
				line += "  [" + strings.Join(tags, ", ") + "]"
			}
			fmt.Println(line)
			if s.Description != "" {
				fmt.Printf("      %s\n", s.Description)
			}
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or edit the continue-watching list",
	RunE: func(cmd *cobra.Command, args []string) error {
		clear, _ := cmd.Flags().GetBool("clear")
		remove, _ := cmd.Flags().GetString("remove")

		if clear {
			st.ClearHistory()
			fmt.Println("Watch history cleared")
			return nil
		}
		if remove != "" {
			st.RemoveHistory(remove)
			fmt.Printf("Removed %s from history\n", remove)
			return nil
		}

		entries := st.History()
		if len(entries) == 0 {
			fmt.Println("No watch history yet")
			return nil
		}

		for _, e := range entries {
			position := ""
			if e.ContentType == "tv" && e.LastSeason > 0 {
				position = fmt.Sprintf("  S%d E%d", e.LastSeason, e.LastEpisode)
			}
			fmt.Printf("%s (%s)%s - %s\n", e.Title, e.ContentType, position, humanize.Time(e.WatchedAt))
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Bool("clear", false, "remove all history entries")
	historyCmd.Flags().String("remove", "", "remove one entry by content id")
}
