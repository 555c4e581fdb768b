package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/maloquacious/semver"
	"github.com/spf13/cobra"

	"github.com/maloquacious/roster/internal/config"
	"github.com/maloquacious/roster/internal/logger"
	"github.com/maloquacious/roster/internal/store"
	"github.com/maloquacious/roster/internal/store/sqlite"
)

var (
	version       = semver.Version{Minor: 1, PreRelease: "alpha", Build: semver.Commit()}
	schemaVersion = "0.1"
	buildDate     = ""
)

var (
	configPath string
	port       int
	adminPort  int
	shutdownTO time.Duration
	exitAfter  time.Duration
	publicDir  string
	dbPath     string
	logLevel   string
	logFormat  string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "app",
		Short:        "Roster people directory server and admin CLI",
		SilenceUsage: true,
	}

	defaults := config.Default()

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "optional YAML config file")
	rootCmd.PersistentFlags().DurationVar(&shutdownTO, "shutdown-timeout", defaults.ShutdownTimeout, "graceful shutdown timeout")
	rootCmd.PersistentFlags().StringVar(&publicDir, "public", defaults.PublicDir, "directory for static public assets")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaults.DBPath, "SQLite database file (or directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaults.LogLevel, "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", defaults.LogFormat, "text or json")

	// serve command
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Roster server",
		RunE:  runServe,
	}
	serveCmd.Flags().IntVar(&port, "port", defaults.Port, "public HTTP port (static page and /api/people)")
	serveCmd.Flags().IntVar(&adminPort, "admin-port", defaults.AdminPort, "admin HTTP port (JSON and metrics, loopback only)")
	serveCmd.Flags().DurationVar(&exitAfter, "exit-after", 0, "optional runtime; if set, server exits after this duration (testing)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}

	rootCmd.AddCommand(serveCmd, newDBCmd(), newPeopleCmd(), versionCmd)
	return rootCmd
}

// loadConfig layers the config file under any flag the user set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Port = port
	}
	if flags.Changed("admin-port") {
		cfg.AdminPort = adminPort
	}
	if flags.Changed("shutdown-timeout") {
		cfg.ShutdownTimeout = shutdownTO
	}
	if flags.Changed("public") {
		cfg.PublicDir = publicDir
	}
	if flags.Changed("db") {
		cfg.DBPath = dbPath
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = logFormat
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg config.Config) (*slog.Logger, error) {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logger.New(cmd.ErrOrStderr(), cfg.LogFormat, level)
}

// openStore opens the configured database. With initialize set the schema
// is created and seeded; otherwise the store must already be ready.
func openStore(cfg config.Config, initialize bool) (*sqlite.SQLiteStore, error) {
	path := store.GetDBPath(cfg.DBPath)
	if !initialize {
		exists, err := store.CheckExists(path)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("datastore %s is %s; run \"app db create\" first", path, store.StateMissing)
		}
	}

	st := sqlite.New(path, schemaVersion)
	if err := st.Open(); err != nil {
		return nil, err
	}

	if initialize {
		if err := st.InitSchema(schemaVersion); err != nil {
			st.Close()
			return nil, fmt.Errorf("failed to initialize store: %w", err)
		}
		return st, nil
	}

	state, err := st.CheckState()
	if err != nil {
		st.Close()
		return nil, err
	}
	if state != store.StateReady {
		st.Close()
		return nil, fmt.Errorf("datastore is %s; run \"app db create\" first", state)
	}
	return st, nil
}
