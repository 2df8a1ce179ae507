package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"task-assistant/internal/config"
)

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd      *cobra.Command
	config   *config.Config
	registry *prometheus.Registry

	// newRuntime is replaced in tests.
	newRuntime func(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) (*Runtime, error)
}

// NewRootCommand creates the root cobra command with global flags
func NewRootCommand() *RootCommand {
	root := &RootCommand{
		registry:   prometheus.NewRegistry(),
		newRuntime: NewRuntime,
	}

	root.cmd = &cobra.Command{
		Use:   "ta",
		Short: "A natural-language task management assistant",
		Long: `Task Assistant (ta) manages a task list through plain-language messages.

FEATURES:
  • Create, update, complete and delete tasks by describing them
  • List tasks by status, priority or due date
  • Serve a REST API, a chat endpoint and a WebSocket channel

EXAMPLES:
  ta chat "add a high priority task to buy milk tomorrow"
  ta chat "show me all high priority tasks"
  ta chat "mark buy milk as completed"
  ta list pending                           # List pending tasks, newest first
  ta serve --port 8000                      # Start the HTTP server

CONFIGURATION:
  Configuration follows this priority order:
  command-line flags > environment variables > config file > defaults

  The config file defaults to ~/.task-assistant/config.yaml.

  Database Configuration:
    TA_DB_DRIVER                           sqlite or postgres (default: sqlite)
    TA_DB_DIR                              Database directory (default: ~/.task-assistant)
    TA_DB_FILENAME                         Database filename (default: tasks.db)
    TA_DB_DSN, DATABASE_URL                Connection string, wins over dir/filename

  Server Configuration:
    TA_SERVER_HOST, TA_SERVER_PORT         Listen address (default: 0.0.0.0:8000)
    TA_CORS_ORIGINS                        Comma-separated allowed origins (default: *)
    TA_AUTH_SECRET                         Enables bearer token auth when set

  Classifier Configuration:
    TA_CLASSIFIER_PROVIDER                 openai or echo (default: openai)
    TA_CLASSIFIER_BASE_URL                 OpenAI-compatible endpoint
    TA_CLASSIFIER_API_KEY, GOOGLE_API_KEY  API key
    TA_CLASSIFIER_MODEL                    Model name (default: gemini-2.0-flash)
    TA_CLASSIFIER_CACHE_SIZE               LRU cache entries, 0 disables

  Application Configuration:
    TA_LOG_LEVEL, TA_LOG_FORMAT            Logging (default: info, text)
    TA_APP_TIMEOUT                         Timeout for chat and list (default: 60s)
    TA_DEBUG                               Force debug logging

GETTING HELP:
  ta [command] --help                      # Get help for any specific command
  ta completion bash                       # Generate bash completion script`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return root.loadConfig()
		},
	}

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// Execute runs the root command
func (r *RootCommand) Execute(ctx context.Context) error {
	return r.cmd.ExecuteContext(ctx)
}

// Command exposes the cobra command, e.g. to set args and output in tests.
func (r *RootCommand) Command() *cobra.Command {
	return r.cmd
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	flags.String("config", "", "Config file (default ~/.task-assistant/config.yaml)")

	// Database configuration
	flags.String("db-driver", "", "Database driver, sqlite or postgres (overrides TA_DB_DRIVER)")
	flags.String("db-path", "", "SQLite database file (overrides TA_DB_DIR and TA_DB_FILENAME)")
	flags.String("db-dsn", "", "Database connection string (overrides TA_DB_DSN)")

	// Server configuration
	flags.String("host", "", "Listen host (overrides TA_SERVER_HOST)")
	flags.Int("port", 0, "Listen port (overrides TA_SERVER_PORT)")

	// Classifier configuration
	flags.String("classifier-provider", "", "Classifier provider, openai or echo (overrides TA_CLASSIFIER_PROVIDER)")
	flags.String("classifier-model", "", "Classifier model (overrides TA_CLASSIFIER_MODEL)")
	flags.String("classifier-base-url", "", "Classifier endpoint (overrides TA_CLASSIFIER_BASE_URL)")

	// Logging and application configuration
	flags.String("log-level", "", "Log level (overrides TA_LOG_LEVEL)")
	flags.String("log-format", "", "Log format, text or json (overrides TA_LOG_FORMAT)")
	flags.Duration("app-timeout", 0, "Application timeout (overrides TA_APP_TIMEOUT)")
	flags.Bool("verbose", false, "Enable verbose output (overrides TA_APP_VERBOSE)")
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and WebSocket server",
		Long: `Serve the task REST API, the /chat endpoint, the /ws WebSocket channel
and Prometheus metrics on /metrics. Stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withRuntime(cmd.Context(), func(rt *Runtime) error {
				return NewServeCommand(rt, r.registry).Execute(cmd.Context(), args)
			})
		},
	}

	chatCmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Send one message to the assistant",
		Long: `Run a single message through the assistant and print the reply.

Examples:
  ta chat "create a task to call the dentist next friday"
  ta chat "what tasks are overdue"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.runApp(cmd, "chat", args)
		},
	}

	listCmd := &cobra.Command{
		Use:   "list [status]",
		Short: "List tasks, newest first",
		Long: `List tasks newest first, optionally restricted to one status.

Statuses: pending, in_progress, completed, cancelled`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, _ := cmd.Flags().GetString("status")
			if status != "" {
				args = []string{status}
			}
			return r.runApp(cmd, "list", args)
		},
	}
	listCmd.Flags().String("status", "", "Only list tasks with this status")

	r.cmd.AddCommand(serveCmd, chatCmd, listCmd)
}

// runApp executes a registry command under the application timeout.
func (r *RootCommand) runApp(cmd *cobra.Command, name string, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), r.getAppTimeout())
	defer cancel()

	return r.withRuntime(ctx, func(rt *Runtime) error {
		app := NewApp(rt.API).WithOutput(cmd.OutOrStdout())
		return app.Run(ctx, append([]string{name}, args...))
	})
}

func (r *RootCommand) withRuntime(ctx context.Context, fn func(*Runtime) error) error {
	rt, err := r.newRuntime(ctx, r.config, r.registry)
	if err != nil {
		return NewErrorHandler().Handle("start", err)
	}
	defer rt.Close()
	return fn(rt)
}

// getAppTimeout returns the configured application timeout
func (r *RootCommand) getAppTimeout() time.Duration {
	if r.config != nil && r.config.Application.Timeout > 0 {
		return r.config.Application.Timeout
	}
	return 60 * time.Second
}

// loadConfig reads defaults, file and environment, then applies the flags
// that were set explicitly.
func (r *RootCommand) loadConfig() error {
	flags := r.cmd.PersistentFlags()

	loader := config.NewLoader()
	if path, _ := flags.GetString("config"); path != "" {
		loader = loader.WithFile(path)
	}

	cfg, err := loader.LoadWithOverrides(r.overridesFromFlags())
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	r.config = cfg
	return nil
}

// overridesFromFlags maps changed flags onto config overrides.
func (r *RootCommand) overridesFromFlags() *config.ConfigOverrides {
	flags := r.cmd.PersistentFlags()
	o := &config.ConfigOverrides{}

	str := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetString(name)
		return &v
	}

	o.DBDriver = str("db-driver")
	o.DBPath = str("db-path")
	o.DBDSN = str("db-dsn")
	o.Host = str("host")
	o.ClassifierProvider = str("classifier-provider")
	o.ClassifierModel = str("classifier-model")
	o.ClassifierBaseURL = str("classifier-base-url")
	o.LogLevel = str("log-level")
	o.LogFormat = str("log-format")

	if flags.Changed("port") {
		port, _ := flags.GetInt("port")
		o.Port = &port
	}
	if flags.Changed("app-timeout") {
		timeout, _ := flags.GetDuration("app-timeout")
		o.Timeout = &timeout
	}
	if flags.Changed("verbose") {
		verbose, _ := flags.GetBool("verbose")
		o.Verbose = &verbose
	}
	return o
}
