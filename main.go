package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wtfBlog/crud"
	"wtfBlog/database"
	"wtfBlog/http"
)

var (
	// prod means that we're running in production. A config file is required then.
	prod       bool
	configPath string
)

// rootCmd is the base command. Run without a subcommand it serves the app.
var rootCmd = &cobra.Command{
	Use:           "wtfblog [command] [flags]",
	Short:         "wtfBlog: a blog with groups, comments and follows",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          serve,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Migrate the database and serve the app",
	Args:  cobra.NoArgs,
	RunE:  serve,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update all database tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			return database.AutoMigrate(a.db)
		})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop and recreate all database tables, deleting every record",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			if a.config.IsProd() {
				return fmt.Errorf("refusing to reset the production database")
			}
			return database.DestructiveReset(a.db)
		})
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&prod, "prod", false, "Provide this flag in production to ensure that a config file is provided before the application starts.")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".config.json", "Path of the config file.")
	rootCmd.AddCommand(serveCmd, migrateCmd, resetCmd)
}

// main is the app's entry point.
func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app bundles everything a command needs.
type app struct {
	config   Config
	logger   *zap.Logger
	db       *database.DB
	services *crud.Services
}

// withApp loads the config, sets up logging, opens the database and starts the
// crud services. It runs fn and tears everything down again afterwards.
func withApp(fn func(a *app) error) error {
	// Load configuration from the config file if present, otherwise use the default dev setup.
	config, err := LoadConfig(configPath, prod)
	if err != nil {
		return err
	}

	logger, err := newLogger(config.IsProd())
	if err != nil {
		return err
	}
	defer logger.Sync()
	undo := zap.ReplaceGlobals(logger)
	defer undo()

	// Open a database connection.
	dbConfig := config.Database
	db := database.NewDB(dbConfig.Dialect, dbConfig.ConnectionInfo())
	if err := database.Open(db, config.IsProd()); err != nil {
		return err
	}
	defer database.Close(db)

	// Start the crud services.
	services, err := crud.NewServices(
		db.Gorm,
		crud.WithUser(config.Pepper, config.HMACKey),
		crud.WithGroup(),
		crud.WithPost(),
		crud.WithComment(),
		crud.WithFollow(),
		crud.WithFeed(),
	)
	if err != nil {
		return err
	}
	return fn(&app{config: config, logger: logger, db: db, services: services})
}

func newLogger(isProd bool) (*zap.Logger, error) {
	if isProd {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// serve migrates the database and serves the app until it gets interrupted.
func serve(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		if err := database.AutoMigrate(a.db); err != nil {
			return err
		}
		server := http.NewServer(http.Config{
			IsProd:   a.config.IsProd(),
			CSRFKey:  a.config.CSRFKey,
			PageSize: a.config.PageSize,
		}, a.services, a.logger)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return server.Run(ctx, a.config.Port)
	})
}
