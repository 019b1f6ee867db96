package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/erazemk/findmate/internal/api"
	"github.com/erazemk/findmate/internal/auth"
	"github.com/erazemk/findmate/internal/config"
	"github.com/erazemk/findmate/internal/db"
	"github.com/erazemk/findmate/internal/lifecycle"
	"github.com/erazemk/findmate/internal/mail"
	"github.com/erazemk/findmate/internal/metrics"
	"github.com/erazemk/findmate/internal/photo"
	"github.com/erazemk/findmate/internal/store"
	"github.com/erazemk/findmate/internal/telemetry"
	"github.com/erazemk/findmate/internal/web"
	assets "github.com/erazemk/findmate/web"
)

type globalOptions struct {
	dbPath     string
	logPath    string
	envFile    string
	debug      bool
	adminName  string
	adminEmail string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:           "findmate",
		Short:         "Campus lost-and-found service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.PersistentFlags()
	f.StringVarP(&opts.dbPath, "db", "d", "findmate.sqlite3", "SQLite database path")
	f.StringVarP(&opts.logPath, "log", "l", "", "log file path (default: stdout/stderr only)")
	f.StringVar(&opts.envFile, "env-file", "", "dotenv file to load (default: .env if present)")
	f.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	f.StringVar(&opts.adminName, "admin-name", "Admin", "admin display name on first run")
	f.StringVar(&opts.adminEmail, "admin-email", "admin@findmate.local", "admin email on first run")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newInitCommand(opts))
	return cmd
}

func newInitCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database schema and the first admin account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, cleanup, err := newLogger(opts.logPath, opts.debug)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			database, err := openDatabase(ctx, opts.dbPath, log)
			if err != nil {
				return err
			}
			defer database.Close()

			engine := lifecycle.New(store.New(database), lifecycle.Options{Logger: log})
			password, err := engine.EnsureAdmin(ctx, opts.adminName, opts.adminEmail)
			if err != nil {
				return err
			}
			if password == "" {
				fmt.Printf("Database %s already has an admin account.\n", opts.dbPath)
				return nil
			}
			printInitResult(opts.dbPath, opts.adminEmail, password)
			return nil
		},
	}
}

func newServeCommand(opts *globalOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web and API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), opts, addr)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "listen address")
	return cmd
}

func serve(ctx context.Context, opts *globalOptions, addr string) error {
	log, cleanup, err := newLogger(opts.logPath, opts.debug)
	if err != nil {
		return err
	}
	defer cleanup()

	var dotenv []string
	if opts.envFile != "" {
		dotenv = append(dotenv, opts.envFile)
	}
	cfg, err := config.Load(ctx, dotenv...)
	if err != nil {
		return err
	}

	shutdownTracing, err := telemetry.Init(ctx, cfg.OTLPEndpoint, log)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracing shutdown", zap.Error(err))
		}
	}()

	database, err := openDatabase(ctx, opts.dbPath, log)
	if err != nil {
		return err
	}
	defer database.Close()
	st := store.New(database)

	// Load JWT secret from database (auto-generated on first run).
	secret, err := st.GetJWTSecret(ctx)
	if err != nil {
		return fmt.Errorf("getting JWT secret: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	photos, err := newPhotoStore(ctx, cfg, st, log)
	if err != nil {
		return err
	}

	outbox, closeOutbox, err := newOutbox(cfg, log, m)
	if err != nil {
		return err
	}
	defer closeOutbox()

	engine := lifecycle.New(st, lifecycle.Options{
		Photos:   photos,
		Outbox:   outbox,
		Logger:   log,
		Metrics:  m,
		BaseURL:  cfg.BaseURL,
		TokenTTL: cfg.TokenTTL,
	})

	password, err := engine.EnsureAdmin(ctx, opts.adminName, opts.adminEmail)
	if err != nil {
		return err
	}
	if password != "" {
		printInitResult(opts.dbPath, opts.adminEmail, password)
		fmt.Println()
	}

	sessions := &auth.Sessions{Secret: secret, TTL: cfg.SessionTTL, Revoked: st, Users: st}

	apiRouter := api.NewRouter(&api.Handler{
		Engine:         engine,
		Sessions:       sessions,
		Log:            log,
		Metrics:        m,
		LoginRateLimit: cfg.LoginRateLimit,
	})

	templates, err := assets.TemplatesFS()
	if err != nil {
		return err
	}
	static, err := assets.StaticFS()
	if err != nil {
		return err
	}
	webRouter, err := web.NewRouter(web.Options{
		Engine:         engine,
		Sessions:       sessions,
		Photos:         st,
		Templates:      templates,
		Static:         static,
		Logger:         log,
		Metrics:        m,
		Gatherer:       reg,
		CookieSecure:   cfg.CookieSecure,
		LoginRateLimit: cfg.LoginRateLimit,
	})
	if err != nil {
		return fmt.Errorf("setting up web router: %w", err)
	}

	// Combine: API routes take priority, web routes handle the rest.
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	server := &http.Server{
		Addr:              addr,
		Handler:           telemetry.Middleware(telemetry.ServiceName)(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", zap.String("addr", addr), zap.String("base_url", cfg.BaseURL))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-sigCtx.Done():
		log.Info("shutdown signal received")
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(sctx); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
		}
	}

	log.Info("server stopped, draining mail and closing database")
	return nil
}

// openDatabase opens path and applies pending migrations.
func openDatabase(ctx context.Context, path string, log *zap.Logger) (*sql.DB, error) {
	database, err := db.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	version, err := db.Migrate(ctx, database)
	if err != nil {
		database.Close()
		return nil, err
	}
	log.Info("database ready", zap.String("path", path), zap.Int64("schema_version", version))
	return database, nil
}

func newPhotoStore(ctx context.Context, cfg config.Config, st *store.Store, log *zap.Logger) (lifecycle.PhotoStore, error) {
	s3cfg, ok := cfg.S3Config()
	if !ok {
		log.Info("storing photos in the database")
		return photo.NewDBStore(st), nil
	}
	s, err := photo.NewS3Store(ctx, s3cfg)
	if err != nil {
		return nil, fmt.Errorf("setting up photo bucket: %w", err)
	}
	log.Info("storing photos in S3", zap.String("bucket", s3cfg.Bucket))
	return s, nil
}

// newOutbox picks the mail transport. With NATS_URL set, messages go through
// a NATS subject; otherwise an in-process queue delivers them.
func newOutbox(cfg config.Config, log *zap.Logger, m *metrics.Metrics) (mail.Outbox, func(), error) {
	var sender mail.Sender = &mail.LogSender{Log: log}
	if s := cfg.SMTPSender(); s != nil {
		sender = s
	}

	if cfg.NATSURL != "" {
		o, err := mail.NewNATSOutbox(cfg.NATSURL, sender, log, m)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to NATS: %w", err)
		}
		if err := o.Start(); err != nil {
			o.Close()
			return nil, nil, fmt.Errorf("subscribing to mail subject: %w", err)
		}
		return o, o.Close, nil
	}

	q := mail.NewQueue(sender, cfg.MailQueueSize, log, m)
	return q, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := q.Close(ctx); err != nil {
			log.Warn("mail queue not drained", zap.Error(err))
		}
	}, nil
}

// printInitResult prints the generated admin credentials to stdout.
func printInitResult(dbPath, email, password string) {
	fmt.Printf("Database ready: %s\n", dbPath)
	fmt.Println()
	fmt.Println("Admin account created:")
	fmt.Printf("  Email:    %s\n", email)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password. It cannot be recovered.")
	fmt.Println("The admin can change it after logging in.")
}
