package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dharmapatha/portal/internal/auth"
	"github.com/dharmapatha/portal/internal/handler"
	appI18n "github.com/dharmapatha/portal/internal/i18n"
	"github.com/dharmapatha/portal/internal/media"
	"github.com/dharmapatha/portal/internal/metrics"
	"github.com/dharmapatha/portal/internal/model"
	"github.com/dharmapatha/portal/internal/stats"
	"github.com/dharmapatha/portal/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dharmapatha",
		Short: "Career guidance portal with readiness assessments",
	}

	serve := serveCmd()
	root.AddCommand(serve, exportCmd(), grantAdminCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `dharmapatha --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func addCommonFlags(f *pflag.FlagSet) {
	f.String("db-driver", store.DriverSQLite, "Database driver (sqlite, postgres)")
	f.String("db", "dharmapatha.db", "SQLite database path or PostgreSQL connection string")
	f.String("env-file", ".env", "Environment file loaded before reading configuration")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	f.String("log-file", "", "Also write logs to this file, rotated by size")
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	addCommonFlags(f)
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("base-path", "", "URL prefix for sub-path deployments (e.g. /karir)")
	f.Bool("secure-cookies", true, "Set Secure flag on cookies")
	f.Int("rate-limit", 20, "Sign-in and assessment submissions per minute per client IP, counted separately (0 disables)")
	f.String("media-backend", "local", "Image storage backend (local, minio)")
	f.String("media-dir", "media", "Directory for uploaded images (local backend)")
	f.String("minio-endpoint", "localhost:9000", "MinIO endpoint host:port")
	f.String("minio-access-key", "", "MinIO access key")
	f.String("minio-secret-key", "", "MinIO secret key")
	f.String("minio-bucket", "career-guides", "MinIO bucket for guide images")
	f.Bool("minio-use-ssl", false, "Use TLS for MinIO")
	f.String("minio-public-url", "", "Public base URL of the bucket (default derived from endpoint)")
	f.String("metrics-token", "", "Bearer token for scraping /metrics without an admin session (or set DHARMAPATHA_METRICS_TOKEN)")
	f.String("admin-email", "", "Initial administrator email (or set DHARMAPATHA_ADMIN_EMAIL)")
	f.String("admin-password", "", "Initial administrator password (or set DHARMAPATHA_ADMIN_PASSWORD)")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export submitted assessments with statistics as JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	addCommonFlags(f)
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	return cmd
}

func grantAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grant-admin",
		Short: "Grant the admin role to a registered user",
		RunE:  runGrantAdmin,
	}
	f := cmd.Flags()
	addCommonFlags(f)
	f.String("email", "", "Email of the user to promote (required)")
	f.Bool("revoke", false, "Revoke the admin role instead")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// setupLogging installs the default slog logger. The returned function closes
// the log file, if any.
func setupLogging(v *viper.Viper) func() {
	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	var out io.Writer = os.Stderr
	closeFn := func() {}
	if path := v.GetString("log-file"); path != "" {
		lj := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
		out = io.MultiWriter(os.Stderr, lj)
		closeFn = func() { _ = lj.Close() }
	}

	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(out, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(out, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
	return closeFn
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
// Variables from the env file are loaded first; they never override the
// process environment.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	if envFile, _ := cmd.Flags().GetString("env-file"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("error reading env file", "path", envFile, "error", err)
		}
	}

	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("DHARMAPATHA")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("dharmapatha")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/dharmapatha")
	v.AddConfigPath("/etc/dharmapatha")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func openStore(v *viper.Viper) (*store.Store, error) {
	db, err := store.New(v.GetString("db-driver"), v.GetString("db"))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

func openMedia(ctx context.Context, v *viper.Viper, basePath string) (media.Store, error) {
	switch backend := strings.ToLower(v.GetString("media-backend")); backend {
	case "", "local":
		return media.NewLocal(v.GetString("media-dir"), basePath+"/media")
	case "minio":
		m, err := media.NewMinIO(media.MinIOConfig{
			Endpoint:  v.GetString("minio-endpoint"),
			AccessKey: v.GetString("minio-access-key"),
			SecretKey: v.GetString("minio-secret-key"),
			Bucket:    v.GetString("minio-bucket"),
			UseSSL:    v.GetBool("minio-use-ssl"),
			PublicURL: v.GetString("minio-public-url"),
		})
		if err != nil {
			return nil, err
		}
		if err := m.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("ensure bucket: %w", err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown media backend %q", backend)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	defer setupLogging(v)()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openStore(v)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := seedAdmin(ctx, db, v.GetString("admin-email"), v.GetString("admin-password")); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	if err := appI18n.Init(appI18n.DefaultLang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	// Normalize base path.
	basePath := strings.TrimRight(v.GetString("base-path"), "/")
	if basePath != "" && !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}

	images, err := openMedia(ctx, v, basePath)
	if err != nil {
		return fmt.Errorf("open media store: %w", err)
	}

	cfg := model.SiteConfig{
		BasePath:      basePath,
		SecureCookies: v.GetBool("secure-cookies"),
		RateLimit:     v.GetInt("rate-limit"),
		MetricsToken:  v.GetString("metrics-token"),
	}
	h := handler.New(db, images, metrics.New(), cfg)
	h.Start(ctx)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(appI18n.DefaultLang))

	if basePath != "" {
		r.Route(basePath, func(sub chi.Router) {
			sub.Use(h.BasePathMiddleware)
			h.Routes(sub)
		})
		r.Get(basePath, func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, basePath+"/", http.StatusMovedPermanently)
		})
	} else {
		r.Use(h.BasePathMiddleware)
		h.Routes(r)
	}

	addr := v.GetString("addr")
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			"addr", addr,
			"db_driver", v.GetString("db-driver"),
			"media_backend", v.GetString("media-backend"),
			"base_path", basePath,
			"rate_limit", cfg.RateLimit,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runExport(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	defer setupLogging(v)()
	ctx := context.Background()

	db, err := openStore(v)
	if err != nil {
		return err
	}
	defer db.Close()

	results, err := db.ExportAssessments(ctx)
	if err != nil {
		return fmt.Errorf("export assessments: %w", err)
	}
	records, err := db.ListAssessments(ctx)
	if err != nil {
		return fmt.Errorf("list assessments: %w", err)
	}

	now := time.Now().UTC()
	export := model.AssessmentExport{
		GeneratedAt: now,
		Total:       len(results),
		Statistics:  stats.Aggregate(records, now),
		Results:     results,
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Ensure trailing newline.
	_, _ = fmt.Fprintln(w)

	slog.Info("exported assessments", "count", len(results), "output", outPath)
	return nil
}

func runGrantAdmin(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	defer setupLogging(v)()
	ctx := context.Background()

	db, err := openStore(v)
	if err != nil {
		return err
	}
	defer db.Close()

	email := store.NormalizeEmail(v.GetString("email"))
	u, err := db.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("look up user: %w", err)
	}
	if u == nil {
		return fmt.Errorf("no user registered with email %q", email)
	}

	if v.GetBool("revoke") {
		if err := db.RevokeRole(ctx, u.ID, model.RoleAdmin); err != nil {
			return fmt.Errorf("revoke admin: %w", err)
		}
		slog.Info("revoked admin role", "email", email)
		return nil
	}
	if err := db.GrantRole(ctx, u.ID, model.RoleAdmin); err != nil {
		return fmt.Errorf("grant admin: %w", err)
	}
	slog.Info("granted admin role", "email", email)
	return nil
}

// seedAdmin makes sure an administrator exists when none has been granted yet.
// An existing account with the given email is promoted instead of recreated.
func seedAdmin(ctx context.Context, db *store.Store, email, password string) error {
	email = store.NormalizeEmail(email)
	count, err := db.CountRole(ctx, model.RoleAdmin)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if email == "" {
		slog.Warn("no administrator configured: set --admin-email or run grant-admin")
		return nil
	}

	u, err := db.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u == nil {
		if password == "" {
			return errors.New("admin password is required: set --admin-password flag or DHARMAPATHA_ADMIN_PASSWORD env var")
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		created, err := db.CreateUser(ctx, model.User{Email: email, PasswordHash: hash}, "Administrator")
		if err != nil {
			return fmt.Errorf("create admin user: %w", err)
		}
		u = &created
	}

	if err := db.GrantRole(ctx, u.ID, model.RoleAdmin); err != nil {
		return fmt.Errorf("grant admin role: %w", err)
	}
	slog.Info("seeded administrator", "email", u.Email)
	return nil
}
