package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/shivam-website/gold-shop/internal/api"
	"github.com/shivam-website/gold-shop/internal/db"
	"github.com/shivam-website/gold-shop/internal/model"
	"github.com/shivam-website/gold-shop/internal/photos"
	"github.com/shivam-website/gold-shop/internal/store"
)

// levelRouter is a slog.Handler that routes INFO/WARN to stdout and ERROR+ to stderr.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging. INFO/WARN go to stdout, ERROR goes
// to stderr. If logPath is non-empty, all levels are also written to that file.
// Returns a cleanup function that closes the log file (if opened).
func setupLogger(logPath string) (func(), error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var cleanup func()

	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	handler := &levelRouter{
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

func usage() {
	fmt.Fprint(os.Stdout, `Usage: goldshop <command> [flags]

Commands:
  init          create the database and the first admin account
  serve         run the HTTP server
  create-admin  add an admin account to an existing database
  create-shop   add a shopkeeper account to an existing database

Run 'goldshop <command> -h' for command flags.

Admin bootstrap reads ADMIN_USERNAME, ADMIN_PASSWORD and ADMIN_SHOP from the
environment (or a .env file); flags take precedence.
`)
}

func main() {
	// Missing .env is fine, the environment alone is enough.
	godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "init":
		err = runInit(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	case "create-admin":
		err = runCreateAccount(os.Args[2:], "create-admin", model.RoleAdmin)
	case "create-shop":
		err = runCreateAccount(os.Args[2:], "create-shop", model.RoleShopkeeper)
	case "-h", "-help", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}
	if err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// openDatabase opens the SQLite file and makes sure the schema exists.
func openDatabase(path string) (*sql.DB, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.EnsureSchema(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}
	return database, nil
}

// runInit creates the database file and the first admin account.
func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	dbPath := fs.String("db", "goldshop.sqlite3", "SQLite database path")
	username := fs.String("user", envOr("ADMIN_USERNAME", "admin"), "admin username")
	password := fs.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password (generated if empty)")
	shopName := fs.String("shop", envOr("ADMIN_SHOP", "Head Office"), "shop name shown for the admin account")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := os.Stat(*dbPath); err == nil {
		return fmt.Errorf("database %s already exists", *dbPath)
	}

	database, err := openDatabase(*dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	pass, generated, err := createAccount(database, *shopName, *username, *password, model.RoleAdmin)
	if err != nil {
		database.Close()
		os.Remove(*dbPath)
		return err
	}

	fmt.Printf("Database created: %s\n", *dbPath)
	fmt.Println()
	fmt.Println("Admin account created:")
	fmt.Printf("  Username: %s\n", *username)
	fmt.Printf("  Password: %s\n", pass)
	if generated {
		fmt.Println()
		fmt.Println("Save this password, it cannot be recovered.")
		fmt.Println("The admin can change it after logging in.")
	}
	return nil
}

// runCreateAccount adds an account to an existing database. Used by both
// create-admin and create-shop.
func runCreateAccount(args []string, name, role string) error {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	dbPath := fs.String("db", "goldshop.sqlite3", "SQLite database path")
	username := fs.String("user", "", "account username (required)")
	password := fs.String("password", "", "account password (generated if empty)")
	shopName := fs.String("shop", "", "shop name (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if role == model.RoleAdmin {
		if *username == "" {
			*username = os.Getenv("ADMIN_USERNAME")
		}
		if *password == "" {
			*password = os.Getenv("ADMIN_PASSWORD")
		}
		if *shopName == "" {
			*shopName = envOr("ADMIN_SHOP", "Head Office")
		}
	}
	if *username == "" {
		return fmt.Errorf("-user is required")
	}
	if *shopName == "" {
		return fmt.Errorf("-shop is required")
	}

	database, err := openDatabase(*dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	pass, generated, err := createAccount(database, *shopName, *username, *password, role)
	if err != nil {
		return err
	}

	fmt.Printf("Account created: %s (%s)\n", *username, role)
	fmt.Printf("  Shop: %s\n", *shopName)
	if generated {
		fmt.Printf("  Password: %s\n", pass)
		fmt.Println()
		fmt.Println("Save this password, it cannot be recovered.")
	}
	return nil
}

// createAccount hashes the password (generating one when empty) and inserts
// the account. Reports whether the password was generated.
func createAccount(database *sql.DB, shopName, username, password, role string) (string, bool, error) {
	generated := false
	if password == "" {
		var err error
		password, err = generatePassword(16)
		if err != nil {
			return "", false, fmt.Errorf("generating password: %w", err)
		}
		generated = true
	}
	if err := model.ValidatePassword(password); err != nil {
		return "", false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", false, fmt.Errorf("hashing password: %w", err)
	}

	_, err = store.CreateAccount(context.Background(), database, shopName, username, string(hash), role)
	if err == store.ErrUsernameTaken {
		return "", false, fmt.Errorf("username %q already exists", username)
	}
	if err != nil {
		return "", false, fmt.Errorf("creating account: %w", err)
	}
	return password, generated, nil
}

// runServe starts the HTTP server, initializing the database on first run.
func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	dbPath := fs.String("db", "goldshop.sqlite3", "SQLite database path")
	addr := fs.String("addr", ":8080", "listen address")
	photosDir := fs.String("photos", "photos", "directory for uploaded photos")
	logPath := fs.String("log", "", "log file path (stdout/stderr only if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	closeLog, err := setupLogger(*logPath)
	if err != nil {
		return err
	}
	if closeLog != nil {
		defer closeLog()
	}

	database, err := openDatabase(*dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	slog.Info("database ready", "path", *dbPath)

	// JWT secret lives in the database, generated on first use.
	jwtSecret, err := store.GetJWTSecret(context.Background(), database)
	if err != nil {
		return fmt.Errorf("loading JWT signing secret: %w", err)
	}

	photoStore, err := photos.NewStore(*photosDir)
	if err != nil {
		return fmt.Errorf("setting up photo storage: %w", err)
	}

	handler := api.LoggingMiddleware(api.NewRouter(database, jwtSecret, photoStore))

	server := &http.Server{
		Addr:              *addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", *addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
