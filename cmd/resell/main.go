package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/phoneman1224/ebay-resell-ui/internal/api"
	"github.com/phoneman1224/ebay-resell-ui/internal/auth"
	"github.com/phoneman1224/ebay-resell-ui/internal/blob"
	"github.com/phoneman1224/ebay-resell-ui/internal/config"
	"github.com/phoneman1224/ebay-resell-ui/internal/db"
	"github.com/phoneman1224/ebay-resell-ui/internal/idempotency"
	"github.com/phoneman1224/ebay-resell-ui/internal/web"
)

const usage = `Usage: resell [flags]
       resell hash-token [token]

Flags:
  -a, -addr <host:port>   listen address (default: ADDR or :8080)
  -d, -db <path>          SQLite database path (default: DB_PATH or resell.sqlite3)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -h, -help               show this help and exit

Commands:
  hash-token [token]      print a bcrypt hash for OWNER_TOKEN_HASH; a random
                          token is generated and printed when none is given
`

func main() {
	if len(os.Args) > 1 && os.Args[1] == "hash-token" {
		if err := hashToken(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fs := flag.NewFlagSet("resell", flag.ContinueOnError)

	var addr string
	fs.StringVar(&addr, "addr", "", "")
	fs.StringVar(&addr, "a", "", "")

	var dbPath string
	fs.StringVar(&dbPath, "db", "", "")
	fs.StringVar(&dbPath, "d", "", "")

	var logPath string
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")

	fs.Usage = func() { fmt.Fprint(os.Stdout, usage) }

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if addr != "" {
		cfg.Addr = addr
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid config: %v\n", err)
		os.Exit(1)
	}

	closeLog, err := setupLogger(cfg.LogLevel, cfg.LogFormat, logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("server exited")
		if closeLog != nil {
			closeLog()
		}
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	log.Info().Str("path", cfg.DBPath).Msg("database ready")

	blobs, closeBlobs, err := openBlobs(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeBlobs()

	dedup, closeDedup, err := openIdempotency(ctx, cfg, database)
	if err != nil {
		return err
	}
	defer closeDedup()

	gate := auth.NewGate(cfg.OwnerToken, cfg.OwnerTokenHash, cfg.AcceptLegacyTokenHeader)
	if !gate.Enabled() {
		log.Warn().Msg("no OWNER_TOKEN or OWNER_TOKEN_HASH set; owner-only routes are open")
	}

	apiRouter := api.NewRouter(api.Options{
		DB:             database,
		Blobs:          blobs,
		Gate:           gate,
		Idempotency:    dedup,
		AllowedOrigin:  cfg.AllowedOrigin,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	// API routes take priority, the UI handles the rest.
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", web.NewRouter())

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		defer close(done)
		sig := <-quit
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("server forced to shutdown")
		}
	}()

	log.Info().Str("addr", cfg.Addr).Str("env", cfg.Env).Msg("server started")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}
	<-done

	log.Info().Msg("server stopped, closing database")
	return nil
}

// openBlobs builds the configured photo store.
func openBlobs(ctx context.Context, cfg *config.Config) (blob.Store, func(), error) {
	switch cfg.BlobBackend {
	case config.BlobBackendGCS:
		gcs, err := blob.NewGCS(ctx, cfg.GCSBucket, cfg.GCSCredentialsJSON)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("bucket", cfg.GCSBucket).Msg("using GCS blob store")
		return gcs, func() { gcs.Close() }, nil
	default:
		fs, err := blob.NewFS(cfg.BlobDir)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("dir", cfg.BlobDir).Msg("using filesystem blob store")
		return fs, func() {}, nil
	}
}

// openIdempotency uses Redis when REDIS_URL is set and the database
// otherwise.
func openIdempotency(ctx context.Context, cfg *config.Config, database *sql.DB) (idempotency.Store, func(), error) {
	if cfg.RedisURL == "" {
		return idempotency.NewSQLStore(database, cfg.IdempotencyTTL), func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("connecting to redis: %w", err)
	}
	log.Info().Str("addr", opts.Addr).Msg("using redis idempotency store")
	return idempotency.NewRedisStore(rdb, cfg.IdempotencyTTL), func() { rdb.Close() }, nil
}

// hashToken prints a bcrypt hash of the given or a freshly generated token.
func hashToken(args []string) error {
	if len(args) > 1 {
		return errors.New("usage: resell hash-token [token]")
	}

	var token string
	if len(args) == 1 {
		token = args[0]
	} else {
		generated, err := auth.GenerateToken()
		if err != nil {
			return err
		}
		token = generated
		fmt.Printf("Token: %s\n", token)
	}

	hash, err := auth.HashToken(token)
	if err != nil {
		return err
	}
	fmt.Printf("OWNER_TOKEN_HASH=%s\n", hash)
	return nil
}
