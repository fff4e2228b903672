package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	todo "github.com/sicko7947/todo-go"
	"github.com/sicko7947/todo-go/config"
	"github.com/sicko7947/todo-go/server"
	"github.com/sicko7947/todo-go/service"
	"github.com/sicko7947/todo-go/store"
)

// tableWait bounds how long startup waits for a new DynamoDB table to become active
const tableWait = 2 * time.Minute

// newLogger builds the process logger from the log settings
func newLogger(cfg *config.Config, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if strings.EqualFold(cfg.LogFormat, "json") {
		return zerolog.New(out).With().Timestamp().Logger().Level(level)
	}

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger().Level(level)
}

// openStore creates the configured backend and its table.
// The returned closer releases backend resources.
func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (todo.TodoStore, func() error, error) {
	backend := cfg.BackendKind()
	noop := func() error { return nil }

	switch backend {
	case todo.BackendMemory:
		todo.LogStoreOpened(logger, backend, "process memory")
		return store.NewMemoryStore(), noop, nil

	case todo.BackendSQLite, todo.BackendMySQL:
		s, err := store.OpenSQLStore(ctx, backend, cfg.DSN, cfg.Table, cfg.PoolLimits())
		if err != nil {
			return nil, nil, err
		}
		todo.LogStoreOpened(logger, backend, cfg.Table)
		return s, s.Close, nil

	case todo.BackendDynamoDB:
		var opts []func(*awsconfig.LoadOptions) error
		if cfg.DynamoDB.Region != "" {
			opts = append(opts, awsconfig.WithRegion(cfg.DynamoDB.Region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load AWS config: %w", err)
		}

		client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			if cfg.DynamoDB.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.DynamoDB.Endpoint)
			}
		})

		if err := store.EnsureDynamoDBTable(ctx, client, cfg.DynamoDB.Table, tableWait); err != nil {
			return nil, nil, err
		}
		todo.LogStoreOpened(logger, backend, cfg.DynamoDB.Table)
		return store.NewDynamoDBStore(client, cfg.DynamoDB.Table), noop, nil

	default:
		return nil, nil, fmt.Errorf("unsupported backend %q", backend)
	}
}

func main() {
	cfg, err := config.Load(flag.NewFlagSet(os.Args[0], flag.ExitOnError), os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "todo-server: %v\n", err)
		os.Exit(2)
	}

	log.Logger = newLogger(cfg, os.Stdout)
	backend := cfg.BackendKind()

	ctx, cancel := context.WithTimeout(context.Background(), tableWait+30*time.Second)
	todoStore, closeStore, err := openStore(ctx, cfg, todo.BackendLogger(log.Logger, backend))
	cancel()
	if err != nil {
		log.Fatal().Err(err).Str("backend", backend.String()).Msg("Failed to open store")
	}

	svc := service.NewService(todoStore, service.WithLogger(todo.BackendLogger(log.Logger, backend)))
	app := server.NewApp(svc,
		server.WithLogger(log.Logger),
		server.WithBackend(backend),
		server.WithCORSOrigins(cfg.CORSOrigins),
	)

	// Start server in a goroutine
	go func() {
		log.Info().Str("address", cfg.Addr).Str("backend", backend.String()).Msg("Starting HTTP server")
		if err := app.Listen(cfg.Addr, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout.Duration); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := closeStore(); err != nil {
		log.Error().Err(err).Msg("Failed to close store")
	}

	log.Info().Msg("Server stopped")
}
