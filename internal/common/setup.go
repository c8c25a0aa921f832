package common

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"loopwise-go/internal/api"
	"loopwise-go/internal/assistant"
	"loopwise-go/internal/circle"
	"loopwise-go/internal/database"
	"loopwise-go/internal/eventbus"
	"loopwise-go/internal/formance"
	"loopwise-go/internal/mockapi"
	"loopwise-go/internal/models"
	"loopwise-go/internal/prime"
	"loopwise-go/internal/redisstore"
	"loopwise-go/internal/store"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Environment variables can also be set via shell export, docker, etc.
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
		log.Println("Make sure to set environment variables via export or other means")
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

type Services struct {
	Controller  *api.Controller
	Preferences store.PreferenceStore
	Journal     store.TransferJournal
	Rail        store.TransferRail
	Ledger      *formance.Service
	Bus         *eventbus.Bus

	closers []func()
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	return installLogger(logger)
}

// InitializeFileLogger sends log output to path instead of stderr, for
// binaries that own the terminal.
func InitializeFileLogger(path string) (*zap.Logger, func()) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	logger, err := cfg.Build()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	return installLogger(logger)
}

func installLogger(logger *zap.Logger) (*zap.Logger, func()) {
	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

// InitializeServices wires the storage backends, the transfer rail, the
// optional ledger mirror and the assistant into a Controller. A rail whose
// credentials are missing is logged and left out; sends then fail with
// api.ErrNoTransferRail.
func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	s := &Services{Bus: eventbus.New(0)}

	if err := s.initStores(ctx, cfg); err != nil {
		s.Close()
		return nil, err
	}

	httpClient, err := NewHttpClient()
	if err != nil {
		s.Close()
		return nil, err
	}

	rail, err := newRail(ctx, cfg, httpClient)
	switch {
	case errors.Is(err, circle.ErrMissingAPIKey), errors.Is(err, prime.ErrMissingCredentials):
		zap.L().Warn("Transfer rail disabled", zap.String("rail", cfg.Rail), zap.Error(err))
	case err != nil:
		s.Close()
		return nil, err
	default:
		s.Rail = rail
	}

	deps := api.Deps{
		Preferences: s.Preferences,
		Journal:     s.Journal,
		Rail:        s.Rail,
		Bus:         s.Bus,
	}

	if cfg.Formance.Enabled {
		zap.L().Info("Connecting ledger mirror", zap.String("ledger", cfg.Formance.LedgerName))
		ledger, err := formance.NewService(ctx, cfg.Formance)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.Ledger = ledger
		s.closers = append(s.closers, ledger.Close)
		deps.Mirror = ledger
	}

	var completer assistant.Completer
	if cfg.Assistant.APIKey != "" {
		c, err := assistant.NewOpenAICompleter(cfg.Assistant, httpClient)
		if err != nil {
			s.Close()
			return nil, err
		}
		completer = c
	} else {
		zap.L().Info("Assistant API key not set, chat will answer offline")
	}

	backend, err := mockapi.NewService(cfg.Mock, assistant.NewService(completer))
	if err != nil {
		s.Close()
		return nil, err
	}
	deps.Backend = backend

	controller, err := api.NewController(ctx, deps)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Controller = controller
	return s, nil
}

func (s *Services) initStores(ctx context.Context, cfg *models.Config) error {
	namespace := cfg.Preferences.Namespace

	switch cfg.Preferences.Backend {
	case "sqlite":
		db, err := database.NewService(ctx, cfg.Database, namespace)
		if err != nil {
			return err
		}
		s.closers = append(s.closers, db.Close)
		s.Preferences = db
		s.Journal = db
		return nil
	case "redis":
		rdb, err := redisstore.NewService(ctx, cfg.Redis, namespace)
		if err != nil {
			return err
		}
		s.closers = append(s.closers, rdb.Close)
		s.Preferences = rdb
	case "memory":
		s.Preferences = store.NewMemoryPreferenceStore()
	default:
		return fmt.Errorf("unknown preferences backend %q", cfg.Preferences.Backend)
	}

	s.Journal = store.NewMemoryTransferJournal()
	return nil
}

func newRail(ctx context.Context, cfg *models.Config, httpClient *http.Client) (store.TransferRail, error) {
	switch cfg.Rail {
	case "prime":
		zap.L().Info("Loading Prime API credentials")
		return prime.NewService(ctx, cfg.Prime, httpClient)
	case "circle", "":
		return circle.NewService(cfg.Circle, httpClient)
	default:
		return nil, fmt.Errorf("unknown transfer rail %q", cfg.Rail)
	}
}

func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
