package main

import (
	"chat-relay/ai"
	"chat-relay/auth"
	"chat-relay/contract"
	"chat-relay/errors"
	"chat-relay/infrastructure/web"
	"chat-relay/internal"
	"chat-relay/moderation"
	"chat-relay/observability"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/services"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Relay terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component and blocks until SIGINT/SIGTERM.
// Deferred closes run before main calls os.Exit.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, err
	}
	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Message store
	store, closeStore, err := openStore(ctx, config, logger)
	if err != nil {
		return exitRuntime, err
	}
	defer closeStore()

	// 3. Recommendation indexes
	documents := repositories.NewDocumentRepository(config.BlugeFilepath, config.SearchSize, logger)
	defer func() {
		logger.Info("Closing Bluge...")
		_ = documents.Close()
	}()

	// 4. Moderation
	censored := config.CensoredList()
	if config.CensoredDir != "" {
		dictionary, err := moderation.LoadDictionary(os.DirFS(config.CensoredDir), ".")
		if err != nil {
			return exitConfig, fmt.Errorf("censored dictionary: %w", err)
		}
		logger.Info("Censored dictionary loaded", "languages", dictionary.Languages, "words", len(dictionary.Words))
		censored = append(censored, dictionary.Words...)
	}
	moderator, err := moderation.NewModerator(censored, charReplacement, logger)
	if err != nil {
		return exitRuntime, fmt.Errorf("moderator init failed: %w", err)
	}

	// 5. Room
	settings := runtime.Settings{
		LowThreshold:    config.LowThreshold,
		HighThreshold:   config.HighThreshold,
		Cooldown:        config.Cooldown,
		MaxSources:      config.MaxSources,
		IndexName:       config.RecommendIndex,
		SystemSender:    config.SystemSender,
		DefaultLanguage: config.DefaultLanguage,
		SendTimeout:     config.SendTimeout,
	}
	manager := runtime.NewBroadcastManager(logger, runtime.NewRegistry(), store,
		buildSummarizer(config, logger), documents, settings)
	monitoring := observability.NewMonitoringManager(logger, manager)
	chatService := services.NewChatService(logger, manager, monitoring, moderator, config.MaxMessageLength)

	tokens := auth.NewTokenIssuer(config.JWTSecret, config.AuthTokenDuration)
	server := web.NewServer(logger, chatService, tokens, config.AuthTokenDuration, int64(config.MaxMessageLength)*4+1024)

	// 6. Supervision
	sup := workers.NewSupervisor(logger, config.RestartInterval)
	sup.Add(
		workers.NewHTTPServerWorker(logger, fmt.Sprintf("%s:%d", config.Host, config.Port), server.Handler()),
		workers.NewHealthWorker(logger, fmt.Sprintf("%s:%d", config.Host, config.HealthPort)),
		workers.NewStatusWorker(logger, monitoring, config.StatusInterval),
	)

	logger.Info("Starting relay", "port", config.Port, "store", config.StoreBackend, "index", config.RecommendIndex)
	sup.Run(ctx)

	logger.Info("Program stopped cleanly")
	return exitOK, nil
}

func openStore(ctx context.Context, config internal.Config, logger *slog.Logger) (contract.MessageStore, func(), error) {
	switch config.StoreBackend {
	case internal.StoreBadger:
		db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
		if err != nil {
			return nil, nil, fmt.Errorf("database opening failed: %w", err)
		}
		repository, err := repositories.NewMessageRepository(db, logger)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		if logger.Enabled(ctx, slog.LevelDebug) {
			endpoint := "/inspect"
			logger.Info("Debug Badger inspector available", "url", fmt.Sprintf("http://localhost:%d%s", config.DebugPort, endpoint))
			database.StartDebugServer(db, config.DebugPort, endpoint, MessageMapper)
		}
		return repository, func() {
			logger.Info("Closing BadgerDB...")
			_ = repository.Close()
			_ = db.Close()
		}, nil
	case internal.StoreMongo:
		client, coll, err := repositories.OpenMongo(ctx, config.MongoURI, config.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		return repositories.NewMongoMessageRepository(coll, logger), func() {
			logger.Info("Closing MongoDB...")
			_ = client.Disconnect(context.Background())
		}, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", errors.ErrUnknownStoreBackend, config.StoreBackend)
	}
}

func buildSummarizer(config internal.Config, logger *slog.Logger) contract.Summarizer {
	if config.OpenAIAPIKey == "" {
		logger.Warn("OPENAI_API_KEY not set, falling back to the extractive summarizer")
		return ai.NewHeuristicSummarizer(config.SummaryMaxWords)
	}
	return ai.NewOpenAISummarizer(logger, config.OpenAIAPIKey, config.OpenAIBaseURL, config.OpenAIModel, config.SummaryMaxWords)
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.INFO)
	}

	return options
}

// MessageMapper renders a pending message in the debug inspector.
func MessageMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)

	message, err := repositories.DecodeMessage(val)
	if err != nil {
		row.Detail = "Error: unmarshal failed"
		return row
	}
	row.Type = "CHAT"
	row.Detail = fmt.Sprintf("%s: %s", message.Sender, message.Body)
	return row
}
