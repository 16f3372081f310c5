package builder

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/futig/chatbot-backend/internal/api"
	chatapi "github.com/futig/chatbot-backend/internal/api/chat"
	"github.com/futig/chatbot-backend/internal/config"
	"github.com/futig/chatbot-backend/internal/entity"
	"github.com/futig/chatbot-backend/internal/ingest"
	"github.com/futig/chatbot-backend/internal/integration/embedding"
	"github.com/futig/chatbot-backend/internal/integration/generator"
	"github.com/futig/chatbot-backend/internal/pkg/rerank"
	"github.com/futig/chatbot-backend/internal/pkg/spell"
	"github.com/futig/chatbot-backend/internal/pkg/validator"
	"github.com/futig/chatbot-backend/internal/repl"
	"github.com/futig/chatbot-backend/internal/repository"
	"github.com/futig/chatbot-backend/internal/session"
	chatuc "github.com/futig/chatbot-backend/internal/usecase/chat"
	"github.com/futig/chatbot-backend/internal/usecase/retrieval"
	"github.com/futig/chatbot-backend/internal/vectorstore"
)

// core bundles the components shared by the HTTP server, the REPL, and
// the indexer.
type core struct {
	chatUC   *chatuc.Usecase
	sessions *session.Manager
	embedder embedding.Embedder
	index    vectorIndex
	db       *pgxpool.Pool
}

type vectorIndex interface {
	Search(ctx context.Context, query string, k int) ([]entity.ScoredChunk, error)
	Upsert(ctx context.Context, chunks []entity.Chunk, vectors [][]float32) error
	Count(ctx context.Context) (int, error)
}

// Build assembles the HTTP server application
func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	c, err := buildCore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	chatValidator := validator.NewChatValidator(cfg.ChatCfg)
	chatHandler := chatapi.NewHandler(c.chatUC, c.sessions, chatValidator)
	logger.Info("API handlers initialized")

	router := api.SetupRouter(chatHandler, logger)
	logger.Info("HTTP router configured")

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		db:     c.db,
		logger: logger,
	}, nil
}

// BuildREPL assembles the interactive console loop
func BuildREPL() (*repl.REPL, *zap.Logger, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building REPL", zap.String("environment", cfg.Environment))

	c, err := buildCore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	return repl.New(c.chatUC, c.sessions, os.Stdin, os.Stdout, logger), logger, nil
}

// BuildIndexer assembles the document ingestion pipeline
func BuildIndexer() (*ingest.Pipeline, *config.Config, *zap.Logger, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building indexer",
		zap.String("environment", cfg.Environment),
		zap.String("data_dir", cfg.DataDir),
	)

	c, err := buildCore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	return ingest.NewPipeline(c.embedder, c.index, logger), cfg, logger, nil
}

func buildCore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*core, error) {
	corrector, err := spell.New(spell.Config{
		DictionaryPath:  cfg.SpellCfg.DictionaryPath,
		MaxEditDistance: cfg.SpellCfg.MaxEditDistance,
		PrefixLength:    cfg.SpellCfg.PrefixLength,
		Whitelist:       cfg.WhitelistTerms,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("load spelling dictionary: %w", err)
	}
	logger.Info("Spelling corrector initialized")

	// External service connectors (with mock support)
	var embedder embedding.Embedder
	var gen chatuc.Generator

	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")
		embedder = embedding.NewMockConnector(logger)
		gen = generator.NewMockConnector()
	} else {
		logger.Info("Using real connectors for external services")
		embedder = embedding.NewCached(
			embedding.NewConnector(cfg.EmbeddingCfg, logger),
			cfg.EmbeddingCfg.CacheTTL,
		)
		gen = generator.NewConnector(cfg.GeneratorCfg, logger)
	}

	var db *pgxpool.Pool
	var index vectorIndex
	var convLog chatuc.ConversationLog

	if cfg.DatabaseURL != "" {
		db, err = setupDatabase(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("setup database: %w", err)
		}

		logger.Info("Running database migrations")
		if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
			db.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("Database migrations completed successfully")

		index = vectorstore.NewPgvector(repository.NewChunkPostgres(db), embedder, logger)
		convLog = repository.NewMessagePostgres(db)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory vector index without a persistent conversation log")
		index = vectorstore.NewMemory(embedder)
	}

	sessions := session.NewManager(cfg.SessionTTL)

	retrievalUC := retrieval.NewUsecase(
		index,
		embedder,
		rerank.Weights{
			Semantic: cfg.RerankCfg.SemanticWeight,
			Lexical:  cfg.RerankCfg.LexicalWeight,
		},
		cfg.RerankCfg.MinScore,
		logger,
	)

	chatUC := chatuc.NewUsecase(
		corrector,
		retrievalUC,
		gen,
		sessions,
		convLog,
		chatuc.Config{
			SearchK:      cfg.ChatCfg.SearchK,
			TopN:         cfg.ChatCfg.TopN,
			HistoryLimit: cfg.ChatCfg.HistoryLimit,
			Predefined:   cfg.PredefinedAnswers,
		},
		logger,
	)
	logger.Info("Use cases initialized")

	return &core{
		chatUC:   chatUC,
		sessions: sessions,
		embedder: embedder,
		index:    index,
		db:       db,
	}, nil
}
