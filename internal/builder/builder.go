package builder

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/futig/bms-rag/internal/config"
	"github.com/futig/bms-rag/internal/entity"
	"github.com/futig/bms-rag/internal/integration/embedding"
	"github.com/futig/bms-rag/internal/integration/llm"
	"github.com/futig/bms-rag/internal/pkg/formatter"
	"github.com/futig/bms-rag/internal/pkg/logger"
	"github.com/futig/bms-rag/internal/repository"
	"github.com/futig/bms-rag/internal/usecase/export"
	"github.com/futig/bms-rag/internal/usecase/ingest"
	"github.com/futig/bms-rag/internal/usecase/rag"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Builder wires the components of one process from its configuration
type Builder struct {
	cfg    *config.Config
	logger *zap.Logger
	genai  *genai.Client
	db     *pgxpool.Pool
}

// Index is the populated vector store
type Index struct {
	Store *repository.VectorChromem
	Stats entity.IngestStats
	// Loaded is set when the store came from a snapshot and Stats is unknown
	Loaded bool

	queryEmbedder embedding.Embedder
}

// New loads .env.<environment> and the process environment
func New(environment string) (*Builder, error) {
	cfg, err := config.LoadConfig(environment)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	log.Info("building application",
		zap.String("environment", cfg.Environment),
		zap.Bool("mocks", cfg.EnableMocks),
	)

	return &Builder{cfg: cfg, logger: log}, nil
}

func (b *Builder) Config() *config.Config {
	return b.cfg
}

func (b *Builder) Logger() *zap.Logger {
	return b.logger
}

// Context attaches the application logger to ctx
func (b *Builder) Context(ctx context.Context) context.Context {
	return ctxzap.ToContext(ctx, b.logger)
}

// Close releases the database pool, if one was opened
func (b *Builder) Close() {
	if b.db != nil {
		b.logger.Info("closing database connections")
		b.db.Close()
		b.db = nil
	}
	_ = b.logger.Sync()
}

// BuildIndex restores the store from STORE_SNAPSHOT when it exists, otherwise
// ingests both datasets. fresh skips the snapshot.
func (b *Builder) BuildIndex(ctx context.Context, fresh bool) (*Index, error) {
	docEmbedder, queryEmbedder, err := b.embedders(ctx)
	if err != nil {
		return nil, err
	}

	batch := b.cfg.EmbeddingCfg.BatchSize
	index := &Index{queryEmbedder: queryEmbedder}

	if path := b.cfg.StoreSnapshot; path != "" && !fresh {
		_, statErr := os.Stat(path)
		switch {
		case statErr == nil:
			store, err := repository.LoadVectorChromem(path, docEmbedder, batch, b.logger)
			if err != nil {
				return nil, err
			}
			index.Store = store
			index.Loaded = true
			return index, nil
		case !errors.Is(statErr, fs.ErrNotExist):
			return nil, fmt.Errorf("stat snapshot %s: %w", path, statErr)
		}
		b.logger.Info("snapshot not found, ingesting datasets", zap.String("path", path))
	}

	store, err := repository.NewVectorChromem(docEmbedder, batch, b.logger)
	if err != nil {
		return nil, err
	}

	stats, err := ingest.NewUsecase(b.cfg.DataCfg, store, b.logger).Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}

	index.Store = store
	index.Stats = stats
	return index, nil
}

// BuildRAG assembles the query pipeline over index
func (b *Builder) BuildRAG(ctx context.Context, index *Index) (*rag.RagUsecase, error) {
	generator, err := b.generator(ctx)
	if err != nil {
		return nil, err
	}

	history, err := b.history(ctx)
	if err != nil {
		return nil, err
	}

	b.logger.Info("pipeline ready",
		zap.String("embedder", index.queryEmbedder.Name()),
		zap.Int("documents", index.Store.Count()),
		zap.Int("top_k", b.cfg.TopK),
	)

	return rag.NewUsecase(index.queryEmbedder, index.Store, generator, history, b.cfg.TopK, b.logger), nil
}

// BuildExporter returns the answer exporter for dir, or for EXPORT_OUTPUT_DIR when dir is empty
func (b *Builder) BuildExporter(dir string) (*export.ExportUsecase, error) {
	if dir == "" {
		dir = b.cfg.ExportCfg.OutputDir
	}

	f, err := formatter.NewFactory().Create(b.cfg.ExportCfg.Format)
	if err != nil {
		return nil, err
	}

	return export.NewUsecase(dir, f, b.logger), nil
}

func (b *Builder) embedders(ctx context.Context) (docs, queries embedding.Embedder, err error) {
	emb := b.cfg.EmbeddingCfg

	switch {
	case b.cfg.EnableMocks:
		b.logger.Info("using mock embedder")
		mock := embedding.NewMockConnector(b.logger)
		docs, queries = mock, mock
	case emb.Provider == config.EmbedProviderGenAI:
		client, err := b.genaiClient(ctx)
		if err != nil {
			return nil, nil, err
		}
		docs = embedding.NewGenAIConnector(client, emb, embedding.TaskRetrievalDocument, b.logger)
		queries = embedding.NewGenAIConnector(client, emb, embedding.TaskRetrievalQuery, b.logger)
	case emb.Provider == config.EmbedProviderOllama:
		ollama := embedding.NewOllamaConnector(emb, b.logger)
		docs, queries = ollama, ollama
	default:
		return nil, nil, fmt.Errorf("%w: %s", entity.ErrUnsupportedProvider, emb.Provider)
	}

	return docs, embedding.NewCachedEmbedder(queries, emb.CacheTTL, emb.CacheCleanup), nil
}

func (b *Builder) generator(ctx context.Context) (rag.Generator, error) {
	if b.cfg.EnableMocks {
		b.logger.Info("using mock generator")
		return llm.NewMockConnector(b.logger), nil
	}

	client, err := b.genaiClient(ctx)
	if err != nil {
		return nil, err
	}
	return llm.NewConnector(client, b.cfg.LLMCfg, b.logger), nil
}

func (b *Builder) history(ctx context.Context) (rag.HistoryRepository, error) {
	if b.cfg.HistoryDatabaseURL == "" {
		return repository.NewHistoryMemory(), nil
	}

	if b.db == nil {
		db, err := openHistoryDB(ctx, b.cfg, b.logger)
		if err != nil {
			return nil, err
		}
		b.db = db
	}

	return repository.NewHistoryPostgres(b.db), nil
}

// genaiClient is shared by the generator and the genai embedders
func (b *Builder) genaiClient(ctx context.Context) (*genai.Client, error) {
	if b.genai != nil {
		return b.genai, nil
	}

	if err := b.cfg.RequireAPIKey(); err != nil {
		return nil, err
	}

	client, err := llm.NewClient(ctx, b.cfg.GoogleAPIKey)
	if err != nil {
		return nil, err
	}
	b.genai = client
	return client, nil
}
