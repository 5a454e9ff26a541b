package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"

	"github.com/futig/bms-rag/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/philippgille/chromem-go"
	"go.uber.org/zap"
)

// CollectionName is the single chromem collection holding every document
const CollectionName = "bms-knowledge-base"

// BatchEmbedder embeds documents before they are written. Name identifies the
// model, a snapshot only loads under the embedder that wrote it.
type BatchEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Name() string
}

// snapshotMeta is written next to the gob snapshot as <path>.meta.json
type snapshotMeta struct {
	Embedder   string `json:"embedder"`
	Dimensions int    `json:"dimensions"`
	Documents  int    `json:"documents"`
}

// VectorStore defines the interface for the document index
type VectorStore interface {
	Write(ctx context.Context, docs []entity.Document) error
	Query(ctx context.Context, embedding []float32, topK int) ([]entity.ScoredDocument, error)
	Export(path string) error
	Count() int
}

var _ VectorStore = &VectorChromem{}

// VectorChromem implements VectorStore with an in-memory chromem-go database
type VectorChromem struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   BatchEmbedder
	batchSize  int
	dims       int // 0 until the first vector is stored
	logger     *zap.Logger
}

func NewVectorChromem(embedder BatchEmbedder, batchSize int, logger *zap.Logger) (*VectorChromem, error) {
	db := chromem.NewDB()

	collection, err := db.GetOrCreateCollection(CollectionName, nil, embeddingFunc(embedder))
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &VectorChromem{
		db:         db,
		collection: collection,
		embedder:   embedder,
		batchSize:  max(batchSize, 1),
		logger:     logger,
	}, nil
}

// LoadVectorChromem restores a store from a gob snapshot written by Export.
func LoadVectorChromem(path string, embedder BatchEmbedder, batchSize int, logger *zap.Logger) (*VectorChromem, error) {
	meta, err := readSnapshotMeta(path)
	if err != nil {
		return nil, err
	}
	if meta != nil && meta.Embedder != embedder.Name() {
		return nil, fmt.Errorf("%w: %s was built with %s, current embedder is %s (run ingest again)",
			entity.ErrSnapshotMismatch, path, meta.Embedder, embedder.Name())
	}
	if meta == nil {
		logger.Warn("snapshot has no metadata file, embedder compatibility is not checked", zap.String("path", path))
	}

	db := chromem.NewDB()
	if err := db.ImportFromFile(path, ""); err != nil {
		return nil, fmt.Errorf("import snapshot %s: %w", path, err)
	}

	collection := db.GetCollection(CollectionName, embeddingFunc(embedder))
	if collection == nil {
		return nil, fmt.Errorf("%w: %s in %s", entity.ErrCollectionNotFound, CollectionName, path)
	}

	logger.Info("vector store loaded from snapshot",
		zap.String("path", path),
		zap.Int("documents", collection.Count()),
	)

	store := &VectorChromem{
		db:         db,
		collection: collection,
		embedder:   embedder,
		batchSize:  max(batchSize, 1),
		logger:     logger,
	}
	if meta != nil {
		store.dims = meta.Dimensions
	}
	return store, nil
}

// Write embeds docs batch by batch and adds them to the collection
func (s *VectorChromem) Write(ctx context.Context, docs []entity.Document) error {
	for start := 0; start < len(docs); start += s.batchSize {
		batch := docs[start:min(start+s.batchSize, len(docs))]

		texts := make([]string, len(batch))
		for i, doc := range batch {
			texts[i] = doc.Content
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed documents %d-%d: %w", start, start+len(batch), err)
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("%w: %d documents, %d vectors", entity.ErrEmbeddingMismatch, len(batch), len(vectors))
		}
		if s.dims == 0 && len(vectors) > 0 {
			s.dims = len(vectors[0])
		}

		chromemDocs := make([]chromem.Document, len(batch))
		for i, doc := range batch {
			chromemDocs[i] = chromem.Document{
				ID:        doc.ID,
				Content:   doc.Content,
				Metadata:  doc.Metadata,
				Embedding: vectors[i],
			}
		}

		if err := s.collection.AddDocuments(ctx, chromemDocs, runtime.NumCPU()); err != nil {
			return fmt.Errorf("add documents: %w", err)
		}

		ctxzap.Debug(ctx, "document batch stored",
			zap.Int("offset", start),
			zap.Int("size", len(batch)),
		)
	}

	ctxzap.Info(ctx, "documents embedded and stored", zap.Int("count", len(docs)))

	return nil
}

// Query returns up to topK documents ordered by cosine similarity, best first
func (s *VectorChromem) Query(ctx context.Context, embedding []float32, topK int) ([]entity.ScoredDocument, error) {
	n := min(topK, s.collection.Count())
	if n <= 0 {
		return []entity.ScoredDocument{}, nil
	}
	if s.dims > 0 && len(embedding) != s.dims {
		return nil, fmt.Errorf("%w: query vector has %d dimensions, store has %d",
			entity.ErrSnapshotMismatch, len(embedding), s.dims)
	}

	results, err := s.collection.QueryEmbedding(ctx, embedding, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}

	docs := make([]entity.ScoredDocument, len(results))
	for i, r := range results {
		docs[i] = entity.ScoredDocument{
			Document: entity.Document{
				ID:       r.ID,
				Content:  r.Content,
				Metadata: r.Metadata,
			},
			Similarity: r.Similarity,
		}
	}

	return docs, nil
}

// Export writes an uncompressed gob snapshot of the database and its metadata file
func (s *VectorChromem) Export(path string) error {
	if err := s.db.ExportToFile(path, false, ""); err != nil {
		return fmt.Errorf("export snapshot %s: %w", path, err)
	}

	meta, err := json.Marshal(snapshotMeta{
		Embedder:   s.embedder.Name(),
		Dimensions: s.dims,
		Documents:  s.Count(),
	})
	if err != nil {
		return fmt.Errorf("marshal snapshot metadata: %w", err)
	}
	if err := os.WriteFile(metaPath(path), meta, 0o644); err != nil {
		return fmt.Errorf("write snapshot metadata: %w", err)
	}

	s.logger.Info("vector store exported", zap.String("path", path), zap.Int("documents", s.Count()))

	return nil
}

func (s *VectorChromem) Count() int {
	return s.collection.Count()
}

func metaPath(snapshot string) string {
	return snapshot + ".meta.json"
}

// readSnapshotMeta returns nil without error for snapshots exported without metadata
func readSnapshotMeta(snapshot string) (*snapshotMeta, error) {
	data, err := os.ReadFile(metaPath(snapshot))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot metadata: %w", err)
	}

	var meta snapshotMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode snapshot metadata %s: %w", metaPath(snapshot), err)
	}
	return &meta, nil
}

// embeddingFunc is only called by chromem for documents or queries passed without
// a vector, which the store never does.
func embeddingFunc(embedder BatchEmbedder) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return embedder.Embed(ctx, text)
	}
}
