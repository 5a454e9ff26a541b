package ingest

import (
	"context"
	"fmt"
	"os"

	"github.com/futig/bms-rag/internal/config"
	"github.com/futig/bms-rag/internal/entity"
	"github.com/futig/bms-rag/internal/pkg/logger"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// IngestUsecase loads both datasets and writes their documents to the index
type IngestUsecase struct {
	cfg    config.DataConfig
	store  DocumentWriter
	logger *zap.Logger
}

func NewUsecase(cfg config.DataConfig, store DocumentWriter, logger *zap.Logger) *IngestUsecase {
	return &IngestUsecase{
		cfg:    cfg,
		store:  store,
		logger: logger,
	}
}

// BuildDocuments reads the item definition and the damage scenarios, in that order.
func (uc *IngestUsecase) BuildDocuments(ctx context.Context) ([]entity.Document, entity.IngestStats, error) {
	var stats entity.IngestStats

	itemData, err := readDataset(uc.cfg.ItemPath)
	if err != nil {
		return nil, stats, err
	}
	docs, err := ItemDocuments(itemData, uc.cfg.NodeStrip, uc.cfg.EdgeStrip, 0)
	if err != nil {
		return nil, stats, fmt.Errorf("item definition %s: %w", uc.cfg.ItemPath, err)
	}
	stats.ItemDefinition = len(docs)

	ctxzap.Info(ctx, "item definition flattened",
		zap.String("path", uc.cfg.ItemPath),
		zap.Int("documents", stats.ItemDefinition),
	)

	damageData, err := readDataset(uc.cfg.DamagePath)
	if err != nil {
		return nil, stats, err
	}
	damageDocs, err := DamageDocuments(damageData, len(docs))
	if err != nil {
		return nil, stats, fmt.Errorf("damage scenarios %s: %w", uc.cfg.DamagePath, err)
	}
	stats.DamageScenarios = len(damageDocs)
	docs = append(docs, damageDocs...)

	ctxzap.Info(ctx, "damage scenarios flattened",
		zap.String("path", uc.cfg.DamagePath),
		zap.Int("documents", stats.DamageScenarios),
	)
	ctxzap.Info(ctx, "documents built", zap.Int("total", stats.Total()))

	return docs, stats, nil
}

// Run builds the documents, embeds them and stores them.
func (uc *IngestUsecase) Run(ctx context.Context) (entity.IngestStats, error) {
	ctx = logger.WithAction(ctx, "ingest")

	docs, stats, err := uc.BuildDocuments(ctx)
	if err != nil {
		return stats, err
	}

	if err := uc.store.Write(ctx, docs); err != nil {
		return stats, fmt.Errorf("store documents: %w", err)
	}

	return stats, nil
}

func readDataset(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrDatasetRead, err)
	}
	return data, nil
}
