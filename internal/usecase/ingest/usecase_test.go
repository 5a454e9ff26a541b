package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/futig/bms-rag/internal/config"
	"github.com/futig/bms-rag/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingWriter struct {
	docs []entity.Document
	err  error
}

func (w *recordingWriter) Write(_ context.Context, docs []entity.Document) error {
	w.docs = append(w.docs, docs...)
	return w.err
}

func testDataConfig() config.DataConfig {
	return config.DataConfig{
		ItemPath:   "testdata/item_defination.json",
		DamagePath: "testdata/Damage_scenarios.json",
		NodeStrip:  nodeStrip,
		EdgeStrip:  edgeStrip,
	}
}

func TestIngestUsecase_Run(t *testing.T) {
	w := &recordingWriter{}
	uc := NewUsecase(testDataConfig(), w, zap.NewNop())

	stats, err := uc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, entity.IngestStats{ItemDefinition: 4, DamageScenarios: 4}, stats)
	assert.Equal(t, 8, stats.Total())
	require.Len(t, w.docs, 8)

	ids := make(map[string]struct{}, len(w.docs))
	for _, d := range w.docs {
		ids[d.ID] = struct{}{}
	}
	assert.Len(t, ids, 8)
	assert.Equal(t, entity.SourceItemDefinition, w.docs[0].Metadata[entity.MetaSource])
	assert.Equal(t, entity.SourceDamageScenarios, w.docs[7].Metadata[entity.MetaSource])
}

func TestIngestUsecase_MissingFile(t *testing.T) {
	cfg := testDataConfig()
	cfg.DamagePath = "testdata/absent.json"
	uc := NewUsecase(cfg, &recordingWriter{}, zap.NewNop())

	_, err := uc.Run(context.Background())
	require.ErrorIs(t, err, entity.ErrDatasetRead)
}

func TestIngestUsecase_WriteError(t *testing.T) {
	w := &recordingWriter{err: errors.New("embedder down")}
	uc := NewUsecase(testDataConfig(), w, zap.NewNop())

	_, err := uc.Run(context.Background())
	require.ErrorIs(t, err, w.err)
}
