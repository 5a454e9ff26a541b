package embedding

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const mockDimensions = 256

// MockConnector produces deterministic hashed bag-of-words vectors, so texts
// sharing words end up close to each other. Offline use only.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Embed(_ context.Context, text string) ([]float32, error) {
	return hashVector(text), nil
}

func (m *MockConnector) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	ctxzap.Debug(ctx, "[MOCK] embedding texts", zap.Int("count", len(texts)))

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = hashVector(text)
	}
	return vectors, nil
}

func (m *MockConnector) Name() string {
	return "mock:bag-of-words"
}

func hashVector(text string) []float32 {
	vec := make([]float32, mockDimensions)

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		h.Write([]byte(w))
		vec[h.Sum32()%mockDimensions]++
	}

	// a zero vector cannot be normalized
	if len(words) == 0 {
		vec[0] = 1
	}
	return vec
}
