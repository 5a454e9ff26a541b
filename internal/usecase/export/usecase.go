package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/futig/bms-rag/internal/entity"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const fileTimeLayout = "20060102_150405"

type Formatter interface {
	Format(answer *entity.Answer) ([]byte, error)
	FileExtension() string
}

// ExportUsecase saves answered queries into a directory, one file per answer
type ExportUsecase struct {
	dir       string
	formatter Formatter
	now       func() time.Time
	newID     func() string
	logger    *zap.Logger
}

func NewUsecase(dir string, formatter Formatter, logger *zap.Logger) *ExportUsecase {
	return &ExportUsecase{
		dir:       dir,
		formatter: formatter,
		now:       time.Now,
		newID:     uuid.NewString,
		logger:    logger,
	}
}

// Dir is the absolute output directory, or the configured one if it cannot be resolved.
func (uc *ExportUsecase) Dir() string {
	abs, err := filepath.Abs(uc.dir)
	if err != nil {
		return uc.dir
	}
	return abs
}

// Save writes answer as query_<timestamp>_<id8><ext> and returns the file path.
func (uc *ExportUsecase) Save(ctx context.Context, answer *entity.Answer) (string, error) {
	if !answer.Parsed() {
		return "", fmt.Errorf("export answer: %w", entity.ErrEmptyReply)
	}

	data, err := uc.formatter.Format(answer)
	if err != nil {
		return "", fmt.Errorf("format answer: %w", err)
	}

	if err := os.MkdirAll(uc.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	name := fmt.Sprintf("query_%s_%s%s",
		uc.now().Format(fileTimeLayout),
		uc.newID()[:8],
		uc.formatter.FileExtension(),
	)
	path := filepath.Join(uc.dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}

	ctxzap.Info(ctx, "answer exported", zap.String("path", path), zap.Int("bytes", len(data)))

	return path, nil
}
