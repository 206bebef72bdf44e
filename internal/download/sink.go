// Package download persists finished export documents to disk.
package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/matillion/slack-md-export/internal/export"
)

// FileSink writes export documents under a root directory. An optional
// per-request subdirectory is prefixed to the filename path, and name
// collisions are resolved by auto-renaming; an existing file is never
// overwritten.
type FileSink struct {
	root   string
	logger *zap.Logger
}

func NewFileSink(root string, logger *zap.Logger) *FileSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSink{root: root, logger: logger}
}

// Save implements export.Sink.
func (s *FileSink) Save(ctx context.Context, req export.SaveRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := s.root
	if req.Directory != "" {
		dir = filepath.Join(s.root, req.Directory)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	path, file, err := createUnique(dir, req.Filename)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if _, err := file.Write(req.Content); err != nil {
		return "", fmt.Errorf("failed to write document: %w", err)
	}

	s.logger.Info("Document saved",
		zap.String("path", path),
		zap.Int("bytes", len(req.Content)))

	return path, nil
}

// createUnique opens the target for exclusive creation, appending -1,
// -2, ... before the extension until a free name is found.
func createUnique(dir, filename string) (string, *os.File, error) {
	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)

	for i := 0; ; i++ {
		name := filename
		if i > 0 {
			name = fmt.Sprintf("%s-%d%s", stem, i, ext)
		}
		path := filepath.Join(dir, name)

		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return path, file, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", nil, fmt.Errorf("failed to create file: %w", err)
		}
	}
}
