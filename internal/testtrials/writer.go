package testtrials

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/okian/freethrow/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// FileName returns the file name of the i-th (0-based) trial. Names sort in
// generation order.
func FileName(i int) string {
	return fmt.Sprintf("BB_FT_%04d.json", i+1)
}

// Write stores docs under cfg.OutDir/cfg.ParticipantID and returns the paths written.
func Write(ctx context.Context, cfg *Config, docs []Document) ([]string, error) {
	dir := filepath.Join(cfg.OutDir, cfg.ParticipantID)
	if err := os.MkdirAll(dir, directoryPermission); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	paths := make([]string, 0, len(docs))
	for i := range docs {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		data, err := json.Marshal(&docs[i])
		if err != nil {
			return paths, fmt.Errorf("failed to marshal trial %s: %w", docs[i].TrialID, err)
		}
		path := filepath.Join(dir, FileName(i))
		if err := os.WriteFile(path, data, filePermission); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	logger.Get().Info(ctx, "trials written",
		logger.String("dir", dir),
		logger.Int("files", len(paths)),
	)
	return paths, nil
}
