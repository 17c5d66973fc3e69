package shutdown

import (
	"context"
	"os"
	"path/filepath"

	"go_pdfium/core"

	"go.uber.org/zap"
)

// PartialSuffix marks an output file that is still being written. It is
// renamed to its final name only after the image is fully encoded.
const PartialSuffix = ".part"

// CleanupPartialOutputs returns a teardown function that removes "*.part"
// files left in outDir by an interrupted render. Removal failures are
// logged and never block shutdown.
//
//	m.Register("partial-outputs", shutdown.PriorityOutputs, shutdown.CleanupPartialOutputs(logger, outDir))
func CleanupPartialOutputs(logger *zap.Logger, outDir string) core.ShutdownFunc {
	return func(ctx context.Context) error {
		removePartialFiles(ctx, logger, outDir)
		return nil
	}
}

func removePartialFiles(ctx context.Context, logger *zap.Logger, outDir string) {
	pattern := filepath.Join(outDir, "*"+PartialSuffix)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		logger.Error("Failed to list partial outputs",
			zap.String("pattern", pattern),
			zap.Error(err),
		)
		return
	}
	if len(matches) == 0 {
		return
	}

	var removed, failed int
	for _, match := range matches {
		select {
		case <-ctx.Done():
			logger.Warn("Shutdown context cancelled during cleanup",
				zap.Int("removed", removed),
				zap.Int("remaining", len(matches)-removed-failed),
			)
			return
		default:
		}

		if err := os.Remove(match); err != nil {
			failed++
			logger.Warn("Failed to remove partial output",
				zap.String("file", filepath.Base(match)),
				zap.Error(err),
			)
			continue
		}
		removed++
	}

	logger.Info("Removed partial outputs",
		zap.Int("removed", removed),
		zap.Int("failed", failed),
	)
}
