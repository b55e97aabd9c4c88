package fs

import (
	"context"
	"time"

	"github.com/drakeos/drakeos/internal/metrics"
	"github.com/drakeos/drakeos/internal/vfs"
	"go.uber.org/zap"
)

// LoadTree resolves uri to a Source and builds a tree from it, recording
// the load in metrics.
func LoadTree(ctx context.Context, uri string, opts vfs.Options, logger *zap.Logger) (*vfs.Tree, Source, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	src, err := ParseSource(uri)
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	tree, err := vfs.Load(ctx, src, opts)
	dur := time.Since(start)
	if err != nil {
		metrics.RecordTreeLoad(0, dur, false)
		logger.Error("tree load failed", zap.Stringer("source", src), zap.Error(err))
		return nil, src, err
	}

	metrics.RecordTreeLoad(tree.Count(), dur, true)
	logger.Info("tree loaded",
		zap.Stringer("source", src),
		zap.Int("nodes", tree.Count()),
		zap.Duration("duration", dur),
	)
	return tree, src, nil
}
