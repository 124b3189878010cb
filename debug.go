package tableau

import (
	"time"

	"go.uber.org/zap"
)

// debugStats holds per-tick timing and reconciliation metrics.
// Only populated when Options.Debug is true.
type debugStats struct {
	resolveTime   time.Duration
	reconcileTime time.Duration
	itemCount     int
	activeCount   int
	splitCount    int
	breakCount    int
	activated     int
	ended         int
	restyled      int
}

// debugLog writes the stats of one tick at debug level.
func (c *Composition) debugLog(stats debugStats) {
	if !c.opts.Debug {
		return
	}
	log.Debug("tick",
		zap.String("composition", c.ID),
		zap.Float64("time", c.globalTime),
		zap.Duration("resolve", stats.resolveTime),
		zap.Duration("reconcile", stats.reconcileTime),
		zap.Int("items", stats.itemCount),
		zap.Int("active", stats.activeCount),
		zap.Int("splits", stats.splitCount),
		zap.Int("breaks", stats.breakCount),
		zap.Int("activated", stats.activated),
		zap.Int("ended", stats.ended),
		zap.Int("restyled", stats.restyled),
	)
}

// debugCheckSplits logs partition invariant violations. Debug mode only.
func (c *Composition) debugCheckSplits() {
	if err := c.reconciler.validate(); err != nil {
		log.Error("mesh split invariant violated",
			zap.String("composition", c.ID),
			zap.Float64("time", c.globalTime),
			zap.Error(err),
		)
	}
}

// debugMaxTreeDepth is the parent chain length above which a warning is logged.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(it *Item) {
	depth := 0
	for p := it; p != nil; p = p.parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		log.Warn("item tree too deep",
			zap.String("item", it.ID),
			zap.Int("depth", depth),
			zap.Int("threshold", debugMaxTreeDepth),
		)
	}
}

// countBatchBreaks returns how many adjacent split pairs share a key. These
// are boundaries forced by capacity, the texture budget or a blocker.
func countBatchBreaks(splits []*MeshSplit) int {
	n := 0
	for i := 1; i < len(splits); i++ {
		if splits[i-1].Key == splits[i].Key {
			n++
		}
	}
	return n
}
