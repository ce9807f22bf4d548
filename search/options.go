package search

import (
	"github.com/benz9527/xsearch/lib/tree"
	"github.com/benz9527/xsearch/xlog"
)

type CollectionOption func(c *Collection)

// WithCollectionLogger logs the mutations at DEBUG level.
func WithCollectionLogger(logger xlog.XLogger) CollectionOption {
	return func(c *Collection) {
		c.logger = logger
	}
}

// WithCollectionStats records the otel metrics by the global meter provider.
func WithCollectionStats() CollectionOption {
	return func(c *Collection) {
		c.isStatsEnabled = true
	}
}

// WithCollectionRemoveBorrowPred relinks the in-order predecessor instead
// of the successor when the removed record has two children.
func WithCollectionRemoveBorrowPred() CollectionOption {
	return func(c *Collection) {
		c.treeOpts = append(c.treeOpts, tree.WithRBTreeRemoveBorrowPred[int32, *Record]())
	}
}

// WithCollectionRankRecompute stores the ranks of all records after each
// mutation in O(n) instead of deriving one rank in O(log n) on demand.
func WithCollectionRankRecompute() CollectionOption {
	return func(c *Collection) {
		c.treeOpts = append(c.treeOpts, tree.WithRBTreeRankRecompute[int32, *Record]())
	}
}
