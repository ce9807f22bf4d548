package search

import (
	"iter"
	"math"
	"sync/atomic"

	"github.com/samber/lo"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xsearch/lib/id"
	"github.com/benz9527/xsearch/lib/infra"
	"github.com/benz9527/xsearch/lib/list"
	"github.com/benz9527/xsearch/lib/tree"
	"github.com/benz9527/xsearch/xlog"
)

//go:generate stringer -type=SearchMode
type SearchMode uint8

const (
	ByScore SearchMode = iota
	ByRank
)

// Collection keeps the records of one keyword both in a rank tree keyed
// by score and in a list by insertion order.
//
//	             +--------------------+
//	   Add ----> | rank tree (score)  | ----> SearchByScore / SearchByRank
//	             +--------------------+       Ranking / Traverse
//	             | list (insertion)   | ----> At / Records
//	             +--------------------+
//
// Both of them hold the same record set after every call.
// Note that the collection is not thread safe.
type Collection struct {
	keyword        string
	counter        int64 // queries and mutations
	idGen          id.Generator
	index          tree.RankTree[int32, *Record]
	records        list.LinkedList[*Record]
	logger         xlog.XLogger
	stats          *collectionStats
	treeOpts       []tree.RBTreeOpt[int32, *Record]
	isStatsEnabled bool
}

func NewCollection(keyword string, opts ...CollectionOption) *Collection {
	c := &Collection{
		keyword: keyword,
	}
	for _, o := range opts {
		if o != nil {
			o(c)
		}
	}
	c.idGen = lo.Must[id.Generator](id.MonotonicNonZeroID())
	c.index = tree.NewRBTree[int32, *Record](c.treeOpts...)
	c.records = list.NewLinkedList[*Record]()
	if c.isStatsEnabled {
		c.stats = newCollectionStats(keyword)
	}
	return c
}

func (c *Collection) Keyword() string {
	return c.keyword
}

func (c *Collection) Len() int64 {
	return c.index.Len()
}

// Counter is the number of the queries and mutations so far.
func (c *Collection) Counter() int64 {
	return atomic.LoadInt64(&c.counter)
}

func (c *Collection) debug(msg string, r *Record) {
	if c.logger == nil {
		return
	}
	c.logger.Debug(msg,
		zap.String("keyword", c.keyword),
		zap.Object("record", r),
		zap.Int64("len", c.index.Len()),
	)
}

// Add assigns the next insertion index to the record and links it into
// the collection. The ranks of the other records are shifted.
func (c *Collection) Add(r *Record) error {
	if r == nil {
		return infra.WrapErrorStackWithMessage(ErrInvalidOperand, "[xsearch] add nil record")
	}
	if r.owner != nil {
		return infra.WrapErrorStackWithMessage(ErrRecordOwned, "[xsearch] add "+r.address)
	}
	atomic.AddInt64(&c.counter, 1)
	r.index = c.idGen.Number()
	r.owner = c
	r.node = c.index.Insert(r.score, r)
	r.elem = c.records.PushBack(r)
	c.stats.RecordInserted()
	c.debug("record added", r)
	return nil
}

// Remove unlinks the record which is added to this collection before.
func (c *Collection) Remove(r *Record) error {
	if r == nil || r.owner != c {
		return infra.WrapErrorStackWithMessage(ErrInvalidOperand, "[xsearch] remove")
	}
	if err := c.index.Remove(r.node); err != nil {
		return infra.WrapErrorStackWithMessage(err, "[xsearch] remove "+r.address)
	}
	if e := c.records.Remove(r.elem); e == nil {
		panic( /* debug assertion */ "[xsearch] record list out of sync")
	}
	atomic.AddInt64(&c.counter, 1)
	r.owner, r.node, r.elem = nil, nil, nil
	c.stats.RecordRemoved()
	c.debug("record removed", r)
	return nil
}

// RemoveByScore removes one of the records with the score.
// Nothing matched is (nil, false, nil).
func (c *Collection) RemoveByScore(score int32) (*Record, bool, error) {
	r, ok := c.searchByScore(score)
	if !ok {
		return nil, false, nil
	}
	if err := c.Remove(r); err != nil {
		return nil, false, err
	}
	return r, true, nil
}

// RemoveByRank removes the record at the rank.
// Nothing matched is (nil, false, nil).
func (c *Collection) RemoveByRank(rank int64) (*Record, bool, error) {
	r, ok := c.searchByRank(rank)
	if !ok {
		return nil, false, nil
	}
	if err := c.Remove(r); err != nil {
		return nil, false, err
	}
	return r, true, nil
}

func (c *Collection) searchByScore(score int32) (*Record, bool) {
	node, ok := c.index.SearchByKey(score)
	if !ok {
		return nil, false
	}
	return node.Val(), true
}

func (c *Collection) searchByRank(rank int64) (*Record, bool) {
	node, ok := c.index.SearchByRank(rank)
	if !ok {
		return nil, false
	}
	return node.Val(), true
}

// SearchByScore returns any of the records with the score.
func (c *Collection) SearchByScore(score int32) (*Record, bool) {
	atomic.AddInt64(&c.counter, 1)
	r, ok := c.searchByScore(score)
	c.stats.RecordQueried(ByScore, ok)
	return r, ok
}

// SearchByRank returns the record at the rank, the rank out of
// [1, Len] is not found.
func (c *Collection) SearchByRank(rank int64) (*Record, bool) {
	atomic.AddInt64(&c.counter, 1)
	r, ok := c.searchByRank(rank)
	c.stats.RecordQueried(ByRank, ok)
	return r, ok
}

// Search dispatches the key by the mode. The score key out of int32
// is not found.
func (c *Collection) Search(mode SearchMode, key int64) (*Record, bool, error) {
	switch mode {
	case ByScore:
		if key < math.MinInt32 || key > math.MaxInt32 {
			atomic.AddInt64(&c.counter, 1)
			c.stats.RecordQueried(ByScore, false)
			return nil, false, nil
		}
		r, ok := c.SearchByScore(int32(key))
		return r, ok, nil
	case ByRank:
		r, ok := c.SearchByRank(key)
		return r, ok, nil
	default:
	}
	return nil, false, infra.WrapErrorStackWithMessage(ErrUnknownSearchMode, mode.String())
}

// At returns the record at the 0-based insertion position.
func (c *Collection) At(idx int64) (*Record, bool) {
	e, ok := c.records.At(idx)
	if !ok {
		return nil, false
	}
	return e.Value, true
}

// Records iterates the records by insertion order.
func (c *Collection) Records() iter.Seq[*Record] {
	return c.records.Values()
}

func (c *Collection) Traverse(order tree.TraverseOrder) iter.Seq[*Record] {
	return func(yield func(*Record) bool) {
		for node := range c.index.Traverse(order) {
			if !yield(node.Val()) {
				return
			}
		}
	}
}

// Ranking iterates the records from rank 1 to rank Len.
func (c *Collection) Ranking() iter.Seq[*Record] {
	return c.Traverse(tree.ReverseInOrder)
}

// Top returns at most n records from rank 1.
func (c *Collection) Top(n int64) []*Record {
	if n <= 0 {
		return []*Record{}
	}
	top := make([]*Record, 0, min(n, c.Len()))
	for r := range c.Ranking() {
		if int64(len(top)) >= n {
			break
		}
		top = append(top, r)
	}
	return top
}

// Validate checks the red-black properties, the ranks and that the
// tree and the list hold the same records.
func (c *Collection) Validate() error {
	var merr error
	merr = multierr.Append(merr, tree.RedViolationValidate(c.index))
	merr = multierr.Append(merr, tree.BlackViolationValidate(c.index))
	merr = multierr.Append(merr, tree.RankViolationValidate(c.index))
	if c.records.Len() != c.index.Len() {
		merr = multierr.Append(merr, infra.NewErrorStack("[xsearch] list and tree length mismatch"))
	}
	_ = c.records.Foreach(func(idx int64, e *list.NodeElement[*Record]) error {
		r := e.Value
		if r.owner != c || r.elem != e || r.node == nil || r.node.Val() != r {
			merr = multierr.Append(merr, infra.NewErrorStack("[xsearch] record out of sync: "+r.address))
		}
		return nil
	})
	return merr
}

// Release detaches all records, the collection is empty and reusable.
func (c *Collection) Release() {
	for r := range c.records.Values() {
		r.owner, r.node, r.elem = nil, nil, nil
	}
	c.index.Release()
	c.records = list.NewLinkedList[*Record]()
	if c.logger != nil {
		c.logger.Debug("collection released", zap.String("keyword", c.keyword))
	}
}
