package tree

import (
	randv2 "math/rand/v2"
	"slices"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

type checkData struct {
	color RBColor
	key   uint64
}

func checkInorder(t *testing.T, tree RankTree[uint64, uint64], expected []checkData) {
	require.Equal(t, int64(len(expected)), tree.Len())
	tree.Foreach(func(idx int64, color RBColor, key uint64, val uint64) bool {
		require.Equal(t, expected[idx].color, color)
		require.Equal(t, expected[idx].key, key)
		return true
	})
	require.NoError(t, RedViolationValidate[uint64, uint64](tree))
	require.NoError(t, BlackViolationValidate[uint64, uint64](tree))
	require.NoError(t, RankViolationValidate[uint64, uint64](tree))
}

func collectKeys[K ~uint64 | ~int32, V any](seq func(func(RBNode[K, V]) bool)) []K {
	keys := make([]K, 0, 8)
	for node := range seq {
		keys = append(keys, node.Key())
	}
	return keys
}

func TestNilNode(t *testing.T) {
	var nilNode RBNode[uint64, uint64] = nil
	require.True(t, nilNode == nil)

	var nilNode2 *rbNode[uint64, uint64] = nil
	nilNode = nilNode2
	require.True(t, nilNode != nil)
	require.Nil(t, nilNode)
	require.Equal(t, int64(0), nilNode.Size())
	require.Equal(t, int64(0), nilNode.Rank())
	require.Nil(t, nilNode.Left())
	require.Nil(t, nilNode.Right())
	require.Nil(t, nilNode.Parent())
}

func TestRbtreeInsertAndRemove(t *testing.T) {
	testcases := []struct {
		name     string
		opts     []RBTreeOpt[uint64, uint64]
		removals [][]checkData
	}{
		{
			name: "borrow pred",
			opts: []RBTreeOpt[uint64, uint64]{WithRBTreeRemoveBorrowPred[uint64, uint64]()},
			removals: [][]checkData{
				{{Black, 3}, {Red, 35}, {Black, 47}, {Black, 52}},
				{{Black, 3}, {Black, 35}, {Black, 52}},
				{{Red, 3}, {Black, 35}},
				{{Black, 35}},
				{},
			},
		},
		{
			name: "borrow succ",
			removals: [][]checkData{
				{{Red, 3}, {Black, 35}, {Black, 47}, {Black, 52}},
				{{Black, 3}, {Black, 35}, {Black, 52}},
				{{Red, 3}, {Black, 35}},
				{{Black, 35}},
				{},
			},
		},
		{
			name: "borrow succ with rank recompute",
			opts: []RBTreeOpt[uint64, uint64]{WithRBTreeRankRecompute[uint64, uint64]()},
			removals: [][]checkData{
				{{Red, 3}, {Black, 35}, {Black, 47}, {Black, 52}},
				{{Black, 3}, {Black, 35}, {Black, 52}},
				{{Red, 3}, {Black, 35}},
				{{Black, 35}},
				{},
			},
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			tree := NewRBTree[uint64, uint64](tc.opts...)
			handles := make(map[uint64]RBNode[uint64, uint64], 5)

			handles[52] = tree.Insert(52, 1)
			checkInorder(tt, tree, []checkData{{Black, 52}})
			handles[47] = tree.Insert(47, 1)
			checkInorder(tt, tree, []checkData{{Red, 47}, {Black, 52}})
			handles[3] = tree.Insert(3, 1)
			checkInorder(tt, tree, []checkData{{Red, 3}, {Black, 47}, {Red, 52}})
			handles[35] = tree.Insert(35, 1)
			checkInorder(tt, tree, []checkData{{Black, 3}, {Red, 35}, {Black, 47}, {Black, 52}})
			handles[24] = tree.Insert(24, 1)
			checkInorder(tt, tree, []checkData{{Red, 3}, {Black, 24}, {Red, 35}, {Black, 47}, {Black, 52}})

			for i, key := range []uint64{24, 47, 52, 3, 35} {
				x := handles[key]
				require.NoError(tt, tree.Remove(x))
				require.Equal(tt, key, x.Key())
				require.Equal(tt, int64(0), x.Rank())
				checkInorder(tt, tree, tc.removals[i])
			}
			require.Nil(tt, tree.Root())
			require.Equal(tt, int64(0), tree.Len())
		})
	}
}

func TestRbtreeRankScenario(t *testing.T) {
	testcases := []struct {
		name string
		opts []RBTreeOpt[int32, string]
	}{
		{name: "size derived rank"},
		{name: "rank recompute", opts: []RBTreeOpt[int32, string]{WithRBTreeRankRecompute[int32, string]()}},
		{name: "borrow pred", opts: []RBTreeOpt[int32, string]{WithRBTreeRemoveBorrowPred[int32, string]()}},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			tree := NewRBTree[int32, string](tc.opts...)
			handles := make(map[int32]RBNode[int32, string], 5)
			for _, score := range []int32{50, 30, 70, 20, 40} {
				handles[score] = tree.Insert(score, "record")
			}
			require.Equal(tt, RBColor(Black), tree.Root().Color())
			require.Equal(tt, []int32{20, 30, 40, 50, 70}, collectKeys[int32, string](tree.Traverse(InOrder)))

			ranks := map[int32]int64{70: 1, 50: 2, 40: 3, 30: 4, 20: 5}
			for score, rank := range ranks {
				require.Equal(tt, rank, handles[score].Rank())
				node, ok := tree.SearchByRank(rank)
				require.True(tt, ok)
				require.Same(tt, handles[score], node)
			}

			node, ok := tree.SearchByKey(40)
			require.True(tt, ok)
			require.Equal(tt, int32(40), node.Key())
			require.Equal(tt, int64(3), node.Rank())
			_, ok = tree.SearchByKey(999)
			require.False(tt, ok)

			require.NoError(tt, tree.Remove(handles[70]))
			require.Equal(tt, []int32{20, 30, 40, 50}, collectKeys[int32, string](tree.Traverse(InOrder)))
			ranks = map[int32]int64{50: 1, 40: 2, 30: 3, 20: 4}
			for score, rank := range ranks {
				require.Equal(tt, rank, handles[score].Rank())
			}
			require.NoError(tt, RedViolationValidate[int32, string](tree))
			require.NoError(tt, BlackViolationValidate[int32, string](tree))
			require.NoError(tt, RankViolationValidate[int32, string](tree))
		})
	}
}

func TestRbtreeSearchByRankOutOfRange(t *testing.T) {
	tree := NewRBTree[int32, struct{}]()
	_, ok := tree.SearchByRank(1)
	require.False(t, ok)

	for _, score := range []int32{5, 1, 9} {
		tree.Insert(score, struct{}{})
	}
	testcases := []struct {
		name  string
		rank  int64
		found bool
		key   int32
	}{
		{name: "zero", rank: 0},
		{name: "negative", rank: -1},
		{name: "over len", rank: 4},
		{name: "top", rank: 1, found: true, key: 9},
		{name: "bottom", rank: 3, found: true, key: 1},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			node, ok := tree.SearchByRank(tc.rank)
			require.Equal(tt, tc.found, ok)
			if tc.found {
				require.Equal(tt, tc.key, node.Key())
			} else {
				require.Nil(tt, node)
			}
		})
	}
}

func TestRbtreeTraverse(t *testing.T) {
	tree := NewRBTree[int32, struct{}]()
	for _, order := range []TraverseOrder{PreOrder, InOrder, PostOrder, ReverseInOrder} {
		require.Empty(t, collectKeys[int32, struct{}](tree.Traverse(order)))
	}

	for _, score := range []int32{50, 30, 70, 20, 40} {
		tree.Insert(score, struct{}{})
	}
	testcases := []struct {
		order    TraverseOrder
		expected []int32
	}{
		{PreOrder, []int32{50, 30, 20, 40, 70}},
		{InOrder, []int32{20, 30, 40, 50, 70}},
		{PostOrder, []int32{20, 40, 30, 70, 50}},
		{ReverseInOrder, []int32{70, 50, 40, 30, 20}},
		{TraverseOrder(100), []int32{}},
	}
	for _, tc := range testcases {
		t.Run(tc.order.String(), func(tt *testing.T) {
			seq := tree.Traverse(tc.order)
			require.Equal(tt, tc.expected, collectKeys[int32, struct{}](seq))
			// Restartable and read only.
			require.Equal(tt, tc.expected, collectKeys[int32, struct{}](seq))
			require.Equal(tt, int64(5), tree.Len())
		})
	}

	// Early break.
	visited := 0
	for range tree.Traverse(InOrder) {
		visited++
		if visited == 2 {
			break
		}
	}
	require.Equal(t, 2, visited)
}

func TestRbtreeEqualKeys(t *testing.T) {
	tree := NewRBTree[int32, string]()
	a := tree.Insert(10, "a")
	b := tree.Insert(10, "b")
	c := tree.Insert(10, "c")
	tree.Insert(5, "d")

	vals := make([]string, 0, 4)
	tree.Foreach(func(idx int64, color RBColor, key int32, val string) bool {
		vals = append(vals, val)
		return true
	})
	require.Equal(t, []string{"d", "a", "b", "c"}, vals)
	require.Equal(t, int64(3), a.Rank())
	require.Equal(t, int64(2), b.Rank())
	require.Equal(t, int64(1), c.Rank())

	require.NoError(t, tree.Remove(b))
	require.Equal(t, int64(2), a.Rank())
	require.Equal(t, int64(1), c.Rank())
	require.NoError(t, RankViolationValidate[int32, string](tree))
}

func TestRbtreeRemoveNotOwned(t *testing.T) {
	tree := NewRBTree[int32, struct{}]()
	require.ErrorIs(t, tree.Remove(nil), ErrEmptyTree)

	other := NewRBTree[int32, struct{}]()
	foreign := other.Insert(1, struct{}{})
	node := tree.Insert(1, struct{}{})

	testcases := []struct {
		name string
		node RBNode[int32, struct{}]
	}{
		{name: "nil node", node: nil},
		{name: "typed nil node", node: (*rbNode[int32, struct{}])(nil)},
		{name: "foreign node", node: foreign},
		{name: "handcrafted node", node: &rbNode[int32, struct{}]{key: 1}},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			require.ErrorIs(tt, tree.Remove(tc.node), ErrNodeNotOwned)
			require.Equal(tt, int64(1), tree.Len())
		})
	}

	require.NoError(t, tree.Remove(node))
	require.ErrorIs(t, tree.Remove(node), ErrEmptyTree)
	tree.Insert(2, struct{}{})
	require.ErrorIs(t, tree.Remove(node), ErrNodeNotOwned)
	require.Equal(t, int64(1), other.Len())
}

func TestRbtreeMinMaxRelease(t *testing.T) {
	tree := NewRBTree[int32, struct{}]()
	_, ok := tree.Min()
	require.False(t, ok)
	_, ok = tree.Max()
	require.False(t, ok)

	handles := make([]RBNode[int32, struct{}], 0, 100)
	for i := int32(0); i < 100; i++ {
		handles = append(handles, tree.Insert(i, struct{}{}))
	}
	minNode, ok := tree.Min()
	require.True(t, ok)
	require.Equal(t, int32(0), minNode.Key())
	require.Equal(t, int64(100), minNode.Rank())
	maxNode, ok := tree.Max()
	require.True(t, ok)
	require.Equal(t, int32(99), maxNode.Key())
	require.Equal(t, int64(1), maxNode.Rank())

	tree.Release()
	require.Equal(t, int64(0), tree.Len())
	require.Nil(t, tree.Root())
	for _, h := range handles {
		require.Equal(t, int64(0), h.Rank())
	}
	require.ErrorIs(t, tree.Remove(handles[0]), ErrEmptyTree)
}

func TestRbtreeRandomInsertAndRemove(t *testing.T) {
	testcases := []struct {
		name  string
		total int
		opts  []RBTreeOpt[uint64, int]
	}{
		{name: "borrow succ", total: 1000},
		{name: "borrow pred", total: 1000, opts: []RBTreeOpt[uint64, int]{WithRBTreeRemoveBorrowPred[uint64, int]()}},
		{name: "rank recompute", total: 200, opts: []RBTreeOpt[uint64, int]{WithRBTreeRankRecompute[uint64, int]()}},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			tree := NewRBTree[uint64, int](tc.opts...)
			keys := make([]uint64, 0, tc.total)
			handles := make([]RBNode[uint64, int], 0, tc.total)
			for i := 0; i < tc.total; i++ {
				// Duplicated keys are expected.
				key := randv2.Uint64N(uint64(tc.total))
				keys = append(keys, key)
				handles = append(handles, tree.Insert(key, i))
				require.NoError(tt, RedViolationValidate[uint64, int](tree))
				require.NoError(tt, BlackViolationValidate[uint64, int](tree))
				require.NoError(tt, RankViolationValidate[uint64, int](tree))
			}

			sorted := slices.Clone(keys)
			sort.Slice(sorted, func(i, j int) bool {
				return sorted[i] < sorted[j]
			})
			tree.Foreach(func(idx int64, color RBColor, key uint64, val int) bool {
				require.Equal(tt, sorted[idx], key)
				return true
			})

			randv2.Shuffle(len(handles), func(i, j int) {
				handles[i], handles[j] = handles[j], handles[i]
			})
			for i, h := range handles {
				key := h.Key()
				require.NoError(tt, tree.Remove(h))
				require.Equal(tt, key, h.Key())
				require.Equal(tt, int64(tc.total-i-1), tree.Len())
				require.NoError(tt, RedViolationValidate[uint64, int](tree))
				require.NoError(tt, BlackViolationValidate[uint64, int](tree))
				require.NoError(tt, RankViolationValidate[uint64, int](tree))
			}
			require.Nil(tt, tree.Root())
		})
	}
}

func TestRbtreeRankModesAgree(t *testing.T) {
	lazy := NewRBTree[int32, int]()
	eager := NewRBTree[int32, int](WithRBTreeRankRecompute[int32, int]())
	lazyHandles := make([]RBNode[int32, int], 0, 256)
	eagerHandles := make([]RBNode[int32, int], 0, 256)
	for i := 0; i < 256; i++ {
		score := randv2.Int32N(101)
		lazyHandles = append(lazyHandles, lazy.Insert(score, i))
		eagerHandles = append(eagerHandles, eager.Insert(score, i))
	}
	for i := 0; i < 256; i += 3 {
		require.NoError(t, lazy.Remove(lazyHandles[i]))
		require.NoError(t, eager.Remove(eagerHandles[i]))
	}
	for i := range lazyHandles {
		require.Equal(t, eagerHandles[i].Rank(), lazyHandles[i].Rank())
	}
	require.NoError(t, RankViolationValidate[int32, int](lazy))
	require.NoError(t, RankViolationValidate[int32, int](eager))
}

func BenchmarkRbtreeRandomInsert(b *testing.B) {
	tree := NewRBTree[uint64, struct{}]()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tree.Insert(randv2.Uint64(), struct{}{})
	}
	b.ReportAllocs()
}

func BenchmarkRbtreeSearchByRank(b *testing.B) {
	tree := NewRBTree[uint64, struct{}]()
	for i := 0; i < 1<<16; i++ {
		tree.Insert(randv2.Uint64(), struct{}{})
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tree.SearchByRank(randv2.Int64N(tree.Len()) + 1)
	}
	b.ReportAllocs()
}
