package tree

import (
	"errors"
	"iter"

	"github.com/benz9527/xsearch/lib/infra"
)

// go install golang.org/x/tools/cmd/stringer@latest

//go:generate stringer -type=RBColor
type RBColor uint8

const (
	Black RBColor = iota
	Red
)

//go:generate stringer -type=RBDirection
type RBDirection int8

const (
	Left RBDirection = -1 + iota
	Root
	Right
)

//go:generate stringer -type=TraverseOrder
type TraverseOrder uint8

const (
	PreOrder TraverseOrder = iota
	InOrder
	PostOrder
	// ReverseInOrder visits the keys from the greatest to the least,
	// it is the ascending rank order.
	ReverseInOrder
)

var (
	ErrEmptyTree      = errors.New("[rbtree] empty tree")
	ErrNodeNotOwned   = errors.New("[rbtree] node is not owned by the tree")
	ErrRedViolation   = errors.New("[rbtree] red violation")
	ErrBlackViolation = errors.New("[rbtree] black violation")
	ErrOrderViolation = errors.New("[rbtree] order violation")
	ErrSizeViolation  = errors.New("[rbtree] subtree size violation")
	ErrRankViolation  = errors.New("[rbtree] rank violation")
)

// RBNode is the read only view of a tree node.
// The node handle is stable until it is removed from the tree.
type RBNode[K infra.OrderedKey, V any] interface {
	Key() K
	Val() V
	Color() RBColor
	// Rank is the 1-based position in descending key order.
	// 0 means that the node is not owned by any tree.
	Rank() int64
	// Size is the number of nodes in the subtree rooted at the node.
	Size() int64
	Left() RBNode[K, V]
	Right() RBNode[K, V]
	Parent() RBNode[K, V]
}

// RankTree is a red-black tree augmented by the subtree size, so
// that the rank of a node and the node of a rank are both found
// in O(log n).
// Equal keys are allowed and kept in insertion order.
type RankTree[K infra.OrderedKey, V any] interface {
	Len() int64
	Root() RBNode[K, V]
	Insert(key K, val V) RBNode[K, V]
	Remove(node RBNode[K, V]) error
	SearchByKey(key K) (RBNode[K, V], bool)
	SearchByRank(rank int64) (RBNode[K, V], bool)
	Min() (RBNode[K, V], bool)
	Max() (RBNode[K, V], bool)
	Traverse(order TraverseOrder) iter.Seq[RBNode[K, V]]
	Foreach(action func(idx int64, color RBColor, key K, val V) bool)
	Release()
}
