package tree

import (
	"fmt"

	"github.com/benz9527/xsearch/lib/infra"
)

func isBlack[K infra.OrderedKey, V any](node RBNode[K, V]) bool {
	return node == nil || node.Color() == Black
}

func isRed[K infra.OrderedKey, V any](node RBNode[K, V]) bool {
	return node != nil && node.Color() == Red
}

func isRoot[K infra.OrderedKey, V any](node RBNode[K, V]) bool {
	return node != nil && node.Parent() == nil
}

func subtreeSize[K infra.OrderedKey, V any](node RBNode[K, V]) int64 {
	if node == nil {
		return 0
	}
	return node.Size()
}

func blackDepthTo[K infra.OrderedKey, V any](target, to RBNode[K, V]) int {
	depth := 0
	for aux := target; aux != to; aux = aux.Parent() {
		if isBlack[K, V](aux) {
			depth++
		}
	}
	return depth
}

// rbtree rule validation utilities.

// References:
// https://github1s.com/minghu6/rust-minghu6/blob/master/coll_st/src/bst/rb.rs

// Inorder traversal to validate the rbtree properties.
func RedViolationValidate[K infra.OrderedKey, V any](tree RankTree[K, V]) error {
	size := tree.Len()
	var aux = tree.Root()
	if size <= 0 || aux == nil {
		return nil
	}
	if isRed[K, V](aux) {
		return infra.WrapErrorStackWithMessage(ErrRedViolation, "red root")
	}

	stack := make([]RBNode[K, V], 0, size>>1)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.Left() {
		stack = append(stack, aux)
	}

	for size = int64(len(stack)); size > 0; size = int64(len(stack)) {
		if aux = stack[size-1]; isRed[K, V](aux) {
			if (!isRoot[K, V](aux.Parent()) && isRed[K, V](aux.Parent())) ||
				(isRed[K, V](aux.Left()) || isRed[K, V](aux.Right())) {
				return infra.WrapErrorStackWithMessage(ErrRedViolation, fmt.Sprintf("red node key %v", aux.Key()))
			}
		}

		stack = stack[:size-1]
		if aux.Right() != nil {
			for aux = aux.Right(); aux != nil; aux = aux.Left() {
				stack = append(stack, aux)
			}
		}
	}
	return nil
}

// BFS traversal to load all leaves.
func bfsLeaves[K infra.OrderedKey, V any](tree RankTree[K, V]) []RBNode[K, V] {
	size := tree.Len()
	var aux = tree.Root()
	if size <= 0 || aux == nil {
		return nil
	}

	leaves := make([]RBNode[K, V], 0, size>>1+1)
	stack := make([]RBNode[K, V], 0, size>>1+1)
	defer func() {
		clear(stack)
	}()
	stack = append(stack, aux)

	for len(stack) > 0 {
		aux = stack[0]
		l, r := aux.Left(), aux.Right()
		if /* nil leaves, keep one */ l == nil || r == nil {
			leaves = append(leaves, aux)
		}
		if l != nil {
			stack = append(stack, l)
		}
		if r != nil {
			stack = append(stack, r)
		}
		stack = stack[1:]
	}
	return leaves
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).

	        [13]
			/  \
		 <8>    [15]
		 / \    /  \
	  [6] [11] [14] [17]
	  /              /
	<1>            [16]

2-3-4 tree like:

	       <8> --- [13] --- <15>
		  /  \             /    \
		 /    \           /      \
	  <1>-[6][11]      [14] <16>-[17]

Each leaf node to root node black depth are equal.
*/
func BlackViolationValidate[K infra.OrderedKey, V any](tree RankTree[K, V]) error {
	leaves := bfsLeaves[K, V](tree)
	if leaves == nil {
		return nil
	}

	// The root is included, nil parent of root is the stop.
	blackDepth := blackDepthTo[K, V](leaves[0], nil)
	for i := 1; i < len(leaves); i++ {
		if depth := blackDepthTo[K, V](leaves[i], nil); depth != blackDepth {
			return infra.WrapErrorStackWithMessage(ErrBlackViolation,
				fmt.Sprintf("leaf key %v black depth %d, expected %d", leaves[i].Key(), depth, blackDepth))
		}
	}
	return nil
}

// RankViolationValidate checks the augmented properties by an inorder traversal.
// 1. The keys are non-decreasing.
// 2. size(X) = size(X.left) + size(X.right) + 1, and the root size is the Len.
// 3. The ranks are Len down to 1.
func RankViolationValidate[K infra.OrderedKey, V any](tree RankTree[K, V]) error {
	size := tree.Len()
	if root := tree.Root(); subtreeSize[K, V](root) != size {
		return infra.WrapErrorStackWithMessage(ErrSizeViolation,
			fmt.Sprintf("root size %d, len %d", subtreeSize[K, V](root), size))
	}

	var (
		prev    RBNode[K, V]
		visited int64
	)
	for node := range tree.Traverse(InOrder) {
		if prev != nil && node.Key() < prev.Key() {
			return infra.WrapErrorStackWithMessage(ErrOrderViolation,
				fmt.Sprintf("key %v after %v", node.Key(), prev.Key()))
		}
		if expected := subtreeSize[K, V](node.Left()) + subtreeSize[K, V](node.Right()) + 1; node.Size() != expected {
			return infra.WrapErrorStackWithMessage(ErrSizeViolation,
				fmt.Sprintf("key %v size %d, expected %d", node.Key(), node.Size(), expected))
		}
		if expected := size - visited; node.Rank() != expected {
			return infra.WrapErrorStackWithMessage(ErrRankViolation,
				fmt.Sprintf("key %v rank %d, expected %d", node.Key(), node.Rank(), expected))
		}
		prev = node
		visited++
	}
	if visited != size {
		return infra.WrapErrorStackWithMessage(ErrSizeViolation,
			fmt.Sprintf("visited %d, len %d", visited, size))
	}
	return nil
}
