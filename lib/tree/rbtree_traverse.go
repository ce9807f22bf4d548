package tree

import (
	"iter"
	"sync/atomic"
)

// Traverse returns a lazy read only walk. Each call starts a new walk.
// The tree must not be modified while the walk is in progress.
func (tree *rbTree[K, V]) Traverse(order TraverseOrder) iter.Seq[RBNode[K, V]] {
	var seq iter.Seq[*rbNode[K, V]]
	switch order {
	case PreOrder:
		seq = tree.preorder(tree.root)
	case InOrder:
		seq = tree.inorder(tree.root)
	case PostOrder:
		seq = tree.postorder(tree.root)
	case ReverseInOrder:
		seq = tree.reverseInorder(tree.root)
	default:
		return func(yield func(RBNode[K, V]) bool) {}
	}
	return func(yield func(RBNode[K, V]) bool) {
		for node := range seq {
			if !yield(node) {
				return
			}
		}
	}
}

func (tree *rbTree[K, V]) stackCap() int64 {
	return atomic.LoadInt64(&tree.count)>>1 + 1
}

func (tree *rbTree[K, V]) preorder(root *rbNode[K, V]) iter.Seq[*rbNode[K, V]] {
	return func(yield func(*rbNode[K, V]) bool) {
		if root == nil {
			return
		}
		stack := make([]*rbNode[K, V], 0, tree.stackCap())
		defer func() {
			clear(stack)
		}()
		stack = append(stack, root)
		for len(stack) > 0 {
			aux := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(aux) {
				return
			}
			// Right first, so the left is popped first.
			if aux.right != nil {
				stack = append(stack, aux.right)
			}
			if aux.left != nil {
				stack = append(stack, aux.left)
			}
		}
	}
}

func (tree *rbTree[K, V]) inorder(root *rbNode[K, V]) iter.Seq[*rbNode[K, V]] {
	return func(yield func(*rbNode[K, V]) bool) {
		stack := make([]*rbNode[K, V], 0, tree.stackCap())
		defer func() {
			clear(stack)
		}()
		for aux := root; aux != nil || len(stack) > 0; {
			for ; aux != nil; aux = aux.left {
				stack = append(stack, aux)
			}
			aux = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(aux) {
				return
			}
			aux = aux.right
		}
	}
}

func (tree *rbTree[K, V]) reverseInorder(root *rbNode[K, V]) iter.Seq[*rbNode[K, V]] {
	return func(yield func(*rbNode[K, V]) bool) {
		stack := make([]*rbNode[K, V], 0, tree.stackCap())
		defer func() {
			clear(stack)
		}()
		for aux := root; aux != nil || len(stack) > 0; {
			for ; aux != nil; aux = aux.right {
				stack = append(stack, aux)
			}
			aux = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(aux) {
				return
			}
			aux = aux.left
		}
	}
}

// The last visited node tells whether the right subtree is done.
func (tree *rbTree[K, V]) postorder(root *rbNode[K, V]) iter.Seq[*rbNode[K, V]] {
	return func(yield func(*rbNode[K, V]) bool) {
		stack := make([]*rbNode[K, V], 0, tree.stackCap())
		defer func() {
			clear(stack)
		}()
		var last *rbNode[K, V]
		for aux := root; aux != nil || len(stack) > 0; {
			if aux != nil {
				stack = append(stack, aux)
				aux = aux.left
				continue
			}
			peek := stack[len(stack)-1]
			if peek.right != nil && peek.right != last {
				aux = peek.right
				continue
			}
			stack = stack[:len(stack)-1]
			if !yield(peek) {
				return
			}
			last = peek
		}
	}
}
