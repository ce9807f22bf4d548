package list

import "iter"

// Note that the doubly linked list is not thread safe.

// LinkedList keeps the elements in the order they are appended.
type LinkedList[T comparable] interface {
	Len() int64
	// Append appends the detached elements to the list l and returns them.
	// The element owned by the other list is skipped and returned as nil.
	Append(elements ...*NodeElement[T]) []*NodeElement[T]
	// PushBack inserts a new element e with value v at the back of list l and returns e.
	PushBack(v T) *NodeElement[T]
	// Remove removes targetE from l if targetE is an element of list l and returns targetE.
	// Returns nil if the list is empty or the element is not in the list.
	Remove(targetE *NodeElement[T]) *NodeElement[T]
	// Contains reports whether targetE is linked into the list l.
	Contains(targetE *NodeElement[T]) bool
	// Front returns the first element of doubly linked list l or nil if the list is empty.
	Front() *NodeElement[T]
	// Back returns the last element of doubly linked list l or nil if the list is empty.
	Back() *NodeElement[T]
	// At returns the element at the 0-based position idx.
	// It walks from the nearer end of the list.
	At(idx int64) (*NodeElement[T], bool)
	// Foreach traverses the list l and executes function fn for each element.
	// If fn returns an error, the traversal stops and returns the error.
	Foreach(fn func(idx int64, e *NodeElement[T]) error) error
	// ReverseForeach iterates the list in reverse order, calling fn for each element.
	ReverseForeach(fn func(idx int64, e *NodeElement[T]))
	// FindFirst finds the first element that satisfies the compareFn and returns the element and true if found.
	// If compareFn is not provided, it will use the default compare function that compares the value of element.
	FindFirst(v T, compareFn ...func(e *NodeElement[T]) bool) (*NodeElement[T], bool)
	// Values is the lazy front to back iteration of the values.
	Values() iter.Seq[T]
}
