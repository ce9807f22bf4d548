package list

import (
	"iter"
	"sync/atomic"

	"github.com/benz9527/xsearch/lib/infra"
)

var _ LinkedList[struct{}] = (*doublyLinkedList[struct{}])(nil) // Type check assertion

type nodeElementInListStatus uint8

const (
	notInList nodeElementInListStatus = iota
	emtpyList
	theOnlyOne
	theFirstButNotTheLast
	theLastButNotTheFirst
	inMiddle
)

/*
The root is the sentinel, the list is a ring.

	   +------+     +------+     +------+
	+->| root |<--->|  e1  |<--->|  e2  |<-+
	|  +------+     +------+     +------+  |
	+--------------------------------------+
*/
type doublyLinkedList[T comparable] struct {
	root *NodeElement[T]
	len  atomic.Int64
}

func NewLinkedList[T comparable]() LinkedList[T] {
	return new(doublyLinkedList[T]).init()
}

func (l *doublyLinkedList[T]) getRoot() *NodeElement[T] {
	return l.root
}

func (l *doublyLinkedList[T]) getRootHead() *NodeElement[T] {
	return l.root.next
}

func (l *doublyLinkedList[T]) setRootHead(targetE *NodeElement[T]) {
	l.root.next = targetE
	targetE.prev = l.root
}

func (l *doublyLinkedList[T]) getRootTail() *NodeElement[T] {
	return l.root.prev
}

func (l *doublyLinkedList[T]) setRootTail(targetE *NodeElement[T]) {
	l.root.prev = targetE
	targetE.next = l.root
}

func (l *doublyLinkedList[T]) init() *doublyLinkedList[T] {
	l.root = &NodeElement[T]{
		listRef: l,
	}
	l.setRootHead(l.root)
	l.setRootTail(l.root)
	l.len.Store(0)
	return l
}

func (l *doublyLinkedList[T]) Len() int64 {
	return l.len.Load()
}

func (l *doublyLinkedList[T]) checkElement(targetE *NodeElement[T]) (*NodeElement[T], nodeElementInListStatus) {
	if l.len.Load() == 0 {
		return l.getRoot(), emtpyList
	}

	if targetE == nil || targetE == l.root || targetE.listRef != l || targetE.prev == nil || targetE.next == nil {
		return nil, notInList
	}

	// mem address compare
	switch {
	case targetE.prev == l.getRoot() && targetE.next == l.getRoot():
		if l.getRootHead() != targetE || l.getRootTail() != targetE {
			return nil, notInList
		}
		return targetE, theOnlyOne
	case targetE.prev == l.getRoot():
		if targetE.next.prev != targetE {
			return nil, notInList
		}
		return targetE, theFirstButNotTheLast
	case targetE.next == l.getRoot():
		if targetE.prev.next != targetE {
			return nil, notInList
		}
		return targetE, theLastButNotTheFirst
	default:
		if targetE.prev.next != targetE || targetE.next.prev != targetE {
			return nil, notInList
		}
		return targetE, inMiddle
	}
}

func (l *doublyLinkedList[T]) append(e *NodeElement[T]) *NodeElement[T] {
	e.listRef = l
	lastOne := l.getRootTail()
	lastOne.next = e
	e.prev = lastOne
	l.setRootTail(e)
	l.len.Add(1)
	return e
}

func (l *doublyLinkedList[T]) Append(elements ...*NodeElement[T]) []*NodeElement[T] {
	for i := 0; i < len(elements); i++ {
		e := elements[i]
		if e == nil || e == l.root {
			continue
		}
		if e.listRef != nil {
			// Owned by the other list or appended already.
			elements[i] = nil
			continue
		}
		elements[i] = l.append(e)
	}
	return elements
}

func (l *doublyLinkedList[T]) PushBack(v T) *NodeElement[T] {
	if l == nil || l.root == nil {
		return nil
	}
	return l.append(newNodeElement[T](v, nil))
}

func (l *doublyLinkedList[T]) Remove(targetE *NodeElement[T]) *NodeElement[T] {
	if l == nil || l.root == nil || l.len.Load() == 0 {
		return nil
	}

	var (
		at     *NodeElement[T]
		status nodeElementInListStatus
	)
	switch at, status = l.checkElement(targetE); status {
	case theOnlyOne:
		l.setRootHead(l.getRoot())
		l.setRootTail(l.getRoot())
	case theFirstButNotTheLast:
		l.setRootHead(at.next)
	case theLastButNotTheFirst:
		l.setRootTail(at.prev)
	case inMiddle:
		at.prev.next = at.next
		at.next.prev = at.prev
	default:
		return nil
	}

	// avoid memory leaks
	at.listRef = nil
	at.next = nil
	at.prev = nil

	l.len.Add(-1)
	return at
}

func (l *doublyLinkedList[T]) Contains(targetE *NodeElement[T]) bool {
	if l == nil || l.root == nil {
		return false
	}
	_, status := l.checkElement(targetE)
	return status != notInList && status != emtpyList
}

func (l *doublyLinkedList[T]) Front() *NodeElement[T] {
	if l == nil || l.root == nil || l.len.Load() == 0 {
		return nil
	}
	return l.getRootHead()
}

func (l *doublyLinkedList[T]) Back() *NodeElement[T] {
	if l == nil || l.root == nil || l.len.Load() == 0 {
		return nil
	}
	return l.getRootTail()
}

func (l *doublyLinkedList[T]) At(idx int64) (*NodeElement[T], bool) {
	size := l.len.Load()
	if idx < 0 || idx >= size {
		return nil, false
	}

	if idx < size>>1 {
		iterator := l.getRootHead()
		for i := int64(0); i < idx; i++ {
			iterator = iterator.next
		}
		return iterator, true
	}
	iterator := l.getRootTail()
	for i := size - 1; i > idx; i-- {
		iterator = iterator.prev
	}
	return iterator, true
}

// Foreach, allows remove linked list elements while iterating.
func (l *doublyLinkedList[T]) Foreach(fn func(idx int64, e *NodeElement[T]) error) error {
	if l == nil || l.root == nil || fn == nil || l.len.Load() == 0 {
		return infra.NewErrorStack("[doubly-linked-list] empty")
	}

	var (
		iterator       = l.getRootHead()
		idx      int64 = 0
	)
	for iterator != l.getRoot() {
		n := iterator.next
		if err := fn(idx, iterator); err != nil {
			return err
		}
		iterator = n
		idx++
	}
	return nil
}

// ReverseForeach, allows remove linked list elements while iterating.
func (l *doublyLinkedList[T]) ReverseForeach(fn func(idx int64, e *NodeElement[T])) {
	if l == nil || l.root == nil || fn == nil || l.len.Load() == 0 {
		return
	}

	var (
		iterator       = l.getRootTail()
		idx      int64 = 0
	)
	for iterator != l.getRoot() {
		p := iterator.prev
		fn(idx, iterator)
		iterator = p
		idx++
	}
}

func (l *doublyLinkedList[T]) FindFirst(targetV T, compareFn ...func(e *NodeElement[T]) bool) (*NodeElement[T], bool) {
	if l == nil || l.root == nil || l.len.Load() == 0 {
		return nil, false
	}

	if len(compareFn) <= 0 {
		compareFn = []func(e *NodeElement[T]) bool{
			func(e *NodeElement[T]) bool {
				return e.Value == targetV
			},
		}
	}

	for iterator := l.getRootHead(); iterator != l.getRoot(); iterator = iterator.next {
		if compareFn[0](iterator) {
			return iterator, true
		}
	}
	return nil, false
}

func (l *doublyLinkedList[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		if l == nil || l.root == nil {
			return
		}
		for iterator := l.getRootHead(); iterator != l.getRoot(); {
			n := iterator.next
			if !yield(iterator.Value) {
				return
			}
			iterator = n
		}
	}
}
