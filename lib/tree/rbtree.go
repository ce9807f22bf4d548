package tree

import (
	"sync/atomic"

	"github.com/benz9527/xsearch/lib/infra"
)

var _ RankTree[int32, struct{}] = (*rbTree[int32, struct{}])(nil) // Type check assertion

type rbNode[K infra.OrderedKey, V any] struct {
	parent  *rbNode[K, V]
	left    *rbNode[K, V]
	right   *rbNode[K, V]
	treeRef *rbTree[K, V]
	key     K
	val     V
	size    int64 // Number of nodes in the subtree, includes itself.
	rank    int64 // Written by rankRecompute only.
	color   RBColor
}

func (node *rbNode[K, V]) Color() RBColor {
	return node.color
}

func (node *rbNode[K, V]) Key() K {
	return node.key
}

func (node *rbNode[K, V]) Val() V {
	return node.val
}

func (node *rbNode[K, V]) Size() int64 {
	if node == nil {
		return 0
	}
	return node.size
}

func (node *rbNode[K, V]) Rank() int64 {
	if node == nil || node.treeRef == nil {
		return 0
	}
	if node.treeRef.isRankRecompute {
		return node.rank
	}
	return node.treeRef.Len() - node.index()
}

func (node *rbNode[K, V]) Left() RBNode[K, V] {
	if node == nil || node.left == nil {
		return nil
	}
	return node.left
}

func (node *rbNode[K, V]) Parent() RBNode[K, V] {
	if node == nil || node.parent == nil {
		return nil
	}
	return node.parent
}

func (node *rbNode[K, V]) Right() RBNode[K, V] {
	if node == nil || node.right == nil {
		return nil
	}
	return node.right
}

// The nil node is the sentinel leaf, it is always black.
func (node *rbNode[K, V]) isRed() bool {
	return node != nil && node.color == Red
}

func (node *rbNode[K, V]) isBlack() bool {
	return node == nil || node.color == Black
}

func (node *rbNode[K, V]) isRoot() bool {
	return node != nil && node.parent == nil
}

func (node *rbNode[K, V]) Direction() RBDirection {
	if node == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] nil leaf node without direction")
	}

	if node.isRoot() {
		return Root
	}
	if node == node.parent.left {
		return Left
	}
	return Right
}

func (node *rbNode[K, V]) child(dir RBDirection) *rbNode[K, V] {
	switch dir {
	case Left:
		return node.left
	case Right:
		return node.right
	default:
	}
	// impossible run to here
	panic( /* debug assertion */ "[rbtree] root direction has no child")
}

func (node *rbNode[K, V]) fixLink() {
	if node.left != nil {
		node.left.parent = node
	}
	if node.right != nil {
		node.right.parent = node
	}
}

func (node *rbNode[K, V]) fixSize() {
	node.size = node.left.Size() + node.right.Size() + 1
}

func (node *rbNode[K, V]) minimum() *rbNode[K, V] {
	aux := node
	for ; aux != nil && aux.left != nil; aux = aux.left {
	}
	return aux
}

func (node *rbNode[K, V]) maximum() *rbNode[K, V] {
	aux := node
	for ; aux != nil && aux.right != nil; aux = aux.right {
	}
	return aux
}

// The 0-based position of the node in the ascending key order.
// Sum up the left subtree sizes while backtracking to the root.
func (node *rbNode[K, V]) index() int64 {
	idx := node.left.Size()
	for aux := node; !aux.isRoot(); aux = aux.parent {
		if aux.Direction() == Right {
			idx += aux.parent.left.Size() + 1
		}
	}
	return idx
}

func (node *rbNode[K, V]) top() *rbNode[K, V] {
	aux := node
	for ; aux != nil && aux.parent != nil; aux = aux.parent {
	}
	return aux
}

func (node *rbNode[K, V]) detach() {
	node.parent = nil
	node.left = nil
	node.right = nil
	node.treeRef = nil
	node.size = 0
	node.rank = 0
}

type rbTree[K infra.OrderedKey, V any] struct {
	root            *rbNode[K, V]
	count           int64
	isRmBorrowPred  bool
	isRankRecompute bool
}

func (tree *rbTree[K, V]) keyCompare(k1, k2 K) int64 {
	return infra.DefaultKeyComparator[K](k1, k2)
}

func (tree *rbTree[K, V]) Len() int64 {
	return atomic.LoadInt64(&tree.count)
}

func (tree *rbTree[K, V]) Root() RBNode[K, V] {
	if tree.root == nil {
		return nil
	}
	return tree.root
}

// References:
// https://elixir.bootlin.com/linux/latest/source/lib/rbtree.c
// Introduction to Algorithms (CLRS), chapter 13 and 14.1.
// rbtree properties:
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// p1. Every node is either red or black.
// p2. All NIL nodes are considered black.
// p3. A red node does not have a red child. (red-violation)
// p4. Every path from a given node to any of its descendant
//   NIL nodes goes through the same number of black nodes. (black-violation)
// p5. The root is black.
// Augmentation: size(X) = size(X.left) + size(X.right) + 1, so that
// the rank and the select both cost O(h).

/*
		 |                         |
		 X                         S
		/ \     leftRotate(X)     / \
	   L   S    ============>    X   Sd
		  / \                   / \
		Sc   Sd                L   Sc

Only X and S subtree sizes are changed, S takes over the X's.
*/
func (tree *rbTree[K, V]) leftRotate(x *rbNode[K, V]) {
	if x == nil || x.right == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] left rotate node x is nil or x.right is nil")
	}

	p, y := x.parent, x.right
	dir := x.Direction()
	x.right, y.left = y.left, x

	x.fixLink()
	y.fixLink()

	switch dir {
	case Root:
		tree.root = y
	case Left:
		p.left = y
	case Right:
		p.right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to left-rotate")
	}
	y.parent = p

	y.size = x.size
	x.fixSize()
}

/*
			 |                         |
			 X                         S
			/ \     rightRotate(S)    / \
	       L   S    <============    X   R
			  / \                   / \
			Sc   Sd               Sc   Sd
*/
func (tree *rbTree[K, V]) rightRotate(x *rbNode[K, V]) {
	if x == nil || x.left == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] right rotate node x is nil or x.left is nil")
	}

	p, y := x.parent, x.left
	dir := x.Direction()
	x.left, y.right = y.right, x

	x.fixLink()
	y.fixLink()

	switch dir {
	case Root:
		tree.root = y
	case Left:
		p.left = y
	case Right:
		p.right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to right-rotate")
	}
	y.parent = p

	y.size = x.size
	x.fixSize()
}

// rotate moves x down to the dir side.
func (tree *rbTree[K, V]) rotate(x *rbNode[K, V], dir RBDirection) {
	switch dir {
	case Left:
		tree.leftRotate(x)
	case Right:
		tree.rightRotate(x)
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unable to rotate to root direction")
	}
}

// Insert links a new red leaf. The equal key is going to the right,
// so the ties are kept in insertion order.
// i1: Empty rbtree, the new node becomes the root and is painted to black.
func (tree *rbTree[K, V]) Insert(key K, val V) RBNode[K, V] {
	z := &rbNode[K, V]{
		key:     key,
		val:     val,
		color:   Red,
		size:    1,
		treeRef: tree,
	}

	var y *rbNode[K, V]
	for x := tree.root; x != nil; {
		y = x
		x.size++
		if /* less */ tree.keyCompare(key, x.key) < 0 {
			x = x.left
		} else /* greater or equal */ {
			x = x.right
		}
	}

	z.parent = y
	if /* i1 */ y == nil {
		tree.root = z
	} else if tree.keyCompare(key, y.key) < 0 {
		y.left = z
	} else {
		y.right = z
	}

	atomic.AddInt64(&tree.count, 1)
	tree.insertRebalance(z)
	tree.rankRecompute()
	return z
}

/*
New node X is red by default.

<X> is a RED node.
[X] is a BLACK node (or NIL).

Loop while the parent P is red (red-violation). P is not the root
because the root is black, so the grandpa G exists.

im1: Both the parent P and the uncle U are red, grandpa G is black.
Repaint P and U into black, G into red.
G may be still red-violation, continue to fix G.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<X>             <X>

im2: The uncle U is black and X is the inner grandchild.
Rotate P to the opposite direction, then P becomes the outer
grandchild. Enter im3 to fix.

	  [G]                 [G]
	  / \    rotate(P)    / \
	<P> [U]  ========>  <X> [U]
	  \                 /
	  <X>             <P>

im3: The uncle U is black and X is the outer grandchild.
Repaint P into black and G into red, rotate G away from X.
The loop terminates, P is black now.

	    [G]                 <P>               [P]
	    / \    rotate(G)    / \    repaint    / \
	  <P> [U]  ========>  <X> [G]  ======>  <X> <G>
	  /                         \                 \
	<X>                         [U]               [U]

Repaint the root into black at last (p5).
*/
func (tree *rbTree[K, V]) insertRebalance(x *rbNode[K, V]) {
	for x.parent.isRed() {
		p := x.parent
		gp := p.parent
		dir := p.Direction()
		if dir == Root {
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] insert violate, red root")
		}

		if u := gp.child(-dir); /* im1 */ u.isRed() {
			p.color = Black
			u.color = Black
			gp.color = Red
			x = gp
			continue
		}

		if /* im2 */ x.Direction() != dir {
			x = p
			tree.rotate(x, dir)
			p = x.parent
		}

		/* im3 */
		p.color = Black
		gp.color = Red
		tree.rotate(gp, -dir)
	}
	tree.root.color = Black
}

// Remove removes the node handle which is returned by Insert or a search.
// A node from the other tree or a removed node results in ErrNodeNotOwned.
func (tree *rbTree[K, V]) Remove(node RBNode[K, V]) error {
	if atomic.LoadInt64(&tree.count) <= 0 {
		return infra.WrapErrorStackWithMessage(ErrEmptyTree, "[rbtree] nothing to remove")
	}
	z, ok := node.(*rbNode[K, V])
	if !ok || z == nil || z.treeRef != tree || z.top() != tree.root {
		return infra.WrapErrorStackWithMessage(ErrNodeNotOwned, "[rbtree] remove")
	}
	tree.removeNode(z)
	return nil
}

// transplant replaces the subtree rooted at u by the subtree rooted at v.
func (tree *rbTree[K, V]) transplant(u, v *rbNode[K, V]) {
	switch dir := u.Direction(); dir {
	case Root:
		tree.root = v
	case Left:
		u.parent.left = v
	case Right:
		u.parent.right = v
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to transplant")
	}
	if v != nil {
		v.parent = u.parent
	}
}

func (tree *rbTree[K, V]) decreaseSize(from *rbNode[K, V]) {
	for aux := from; aux != nil; aux = aux.parent {
		aux.size--
	}
}

/*
r1: Current node Z has at most one child C (or NIL).
Splice out Z, C takes the place of Z.

	  |                |
	  Z                C
	 / \   ======>
	C  NIL

r2: Current node Z has left and right node.
Borrow the succ S (minimum of the right subtree) or the pred
(maximum of the left subtree). The node S is relinked into the
place of Z and takes the color of Z. So the node handles are
never swapped, only the node S's slot is spliced out.

	  |                    |
	  Z                    S
	 / \                  / \
	L  ..   relink(S)    L  ..
		|   =========>       |
		P                    P
	   / \                  / \
	  S  ..               Sr  ..
	   \
	    Sr

If the color of the spliced out slot is black, the child X which
takes the slot is the "extra black" node. (black-violation)
*/
func (tree *rbTree[K, V]) removeNode(z *rbNode[K, V]) {
	var x, xParent *rbNode[K, V]
	y, yColor := z, z.color

	switch {
	case /* r1 */ z.left == nil:
		tree.decreaseSize(z.parent)
		x, xParent = z.right, z.parent
		tree.transplant(z, z.right)
	case /* r1 */ z.right == nil:
		tree.decreaseSize(z.parent)
		x, xParent = z.left, z.parent
		tree.transplant(z, z.left)
	default /* r2 */ :
		dir := Right
		if tree.isRmBorrowPred {
			dir = Left
			y = z.left.maximum()
		} else {
			y = z.right.minimum()
		}
		yColor = y.color
		tree.decreaseSize(y.parent)

		// y has no child on the -dir side.
		x = y.child(dir)
		if y.parent == z {
			xParent = y
		} else {
			xParent = y.parent
			tree.transplant(y, x)
			switch dir {
			case Left:
				y.left = z.left
			case Right:
				y.right = z.right
			default:
			}
			y.fixLink()
		}
		tree.transplant(z, y)
		switch dir {
		case Left:
			y.right = z.right
		case Right:
			y.left = z.left
		default:
		}
		y.fixLink()
		y.color = z.color
		y.size = z.size
	}

	if yColor == Black {
		tree.removeRebalance(x, xParent)
	}
	atomic.AddInt64(&tree.count, -1)
	z.detach()
	tree.rankRecompute()
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

X carries an extra black. Loop while X is black and not the root.
S is the sibling of X, Sc is the S's child at the same side as X,
Sd is the S's child at the opposite side.
The sibling S is never NIL, the S side has the greater black height.

rm1: The sibling S is red, so P, Sc and Sd must be black.
Repaint S into black and P into red, rotate P to X side.
The new sibling is black. Enter rm2, rm3 or rm4.

	  [P]                   <S>               [S]
	  / \    l-rotate(P)    / \    repaint    / \
	[X] <S>  ==========>  [P] [Sd]  ======>  <P> [Sd]
	    / \               / \               / \
	 [Sc] [Sd]          [X] [Sc]          [X] [Sc]

rm2: The sibling S, nephews Sc and Sd are black.
Repaint S into red, the extra black is moved up to P.
If P is red, the loop terminates and P is painted into black.

	  {P}             {P}
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm3: The sibling S is black, Sc is red and Sd is black.
Repaint Sc into black and S into red, rotate S away from X.
The new sibling has a red far child. Enter rm4.

	                        {P}                {P}
	  {P}                   / \                / \
	  / \    r-rotate(S)  [X] <Sc>   repaint  [X] [Sc]
	[X] [S]  ==========>        \    ======>       \
	    / \                     [S]                <S>
	  <Sc> [Sd]                   \                  \
	                              [Sd]               [Sd]

rm4: The sibling S is black and Sd is red.
S takes the color of P, repaint P and Sd into black,
rotate P to X side. The extra black is absorbed and the loop terminates.

	  {P}                   [S]                {S}
	  / \    l-rotate(P)    / \     repaint    / \
	[X] [S]  ==========>  {P} <Sd>  ======>  [P] [Sd]
	    / \               / \                / \
	 [Sc] <Sd>          [X] [Sc]           [X] [Sc]

Paint X into black at last.
*/
func (tree *rbTree[K, V]) removeRebalance(x, parent *rbNode[K, V]) {
	for x != tree.root && x.isBlack() {
		// X may be the NIL leaf, take the direction from the parent.
		dir := Right
		if x == parent.left {
			dir = Left
		}

		s := parent.child(-dir)
		if /* rm1 */ s.isRed() {
			s.color = Black
			parent.color = Red
			tree.rotate(parent, dir)
			s = parent.child(-dir)
		}

		if s == nil {
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] remove violate, nil sibling")
		}

		if /* rm2 */ s.left.isBlack() && s.right.isBlack() {
			s.color = Red
			x, parent = parent, parent.parent
			continue
		}

		if /* rm3 */ s.child(-dir).isBlack() {
			s.child(dir).color = Black
			s.color = Red
			tree.rotate(s, -dir)
			s = parent.child(-dir)
		}

		/* rm4 */
		s.color = parent.color
		parent.color = Black
		s.child(-dir).color = Black
		tree.rotate(parent, dir)
		x, parent = tree.root, nil
	}
	if x != nil {
		x.color = Black
	}
}

// rankRecompute assigns the ranks in a full inorder traversal.
// It costs O(n) per mutation and is disabled by default, the rank
// is derived from the subtree sizes instead.
func (tree *rbTree[K, V]) rankRecompute() {
	if !tree.isRankRecompute {
		return
	}
	rank := atomic.LoadInt64(&tree.count)
	for node := range tree.inorder(tree.root) {
		node.rank = rank
		rank--
	}
}

func (tree *rbTree[K, V]) search(fn func(*rbNode[K, V]) int64) *rbNode[K, V] {
	for aux := tree.root; aux != nil; {
		res := fn(aux)
		if res == 0 {
			return aux
		} else if res > 0 {
			aux = aux.right
		} else {
			aux = aux.left
		}
	}
	return nil
}

// SearchByKey returns any node with the equal key along the search path.
func (tree *rbTree[K, V]) SearchByKey(key K) (RBNode[K, V], bool) {
	node := tree.search(func(node *rbNode[K, V]) int64 {
		return tree.keyCompare(key, node.key)
	})
	if node == nil {
		return nil, false
	}
	return node, true
}

// SearchByRank selects the (Len-rank)th node in the ascending key order.
// The rank out of [1, Len] is not found instead of clamping.
func (tree *rbTree[K, V]) SearchByRank(rank int64) (RBNode[K, V], bool) {
	size := atomic.LoadInt64(&tree.count)
	if rank < 1 || rank > size {
		return nil, false
	}

	k := size - rank
	for aux := tree.root; aux != nil; {
		l := aux.left.Size()
		switch {
		case k < l:
			aux = aux.left
		case k == l:
			return aux, true
		default:
			k -= l + 1
			aux = aux.right
		}
	}
	// impossible run to here
	panic( /* debug assertion */ "[rbtree] subtree size out of sync")
}

func (tree *rbTree[K, V]) Min() (RBNode[K, V], bool) {
	if tree.root == nil {
		return nil, false
	}
	return tree.root.minimum(), true
}

func (tree *rbTree[K, V]) Max() (RBNode[K, V], bool) {
	if tree.root == nil {
		return nil, false
	}
	return tree.root.maximum(), true
}

// Foreach is the inorder traversal.
func (tree *rbTree[K, V]) Foreach(action func(idx int64, color RBColor, key K, val V) bool) {
	idx := int64(0)
	for node := range tree.inorder(tree.root) {
		if !action(idx, node.color, node.key, node.val) {
			return
		}
		idx++
	}
}

// Release detaches all nodes, the node handles are no longer owned.
func (tree *rbTree[K, V]) Release() {
	size := atomic.LoadInt64(&tree.count)
	aux := tree.root
	tree.root = nil
	if size <= 0 || aux == nil {
		atomic.StoreInt64(&tree.count, 0)
		return
	}

	stack := make([]*rbNode[K, V], 0, size>>1+1)
	defer func() {
		clear(stack)
	}()
	stack = append(stack, aux)
	for len(stack) > 0 {
		aux = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if aux.left != nil {
			stack = append(stack, aux.left)
		}
		if aux.right != nil {
			stack = append(stack, aux.right)
		}
		aux.detach()
		atomic.AddInt64(&tree.count, -1)
	}
}

type RBTreeOpt[K infra.OrderedKey, V any] func(*rbTree[K, V])

// WithRBTreeRemoveBorrowPred borrows the pred instead of the succ to
// remove a node with two children.
func WithRBTreeRemoveBorrowPred[K infra.OrderedKey, V any]() RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.isRmBorrowPred = true
	}
}

// WithRBTreeRankRecompute stores the rank in each node and recomputes
// all ranks by an inorder traversal after every insert and remove.
func WithRBTreeRankRecompute[K infra.OrderedKey, V any]() RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.isRankRecompute = true
	}
}

func NewRBTree[K infra.OrderedKey, V any](opts ...RBTreeOpt[K, V]) RankTree[K, V] {
	tree := &rbTree[K, V]{
		count:           0,
		isRmBorrowPred:  false,
		isRankRecompute: false,
	}

	for _, o := range opts {
		o(tree)
	}
	return tree
}
