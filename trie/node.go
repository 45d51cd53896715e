package trie

import (
	"fmt"
	"math/bits"

	"github.com/ethereum/go-ethereum/common"
)

// SparseNode is the tagged union of node shapes a path in the node table
// can hold: Empty, Hash, Leaf, Extension or Branch. No children are
// stored inline; only the path arithmetic (key/mask) needed to reach them
// in the node table.
type SparseNode interface {
	fmt.Stringer
	isSparseNode()
}

// sparseEmptyNode is the canonical empty trie. It is only ever legal at
// the root.
type sparseEmptyNode struct{}

func (sparseEmptyNode) isSparseNode() {}
func (sparseEmptyNode) String() string { return "Empty" }

// SparseEmpty is the single instance representing the empty trie.
var SparseEmpty SparseNode = sparseEmptyNode{}

// sparseHashNode is a placeholder for a subtree that has not been revealed.
type sparseHashNode common.Hash

func (sparseHashNode) isSparseNode() {}
func (n sparseHashNode) String() string { return fmt.Sprintf("Hash(%x)", [32]byte(n)) }

func (n sparseHashNode) Hash() common.Hash { return common.Hash(n) }

// NewHashNode builds a blinded placeholder node from a 32-byte digest.
func NewHashNode(h common.Hash) SparseNode { return sparseHashNode(h) }

// sparseLeafNode is a leaf whose full key is the owning path plus Key.
type sparseLeafNode struct {
	Key  Path
	hash *common.Hash
}

func (*sparseLeafNode) isSparseNode() {}
func (n *sparseLeafNode) String() string { return fmt.Sprintf("Leaf(key=%x)", []byte(n.Key)) }

// sparseExtensionNode is a single-child shortcut; its child lives at
// path++Key.
type sparseExtensionNode struct {
	Key  Path
	hash *common.Hash
}

func (*sparseExtensionNode) isSparseNode() {}
func (n *sparseExtensionNode) String() string {
	return fmt.Sprintf("Extension(key=%x)", []byte(n.Key))
}

// sparseBranchNode is a 16-way branch; child i lives at path++[i] when bit
// i of Mask is set.
type sparseBranchNode struct {
	Mask uint16
	hash *common.Hash
}

func (*sparseBranchNode) isSparseNode() {}
func (n *sparseBranchNode) String() string { return fmt.Sprintf("Branch(mask=%016b)", n.Mask) }

// NewLeaf builds a leaf node with an empty (invalid) cached hash.
func NewLeaf(key Path) SparseNode {
	return &sparseLeafNode{Key: key}
}

// NewExtension builds an extension node with an empty cached hash.
func NewExtension(key Path) SparseNode {
	return &sparseExtensionNode{Key: key}
}

// NewBranch builds a branch node from a state mask with an empty cached
// hash.
func NewBranch(mask uint16) SparseNode {
	return &sparseBranchNode{Mask: mask}
}

// NewSplitBranch builds a branch with exactly two children set, at nibbles
// a and b. a and b must differ.
func NewSplitBranch(a, b byte) SparseNode {
	return &sparseBranchNode{Mask: bit(a) | bit(b)}
}

// FromDecodedNode projects a decoded wire node into a SparseNode stripped
// of its children, as used when a reveal installs a node's own shape
// before recursing into what it points at.
func FromDecodedNode(n DecodedNode) SparseNode {
	switch dn := n.(type) {
	case EmptyRootNode:
		return SparseEmpty
	case *LeafNode:
		return NewLeaf(dn.Key)
	case *ExtensionNode:
		return NewExtension(dn.Key)
	case *BranchNode:
		return NewBranch(dn.Mask)
	default:
		panic(fmt.Sprintf("trie: unknown decoded node type %T", n))
	}
}

func bit(nibble byte) uint16 { return uint16(1) << nibble }

func maskIsSet(mask uint16, nibble byte) bool { return mask&bit(nibble) != 0 }

func maskSet(mask uint16, nibble byte) uint16 { return mask | bit(nibble) }

func maskUnset(mask uint16, nibble byte) uint16 { return mask &^ bit(nibble) }

func maskPopcount(mask uint16) int { return bits.OnesCount16(mask) }

// maskFirstSetBit returns the index of the only set bit of mask. Callers
// must ensure popcount(mask) == 1.
func maskFirstSetBit(mask uint16) byte { return byte(bits.TrailingZeros16(mask)) }
