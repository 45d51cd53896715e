package trie

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// EmptyRootHash is the Keccak-256 hash of the RLP-encoded empty byte
// string: the canonical root of the empty trie.
var EmptyRootHash = common.BytesToHash(crypto.Keccak256(emptyStringRLP))

// SparseTrie is the Blind/Revealed lifecycle wrapper. A freshly
// constructed SparseTrie is Blind; RevealRoot transitions it to Revealed,
// after which all other operations become available.
//
// SparseTrie explicitly models "no trie material known at all" as a
// first-class state rather than a nil root node.
type SparseTrie struct {
	revealed *RevealedTrie
}

// NewBlind returns a SparseTrie with no revealed material.
func NewBlind() *SparseTrie {
	return &SparseTrie{}
}

// RevealedEmpty returns a SparseTrie already revealed down to the single
// Empty root — the representation of an empty trie that is nonetheless
// ready to accept UpdateLeaf calls without a prior RevealRoot.
func RevealedEmpty() *SparseTrie {
	return &SparseTrie{revealed: newRevealedTrie()}
}

// IsBlind reports whether the trie has no revealed nodes.
func (t *SparseTrie) IsBlind() bool { return t.revealed == nil }

// AsRevealed returns the underlying RevealedTrie, or nil if the trie is
// still blind.
func (t *SparseTrie) AsRevealed() *RevealedTrie { return t.revealed }

// RevealRoot reveals node as the trie's root if the trie is still blind,
// and returns the now-revealed trie either way.
func (t *SparseTrie) RevealRoot(node DecodedNode) (*RevealedTrie, error) {
	if t.IsBlind() {
		r, err := revealedTrieFromRoot(node)
		if err != nil {
			return nil, err
		}
		t.revealed = r
	}
	return t.revealed, nil
}

// UpdateLeaf inserts or overwrites path's value. It requires the trie to
// already be revealed.
func (t *SparseTrie) UpdateLeaf(path Path, value []byte) error {
	if t.IsBlind() {
		return ErrBlind
	}
	return t.revealed.UpdateLeaf(path, value)
}

// RemoveLeaf deletes path's value, collapsing the node table as needed.
// It requires the trie to already be revealed.
func (t *SparseTrie) RemoveLeaf(path Path) error {
	if t.IsBlind() {
		return ErrBlind
	}
	return t.revealed.RemoveLeaf(path)
}

// RevealNode installs an additional decoded node at path, grafting it
// (and its declared children) onto the already-revealed trie.
func (t *SparseTrie) RevealNode(path Path, node DecodedNode) error {
	if t.IsBlind() {
		return ErrBlind
	}
	return t.revealed.RevealNode(path, node)
}

// UpdateRLPNodeLevel refreshes cached hashes down to minLen without
// consuming the pending prefix set. It requires the trie to already be
// revealed.
func (t *SparseTrie) UpdateRLPNodeLevel(minLen int) {
	if t.IsBlind() {
		return
	}
	t.revealed.UpdateRLPNodeLevel(minLen)
}

// Root returns the trie's root hash, or false if the trie is still blind.
func (t *SparseTrie) Root() (common.Hash, bool) {
	if t.IsBlind() {
		return common.Hash{}, false
	}
	return t.revealed.Root(), true
}

// RevealedTrie owns a partial trie's node table, value table, dirty-path
// prefix set and RLP scratch buffer. It is entirely
// in-memory: there is no backing database to read through (see
// DESIGN.md).
type RevealedTrie struct {
	nodes     map[string]SparseNode
	values    map[string][]byte
	prefixSet PrefixSetMut
	rlpBuf    bytes.Buffer
}

func newRevealedTrie() *RevealedTrie {
	t := &RevealedTrie{
		nodes:  make(map[string]SparseNode),
		values: make(map[string][]byte),
	}
	t.nodes[EmptyPath.key()] = SparseEmpty
	return t
}

func revealedTrieFromRoot(node DecodedNode) (*RevealedTrie, error) {
	t := &RevealedTrie{
		nodes:  make(map[string]SparseNode),
		values: make(map[string][]byte),
	}
	if err := t.RevealNode(EmptyPath, node); err != nil {
		return nil, err
	}
	return t, nil
}

// node looks up the node stored at path, if any.
func (t *RevealedTrie) node(path Path) (SparseNode, bool) {
	n, ok := t.nodes[path.key()]
	return n, ok
}

func (t *RevealedTrie) setNode(path Path, n SparseNode) {
	t.nodes[path.key()] = n
}

func (t *RevealedTrie) removeNode(path Path) {
	delete(t.nodes, path.key())
}
