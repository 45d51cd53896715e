package trie

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// RevealNode installs a previously-unknown decoded trie node at path and
// recursively installs its declared children.
//
// TODO: revise all inserts to not overwrite existing entries (see
// SPEC_FULL.md); a present non-Hash node is currently still replaced by
// an incoming one.
func (t *RevealedTrie) RevealNode(path Path, node DecodedNode) error {
	switch n := node.(type) {
	case EmptyRootNode:
		if path.Len() != 0 {
			return fmt.Errorf("trie: EmptyRoot revealed at non-root path %x", []byte(path))
		}
		t.setNode(path, SparseEmpty)

	case *BranchNode:
		if len(n.Children) != maskPopcount(n.Mask) {
			return fmt.Errorf("trie: branch child count %d does not match mask %016b", len(n.Children), n.Mask)
		}
		idx := 0
		for i := 0; i < 16; i++ {
			if !maskIsSet(n.Mask, byte(i)) {
				continue
			}
			childPath := path.Push(byte(i))
			if err := t.revealNodeOrHash(childPath, n.Children[idx]); err != nil {
				return err
			}
			idx++
		}
		t.setNode(path, NewBranch(n.Mask))

	case *ExtensionNode:
		childPath := path.Append(n.Key)
		if err := t.revealNodeOrHash(childPath, n.Child); err != nil {
			return err
		}
		t.setNode(path, NewExtension(n.Key))

	case *LeafNode:
		full := path.Append(n.Key)
		t.values[full.key()] = n.Value
		t.setNode(path, NewLeaf(n.Key))

	default:
		return fmt.Errorf("trie: unknown decoded node type %T", node)
	}
	return nil
}

// revealNodeOrHash installs whatever bytes describes at path: a blinded
// hash placeholder for a 33-byte hash reference, or a fully decoded node
// otherwise.
func (t *RevealedTrie) revealNodeOrHash(path Path, bytes []byte) error {
	if len(bytes) == hashLen+1 {
		t.setNode(path, NewHashNode(common.BytesToHash(bytes[1:])))
		return nil
	}
	child, err := DecodeTrieNode(bytes)
	if err != nil {
		return err
	}
	return t.RevealNode(path, child)
}
