package trie

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// rlpValue is one node's RLP wire form, already collapsed per the
// embedded-vs-hashed rule: either the node's own RLP list
// bytes when the encoding is under 32 bytes, or the 33-byte 0xa0||hash
// string otherwise. It is the Go counterpart of the reference
// implementation's RlpNode.
type rlpValue []byte

// wordRLP is the RLP string encoding of a 32-byte hash: 0xa0 followed by
// the hash itself. It is how Empty/Hash placeholder nodes and any
// too-large-to-embed child are represented in a parent's encoding.
func wordRLP(h common.Hash) rlpValue {
	out := make(rlpValue, 1+hashLen)
	out[0] = 0x80 + hashLen
	copy(out[1:], h[:])
	return out
}

// asHash reports whether v is exactly a wordRLP encoding, and if so the
// hash it carries.
func (v rlpValue) asHash() (common.Hash, bool) {
	if len(v) == 1+hashLen && v[0] == 0x80+hashLen {
		return common.BytesToHash(v[1:]), true
	}
	return common.Hash{}, false
}

// collapse applies the embedded-vs-hashed rule to a freshly RLP-encoded
// node: encodings under 32 bytes are copied out and embedded as-is,
// anything larger is replaced by its Keccak-256 hash (go-ethereum's
// hasher.go follows the identical "len(enc) < 32" rule for the same
// reason — larger encodings always get materialized and referenced by
// hash instead of inlined).
func collapse(enc []byte) rlpValue {
	if len(enc) < hashLen {
		out := make(rlpValue, len(enc))
		copy(out, enc)
		return out
	}
	return wordRLP(crypto.Keccak256Hash(enc))
}

func (t *RevealedTrie) leafRLP(key Path, value []byte) rlpValue {
	t.rlpBuf.Reset()
	w := rlp.NewEncoderBuffer(&t.rlpBuf)
	offset := w.List()
	w.WriteBytes(hexToCompact(key.Push(16)))
	w.WriteBytes(value)
	w.ListEnd(offset)
	w.Flush()
	return collapse(t.rlpBuf.Bytes())
}

func (t *RevealedTrie) extensionRLP(key Path, child rlpValue) rlpValue {
	t.rlpBuf.Reset()
	w := rlp.NewEncoderBuffer(&t.rlpBuf)
	offset := w.List()
	w.WriteBytes(hexToCompact(key))
	w.Write(child)
	w.ListEnd(offset)
	w.Flush()
	return collapse(t.rlpBuf.Bytes())
}

// branchRLP encodes a branch's 17 slots. children holds, in ascending
// nibble order, the already-collapsed RLP of each set child; unset slots
// and the value slot (this core never stores a value at a branch) encode
// as the empty string.
func (t *RevealedTrie) branchRLP(children []rlpValue, mask uint16) rlpValue {
	t.rlpBuf.Reset()
	w := rlp.NewEncoderBuffer(&t.rlpBuf)
	offset := w.List()
	idx := 0
	for i := 0; i < 16; i++ {
		if maskIsSet(mask, byte(i)) {
			w.Write(children[idx])
			idx++
		} else {
			w.WriteBytes(nil)
		}
	}
	w.WriteBytes(nil)
	w.ListEnd(offset)
	w.Flush()
	return collapse(t.rlpBuf.Bytes())
}

// rlpStackEntry is one frame of the result stack kept by rlpNode: the RLP
// of the node at path, once computed.
type rlpStackEntry struct {
	path Path
	node rlpValue
}

// Root returns the trie's root hash, recomputing the RLP of every node
// whose cached hash the prefix set has invalidated and taking the prefix
// set in the process.
func (t *RevealedTrie) Root() common.Hash {
	prefixSet := t.prefixSet.Freeze()
	t.prefixSet = PrefixSetMut{}
	root := t.rlpNode(EmptyPath, prefixSet)
	if h, ok := root.asHash(); ok {
		return h
	}
	return crypto.Keccak256Hash(root)
}

// UpdateRLPNodeLevel refreshes the cached RLP/hash of every node at depth
// at least minLen, reading the prefix set without consuming it — the
// update is a pre-warming pass, not a root computation, so a later Root
// call still needs to see the full accumulated dirty set.
func (t *RevealedTrie) UpdateRLPNodeLevel(minLen int) {
	paths := []Path{EmptyPath}
	var targets []Path

	for len(paths) > 0 {
		path := paths[len(paths)-1]
		paths = paths[:len(paths)-1]

		node, ok := t.node(path)
		if !ok {
			panic(fmt.Sprintf("trie: node table missing entry at path %x", []byte(path)))
		}
		switch n := node.(type) {
		case sparseEmptyNode, sparseHashNode:
			// nothing to refresh
		case *sparseLeafNode:
			targets = append(targets, path)
		case *sparseExtensionNode:
			if path.Len() >= minLen {
				targets = append(targets, path)
			} else {
				paths = append(paths, path.Append(n.Key))
			}
		case *sparseBranchNode:
			if path.Len() >= minLen {
				targets = append(targets, path)
			} else {
				for i := 0; i < 16; i++ {
					if maskIsSet(n.Mask, byte(i)) {
						paths = append(paths, path.Push(byte(i)))
					}
				}
			}
		default:
			panic(fmt.Sprintf("trie: unexpected node type %T", node))
		}
	}

	prefixSet := t.prefixSet.Clone().Freeze()
	for _, target := range targets {
		t.rlpNode(target, prefixSet)
	}
}

// rlpNode computes the RLP of the node at path, descending through every
// not-yet-computed, dirty descendant first. It is iterative: pathStack
// holds paths still needing an RLP value, rlpStack holds the RLP values
// already computed, topmost entry last.
func (t *RevealedTrie) rlpNode(path Path, prefixSet *PrefixSet) rlpValue {
	pathStack := []Path{path}
	var rlpStack []rlpStackEntry
	var childPaths []Path

pathLoop:
	for len(pathStack) > 0 {
		cur := pathStack[len(pathStack)-1]
		pathStack = pathStack[:len(pathStack)-1]

		node, ok := t.node(cur)
		if !ok {
			panic(fmt.Sprintf("trie: node table missing entry at path %x", []byte(cur)))
		}

		var out rlpValue
		switch n := node.(type) {
		case sparseEmptyNode:
			out = wordRLP(EmptyRootHash)

		case sparseHashNode:
			out = wordRLP(n.Hash())

		case *sparseLeafNode:
			full := cur.Append(n.Key)
			if n.hash != nil && !prefixSet.Contains(full) {
				out = wordRLP(*n.hash)
			} else {
				value, ok := t.values[full.key()]
				if !ok {
					panic(fmt.Sprintf("trie: value table missing entry at path %x", []byte(full)))
				}
				out = t.leafRLP(n.Key, value)
				if h, isHash := out.asHash(); isHash {
					n.hash = &h
				} else {
					n.hash = nil
				}
			}

		case *sparseExtensionNode:
			childPath := cur.Append(n.Key)
			switch {
			case n.hash != nil && !prefixSet.Contains(cur):
				out = wordRLP(*n.hash)
			case len(rlpStack) > 0 && rlpStack[len(rlpStack)-1].path.Equal(childPath):
				child := rlpStack[len(rlpStack)-1]
				rlpStack = rlpStack[:len(rlpStack)-1]
				out = t.extensionRLP(n.Key, child.node)
				if h, isHash := out.asHash(); isHash {
					n.hash = &h
				} else {
					n.hash = nil
				}
			default:
				pathStack = append(pathStack, cur, childPath)
				continue pathLoop
			}

		case *sparseBranchNode:
			if n.hash != nil && !prefixSet.Contains(cur) {
				rlpStack = append(rlpStack, rlpStackEntry{path: cur, node: wordRLP(*n.hash)})
				continue pathLoop
			}

			childPaths = childPaths[:0]
			for i := 0; i < 16; i++ {
				if maskIsSet(n.Mask, byte(i)) {
					childPaths = append(childPaths, cur.Push(byte(i)))
				}
			}

			children := make([]rlpValue, 0, len(childPaths))
			for _, cp := range childPaths {
				if len(rlpStack) > 0 && rlpStack[len(rlpStack)-1].path.Equal(cp) {
					top := rlpStack[len(rlpStack)-1]
					rlpStack = rlpStack[:len(rlpStack)-1]
					children = append(children, top.node)
					continue
				}
				// A child hasn't been computed yet. This can only happen
				// on the first child checked: push the branch back under
				// its children and compute them first.
				pathStack = append(pathStack, cur)
				pathStack = append(pathStack, childPaths...)
				continue pathLoop
			}

			out = t.branchRLP(children, n.Mask)
			if h, isHash := out.asHash(); isHash {
				n.hash = &h
			} else {
				n.hash = nil
			}

		default:
			panic(fmt.Sprintf("trie: unexpected node type %T", node))
		}

		rlpStack = append(rlpStack, rlpStackEntry{path: cur, node: out})
	}

	return rlpStack[len(rlpStack)-1].node
}
