package trie

import "fmt"

// UpdateLeaf inserts or overwrites the value at path, splitting and
// grafting nodes as needed to keep the trie canonical.
func (t *RevealedTrie) UpdateLeaf(path Path, value []byte) error {
	t.prefixSet.Insert(path)

	key := path.key()
	if _, exists := t.values[key]; exists {
		t.values[key] = value
		return nil
	}
	t.values[key] = value

	current := EmptyPath
	for {
		node, ok := t.node(current)
		if !ok {
			panic(fmt.Sprintf("trie: node table missing entry at path %x", []byte(current)))
		}
		switch n := node.(type) {
		case sparseEmptyNode:
			t.setNode(current, NewLeaf(path.SliceFrom(current.Len())))
			return nil

		case sparseHashNode:
			return &BlindedNodeError{Path: current, Hash: n.Hash()}

		case *sparseLeafNode:
			originalLen := current.Len()
			full := current.Append(n.Key)
			common := full.CommonPrefixLen(path)

			// Replace the leaf with an extension whose key may be empty;
			// if it is, the branch inserted just below lands at the same
			// path and overwrites it, eliding the zero-length extension
			//.
			t.setNode(current, NewExtension(full.Slice(originalLen, common)))
			t.setNode(full.SliceTo(common), NewSplitBranch(full.At(common), path.At(common)))
			t.setNode(path.SliceTo(common+1), NewLeaf(path.SliceFrom(common+1)))
			t.setNode(full.SliceTo(common+1), NewLeaf(full.SliceFrom(common+1)))
			return nil

		case *sparseExtensionNode:
			tail := current.Append(n.Key)
			if path.StartsWith(tail) {
				current = tail
				continue
			}
			common := tail.CommonPrefixLen(path)
			n.Key = tail.Slice(current.Len(), common)

			t.setNode(tail.SliceTo(common), NewSplitBranch(tail.At(common), path.At(common)))
			t.setNode(path.SliceTo(common+1), NewLeaf(path.SliceFrom(common+1)))
			if childKey := tail.SliceFrom(common + 1); childKey.Len() > 0 {
				t.setNode(tail.SliceTo(common+1), NewExtension(childKey))
			}
			return nil

		case *sparseBranchNode:
			nibble := path.At(current.Len())
			current = current.Push(nibble)
			if !maskIsSet(n.Mask, nibble) {
				n.Mask = maskSet(n.Mask, nibble)
				t.setNode(current, NewLeaf(path.SliceFrom(current.Len())))
				return nil
			}

		default:
			panic(fmt.Sprintf("trie: unexpected node type %T", node))
		}
	}
}
