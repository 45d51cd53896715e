package trie

import "fmt"

// removedSparseNode is one entry of the spine takeNodesForPath walks off
// the node table while descending toward a removed leaf.
type removedSparseNode struct {
	path              Path
	node              SparseNode
	unsetBranchNibble *byte
}

// RemoveLeaf deletes the value at path and unwinds the ancestor spine,
// collapsing branches and extensions per MPT canonicalisation.
func (t *RevealedTrie) RemoveLeaf(path Path) error {
	t.prefixSet.Insert(path)

	key := path.key()
	if _, ok := t.values[key]; !ok {
		return nil
	}
	delete(t.values, key)

	removed, err := t.takeNodesForPath(path)
	if err != nil {
		return err
	}

	// Pop the leaf itself off the top of the stack.
	child := removed[len(removed)-1]
	removed = removed[:len(removed)-1]

	if len(removed) == 0 {
		t.setNode(EmptyPath, SparseEmpty)
		return nil
	}

	for len(removed) > 0 {
		r := removed[len(removed)-1]
		removed = removed[:len(removed)-1]

		var newNode SparseNode
		switch n := r.node.(type) {
		case sparseEmptyNode:
			return ErrBlind
		case sparseHashNode:
			return &BlindedNodeError{Path: r.path, Hash: n.Hash()}

		case *sparseLeafNode:
			panic("trie: leaf node encountered while unwinding removal spine")

		case *sparseExtensionNode:
			switch cn := child.node.(type) {
			case sparseEmptyNode:
				return ErrBlind
			case sparseHashNode:
				return &BlindedNodeError{Path: child.path, Hash: cn.Hash()}
			case *sparseLeafNode:
				t.removeNode(child.path)
				newNode = NewLeaf(n.Key.Append(cn.Key))
			case *sparseExtensionNode:
				t.removeNode(child.path)
				newNode = NewExtension(n.Key.Append(cn.Key))
			case *sparseBranchNode:
				newNode = r.node
			default:
				panic(fmt.Sprintf("trie: unexpected child node type %T", child.node))
			}

		case *sparseBranchNode:
			mask := n.Mask
			if r.unsetBranchNibble != nil {
				mask = maskUnset(mask, *r.unsetBranchNibble)
			}
			if maskPopcount(mask) == 1 {
				childNibble := maskFirstSetBit(mask)
				childPath := r.path.Push(childNibble)
				childNode, ok := t.node(childPath)
				if !ok {
					panic(fmt.Sprintf("trie: node table missing entry at path %x", []byte(childPath)))
				}
				deleteChild := false
				switch cn := childNode.(type) {
				case sparseEmptyNode:
					return ErrBlind
				case sparseHashNode:
					return &BlindedNodeError{Path: childPath, Hash: cn.Hash()}
				case *sparseLeafNode:
					deleteChild = true
					newNode = NewLeaf(NewPath(childNibble).Append(cn.Key))
				case *sparseExtensionNode:
					deleteChild = true
					newNode = NewExtension(NewPath(childNibble).Append(cn.Key))
				case *sparseBranchNode:
					newNode = NewExtension(NewPath(childNibble))
				default:
					panic(fmt.Sprintf("trie: unexpected child node type %T", childNode))
				}
				if deleteChild {
					t.removeNode(childPath)
				}
			} else {
				newNode = NewBranch(mask)
			}

		default:
			panic(fmt.Sprintf("trie: unexpected node type %T", r.node))
		}

		t.setNode(r.path, newNode)
		child = removedSparseNode{path: r.path, node: newNode}
	}

	return nil
}

// takeNodesForPath walks from the empty path to path, removing every node
// on the spine into a result slice ordered shallowest-first.
func (t *RevealedTrie) takeNodesForPath(path Path) ([]removedSparseNode, error) {
	current := EmptyPath
	var nodes []removedSparseNode

	for {
		node, ok := t.node(current)
		if !ok {
			break
		}
		t.removeNode(current)

		switch n := node.(type) {
		case sparseEmptyNode:
			return nil, ErrBlind

		case sparseHashNode:
			return nil, &BlindedNodeError{Path: current, Hash: n.Hash()}

		case *sparseLeafNode:
			nodes = append(nodes, removedSparseNode{path: current, node: node})
			return nodes, nil

		case *sparseExtensionNode:
			p := current
			current = current.Append(n.Key)
			nodes = append(nodes, removedSparseNode{path: p, node: node})

		case *sparseBranchNode:
			nibble := path.At(current.Len())
			childPath := current.Push(nibble)

			var unset *byte
			if childNode, ok := t.node(childPath); ok {
				if ln, ok := childNode.(*sparseLeafNode); ok {
					if childPath.Append(ln.Key).Equal(path) {
						nb := nibble
						unset = &nb
					}
				}
			}
			nodes = append(nodes, removedSparseNode{path: current, node: node, unsetBranchNibble: unset})
			current = childPath

		default:
			panic(fmt.Sprintf("trie: unexpected node type %T", node))
		}
	}
	return nodes, nil
}
