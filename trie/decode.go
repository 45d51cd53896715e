package trie

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/rlp"
)

// DecodedNode is the sum type for a node decoded off the wire: the
// canonical MPT/RLP encodings — a 17-element list for branches, a
// 2-element list for leaves/extensions, or the RLP encoding of the empty
// string for the empty-trie root.
type DecodedNode interface {
	isDecodedNode()
}

// EmptyRootNode is the decoded form of the RLP-encoded empty string; it
// is only legal at the empty path.
type EmptyRootNode struct{}

func (EmptyRootNode) isDecodedNode() {}

// BranchNode is a decoded 17-element branch: Children holds, in ascending
// nibble order, the raw wire bytes of each set child slot (either an
// embedded RLP item or a 33-byte 0xa0||hash reference) — one entry per
// set bit of Mask, consumed by the reveal engine in that same order.
type BranchNode struct {
	Mask     uint16
	Children [][]byte
}

func (*BranchNode) isDecodedNode() {}

// ExtensionNode is a decoded 2-element [key, child] node whose key does
// not carry the leaf terminator.
type ExtensionNode struct {
	Key   Path
	Child []byte
}

func (*ExtensionNode) isDecodedNode() {}

// LeafNode is a decoded 2-element [key, value] node whose key carries the
// leaf terminator.
type LeafNode struct {
	Key   Path
	Value []byte
}

func (*LeafNode) isDecodedNode() {}

// emptyStringRLP is the RLP encoding of the empty byte string, used both
// as the wire form of EmptyRootNode and to derive EmptyRootHash.
var emptyStringRLP = []byte{0x80}

// DecodeTrieNode parses the RLP encoding of a single trie node, using the
// low-level Split/SplitList/SplitString/CountValues primitives, and keeps
// raw child byte spans instead of eagerly decoding them.
func DecodeTrieNode(buf []byte) (DecodedNode, error) {
	if len(buf) == 0 {
		return nil, io.ErrUnexpectedEOF
	}
	if bytes.Equal(buf, emptyStringRLP) {
		return EmptyRootNode{}, nil
	}
	elems, _, err := rlp.SplitList(buf)
	if err != nil {
		return nil, fmt.Errorf("trie: decode error: %w", err)
	}
	switch c, _ := rlp.CountValues(elems); c {
	case 2:
		n, err := decodeShort(elems)
		return n, wrapError(err, "short")
	case 17:
		n, err := decodeFull(elems)
		return n, wrapError(err, "full")
	default:
		return nil, fmt.Errorf("trie: invalid number of list elements: %v", c)
	}
}

func decodeShort(elems []byte) (DecodedNode, error) {
	kbuf, rest, err := rlp.SplitString(elems)
	if err != nil {
		return nil, err
	}
	key := compactToHex(kbuf)
	if hasTerm(key) {
		val, _, err := rlp.SplitString(rest)
		if err != nil {
			return nil, fmt.Errorf("invalid leaf value: %w", err)
		}
		return &LeafNode{Key: key[:len(key)-1], Value: append([]byte(nil), val...)}, nil
	}
	child, _, err := splitChildRef(rest)
	if err != nil {
		return nil, wrapError(err, "val")
	}
	return &ExtensionNode{Key: key, Child: child}, nil
}

func decodeFull(elems []byte) (*BranchNode, error) {
	n := &BranchNode{}
	for i := 0; i < 16; i++ {
		child, rest, err := splitChildRef(elems)
		if err != nil {
			return n, wrapError(err, fmt.Sprintf("[%d]", i))
		}
		if child != nil {
			n.Mask = maskSet(n.Mask, byte(i))
			n.Children = append(n.Children, child)
		}
		elems = rest
	}
	// The 17th slot is the branch's value slot. The sparse trie only ever
	// stores values at leaves, so a populated value slot here indicates a
	// wire format this core does not support.
	val, _, err := rlp.SplitString(elems)
	if err != nil {
		return n, err
	}
	if len(val) > 0 {
		return nil, fmt.Errorf("trie: branch value slots are not supported")
	}
	return n, nil
}

// splitChildRef extracts the raw wire bytes of one branch/extension child
// slot: nil for an empty slot, the embedded item's bytes for an inline
// node, or the full 33-byte 0xa0||hash string for a hash reference.
func splitChildRef(buf []byte) (child []byte, rest []byte, err error) {
	kind, val, rest, err := rlp.Split(buf)
	if err != nil {
		return nil, buf, err
	}
	switch {
	case kind == rlp.List:
		size := len(buf) - len(rest)
		if size >= hashLen {
			return nil, buf, fmt.Errorf("oversized embedded node (size is %d bytes, want size < %d)", size, hashLen)
		}
		return buf[:size], rest, nil
	case kind == rlp.String && len(val) == 0:
		return nil, rest, nil
	case kind == rlp.String && len(val) == hashLen:
		full := buf[:len(buf)-len(rest)]
		return full, rest, nil
	default:
		return nil, nil, fmt.Errorf("invalid RLP string size %d (want 0 or %d)", len(val), hashLen)
	}
}

const hashLen = 32

// hasTerm returns whether a hex key carries the terminator flag (0x10)
// that marks it as a leaf key rather than an extension key.
func hasTerm(s []byte) bool {
	return len(s) > 0 && s[len(s)-1] == 16
}
