package trie

import (
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/require"
)

func TestDecodeTrieNodeEmptyRoot(t *testing.T) {
	require := require.New(t)
	n, err := DecodeTrieNode(emptyStringRLP)
	require.NoError(err)
	_, ok := n.(EmptyRootNode)
	require.True(ok)
}

func TestDecodeTrieNodeLeafRoundTrip(t *testing.T) {
	require := require.New(t)

	key := NewPath(1, 2, 3)
	enc := hbLeafRLP(key.Push(16), []byte("v"))

	n, err := DecodeTrieNode(enc)
	require.NoError(err)
	leaf, ok := n.(*LeafNode)
	require.True(ok)
	require.True(leaf.Key.Equal(key))
	require.Equal([]byte("v"), leaf.Value)
}

func TestDecodeTrieNodeExtensionRoundTrip(t *testing.T) {
	require := require.New(t)

	childKey := NewPath(4, 5, 6)
	childValue := []byte("this value is long enough to force hashing of its leaf node, well past 32 bytes of RLP")
	childHash := hbLeafRLP(childKey.Push(16), childValue)
	h, isHash := hbAsHash(childHash)
	require.True(isHash, "test setup expects the child to collapse to a hash")

	key := NewPath(7, 8)
	// Encode the extension directly: hbExtensionRLP would collapse this
	// over-32-byte encoding to a hash reference.
	enc, err := rlp.EncodeToBytes([]interface{}{hexToCompact(key), rlp.RawValue(childHash)})
	require.NoError(err)

	n, err := DecodeTrieNode(enc)
	require.NoError(err)
	ext, ok := n.(*ExtensionNode)
	require.True(ok)
	require.True(ext.Key.Equal(key))
	require.Len(ext.Child, hashLen+1)
	gotHash, ok := hbAsHash(ext.Child)
	require.True(ok)
	require.Equal(h, gotHash)
}

func TestDecodeTrieNodeBranchRoundTrip(t *testing.T) {
	require := require.New(t)

	c0 := hbLeafRLP(NewPath(16), []byte("zero"))
	c5 := hbLeafRLP(NewPath(16), []byte("five"))
	mask := uint16(1)<<0 | uint16(1)<<5
	enc := hbBranchRLP([][]byte{c0, c5}, mask)

	n, err := DecodeTrieNode(enc)
	require.NoError(err)
	branch, ok := n.(*BranchNode)
	require.True(ok)
	require.Equal(mask, branch.Mask)
	require.Len(branch.Children, 2)
}
