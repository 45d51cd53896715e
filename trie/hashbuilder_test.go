package trie

import (
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// hbKV is one full key/value pair fed to hashBuilderRoot. Key must not
// carry the leaf terminator; hashBuilderRoot appends it.
type hbKV struct {
	Key   Path
	Value []byte
}

// hbEntry is an hbKV whose key already carries the terminator and, during
// recursion, has had its already-consumed prefix stripped off.
type hbEntry struct {
	key   Path
	value []byte
}

// hashBuilderRoot computes a Merkle-Patricia root from a complete
// key/value set by recursively grouping keys on shared nibble prefixes,
// independently of RevealedTrie's incremental, cached, prefix-set-driven
// encoder (encode.go). It exists solely to cross-check RevealedTrie.Root
// in this package's tests and intentionally does not call leafRLP,
// extensionRLP, branchRLP, collapse, wordRLP or rlpNode.
func hashBuilderRoot(kvs []hbKV) common.Hash {
	if len(kvs) == 0 {
		return EmptyRootHash
	}
	entries := make([]hbEntry, len(kvs))
	for i, kv := range kvs {
		entries[i] = hbEntry{key: kv.Key.Push(16), value: kv.Value}
	}
	sort.Slice(entries, func(i, j int) bool {
		return compareNibbles(entries[i].key, entries[j].key) < 0
	})
	root := hbBuild(entries)
	if h, ok := hbAsHash(root); ok {
		return h
	}
	return crypto.Keccak256Hash(root)
}

func compareNibbles(a, b Path) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return int(a[i]) - int(b[i])
		}
	}
	return len(a) - len(b)
}

func hbCommonPrefixLen(entries []hbEntry) int {
	n := len(entries[0].key)
	for _, e := range entries[1:] {
		if c := entries[0].key.CommonPrefixLen(e.key); c < n {
			n = c
		}
	}
	return n
}

// hbBuild returns the RLP of the subtree holding entries, whose keys are
// relative to the subtree's own root.
func hbBuild(entries []hbEntry) []byte {
	if len(entries) == 1 {
		e := entries[0]
		return hbLeafRLP(e.key, e.value)
	}
	if prefixLen := hbCommonPrefixLen(entries); prefixLen > 0 {
		child := hbBuildBranch(entries, prefixLen)
		return hbExtensionRLP(entries[0].key.SliceTo(prefixLen), child)
	}
	return hbBuildBranch(entries, 0)
}

func hbBuildBranch(entries []hbEntry, depth int) []byte {
	var groups [16][]hbEntry
	for _, e := range entries {
		nibble := e.key.At(depth)
		groups[nibble] = append(groups[nibble], e)
	}

	children := make([][]byte, 0, 16)
	mask := uint16(0)
	for i := 0; i < 16; i++ {
		if len(groups[i]) == 0 {
			continue
		}
		sub := make([]hbEntry, len(groups[i]))
		for j, e := range groups[i] {
			sub[j] = hbEntry{key: e.key.SliceFrom(depth + 1), value: e.value}
		}
		children = append(children, hbBuild(sub))
		mask |= uint16(1) << uint(i)
	}
	return hbBranchRLP(children, mask)
}

func hbCollapse(enc []byte) []byte {
	if len(enc) < hashLen {
		out := make([]byte, len(enc))
		copy(out, enc)
		return out
	}
	h := crypto.Keccak256(enc)
	out := make([]byte, 1+hashLen)
	out[0] = 0x80 + hashLen
	copy(out[1:], h)
	return out
}

func hbAsHash(v []byte) (common.Hash, bool) {
	if len(v) == 1+hashLen && v[0] == 0x80+hashLen {
		return common.BytesToHash(v[1:]), true
	}
	return common.Hash{}, false
}

func hbLeafRLP(key Path, value []byte) []byte {
	enc, err := rlp.EncodeToBytes([][]byte{hexToCompact(key), value})
	if err != nil {
		panic(err)
	}
	return hbCollapse(enc)
}

func hbExtensionRLP(key Path, child []byte) []byte {
	enc, err := rlp.EncodeToBytes([]interface{}{hexToCompact(key), rlp.RawValue(child)})
	if err != nil {
		panic(err)
	}
	return hbCollapse(enc)
}

func hbBranchRLP(children [][]byte, mask uint16) []byte {
	slots := make([]rlp.RawValue, 17)
	idx := 0
	for i := 0; i < 16; i++ {
		if mask&(uint16(1)<<uint(i)) != 0 {
			slots[i] = rlp.RawValue(children[idx])
			idx++
		} else {
			slots[i] = rlp.RawValue{0x80}
		}
	}
	slots[16] = rlp.RawValue{0x80}
	enc, err := rlp.EncodeToBytes(slots)
	if err != nil {
		panic(err)
	}
	return hbCollapse(enc)
}
