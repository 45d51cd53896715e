package trie

import (
	"bytes"
	"sort"
)

// PrefixSetMut is the growable, write side of the prefix set: every path
// mutated since the last root computation is appended here, tracking what
// changed since the last commit so the root encoder knows which cached
// node hashes are stale.
type PrefixSetMut struct {
	keys []Path
}

// Insert records path as changed.
func (s *PrefixSetMut) Insert(path Path) {
	s.keys = append(s.keys, path.Clone())
}

// Freeze sorts and deduplicates the accumulated paths into a PrefixSet
// ready for Contains queries, and clears the mutable set in place; the
// caller is expected to replace its PrefixSetMut with a fresh one.
func (s *PrefixSetMut) Freeze() *PrefixSet {
	keys := make([]Path, len(s.keys))
	copy(keys, s.keys)
	sort.Slice(keys, func(i, j int) bool { return bytes.Compare(keys[i], keys[j]) < 0 })
	deduped := keys[:0]
	for i, k := range keys {
		if i == 0 || !bytes.Equal(k, deduped[len(deduped)-1]) {
			deduped = append(deduped, k)
		}
	}
	s.keys = nil
	return &PrefixSet{keys: deduped}
}

// Clone returns an independent copy of the mutable set, used by
// UpdateRLPNodeLevel which must read the prefix set without consuming it.
func (s *PrefixSetMut) Clone() *PrefixSetMut {
	keys := make([]Path, len(s.keys))
	copy(keys, s.keys)
	return &PrefixSetMut{keys: keys}
}

// PrefixSet is the frozen, read side: a sorted set of changed paths
// supporting the "contains any path prefixed by p" query the root
// encoder uses to decide whether a cached hash is still valid.
type PrefixSet struct {
	keys []Path
}

// Contains reports whether any recorded path has prefix as a literal
// byte prefix — i.e. whether the subtree rooted at prefix contains a
// change and its cached hash must be recomputed.
func (s *PrefixSet) Contains(prefix Path) bool {
	i := sort.Search(len(s.keys), func(i int) bool {
		return bytes.Compare(s.keys[i], prefix) >= 0
	})
	if i >= len(s.keys) {
		return false
	}
	return s.keys[i].StartsWith(prefix)
}
