package trie

// Path is an ordered sequence of nibbles (each in [0, 16)). It is the
// addressing scheme used throughout the sparse trie: a node's Path is the
// sequence of branch choices taken from the root to reach it, and a leaf's
// full Path is its complete key.
//
// Every method that would otherwise mutate or alias the backing array
// instead returns a freshly allocated Path.
type Path []byte

// EmptyPath denotes the root.
var EmptyPath = Path(nil)

// NewPath builds a Path from the given nibbles, copying them.
func NewPath(nibbles ...byte) Path {
	if len(nibbles) == 0 {
		return nil
	}
	p := make(Path, len(nibbles))
	copy(p, nibbles)
	return p
}

// Len returns the number of nibbles in the path.
func (p Path) Len() int { return len(p) }

// At returns the nibble at index i.
func (p Path) At(i int) byte { return p[i] }

// Clone returns an independent copy of p.
func (p Path) Clone() Path {
	if len(p) == 0 {
		return nil
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// Push returns a new path with nibble appended.
func (p Path) Push(nibble byte) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = nibble
	return out
}

// Append returns a new path with other's nibbles appended after p's.
func (p Path) Append(other Path) Path {
	if len(other) == 0 {
		return p.Clone()
	}
	out := make(Path, len(p)+len(other))
	copy(out, p)
	copy(out[len(p):], other)
	return out
}

// Slice returns the nibbles in [start, end) as a new Path.
func (p Path) Slice(start, end int) Path {
	if start >= end {
		return nil
	}
	return p.Clone()[start:end]
}

// SliceFrom returns the nibbles in [start, len(p)) as a new Path.
func (p Path) SliceFrom(start int) Path {
	return p.Slice(start, len(p))
}

// SliceTo returns the nibbles in [0, end) as a new Path.
func (p Path) SliceTo(end int) Path {
	return p.Slice(0, end)
}

// CommonPrefixLen returns the length of the longest common prefix of p and
// other.
func (p Path) CommonPrefixLen(other Path) int {
	n := len(p)
	if len(other) < n {
		n = len(other)
	}
	for i := 0; i < n; i++ {
		if p[i] != other[i] {
			return i
		}
	}
	return n
}

// StartsWith reports whether p begins with the nibbles of other.
func (p Path) StartsWith(other Path) bool {
	if len(other) > len(p) {
		return false
	}
	for i := range other {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Equal reports whether p and other contain the same nibbles.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// key returns the string form of p used as a map key into the node and
// value tables. Nibbles are single bytes in [0, 16), so the conversion is
// lossless and collision-free.
func (p Path) key() string { return string(p) }
