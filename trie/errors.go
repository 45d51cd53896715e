package trie

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ErrBlind is returned when an operation that requires a revealed trie is
// issued against a blind one, or when the structural walk reaches an Empty
// node where a populated one was expected.
var ErrBlind = errors.New("trie: blind")

// BlindedNodeError is returned when an operation needs to descend into a
// node that is only known by its hash. The caller is expected to fetch and
// reveal the node, then retry the operation.
type BlindedNodeError struct {
	Path Path
	Hash common.Hash
}

func (e *BlindedNodeError) Error() string {
	return fmt.Sprintf("trie: blinded node at path %x (hash %s)", []byte(e.Path), e.Hash)
}

// decodeError wraps an RLP decoding failure with the path of trie nodes
// that led to it, built up one layer of context at a time via wrapError.
type decodeError struct {
	what  error
	stack []string
}

func wrapError(err error, ctx string) error {
	if err == nil {
		return nil
	}
	if decErr, ok := err.(*decodeError); ok {
		decErr.stack = append(decErr.stack, ctx)
		return decErr
	}
	return &decodeError{err, []string{ctx}}
}

func (err *decodeError) Error() string {
	s := err.what.Error()
	for _, c := range err.stack {
		s += " <- " + c
	}
	return s
}

func (err *decodeError) Unwrap() error {
	return err.what
}
