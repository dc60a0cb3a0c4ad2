// Package hashing provides the content-hashing primitives used by the
// scanner and deduplicator. All digests are 32 bytes and produced by BLAKE3;
// the Algorithm type names the algorithm and provides its hasher factory.
package hashing

import (
	"fmt"
	"hash"

	"lukechampine.com/blake3"
)

// Algorithm identifies a content-hashing algorithm. The core pipeline only
// ever produces Algorithm_BLAKE3 digests; serialized FileEntry records store
// the digest bytes without an Algorithm tag.
type Algorithm uint8

const (
	// Algorithm_AlgorithmDefault is the zero value and is equivalent to
	// Algorithm_BLAKE3.
	Algorithm_AlgorithmDefault Algorithm = iota
	// Algorithm_BLAKE3 identifies the BLAKE3 hashing algorithm.
	Algorithm_BLAKE3
)

// DigestSize is the fixed digest length, in bytes, produced by every
// supported algorithm.
const DigestSize = 32

// Description returns a human-readable description of the algorithm.
func (a Algorithm) Description() string {
	switch a {
	case Algorithm_AlgorithmDefault, Algorithm_BLAKE3:
		return "BLAKE3"
	default:
		return "Unknown"
	}
}

// Supported indicates whether the algorithm is a recognized, usable value.
func (a Algorithm) Supported() bool {
	switch a {
	case Algorithm_AlgorithmDefault, Algorithm_BLAKE3:
		return true
	default:
		return false
	}
}

// Factory returns a constructor for a streaming hash.Hash implementing this
// algorithm. It panics for an unsupported algorithm, mirroring the contract
// that callers only ever request a Factory after checking Supported.
func (a Algorithm) Factory() func() hash.Hash {
	switch a {
	case Algorithm_AlgorithmDefault, Algorithm_BLAKE3:
		return func() hash.Hash { return blake3.New(DigestSize, nil) }
	default:
		panic(fmt.Sprintf("unsupported hashing algorithm: %d", a))
	}
}

// New constructs a new streaming BLAKE3 hasher.
func New() hash.Hash {
	return Algorithm_BLAKE3.Factory()()
}
