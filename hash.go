package cuckoo

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// xxHasher is the default Hasher. Sum wraps a fast non-cryptographic 64-bit hash
// family, which is all a cuckoo filter needs: the bucket index and fingerprint
// only need uniform distribution, not collision resistance against an adversary.
type xxHasher struct{}

// NewXXHasher returns the default Hasher implementation.
func NewXXHasher() Hasher { return xxHasher{} }

// Sum writes len(dst) bytes of digest of data into dst. A single xxHash call yields
// 8 bytes; additional 8-byte chunks are produced by re-hashing data with a big-endian
// chunk counter appended, expand-style, so fingerprint lengths larger than 8 bytes are
// still supported without a second hash family.
func (xxHasher) Sum(dst, data []byte) {
	var chunk [8]byte
	binary.BigEndian.PutUint64(chunk[:], xxhash.Sum64(data))
	n := copy(dst, chunk[:])

	for n < len(dst) {
		counter := uint32(n / 8)
		extended := make([]byte, len(data)+4)
		copy(extended, data)
		binary.BigEndian.PutUint32(extended[len(data):], counter)
		binary.BigEndian.PutUint64(chunk[:], xxhash.Sum64(extended))
		n += copy(dst[n:], chunk[:])
	}
}
