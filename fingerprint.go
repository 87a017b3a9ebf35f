package cuckoo

// Hasher is the pluggable hash primitive the filter core consumes. Sum must write
// exactly len(dst) bytes of a deterministic digest of data into dst. Implementations
// must be side-effect free and independent across calls, so that Contains remains
// safely shareable for concurrent reads.
type Hasher interface {
	Sum(dst, data []byte)
}

// maxInlineFingerprint bounds the size of the stack-allocated scratch arrays used to
// derive fingerprints on the hot path. Fingerprints sized within this bound (true of
// every false-positive rate the sizing calculator produces in practice; see
// computeSizing) use the stack scratch buffer. Larger fingerprints fall back to a
// per-call allocation. The default Hasher allocates on its own when asked for more
// than 8 bytes of digest.
const maxInlineFingerprint = 32

// fingerprintSlice returns a slice of length f.fingerprintBytes, backed by scratch
// when it fits, else a fresh allocation.
func (f *Filter) fingerprintSlice(scratch []byte) []byte {
	if f.fingerprintBytes <= len(scratch) {
		return scratch[:f.fingerprintBytes]
	}
	return make([]byte, f.fingerprintBytes)
}

// deriveFingerprint writes v's fingerprint into dst (len(dst) == f.fingerprintBytes).
// The all-zero result is rewritten to all-ones, since zero is the empty-slot sentinel.
func (f *Filter) deriveFingerprint(v, dst []byte) {
	f.hash.Sum(dst, v)
	if zeroSlot(dst, 0, len(dst)) {
		for i := range dst {
			dst[i] = 0xFF
		}
	}
}

func beUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// primaryIndex computes i1 = h(v) mod B. It makes its own 4-byte hash call over the
// same input as the fingerprint derivation. With the default Hasher a shorter digest
// is a prefix of a longer one, so when F >= 4 the low bits that select the bucket are
// also bits of the fingerprint. The 4-byte digest buffer is interpreted big-endian
// throughout.
func (f *Filter) primaryIndex(v []byte) uint32 {
	var buf [4]byte
	f.hash.Sum(buf[:], v)
	return beUint32(buf[:]) & (f.bucketCount - 1)
}

// altIndex computes the other candidate bucket for a fingerprint given one of its two
// candidate indices: i2 = i1 xor (h(fp) mod B). XOR symmetry makes this an involution,
// so the same function recovers i1 from i2 and fp, which is what lets eviction chains
// displace a fingerprint without re-hashing the original value.
func (f *Filter) altIndex(i uint32, fp []byte) uint32 {
	var buf [4]byte
	f.hash.Sum(buf[:], fp)
	return i ^ (beUint32(buf[:]) & (f.bucketCount - 1))
}

func (f *Filter) bucketStride() int {
	return f.slotsPerBucket * f.fingerprintBytes
}
