// Package cuckoo implements a cuckoo filter, an approximate-membership data
// structure that answers "have I seen x?" with no false negatives and a tunable
// false-positive rate.
//
// Unlike a Bloom filter, a cuckoo filter supports deletion: Remove clears exactly
// one matching fingerprint slot, at the cost of being able to delete a colliding
// fingerprint belonging to some other value if the caller removes something that
// was never inserted.
//
// A Filter is a single-owner, in-process object: all operations run synchronously
// on the caller's goroutine, there is no internal locking, and there are no
// background tasks. Contains performs no mutation of shared state and may be called
// concurrently from multiple goroutines as long as nothing else is concurrently
// mutating the filter; TryInsert and Remove require external synchronization if
// shared across goroutines.
package cuckoo

import (
	"context"
	"math/rand"
	"time"

	"cuckoofilter/internal/logging"
)

// Filter is a cuckoo filter over byte-string values.
type Filter struct {
	bucketCount      uint32 // B, always a power of two
	slotsPerBucket   int    // S
	fingerprintBytes int    // F
	maxKicks         int    // K

	buckets []byte // packed B*S*F byte slab
	hash    Hasher
	rng     *rand.Rand

	logger *logging.Logger
	stats  FilterStats
}

// Config describes how to construct a Filter: either explicitly (set BucketCount)
// or sized from a capacity/false-positive-rate target (leave BucketCount zero).
type Config struct {
	// Explicit construction. BucketCount must be a power of two when set.
	BucketCount      uint32
	SlotsPerBucket   int
	FingerprintBytes int

	// Sized construction, used when BucketCount == 0.
	Capacity          uint64
	FalsePositiveRate float64

	// Common to both paths.
	MaxKicks int    // 0 means "use the default" (B for sized, B for explicit too)
	Hasher   Hasher // nil means the default xxHash-based Hasher
	Seed     int64
	HasSeed  bool // Seed is only honored when this is true

	Logger *logging.Logger // optional; nil disables logging entirely
}

// DefaultConfig returns a Config for a sized filter targeting the given capacity
// and false-positive rate, using the default hash and an unseeded RNG.
func DefaultConfig(capacity uint64, falsePositiveRate float64) *Config {
	return &Config{Capacity: capacity, FalsePositiveRate: falsePositiveRate}
}

// New constructs a Filter from cfg. If cfg.BucketCount is non-zero, the filter is
// built explicitly from BucketCount/SlotsPerBucket/FingerprintBytes; otherwise it is
// sized from Capacity/FalsePositiveRate via the sizing calculator.
func New(cfg *Config) (*Filter, error) {
	if cfg == nil {
		return nil, &FilterError{Operation: "construct", Message: "config must not be nil", Cause: ErrInvalidParams}
	}

	var bucketCount uint32
	var slots, fbytes, maxKicks int

	if cfg.BucketCount > 0 {
		if cfg.BucketCount&(cfg.BucketCount-1) != 0 {
			return nil, ErrNotPowerOfTwo
		}
		bucketCount = cfg.BucketCount

		slots = cfg.SlotsPerBucket
		if slots <= 0 {
			slots = slotsPerBucketDefault
		}

		fbytes = cfg.FingerprintBytes
		if fbytes <= 0 {
			return nil, ErrInvalidParams
		}

		maxKicks = cfg.MaxKicks
		if maxKicks <= 0 {
			maxKicks = int(bucketCount)
		}
	} else {
		b, s, f, k, err := computeSizing(cfg.Capacity, cfg.FalsePositiveRate)
		if err != nil {
			return nil, err
		}
		bucketCount, slots, fbytes, maxKicks = b, s, f, k
		if cfg.MaxKicks > 0 {
			maxKicks = cfg.MaxKicks
		}
	}

	return newFilter(bucketCount, slots, fbytes, maxKicks, make([]byte, uint64(bucketCount)*uint64(slots)*uint64(fbytes)), cfg)
}

// NewSized is a convenience wrapper over New for sized construction.
func NewSized(capacity uint64, falsePositiveRate float64) (*Filter, error) {
	return New(DefaultConfig(capacity, falsePositiveRate))
}

// NewExplicit is a convenience wrapper over New for explicit construction with the
// default max-kicks, hash, and unseeded RNG. A non-positive slotsPerBucket selects
// the default of 4.
func NewExplicit(bucketCount uint32, slotsPerBucket, fingerprintBytes int) (*Filter, error) {
	return New(&Config{BucketCount: bucketCount, SlotsPerBucket: slotsPerBucket, FingerprintBytes: fingerprintBytes})
}

// NewFromBytes reconstructs a Filter from a previously serialized bucket byte slab
// (e.g. written by an external serializer via Bytes()). The slab's length must be a
// multiple of slotsPerBucket*fingerprintBytes, and the resulting bucket count must be
// a power of two.
func NewFromBytes(data []byte, slotsPerBucket, fingerprintBytes, maxKicks int, cfg *Config) (*Filter, error) {
	if slotsPerBucket <= 0 || fingerprintBytes <= 0 {
		return nil, ErrInvalidParams
	}
	stride := slotsPerBucket * fingerprintBytes
	if stride == 0 || len(data)%stride != 0 {
		return nil, ErrInvalidLength
	}
	bucketCount := len(data) / stride
	if bucketCount == 0 || bucketCount&(bucketCount-1) != 0 {
		return nil, ErrNotPowerOfTwo
	}
	if maxKicks <= 0 {
		maxKicks = bucketCount
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	if cfg == nil {
		cfg = &Config{}
	}
	return newFilter(uint32(bucketCount), slotsPerBucket, fingerprintBytes, maxKicks, buf, cfg)
}

func newFilter(bucketCount uint32, slots, fbytes, maxKicks int, buckets []byte, cfg *Config) (*Filter, error) {
	h := cfg.Hasher
	if h == nil {
		h = NewXXHasher()
	}

	var src rand.Source
	if cfg.HasSeed {
		src = rand.NewSource(cfg.Seed)
	} else {
		src = rand.NewSource(time.Now().UnixNano())
	}

	now := time.Now()
	f := &Filter{
		bucketCount:      bucketCount,
		slotsPerBucket:   slots,
		fingerprintBytes: fbytes,
		maxKicks:         maxKicks,
		buckets:          buckets,
		hash:             h,
		rng:              rand.New(src),
		logger:           cfg.Logger,
		stats:            FilterStats{CreatedAt: now, LastModified: now},
	}
	return f, nil
}

// Contains reports whether v might be in the filter. A false return is a guarantee;
// a true return may be a false positive.
func (f *Filter) Contains(v []byte) bool {
	f.stats.LookupOperations++

	var scratch [maxInlineFingerprint]byte
	fp := f.fingerprintSlice(scratch[:])
	f.deriveFingerprint(v, fp)

	i1 := f.primaryIndex(v)
	i2 := f.altIndex(i1, fp)
	stride := f.bucketStride()

	if bucketFind(f.buckets, int(i1)*stride, fp, f.slotsPerBucket, f.fingerprintBytes) >= 0 {
		return true
	}
	return bucketFind(f.buckets, int(i2)*stride, fp, f.slotsPerBucket, f.fingerprintBytes) >= 0
}

// TryInsert adds v to the filter, returning false if no empty slot could be found
// within the max-kicks displacement budget. On failure, the fingerprint displaced by
// the last kick is not written back into the table, so a previously inserted value
// may no longer be found; there is no rollback, an accepted property of cuckoo
// filters.
func (f *Filter) TryInsert(v []byte) bool {
	f.stats.AddOperations++
	f.stats.LastModified = time.Now()

	var scratch [maxInlineFingerprint]byte
	fp := f.fingerprintSlice(scratch[:])
	f.deriveFingerprint(v, fp)

	i1 := f.primaryIndex(v)
	i2 := f.altIndex(i1, fp)
	stride := f.bucketStride()

	if bucketInsert(f.buckets, int(i1)*stride, fp, f.slotsPerBucket, f.fingerprintBytes) {
		f.stats.Size++
		f.stats.SuccessfulAdds++
		return true
	}
	if bucketInsert(f.buckets, int(i2)*stride, fp, f.slotsPerBucket, f.fingerprintBytes) {
		f.stats.Size++
		f.stats.SuccessfulAdds++
		return true
	}

	target := i1
	if f.rng.Intn(2) == 1 {
		target = i2
	}

	f.stats.EvictionChains++

	// One correlation ID ties together every log line this eviction chain
	// produces, whether it succeeds after a handful of kicks or exhausts
	// maxKicks below.
	var ctx context.Context
	if f.logger != nil {
		ctx = logging.WithCorrelationID(context.Background(), logging.NewCorrelationID())
		f.logger.Debug(ctx, logging.ComponentFilter, logging.ActionEvict, "eviction chain started")
	}

	var kickScratch [maxInlineFingerprint]byte
	kickFP := f.fingerprintSlice(kickScratch[:])
	copy(kickFP, fp)

	for n := 0; n < f.maxKicks; n++ {
		slot := f.rng.Intn(f.slotsPerBucket)
		off := int(target)*stride + slot*f.fingerprintBytes
		for i := 0; i < f.fingerprintBytes; i++ {
			f.buckets[off+i], kickFP[i] = kickFP[i], f.buckets[off+i]
		}

		target = f.altIndex(target, kickFP)
		if bucketInsert(f.buckets, int(target)*stride, kickFP, f.slotsPerBucket, f.fingerprintBytes) {
			f.stats.Size++
			f.stats.SuccessfulAdds++
			if uint32(n+1) > f.stats.MaxEvictionLength {
				f.stats.MaxEvictionLength = uint32(n + 1)
			}
			return true
		}
	}

	f.stats.FailedAdds++
	if f.logger != nil {
		f.logger.Warn(ctx, logging.ComponentFilter, logging.ActionFull, "filter full after exhausting max kicks")
	}
	return false
}

// Insert is a convenience wrapper over TryInsert that reports the full-filter case
// as a distinct error rather than a bare false.
func (f *Filter) Insert(v []byte) error {
	if f.TryInsert(v) {
		return nil
	}
	return ErrFilterFull
}

// Remove deletes v from the filter if its fingerprint is found in either candidate
// bucket, clearing exactly the first matching slot. Deleting a value that was never
// inserted may silently delete a colliding fingerprint belonging to another value;
// this is intrinsic to cuckoo filters and must not be "corrected".
func (f *Filter) Remove(v []byte) bool {
	f.stats.DeleteOperations++

	var scratch [maxInlineFingerprint]byte
	fp := f.fingerprintSlice(scratch[:])
	f.deriveFingerprint(v, fp)

	i1 := f.primaryIndex(v)
	i2 := f.altIndex(i1, fp)
	stride := f.bucketStride()

	for _, i := range [2]uint32{i1, i2} {
		bucketOff := int(i) * stride
		if j := bucketFind(f.buckets, bucketOff, fp, f.slotsPerBucket, f.fingerprintBytes); j >= 0 {
			off := bucketOff + j*f.fingerprintBytes
			zeroOut(f.buckets[off : off+f.fingerprintBytes])
			f.stats.Size--
			f.stats.SuccessfulDeletes++
			f.stats.LastModified = time.Now()
			return true
		}
	}

	f.stats.FailedDeletes++
	return false
}

// Equal reports whether two filters have identical parameters and bucket bytes.
func (f *Filter) Equal(other *Filter) bool {
	if other == nil {
		return false
	}
	if f.bucketCount != other.bucketCount ||
		f.slotsPerBucket != other.slotsPerBucket ||
		f.fingerprintBytes != other.fingerprintBytes ||
		f.maxKicks != other.maxKicks {
		return false
	}
	if len(f.buckets) != len(other.buckets) {
		return false
	}
	for i := range f.buckets {
		if f.buckets[i] != other.buckets[i] {
			return false
		}
	}
	return true
}

// HashCode combines the filter's parameters with a short digest of its bucket bytes,
// so that equal filters hash equal.
func (f *Filter) HashCode() uint32 {
	var buf [4]byte
	f.hash.Sum(buf[:], f.buckets)
	mix := beUint32(buf[:])
	mix ^= f.bucketCount
	mix ^= uint32(f.slotsPerBucket)<<16 | uint32(f.fingerprintBytes)
	mix ^= uint32(f.maxKicks)
	return mix
}

// BucketCount returns B.
func (f *Filter) BucketCount() uint32 { return f.bucketCount }

// SlotsPerBucket returns S.
func (f *Filter) SlotsPerBucket() int { return f.slotsPerBucket }

// FingerprintBytes returns F.
func (f *Filter) FingerprintBytes() int { return f.fingerprintBytes }

// MaxKicks returns K.
func (f *Filter) MaxKicks() int { return f.maxKicks }

// ByteLen returns the length of the packed bucket byte slab, B*S*F.
func (f *Filter) ByteLen() int { return len(f.buckets) }

// Bytes returns a copy of the packed bucket byte slab, for an external serializer
// to persist alongside B, S, F, and K.
func (f *Filter) Bytes() []byte {
	out := make([]byte, len(f.buckets))
	copy(out, f.buckets)
	return out
}

// Size returns the current number of items believed to be in the filter.
func (f *Filter) Size() uint64 { return f.stats.Size }

// Capacity returns B * S.
func (f *Filter) Capacity() uint64 { return uint64(f.bucketCount) * uint64(f.slotsPerBucket) }

// LoadFactor returns Size() / Capacity().
func (f *Filter) LoadFactor() float64 {
	capacity := f.Capacity()
	if capacity == 0 {
		return 0
	}
	return float64(f.stats.Size) / float64(capacity)
}
