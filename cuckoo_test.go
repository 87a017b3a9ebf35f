package cuckoo

import (
	"math/rand"
	"testing"
)

// constSource is a rand.Source that always returns the same value, making Intn
// calls against power-of-two bounds deterministic (Int31n masks Int31() & (n-1)).
type constSource struct{ v int64 }

func (s constSource) Int63() int64 { return s.v }
func (s constSource) Seed(int64)   {}

// mapHasher is a deterministic Hasher backed by an exact lookup table, used to
// reproduce fixed worked-example hash outputs in tests. Unmapped inputs yield an
// all-zero digest (the caller's scratch buffer is already zeroed).
type mapHasher map[string][]byte

func (m mapHasher) Sum(dst, data []byte) {
	if v, ok := m[string(data)]; ok {
		copy(dst, v)
	}
}

func newTestFilter(t *testing.T, bucketCount uint32, slots, fbytes int, h Hasher) *Filter {
	t.Helper()
	f, err := New(&Config{
		BucketCount:      bucketCount,
		SlotsPerBucket:   slots,
		FingerprintBytes: fbytes,
		Hasher:           h,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f.rng = rand.New(constSource{v: 0})
	return f
}

func dumpFingerprints(f *Filter) []string {
	stride := f.bucketStride()
	out := make([]string, f.bucketCount)
	for i := 0; i < int(f.bucketCount); i++ {
		off := i * stride
		if zeroSlot(f.buckets, off, f.fingerprintBytes) {
			out[i] = ""
			continue
		}
		out[i] = string(f.buckets[off : off+f.fingerprintBytes])
	}
	return out
}

// TestCascadeOfKicks reproduces the worked example: B=4, S=1, F=4, with a hash
// mapping chosen so that inserting foo4 displaces foo2's fingerprint through one
// eviction before it lands in the filter's one remaining empty bucket.
func TestCascadeOfKicks(t *testing.T) {
	h := mapHasher{
		"foo1": []byte("has1"),
		"foo2": []byte("has2"),
		"foo3": []byte("has3"),
		"foo4": []byte("2as2"),
		"has1": []byte("alt1"),
		"has2": []byte("alt2"),
		"has3": []byte("alt3"),
		"2as2": []byte("alt1"),
	}
	f := newTestFilter(t, 4, 1, 4, h)

	for _, v := range []string{"foo1", "foo2", "foo3"} {
		if !f.TryInsert([]byte(v)) {
			t.Fatalf("TryInsert(%q) failed unexpectedly", v)
		}
	}
	if got, want := dumpFingerprints(f), []string{"", "has1", "has2", "has3"}; !equalStrings(got, want) {
		t.Fatalf("after foo1..foo3: buckets = %v, want %v", got, want)
	}

	if !f.TryInsert([]byte("foo4")) {
		t.Fatalf("TryInsert(foo4) failed unexpectedly")
	}
	if got, want := dumpFingerprints(f), []string{"has2", "has1", "2as2", "has3"}; !equalStrings(got, want) {
		t.Fatalf("after foo4: buckets = %v, want %v", got, want)
	}

	if f.TryInsert([]byte("foo4")) {
		t.Fatalf("second TryInsert(foo4) should fail once all buckets are full")
	}
}

// TestSaturationNoKicksLeft reproduces the worked example where three values share
// a fingerprint and its alternate bucket, so the third insert cycles between the
// two candidate buckets until max-kicks is exhausted.
func TestSaturationNoKicksLeft(t *testing.T) {
	h := mapHasher{
		"foo1": []byte("hash"),
		"foo2": []byte("hash"),
		"foo3": []byte("hash"),
		"hash": []byte("altk"),
	}
	f := newTestFilter(t, 4, 1, 4, h)

	if !f.TryInsert([]byte("foo1")) {
		t.Fatalf("TryInsert(foo1) failed unexpectedly")
	}
	if got, want := dumpFingerprints(f), []string{"hash", "", "", ""}; !equalStrings(got, want) {
		t.Fatalf("after foo1: buckets = %v, want %v", got, want)
	}

	if !f.TryInsert([]byte("foo2")) {
		t.Fatalf("TryInsert(foo2) failed unexpectedly")
	}
	if got, want := dumpFingerprints(f), []string{"hash", "", "", "hash"}; !equalStrings(got, want) {
		t.Fatalf("after foo2: buckets = %v, want %v", got, want)
	}

	if f.TryInsert([]byte("foo3")) {
		t.Fatalf("TryInsert(foo3) should fail: both candidate buckets are full and share a fingerprint")
	}
}

// TestMultiSlotFirstEmptyAndKick covers a S=2 bucket: two fingerprints sharing a
// primary bucket occupy slot 0 and slot 1 in insertion order, and a third shares
// the same (single) candidate bucket, forcing an eviction.
func TestMultiSlotFirstEmptyAndKick(t *testing.T) {
	fpA := []byte{0xA1, 0xA1, 0xA1, 0xA1} // primary index 1
	fpB := []byte{0xA5, 0xA5, 0xA5, 0xA5} // primary index 1
	fpC := []byte{0xA9, 0xA9, 0xA9, 0xA9} // primary index 1

	h := mapHasher{
		"a": fpA,
		"b": fpB,
		"c": fpC,

		string(fpA): {0, 0, 0, 1}, // hash(fpA) mod 4 == 1, used when "a" is kicked
		string(fpC): {0, 0, 0, 4}, // hash(fpC) mod 4 == 0, so c's i2 == i1
	}
	f := newTestFilter(t, 4, 2, 4, h)

	if !f.TryInsert([]byte("a")) {
		t.Fatalf("TryInsert(a) failed unexpectedly")
	}
	if !f.TryInsert([]byte("b")) {
		t.Fatalf("TryInsert(b) failed unexpectedly")
	}
	dump := f.Dump()
	if len(dump) != 1 || dump[0].Index != 1 || len(dump[0].Slots) != 2 {
		t.Fatalf("after a, b: expected bucket 1 holding 2 slots, got %+v", dump)
	}
	if string(dump[0].Slots[0]) != string(fpA) || string(dump[0].Slots[1]) != string(fpB) {
		t.Fatalf("first-empty-slot rule violated: slots = %v", dump[0].Slots)
	}

	statsBefore := f.Stats()
	if !f.TryInsert([]byte("c")) {
		t.Fatalf("TryInsert(c) failed unexpectedly")
	}
	statsAfter := f.Stats()
	if statsAfter.EvictionChains != statsBefore.EvictionChains+1 {
		t.Fatalf("expected the third insert to trigger exactly one eviction chain")
	}

	if !f.Contains([]byte("a")) || !f.Contains([]byte("b")) || !f.Contains([]byte("c")) {
		t.Fatalf("all three values must remain findable after the eviction")
	}
}

// TestFalsePositiveBudget checks the false-positive rate against a held-out range
// of values never inserted, across a spread of filter sizes.
func TestFalsePositiveBudget(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping false-positive sweep in short mode")
	}
	const epsilon = 0.03
	for _, n := range []uint64{100, 1000, 10000} {
		f, err := New(&Config{Capacity: n, FalsePositiveRate: epsilon, Seed: 0, HasSeed: true})
		if err != nil {
			t.Fatalf("New(capacity=%d): %v", n, err)
		}
		for i := uint64(0); i < n; i++ {
			f.TryInsert(uint64Bytes(i))
		}

		falsePositives := 0
		const probes = 10000
		for i := n; i < n+probes; i++ {
			if f.Contains(uint64Bytes(i)) {
				falsePositives++
			}
		}
		budget := int(epsilon * float64(probes))
		if falsePositives >= budget {
			t.Fatalf("capacity=%d: got %d false positives, want < %d", n, falsePositives, budget)
		}
	}
}

// TestRoundTripEquality builds a filter, inserts a range of values, serializes its
// bucket bytes and parameters, reconstructs a second filter from them, and checks
// the two compare equal.
func TestRoundTripEquality(t *testing.T) {
	f, err := New(&Config{Capacity: 500, FalsePositiveRate: 0.01, Seed: 50, HasSeed: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := uint64(0); i < 300; i++ {
		if !f.TryInsert(uint64Bytes(i)) {
			t.Fatalf("TryInsert(%d) failed unexpectedly", i)
		}
	}

	restored, err := NewFromBytes(f.Bytes(), f.SlotsPerBucket(), f.FingerprintBytes(), f.MaxKicks(), &Config{Hasher: f.hash})
	if err != nil {
		t.Fatalf("NewFromBytes: %v", err)
	}

	if !f.Equal(restored) {
		t.Fatalf("round-tripped filter is not equal to the original")
	}
}

// TestRemoveThenContainsMayStillBeTrueOnCollision covers the accepted cuckoo-filter
// caveat documented on MembershipFilter.Remove: two values sharing a fingerprint and
// a bucket are indistinguishable once stored, so removing one can leave Contains
// true for it, because the surviving slot actually belongs to the other value.
func TestRemoveThenContainsMayStillBeTrueOnCollision(t *testing.T) {
	fp := []byte{0xAB, 0xAB, 0xAB, 0xAB} // bottom two bits 11 -> bucket index 3 of 4
	h := mapHasher{
		"x":        fp,
		"y":        fp,
		string(fp): {0, 0, 0, 0}, // altIndex(i, fp) == i, so both candidate buckets coincide
	}
	f := newTestFilter(t, 4, 2, 4, h)

	if !f.TryInsert([]byte("x")) {
		t.Fatalf("TryInsert(x) failed unexpectedly")
	}
	if !f.TryInsert([]byte("y")) {
		t.Fatalf("TryInsert(y) failed unexpectedly")
	}

	if !f.Remove([]byte("x")) {
		t.Fatalf("Remove(x) should report success")
	}

	if !f.Contains([]byte("x")) {
		t.Fatalf("Contains(x) should still be true: y's identical fingerprint remains in the shared bucket")
	}
	if !f.Contains([]byte("y")) {
		t.Fatalf("Contains(y) should be true: y was never removed")
	}
}

// TestRemoveNeverInserted checks that removing a value that was never added reports
// false rather than deleting an unrelated fingerprint.
func TestRemoveNeverInserted(t *testing.T) {
	f, err := New(&Config{Capacity: 100, FalsePositiveRate: 0.01, Seed: 1, HasSeed: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := uint64(0); i < 50; i++ {
		if !f.TryInsert(uint64Bytes(i)) {
			t.Fatalf("TryInsert(%d) failed unexpectedly", i)
		}
	}

	absent := uint64Bytes(999999)
	if f.Remove(absent) {
		t.Fatalf("Remove of a never-inserted value should report false")
	}

	for i := uint64(0); i < 50; i++ {
		if !f.Contains(uint64Bytes(i)) {
			t.Fatalf("Remove of an absent value must not disturb value %d", i)
		}
	}
}

// TestDoubleRemove checks that a second Remove of the same value, once its slot has
// already been cleared, reports false instead of repeating the first success.
func TestDoubleRemove(t *testing.T) {
	f := newTestFilter(t, 4, 1, 4, mapHasher{
		"solo": {0x11, 0x22, 0x33, 0x44},
	})

	if !f.TryInsert([]byte("solo")) {
		t.Fatalf("TryInsert(solo) failed unexpectedly")
	}

	if !f.Remove([]byte("solo")) {
		t.Fatalf("first Remove(solo) should report success")
	}
	if f.Remove([]byte("solo")) {
		t.Fatalf("second Remove(solo) should report false: the fingerprint is already gone")
	}
	if f.Contains([]byte("solo")) {
		t.Fatalf("Contains(solo) should be false after removal with no colliding survivor")
	}
}

func uint64Bytes(v uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * uint(7-i)))
	}
	return b
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
