package cuckoo

import "testing"

func TestDeriveFingerprintRewritesAllZero(t *testing.T) {
	f := newTestFilter(t, 4, 1, 4, mapHasher{"zero": {0, 0, 0, 0}})

	var dst [4]byte
	f.deriveFingerprint([]byte("zero"), dst[:])

	for i, b := range dst {
		if b != 0xFF {
			t.Fatalf("dst[%d] = %#x, want 0xFF (all-zero digest must be rewritten to all-ones)", i, b)
		}
	}
}

func TestAltIndexIsInvolution(t *testing.T) {
	f := newTestFilter(t, 8, 4, 4, mapHasher{"fp": {0, 0, 0, 3}})
	fp := []byte("fp")

	i1 := uint32(5)
	i2 := f.altIndex(i1, fp)
	if back := f.altIndex(i2, fp); back != i1 {
		t.Fatalf("altIndex is not an involution: altIndex(altIndex(%d, fp), fp) = %d, want %d", i1, back, i1)
	}
}

func TestFingerprintSliceUsesScratchWhenItFits(t *testing.T) {
	f := newTestFilter(t, 4, 1, 4, mapHasher{})
	var scratch [maxInlineFingerprint]byte
	got := f.fingerprintSlice(scratch[:])
	if len(got) != 4 {
		t.Fatalf("len(fingerprintSlice) = %d, want 4", len(got))
	}
	got[0] = 0x7F
	if scratch[0] != 0x7F {
		t.Fatalf("fingerprintSlice did not alias the provided scratch buffer")
	}
}
