// Package cuckoo implements a cuckoo filter.
//
// A cuckoo filter is a compact probabilistic set: Contains never false-negatives
// (if a value was inserted and never removed, Contains reports true), but may
// false-positive at a rate controlled by the filter's fingerprint width. Unlike a
// Bloom filter it supports Remove, at the cost of being vulnerable to false
// removal of colliding fingerprints if the caller deletes a value that was never
// inserted.
//
// Internally a filter is a flat byte slab of B buckets, each holding S fixed-width
// F-byte fingerprint slots. A value's two candidate buckets are i1 = hash(v) mod B
// and i2 = i1 xor (hash(fingerprint) mod B); XOR symmetry makes the relationship
// between i1 and i2 reversible from either side, which is what lets TryInsert
// displace ("kick") an existing fingerprint into its other candidate bucket without
// re-hashing the value that produced it.
package cuckoo
