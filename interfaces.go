package cuckoo

// MembershipFilter is the capability interface *Filter satisfies. A hosting
// application can depend on this instead of the concrete type.
type MembershipFilter interface {
	// Contains reports whether v might be in the filter. False means definitely not.
	Contains(v []byte) bool

	// TryInsert adds v to the filter, reporting false if the filter is too full.
	TryInsert(v []byte) bool

	// Remove deletes v from the filter if present, reporting whether it was found.
	// Removing a value that was never inserted may delete a colliding fingerprint
	// belonging to a different value; this is intrinsic to cuckoo filters.
	Remove(v []byte) bool

	// Size returns the current number of items believed to be in the filter.
	Size() uint64

	// Capacity returns B * S, the maximum number of fingerprints the filter can hold.
	Capacity() uint64

	// LoadFactor returns Size()/Capacity().
	LoadFactor() float64
}

var _ MembershipFilter = (*Filter)(nil)
