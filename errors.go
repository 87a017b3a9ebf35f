package cuckoo

import "fmt"

// FilterError represents a failure in constructing or operating on a Filter.
type FilterError struct {
	Operation string // the operation that failed: "construct" or "insert"
	Message   string // human-readable description
	Cause     error  // underlying error, if any
}

func (e *FilterError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cuckoo: %s failed: %s (caused by: %v)", e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("cuckoo: %s failed: %s", e.Operation, e.Message)
}

func (e *FilterError) Unwrap() error { return e.Cause }

// Sentinel errors for the construction (argument) and insertion (filter full) paths.
var (
	// ErrNotPowerOfTwo is returned when an explicit bucket count isn't a power of two.
	// The xor-based alternate-index derivation is only an involution under that constraint.
	ErrNotPowerOfTwo = &FilterError{Operation: "construct", Message: "bucket count must be a power of two"}

	// ErrInvalidLength is returned by NewFromBytes when the byte slice length isn't a
	// multiple of slotsPerBucket*fingerprintBytes.
	ErrInvalidLength = &FilterError{Operation: "construct", Message: "byte slice length is not a multiple of slots-per-bucket * fingerprint bytes"}

	// ErrInvalidParams is returned when capacity/false-positive rate/slot or fingerprint
	// sizes are non-positive.
	ErrInvalidParams = &FilterError{Operation: "construct", Message: "capacity, false-positive rate, and size parameters must be positive"}

	// ErrFilterFull is returned by Insert (and signaled as false by TryInsert) once the
	// maximum number of kicks has been exhausted without finding an empty slot.
	ErrFilterFull = &FilterError{Operation: "insert", Message: "filter is full, cannot add more items"}
)
