package ledger

import "errors"

var (
	// ErrEmptyProduction indicates a production submission without entries or weights.
	ErrEmptyProduction = errors.New("production requires at least one flavor with weights")
	// ErrInvalidWeight indicates a non-positive production weight or a negative bucket weight.
	ErrInvalidWeight = errors.New("invalid bucket weight")
	// ErrUnknownStore indicates a location outside the retail store set.
	ErrUnknownStore = errors.New("unknown store")
	// ErrFlavorNotFound indicates a flavor reference that does not resolve.
	ErrFlavorNotFound = errors.New("flavor not found")
	// ErrInvalidFlavor indicates a flavor payload that fails validation.
	ErrInvalidFlavor = errors.New("invalid flavor")
	// ErrCategoryNotFound indicates a category reference that does not resolve.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrInvalidCategory indicates a category payload that fails validation.
	ErrInvalidCategory = errors.New("invalid category")
	// ErrBucketNotFound indicates a bucket identifier that does not resolve.
	ErrBucketNotFound = errors.New("bucket not found")
	// ErrUnknownBucket indicates a closing entry that is not a distinct in-stock bucket of the store.
	ErrUnknownBucket = errors.New("bucket not held by store")
	// ErrInvalidImport indicates a restore payload that could not be applied.
	ErrInvalidImport = errors.New("invalid import payload")
)
