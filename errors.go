package tableau

import "errors"

// Load errors. These are fatal: a composition that fails with one of them is
// never handed to the tick loop.
var (
	// ErrInvalidDuration indicates a non-static item with duration <= 0.
	ErrInvalidDuration = errors.New("duration must be positive")

	// ErrNegativeDelay indicates an item with delay < 0.
	ErrNegativeDelay = errors.New("delay must not be negative")

	// ErrCyclicParent indicates a parent assignment that would make a node its
	// own ancestor.
	ErrCyclicParent = errors.New("cyclic parent reference")

	// ErrDuplicateID indicates two items sharing an id within a composition.
	ErrDuplicateID = errors.New("duplicate item id")

	// ErrUnknownItemType indicates a scene item whose type has no content variant.
	ErrUnknownItemType = errors.New("unknown item type")

	// ErrUnsupportedVersion indicates a scene document outside the 1.x–3.0 range.
	ErrUnsupportedVersion = errors.New("unsupported scene version")

	// ErrNoComposition indicates a scene without the requested composition.
	ErrNoComposition = errors.New("composition not found")
)

// Runtime errors.
var (
	// ErrItemNotFound indicates an operation on an item the composition does not own.
	ErrItemNotFound = errors.New("item not found")
)
