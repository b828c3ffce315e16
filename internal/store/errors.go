package store

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by every store implementation. Callers match
// with errors.Is; the entity-specific variants wrap the generic ones so
// both levels match.
var (
	// ErrNotFound means the requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate means a write collided with a uniqueness constraint,
	// such as a subscriber email or a paper URL.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity means the database rejected the entity, for
	// example a broken foreign key or a null in a required column.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed wraps begin/commit/rollback failures from
	// RunInTransaction.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrSubscriberNotFound is returned for a missing subscriber.
	ErrSubscriberNotFound = fmt.Errorf("%w: subscriber", ErrNotFound)

	// ErrPaperNotFound is returned for a missing paper.
	ErrPaperNotFound = fmt.Errorf("%w: paper", ErrNotFound)

	// ErrDigestNotFound is returned for a missing digest record.
	ErrDigestNotFound = fmt.Errorf("%w: digest record", ErrNotFound)

	// ErrMailConfigNotFound is returned when no active mail transport
	// configuration exists.
	ErrMailConfigNotFound = fmt.Errorf("%w: mail transport config", ErrNotFound)

	// ErrEmailExists is returned when a subscriber email is already taken.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)
)

// IsNotFoundError reports whether err is ErrNotFound or any of its
// entity-specific variants.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err is ErrDuplicate or any of its
// entity-specific variants.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
