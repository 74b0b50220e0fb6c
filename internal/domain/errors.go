package domain

import "errors"

var (
	// ErrProductNotFound reports that a product reference has no match
	// in the catalog. The flow returns to idle without store mutation.
	ErrProductNotFound = errors.New("product does not exist")

	// ErrMalformedAction reports an action payload that does not match
	// any known wire shape. No state is mutated.
	ErrMalformedAction = errors.New("malformed action payload")

	// ErrBackendUnavailable reports a failed persistence write or
	// remote call. The triggering operation performs no partial write.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrAnnounceFailed reports that the channel announcement could not
	// be delivered. The product itself is already committed.
	ErrAnnounceFailed = errors.New("announcement delivery failed")

	// ErrStaleAction reports a callback that arrived outside its flow
	// step, such as a second press of an already-consumed button.
	ErrStaleAction = errors.New("stale action")
)
