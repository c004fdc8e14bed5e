package briefing

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest marks failures caused by the caller's input.
	ErrInvalidRequest = errors.New("invalid briefing request")

	// ErrMessageRequired is returned when a conversation is continued
	// without a new message.
	ErrMessageRequired = errors.New("message is required when history is not empty")

	// ErrInvalidTurn is returned for a history turn with an unknown role
	// or no parts.
	ErrInvalidTurn = errors.New("invalid history turn")

	// ErrUpstream marks a failure of a collector or of the AI service.
	ErrUpstream = errors.New("upstream service failed")
)

// invalid tags err as a caller error while keeping err matchable.
func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
}
