package messaging

import (
	"errors"
	"fmt"
)

// Error taxonomy for the messaging core. Handlers and the websocket dispatcher
// classify with errors.Is against the four roots; the wrapped sentinels carry
// the machine-stable reason strings.
var (
	ErrInvalidPayload = errors.New("invalid payload")
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")

	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrGroupNotFound   = fmt.Errorf("group %w", ErrNotFound)
	ErrMessageNotFound = fmt.Errorf("message %w", ErrNotFound)
	ErrMemberNotFound  = fmt.Errorf("group member %w", ErrNotFound)

	ErrNotAMember     = fmt.Errorf("%w: not a group member", ErrForbidden)
	ErrNotSender      = fmt.Errorf("%w: only the sender may do this", ErrForbidden)
	ErrNotReceiver    = fmt.Errorf("%w: only the receiver may do this", ErrForbidden)
	ErrNotGroupAdmin  = fmt.Errorf("%w: requires group admin", ErrForbidden)
	ErrCreatorRemoval = fmt.Errorf("%w: cannot remove the group creator", ErrForbidden)

	ErrLastAdmin       = fmt.Errorf("%w: cannot remove the last group admin", ErrConflict)
	ErrDuplicateMember = fmt.Errorf("%w: already a group member", ErrConflict)
)
