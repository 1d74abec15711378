package service

import "errors"

// The messaging error taxonomy. Callers branch on these with errors.Is; the
// HTTP layer maps each to a stable status code. ErrUnavailable is the only
// transient one — everything else is a caller error and retrying is
// pointless.
var (
	// ErrNotFound means an unknown conversation, property, or user.
	ErrNotFound = errors.New("not found")

	// ErrInvalidParticipants means buyer and seller are the same identity.
	ErrInvalidParticipants = errors.New("buyer and seller must be different users")

	// ErrNotParticipant means the acting user is neither the buyer nor the
	// seller of the conversation.
	ErrNotParticipant = errors.New("user is not a participant in this conversation")

	// ErrEmptyMessage means the message body is blank after trimming.
	ErrEmptyMessage = errors.New("message body is empty")

	// ErrUnavailable wraps a storage-layer failure. Safe to retry for reads
	// and for conversation creation; a failed send must surface to the user
	// for an explicit resend decision.
	ErrUnavailable = errors.New("storage unavailable")
)
