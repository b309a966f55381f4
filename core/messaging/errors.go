package messaging

import "errors"

// Local precondition failures. These are rejected before any network call is
// made and shown to the user as immediate feedback, not transport errors.
var (
	ErrNoThreadSelected = errors.New("no thread selected")
	ErrSendInFlight     = errors.New("a send is already in progress")
	ErrCreateInFlight   = errors.New("a conversation is already being created")
	ErrNoOlderMessages  = errors.New("no older messages to load")
	ErrContactNotFound  = errors.New("contact not found")
	ErrSubjectRequired  = errors.New("this contact has several linked subjects, pick one")
	ErrUnknownSubject   = errors.New("subject is not linked to this contact")
)
