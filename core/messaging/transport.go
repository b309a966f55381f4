package messaging

import "context"

// Transport performs the network round-trips the engine depends on. It is the
// sole external collaborator: implementations return either a payload or an
// error carrying a human-readable message, which is surfaced to the user
// verbatim. Timeouts and retries are the implementation's business; the
// engine treats any failure uniformly.
type Transport interface {
	ListContacts(ctx context.Context) ([]Contact, error)
	ListThreads(ctx context.Context) ([]Thread, error)
	ListMessages(ctx context.Context, threadID string, opts PageOptions) (MessagePage, error)
	SendMessage(ctx context.Context, threadID, body string) (Message, error)
	CreateThread(ctx context.Context, nt NewThread) (Thread, error)
}
