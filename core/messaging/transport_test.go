package messaging

import (
	"context"
	"fmt"
	"time"
)

// fakeTransport implements Transport with per-call hooks; nil hooks return
// zero values. Tests gate hooks with channels to hold responses in flight.
type fakeTransport struct {
	listContacts func(ctx context.Context) ([]Contact, error)
	listThreads  func(ctx context.Context) ([]Thread, error)
	listMessages func(ctx context.Context, threadID string, opts PageOptions) (MessagePage, error)
	sendMessage  func(ctx context.Context, threadID, body string) (Message, error)
	createThread func(ctx context.Context, nt NewThread) (Thread, error)
}

var _ Transport = (*fakeTransport)(nil)

func (f *fakeTransport) ListContacts(ctx context.Context) ([]Contact, error) {
	if f.listContacts == nil {
		return nil, nil
	}
	return f.listContacts(ctx)
}

func (f *fakeTransport) ListThreads(ctx context.Context) ([]Thread, error) {
	if f.listThreads == nil {
		return nil, nil
	}
	return f.listThreads(ctx)
}

func (f *fakeTransport) ListMessages(ctx context.Context, threadID string, opts PageOptions) (MessagePage, error) {
	if f.listMessages == nil {
		return MessagePage{}, nil
	}
	return f.listMessages(ctx, threadID, opts)
}

func (f *fakeTransport) SendMessage(ctx context.Context, threadID, body string) (Message, error) {
	if f.sendMessage == nil {
		return Message{}, nil
	}
	return f.sendMessage(ctx, threadID, body)
}

func (f *fakeTransport) CreateThread(ctx context.Context, nt NewThread) (Thread, error) {
	if f.createThread == nil {
		return Thread{}, nil
	}
	return f.createThread(ctx, nt)
}

var baseTime = time.Date(2021, time.March, 1, 10, 0, 0, 0, time.UTC)

func msg(id, threadID string, at time.Time) Message {
	return Message{ID: id, ThreadID: threadID, SenderID: "u-1", Body: "msg " + id, CreatedAt: at}
}

// manyMessages builds n messages a minute apart, oldest first, with ids
// derived from prefix.
func manyMessages(threadID, prefix string, n int, start time.Time) []Message {
	msgs := make([]Message, 0, n)
	for i := 0; i < n; i++ {
		msgs = append(msgs, msg(fmt.Sprintf("%s%03d", prefix, i), threadID, start.Add(time.Duration(i)*time.Minute)))
	}
	return msgs
}

func thread(id string, lastAt time.Time) Thread {
	at := lastAt
	return Thread{
		ID: id,
		Participants: []Participant{
			{UserID: "u-1", FullName: "Self", IsSelf: true},
			{UserID: "u-2", FullName: "Other"},
		},
		LastMessageAt: &at,
	}
}

// assertOrderedUnique checks non-decreasing CreatedAt and unique ids.
func assertOrderedUnique(msgs []Message) error {
	seen := make(map[string]struct{}, len(msgs))
	for i, m := range msgs {
		if _, ok := seen[m.ID]; ok {
			return fmt.Errorf("duplicate message id %q", m.ID)
		}
		seen[m.ID] = struct{}{}
		if i > 0 && m.CreatedAt.Before(msgs[i-1].CreatedAt) {
			return fmt.Errorf("message %q out of order", m.ID)
		}
	}
	return nil
}
