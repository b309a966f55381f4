package dummytransport

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/ujumbe/core/messaging"
)

var baseTime = time.Date(2021, time.March, 1, 10, 0, 0, 0, time.UTC)

func seed(t *testing.T) *Transport {
	t.Helper()
	tr := New("self", "Self User")
	tr.AddContact(messaging.Contact{
		UserID: "u-2", FullName: "Other",
		Subjects: []messaging.Subject{{ID: "s-1", Name: "Student One"}},
	})

	msgs := make([]messaging.Message, 0, 5)
	for i, id := range []string{"m1", "m2", "m3", "m4", "m5"} {
		msgs = append(msgs, messaging.Message{
			ID: id, ThreadID: "T1", SenderID: "u-2", Body: "msg " + id,
			CreatedAt: baseTime.Add(time.Duration(i) * time.Minute),
		})
	}
	tr.AddThread(messaging.Thread{ID: "T1"}, msgs...)
	return tr
}

func TestTransport_listMessagesPaging(t *testing.T) {
	tr := seed(t)
	ctx := context.Background()

	// newest window first
	page, err := tr.ListMessages(ctx, "T1", messaging.PageOptions{Limit: 2})
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if len(page.Messages) != 2 || page.Messages[0].ID != "m4" || page.Messages[1].ID != "m5" {
		t.Fatalf("newest window = %+v; want [m4 m5]", page.Messages)
	}
	if page.NextCursor == "" {
		t.Fatal("NextCursor empty; want a cursor to older history")
	}

	// walk the cursor back to the beginning
	page, err = tr.ListMessages(ctx, "T1", messaging.PageOptions{Cursor: page.NextCursor, Limit: 2})
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if len(page.Messages) != 2 || page.Messages[0].ID != "m2" {
		t.Fatalf("older window = %+v; want [m2 m3]", page.Messages)
	}

	page, err = tr.ListMessages(ctx, "T1", messaging.PageOptions{Cursor: page.NextCursor, Limit: 2})
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if len(page.Messages) != 1 || page.Messages[0].ID != "m1" {
		t.Fatalf("oldest window = %+v; want [m1]", page.Messages)
	}
	if page.NextCursor != "" {
		t.Errorf("NextCursor = %q at start of history; want empty", page.NextCursor)
	}
}

func TestTransport_listMessagesBadInput(t *testing.T) {
	tr := seed(t)
	ctx := context.Background()

	if _, err := tr.ListMessages(ctx, "nope", messaging.PageOptions{}); err == nil {
		t.Error("ListMessages(unknown thread) error = nil; want error")
	}
	if _, err := tr.ListMessages(ctx, "T1", messaging.PageOptions{Cursor: "lol"}); err == nil {
		t.Error("ListMessages(bad cursor) error = nil; want error")
	}
}

func TestTransport_sendMessageUpdatesPreview(t *testing.T) {
	tr := seed(t)
	ctx := context.Background()

	msg, err := tr.SendMessage(ctx, "T1", "  fresh news  ")
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if msg.Body != "fresh news" {
		t.Errorf("Body = %q; want trimmed", msg.Body)
	}

	threads, err := tr.ListThreads(ctx)
	if err != nil {
		t.Fatalf("ListThreads() error = %v", err)
	}
	if threads[0].LastMessagePreview != "fresh news" {
		t.Errorf("LastMessagePreview = %q; want %q", threads[0].LastMessagePreview, "fresh news")
	}

	if _, err := tr.SendMessage(ctx, "T1", "   "); err == nil {
		t.Error("SendMessage(blank) error = nil; want error")
	}
}

func TestTransport_createThread(t *testing.T) {
	tr := seed(t)
	ctx := context.Background()

	th, err := tr.CreateThread(ctx, messaging.NewThread{ContactID: "u-2", SubjectID: "s-1"})
	if err != nil {
		t.Fatalf("CreateThread() error = %v", err)
	}
	if th.Subject == nil || th.Subject.ID != "s-1" {
		t.Errorf("Subject = %v; want s-1", th.Subject)
	}
	if other, ok := th.Other(); !ok || other.UserID != "u-2" {
		t.Errorf("Other() = %v, %v; want u-2", other, ok)
	}

	if _, err := tr.CreateThread(ctx, messaging.NewThread{ContactID: "nope"}); err == nil {
		t.Error("CreateThread(unknown contact) error = nil; want error")
	}
	if _, err := tr.CreateThread(ctx, messaging.NewThread{ContactID: "u-2", SubjectID: "s-404"}); err == nil {
		t.Error("CreateThread(unlinked subject) error = nil; want error")
	}
}

func TestTransport_listThreadsOrdering(t *testing.T) {
	tr := seed(t)
	tr.AddThread(messaging.Thread{ID: "T2"}, messaging.Message{
		ID: "n1", ThreadID: "T2", SenderID: "u-2", Body: "newer",
		CreatedAt: baseTime.Add(time.Hour),
	})

	threads, err := tr.ListThreads(context.Background())
	if err != nil {
		t.Fatalf("ListThreads() error = %v", err)
	}
	if len(threads) != 2 || threads[0].ID != "T2" {
		t.Errorf("ListThreads() = %+v; want T2 first (most recent activity)", threads)
	}
}
