package dummytransport

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/ujumbe/core"
	"github.com/trezcool/ujumbe/core/messaging"
)

var errBlankBody = errors.New("message body cannot be blank")

// Transport is an in-memory messaging.Transport used in local runs and tests.
// It behaves like the real backend: threads are listed by last activity
// descending, message pages are served newest-window-first with opaque
// cursors, and sends update the thread preview.
type Transport struct {
	mu       sync.RWMutex
	selfID   string
	selfName string
	contacts []messaging.Contact
	threads  map[string]*messaging.Thread
	messages map[string][]messaging.Message // oldest to newest

	// Err, when set, is returned by every operation. Tests use it to
	// exercise failure paths.
	Err error
}

var _ messaging.Transport = (*Transport)(nil)

func New(selfID, selfName string) *Transport {
	return &Transport{
		selfID:   selfID,
		selfName: selfName,
		threads:  make(map[string]*messaging.Thread),
		messages: make(map[string][]messaging.Message),
	}
}

// AddContact seeds a messageable person.
func (t *Transport) AddContact(c messaging.Contact) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.contacts = append(t.contacts, c)
}

// AddThread seeds a conversation and its history (msgs oldest to newest).
func (t *Transport) AddThread(th messaging.Thread, msgs ...messaging.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.threads[th.ID] = &th
	t.messages[th.ID] = append(t.messages[th.ID], msgs...)
	t.touch(&th)
}

func (t *Transport) ListContacts(ctx context.Context) ([]messaging.Contact, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.Err != nil {
		return nil, t.Err
	}
	contacts := make([]messaging.Contact, len(t.contacts))
	copy(contacts, t.contacts)
	return contacts, nil
}

func (t *Transport) ListThreads(ctx context.Context) ([]messaging.Thread, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.Err != nil {
		return nil, t.Err
	}
	threads := make([]messaging.Thread, 0, len(t.threads))
	for _, th := range t.threads {
		threads = append(threads, *th)
	}
	sort.Slice(threads, func(i, j int) bool {
		ti, tj := threads[i].LastMessageAt, threads[j].LastMessageAt
		switch {
		case ti == nil:
			return false
		case tj == nil:
			return true
		default:
			return ti.After(*tj)
		}
	})
	return threads, nil
}

// ListMessages serves one page ending at the cursor (or at the newest message
// when the cursor is empty). The returned cursor marks the boundary of the
// next older page; it is opaque to callers.
func (t *Transport) ListMessages(ctx context.Context, threadID string, opts messaging.PageOptions) (messaging.MessagePage, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.Err != nil {
		return messaging.MessagePage{}, t.Err
	}
	if _, ok := t.threads[threadID]; !ok {
		return messaging.MessagePage{}, errors.New("thread not found")
	}

	history := t.messages[threadID]
	limit := opts.Limit
	if limit <= 0 {
		limit = messaging.DefaultPageSize
	}

	end := len(history)
	if opts.Cursor != "" {
		n, err := strconv.Atoi(opts.Cursor)
		if err != nil || n < 0 || n > len(history) {
			return messaging.MessagePage{}, errors.New("invalid cursor")
		}
		end = n
	}
	start := end - limit
	if start < 0 {
		start = 0
	}

	page := messaging.MessagePage{Messages: append([]messaging.Message(nil), history[start:end]...)}
	if start > 0 {
		page.NextCursor = strconv.Itoa(start)
	}
	return page, nil
}

func (t *Transport) SendMessage(ctx context.Context, threadID, body string) (messaging.Message, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Err != nil {
		return messaging.Message{}, t.Err
	}
	th, ok := t.threads[threadID]
	if !ok {
		return messaging.Message{}, errors.New("thread not found")
	}
	if core.CleanString(body) == "" {
		return messaging.Message{}, errBlankBody
	}

	msg := messaging.Message{
		ID:        uuid.New().String(),
		ThreadID:  threadID,
		SenderID:  t.selfID,
		Body:      core.CleanString(body),
		CreatedAt: time.Now().UTC(),
	}
	t.messages[threadID] = append(t.messages[threadID], msg)
	t.touch(th)
	return msg, nil
}

func (t *Transport) CreateThread(ctx context.Context, nt messaging.NewThread) (messaging.Thread, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Err != nil {
		return messaging.Thread{}, t.Err
	}

	var contact *messaging.Contact
	for i := range t.contacts {
		if t.contacts[i].UserID == nt.ContactID {
			contact = &t.contacts[i]
			break
		}
	}
	if contact == nil {
		return messaging.Thread{}, errors.New("contact not found")
	}

	th := messaging.Thread{
		ID: uuid.New().String(),
		Participants: []messaging.Participant{
			{UserID: t.selfID, FullName: t.selfName, IsSelf: true},
			{UserID: contact.UserID, FullName: contact.FullName},
		},
	}
	if nt.SubjectID != "" {
		subj, ok := contact.FindSubject(nt.SubjectID)
		if !ok {
			return messaging.Thread{}, errors.New("subject is not linked to this contact")
		}
		th.Subject = &subj
	}
	t.threads[th.ID] = &th
	return th, nil
}

// touch recomputes the thread's last-activity fields from its history.
func (t *Transport) touch(th *messaging.Thread) {
	history := t.messages[th.ID]
	if len(history) == 0 {
		return
	}
	last := history[len(history)-1]
	at := last.CreatedAt
	th.LastMessageAt = &at
	th.LastMessagePreview = last.Body
	t.threads[th.ID] = th
}
