package messaging

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/ujumbe/core"
)

const (
	DefaultPageSize     = 50
	DefaultPollInterval = 90 * time.Second
)

type (
	Options struct {
		Transport    Transport
		Logger       core.Logger
		PageSize     int           // defaults to DefaultPageSize
		PollInterval time.Duration // defaults to DefaultPollInterval
	}

	// Controller owns all messaging state: the contact directory, the thread
	// registry, the selected thread's timeline and the draft. The view layer
	// reads Snapshots and issues the named operations; it never mutates the
	// stores directly. Every method is safe for concurrent callers.
	Controller struct {
		tr           Transport
		log          core.Logger
		pageSize     int
		pollInterval time.Duration

		directory *Directory
		registry  *Registry

		mu           sync.Mutex
		selectedID   string
		tl           *timeline
		draft        Draft
		loadSeq      uint64 // bumped whenever a newer load owns the timeline
		loadingMsgs  bool
		loadingOlder bool
		sending      bool
		creating     bool

		pollMu   sync.Mutex
		pollStop chan struct{} // nil when the polling loop is not running
	}

	// Snapshot is the read-only state handed to the presentation layer.
	Snapshot struct {
		Contacts        []Contact
		LoadingContacts bool

		Threads        []Thread
		LoadingThreads bool

		SelectedThread   *Thread
		Messages         []Message
		HasOlderMessages bool
		LoadingMessages  bool
		LoadingOlder     bool

		Draft    Draft
		Sending  bool
		Creating bool
	}
)

func NewController(opts *Options) *Controller {
	c := &Controller{
		tr:           opts.Transport,
		log:          opts.Logger,
		pageSize:     opts.PageSize,
		pollInterval: opts.PollInterval,
	}
	if c.log == nil {
		c.log = nopLogger{}
	}
	if c.pageSize <= 0 {
		c.pageSize = DefaultPageSize
	}
	if c.pollInterval <= 0 {
		c.pollInterval = DefaultPollInterval
	}
	c.directory = NewDirectory(c.tr)
	c.registry = NewRegistry(c.tr)
	return c
}

// Startup loads the contact directory and the thread registry concurrently;
// neither depends on the other. With no prior selection, the first thread of
// a non-empty snapshot becomes the default selection and its timeline is
// loaded. The first failure (if any) is returned for user-facing messaging.
func (c *Controller) Startup(ctx context.Context) error {
	var (
		wg             sync.WaitGroup
		dirErr, regErr error
	)
	wg.Add(2)
	go func() { defer wg.Done(); dirErr = c.directory.Load(ctx) }()
	go func() { defer wg.Done(); regErr = c.registry.Refresh(ctx) }()
	wg.Wait()

	if regErr == nil {
		c.applyRegistrySnapshot(ctx)
	}
	if dirErr != nil {
		return dirErr
	}
	return regErr
}

// ReloadContacts re-fetches the directory on demand (the recovery path after
// a failed load; there is no automatic retry).
func (c *Controller) ReloadContacts(ctx context.Context) error {
	return c.directory.Load(ctx)
}

// RefreshThreads re-fetches the registry on demand and reconciles the
// selection with the new snapshot.
func (c *Controller) RefreshThreads(ctx context.Context) error {
	if err := c.registry.Refresh(ctx); err != nil {
		return err
	}
	c.applyRegistrySnapshot(ctx)
	return nil
}

// applyRegistrySnapshot reconciles selection with the latest thread snapshot:
// a still-present selection is preserved, a vanished one is dropped, and the
// first-thread default applies whenever nothing is selected.
func (c *Controller) applyRegistrySnapshot(ctx context.Context) {
	c.mu.Lock()
	if c.selectedID != "" {
		if _, ok := c.registry.Get(c.selectedID); ok {
			c.mu.Unlock()
			return
		}
		c.selectedID = ""
		c.tl = nil
		c.draft = Draft{}
	}
	c.mu.Unlock()

	first, ok := c.registry.First()
	if !ok {
		return
	}
	c.mu.Lock()
	stillNone := c.selectedID == ""
	c.mu.Unlock()
	if stillNone {
		if err := c.SelectThread(ctx, first.ID); err != nil {
			c.log.Warn("loading default thread", err)
		}
	}
}

// SelectThread makes `id` the active conversation: the draft is reset to an
// empty body scoped to it and its newest message window is fetched. If the
// user selects another thread before the fetch resolves, the late response is
// discarded silently.
func (c *Controller) SelectThread(ctx context.Context, id string) error {
	c.mu.Lock()
	c.selectedID = id
	c.draft = Draft{ThreadID: id}
	c.tl = newTimeline(id)
	c.loadingOlder = false
	c.mu.Unlock()

	return c.loadFirstPage(ctx, id, true)
}

// loadFirstPage fetches a thread's newest window and applies it only if that
// thread is still the current selection when the response lands. There is no
// request cancellation; superseded responses complete but are never applied.
func (c *Controller) loadFirstPage(ctx context.Context, id string, markLoading bool) error {
	c.mu.Lock()
	c.loadSeq++
	seq := c.loadSeq
	if markLoading {
		c.loadingMsgs = true
	}
	c.mu.Unlock()

	page, err := c.tr.ListMessages(ctx, id, PageOptions{Limit: c.pageSize})

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selectedID == id {
		c.loadingMsgs = false
	}
	if seq != c.loadSeq || c.selectedID != id {
		return nil // selection moved on; drop the stale page
	}
	if err != nil {
		return errors.Wrap(err, "loading messages")
	}
	c.tl.replaceInitial(page)
	return nil
}

// SetDraft replaces the composer text for the current selection. The draft is
// single-writer: only the active composer calls this, never a background
// refresh.
func (c *Controller) SetDraft(body string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Body = body
}

// SendMessage submits the current draft. Preconditions (a selection, a
// non-blank body, no send already in flight) are enforced locally, with no
// network call on violation. On success the returned message is appended to
// the timeline, the draft body is cleared and a fire-and-forget registry
// refresh reconciles preview/ordering. On failure the draft is preserved
// unmodified so the user can retry.
func (c *Controller) SendMessage(ctx context.Context) error {
	c.mu.Lock()
	if c.selectedID == "" {
		c.mu.Unlock()
		return ErrNoThreadSelected
	}
	if c.sending {
		c.mu.Unlock()
		return ErrSendInFlight
	}
	nm := NewMessage{Body: c.draft.Body}
	if err := nm.Validate(); err != nil {
		c.mu.Unlock()
		return err
	}
	id := c.selectedID
	body := core.CleanString(nm.Body)
	c.sending = true
	c.mu.Unlock()

	msg, err := c.tr.SendMessage(ctx, id, body)

	c.mu.Lock()
	c.sending = false
	if err != nil {
		c.mu.Unlock()
		return errors.Wrap(err, "sending message")
	}
	if c.selectedID == id {
		c.tl.append(msg)
	}
	if c.draft.ThreadID == id {
		c.draft.Body = ""
	}
	c.mu.Unlock()

	// fire-and-forget: a failed reconciliation must not roll back or flag the
	// already-successful send
	go func() {
		if err := c.registry.Refresh(context.Background()); err != nil {
			c.log.Warn("refreshing threads after send", err)
		}
	}()
	return nil
}

// CreateThread starts a conversation with a contact. Subject resolution: a
// contact with no linked subject needs none, exactly one is used
// automatically, and several without an explicit choice is a precondition
// failure; ambiguity is surfaced, never silently defaulted. On success the
// new thread becomes visible immediately, the registry reconciles in the
// background and the thread is selected.
func (c *Controller) CreateThread(ctx context.Context, nt NewThread) error {
	if err := nt.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	if c.creating {
		c.mu.Unlock()
		return ErrCreateInFlight
	}
	c.creating = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.creating = false
		c.mu.Unlock()
	}()

	contact, ok := c.directory.Find(nt.ContactID)
	if !ok {
		return ErrContactNotFound
	}
	switch {
	case nt.SubjectID != "":
		if _, ok := contact.FindSubject(nt.SubjectID); !ok {
			return core.NewValidationError(ErrUnknownSubject,
				core.FieldError{Field: "subject_id", Error: ErrUnknownSubject.Error()})
		}
	case len(contact.Subjects) == 1:
		nt.SubjectID = contact.Subjects[0].ID
	case len(contact.Subjects) > 1:
		return core.NewValidationError(ErrSubjectRequired,
			core.FieldError{Field: "subject_id", Error: ErrSubjectRequired.Error()})
	}

	th, err := c.tr.CreateThread(ctx, nt)
	if err != nil {
		return errors.Wrap(err, "creating thread")
	}

	c.registry.Insert(th)
	if err := c.registry.Refresh(ctx); err != nil {
		c.log.Warn("refreshing threads after create", err)
	}
	return c.SelectThread(ctx, th.ID)
}

// LoadOlderMessages prepends the next older page to the selected thread's
// timeline. Only valid while a thread is selected and its cursor is set; one
// page at a time.
func (c *Controller) LoadOlderMessages(ctx context.Context) error {
	c.mu.Lock()
	if c.selectedID == "" {
		c.mu.Unlock()
		return ErrNoThreadSelected
	}
	if !c.tl.hasOlder() {
		c.mu.Unlock()
		return ErrNoOlderMessages
	}
	if c.loadingOlder {
		c.mu.Unlock()
		return nil
	}
	id := c.selectedID
	cursor := c.tl.cursor
	seq := c.loadSeq
	c.loadingOlder = true
	c.mu.Unlock()

	page, err := c.tr.ListMessages(ctx, id, PageOptions{Cursor: cursor, Limit: c.pageSize})

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selectedID == id {
		c.loadingOlder = false
	}
	if seq != c.loadSeq || c.selectedID != id {
		return nil // the window was reloaded or the selection changed meanwhile
	}
	if err != nil {
		return errors.Wrap(err, "loading older messages")
	}
	c.tl.prependOlder(page)
	return nil
}

// StartPolling launches the periodic refresh loop. Calling it while a loop is
// already running is a no-op; timers never stack.
func (c *Controller) StartPolling() {
	c.pollMu.Lock()
	defer c.pollMu.Unlock()
	if c.pollStop != nil {
		return
	}
	stop := make(chan struct{})
	c.pollStop = stop
	go c.pollLoop(stop)
}

// StopPolling stops the loop. Polling must not outlive its viewer; callers
// pair every StartPolling with a StopPolling on teardown.
func (c *Controller) StopPolling() {
	c.pollMu.Lock()
	defer c.pollMu.Unlock()
	if c.pollStop == nil {
		return
	}
	close(c.pollStop)
	c.pollStop = nil
}

func (c *Controller) pollLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.pollOnce(context.Background())
		}
	}
}

// pollOnce refreshes the thread snapshot and re-loads the selected thread's
// newest window, subject to the same staleness rule as a user-triggered load.
// Failures are logged and the previous state stays on screen.
func (c *Controller) pollOnce(ctx context.Context) {
	if err := c.registry.Refresh(ctx); err != nil {
		c.log.Warn("polling thread refresh", err)
	} else {
		c.applyRegistrySnapshot(ctx)
	}

	c.mu.Lock()
	id := c.selectedID
	c.mu.Unlock()
	if id == "" {
		return
	}
	if err := c.loadFirstPage(ctx, id, false); err != nil {
		c.log.Warn("polling message refresh", err)
	}
}

// Snapshot returns a copy of the externally observable state.
func (c *Controller) Snapshot() Snapshot {
	snap := Snapshot{
		Contacts:        c.directory.Contacts(),
		LoadingContacts: c.directory.Loading(),
		Threads:         c.registry.Threads(),
		LoadingThreads:  c.registry.Loading(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	snap.Draft = c.draft
	snap.Sending = c.sending
	snap.Creating = c.creating
	snap.LoadingMessages = c.loadingMsgs
	snap.LoadingOlder = c.loadingOlder
	if c.selectedID != "" {
		if th, ok := c.registry.Get(c.selectedID); ok {
			snap.SelectedThread = &th
		}
		snap.Messages = append([]Message(nil), c.tl.messages...)
		snap.HasOlderMessages = c.tl.hasOlder()
	}
	return snap
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}
