package messaging

// timeline is one thread's cursor-paginated message history, ordered oldest
// to newest. Pages arrive pre-ordered from the transport; the timeline only
// controls insertion position and never re-sorts. It is owned by the
// Controller, which serializes all access.
type timeline struct {
	threadID string
	messages []Message
	cursor   string
	loaded   bool
}

func newTimeline(threadID string) *timeline {
	return &timeline{threadID: threadID}
}

// replaceInitial swaps in the newest-available window. Messages appended
// optimistically after a send are kept at the tail until the server page
// catches up with them, deduplicated by id.
func (tl *timeline) replaceInitial(page MessagePage) {
	seen := make(map[string]struct{}, len(page.Messages))
	for _, m := range page.Messages {
		seen[m.ID] = struct{}{}
	}

	var tail []Message
	if tl.loaded && len(tl.messages) > 0 {
		var horizon *Message
		if n := len(page.Messages); n > 0 {
			horizon = &page.Messages[n-1]
		}
		for _, m := range tl.messages {
			if _, ok := seen[m.ID]; ok {
				continue
			}
			if horizon == nil || !m.CreatedAt.Before(horizon.CreatedAt) {
				tail = append(tail, m)
			}
		}
	}

	tl.messages = append(append([]Message(nil), page.Messages...), tail...)
	tl.cursor = page.NextCursor
	tl.loaded = true
}

// prependOlder splices an older page onto the front. An empty page means the
// history is exhausted and clears the cursor for good.
func (tl *timeline) prependOlder(page MessagePage) {
	if len(page.Messages) == 0 {
		tl.cursor = ""
		return
	}

	existing := make(map[string]struct{}, len(tl.messages))
	for _, m := range tl.messages {
		existing[m.ID] = struct{}{}
	}
	merged := make([]Message, 0, len(page.Messages)+len(tl.messages))
	for _, m := range page.Messages {
		if _, ok := existing[m.ID]; ok {
			continue
		}
		merged = append(merged, m)
	}
	tl.messages = append(merged, tl.messages...)
	tl.cursor = page.NextCursor
}

// append inserts a just-sent message at the tail, skipping ids already
// present (a polling reload may have beaten the send response home).
func (tl *timeline) append(m Message) {
	for i := len(tl.messages) - 1; i >= 0; i-- {
		if tl.messages[i].ID == m.ID {
			return
		}
	}
	tl.messages = append(tl.messages, m)
}

// hasOlder reports whether a "load older" request is currently possible: the
// first page must have arrived and left a cursor behind.
func (tl *timeline) hasOlder() bool {
	return tl.loaded && tl.cursor != ""
}
