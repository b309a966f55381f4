package messaging

import "time"

type (
	// Subject is an optional linked entity (e.g. a student) that scopes a
	// conversation's subject matter.
	Subject struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	// Contact is a person the current user may message.
	Contact struct {
		UserID   string    `json:"user_id"`
		FullName string    `json:"full_name"`
		Role     string    `json:"role"`
		Subjects []Subject `json:"subjects,omitempty"`
	}

	Participant struct {
		UserID   string `json:"user_id"`
		FullName string `json:"full_name"`
		IsSelf   bool   `json:"is_self"`
	}

	// Thread is a conversation between the current user and one or more other
	// participants. Only a registry refresh overwrites its fields; message
	// operations never patch it.
	Thread struct {
		ID                 string        `json:"id"`
		Participants       []Participant `json:"participants"`
		Subject            *Subject      `json:"subject,omitempty"`
		LastMessageAt      *time.Time    `json:"last_message_at,omitempty"` // UTC
		LastMessagePreview string        `json:"last_message_preview,omitempty"`
	}

	Message struct {
		ID        string    `json:"id"`
		ThreadID  string    `json:"thread_id"`
		SenderID  string    `json:"sender_id"`
		Body      string    `json:"body"`
		CreatedAt time.Time `json:"created_at"` // UTC
	}

	// Draft is the in-progress, unsent composer text for the selected thread.
	Draft struct {
		ThreadID string `json:"thread_id"`
		Body     string `json:"body"`
	}

	// MessagePage is one page of a thread's history, ordered oldest to newest.
	// An empty NextCursor means no older messages remain.
	MessagePage struct {
		Messages   []Message `json:"messages"`
		NextCursor string    `json:"next_cursor,omitempty"`
	}

	// PageOptions selects a message window. Cursor is an opaque token issued
	// by the server; it is never fabricated client-side.
	PageOptions struct {
		Cursor string
		Limit  int
	}
)

// FindSubject looks up one of the contact's linked subjects by id.
func (c Contact) FindSubject(id string) (Subject, bool) {
	for _, s := range c.Subjects {
		if s.ID == id {
			return s, true
		}
	}
	return Subject{}, false
}

// Other returns the first participant that is not the current user.
func (t Thread) Other() (Participant, bool) {
	for _, p := range t.Participants {
		if !p.IsSelf {
			return p, true
		}
	}
	return Participant{}, false
}
