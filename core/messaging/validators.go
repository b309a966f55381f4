package messaging

import "github.com/trezcool/ujumbe/core"

// NewThread contains information needed to start a conversation with a
// contact. SubjectID may be left empty when the contact has at most one
// linked subject; the controller resolves it.
type NewThread struct {
	ContactID string `json:"contact_id" validate:"required"`
	SubjectID string `json:"subject_id"`
}

func (nt *NewThread) Validate() error {
	nt.ContactID = core.CleanString(nt.ContactID)
	nt.SubjectID = core.CleanString(nt.SubjectID)
	return core.Validate.Struct(nt)
}

// NewMessage is the composer payload as handed to SendMessage.
type NewMessage struct {
	Body string `json:"body" validate:"notblank"`
}

func (nm *NewMessage) Validate() error {
	return core.Validate.Struct(nm)
}
