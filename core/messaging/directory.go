package messaging

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// Directory holds the people the current user may message. It is loaded once
// per session and replaced wholesale on demand; contacts are immutable
// between loads.
type Directory struct {
	tr Transport

	mu       sync.RWMutex
	loading  bool
	loaded   bool
	contacts []Contact
}

func NewDirectory(tr Transport) *Directory {
	return &Directory{tr: tr}
}

// Load fetches the contact list. A load already in progress suppresses this
// one; the latest completed load wins. A failed load surfaces the error and
// leaves the stored snapshot untouched. There is no automatic retry.
func (d *Directory) Load(ctx context.Context) error {
	d.mu.Lock()
	if d.loading {
		d.mu.Unlock()
		return nil
	}
	d.loading = true
	d.mu.Unlock()

	contacts, err := d.tr.ListContacts(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.loading = false
	if err != nil {
		return errors.Wrap(err, "loading contacts")
	}
	d.contacts = contacts
	d.loaded = true
	return nil
}

func (d *Directory) Loading() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loading
}

func (d *Directory) Loaded() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loaded
}

func (d *Directory) Contacts() []Contact {
	d.mu.RLock()
	defer d.mu.RUnlock()
	contacts := make([]Contact, len(d.contacts))
	copy(contacts, d.contacts)
	return contacts
}

func (d *Directory) Find(userID string) (Contact, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, c := range d.contacts {
		if c.UserID == userID {
			return c, true
		}
	}
	return Contact{}, false
}
