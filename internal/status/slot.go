// Package status implements the shared status slots a focused preview uses
// to report its file size, image dimensions, creation time and file name.
//
// Slots are shared by every open preview. A slot remembers which owner last
// showed it and ignores hide requests from anyone else, so a preview closing
// in the background cannot wipe what the focused one displays.
package status

import "sync"

// Item is the host widget behind a slot.
type Item interface {
	SetText(text string)
	Show()
	Hide()
}

// Slot is a single-owner display slot.
type Slot struct {
	mu      sync.Mutex
	item    Item
	owner   string
	text    string
	visible bool
}

// NewSlot wraps item. The slot starts hidden and unowned.
func NewSlot(item Item) *Slot {
	return &Slot{item: item}
}

// Show makes owner the slot owner and displays text.
func (s *Slot) Show(owner, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.owner = owner
	s.text = text
	s.visible = true
	s.item.SetText(text)
	s.item.Show()
}

// Hide clears and hides the slot if owner is its current owner.
func (s *Slot) Hide(owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.owner == "" || s.owner != owner {
		return
	}
	s.owner = ""
	s.text = ""
	s.visible = false
	s.item.SetText("")
	s.item.Hide()
}

// Owner returns the current owner, empty when unowned.
func (s *Slot) Owner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner
}

// Text returns the displayed text.
func (s *Slot) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// Visible reports whether the slot is shown.
func (s *Slot) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

type discard struct{}

func (discard) SetText(string) {}
func (discard) Show()          {}
func (discard) Hide()          {}

// Discard is an Item that displays nothing.
var Discard Item = discard{}
