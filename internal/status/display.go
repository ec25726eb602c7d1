package status

import "fmt"

const (
	kb = 1024
	mb = kb * kb
	gb = mb * kb
)

// Metrics is what a preview reports through the display.
type Metrics struct {
	ByteSize   int64
	Dimensions string
	CreatedAt  string
	FileName   string
}

// Display groups the four slots. Previews always update all of them together.
type Display struct {
	Size       *Slot
	Dimensions *Slot
	CreatedAt  *Slot
	FileName   *Slot
}

// NewDisplay builds a display over the host items.
func NewDisplay(size, dimensions, createdAt, fileName Item) *Display {
	return &Display{
		Size:       NewSlot(size),
		Dimensions: NewSlot(dimensions),
		CreatedAt:  NewSlot(createdAt),
		FileName:   NewSlot(fileName),
	}
}

// Show displays m in every slot on behalf of owner. An unknown (zero) size
// hides the size slot instead.
func (d *Display) Show(owner string, m Metrics) {
	if m.ByteSize <= 0 {
		// take the slot over first so another owner's size does not linger
		d.Size.Show(owner, "")
		d.Size.Hide(owner)
	} else {
		d.Size.Show(owner, FormatSize(m.ByteSize))
	}
	d.Dimensions.Show(owner, m.Dimensions)
	d.CreatedAt.Show(owner, m.CreatedAt)
	d.FileName.Show(owner, m.FileName)
}

// Hide hides every slot owner still holds.
func (d *Display) Hide(owner string) {
	d.Size.Hide(owner)
	d.Dimensions.Hide(owner)
	d.CreatedAt.Hide(owner)
	d.FileName.Hide(owner)
}

// FormatSize renders a byte count the way the size slot shows it.
func FormatSize(size int64) string {
	switch {
	case size < kb:
		return fmt.Sprintf("%dByte", size)
	case size < mb:
		return fmt.Sprintf("%.2fKB", float64(size)/kb)
	case size < gb:
		return fmt.Sprintf("%.2fMB", float64(size)/mb)
	default:
		return "image too large"
	}
}
