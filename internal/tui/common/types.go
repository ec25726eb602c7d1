package common

type Mode int

const (
	Normal Mode = iota
	// Prompt edits an export location
	Prompt
	// Text shows the raw bytes of a container
	Text
)

// ModelReader defines the interface that views use to read model state
type ModelReader interface {
	Tabs() []TabInfo
	Current() int
	Mode() Mode
	ShowHelp() bool
	PromptView() string
	TextView() string
	StatusView() string
	StatusMsg() string
}

// TabInfo is what a view shows of one preview.
type TabInfo struct {
	Title   string
	Active  bool
	Loading bool
	Frame   FrameInfo
}

// FrameInfo describes the last rendering of a preview. A terminal cannot draw
// the image, so it shows what was decoded instead.
type FrameInfo struct {
	Resource  string
	Codec     string
	MediaType string
	Key       byte
	Bytes     int
	Format    string
	Width     int
	Height    int
	Err       string
}
