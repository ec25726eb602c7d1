package messages

import (
	"datpeek/internal/preview"
	"datpeek/internal/tui/common"
)

type ErrorMsg struct {
	Err error
}

// OpenMsg asks the model to open a container in a new tab.
type OpenMsg struct {
	Path string
}

// FrameMsg carries a rendered frame of the preview in tab TabID.
type FrameMsg struct {
	TabID int
	Frame common.FrameInfo
}

// PostMsg carries a protocol message a session posted to its tab.
type PostMsg struct {
	TabID   int
	Message preview.Message
}

// TextMsg carries the raw bytes of a container to show as text.
type TextMsg struct {
	TabID int
	Path  string
	Data  []byte
	Err   error
}

// CloseMsg tells the model a session closed its own tab.
type CloseMsg struct {
	TabID int
}

// PromptMsg asks the user for an export location. The answer goes to Reply.
type PromptMsg struct {
	Title       string
	DefaultPath string
	Reply       chan<- PromptReply
}

// PromptReply answers a PromptMsg. OK is false when the user cancelled.
type PromptReply struct {
	Path string
	OK   bool
}

// StatusMsg signals that the status slots changed.
type StatusMsg struct{}
