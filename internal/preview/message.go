package preview

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Message types exchanged with a rendering surface.
const (
	// surface -> session
	MsgSize         = "size"
	MsgNext         = "next"
	MsgPrevious     = "previous"
	MsgExport       = "export"
	MsgReopenAsText = "reopen-as-text"

	// session -> surface
	MsgLoading        = "loading"
	MsgLoadingSuccess = "loading-success"
	MsgSetActive      = "setActive"
)

// Message is one protocol message. Value is a string for surface messages,
// an empty object for loading notifications and a bool for setActive.
type Message struct {
	Type  string      `json:"type"`
	Value interface{} `json:"value"`
}

// SizeMessage reports the natural dimensions of the displayed image.
func SizeMessage(width, height int) Message {
	return Message{Type: MsgSize, Value: fmt.Sprintf("%dx%d", width, height)}
}

// CommandMessage builds a value-less surface message.
func CommandMessage(typ string) Message {
	return Message{Type: typ, Value: ""}
}

// ParseMessage decodes a JSON protocol message.
func ParseMessage(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("invalid surface message: %w", err)
	}
	if msg.Type == "" {
		return Message{}, fmt.Errorf("invalid surface message: missing type")
	}
	return msg, nil
}

// ParseDimensions splits a "<width>x<height>" value.
func ParseDimensions(value string) (width, height int, err error) {
	w, h, found := strings.Cut(value, "x")
	if !found {
		return 0, 0, fmt.Errorf("invalid dimensions %q", value)
	}
	if width, err = strconv.Atoi(w); err != nil {
		return 0, 0, fmt.Errorf("invalid width in %q: %w", value, err)
	}
	if height, err = strconv.Atoi(h); err != nil {
		return 0, 0, fmt.Errorf("invalid height in %q: %w", value, err)
	}
	return width, height, nil
}

func (m Message) stringValue() string {
	if s, ok := m.Value.(string); ok {
		return s
	}
	return ""
}
