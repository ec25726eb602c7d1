package preview

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMessage(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Message
		wantErr bool
	}{
		{"size", `{"type":"size","value":"800x600"}`, Message{Type: MsgSize, Value: "800x600"}, false},
		{"command", `{"type":"next"}`, Message{Type: MsgNext}, false},
		{"missing type", `{"value":"x"}`, Message{}, true},
		{"not json", `size=800x600`, Message{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMessage([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMessageEncoding(t *testing.T) {
	data, err := json.Marshal(Message{Type: MsgSetActive, Value: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"setActive","value":true}`, string(data))

	data, err = json.Marshal(Message{Type: MsgLoading, Value: struct{}{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"loading","value":{}}`, string(data))

	assert.Equal(t, Message{Type: MsgSize, Value: "12x34"}, SizeMessage(12, 34))
}

func TestParseDimensions(t *testing.T) {
	w, h, err := ParseDimensions("1920x1080")
	require.NoError(t, err)
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080, h)

	for _, bad := range []string{"", "1920", "x1080", "1920x", "axb"} {
		_, _, err := ParseDimensions(bad)
		assert.Error(t, err, bad)
	}
}
