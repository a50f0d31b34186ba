package llm

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSSEReader_DataOnlyEvents(t *testing.T) {
	input := "data: first\n\ndata: second\n\n"
	reader := newSSEReader(strings.NewReader(input))

	ev, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, "first", ev.Data)
	assert.Empty(t, ev.Event)

	ev, err = reader.Next()
	require.NoError(t, err)
	assert.Equal(t, "second", ev.Data)

	_, err = reader.Next()
	assert.Equal(t, io.EOF, err)
}

func TestSSEReader_NamedEvents(t *testing.T) {
	input := "event: message_start\ndata: {\"type\":\"message_start\"}\n\n"
	reader := newSSEReader(strings.NewReader(input))

	ev, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, "message_start", ev.Event)
	assert.Equal(t, `{"type":"message_start"}`, ev.Data)
}

func TestSSEReader_SkipsEmptyEvents(t *testing.T) {
	input := "\n\n\n\ndata: payload\n\n"
	reader := newSSEReader(strings.NewReader(input))

	ev, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, "payload", ev.Data)
}

func TestSSEReader_TrailingEventWithoutDelimiter(t *testing.T) {
	// 断流时最后一个事件可能没有结尾双换行
	input := "data: tail"
	reader := newSSEReader(strings.NewReader(input))

	ev, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, "tail", ev.Data)

	_, err = reader.Next()
	assert.Equal(t, io.EOF, err)
}

func TestSSEReader_IgnoresCommentAndIDLines(t *testing.T) {
	input := ": keep-alive\nid: 42\nretry: 1000\ndata: real\n\n"
	reader := newSSEReader(strings.NewReader(input))

	ev, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, "real", ev.Data)
}
