package session

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSession_UniqueIDs(t *testing.T) {
	s := NewStore(2)

	a := s.CreateSession()
	b := s.CreateSession()

	assert.True(t, strings.HasPrefix(a, "session_"))
	assert.NotEqual(t, a, b)
}

func TestHistoryText_Rendering(t *testing.T) {
	s := NewStore(2)
	id := s.CreateSession()

	s.RecordExchange(id, "What is MCP?", "A protocol for model context.")
	s.RecordExchange(id, "Who maintains it?", "Anthropic and the community.")

	text, ok := s.HistoryText(id)
	require.True(t, ok)
	assert.Equal(t,
		"User: What is MCP?\n"+
			"Assistant: A protocol for model context.\n"+
			"User: Who maintains it?\n"+
			"Assistant: Anthropic and the community.",
		text)
}

func TestHistoryText_EmptyOrUnknownSession(t *testing.T) {
	s := NewStore(2)
	id := s.CreateSession()

	_, ok := s.HistoryText(id)
	assert.False(t, ok, "fresh session has no history")

	_, ok = s.HistoryText("session_missing")
	assert.False(t, ok)
}

func TestRecordExchange_EvictsOldest(t *testing.T) {
	s := NewStore(2)
	id := s.CreateSession()

	s.RecordExchange(id, "first", "a1")
	s.RecordExchange(id, "second", "a2")
	s.RecordExchange(id, "third", "a3")

	text, ok := s.HistoryText(id)
	require.True(t, ok)
	assert.NotContains(t, text, "first")
	assert.Contains(t, text, "User: second")
	assert.Contains(t, text, "User: third")
}

func TestRecordExchange_CreatesSessionImplicitly(t *testing.T) {
	s := NewStore(2)

	s.RecordExchange("session_external", "hello", "hi")

	text, ok := s.HistoryText("session_external")
	require.True(t, ok)
	assert.Equal(t, "User: hello\nAssistant: hi", text)
}

func TestClearSession(t *testing.T) {
	s := NewStore(2)
	id := s.CreateSession()
	s.RecordExchange(id, "q", "a")

	s.ClearSession(id)

	_, ok := s.HistoryText(id)
	assert.False(t, ok)

	s.ClearSession("session_missing") // no-op
}
