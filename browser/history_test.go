package browser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHistoryBackDisabledWhenShallow(t *testing.T) {
	var h History
	require.False(t, h.BackEnabled())

	h.Push("gemini://a/")
	require.False(t, h.BackEnabled())

	h.Push("gemini://b/")
	require.True(t, h.BackEnabled())
}

func TestHistoryPopForBack(t *testing.T) {
	var h History
	h.Push("gemini://a/")
	h.Push("gemini://b/")

	url, err := h.PopForBack()
	require.NoError(t, err)
	require.Equal(t, "gemini://a/", url)
	require.Equal(t, 1, h.Depth())
	require.Equal(t, "gemini://a/", h.Current())
}

func TestHistoryPopForBackNeedsTwoEntries(t *testing.T) {
	var h History
	_, err := h.PopForBack()
	require.ErrorIs(t, err, ErrNoHistory)

	h.Push("gemini://a/")
	_, err = h.PopForBack()
	require.ErrorIs(t, err, ErrNoHistory)
	require.Equal(t, 1, h.Depth())
}

func TestHistoryDrop(t *testing.T) {
	var h History
	h.Drop() // empty stack is fine
	h.Push("gemini://a/")
	h.Push("gemini://b/")
	h.Drop()
	require.Equal(t, "gemini://a/", h.Current())
}
