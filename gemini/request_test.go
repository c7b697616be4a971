package gemini_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/knowfox/comet/gemini"
)

func TestNewRequestFillsDefaults(t *testing.T) {
	r, err := gemini.NewRequest("example.org", "")
	require.NoError(t, err)
	require.Equal(t, "gemini", r.URL.Scheme)
	require.Equal(t, "example.org:1965", r.URL.Host)
	require.Equal(t, "/", r.URL.Path)
	require.Equal(t, "gemini://example.org:1965/\r\n", r.Line())
}

func TestNewRequestKeepsExplicitPort(t *testing.T) {
	r, err := gemini.NewRequest("gemini://example.org:1966/foo", "")
	require.NoError(t, err)
	require.Equal(t, "example.org:1966", r.URL.Host)
	require.Equal(t, "/foo", r.URL.Path)
}

func TestRequestLineCarriesEscapedQuery(t *testing.T) {
	r, err := gemini.NewRequest("gemini://example.org/search", "two words")
	require.NoError(t, err)
	require.Equal(t, "gemini://example.org:1965/search?two%20words\r\n", r.Line())
}

func TestNewRequestRejectsMissingHost(t *testing.T) {
	_, err := gemini.NewRequest("gemini:///no-host", "")
	require.Error(t, err)
}
