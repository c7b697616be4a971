package gemini_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/knowfox/comet/gemini"
)

func TestParseHeader(t *testing.T) {
	status, meta, err := gemini.ParseHeader("20 text/gemini")
	require.NoError(t, err)
	require.Equal(t, gemini.StatusSuccess, status)
	require.Equal(t, "text/gemini", meta)
}

func TestParseHeaderKeepsMetaVerbatim(t *testing.T) {
	status, meta, err := gemini.ParseHeader("51 nothing here,  move along")
	require.NoError(t, err)
	require.Equal(t, gemini.StatusNotFound, status)
	require.Equal(t, "nothing here,  move along", meta)
}

func TestParseHeaderSingleToken(t *testing.T) {
	_, _, err := gemini.ParseHeader("20")
	require.ErrorIs(t, err, gemini.ErrMalformedHeader)
}

func TestParseHeaderEmptyMeta(t *testing.T) {
	_, _, err := gemini.ParseHeader("20 ")
	require.ErrorIs(t, err, gemini.ErrMalformedHeader)
}

func TestParseHeaderNonNumericStatus(t *testing.T) {
	_, _, err := gemini.ParseHeader("twenty text/gemini")
	require.ErrorIs(t, err, gemini.ErrMalformedHeader)
}

func TestStatusGroup(t *testing.T) {
	cases := []struct {
		code  gemini.StatusCode
		group gemini.StatusGroup
	}{
		{10, gemini.GroupInput},
		{11, gemini.GroupInput},
		{20, gemini.GroupSuccess},
		{21, gemini.GroupSuccess},
		{30, gemini.GroupRedirect},
		{39, gemini.GroupRedirect},
		{44, gemini.GroupTempFail},
		{54, gemini.GroupPermFail},
		{60, gemini.GroupClientCert},
		{69, gemini.GroupClientCert},
		{5, gemini.GroupUnknown},
		{9, gemini.GroupUnknown},
		{70, gemini.GroupUnknown},
		{99, gemini.GroupUnknown},
		{-1, gemini.GroupUnknown},
	}
	for _, c := range cases {
		require.Equal(t, c.group, c.code.Group(), "code %d", c.code)
	}
}
