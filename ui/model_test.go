package ui

import (
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/knowfox/comet/gemtext"
)

type fakeNav struct {
	mu      sync.Mutex
	visited []string
	backs   int
	backErr error
}

func (n *fakeNav) Visit(rawurl string) {
	n.mu.Lock()
	n.visited = append(n.visited, rawurl)
	n.mu.Unlock()
}

func (n *fakeNav) Back() error {
	n.mu.Lock()
	n.backs++
	n.mu.Unlock()
	return n.backErr
}

func (n *fakeNav) BackEnabled() bool { return true }

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func newReadyModel(t *testing.T, nav Navigator) Model {
	t.Helper()
	m := New(nav, "")
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	return m
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestPageLinesRender(t *testing.T) {
	m := newReadyModel(t, &fakeNav{})
	m, _ = update(t, m, clearMsg{})
	m, _ = update(t, m, lineMsg{line: gemtext.Heading{Level: 1, Text: "# Welcome"}})
	m, _ = update(t, m, lineMsg{line: gemtext.Link{URL: "gemini://h/x", Label: "a link"}})
	m, _ = update(t, m, rawTextMsg{text: "plain tail"})

	view := m.View()
	require.Contains(t, view, "# Welcome")
	require.Contains(t, view, "a link")
	require.Contains(t, view, "plain tail")
}

func TestLinkCycleAndFollow(t *testing.T) {
	nav := &fakeNav{}
	m := newReadyModel(t, nav)
	m, _ = update(t, m, lineMsg{line: gemtext.Link{URL: "gemini://h/one", Label: "one"}})
	m, _ = update(t, m, lineMsg{line: gemtext.Link{URL: "gemini://h/two", Label: "two"}})

	m, _ = update(t, m, keyMsg("tab"))
	require.Equal(t, 0, m.focusedLink)
	m, _ = update(t, m, keyMsg("tab"))
	require.Equal(t, 1, m.focusedLink)
	m, _ = update(t, m, keyMsg("tab"))
	require.Equal(t, 0, m.focusedLink, "focus wraps around")

	_, cmd := update(t, m, keyMsg("enter"))
	require.NotNil(t, cmd)
	cmd()
	require.Equal(t, []string{"gemini://h/one"}, nav.visited)
}

func TestClearResetsLinks(t *testing.T) {
	m := newReadyModel(t, &fakeNav{})
	m, _ = update(t, m, lineMsg{line: gemtext.Link{URL: "gemini://h/one", Label: "one"}})
	m, _ = update(t, m, keyMsg("tab"))
	require.Equal(t, 0, m.focusedLink)

	m, _ = update(t, m, clearMsg{})
	require.Equal(t, -1, m.focusedLink)
	require.Empty(t, m.linkTargets)
}

func TestAddressEntryVisits(t *testing.T) {
	nav := &fakeNav{}
	m := newReadyModel(t, nav)

	m, _ = update(t, m, keyMsg("g"))
	require.Equal(t, modeAddress, m.mode)

	m, _ = update(t, m, keyMsg("gemini://example.org/"))
	m, cmd := update(t, m, keyMsg("enter"))
	require.Equal(t, modeBrowse, m.mode)
	require.NotNil(t, cmd)
	cmd()
	require.Equal(t, []string{"gemini://example.org/"}, nav.visited)
}

func TestPromptAnswerReachesReplyChannel(t *testing.T) {
	m := newReadyModel(t, &fakeNav{})
	reply := make(chan promptReply, 1)
	m, _ = update(t, m, promptMsg{title: "Input required", message: "Search", reply: reply})
	require.Equal(t, modePrompt, m.mode)

	m, _ = update(t, m, keyMsg("abc"))
	m, _ = update(t, m, keyMsg("enter"))
	require.Equal(t, modeBrowse, m.mode)
	require.Equal(t, promptReply{answer: "abc", ok: true}, <-reply)
}

func TestPromptEscapeCancels(t *testing.T) {
	m := newReadyModel(t, &fakeNav{})
	reply := make(chan promptReply, 1)
	m, _ = update(t, m, promptMsg{title: "Input required", message: "Search", reply: reply})

	m, _ = update(t, m, keyMsg("esc"))
	require.Equal(t, modeBrowse, m.mode)
	require.Equal(t, promptReply{ok: false}, <-reply)
}

func TestSavePromptShowsPathPlaceholder(t *testing.T) {
	m := newReadyModel(t, &fakeNav{})

	m, _ = update(t, m, promptMsg{title: "Save file", message: "Destination path", save: true, reply: make(chan promptReply, 1)})
	require.Equal(t, "path/to/save", m.prompt.Placeholder)
	m, _ = update(t, m, keyMsg("esc"))

	m, _ = update(t, m, promptMsg{title: "Input required", message: "Search", reply: make(chan promptReply, 1)})
	require.Empty(t, m.prompt.Placeholder)
}

func TestPromptDismissOnCancelledRequest(t *testing.T) {
	m := newReadyModel(t, &fakeNav{})
	reply := make(chan promptReply, 1)
	m, _ = update(t, m, promptMsg{title: "Input required", message: "Search", reply: reply})

	m, _ = update(t, m, promptDismissMsg{})
	require.Equal(t, modeBrowse, m.mode)
	require.Empty(t, reply)
}

func TestStatusAndErrorMessages(t *testing.T) {
	m := newReadyModel(t, &fakeNav{})
	m, _ = update(t, m, statusMsg{text: "Loading gemini://h/"})
	require.Equal(t, "Loading gemini://h/", m.status)
	require.False(t, m.statusIsErr)

	m, _ = update(t, m, errorMsg{text: "Not found: nope"})
	require.Equal(t, "Not found: nope", m.status)
	require.True(t, m.statusIsErr)
	require.Contains(t, m.View(), "Not found: nope")
}

func TestBackKeyInvokesNavigator(t *testing.T) {
	nav := &fakeNav{}
	m := newReadyModel(t, nav)
	_, cmd := update(t, m, keyMsg("b"))
	require.NotNil(t, cmd)
	cmd()
	require.Equal(t, 1, nav.backs)
}
