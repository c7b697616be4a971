// Package ui is the terminal presentation layer: a bubbletea model
// showing one page at a time, with an address field, a status bar and
// modal prompts for server input requests and file saves. The
// protocol side never touches the terminal; it talks to a ProgramSink
// and the model maps key presses back to element payloads.
package ui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/knowfox/comet/gemtext"
)

// Navigator is the slice of the browser session the model drives.
type Navigator interface {
	Visit(rawurl string)
	Back() error
	BackEnabled() bool
}

type mode int

const (
	modeBrowse mode = iota
	modeAddress
	modePrompt
)

// KeyMap is the browse-mode key bindings.
type KeyMap struct {
	Quit     key.Binding
	Back     key.Binding
	Address  key.Binding
	NextLink key.Binding
	PrevLink key.Binding
	Follow   key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Back:     key.NewBinding(key.WithKeys("b", "backspace"), key.WithHelp("b", "back")),
		Address:  key.NewBinding(key.WithKeys("g", "ctrl+l"), key.WithHelp("g", "go to url")),
		NextLink: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next link")),
		PrevLink: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev link")),
		Follow:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "follow link")),
	}
}

// pageLine is one displayed line plus, for links, the index into the
// link table so a key press can be mapped back to its target URL.
type pageLine struct {
	line      gemtext.Line
	linkIndex int // -1 for non-link lines
}

// Model is the top-level bubbletea model.
type Model struct {
	nav   Navigator
	keys  KeyMap
	theme Theme

	viewport viewport.Model
	address  textinput.Model
	prompt   textinput.Model

	mode        mode
	lines       []pageLine
	linkTargets []string
	focusedLink int

	currentURL  string
	status      string
	statusIsErr bool

	promptTitle   string
	promptMessage string
	promptReply   chan promptReply

	width  int
	height int
	ready  bool

	home string
}

// New builds the model. home is visited on startup when non-empty.
func New(nav Navigator, home string) Model {
	address := textinput.New()
	address.Prompt = "gemini> "
	address.CharLimit = 1024

	prompt := textinput.New()
	prompt.Prompt = "> "
	prompt.CharLimit = 1024

	return Model{
		nav:         nav,
		keys:        DefaultKeyMap(),
		theme:       DefaultTheme(),
		address:     address,
		prompt:      prompt,
		focusedLink: -1,
		status:      "Ready",
		home:        home,
	}
}

func (m Model) Init() tea.Cmd {
	if m.home == "" {
		return textinput.Blink
	}
	return tea.Batch(textinput.Blink, m.visitCmd(m.home))
}

// visitCmd runs the navigation on a command goroutine. Session
// teardown of the superseded request waits for that request's
// goroutine, so it must never run inside Update where it would stall
// the event loop the old goroutine is sending to.
func (m Model) visitCmd(url string) tea.Cmd {
	nav := m.nav
	return func() tea.Msg {
		nav.Visit(url)
		return nil
	}
}

func (m Model) backCmd() tea.Cmd {
	nav := m.nav
	return func() tea.Msg {
		if err := nav.Back(); err != nil {
			return statusMsg{text: "Nothing to go back to"}
		}
		return nil
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		chromeHeight := 2 // address bar + status line
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-chromeHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - chromeHeight
		}
		m.address.Width = msg.Width - len(m.address.Prompt) - 1
		m.prompt.Width = msg.Width - len(m.prompt.Prompt) - 1
		m.refreshContent()
		return m, nil

	case clearMsg:
		m.lines = nil
		m.linkTargets = nil
		m.focusedLink = -1
		m.refreshContent()
		m.viewport.GotoTop()
		return m, nil

	case lineMsg:
		entry := pageLine{line: msg.line, linkIndex: -1}
		if link, ok := msg.line.(gemtext.Link); ok {
			entry.linkIndex = len(m.linkTargets)
			m.linkTargets = append(m.linkTargets, link.URL)
		}
		m.lines = append(m.lines, entry)
		m.refreshContent()
		return m, nil

	case rawTextMsg:
		m.lines = append(m.lines, pageLine{line: gemtext.Text{Raw: msg.text}, linkIndex: -1})
		m.refreshContent()
		return m, nil

	case addressMsg:
		m.currentURL = msg.url
		return m, nil

	case statusMsg:
		m.status = msg.text
		m.statusIsErr = false
		return m, nil

	case errorMsg:
		m.status = msg.text
		m.statusIsErr = true
		return m, nil

	case promptMsg:
		m.mode = modePrompt
		m.promptTitle = msg.title
		m.promptMessage = msg.message
		m.promptReply = msg.reply
		m.prompt.SetValue("")
		if msg.save {
			m.prompt.Placeholder = "path/to/save"
		} else {
			m.prompt.Placeholder = ""
		}
		m.prompt.Focus()
		return m, nil

	case promptDismissMsg:
		if m.mode == modePrompt {
			m.closePrompt()
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeAddress:
			return m.updateAddress(msg)
		case modePrompt:
			return m.updatePrompt(msg)
		default:
			return m.updateBrowse(msg)
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		return m, m.backCmd()

	case key.Matches(msg, m.keys.Address):
		m.mode = modeAddress
		m.address.SetValue(m.currentURL)
		m.address.CursorEnd()
		m.address.Focus()
		return m, nil

	case key.Matches(msg, m.keys.NextLink):
		m.cycleLink(1)
		return m, nil

	case key.Matches(msg, m.keys.PrevLink):
		m.cycleLink(-1)
		return m, nil

	case key.Matches(msg, m.keys.Follow):
		if m.focusedLink >= 0 && m.focusedLink < len(m.linkTargets) {
			return m, m.visitCmd(m.linkTargets[m.focusedLink])
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) updateAddress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		url := m.address.Value()
		m.mode = modeBrowse
		m.address.Blur()
		if url == "" {
			return m, nil
		}
		return m, m.visitCmd(url)
	case "esc":
		m.mode = modeBrowse
		m.address.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.address, cmd = m.address.Update(msg)
	return m, cmd
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.reply(promptReply{answer: m.prompt.Value(), ok: true})
		m.closePrompt()
		return m, nil
	case "esc":
		m.reply(promptReply{ok: false})
		m.closePrompt()
		return m, nil
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m *Model) reply(r promptReply) {
	if m.promptReply != nil {
		// Buffered channel: never blocks the event loop.
		m.promptReply <- r
	}
}

func (m *Model) closePrompt() {
	m.mode = modeBrowse
	m.promptReply = nil
	m.prompt.Blur()
}

func (m *Model) cycleLink(delta int) {
	if len(m.linkTargets) == 0 {
		return
	}
	m.focusedLink += delta
	switch {
	case m.focusedLink < 0:
		m.focusedLink = len(m.linkTargets) - 1
	case m.focusedLink >= len(m.linkTargets):
		m.focusedLink = 0
	}
	m.refreshContent()
}

// refreshContent rebuilds the viewport from the element list. Pages
// are small enough that a full rebuild per change is fine.
func (m *Model) refreshContent() {
	if !m.ready {
		return
	}
	rendered := make([]string, 0, len(m.lines))
	for _, entry := range m.lines {
		rendered = append(rendered, m.renderLine(entry))
	}
	m.viewport.SetContent(joinLines(rendered))
}

func (m *Model) renderLine(entry pageLine) string {
	switch line := entry.line.(type) {
	case gemtext.Heading:
		return m.theme.headingStyle(line.Level).Render(line.Text)
	case gemtext.Link:
		style := m.theme.Link
		if entry.linkIndex == m.focusedLink {
			style = m.theme.LinkFocused
		}
		text := "→ " + line.Label
		if entry.linkIndex == m.focusedLink && line.Label != line.URL {
			text += "  (" + line.URL + ")"
		}
		return style.Render(text)
	case gemtext.Text:
		return m.theme.Text.Render(line.Raw)
	default:
		return ""
	}
}

func joinLines(lines []string) string {
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	return out
}

func (m Model) View() string {
	if !m.ready {
		return "Starting up..."
	}

	var addressBar string
	if m.mode == modeAddress {
		addressBar = m.theme.AddressEdit.Width(m.width).Render(m.address.View())
	} else {
		shown := m.currentURL
		if shown == "" {
			shown = "(no page)"
		}
		addressBar = m.theme.AddressBar.Width(m.width).Render(ansi.Truncate(shown, m.width-2, "…"))
	}

	var bottom string
	if m.mode == modePrompt {
		bottom = m.theme.PromptTitle.Render(m.promptTitle) + " " +
			m.theme.PromptLabel.Render(m.promptMessage) + " " + m.prompt.View()
	} else {
		style := m.theme.StatusBar
		if m.statusIsErr {
			style = m.theme.StatusError
		}
		bottom = style.Render(ansi.Truncate(m.status, m.width, "…"))
	}

	return addressBar + "\n" + m.viewport.View() + "\n" + bottom
}
