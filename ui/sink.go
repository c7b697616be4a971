package ui

import (
	"context"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/knowfox/comet/gemtext"
)

// Messages delivered by the session goroutine into the model.

type clearMsg struct{}

type lineMsg struct {
	line gemtext.Line
}

type rawTextMsg struct {
	text string
}

type addressMsg struct {
	url string
}

type statusMsg struct {
	text string
}

type errorMsg struct {
	text string
}

// promptMsg opens a modal input. The model answers on reply exactly
// once; the channel is buffered so the answer never blocks the event
// loop.
type promptMsg struct {
	title   string
	message string
	save    bool
	reply   chan promptReply
}

type promptReply struct {
	answer string
	ok     bool
}

// promptDismissMsg closes the modal when the request that opened it
// was cancelled underneath it.
type promptDismissMsg struct{}

// ProgramSink adapts the browser.Sink contract onto a running
// bubbletea program. Calls arrive from the session's background
// goroutine and are forwarded as messages via program.Send, so the
// model mutates only inside its own Update. The two blocking calls
// carry a reply channel and honor the request context.
//
// The sink must exist before the program does; call SetProgram once
// the tea.Program is created. Calls arriving earlier are dropped.
type ProgramSink struct {
	program atomic.Pointer[tea.Program]
}

// SetProgram enables delivery. Safe to call once from main after
// tea.NewProgram.
func (s *ProgramSink) SetProgram(p *tea.Program) {
	s.program.Store(p)
}

func (s *ProgramSink) send(msg tea.Msg) {
	if p := s.program.Load(); p != nil {
		p.Send(msg)
	}
}

func (s *ProgramSink) Clear()                    { s.send(clearMsg{}) }
func (s *ProgramSink) InsertLine(l gemtext.Line) { s.send(lineMsg{line: l}) }
func (s *ProgramSink) InsertRawText(text string) { s.send(rawTextMsg{text: text}) }
func (s *ProgramSink) SetAddress(url string)     { s.send(addressMsg{url: url}) }
func (s *ProgramSink) SetStatus(message string)  { s.send(statusMsg{text: message}) }
func (s *ProgramSink) ShowError(message string)  { s.send(errorMsg{text: message}) }

// PromptUser blocks the calling (session) goroutine until the user
// answers or ctx is cancelled.
func (s *ProgramSink) PromptUser(ctx context.Context, title, message string) (string, bool) {
	return s.prompt(ctx, promptMsg{title: title, message: message})
}

// ChooseSaveDestination asks for a file path for a binary body.
func (s *ProgramSink) ChooseSaveDestination(ctx context.Context) (string, bool) {
	return s.prompt(ctx, promptMsg{title: "Save file", message: "Destination path", save: true})
}

func (s *ProgramSink) prompt(ctx context.Context, msg promptMsg) (string, bool) {
	msg.reply = make(chan promptReply, 1)
	s.send(msg)
	select {
	case r := <-msg.reply:
		return r.answer, r.ok
	case <-ctx.Done():
		s.send(promptDismissMsg{})
		return "", false
	}
}
