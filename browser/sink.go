package browser

import (
	"context"

	"github.com/knowfox/comet/gemtext"
)

// Sink is the presentation surface the session renders into. Every
// method is called from the session's background goroutine, never from
// the UI thread. PromptUser and ChooseSaveDestination block that
// goroutine until the user answers or ctx is cancelled; the other
// methods must not block.
type Sink interface {
	// Clear discards the current page content. A new page fully
	// replaces the previous one; there is no incremental update.
	Clear()

	// InsertLine appends one rendered gemtext element.
	InsertLine(line gemtext.Line)

	// InsertRawText appends one line of non-gemtext body text.
	InsertRawText(text string)

	// SetAddress updates the displayed current URL.
	SetAddress(url string)

	// SetStatus updates the one-line status message.
	SetStatus(message string)

	// PromptUser asks for one line of text, e.g. for a status 10
	// input request. ok is false when the user cancelled or ctx was
	// cancelled while the prompt was open.
	PromptUser(ctx context.Context, title, message string) (answer string, ok bool)

	// ChooseSaveDestination asks for a file path to write a binary
	// body to. ok is false on cancellation.
	ChooseSaveDestination(ctx context.Context) (path string, ok bool)

	// ShowError reports a non-fatal failure to the user.
	ShowError(message string)
}
