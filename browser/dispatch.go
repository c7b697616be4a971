package browser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/knowfox/comet/gemini"
	"github.com/knowfox/comet/gemtext"
)

// followUp asks fetchLoop to issue another request in the same scope.
type followUp struct {
	url   string
	query string
}

// pushable is the history rule: every code outside the redirect band
// 30-39 is recorded, including input prompts and failures. That
// matches the shipped behavior this browser preserves; see DESIGN.md
// before "fixing" it.
func pushable(code gemini.StatusCode) bool {
	return code < 30 || code > 39
}

// dispatch is the response state machine. It owns res for the duration
// of one call; the caller closes the body afterwards. A non-nil return
// means another fetch should follow in the same request scope.
func (s *Session) dispatch(scope *requestScope, res *gemini.Response, redirects *int) *followUp {
	if pushable(res.Status) {
		s.mu.Lock()
		s.history.Push(res.URL.String())
		s.mu.Unlock()
	}

	switch res.Status {
	case gemini.StatusPlainInput, gemini.StatusSensitiveInput:
		answer, ok := s.sink.PromptUser(scope.ctx, "Input required", res.Meta)
		if !ok || scope.ctx.Err() != nil {
			return nil
		}
		// A fresh navigation to the same page, answer attached.
		*redirects = 0
		return &followUp{url: res.URL.String(), query: answer}

	case gemini.StatusSuccess, gemini.StatusEndOfSession:
		s.render(scope, res)
		return nil

	case gemini.StatusTemporaryRedirect, gemini.StatusPermanentRedirect:
		*redirects++
		if *redirects > s.maxRedirects {
			s.emit(scope, func(k Sink) {
				k.ShowError("Too many redirects, stopped at " + res.URL.String())
			})
			return nil
		}
		target := strings.TrimSpace(res.Meta)
		s.log.Debug("redirect", "from", res.URL.String(), "to", target)
		return &followUp{url: target}

	case gemini.StatusSlowDown:
		s.showError(scope, fmt.Sprintf("Rate limited: wait %s seconds before retrying", res.Meta))
		return nil

	case gemini.StatusTemporaryFailure:
		s.showError(scope, "Temporary failure: "+res.Meta)
		return nil
	case gemini.StatusServerUnavailable:
		s.showError(scope, "Server unavailable: "+res.Meta)
		return nil
	case gemini.StatusCGIError:
		s.showError(scope, "CGI error: "+res.Meta)
		return nil
	case gemini.StatusProxyError:
		s.showError(scope, "Proxy error: "+res.Meta)
		return nil

	case gemini.StatusPermanentFailure:
		s.showError(scope, "Permanent failure: "+res.Meta)
		return nil
	case gemini.StatusNotFound:
		s.showError(scope, "Not found: "+res.Meta)
		return nil
	case gemini.StatusGone:
		s.showError(scope, "Gone: "+res.Meta)
		return nil
	case gemini.StatusProxyRefused:
		s.showError(scope, "Proxy request refused: "+res.Meta)
		return nil
	case gemini.StatusBadRequest:
		s.showError(scope, "Bad request: "+res.Meta)
		return nil

	default:
		s.log.Warn("unknown status", "code", int(res.Status), "group", res.Status.Group().String())
		s.showError(scope, fmt.Sprintf("Unknown response %d %s", res.Status, res.Meta))
		return nil
	}
}

func (s *Session) showError(scope *requestScope, msg string) {
	s.emit(scope, func(k Sink) { k.ShowError(msg) })
}

// render hands a success body to the right renderer based on the meta
// field read as a mimetype.
func (s *Session) render(scope *requestScope, res *gemini.Response) {
	mime := res.Meta
	switch {
	case strings.HasPrefix(mime, "text/gemini"):
		s.renderGemtext(scope, res)
	case strings.HasPrefix(mime, "text/"):
		s.renderPlain(scope, res)
	default:
		s.saveBinary(scope, res)
	}
}

// renderGemtext streams parsed lines into the sink. Cancellation
// mid-body just stops the stream; whatever was already delivered
// stays, nothing after the cancel gets through.
func (s *Session) renderGemtext(scope *requestScope, res *gemini.Response) {
	s.emit(scope, func(k Sink) { k.Clear() })
	parser := gemtext.NewParser(res.Body, res.URL.String())
	for {
		if scope.ctx.Err() != nil {
			return
		}
		line, err := parser.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) && scope.ctx.Err() == nil {
				s.log.Warn("body read failed", "url", res.URL.String(), "error", err)
			}
			return
		}
		s.emit(scope, func(k Sink) { k.InsertLine(line) })
	}
}

func (s *Session) renderPlain(scope *requestScope, res *gemini.Response) {
	s.emit(scope, func(k Sink) { k.Clear() })
	scanner := bufio.NewScanner(res.Body)
	for scanner.Scan() {
		if scope.ctx.Err() != nil {
			return
		}
		text := strings.TrimSuffix(scanner.Text(), "\r")
		s.emit(scope, func(k Sink) { k.InsertRawText(text) })
	}
	if err := scanner.Err(); err != nil && scope.ctx.Err() == nil {
		s.log.Warn("body read failed", "url", res.URL.String(), "error", err)
	}
}

// saveBinary writes a non-text body to a user-chosen path. Declining
// the prompt or failing the write is reported, never fatal.
func (s *Session) saveBinary(scope *requestScope, res *gemini.Response) {
	path, ok := s.sink.ChooseSaveDestination(scope.ctx)
	if !ok || scope.ctx.Err() != nil {
		s.emit(scope, func(k Sink) { k.SetStatus("Save cancelled") })
		return
	}
	file, err := os.Create(path)
	if err != nil {
		s.showError(scope, "Failed to save: "+err.Error())
		return
	}
	written, err := io.Copy(file, res.Body)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		if scope.ctx.Err() != nil {
			return
		}
		s.showError(scope, "Failed to save: "+err.Error())
		return
	}
	msg := fmt.Sprintf("Saved %d bytes (%s) to %s", written, res.Meta, path)
	s.emit(scope, func(k Sink) { k.SetStatus(msg) })
}
