// Package chat implements the assistant widget: a small state machine over
// an append-only transcript that sends each message to the chat function.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"
)

const (
	// Greeting seeds every new transcript
	Greeting = "¡Hola! Soy tu asistente académico de Info Campus. Puedo ayudarte con consultas sobre tus notas, pagos, horarios y más. ¿En qué puedo ayudarte?"
	// Apology replaces the assistant reply when a send fails
	Apology = "Lo siento, hubo un error al procesar tu mensaje. Por favor intenta de nuevo."
	// SessionExpiredReply replaces the assistant reply when the credential is rejected
	SessionExpiredReply = "Tu sesión expiró. Inicia sesión de nuevo para seguir conversando."

	DefaultHistoryWindow = 6
	DefaultMaxInput      = 500
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrBusy         = errors.New("a message is already being sent")
	ErrClosed       = errors.New("chat is closed")
	ErrTooLong      = errors.New("message is too long")
)

// State is the widget's visible state
type State string

const (
	StateClosed      State = "closed"
	StateOpenIdle    State = "open-idle"
	StateOpenWaiting State = "open-waiting"
)

// Request is what the widget hands to the sender
type Request struct {
	Message string `json:"message"`
	History []Turn `json:"history"`
}

// Sender delivers one message and returns the assistant reply
type Sender interface {
	Send(ctx context.Context, req Request) (string, error)
}

// Options tunes a widget. A negative HistoryWindow or a non-positive
// MaxInput takes the default; a zero window sends no history.
type Options struct {
	HistoryWindow int
	MaxInput      int
}

// Widget owns the transcript. Sends are serialized by the waiting flag.
type Widget struct {
	mu         sync.Mutex
	sender     Sender
	logger     *zap.Logger
	transcript Transcript
	open       bool
	waiting    bool
	window     int
	maxInput   int
}

// NewWidget creates a closed widget whose transcript holds the greeting
func NewWidget(sender Sender, opts Options, logger *zap.Logger) *Widget {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.HistoryWindow < 0 {
		opts.HistoryWindow = DefaultHistoryWindow
	}
	if opts.MaxInput <= 0 {
		opts.MaxInput = DefaultMaxInput
	}

	w := &Widget{
		sender:   sender,
		logger:   logger,
		window:   opts.HistoryWindow,
		maxInput: opts.MaxInput,
	}
	w.transcript.Append(Entry{Role: SpeakerAssistant, Content: Greeting, State: EntryConfirmed})
	return w
}

// Open shows the widget
func (w *Widget) Open() {
	w.mu.Lock()
	w.open = true
	w.mu.Unlock()
}

// Close hides the widget. An in-flight send still completes into the transcript.
func (w *Widget) Close() {
	w.mu.Lock()
	w.open = false
	w.mu.Unlock()
}

// State returns the current widget state
func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case !w.open:
		return StateClosed
	case w.waiting:
		return StateOpenWaiting
	}
	return StateOpenIdle
}

// Entries returns a copy of the transcript
func (w *Widget) Entries() []Entry {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.transcript.Entries()
}

// Submit sends input and appends the reply. It returns the assistant entry
// that was appended; on a failed send the entry is the apology and err is
// the send error.
func (w *Widget) Submit(ctx context.Context, input string) (Entry, error) {
	if strings.TrimSpace(input) == "" {
		return Entry{}, ErrEmptyMessage
	}
	if utf8.RuneCountInString(input) > w.maxInput {
		return Entry{}, ErrTooLong
	}

	w.mu.Lock()
	if !w.open {
		w.mu.Unlock()
		return Entry{}, ErrClosed
	}
	if w.waiting {
		w.mu.Unlock()
		return Entry{}, ErrBusy
	}
	w.waiting = true
	history := w.transcript.History(w.window)
	idx := w.transcript.Append(Entry{Role: SpeakerUser, Content: input, State: EntryPending})
	w.mu.Unlock()

	reply, err := w.sender.Send(ctx, Request{Message: input, History: history})

	w.mu.Lock()
	defer w.mu.Unlock()
	w.waiting = false

	if err != nil {
		w.logger.Warn("chat send failed", zap.Error(err))
		w.transcript.SetState(idx, EntryFailed)
		content := Apology
		if errors.Is(err, ErrUnauthenticated) {
			content = SessionExpiredReply
		}
		entry := Entry{Role: SpeakerAssistant, Content: content, State: EntryConfirmed}
		w.transcript.Append(entry)
		return entry, err
	}

	w.transcript.SetState(idx, EntryConfirmed)
	entry := Entry{Role: SpeakerAssistant, Content: reply, State: EntryConfirmed}
	w.transcript.Append(entry)
	return entry, nil
}
