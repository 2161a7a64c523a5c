// Package widget is the conversational client: an append-only message log,
// a collapse flag and at most one request to the relay in flight. Log and
// flag survive restarts through a storage.KeyValue.
package widget

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"argo-chat/internal/models"
	"argo-chat/internal/storage"
)

const (
	DefaultNamespace = "promptbox"

	messagesKey  = "chat-messages"
	collapsedKey = "chat-collapsed"
)

// Relay answers one prompt with the assistant's text.
type Relay interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

type Option func(*Widget)

// WithNamespace scopes the persisted keys, like localStorage is scoped per page.
func WithNamespace(ns string) Option {
	return func(w *Widget) {
		if ns != "" {
			w.namespace = ns
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(w *Widget) { w.now = now }
}

type Widget struct {
	relay     Relay
	store     storage.KeyValue
	namespace string
	now       func() time.Time

	// slot holds a single token while idle; Submit takes it without blocking.
	slot chan struct{}

	mu        sync.Mutex
	messages  []models.Message
	collapsed bool
}

// New builds a widget and restores any persisted state. Unreadable state is
// logged and the widget starts empty.
func New(ctx context.Context, relay Relay, store storage.KeyValue, opts ...Option) *Widget {
	w := &Widget{
		relay:     relay,
		store:     store,
		namespace: DefaultNamespace,
		now:       time.Now,
		slot:      make(chan struct{}, 1),
		collapsed: true,
	}
	w.slot <- struct{}{}

	for _, opt := range opts {
		opt(w)
	}

	w.load(ctx)
	return w
}

func (w *Widget) key(name string) string {
	return w.namespace + ":" + name
}

func (w *Widget) load(ctx context.Context) {
	raw, err := w.store.Get(ctx, w.key(messagesKey))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Error().Err(err).Msg("Error reading saved messages")
		}
		return
	}

	var saved []models.Message
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		log.Error().Err(err).Str("key", w.key(messagesKey)).Msg("Error loading saved messages")
		return
	}
	if len(saved) == 0 {
		return
	}

	w.messages = saved
	w.collapsed = false

	rawCollapsed, err := w.store.Get(ctx, w.key(collapsedKey))
	if err != nil {
		return
	}
	var collapsed bool
	if err := json.Unmarshal([]byte(rawCollapsed), &collapsed); err != nil {
		log.Warn().Err(err).Msg("Ignoring unreadable collapse state")
		return
	}
	w.collapsed = collapsed
}

// Submit sends text to the relay and records both sides of the exchange.
// It returns false without touching the log when text is blank or another
// request is still in flight. Every settled request appends one assistant
// message, even when Clear ran while it was waiting.
func (w *Widget) Submit(ctx context.Context, text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	select {
	case <-w.slot:
	default:
		return false
	}
	defer func() { w.slot <- struct{}{} }()

	w.mu.Lock()
	if len(w.messages) == 0 {
		w.setCollapsedLocked(ctx, false)
	}
	w.appendLocked(ctx, models.RoleUser, text)
	w.mu.Unlock()

	content, err := w.relay.Ask(ctx, text)
	if err != nil {
		log.Error().Err(err).Msg("Error sending message")
		content = errorMessage(err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.appendLocked(ctx, models.RoleAssistant, content)
	return true
}

func errorMessage(err error) string {
	msg := err.Error()
	if msg == "" {
		msg = "Unknown error"
	}
	return fmt.Sprintf("Sorry, I encountered an error: %s. Please try again.", msg)
}

// appendLocked adds a message and persists the whole log. Timestamps never
// run backwards, even if the wall clock does.
func (w *Widget) appendLocked(ctx context.Context, role models.Role, content string) {
	ts := w.now()
	if n := len(w.messages); n > 0 && ts.Before(w.messages[n-1].Timestamp) {
		ts = w.messages[n-1].Timestamp
	}

	w.messages = append(w.messages, models.Message{
		ID:        newID(),
		Role:      role,
		Content:   content,
		Timestamp: ts,
	})
	w.saveMessagesLocked(ctx)
}

func (w *Widget) saveMessagesLocked(ctx context.Context) {
	if len(w.messages) == 0 {
		return
	}
	data, err := json.Marshal(w.messages)
	if err != nil {
		log.Error().Err(err).Msg("Error encoding messages")
		return
	}
	if err := w.store.Set(ctx, w.key(messagesKey), string(data)); err != nil {
		log.Error().Err(err).Msg("Error saving messages")
	}
}

func (w *Widget) setCollapsedLocked(ctx context.Context, collapsed bool) {
	w.collapsed = collapsed
	data, _ := json.Marshal(collapsed)
	if err := w.store.Set(ctx, w.key(collapsedKey), string(data)); err != nil {
		log.Error().Err(err).Msg("Error saving collapse state")
	}
}

// Clear drops the whole log, collapses the widget and forgets the saved log.
func (w *Widget) Clear(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.messages = nil
	w.setCollapsedLocked(ctx, true)
	if err := w.store.Remove(ctx, w.key(messagesKey)); err != nil {
		log.Error().Err(err).Msg("Error removing saved messages")
	}
}

// ToggleCollapse flips the display state and returns the new value.
func (w *Widget) ToggleCollapse(ctx context.Context) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.setCollapsedLocked(ctx, !w.collapsed)
	return w.collapsed
}

// Messages returns a copy of the log in creation order.
func (w *Widget) Messages() []models.Message {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]models.Message, len(w.messages))
	copy(out, w.messages)
	return out
}

func (w *Widget) HasMessages() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.messages) > 0
}

func (w *Widget) IsLoading() bool {
	return len(w.slot) == 0
}

func (w *Widget) IsCollapsed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.collapsed
}

// ShouldShow reports whether the conversation pane has anything to display.
func (w *Widget) ShouldShow() bool {
	return w.HasMessages() || w.IsLoading()
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
