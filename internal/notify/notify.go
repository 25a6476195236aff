// Package notify holds the transient notification shown after an action
// succeeds or fails. A notification hides itself after a fixed delay; showing
// a new one replaces the current one and restarts the delay.
package notify

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultDuration is how long a notification stays visible.
const DefaultDuration = 3 * time.Second

// Kind is the severity of a notification.
type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Info    Kind = "info"
)

// Toast is a visible notification.
type Toast struct {
	Message string
	Kind    Kind
}

// Timer is a pending hide.
type Timer interface {
	Stop() bool
}

// Clock schedules hides. The zero Notifier uses the wall clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type wallClock struct{}

func (wallClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Listener receives every transition; nil means the notification was hidden.
type Listener func(*Toast)

// Notifier holds at most one visible notification.
type Notifier struct {
	mu        sync.Mutex
	clock     Clock
	duration  time.Duration
	current   *Toast
	timer     Timer
	seq       uint64
	listeners map[int]Listener
	nextID    int
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(n *Notifier) {
		n.clock = c
	}
}

// WithDuration overrides DefaultDuration.
func WithDuration(d time.Duration) Option {
	return func(n *Notifier) {
		n.duration = d
	}
}

func New(opts ...Option) *Notifier {
	n := &Notifier{
		clock:     wallClock{},
		duration:  DefaultDuration,
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Show replaces the current notification and restarts the hide delay.
func (n *Notifier) Show(message string, kind Kind) {
	if kind == "" {
		kind = Info
	}

	n.mu.Lock()
	if n.timer != nil {
		n.timer.Stop()
	}
	n.seq++
	seq := n.seq
	n.current = &Toast{Message: message, Kind: kind}
	n.timer = n.clock.AfterFunc(n.duration, func() { n.expire(seq) })
	toast := *n.current
	listeners := n.snapshot()
	n.mu.Unlock()

	log.Debug().Str("kind", string(kind)).Str("message", message).Msg("notification shown")

	for _, l := range listeners {
		t := toast
		l(&t)
	}
}

// Success shows a success notification.
func (n *Notifier) Success(message string) { n.Show(message, Success) }

// Error shows an error notification.
func (n *Notifier) Error(message string) { n.Show(message, Error) }

// Info shows an informational notification.
func (n *Notifier) Info(message string) { n.Show(message, Info) }

// Dismiss hides the current notification and cancels its pending hide.
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	if n.current == nil {
		n.mu.Unlock()
		return
	}
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.seq++
	n.current = nil
	listeners := n.snapshot()
	n.mu.Unlock()

	for _, l := range listeners {
		l(nil)
	}
}

// expire hides the notification scheduled as seq, unless it was replaced.
func (n *Notifier) expire(seq uint64) {
	n.mu.Lock()
	if seq != n.seq || n.current == nil {
		n.mu.Unlock()
		return
	}
	n.current = nil
	n.timer = nil
	listeners := n.snapshot()
	n.mu.Unlock()

	for _, l := range listeners {
		l(nil)
	}
}

// Current returns the visible notification.
func (n *Notifier) Current() (Toast, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.current == nil {
		return Toast{}, false
	}
	return *n.current, true
}

// Subscribe registers l for every transition and returns a function that
// removes it.
func (n *Notifier) Subscribe(l Listener) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.listeners[id] = l

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.listeners, id)
	}
}

func (n *Notifier) snapshot() []Listener {
	out := make([]Listener, 0, len(n.listeners))
	for i := range n.nextID {
		if l, ok := n.listeners[i]; ok {
			out = append(out, l)
		}
	}
	return out
}

// WriterSink prints shown notifications to w, one per line, and ignores hides.
func WriterSink(w io.Writer) Listener {
	return func(t *Toast) {
		if t == nil {
			return
		}
		fmt.Fprintf(w, "%s %s\n", symbol(t.Kind), t.Message)
	}
}

func symbol(k Kind) string {
	switch k {
	case Success:
		return "✓"
	case Error:
		return "✗"
	default:
		return "•"
	}
}
