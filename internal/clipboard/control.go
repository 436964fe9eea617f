// Package clipboard implements the copy-to-clipboard control attached to code blocks.
//
// A Control has two states. A successful write moves it to StateCopied and
// (re)starts a reset timer; when the timer fires the control returns to
// StateIdle. A failed write is logged and leaves the state untouched. Closing
// the control stops any pending timer.
package clipboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/prettyirrelevant/eniola.wtf/internal/logfields"
)

// DefaultResetDelay is how long a control stays in StateCopied.
const DefaultResetDelay = 2 * time.Second

// State is the acknowledgement state of a control.
type State int

const (
	StateIdle State = iota
	StateCopied
)

func (s State) String() string {
	if s == StateCopied {
		return "copied"
	}
	return "idle"
}

// Title is the tooltip shown for the state.
func (s State) Title() string {
	if s == StateCopied {
		return "Copied!"
	}
	return "Copy code"
}

// AriaLabel is the accessible label for the state.
func (s State) AriaLabel() string {
	if s == StateCopied {
		return "Code copied"
	}
	return "Copy code to clipboard"
}

// Option configures a Control.
type Option func(*Control)

// WithClock sets the clock used for the reset timer.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Control) { c.clock = clock }
}

// WithResetDelay sets how long the control stays copied. Non-positive values are ignored.
func WithResetDelay(d time.Duration) Option {
	return func(c *Control) {
		if d > 0 {
			c.delay = d
		}
	}
}

// WithLogger sets the logger used to report write failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Control) { c.logger = logger }
}

// WithObserver registers fn to be called after every state transition.
func WithObserver(fn func(State)) Option {
	return func(c *Control) { c.observer = fn }
}

// Control copies a fixed text through a Writer and tracks the acknowledgement state.
type Control struct {
	text     string
	writer   Writer
	clock    clockwork.Clock
	delay    time.Duration
	logger   *slog.Logger
	observer func(State)

	mu         sync.Mutex
	state      State
	timer      clockwork.Timer
	generation uint64
	closed     bool
}

// NewControl creates an idle control for text.
func NewControl(text string, writer Writer, opts ...Option) *Control {
	c := &Control{
		text:   text,
		writer: writer,
		clock:  clockwork.NewRealClock(),
		delay:  DefaultResetDelay,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Text returns the text the control copies.
func (c *Control) Text() string { return c.text }

// ResetDelay returns how long the control stays copied.
func (c *Control) ResetDelay() time.Duration { return c.delay }

// State returns the current state.
func (c *Control) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Activate writes the text to the clipboard and returns the resulting state.
// Write failures are logged, never returned.
func (c *Control) Activate(ctx context.Context) State {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return StateIdle
	}

	if err := c.writer.WriteText(ctx, c.text); err != nil {
		c.logger.WarnContext(ctx, "Failed to copy text", logfields.Error(err))
		return c.State()
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return StateIdle
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.generation++
	gen := c.generation
	c.state = StateCopied
	c.timer = c.clock.AfterFunc(c.delay, func() { c.reset(gen) })
	c.mu.Unlock()

	c.notify(StateCopied)
	return StateCopied
}

func (c *Control) reset(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.generation || c.state == StateIdle {
		c.mu.Unlock()
		return
	}
	c.state = StateIdle
	c.timer = nil
	c.mu.Unlock()

	c.notify(StateIdle)
}

// Close stops any pending reset. The control ignores activations afterwards.
func (c *Control) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Control) notify(s State) {
	if c.observer != nil {
		c.observer(s)
	}
}
