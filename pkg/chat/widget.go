package chat

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/malariainfo/pkg/decisiontree"
)

// DefaultTypingDelay is how long the bot "types" before its next question.
const DefaultTypingDelay = 700 * time.Millisecond

// Widget is a single decision-tree conversation. It is safe for concurrent use.
type Widget struct {
	tree     *decisiontree.Tree
	now      func() time.Time
	newID    func() string
	observer func(Event)

	current *decisiontree.Node
	pending *decisiontree.Node
	timer   *time.Timer
	outbox  []Event

	id         string
	locale     string
	state      State
	transcript []Message
	delay      time.Duration
	gen        uint64
	seq        uint64

	mu sync.Mutex
}

// Option configures a Widget.
type Option func(*Widget)

// WithID sets the widget id reported in snapshots and events.
func WithID(id string) Option {
	return func(w *Widget) { w.id = id }
}

// WithLocale sets the conversation locale. Default: decisiontree.FallbackLocale.
func WithLocale(locale string) Option {
	return func(w *Widget) {
		if locale != "" {
			w.locale = locale
		}
	}
}

// WithTypingDelay sets the simulated typing delay. Zero delivers the next
// question synchronously.
func WithTypingDelay(d time.Duration) Option {
	return func(w *Widget) { w.delay = max(d, 0) }
}

// WithObserver registers fn for every event. fn runs without the widget lock
// held and may call back into the widget.
func WithObserver(fn func(Event)) Option {
	return func(w *Widget) { w.observer = fn }
}

// WithClock overrides the message timestamp source.
func WithClock(now func() time.Time) Option {
	return func(w *Widget) { w.now = now }
}

// WithIDGenerator overrides message id generation.
func WithIDGenerator(fn func() string) Option {
	return func(w *Widget) { w.newID = fn }
}

// New creates an idle widget over tree. Call Start to open the conversation.
func New(tree *decisiontree.Tree, opts ...Option) *Widget {
	w := &Widget{
		tree:   tree,
		now:    time.Now,
		newID:  func() string { return uuid.Must(uuid.NewV7()).String() },
		locale: decisiontree.FallbackLocale,
		state:  StateIdle,
		delay:  DefaultTypingDelay,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.id == "" {
		w.id = w.newID()
	}
	return w
}

// ID returns the widget id.
func (w *Widget) ID() string {
	return w.id
}

// Start opens the conversation at nodeID and shows its question.
// Starting a closed widget reopens it. Any pending typing delay is cancelled.
func (w *Widget) Start(nodeID string) error {
	node, err := w.tree.Node(nodeID)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.cancelPending()
	w.enter(node)
	events := w.drain()
	w.mu.Unlock()

	w.emit(events)
	return nil
}

// SelectOption answers the current question with option code (case-insensitive).
// Nothing is appended when it returns an error.
func (w *Widget) SelectOption(code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))

	w.mu.Lock()
	if err := w.selectable(code); err != nil {
		w.mu.Unlock()
		return err
	}

	label, _ := w.current.Label(code, w.locale)
	w.append(SenderUser, label)

	if nextID, ok := w.current.NextID(code); ok {
		next, _ := w.tree.Node(nextID) // validated at load
		if w.delay == 0 {
			w.enter(next)
		} else {
			w.pending = next
			w.setState(StateTyping)
			gen := w.gen
			w.timer = time.AfterFunc(w.delay, func() { w.deliver(gen) })
		}
	} else {
		res, _ := w.current.Outcome(code) // validated at load
		w.append(SenderBot, res.Text(w.locale))
		w.setState(StateTerminal)
	}

	events := w.drain()
	w.mu.Unlock()

	w.emit(events)
	return nil
}

// Reset clears the transcript, cancels any pending delayed message and
// re-enters the root node.
func (w *Widget) Reset() {
	w.mu.Lock()
	w.cancelPending()
	w.transcript = nil
	w.queue(Event{Type: EventReset, SessionID: w.id, State: w.state})
	w.enter(w.tree.Root())
	events := w.drain()
	w.mu.Unlock()

	w.emit(events)
}

// Close cancels any pending delayed message and clears the conversation.
func (w *Widget) Close() {
	w.mu.Lock()
	if w.state == StateClosed {
		w.mu.Unlock()
		return
	}
	w.cancelPending()
	w.transcript = nil
	w.current = nil
	w.setState(StateClosed)
	events := w.drain()
	w.mu.Unlock()

	w.emit(events)
}

// SetLocale switches the language of subsequent messages. Messages already
// in the transcript keep their original locale.
func (w *Widget) SetLocale(locale string) {
	if locale == "" {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.locale = locale
}

// Locale returns the conversation locale.
func (w *Widget) Locale() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.locale
}

// State returns the lifecycle state.
func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Transcript returns a copy of the messages so far.
func (w *Widget) Transcript() []Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.transcript)
}

// Choices returns the options of the current node. While the bot is typing
// the previous node's options are returned; they are not selectable.
func (w *Widget) Choices() []Choice {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.choices()
}

// Snapshot returns a consistent copy of the whole widget state.
func (w *Widget) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := Snapshot{
		ID:       w.id,
		State:    w.state,
		Locale:   w.locale,
		Messages: slices.Clone(w.transcript),
		Choices:  w.choices(),
		Seq:      w.seq,
	}
	if s.Messages == nil {
		s.Messages = []Message{}
	}
	if w.current != nil {
		s.NodeID = w.current.ID
	}
	return s
}

func (w *Widget) selectable(code string) error {
	switch w.state {
	case StateClosed:
		return ErrClosed
	case StateIdle:
		return ErrNotStarted
	case StateTyping:
		return ErrBusy
	case StateTerminal:
		return ErrTerminal
	}
	if w.current == nil || !w.current.HasOption(code) {
		return ErrInvalidOption
	}
	return nil
}

func (w *Widget) deliver(gen uint64) {
	w.mu.Lock()
	if gen != w.gen || w.state != StateTyping || w.pending == nil {
		w.mu.Unlock()
		return
	}
	next := w.pending
	w.pending = nil
	w.timer = nil
	w.enter(next)
	events := w.drain()
	w.mu.Unlock()

	w.emit(events)
}

// enter moves to node and shows its question. Caller holds mu.
func (w *Widget) enter(node *decisiontree.Node) {
	w.current = node
	w.append(SenderBot, node.Question.In(w.locale))

	if !node.IsTerminal() {
		w.setState(StateActive)
		return
	}
	if !node.Result.IsZero() {
		w.append(SenderBot, node.Result.Text(w.locale))
	}
	w.setState(StateTerminal)
}

// cancelPending invalidates any scheduled delivery. Caller holds mu.
func (w *Widget) cancelPending() {
	w.gen++
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.pending = nil
}

// Caller holds mu.
func (w *Widget) append(sender Sender, text string) {
	msg := Message{
		ID:        w.newID(),
		Sender:    sender,
		Text:      text,
		Locale:    w.locale,
		Timestamp: w.now(),
	}
	w.transcript = append(w.transcript, msg)
	w.queue(Event{Type: EventMessage, SessionID: w.id, State: w.state, Message: &msg})
}

// Caller holds mu.
func (w *Widget) setState(s State) {
	if w.state == s {
		return
	}
	w.state = s
	w.queue(Event{Type: EventState, SessionID: w.id, State: s})
}

// Caller holds mu.
func (w *Widget) queue(e Event) {
	w.seq++
	e.Seq = w.seq
	w.outbox = append(w.outbox, e)
}

// Caller holds mu.
func (w *Widget) choices() []Choice {
	if w.current == nil || w.state == StateTerminal || w.state == StateClosed {
		return []Choice{}
	}
	codes := w.current.OptionCodes()
	out := make([]Choice, 0, len(codes))
	for _, code := range codes {
		label, _ := w.current.Label(code, w.locale)
		out = append(out, Choice{Code: code, Label: label})
	}
	return out
}

// Caller holds mu.
func (w *Widget) drain() []Event {
	events := w.outbox
	w.outbox = nil
	return events
}

func (w *Widget) emit(events []Event) {
	if w.observer == nil {
		return
	}
	for _, e := range events {
		w.observer(e)
	}
}
