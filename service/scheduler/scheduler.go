package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/viant/flightcore/internal/clock"
	"github.com/viant/flightcore/internal/idgen"
	"github.com/viant/flightcore/internal/logging"
	"github.com/viant/flightcore/service/messaging/memory"
	"github.com/viant/flightcore/service/pool"
	"github.com/viant/flightcore/service/queue"
	"github.com/viant/flightcore/tracing"
)

// Scheduler owns a fixed task table, a FIFO ready queue and a deadline
// ordered sleep queue.
type Scheduler struct {
	id       string
	config   Config
	now      clock.Source
	tasks    *pool.Pool[task]
	frames   []Frame
	ready    *queue.FIFO[ID]
	sleeping *queue.Sorted[sleeper]
	mailbox  *memory.Queue[ID]
	running  ID
	observer Observer
	logger   *slog.Logger
	tracing  bool
}

// New creates a scheduler and allocates all of its storage.
func New(options ...Option) *Scheduler {
	s := &Scheduler{
		id:     idgen.Prefixed("scheduler"),
		config: DefaultConfig(),
	}
	for _, opt := range options {
		opt(s)
	}
	s.config = s.config.withDefaults()
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	s.logger = s.logger.With("component", "scheduler", "scheduler_id", s.id)

	s.tasks = pool.New[task](s.config.MaxTasks)
	s.frames = make([]Frame, s.config.MaxTasks)
	for i := range s.frames {
		s.frames[i].sched = s
		s.frames[i].stack.Init(s.config.MaxCallDepth)
	}
	s.ready = queue.NewFIFO[ID](s.config.MaxTasks)
	s.sleeping = queue.NewSorted[sleeper](s.config.MaxTasks, earlier)
	s.mailbox = memory.NewQueue[ID](memory.Config{QueueBuffer: s.config.MailboxSize})
	return s
}

// Init installs the tick source.
func (s *Scheduler) Init(src clock.Source) error {
	if src == nil {
		return ErrNoTimeSource
	}
	s.now = src
	return nil
}

// Initialized reports whether a tick source is installed.
func (s *Scheduler) Initialized() bool {
	return s.now != nil
}

// ID returns the scheduler instance identifier.
func (s *Scheduler) ID() string {
	return s.id
}

// Config returns the effective sizing.
func (s *Scheduler) Config() Config {
	return s.config
}

// Now returns the current tick, or 0 before Init.
func (s *Scheduler) Now() clock.Tick {
	if s.now == nil {
		return 0
	}
	return s.now()
}

// Start allocates a task slot for fn and appends it to the ready queue.
func (s *Scheduler) Start(fn Func, arg any) (ID, error) {
	if fn == nil {
		return ID{}, ErrNilFunc
	}
	h, t, ok := s.tasks.Alloc()
	if !ok {
		return ID{}, ErrTableFull
	}
	id := ID{handle: h}
	node, ok := s.ready.Push(id)
	if !ok {
		s.tasks.Free(h)
		return ID{}, ErrTableFull
	}
	*t = task{id: id, state: Ready, fn: fn, arg: arg, link: linkReady, node: node}
	frame := &s.frames[id.Slot()]
	frame.id = id
	frame.stack.Reset()
	s.debug("task started", id)
	s.notify(EventStarted, id, Unallocated, Ready)
	return id, nil
}

// StartPoller drives p as a task.
func (s *Scheduler) StartPoller(p Poller) (ID, error) {
	if p == nil {
		return ID{}, ErrNilFunc
	}
	return s.Start(poll, p)
}

func poll(f *Frame, arg any) Result {
	return arg.(Poller).Poll(f)
}

// SelectAndRun performs one dispatch: it applies pending asynchronous wake
// requests, moves due sleepers to the ready queue, then runs the task at the
// head of the ready queue. It reports whether a task ran.
func (s *Scheduler) SelectAndRun() (bool, error) {
	if s.now == nil {
		return false, ErrNotInitialized
	}
	s.mailbox.Drain(s.wakeAsync)
	s.wakeDue(s.now())

	id, ok := s.ready.Pop()
	if !ok {
		return false, nil
	}
	t, ok := s.tasks.Get(id.handle)
	if !ok {
		return false, fmt.Errorf("ready queue holds %v: %w", id, ErrInvalidTask)
	}
	// Requeue before running to keep round-robin order; a suspending call
	// pulls the entry back out.
	t.node, _ = s.ready.Push(id)

	var span *tracing.Span
	if s.tracing {
		_, span = tracing.StartDispatch(context.Background(), s.id, id.String())
	}
	result := s.invoke(t, id)
	if span != nil {
		var err error
		if result == Error {
			err = errTaskFailed
		}
		span.Annotate("task.result", result.String()).Finish(err)
	}

	t, ok = s.tasks.Get(id.handle)
	if !ok {
		return true, nil
	}
	switch result {
	case Error:
		s.logger.Info("task failed", "task_id", id.String())
		s.kill(t, EventFailed)
	case Suspended:
	default:
		s.frames[id.Slot()].stack.Reset()
	}
	return true, nil
}

func (s *Scheduler) invoke(t *task, id ID) (result Result) {
	frame := &s.frames[id.Slot()]
	frame.stack.Rewind()
	s.running = id
	defer func() {
		s.running = ID{}
		if r := recover(); r != nil {
			s.logger.Error("task panicked", "task_id", id.String(), "panic", fmt.Sprint(r))
			result = Error
		}
	}()
	return t.fn(frame, t.arg)
}

// Running returns the task currently being dispatched.
func (s *Scheduler) Running() (ID, bool) {
	return s.running, !s.running.IsZero()
}

func (s *Scheduler) wakeDue(now clock.Tick) {
	for {
		head, ok := s.sleeping.Peek()
		if !ok || head.deadline > now {
			return
		}
		due, _ := s.sleeping.Pop()
		t, ok := s.tasks.Get(due.id.handle)
		if !ok {
			continue
		}
		t.link = linkNone
		t.node = queue.Handle{}
		s.makeReady(t, EventWoken)
	}
}

// Sleep moves the task to the sleep queue until ticks have elapsed.
func (s *Scheduler) Sleep(id ID, ticks uint32) error {
	if s.now == nil {
		return ErrNotInitialized
	}
	t, err := s.lookup(id)
	if err != nil {
		return err
	}
	from := t.state
	s.unlink(t)
	t.deadline = s.now() + clock.Tick(ticks)
	node, ok := s.sleeping.Push(sleeper{deadline: t.deadline, id: id})
	if !ok {
		return fmt.Errorf("sleep queue full: %w", ErrTableFull)
	}
	t.state = Sleeping
	t.link = linkSleep
	t.node = node
	s.debug("task sleeping", id)
	s.notify(EventSleeping, id, from, Sleeping)
	return nil
}

// Block removes the task from every queue until Wake is called for it.
func (s *Scheduler) Block(id ID) error {
	t, err := s.lookup(id)
	if err != nil {
		return err
	}
	from := t.state
	s.unlink(t)
	t.state = Blocked
	s.debug("task blocked", id)
	s.notify(EventBlocked, id, from, Blocked)
	return nil
}

// Wake makes a sleeping or blocked task ready. Waking a ready task is a no-op.
func (s *Scheduler) Wake(id ID) error {
	t, err := s.lookup(id)
	if err != nil {
		return err
	}
	if t.state != Sleeping && t.state != Blocked {
		return nil
	}
	s.unlink(t)
	s.makeReady(t, EventWoken)
	return nil
}

// WakeAsync queues a wake request for the next dispatch. It is safe to call
// from any goroutine and never blocks; false means the mailbox is full.
func (s *Scheduler) WakeAsync(id ID) bool {
	return s.mailbox.Offer(id)
}

func (s *Scheduler) wakeAsync(id ID) {
	if err := s.Wake(id); err != nil {
		s.debug("async wake ignored", id)
	}
}

// Kill releases the task slot immediately. No code of the task runs.
func (s *Scheduler) Kill(id ID) error {
	t, err := s.lookup(id)
	if err != nil {
		return err
	}
	s.kill(t, EventKilled)
	return nil
}

func (s *Scheduler) kill(t *task, event Event) {
	id, from := t.id, t.state
	s.unlink(t)
	s.frames[id.Slot()].stack.Reset()
	s.tasks.Free(id.handle)
	s.debug("task killed", id)
	s.notify(event, id, from, Unallocated)
}

func (s *Scheduler) makeReady(t *task, event Event) {
	from := t.state
	node, ok := s.ready.Push(t.id)
	if !ok {
		// Cannot happen: the ready queue holds one entry per task slot.
		s.logger.Error("ready queue full", "task_id", t.id.String())
		return
	}
	t.state = Ready
	t.link = linkReady
	t.node = node
	s.debug("task ready", t.id)
	s.notify(event, t.id, from, Ready)
}

func (s *Scheduler) unlink(t *task) {
	switch t.link {
	case linkReady:
		s.ready.Remove(t.node)
	case linkSleep:
		s.sleeping.Remove(t.node)
	}
	t.link = linkNone
	t.node = queue.Handle{}
}

func (s *Scheduler) lookup(id ID) (*task, error) {
	t, ok := s.tasks.Get(id.handle)
	if !ok {
		return nil, ErrInvalidTask
	}
	return t, nil
}

// Run dispatches until ctx is done. When no task is ready it waits up to
// IdlePoll for an asynchronous wake request.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.now == nil {
		return ErrNotInitialized
	}
	s.logger.Info("scheduler started", "max_tasks", s.config.MaxTasks, "idle_poll", s.config.IdlePoll)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopping (context cancelled)")
			return ctx.Err()
		default:
		}
		ran, err := s.SelectAndRun()
		if err != nil {
			return err
		}
		if !ran {
			s.idle(ctx)
		}
	}
}

func (s *Scheduler) idle(ctx context.Context) {
	waitCtx, cancel := context.WithTimeout(ctx, s.config.IdlePoll)
	defer cancel()
	msg, err := s.mailbox.Consume(waitCtx)
	if err != nil || msg == nil {
		return
	}
	s.wakeAsync(*msg.T())
	_ = msg.Ack()
}

// State returns the state of a live task.
func (s *Scheduler) State(id ID) (State, bool) {
	t, ok := s.tasks.Get(id.handle)
	if !ok {
		return Unallocated, false
	}
	return t.state, true
}

// Deadline returns the wake deadline of a sleeping task.
func (s *Scheduler) Deadline(id ID) (clock.Tick, bool) {
	t, ok := s.tasks.Get(id.handle)
	if !ok || t.state != Sleeping {
		return 0, false
	}
	return t.deadline, true
}

// Depth returns the number of outstanding continuation markers of a task.
func (s *Scheduler) Depth(id ID) (int, bool) {
	if _, ok := s.tasks.Get(id.handle); !ok {
		return 0, false
	}
	return s.frames[id.Slot()].stack.Depth(), true
}

// Len returns the number of live tasks.
func (s *Scheduler) Len() int { return s.tasks.Len() }

// ReadyLen returns the ready queue length.
func (s *Scheduler) ReadyLen() int { return s.ready.Size() }

// SleepingLen returns the sleep queue length.
func (s *Scheduler) SleepingLen() int { return s.sleeping.Size() }

// ReadyOrder returns the ready queue from head to tail.
func (s *Scheduler) ReadyOrder() []ID {
	result := make([]ID, 0, s.ready.Size())
	for _, id := range s.ready.All() {
		result = append(result, *id)
	}
	return result
}

func (s *Scheduler) notify(event Event, id ID, from, to State) {
	if s.observer == nil {
		return
	}
	s.observer.Observe(Transition{Event: event, Task: id, From: from, To: to, Tick: s.Now()})
}

func (s *Scheduler) debug(msg string, id ID) {
	if s.logger.Enabled(context.Background(), slog.LevelDebug) {
		s.logger.Debug(msg, "task_id", id.String())
	}
}
