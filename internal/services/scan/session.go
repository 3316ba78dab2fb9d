// Package scan runs one background walk at a time and reports its lifecycle as events.
package scan

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/temirov/dirtree/internal/treestore"
	"github.com/temirov/dirtree/internal/types"
	"github.com/temirov/dirtree/internal/walker"
)

// State is the lifecycle position of a Session.
type State int

const (
	StateIdle State = iota
	StateScanning
	StateFinished
	StateCancelled
	StateErrored
)

var stateNames = map[State]string{
	StateIdle:      "idle",
	StateScanning:  "scanning",
	StateFinished:  "finished",
	StateCancelled: "cancelled",
	StateErrored:   "errored",
}

func (state State) String() string {
	return stateNames[state]
}

// Handler receives session events. Events of one session are delivered one at a
// time and never after a later Start has emitted its started event. A handler
// must not call Start, Cancel, or Reset synchronously.
type Handler func(Event)

// Options tunes the walks a Session runs.
type Options struct {
	FileProgressInterval      int
	DirectoryProgressInterval int
}

// Request selects what a scan retains besides its ScanResult.
type Request struct {
	// Materialize builds a TreeStore that is attached to the finished event.
	Materialize bool
}

type run struct {
	path      string
	cancel    context.CancelFunc
	done      chan struct{}
	cancelled atomic.Bool
}

// Session owns at most one active walk. Start and Cancel may be called from any goroutine.
type Session struct {
	id      string
	handler Handler
	options Options

	// control serializes Start, Cancel, and Reset.
	control sync.Mutex
	// mutex guards the fields below it.
	mutex      sync.Mutex
	state      State
	current    *run
	lastResult types.ScanResult
	lastStore  *treestore.Store

	filesScanned       atomic.Int64
	directoriesScanned atomic.Int64
}

// NewSession returns an idle session that reports to handler.
func NewSession(handler Handler, options Options) *Session {
	if handler == nil {
		handler = func(Event) {}
	}
	return &Session{id: uuid.New().String(), handler: handler, options: options}
}

// ID returns the identifier stamped on every event of the session.
func (session *Session) ID() string { return session.id }

// Start cancels and drains any active walk, then walks path in the background.
// ctx bounds the new walk; cancelling it ends the walk in the cancelled state.
func (session *Session) Start(ctx context.Context, path string, configuration types.Configuration, request Request) {
	if ctx == nil {
		ctx = context.Background()
	}
	session.control.Lock()
	defer session.control.Unlock()

	session.cancelAndWait()

	runContext, cancel := context.WithCancel(ctx)
	active := &run{path: path, cancel: cancel, done: make(chan struct{})}
	session.filesScanned.Store(0)
	session.directoriesScanned.Store(0)

	session.mutex.Lock()
	session.state = StateScanning
	session.current = active
	session.lastResult = types.ScanResult{}
	session.lastStore = nil
	session.mutex.Unlock()

	session.emit(Event{Kind: EventKindStarted, Path: path})
	go session.execute(runContext, active, configuration.Clone(), request)
}

// Cancel stops the active walk and blocks until it has unwound. It is a no-op unless scanning.
func (session *Session) Cancel() {
	session.control.Lock()
	defer session.control.Unlock()
	session.cancelAndWait()
}

// Reset cancels any active walk and returns the session to idle.
func (session *Session) Reset() {
	session.control.Lock()
	defer session.control.Unlock()
	session.cancelAndWait()
	session.mutex.Lock()
	session.state = StateIdle
	session.mutex.Unlock()
}

// Wait blocks until the most recently started walk has delivered its final event.
func (session *Session) Wait() {
	session.mutex.Lock()
	active := session.current
	session.mutex.Unlock()
	if active != nil {
		<-active.done
	}
}

// State returns the current lifecycle state.
func (session *Session) State() State {
	session.mutex.Lock()
	defer session.mutex.Unlock()
	return session.state
}

// IsScanning reports whether a walk is active.
func (session *Session) IsScanning() bool {
	return session.State() == StateScanning
}

// Progress returns the most recently reported counters of the active or last walk.
func (session *Session) Progress() (filesScanned int, directoriesScanned int) {
	return int(session.filesScanned.Load()), int(session.directoriesScanned.Load())
}

// Result returns the ScanResult of the last walk that finished, failed, or was cancelled by its context.
func (session *Session) Result() types.ScanResult {
	session.mutex.Lock()
	defer session.mutex.Unlock()
	return session.lastResult
}

// Store returns the tree materialized by the last finished walk, if one was requested.
func (session *Session) Store() *treestore.Store {
	session.mutex.Lock()
	defer session.mutex.Unlock()
	return session.lastStore
}

// cancelAndWait must be called with control held.
func (session *Session) cancelAndWait() {
	session.mutex.Lock()
	active := session.current
	scanning := session.state == StateScanning && active != nil
	if scanning {
		active.cancelled.Store(true)
		active.cancel()
	}
	session.mutex.Unlock()

	if active == nil {
		return
	}
	<-active.done
	if !scanning {
		return
	}
	session.mutex.Lock()
	session.state = StateCancelled
	session.mutex.Unlock()
	session.emit(Event{Kind: EventKindCancelled, Path: active.path})
}

func (session *Session) execute(ctx context.Context, active *run, configuration types.Configuration, request Request) {
	defer close(active.done)
	defer active.cancel()

	var collector *treestore.Collector
	walkOptions := walker.Options{
		FileProgressInterval:      session.options.FileProgressInterval,
		DirectoryProgressInterval: session.options.DirectoryProgressInterval,
		OnProgress: func(filesScanned int, directoriesScanned int) {
			session.filesScanned.Store(int64(filesScanned))
			session.directoriesScanned.Store(int64(directoriesScanned))
			if active.cancelled.Load() {
				return
			}
			session.emit(Event{
				Kind:     EventKindProgress,
				Path:     active.path,
				Progress: &ProgressEvent{Files: filesScanned, Directories: directoriesScanned},
			})
		},
		Warn: func(message string) {
			trimmed := strings.TrimRight(message, "\n")
			if trimmed == "" || active.cancelled.Load() {
				return
			}
			session.emit(Event{Kind: EventKindWarning, Path: active.path, Message: &LogEvent{Level: "warning", Message: trimmed}})
		},
	}
	if request.Materialize {
		collector = treestore.NewCollector()
		walkOptions.Handler = collector.Handle
	}

	result := walker.Walk(ctx, active.path, configuration, walkOptions)
	session.filesScanned.Store(int64(result.FileCount))
	session.directoriesScanned.Store(int64(result.DirCount))

	session.mutex.Lock()
	if active.cancelled.Load() {
		session.mutex.Unlock()
		return
	}
	session.lastResult = result
	var event Event
	switch {
	case result.Cancelled:
		session.state = StateCancelled
		event = Event{Kind: EventKindCancelled, Path: active.path, Result: &result}
	case !result.Success:
		session.state = StateErrored
		event = Event{Kind: EventKindError, Path: active.path, Result: &result, Err: &ErrorEvent{Message: result.ErrorMessage}}
	default:
		session.state = StateFinished
		event = Event{Kind: EventKindFinished, Path: active.path, Result: &result}
		if collector != nil {
			session.lastStore = collector.Store(configuration, treestore.Options{}, result)
			event.Store = session.lastStore
		}
	}
	session.mutex.Unlock()
	session.emit(event)
}

func (session *Session) emit(event Event) {
	event.Version = SchemaVersion
	event.SessionID = session.id
	if event.EmittedAt.IsZero() {
		event.EmittedAt = time.Now().UTC()
	}
	session.handler(event)
}
