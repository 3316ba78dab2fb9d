package scan_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/temirov/dirtree/internal/services/scan"
	"github.com/temirov/dirtree/internal/types"
)

type recorder struct {
	mutex  sync.Mutex
	events []scan.Event
}

func (recorder *recorder) handle(event scan.Event) {
	recorder.mutex.Lock()
	defer recorder.mutex.Unlock()
	recorder.events = append(recorder.events, event)
}

func (recorder *recorder) snapshot() []scan.Event {
	recorder.mutex.Lock()
	defer recorder.mutex.Unlock()
	return append([]scan.Event(nil), recorder.events...)
}

func kinds(events []scan.Event) []scan.EventKind {
	result := make([]scan.EventKind, len(events))
	for index, event := range events {
		result[index] = event.Kind
	}
	return result
}

func createTree(t *testing.T, files int) string {
	t.Helper()
	root := t.TempDir()
	for index := 0; index < files; index++ {
		directory := filepath.Join(root, fmt.Sprintf("dir-%02d", index%20))
		if err := os.MkdirAll(directory, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(filepath.Join(directory, fmt.Sprintf("file-%04d.txt", index)), []byte("x"), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return root
}

func TestSessionFinishes(t *testing.T) {
	root := createTree(t, 250)
	events := &recorder{}
	session := scan.NewSession(events.handle, scan.Options{})
	session.Start(context.Background(), root, types.DefaultConfiguration(), scan.Request{Materialize: true})
	session.Wait()

	recorded := events.snapshot()
	if recorded[0].Kind != scan.EventKindStarted || recorded[0].Path != root {
		t.Fatalf("expected a started event first, got %v", kinds(recorded))
	}
	last := recorded[len(recorded)-1]
	if last.Kind != scan.EventKindFinished {
		t.Fatalf("expected a finished event last, got %v", kinds(recorded))
	}
	if last.Result == nil || last.Result.FileCount != 250 || last.Result.DirCount != 20 {
		t.Fatalf("unexpected result %+v", last.Result)
	}
	if last.Store == nil || last.Store.Root().ChildCount() != 20 {
		t.Fatalf("expected a materialized store")
	}
	if session.State() != scan.StateFinished || session.IsScanning() {
		t.Fatalf("unexpected state %s", session.State())
	}

	lastFiles, lastDirectories := 0, 0
	for _, event := range recorded {
		if event.SessionID != session.ID() || event.Version != scan.SchemaVersion {
			t.Fatalf("event missing session metadata: %+v", event)
		}
		if event.Kind != scan.EventKindProgress {
			continue
		}
		if event.Progress.Files < lastFiles || event.Progress.Directories < lastDirectories {
			t.Fatalf("progress decreased")
		}
		lastFiles, lastDirectories = event.Progress.Files, event.Progress.Directories
	}
	if files, directories := session.Progress(); files != 250 || directories != 20 {
		t.Fatalf("final progress %d/%d", files, directories)
	}
}

func TestSessionErrorsOnMissingRoot(t *testing.T) {
	events := &recorder{}
	session := scan.NewSession(events.handle, scan.Options{})
	session.Start(context.Background(), filepath.Join(t.TempDir(), "absent"), types.DefaultConfiguration(), scan.Request{})
	session.Wait()

	recorded := events.snapshot()
	last := recorded[len(recorded)-1]
	if last.Kind != scan.EventKindError || last.Err == nil || last.Err.Message == "" {
		t.Fatalf("expected an error event with a message, got %v", kinds(recorded))
	}
	if session.State() != scan.StateErrored || session.Result().Success {
		t.Fatalf("expected errored state")
	}
}

func TestSessionCancel(t *testing.T) {
	root := createTree(t, 1500)
	events := &recorder{}
	cancelReturned := make(chan struct{})
	var once sync.Once
	var session *scan.Session
	session = scan.NewSession(func(event scan.Event) {
		events.handle(event)
		if event.Kind != scan.EventKindProgress {
			return
		}
		once.Do(func() {
			go func() {
				session.Cancel()
				close(cancelReturned)
			}()
			time.Sleep(50 * time.Millisecond)
		})
	}, scan.Options{FileProgressInterval: 1})

	session.Start(context.Background(), root, types.DefaultConfiguration(), scan.Request{})
	select {
	case <-cancelReturned:
	case <-time.After(10 * time.Second):
		t.Fatalf("cancel did not return")
	}

	recorded := events.snapshot()
	last := recorded[len(recorded)-1]
	if last.Kind != scan.EventKindCancelled {
		t.Fatalf("expected cancelled as the final event, got %v", kinds(recorded))
	}
	for _, event := range recorded {
		if event.Kind == scan.EventKindFinished {
			t.Fatalf("a cancelled scan must not finish")
		}
	}
	if session.State() != scan.StateCancelled {
		t.Fatalf("unexpected state %s", session.State())
	}
	if files, _ := session.Progress(); files >= 1500 {
		t.Fatalf("expected a partial count, got %d", files)
	}
}

func TestSessionContextCancellation(t *testing.T) {
	root := createTree(t, 1200)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := &recorder{}
	session := scan.NewSession(func(event scan.Event) {
		events.handle(event)
		if event.Kind == scan.EventKindProgress {
			cancel()
		}
	}, scan.Options{})
	session.Start(ctx, root, types.DefaultConfiguration(), scan.Request{})
	session.Wait()

	recorded := events.snapshot()
	last := recorded[len(recorded)-1]
	if last.Kind != scan.EventKindCancelled || last.Result == nil || !last.Result.Cancelled || last.Result.Success {
		t.Fatalf("expected a cancelled result, got %v", kinds(recorded))
	}
	if last.Result.FileCount >= 1200 {
		t.Fatalf("expected partial counts, got %d", last.Result.FileCount)
	}
}

func TestSessionRestartDrainsPreviousRun(t *testing.T) {
	slowRoot := createTree(t, 1500)
	fastRoot := createTree(t, 5)
	events := &recorder{}
	restarted := make(chan struct{})
	var once sync.Once
	var session *scan.Session
	session = scan.NewSession(func(event scan.Event) {
		events.handle(event)
		if event.Kind != scan.EventKindProgress || event.Path != slowRoot {
			return
		}
		once.Do(func() {
			go func() {
				session.Start(context.Background(), fastRoot, types.DefaultConfiguration(), scan.Request{})
				close(restarted)
			}()
			time.Sleep(50 * time.Millisecond)
		})
	}, scan.Options{FileProgressInterval: 1})

	session.Start(context.Background(), slowRoot, types.DefaultConfiguration(), scan.Request{})
	select {
	case <-restarted:
	case <-time.After(10 * time.Second):
		t.Fatalf("restart did not return")
	}
	session.Wait()

	recorded := events.snapshot()
	secondStart := -1
	for index, event := range recorded {
		if event.Kind == scan.EventKindStarted && event.Path == fastRoot {
			secondStart = index
		}
	}
	if secondStart < 1 || recorded[secondStart-1].Kind != scan.EventKindCancelled {
		t.Fatalf("expected the previous run to be cancelled before the restart, got %v", kinds(recorded))
	}
	for _, event := range recorded[secondStart:] {
		if event.Path == slowRoot {
			t.Fatalf("event from the previous run arrived after restart: %+v", event)
		}
	}
	if recorded[len(recorded)-1].Kind != scan.EventKindFinished {
		t.Fatalf("expected the new run to finish, got %v", kinds(recorded))
	}
}

func TestCancelAndResetWhenIdle(t *testing.T) {
	events := &recorder{}
	session := scan.NewSession(events.handle, scan.Options{})
	session.Cancel()
	if len(events.snapshot()) != 0 || session.State() != scan.StateIdle {
		t.Fatalf("cancel must be a no-op when idle")
	}

	session.Start(context.Background(), t.TempDir(), types.DefaultConfiguration(), scan.Request{})
	session.Wait()
	session.Reset()
	if session.State() != scan.StateIdle {
		t.Fatalf("reset must return to idle, got %s", session.State())
	}
}
