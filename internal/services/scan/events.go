package scan

import (
	"time"

	"github.com/temirov/dirtree/internal/treestore"
	"github.com/temirov/dirtree/internal/types"
)

const SchemaVersion = 1

type EventKind string

const (
	EventKindStarted   EventKind = "started"
	EventKindProgress  EventKind = "progress"
	EventKindFinished  EventKind = "finished"
	EventKindCancelled EventKind = "cancelled"
	EventKindError     EventKind = "error"
	EventKindWarning   EventKind = "warning"
)

type Event struct {
	Version   int       `json:"version"`
	Kind      EventKind `json:"kind"`
	SessionID string    `json:"sessionId"`
	Path      string    `json:"path,omitempty"`
	EmittedAt time.Time `json:"emittedAt,omitempty"`

	Progress *ProgressEvent    `json:"progress,omitempty"`
	Result   *types.ScanResult `json:"result,omitempty"`
	Message  *LogEvent         `json:"message,omitempty"`
	Err      *ErrorEvent       `json:"error,omitempty"`
	// Store is set on finished events when the scan was asked to materialize a tree.
	Store *treestore.Store `json:"-"`
}

type ProgressEvent struct {
	Files       int `json:"files"`
	Directories int `json:"directories"`
}

type LogEvent struct {
	Level   string `json:"level,omitempty"`
	Message string `json:"message"`
}

type ErrorEvent struct {
	Message string `json:"message"`
}
