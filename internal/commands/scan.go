package commands

import (
	"context"

	"github.com/temirov/dirtree/internal/services/scan"
	"github.com/temirov/dirtree/internal/types"
)

// StartScan starts a background walk of path and returns its session handle.
func StartScan(ctx context.Context, path string, configuration types.Configuration, handler scan.Handler, request scan.Request) *scan.Session {
	session := scan.NewSession(handler, scan.Options{})
	session.Start(ctx, path, configuration, request)
	return session
}

// CancelScan stops the session's walk and waits for it to unwind.
func CancelScan(session *scan.Session) {
	session.Cancel()
}

// IsScanning reports whether the session has an active walk.
func IsScanning(session *scan.Session) bool {
	return session.IsScanning()
}
