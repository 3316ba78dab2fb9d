package commands

import (
	"github.com/temirov/dirtree/internal/treestore"
)

// TreeBuilder carries the callbacks every tree operation forwards to its walk.
type TreeBuilder struct {
	// Warn receives messages about entries skipped during a walk.
	Warn func(message string)
	// OnProgress receives coalesced file and directory counts.
	OnProgress func(filesScanned int, directoriesScanned int)
}

func (treeBuilder *TreeBuilder) storeOptions() treestore.Options {
	if treeBuilder == nil {
		return treestore.Options{}
	}
	return treestore.Options{Warn: treeBuilder.Warn, OnProgress: treeBuilder.OnProgress}
}
