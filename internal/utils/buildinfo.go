package utils

import (
	"errors"
	"runtime/debug"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

const (
	unknownVersion     = "unknown"
	developmentVersion = "(devel)"
	shortHashLength    = 7
)

// Version is injected at link time with -ldflags "-X github.com/temirov/dirtree/internal/utils.Version=v1.2.3".
var Version string

// GetApplicationVersion reports the link-time Version, then the module version
// from the build info, then the tag pointing at HEAD of the enclosing repository.
func GetApplicationVersion() string {
	if Version != "" {
		return Version
	}
	buildInfo, buildInfoAvailable := debug.ReadBuildInfo()
	if buildInfoAvailable && buildInfo.Main.Version != "" && buildInfo.Main.Version != developmentVersion {
		return buildInfo.Main.Version
	}
	if repositoryVersion, err := RepositoryVersion("."); err == nil && repositoryVersion != "" {
		return repositoryVersion
	}
	return unknownVersion
}

// RepositoryVersion opens the Git repository containing startDirectory and
// returns the tag at HEAD, or the abbreviated HEAD hash when HEAD is untagged.
func RepositoryVersion(startDirectory string) (string, error) {
	repository, err := git.PlainOpenWithOptions(startDirectory, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", err
	}
	head, err := repository.Head()
	if err != nil {
		return "", err
	}
	tags, err := repository.Tags()
	if err != nil {
		return "", err
	}
	defer tags.Close()

	var tagName string
	iterationErr := tags.ForEach(func(reference *plumbing.Reference) error {
		target := reference.Hash()
		if annotated, tagErr := repository.TagObject(target); tagErr == nil {
			commit, commitErr := annotated.Commit()
			if commitErr != nil {
				return nil
			}
			target = commit.Hash
		}
		if target == head.Hash() {
			tagName = reference.Name().Short()
			return storer.ErrStop
		}
		return nil
	})
	if iterationErr != nil && !errors.Is(iterationErr, storer.ErrStop) {
		return "", iterationErr
	}
	if tagName != "" {
		return tagName, nil
	}
	return head.Hash().String()[:shortHashLength], nil
}
