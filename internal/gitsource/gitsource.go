// Package gitsource loads Antora content from a commit of a git repository
// instead of the working tree.
package gitsource

import (
	"io"
	"path"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"git.home.luguber.info/inful/adocxref/internal/catalog"
	"git.home.luguber.info/inful/adocxref/internal/foundation/errors"
)

// DefaultRevision is read when no revision is given.
const DefaultRevision = "HEAD"

// Load opens the repository at repoPath and loads the content tree of
// revision.
func Load(repoPath, revision string) (*catalog.Catalog, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryGit, "open repository").
			WithContext("path", repoPath).
			Build()
	}
	return LoadRepository(repo, revision)
}

// LoadRepository loads the content tree of revision from an open
// repository.
func LoadRepository(repo *git.Repository, revision string) (*catalog.Catalog, error) {
	if revision == "" {
		revision = DefaultRevision
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(revision))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryGit, "resolve revision").
			WithContext("revision", revision).
			Build()
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryGit, "get commit object").
			WithContext("revision", revision).
			Build()
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryGit, "get tree").
			WithContext("commit", commit.Hash.String()).
			Build()
	}

	b := catalog.NewBuilder()
	err = tree.Files().ForEach(func(f *object.File) error {
		if !wanted(f.Name) {
			return nil
		}
		data, err := read(f)
		if err != nil {
			return errors.WrapError(err, errors.CategoryGit, "read blob").
				WithContext("path", f.Name).
				Build()
		}
		return b.AddFile(f.Name, data)
	})
	if err != nil {
		if _, ok := errors.AsClassified(err); ok {
			return nil, err
		}
		return nil, errors.WrapError(err, errors.CategoryGit, "walk tree").
			WithContext("commit", commit.Hash.String()).
			Build()
	}
	return b.Build()
}

// wanted reports whether a tree path can contribute to a catalog. Paths
// below hidden directories are skipped, as on disk.
func wanted(p string) bool {
	base := path.Base(p)
	if base != catalog.DescriptorName && path.Ext(base) != ".adoc" {
		return false
	}
	for _, seg := range strings.Split(path.Dir(p), "/") {
		if strings.HasPrefix(seg, ".") && seg != "." {
			return false
		}
	}
	return true
}

func read(f *object.File) ([]byte, error) {
	r, err := f.Reader()
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	return io.ReadAll(r)
}
