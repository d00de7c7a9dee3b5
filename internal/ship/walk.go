package ship

import (
	"io/fs"
	"iter"
	"path/filepath"
)

// WalkMatches lazily yields the files under root whose basename matches
// pattern, walking subdirectories recursively. Entries within each directory
// come in lexical order, so a given filesystem snapshot always produces the
// same sequence. Traversal errors are yielded with an empty path; the
// affected subtree is skipped and the walk continues. The sequence is
// single-pass and finite.
func WalkMatches(root string, pattern *Pattern) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if !yield("", err) {
					return filepath.SkipAll
				}
				return fs.SkipDir
			}
			if !d.Type().IsRegular() || !pattern.Match(d.Name()) {
				return nil
			}
			if !yield(path, nil) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}
