package compiler

import (
	"errors"
	"io/fs"
	"os"
)

// StatSources records the current modification time of each path.
// Missing files are recorded with a zero ModTime.
func StatSources(paths []string) ([]Source, error) {
	out := make([]Source, 0, len(paths))
	for _, p := range paths {
		s := Source{Path: p}
		info, err := os.Stat(p)
		switch {
		case err == nil:
			s.ModTime = info.ModTime().UnixNano()
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Stale reports whether any recorded source changed, appeared or vanished
// since the artifact was written. An artifact without sources is never stale.
func (a *Artifact) Stale() (bool, error) {
	if a == nil || len(a.Sources) == 0 {
		return false, nil
	}
	paths := make([]string, len(a.Sources))
	for i, s := range a.Sources {
		paths[i] = s.Path
	}
	current, err := StatSources(paths)
	if err != nil {
		return false, err
	}
	for i := range current {
		if current[i].ModTime != a.Sources[i].ModTime {
			return true, nil
		}
	}
	return false, nil
}
