package kernel

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Paths is the resolved directory layout of an application.
type Paths struct {
	App     string
	Base    string
	Config  string
	Storage string
	Log     string
	Cache   string
	Src     string
}

// ResolvePaths fills every empty field of overrides from its parent:
//
//	App     appPath ("." when empty)
//	Base    parent of App
//	Config  App/config
//	Storage Base/storage
//	Log     Storage/log
//	Cache   Storage/cache
//	Src     Base/src
//
// Paths are joined lexically and never canonicalized, so none of the
// directories need to exist.
func ResolvePaths(appPath string, overrides Paths) Paths {
	p := overrides
	if p.App == "" {
		p.App = appPath
	}
	if p.App == "" {
		p.App = "."
	}
	if p.Base == "" {
		p.Base = filepath.Join(p.App, "..")
	}
	if p.Config == "" {
		p.Config = filepath.Join(p.App, "config")
	}
	if p.Storage == "" {
		p.Storage = filepath.Join(p.Base, "storage")
	}
	if p.Log == "" {
		p.Log = filepath.Join(p.Storage, "log")
	}
	if p.Cache == "" {
		p.Cache = filepath.Join(p.Storage, "cache")
	}
	if p.Src == "" {
		p.Src = filepath.Join(p.Base, "src")
	}
	return p
}

var nameFilter = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

// DeriveName turns the last segment of appPath into an application name:
// characters outside [A-Za-z0-9_] are dropped and the first letter is
// upper-cased ("my-app!2" -> "Myapp2").
func DeriveName(appPath string) string {
	name := nameFilter.ReplaceAllString(filepath.Base(appPath), "")
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
