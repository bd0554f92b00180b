package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/sghaida/microkernel/di"
	"gopkg.in/yaml.v3"
)

var (
	// ErrImportCycle is returned when a file imports itself, directly or not.
	ErrImportCycle = errors.New("loader: import cycle")

	// ErrMissingFactory is returned for a service without a factory.
	ErrMissingFactory = errors.New("loader: service has no factory")
)

// FileError reports a failure to read, parse or apply one configuration file.
type FileError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *FileError) Error() string {
	return "loader: " + strconv.Quote(e.Path) + ": " + e.Err.Error()
}

func (e *FileError) Unwrap() error { return e.Err }

type document struct {
	Imports    []importEntry          `yaml:"imports"`
	Parameters map[string]any         `yaml:"parameters"`
	Services   map[string]serviceSpec `yaml:"services"`
}

type importEntry struct {
	Resource     string `yaml:"resource"`
	IgnoreErrors bool   `yaml:"ignore_errors"`
}

// UnmarshalYAML accepts both "- file.yml" and "- { resource: file.yml }".
func (i *importEntry) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		i.Resource = n.Value
		return nil
	}
	type plain importEntry
	return n.Decode((*plain)(i))
}

type serviceSpec struct {
	Factory   string `yaml:"factory"`
	Arguments []any  `yaml:"arguments"`
	Shared    *bool  `yaml:"shared"`
}

// YAML loads configuration files written in the layer format.
type YAML struct{}

// NewYAML returns a YAML loader.
func NewYAML() *YAML { return &YAML{} }

// Load reads dir/file (and its imports) into c.
//
// A missing file is an error here; callers that treat absence as normal
// check for the file first.
func (l *YAML) Load(c *di.Container, dir, file string) error {
	path := file
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, file)
	}
	return l.load(c, path, map[string]bool{})
}

func (l *YAML) load(c *di.Container, path string, visiting map[string]bool) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return &FileError{Path: path, Err: err}
	}
	if visiting[abs] {
		return &FileError{Path: path, Err: ErrImportCycle}
	}
	visiting[abs] = true
	defer delete(visiting, abs)

	raw, err := os.ReadFile(path)
	if err != nil {
		return &FileError{Path: path, Err: err}
	}

	doc, err := decode(raw)
	if err != nil {
		return &FileError{Path: path, Err: err}
	}

	base := filepath.Dir(path)
	for _, imp := range doc.Imports {
		target := imp.Resource
		if !filepath.IsAbs(target) {
			target = filepath.Join(base, target)
		}
		if err := l.load(c, target, visiting); err != nil {
			if imp.IgnoreErrors {
				continue
			}
			return err
		}
	}

	names := make([]string, 0, len(doc.Parameters))
	for name := range doc.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := c.SetParameter(name, doc.Parameters[name]); err != nil {
			return &FileError{Path: path, Err: err}
		}
	}

	ids := make([]string, 0, len(doc.Services))
	for id := range doc.Services {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		spec := doc.Services[id]
		if spec.Factory == "" {
			return &FileError{Path: path, Err: &serviceError{id: id, err: ErrMissingFactory}}
		}
		def := di.NewDefinition(spec.Factory, spec.Arguments...)
		if spec.Shared != nil {
			def.Shared = *spec.Shared
		}
		if err := c.Define(id, def); err != nil {
			return &FileError{Path: path, Err: err}
		}
	}
	return nil
}

func decode(raw []byte) (document, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return document{}, err
	}

	for name, v := range doc.Parameters {
		conv, err := stringKeys(v)
		if err != nil {
			return document{}, fmt.Errorf("parameter %q: %w", name, err)
		}
		doc.Parameters[name] = conv
	}
	for id, spec := range doc.Services {
		for i, v := range spec.Arguments {
			conv, err := stringKeys(v)
			if err != nil {
				return document{}, &serviceError{id: id, err: fmt.Errorf("argument %d: %w", i, err)}
			}
			spec.Arguments[i] = conv
		}
	}
	return doc, nil
}

// stringKeys rewrites the map[any]any that yaml.v3 produces for mappings
// with non-string keys ({1: a}) into map[string]any, recursively. Two keys
// that print the same ({1: a, 1.0: b}) are rejected.
func stringKeys(v any) (any, error) {
	switch t := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			key := fmt.Sprint(k)
			if _, dup := out[key]; dup {
				return nil, fmt.Errorf("duplicate key %q", key)
			}
			conv, err := stringKeys(item)
			if err != nil {
				return nil, err
			}
			out[key] = conv
		}
		return out, nil
	case map[string]any:
		for k, item := range t {
			conv, err := stringKeys(item)
			if err != nil {
				return nil, err
			}
			t[k] = conv
		}
		return t, nil
	case []any:
		for i, item := range t {
			conv, err := stringKeys(item)
			if err != nil {
				return nil, err
			}
			t[i] = conv
		}
		return t, nil
	default:
		return v, nil
	}
}

type serviceError struct {
	id  string
	err error
}

func (e *serviceError) Error() string { return "service " + strconv.Quote(e.id) + ": " + e.err.Error() }

func (e *serviceError) Unwrap() error { return e.err }
