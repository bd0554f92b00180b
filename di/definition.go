package di

import (
	"fmt"
	"strings"
)

// Definition describes how the container builds one service.
//
// Arguments may contain parameter placeholders ("%name%", "%env(NAME)%") and
// service references ("@id", "@?id" for optional). Compile replaces them with
// resolved values and Reference markers.
type Definition struct {
	Factory   string `cbor:"factory"`
	Arguments []any  `cbor:"arguments,omitempty"`
	Shared    bool   `cbor:"shared"`
}

// NewDefinition returns a shared definition for factory with the given arguments.
func NewDefinition(factory string, args ...any) Definition {
	return Definition{Factory: factory, Arguments: args, Shared: true}
}

// Reference points at another service. Compiled definitions carry references
// instead of the "@id" strings found in configuration files.
type Reference struct {
	ID       string `cbor:"id"`
	Optional bool   `cbor:"optional,omitempty"`
}

func (r Reference) String() string {
	if r.Optional {
		return "@?" + r.ID
	}
	return "@" + r.ID
}

// parseArgument turns a raw configuration argument into its compiled form.
func (c *Container) parseArgument(v any) (any, error) {
	switch t := v.(type) {
	case string:
		switch {
		case strings.HasPrefix(t, "@@"):
			return t[1:], nil
		case strings.HasPrefix(t, "@?"):
			return Reference{ID: t[2:], Optional: true}, nil
		case strings.HasPrefix(t, "@") && len(t) > 1:
			return Reference{ID: t[1:]}, nil
		}
		return c.resolveString(t, nil)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			r, err := c.parseArgument(item)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			r, err := c.parseArgument(item)
			if err != nil {
				return nil, err
			}
			out[k] = r
		}
		return out, nil
	default:
		return v, nil
	}
}

// resolveValue substitutes parameter placeholders inside v.
func (c *Container) resolveValue(v any, stack []string) (any, error) {
	switch t := v.(type) {
	case string:
		return c.resolveString(t, stack)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			r, err := c.resolveValue(item, stack)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			r, err := c.resolveValue(item, stack)
			if err != nil {
				return nil, err
			}
			out[k] = r
		}
		return out, nil
	default:
		return v, nil
	}
}

// resolveString handles "%name%" (keeps the parameter's type), embedded
// placeholders (interpolated as text) and the "%%" escape.
func (c *Container) resolveString(s string, stack []string) (any, error) {
	if !strings.Contains(s, "%") {
		return s, nil
	}
	if len(s) > 2 && s[0] == '%' && s[len(s)-1] == '%' && !strings.ContainsAny(s[1:len(s)-1], "% ") {
		return c.resolvePlaceholder(s[1:len(s)-1], stack)
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			b.WriteByte(s[i])
			continue
		}
		if i+1 < len(s) && s[i+1] == '%' {
			b.WriteByte('%')
			i++
			continue
		}
		end := strings.IndexByte(s[i+1:], '%')
		name := ""
		if end >= 0 {
			name = s[i+1 : i+1+end]
		}
		if end < 0 || name == "" || strings.Contains(name, " ") {
			b.WriteByte('%')
			continue
		}
		v, err := c.resolvePlaceholder(name, stack)
		if err != nil {
			return nil, err
		}
		switch v.(type) {
		case []any, map[string]any:
			return nil, fmt.Errorf("di: parameter %q is not scalar and cannot be embedded in %q", name, s)
		}
		fmt.Fprint(&b, v)
		i += end + 1
	}
	return b.String(), nil
}

func (c *Container) resolvePlaceholder(name string, stack []string) (any, error) {
	if strings.HasPrefix(name, "env(") && strings.HasSuffix(name, ")") {
		return c.resolveEnv(name[4:len(name)-1], stack)
	}
	return c.resolveParameter(name, stack)
}

func (c *Container) resolveParameter(name string, stack []string) (any, error) {
	for _, seen := range stack {
		if seen == name {
			return nil, CircularReferenceError{Path: append(append([]string{}, stack...), name)}
		}
	}
	raw, ok := c.params[name]
	if !ok {
		return nil, MissingParameterError{Name: name}
	}
	return c.resolveValue(raw, append(stack, name))
}

func (c *Container) resolveEnv(name string, stack []string) (any, error) {
	if v, ok := c.env[name]; ok {
		return v, nil
	}
	fallback := "env(" + name + ")"
	if _, ok := c.params[fallback]; ok {
		return c.resolveParameter(fallback, stack)
	}
	return nil, MissingEnvError{Name: name}
}
