package kernel

import (
	"go.uber.org/zap"

	"github.com/sghaida/microkernel/di"
)

// Option configures a Kernel at construction.
type Option func(*Kernel)

// WithLogger sets the logger used for boot decisions. The default discards output.
func WithLogger(l *zap.Logger) Option {
	return func(k *Kernel) {
		if l != nil {
			k.logger = l
		}
	}
}

// WithFactories sets the registry that container definitions resolve
// factory names against.
func WithFactories(r *di.FactoryRegistry) Option {
	return func(k *Kernel) {
		if r != nil {
			k.factories = r
		}
	}
}

// WithLoader replaces the YAML configuration loader.
func WithLoader(l Loader) Option {
	return func(k *Kernel) {
		if l != nil {
			k.loader = l
		}
	}
}

// WithCompiler replaces the cache artifact compiler.
func WithCompiler(c Compiler) Option {
	return func(k *Kernel) {
		if c != nil {
			k.compiler = c
		}
	}
}

// WithEnviron sets the environment snapshot ("KEY=value" entries) exposed as
// parameters and to %env(NAME)% placeholders. Defaults to os.Environ().
func WithEnviron(environ []string) Option {
	return func(k *Kernel) {
		k.environ = append([]string{}, environ...)
	}
}

// WithPaths overrides individual directories. Empty fields keep their defaults.
func WithPaths(p Paths) Option {
	return func(k *Kernel) { k.overrides = p }
}

// WithName overrides the name derived from the app path.
func WithName(name string) Option {
	return func(k *Kernel) { k.name = name }
}

// WithVersion sets app.version. Defaults to "1.0".
func WithVersion(version string) Option {
	return func(k *Kernel) { k.version = version }
}

// WithCharset sets app.charset. Defaults to "UTF-8".
func WithCharset(charset string) Option {
	return func(k *Kernel) { k.charset = charset }
}

// WithSubEnvironment sets the default sub-environment. Defaults to "local".
func WithSubEnvironment(sub string) Option {
	return func(k *Kernel) { k.subEnvironment = sub }
}

// WithSetUp registers a hook run before calls are forwarded to the app
// service, until the first one resolves the service. A failing hook or boot
// aborts the call and the hook runs again on the next one.
func WithSetUp(fn func(*Kernel) error) Option {
	return func(k *Kernel) { k.setUp = fn }
}

// WithInit registers a hook run at the end of New.
func WithInit(fn func(*Kernel)) Option {
	return func(k *Kernel) { k.onInit = fn }
}

// WithCacheValidation makes the kernel record the configuration files a
// cached container was built from and rebuild it when any of them changed.
// By default an existing artifact is trusted as is.
func WithCacheValidation(enabled bool) Option {
	return func(k *Kernel) { k.validateCache = enabled }
}
