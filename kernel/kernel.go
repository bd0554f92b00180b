package kernel

import (
	"os"

	"go.uber.org/zap"

	"github.com/sghaida/microkernel/compiler"
	"github.com/sghaida/microkernel/di"
	"github.com/sghaida/microkernel/loader"
)

const (
	defaultVersion        = "1.0"
	defaultCharset        = "UTF-8"
	defaultSubEnvironment = "local"
)

// Kernel boots a container for one environment of an application and
// forwards calls to its "app" service.
type Kernel struct {
	environment    string
	subEnvironment string
	debug          bool
	name           string
	version        string
	charset        string
	appPath        string
	paths          Paths
	overrides      Paths

	environ       []string
	factories     *di.FactoryRegistry
	loader        Loader
	compiler      Compiler
	logger        *zap.Logger
	validateCache bool
	setUp         func(*Kernel) error
	onInit        func(*Kernel)

	container   *di.Container
	state       BootState
	initialized bool
}

// New returns a kernel for environment rooted at appPath. An empty appPath
// resolves against the working directory. No files are touched until the
// container is first needed.
func New(environment, appPath string, debug bool, opts ...Option) *Kernel {
	k := &Kernel{
		environment:    environment,
		subEnvironment: defaultSubEnvironment,
		debug:          debug,
		appPath:        appPath,
		version:        defaultVersion,
		charset:        defaultCharset,
		factories:      di.NewFactoryRegistry(),
		loader:         loader.NewYAML(),
		compiler:       compiler.New(),
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(k)
		}
	}
	if k.environ == nil {
		k.environ = os.Environ()
	}
	k.paths = ResolvePaths(k.appPath, k.overrides)
	if k.onInit != nil {
		k.onInit(k)
	}
	return k
}

// Container returns the kernel's container, booting on first use. Later
// calls return the same instance.
func (k *Kernel) Container() (*di.Container, error) {
	if err := k.boot(); err != nil {
		return nil, err
	}
	if k.container == nil {
		return nil, ErrContainerNotFound
	}
	return k.container, nil
}

// SetContainer provides a ready container, bypassing boot. It can be called
// once, and not after the kernel booted.
func (k *Kernel) SetContainer(c *di.Container) error {
	if k.container != nil {
		return ErrContainerAlreadySet
	}
	if c == nil {
		return di.ErrNilContainer
	}
	k.container = c
	k.state = StateInjected
	return nil
}

// BootState reports how the container was obtained.
func (k *Kernel) BootState() BootState { return k.state }

// Initialized reports whether the set-up hook has completed.
func (k *Kernel) Initialized() bool { return k.initialized }

// Factories returns the registry container definitions resolve against.
func (k *Kernel) Factories() *di.FactoryRegistry { return k.factories }

// Logger returns the kernel's logger.
func (k *Kernel) Logger() *zap.Logger { return k.logger }

// Environment returns the environment name given to New.
func (k *Kernel) Environment() string { return k.environment }

// SubEnvironment returns app.sub_environment from the container when one
// exists, otherwise the configured default.
func (k *Kernel) SubEnvironment() string { return subEnvironmentOf(k.container, k.subEnvironment) }

func (k *Kernel) SetSubEnvironment(sub string) { k.subEnvironment = sub }

// Name returns the application name, derived from the app path on first use
// unless set explicitly.
func (k *Kernel) Name() string {
	if k.name == "" {
		k.name = DeriveName(k.paths.App)
	}
	return k.name
}

func (k *Kernel) SetName(name string) { k.name = name }

func (k *Kernel) Version() string { return k.version }

func (k *Kernel) SetVersion(version string) { k.version = version }

// Charset returns the configured charset, "UTF-8" when unset.
func (k *Kernel) Charset() string {
	if k.charset == "" {
		k.charset = defaultCharset
	}
	return k.charset
}

func (k *Kernel) SetCharset(charset string) { k.charset = charset }

func (k *Kernel) IsDebug() bool { return k.debug }

func (k *Kernel) SetDebug(debug bool) { k.debug = debug }

// Paths returns the resolved directory layout.
func (k *Kernel) Paths() Paths { return k.paths }

// Directory setters pin a single entry and re-derive the unpinned ones, so
// SetAppPath moves Base, Storage and the rest along with it. An empty value
// unpins the entry.

func (k *Kernel) AppPath() string         { return k.paths.App }
func (k *Kernel) SetAppPath(p string)     { k.setPath(&k.overrides.App, p) }
func (k *Kernel) BasePath() string        { return k.paths.Base }
func (k *Kernel) SetBasePath(p string)    { k.setPath(&k.overrides.Base, p) }
func (k *Kernel) ConfigPath() string      { return k.paths.Config }
func (k *Kernel) SetConfigPath(p string)  { k.setPath(&k.overrides.Config, p) }
func (k *Kernel) StoragePath() string     { return k.paths.Storage }
func (k *Kernel) SetStoragePath(p string) { k.setPath(&k.overrides.Storage, p) }
func (k *Kernel) LogPath() string         { return k.paths.Log }
func (k *Kernel) SetLogPath(p string)     { k.setPath(&k.overrides.Log, p) }
func (k *Kernel) CachePath() string       { return k.paths.Cache }
func (k *Kernel) SetCachePath(p string)   { k.setPath(&k.overrides.Cache, p) }
func (k *Kernel) SrcPath() string         { return k.paths.Src }
func (k *Kernel) SetSrcPath(p string)     { k.setPath(&k.overrides.Src, p) }

func (k *Kernel) setPath(field *string, p string) {
	*field = p
	k.paths = ResolvePaths(k.appPath, k.overrides)
}
