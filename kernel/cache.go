package kernel

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/sghaida/microkernel/compiler"
	"github.com/sghaida/microkernel/di"
)

// CacheParameter disables writing the cache artifact when set to a false value.
const CacheParameter = "container.cache"

// Compiler persists compiled containers. compiler.Compiler is the default
// implementation.
type Compiler interface {
	WriteFile(path string, c *di.Container, sources []compiler.Source) error
	ReadFile(path string, factories *di.FactoryRegistry) (*compiler.Artifact, error)
}

// BootState records how the kernel obtained its container.
type BootState int

const (
	// StateUnbooted means no container has been built, loaded or set.
	StateUnbooted BootState = iota
	// StateFreshDebug means the container was built in debug mode and not persisted.
	StateFreshDebug
	// StateFreshNoCache means the container was built and container.cache
	// prevented persisting it.
	StateFreshNoCache
	// StateFreshCached means the container was built and written to the cache.
	StateFreshCached
	// StateLoadedFromCache means the container was read from the cache artifact.
	StateLoadedFromCache
	// StateInjected means the container was provided through SetContainer.
	StateInjected
)

func (s BootState) String() string {
	switch s {
	case StateUnbooted:
		return "unbooted"
	case StateFreshDebug:
		return "fresh-debug"
	case StateFreshNoCache:
		return "fresh-nocache"
	case StateFreshCached:
		return "fresh-cached"
	case StateLoadedFromCache:
		return "loaded-from-cache"
	case StateInjected:
		return "injected"
	default:
		return "unknown"
	}
}

// Booted reports whether the kernel holds a container.
func (s BootState) Booted() bool { return s != StateUnbooted }

// CacheFilename returns the artifact path for an environment and application
// root: {cachePath}/container_{md5hex(environment+appPath)}.cache.
func CacheFilename(cachePath, environment, appPath string) string {
	sum := md5.Sum([]byte(environment + appPath))
	return filepath.Join(cachePath, "container_"+hex.EncodeToString(sum[:])+".cache")
}

// ContainerIsCacheable reports whether c may be persisted. A missing
// container.cache parameter means yes; otherwise the value is coerced to a
// bool ("false", "0", 0 and nil all mean no). Values that cannot be
// coerced count as yes.
func ContainerIsCacheable(c *di.Container) bool {
	if !c.HasParameter(CacheParameter) {
		return true
	}
	v, err := c.Parameter(CacheParameter)
	if err != nil {
		return true
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return true
	}
	return b
}

// ContainerCacheFilename returns the artifact path for this kernel.
func (k *Kernel) ContainerCacheFilename() string {
	return CacheFilename(k.paths.Cache, k.environment, k.paths.App)
}

// ClearCache removes this kernel's cache artifact. A missing artifact is not
// an error. The kernel's current container, if any, is kept.
func (k *Kernel) ClearCache() error {
	filename := k.ContainerCacheFilename()
	if err := os.Remove(filename); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	k.logger.Info("container cache cleared", zap.String("cache_file", filename))
	return nil
}

// ContainerIsCacheable boots the kernel if needed and reports whether its
// container allows persisting.
func (k *Kernel) ContainerIsCacheable() (bool, error) {
	c, err := k.Container()
	if err != nil {
		return false, err
	}
	return ContainerIsCacheable(c), nil
}

// boot obtains a container: built in debug mode, loaded from the artifact
// when one exists, otherwise built and persisted when cacheable. The
// container is adopted only once every step succeeded.
func (k *Kernel) boot() error {
	if k.container != nil {
		return nil
	}
	log := k.logger.With(zap.String("environment", k.environment))

	if k.debug {
		c, _, err := k.build()
		if err != nil {
			return err
		}
		return k.adopt(c, StateFreshDebug)
	}

	filename := k.ContainerCacheFilename()
	log = log.With(zap.String("cache_file", filename))

	_, err := os.Stat(filename)
	switch {
	case err == nil:
		art, err := k.compiler.ReadFile(filename, k.factories)
		if err != nil {
			return &CacheLoadError{Path: filename, Err: err}
		}
		stale := false
		if k.validateCache {
			if stale, err = art.Stale(); err != nil {
				return &CacheLoadError{Path: filename, Err: err}
			}
		}
		if !stale {
			return k.adopt(art.Container, StateLoadedFromCache)
		}
		log.Info("container cache is stale, rebuilding")
	case !errors.Is(err, fs.ErrNotExist):
		return &CacheLoadError{Path: filename, Err: err}
	}

	c, candidates, err := k.build()
	if err != nil {
		return err
	}
	if !ContainerIsCacheable(c) {
		log.Debug("container cache disabled by parameter", zap.String("parameter", CacheParameter))
		return k.adopt(c, StateFreshNoCache)
	}

	var sources []compiler.Source
	if k.validateCache {
		if sources, err = compiler.StatSources(candidates); err != nil {
			return &CacheWriteError{Path: filename, Err: err}
		}
	}
	if err := k.compiler.WriteFile(filename, c, sources); err != nil {
		return &CacheWriteError{Path: filename, Err: err}
	}
	return k.adopt(c, StateFreshCached)
}

// build creates a container seeded with the kernel parameters, runs the
// configuration cascade and compiles it.
func (k *Kernel) build() (*di.Container, []string, error) {
	c := di.NewContainer(k.ContainerParameters(), k.factories, di.WithEnv(envMap(k.environ)))
	candidates, err := k.loadConfiguration(c)
	if err != nil {
		return nil, nil, err
	}
	if err := c.Compile(); err != nil {
		return nil, nil, &CompileError{Err: err}
	}
	return c, candidates, nil
}

func (k *Kernel) adopt(c *di.Container, state BootState) error {
	if c == nil {
		return ErrContainerNotFound
	}
	k.container = c
	k.state = state
	k.logger.Info("kernel booted",
		zap.String("environment", k.environment),
		zap.Stringer("state", state),
		zap.Int("services", len(c.ServiceIDs())),
	)
	return nil
}
