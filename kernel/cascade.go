package kernel

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/sghaida/microkernel/di"
)

// SubEnvironmentParameter selects the override layer when set by the base layer.
const SubEnvironmentParameter = "app.sub_environment"

// Loader reads one configuration file into a container.
//
// loader.YAML is the default implementation.
type Loader interface {
	Load(c *di.Container, dir, file string) error
}

// BaseLayer is the file name of the environment's base layer ("app.yml").
func BaseLayer(environment string) string { return environment + ".yml" }

// OverrideLayer is the file name of the sub-environment layer ("app.local.yml").
func OverrideLayer(environment, subEnvironment string) string {
	return environment + "." + subEnvironment + ".yml"
}

// Layers returns the configuration files for an environment in load order.
func Layers(environment, subEnvironment string) []string {
	return []string{BaseLayer(environment), OverrideLayer(environment, subEnvironment)}
}

// LoadLayers loads each layer present in configPath into c, in order, and
// returns the names of the layers that were loaded. Missing layers are
// skipped. The first failure stops the cascade with a *LayerLoadError;
// layers loaded before it are not rolled back.
func LoadLayers(c *di.Container, l Loader, configPath string, layers []string) ([]string, error) {
	loaded := make([]string, 0, len(layers))
	for _, layer := range layers {
		path := filepath.Join(configPath, layer)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return loaded, &LayerLoadError{Layer: layer, Path: path, Err: err}
		}
		if err := l.Load(c, configPath, layer); err != nil {
			return loaded, &LayerLoadError{Layer: layer, Path: path, Err: err}
		}
		loaded = append(loaded, layer)
	}
	return loaded, nil
}

// subEnvironmentOf reads app.sub_environment from c, falling back when c is
// nil or the parameter is unset or empty.
func subEnvironmentOf(c *di.Container, fallback string) string {
	if !c.HasParameter(SubEnvironmentParameter) {
		return fallback
	}
	v, err := c.Parameter(SubEnvironmentParameter)
	if err != nil {
		return fallback
	}
	if s := cast.ToString(v); s != "" {
		return s
	}
	return fallback
}

// loadConfiguration runs the cascade against c. The base layer is loaded
// first so that it can choose the override layer through
// app.sub_environment. It returns the full paths of both candidate layers,
// loaded or not, for cache freshness tracking.
func (k *Kernel) loadConfiguration(c *di.Container) ([]string, error) {
	base := BaseLayer(k.environment)
	loaded, err := LoadLayers(c, k.loader, k.paths.Config, []string{base})
	if err != nil {
		return nil, err
	}
	override := OverrideLayer(k.environment, subEnvironmentOf(c, k.subEnvironment))
	more, err := LoadLayers(c, k.loader, k.paths.Config, []string{override})
	if err != nil {
		return nil, err
	}
	k.logger.Debug("configuration loaded",
		zap.Strings("layers", append(loaded, more...)),
		zap.String("config_path", k.paths.Config),
	)
	return []string{
		filepath.Join(k.paths.Config, base),
		filepath.Join(k.paths.Config, override),
	}, nil
}
