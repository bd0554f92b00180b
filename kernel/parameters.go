package kernel

import (
	"strings"
)

// EnvParameters converts an environment snapshot ("KEY=value" entries, as
// returned by os.Environ) into container parameters. Keys are lower-cased and
// "__" becomes ".", so APP__DB__HOST is exposed as app.db.host. Entries
// without a name are skipped.
func EnvParameters(environ []string) map[string]any {
	out := make(map[string]any, len(environ))
	for key, value := range envMap(environ) {
		out[strings.ToLower(strings.ReplaceAll(key, "__", "."))] = value
	}
	return out
}

// envMap splits an environment snapshot into raw names and values. When a
// name repeats the last entry wins, as with os.Getenv.
func envMap(environ []string) map[string]string {
	out := make(map[string]string, len(environ))
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		out[key] = value
	}
	return out
}

// ContainerParameters returns the parameters a freshly built container is
// seeded with: the environment snapshot first, then the kernel's own app.*
// keys, which win on collision. Calling it repeatedly yields equal maps.
func (k *Kernel) ContainerParameters() map[string]any {
	params := EnvParameters(k.environ)
	for key, value := range map[string]any{
		"app.name":            k.Name(),
		"app.version":         k.Version(),
		"app.environment":     k.environment,
		"app.sub_environment": k.SubEnvironment(),
		"app.debug":           k.debug,
		"app.charset":         k.Charset(),
		"app.path":            k.paths.App,
		"app.config_path":     k.paths.Config,
		"app.base_path":       k.paths.Base,
		"app.storage_path":    k.paths.Storage,
		"app.log_path":        k.paths.Log,
		"app.cache_path":      k.paths.Cache,
		"app.src_path":        k.paths.Src,
	} {
		params[key] = value
	}
	return params
}

// AppParameters is an alias for ContainerParameters.
func (k *Kernel) AppParameters() map[string]any { return k.ContainerParameters() }
