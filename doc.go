// Package microkernel boots applications from a conventional directory
// layout and layered YAML configuration, and caches the compiled service
// container so later starts skip configuration entirely.
//
// The module is split into small packages:
//
//   - kernel: path resolution, parameters, the configuration cascade, the
//     container cache and dispatch to the "app" service
//   - di: the service container (parameters, definitions, named factories)
//   - loader: YAML layer files into a container
//   - compiler: compiled container to and from a cache artifact
//   - watcher: debounced notifications when layer files change
//   - cmd/microkernel: inspect parameters and services, warm or clear the cache
//   - examples/basket: a runnable application wired entirely from YAML
//
// A typical application:
//
//	k := kernel.New("app", appPath, false, kernel.WithFactories(factories))
//	out, err := k.Run(args...)
//
// with {appPath}/config/app.yml defining a service named "app".
package microkernel
