package kernel

import (
	"fmt"

	"go.uber.org/zap"
)

// AppServiceID is the service calls are forwarded to.
const AppServiceID = "app"

// Runner is implemented by app services that only handle "run".
type Runner interface {
	Run(args ...any) (any, error)
}

// Dispatcher is implemented by app services that handle arbitrary methods.
type Dispatcher interface {
	Call(method string, args ...any) (any, error)
}

// Run forwards to the app service's "run" method.
func (k *Kernel) Run(args ...any) (any, error) { return k.Invoke("run", args...) }

// Invoke forwards method and args to the app service. The first call runs
// the set-up hook and boots the container. A Dispatcher receives every
// method; a Runner only receives "run".
func (k *Kernel) Invoke(method string, args ...any) (any, error) {
	app, err := k.application()
	if err != nil {
		return nil, err
	}
	k.logger.Debug("forwarding call", zap.String("method", method), zap.Int("args", len(args)))

	if d, ok := app.(Dispatcher); ok {
		return d.Call(method, args...)
	}
	if r, ok := app.(Runner); ok && method == "run" {
		return r.Run(args...)
	}
	return nil, &UnsupportedMethodError{Method: method, AppType: fmt.Sprintf("%T", app)}
}

func (k *Kernel) application() (any, error) {
	if !k.initialized && k.setUp != nil {
		if err := k.setUp(k); err != nil {
			return nil, fmt.Errorf("kernel: set up: %w", err)
		}
	}
	c, err := k.Container()
	if err != nil {
		return nil, err
	}
	app, err := c.Get(AppServiceID)
	if err != nil {
		return nil, err
	}
	k.initialized = true
	return app, nil
}
