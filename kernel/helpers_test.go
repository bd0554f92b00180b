package kernel_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sghaida/microkernel/di"
	"github.com/sghaida/microkernel/kernel"
)

// runnerApp records every Run call.
type runnerApp struct {
	Name  string
	Calls [][]any
}

func (a *runnerApp) Run(args ...any) (any, error) {
	a.Calls = append(a.Calls, args)
	return "ran " + a.Name, nil
}

// dispatcherApp records every method it is called with.
type dispatcherApp struct {
	Methods []string
}

func (a *dispatcherApp) Call(method string, args ...any) (any, error) {
	a.Methods = append(a.Methods, method)
	if method == "fail" {
		return nil, errors.New("dispatcher: fail")
	}
	return len(args), nil
}

type plainApp struct{}

func testFactories() *di.FactoryRegistry {
	return di.NewFactoryRegistry().
		Provide("test.runner", func(args ...any) (any, error) {
			name, _ := args[0].(string)
			return &runnerApp{Name: name}, nil
		}).
		Provide("test.dispatcher", func(args ...any) (any, error) {
			return &dispatcherApp{}, nil
		}).
		Provide("test.plain", func(args ...any) (any, error) {
			return &plainApp{}, nil
		})
}

const runnerLayer = `
services:
  app:
    factory: test.runner
    arguments: ["%app.name%"]
`

// newAppDir creates {tmp}/app/config holding the given layer files and
// returns the app path. The default cache directory is {tmp}/storage/cache.
func newAppDir(t *testing.T, layers map[string]string) string {
	t.Helper()
	app := filepath.Join(t.TempDir(), "app")
	require.NoError(t, os.MkdirAll(filepath.Join(app, "config"), 0o755))
	for name, body := range layers {
		require.NoError(t, os.WriteFile(filepath.Join(app, "config", name), []byte(body), 0o644))
	}
	return app
}

func writeLayer(t *testing.T, app, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(app, "config", name), []byte(body), 0o644))
}

// newKernel returns an "app" environment kernel with a fixed environment
// snapshot and the test factories.
func newKernel(app string, debug bool, opts ...kernel.Option) *kernel.Kernel {
	base := []kernel.Option{
		kernel.WithEnviron([]string{"APP__REGION=eu", "DB_HOST=db.local"}),
		kernel.WithFactories(testFactories()),
	}
	return kernel.New("app", app, debug, append(base, opts...)...)
}

func param(t *testing.T, c *di.Container, name string) any {
	t.Helper()
	v, err := c.Parameter(name)
	require.NoError(t, err)
	return v
}
