package kernel_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sghaida/microkernel/di"
	"github.com/sghaida/microkernel/kernel"
	"github.com/sghaida/microkernel/loader"
)

func TestLayers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"app.yml", "app.local.yml"}, kernel.Layers("app", "local"))
	assert.Equal(t, []string{"console.yml", "console.prod.yml"}, kernel.Layers("console", "prod"))
}

func TestLoadLayers_SkipsMissing(t *testing.T) {
	t.Parallel()

	app := newAppDir(t, map[string]string{"app.local.yml": "parameters: {p: 2}\n"})
	c := di.NewContainer(nil, nil)

	loaded, err := kernel.LoadLayers(c, loader.NewYAML(), filepath.Join(app, "config"), kernel.Layers("app", "local"))
	require.NoError(t, err)
	assert.Equal(t, []string{"app.local.yml"}, loaded)
	assert.Equal(t, 2, param(t, c, "p"))
}

func TestLoadLayers_MissingConfigDir(t *testing.T) {
	t.Parallel()

	c := di.NewContainer(nil, nil)
	loaded, err := kernel.LoadLayers(c, loader.NewYAML(), filepath.Join(t.TempDir(), "nope"), kernel.Layers("app", "local"))
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestLoadLayers_FailureKeepsEarlierLayers(t *testing.T) {
	t.Parallel()

	app := newAppDir(t, map[string]string{
		"app.yml":       "parameters: {a: 1}\n",
		"app.local.yml": "parameters: [not, a, map\n",
	})
	c := di.NewContainer(nil, nil)

	loaded, err := kernel.LoadLayers(c, loader.NewYAML(), filepath.Join(app, "config"), kernel.Layers("app", "local"))
	require.Error(t, err)

	var layerErr *kernel.LayerLoadError
	require.True(t, errors.As(err, &layerErr))
	assert.Equal(t, "app.local.yml", layerErr.Layer)
	assert.Equal(t, filepath.Join(app, "config", "app.local.yml"), layerErr.Path)

	var fileErr *loader.FileError
	assert.True(t, errors.As(err, &fileErr))

	assert.Equal(t, []string{"app.yml"}, loaded)
	assert.Equal(t, 1, param(t, c, "a"), "earlier layers are not rolled back")
}

type failingLoader struct{ err error }

func (l failingLoader) Load(*di.Container, string, string) error { return l.err }

func TestLoadLayers_LoaderError(t *testing.T) {
	t.Parallel()

	app := newAppDir(t, map[string]string{"app.yml": "parameters: {}\n"})
	boom := errors.New("boom")

	_, err := kernel.LoadLayers(di.NewContainer(nil, nil), failingLoader{err: boom}, filepath.Join(app, "config"), []string{"app.yml"})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `"app.yml"`)
}

func TestCascadePrecedence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		layers map[string]string
		want   any
	}{
		{
			name: "override wins",
			layers: map[string]string{
				"app.yml":       "parameters: {p: 1}\n",
				"app.local.yml": "parameters: {p: 2}\n",
			},
			want: 2,
		},
		{
			name:   "base only",
			layers: map[string]string{"app.yml": "parameters: {p: 1}\n"},
			want:   1,
		},
		{
			name:   "override only",
			layers: map[string]string{"app.local.yml": "parameters: {p: 2}\n"},
			want:   2,
		},
		{
			name:   "neither",
			layers: map[string]string{},
			want:   nil,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			k := newKernel(newAppDir(t, tt.layers), true)
			c, err := k.Container()
			require.NoError(t, err)

			if tt.want == nil {
				assert.False(t, c.HasParameter("p"))
				return
			}
			assert.Equal(t, tt.want, param(t, c, "p"))
		})
	}
}

func TestCascade_BaseLayerSelectsSubEnvironment(t *testing.T) {
	t.Parallel()

	app := newAppDir(t, map[string]string{
		"app.yml":         "parameters: {app.sub_environment: staging, p: base}\n",
		"app.local.yml":   "parameters: {p: local}\n",
		"app.staging.yml": "parameters: {p: staging}\n",
	})
	k := newKernel(app, true)

	c, err := k.Container()
	require.NoError(t, err)
	assert.Equal(t, "staging", param(t, c, "p"))
	assert.Equal(t, "staging", k.SubEnvironment())
}

func TestCascade_SubEnvironmentOption(t *testing.T) {
	t.Parallel()

	app := newAppDir(t, map[string]string{
		"app.yml":      "parameters: {p: base}\n",
		"app.prod.yml": "parameters: {p: prod}\n",
	})
	k := newKernel(app, true, kernel.WithSubEnvironment("prod"))

	c, err := k.Container()
	require.NoError(t, err)
	assert.Equal(t, "prod", param(t, c, "p"))
	assert.Equal(t, "prod", param(t, c, "app.sub_environment"))
}

func TestCascade_EnvironmentPlaceholders(t *testing.T) {
	t.Parallel()

	app := newAppDir(t, map[string]string{
		"app.yml": `
parameters:
  env(DB_PORT): "5432"
  db.dsn: "postgres://%env(DB_HOST)%:%env(DB_PORT)%/%app.name%"
  region: "%app.region%"
`,
	})
	k := newKernel(app, true)

	c, err := k.Container()
	require.NoError(t, err)
	assert.Equal(t, "postgres://db.local:5432/App", param(t, c, "db.dsn"))
	assert.Equal(t, "eu", param(t, c, "region"))
}

func TestCascade_LayerErrorLeavesKernelUnbooted(t *testing.T) {
	t.Parallel()

	app := newAppDir(t, map[string]string{"app.yml": "services: {app: {}}\n"})
	k := newKernel(app, false)

	_, err := k.Container()
	require.Error(t, err)

	var layerErr *kernel.LayerLoadError
	require.ErrorAs(t, err, &layerErr)
	require.ErrorIs(t, err, loader.ErrMissingFactory)
	assert.Equal(t, kernel.StateUnbooted, k.BootState())

	_, statErr := os.Stat(k.ContainerCacheFilename())
	assert.True(t, os.IsNotExist(statErr), "nothing is persisted after a failed boot")
}

func TestCascade_CompileError(t *testing.T) {
	t.Parallel()

	app := newAppDir(t, map[string]string{"app.yml": "parameters: {p: \"%undefined%\"}\n"})
	k := newKernel(app, true)

	_, err := k.Container()

	var compileErr *kernel.CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.ErrorAs(t, err, &di.MissingParameterError{})
	assert.Equal(t, kernel.StateUnbooted, k.BootState())
}
