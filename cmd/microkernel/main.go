package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sghaida/microkernel/kernel"
)

const envPrefix = "MICROKERNEL"

// cli carries the state shared by all subcommands of one invocation.
type cli struct {
	v      *viper.Viper
	stderr io.Writer
	logger *zap.Logger
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func newRootCmd(stderr io.Writer) *cobra.Command {
	c := &cli{v: viper.New(), stderr: stderr}

	root := &cobra.Command{
		Use:           "microkernel",
		Short:         "Inspect and maintain an application's container cache",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "YAML file with flag defaults")
	flags.StringP("env", "e", "app", "environment name")
	flags.String("app-path", "", "application root (default: working directory)")
	flags.Bool("debug", false, "build the container without reading or writing the cache")
	flags.BoolP("verbose", "v", false, "enable debug logging")
	for _, name := range []string{"env", "app-path", "debug", "verbose"} {
		_ = c.v.BindPFlag(name, flags.Lookup(name))
	}

	root.AddCommand(
		newParamsCmd(c),
		newLayersCmd(c),
		newServicesCmd(c),
		newCacheCmd(c),
	)
	return root
}

// setup reads the config file and environment and builds the logger.
func (c *cli) setup(cmd *cobra.Command) error {
	c.v.SetEnvPrefix(envPrefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	if file, _ := cmd.Flags().GetString("config"); file != "" {
		c.v.SetConfigFile(file)
		if err := c.v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", file, err)
		}
	}

	config := zap.NewProductionConfig()
	if c.v.GetBool("verbose") {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(config.EncoderConfig),
		zapcore.AddSync(c.stderr),
		config.Level,
	)
	c.logger = zap.New(core)
	return nil
}

// kernel builds a kernel from the resolved flags.
func (c *cli) kernel(opts ...kernel.Option) (*kernel.Kernel, error) {
	appPath := c.v.GetString("app-path")
	if appPath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
		appPath = wd
	}
	opts = append([]kernel.Option{kernel.WithLogger(c.logger)}, opts...)
	return kernel.New(c.v.GetString("env"), appPath, c.v.GetBool("debug"), opts...), nil
}
