package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sghaida/microkernel/kernel"
	"github.com/sghaida/microkernel/watcher"
)

func newParamsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "params [PREFIX]",
		Short: "Print the compiled container parameters",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := c.kernel()
			if err != nil {
				return err
			}
			ctr, err := k.Container()
			if err != nil {
				return err
			}
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}

			params := ctr.Parameters()
			names := make([]string, 0, len(params))
			for name := range params {
				if strings.HasPrefix(name, prefix) {
					names = append(names, name)
				}
			}
			sort.Strings(names)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, name := range names {
				fmt.Fprintf(w, "%s\t%s\n", name, formatValue(params[name]))
			}
			return w.Flush()
		},
	}
}

func newLayersCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "layers",
		Short: "Print the configuration layers in load order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := c.kernel()
			if err != nil {
				return err
			}
			if _, err := k.Container(); err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, layer := range kernel.Layers(k.Environment(), k.SubEnvironment()) {
				status := "present"
				if _, err := os.Stat(filepath.Join(k.ConfigPath(), layer)); err != nil {
					status = "missing"
				}
				fmt.Fprintf(w, "%s\t%s\n", layer, status)
			}
			return w.Flush()
		},
	}
}

func newServicesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "services",
		Short: "Print the defined services and their factories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := c.kernel()
			if err != nil {
				return err
			}
			ctr, err := k.Container()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, id := range ctr.ServiceIDs() {
				def, ok := ctr.Definition(id)
				if !ok {
					fmt.Fprintf(w, "%s\t(instance)\t\n", id)
					continue
				}
				shared := "shared"
				if !def.Shared {
					shared = "prototype"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", id, def.Factory, shared)
			}
			return w.Flush()
		},
	}
}

func newCacheCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Maintain the container cache artifact",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "path",
			Short: "Print the cache artifact location",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				k, err := c.kernel()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), k.ContainerCacheFilename())
				return nil
			},
		},
		&cobra.Command{
			Use:   "warm",
			Short: "Rebuild the cache artifact from the configuration layers",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				k, err := c.kernel()
				if err != nil {
					return err
				}
				if k.IsDebug() {
					return errors.New("cache warm: the cache is not written in debug mode")
				}
				if err := k.ClearCache(); err != nil {
					return err
				}
				if _, err := k.Container(); err != nil {
					return err
				}
				if k.BootState() == kernel.StateFreshNoCache {
					fmt.Fprintf(cmd.OutOrStdout(), "caching disabled by %s\n", kernel.CacheParameter)
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), k.ContainerCacheFilename())
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove the cache artifact",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				k, err := c.kernel()
				if err != nil {
					return err
				}
				return k.ClearCache()
			},
		},
		newCacheWatchCmd(c),
	)
	return cmd
}

func newCacheWatchCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Clear the cache artifact whenever a layer file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := c.kernel()
			if err != nil {
				return err
			}
			debounce, _ := cmd.Flags().GetDuration("debounce")

			cfg := watcher.DefaultConfig(k.ConfigPath())
			cfg.Logger = c.logger
			if debounce > 0 {
				cfg.DebounceDur = debounce
			}
			w, err := watcher.New(cfg)
			if err != nil {
				return err
			}

			c.logger.Info("watching configuration", zap.String("dir", k.ConfigPath()))
			return w.Watch(cmd.Context(), func() {
				if err := k.ClearCache(); err != nil {
					c.logger.Error("clearing container cache", zap.Error(err))
					return
				}
				fmt.Fprintln(cmd.OutOrStdout(), "cleared", k.ContainerCacheFilename())
			})
		},
	}
	cmd.Flags().Duration("debounce", 0, "quiet period before clearing (default 250ms)")
	return cmd
}

// formatValue renders scalars as text and collections as YAML-ish flow.
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "~"
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = formatValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + formatValue(t[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return cast.ToString(v)
	}
}
