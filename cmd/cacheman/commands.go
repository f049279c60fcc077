package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cacheman "github.com/appleboy/cacheman-promise"
	"github.com/appleboy/cacheman-promise/internal/resp"
)

const nilReply = "(nil)"

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY...",
		Short: "Print the value of each key, or (nil) when absent",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				v, ok, err := a.cache.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !ok {
					v = nilReply
				}
				fmt.Fprintln(out, v)
				return nil
			}
			vals, _, err := a.cache.GetMany(cmd.Context(), args)
			if err != nil {
				return err
			}
			for _, k := range args {
				v, ok := vals[k]
				if !ok {
					v = nilReply
				}
				fmt.Fprintf(out, "%s\t%s\n", k, v)
			}
			return nil
		},
	}
}

func newSetCmd(a *app) *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Store VALUE under KEY",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := cacheman.NewAsync(a.cache).Set(cmd.Context(), args[0], args[1], ttl)
			if _, err := p.Await(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "time to live; 0 uses default_ttl, negative never expires")
	return cmd
}

func newDelCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "del KEY...",
		Short: "Delete keys",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cache.Del(cmd.Context(), args...); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}
}

func newPullCmd(a *app) *cobra.Command {
	var def string
	cmd := &cobra.Command{
		Use:   "pull KEY",
		Short: "Print the value of KEY and delete it; print --default when absent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.cache.Pull(cmd.Context(), args[0], def)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
	cmd.Flags().StringVar(&def, "default", nilReply, "value printed when KEY is absent")
	return cmd
}

func newWrapCmd(a *app) *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "wrap KEY VALUE",
		Short: "Print the cached value of KEY, storing VALUE first on a miss",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.cache.WrapValue(cmd.Context(), args[0], args[1], ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "time to live of a stored VALUE; 0 uses default_ttl")
	return cmd
}

func newClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every key in the namespace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cache.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}
}

func newServeCmd(a *app, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the namespace over the Redis protocol until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return resp.Run(cmd.Context(), a.cfg.Serve.Addr, a.cache, a.log)
		},
	}
	cmd.Flags().String("addr", "", "listen address (default \":6380\")")
	if err := v.BindPFlag("serve.addr", cmd.Flags().Lookup("addr")); err != nil {
		panic(err)
	}
	return cmd
}
