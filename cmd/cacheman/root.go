package main

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cacheman "github.com/appleboy/cacheman-promise"
	"github.com/appleboy/cacheman-promise/codec"
	"github.com/appleboy/cacheman-promise/config"
)

const closeTimeout = 10 * time.Second

// app is what every subcommand works with, built once per invocation.
type app struct {
	cfg   *config.Config
	log   cacheman.Logger
	sync  func() error
	cache cacheman.Cache[string]
}

func newRootCmd() (*cobra.Command, *app) {
	var (
		cfgFile string
		a       = new(app)
		v       = config.New()
	)

	root := &cobra.Command{
		Use:          "cacheman",
		Short:        "Typed cache facade over ristretto, bigcache, redis or bolt",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context(), v, cfgFile, cmd.ErrOrStderr())
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&cfgFile, "config", "", "config file (yaml, toml or json)")
	f.String("namespace", "", "cache namespace (default \"cache\")")
	f.String("engine", "", "engine kind: ristretto|bigcache|redis|bolt (default \"ristretto\")")
	f.String("log-level", "", "log level (default \"info\")")
	f.String("log-format", "", "log format: json|console (default \"console\")")
	f.String("log-backend", "", "log backend: zap|logrus|slog (default \"zap\")")
	f.Bool("background-writes", false, "run populate/delete writes of wrap and pull in the background")
	mustBind(v, "namespace", root, "namespace")
	mustBind(v, "engine.kind", root, "engine")
	mustBind(v, "log.level", root, "log-level")
	mustBind(v, "log.format", root, "log-format")
	mustBind(v, "log.backend", root, "log-backend")
	mustBind(v, "background_writes", root, "background-writes")

	root.AddCommand(
		newGetCmd(a),
		newSetCmd(a),
		newDelCmd(a),
		newPullCmd(a),
		newWrapCmd(a),
		newClearCmd(a),
		newServeCmd(a, v),
	)
	return root, a
}

func mustBind(v *viper.Viper, key string, cmd *cobra.Command, flag string) {
	if err := v.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func (a *app) open(ctx context.Context, v *viper.Viper, cfgFile string, logOut io.Writer) error {
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	log, sync, err := cfg.Log.Build(logOut)
	if err != nil {
		return err
	}
	eng, err := cfg.OpenEngine(ctx)
	if err != nil {
		return err
	}
	c, err := cacheman.New(config.CacheOptions[string](cfg, eng, codec.String{}, log))
	if err != nil {
		return errors.Join(err, eng.Close(ctx))
	}
	log.Debug("cache opened", cacheman.Fields{"engine": cfg.Engine.Kind, "ns": c.Namespace()})
	a.cfg, a.log, a.sync, a.cache = cfg, log, sync, c
	return nil
}

// close flushes pending background writes before the process exits.
func (a *app) close() error {
	if a.cache == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	err := a.cache.Close(ctx)
	if err != nil {
		a.log.Error("close failed", cacheman.Fields{"err": err})
	}
	_ = a.sync()
	a.cache = nil
	return err
}
