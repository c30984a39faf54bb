package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ryandielhenn/maelnode/internal/telemetry"
	"github.com/ryandielhenn/maelnode/internal/version"
	"github.com/ryandielhenn/maelnode/pkg/node"
	"github.com/ryandielhenn/maelnode/pkg/registry"
)

var _config = NewDefaultConfig()

// NewRunCmd returns the command that runs a node over stdin/stdout
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run a node: protocol messages in on stdin, replies out on stdout",
		PreRunE: loadConfig,
		RunE:    runNode,
	}
	AddRunFlags(cmd)
	return cmd
}

// AddRunFlags adds flags to the Run command
func AddRunFlags(cmd *cobra.Command) {
	cmd.Flags().String("log-level", _config.LogLevel, "debug, info, warn, error")
	cmd.Flags().String("metrics-listen", _config.MetricsListen, "optional IP:Port serving /metrics")
	cmd.Flags().StringSlice("etcd", _config.Etcd, "optional etcd endpoints for liveness registration")
	cmd.Flags().Int64("etcd-ttl", _config.EtcdTTL, "registration lease TTL in seconds")
}

// Bind all flags and read the config into viper
func loadConfig(cmd *cobra.Command, args []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	viper.SetEnvPrefix("MAELNODE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	return viper.Unmarshal(_config)
}

func runNode(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(_config.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	telemetry.SetBuildInfo(version.Version, version.GitSHA)

	n := node.New(os.Stdout, logger)

	// Optional liveness registration: once init assigns an identity, put it
	// in etcd under a lease so the harness can see which nodes are up.
	var deregister func()
	if len(_config.Etcd) > 0 {
		cli, err := registry.NewClient(_config.Etcd)
		if err != nil {
			return fmt.Errorf("etcd client: %w", err)
		}
		defer cli.Close()

		n.OnInit(func(id string, peers []string) {
			host, _ := os.Hostname()
			value := fmt.Sprintf("%s/%d", host, os.Getpid())
			leaseID, cancel, err := registry.Register(context.Background(), cli, id, value, _config.EtcdTTL)
			if err != nil {
				// Registration is advisory; the protocol must keep running.
				logger.Warn("etcd registration failed", zap.Error(err))
				return
			}
			logger.Info("registered in etcd", zap.String("node_id", id))
			deregister = func() {
				cancel()
				_, _ = cli.Revoke(context.Background(), leaseID)
			}
		})
	}
	defer func() {
		if deregister != nil {
			deregister()
		}
	}()

	if _config.MetricsListen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", telemetry.MetricsHandler())
		go func() {
			if err := http.ListenAndServe(_config.MetricsListen, mux); err != nil {
				logger.Warn("metrics listener stopped", zap.Error(err))
			}
		}()
		logger.Info("serving metrics", zap.String("addr", _config.MetricsListen))
	}

	logger.Info("reading protocol messages from stdin")
	if err := n.Run(os.Stdin); err != nil {
		logger.Error("node stopped", zap.Error(err))
		return err
	}
	return nil
}

// newLogger builds a production zap logger on stderr. Stdout carries
// protocol frames, so every diagnostic must stay off it.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}
