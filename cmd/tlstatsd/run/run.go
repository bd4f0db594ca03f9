// Package run implements the tlstatsd run and config subcommands.
package run

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tlstats/tlstats/monitor"
	"github.com/tlstats/tlstats/pkg/logger"
	"github.com/tlstats/tlstats/registry"
)

// GetCommand returns the run command.
func GetCommand() *cobra.Command {
	var configFile string
	c := &cobra.Command{
		Use:   "run",
		Short: "Run the tlstatsd daemon",
		Long: `Runs the aggregation monitor, the stats HTTP endpoint, and a synthetic
workload of goroutines recording thread-local stats.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := NewConfig()
			if configFile != "" {
				if err := config.FromTomlFile(configFile); err != nil {
					return err
				}
			}
			if err := config.Validate(); err != nil {
				return err
			}
			return runDaemon(config)
		},
	}
	c.Flags().StringVarP(&configFile, "config", "c", "", "Set the path to the configuration file.")
	return c
}

// GetConfigCommand returns the command that prints the default configuration.
func GetConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Display the default configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return toml.NewEncoder(os.Stdout).Encode(NewConfig())
		},
	}
}

func runDaemon(config *Config) error {
	if err := logger.InitZapLogger(config.Log); err != nil {
		return err
	}
	log := logger.BgLogger()
	log.Info("Starting tlstatsd",
		zap.Int("workload_workers", config.Workload.Workers),
		zap.String("http_bind_address", config.Monitor.HTTPBindAddress))

	reg := registry.New()
	mon := monitor.New(config.Monitor, reg)
	mon.WithLogger(log)
	if err := mon.Open(); err != nil {
		return errors.Wrap(err, "open monitor")
	}
	defer mon.Close()

	var srv *http.Server
	if config.Monitor.Enabled && config.Monitor.HTTPBindAddress != "" {
		handler := monitor.NewHandler(reg)
		handler.WithLogger(log)
		srv = &http.Server{
			Addr:    config.Monitor.HTTPBindAddress,
			Handler: handler,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("Stats endpoint failed", zap.Error(err))
			}
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	w := &workload{
		config: config.Workload,
		mon:    mon,
		logger: log,
	}
	err := w.run(ctx)

	log.Info("Shutting down tlstatsd")
	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if serr := srv.Shutdown(shutdownCtx); serr != nil && err == nil {
			err = errors.Wrap(serr, "shutdown stats endpoint")
		}
	}
	if err != nil {
		return err
	}

	fmt.Printf("tlstatsd stopped, %d stat keys published\n", reg.Len())
	return nil
}
