// Command evtraced is the daemon entry point for the logging manager:
// it loads a declarative <loggers> configuration and a provider
// registry from disk, starts the Manager, watches the config file for
// changes, and optionally forwards diagnostic alerts to SQS. Grounded
// on cmd/rigd/main.go's shape: parse flags, construct dependencies,
// serve until a signal or an unrecoverable error arrives.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matgreaves/evtrace/connect"
	evtpgx "github.com/matgreaves/evtrace/connect/pgx"
	"github.com/matgreaves/evtrace/connect/s3x"
	"github.com/matgreaves/evtrace/connect/sqsx"
	"github.com/matgreaves/evtrace/connect/temporalx"
	"github.com/matgreaves/evtrace/evtid"
	"github.com/matgreaves/evtrace/evtspec"
	"github.com/matgreaves/evtrace/manager"
	"github.com/matgreaves/evtrace/manager/configstore"
	"github.com/matgreaves/evtrace/manager/schedule"
	"github.com/matgreaves/evtrace/xmlconfig"
)

func main() {
	configPath := flag.String("config", "", "path to a <loggers> configuration file")
	providersPath := flag.String("providers", "", "path to a JSON {name: guid} provider registry")
	alerts := flag.Bool("alerts", false, "forward diagnostic events to the SQS queue named by SQS_QUEUE_URL")
	temporalSchedule := flag.Bool("temporal-rotation", false, "drive rotation from a Temporal workflow instead of the caller's own clock")
	configDB := flag.Bool("configdb", false, "poll a Postgres-backed configuration in addition to -config's file mtime")
	archive := flag.Bool("archive", false, "upload rotated files to S3 before a retention sweep deletes them")
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "evtraced: -config is required")
		os.Exit(1)
	}

	registry := evtspec.NewProviderRegistry()
	if *providersPath != "" {
		if err := loadProviders(registry, *providersPath); err != nil {
			fmt.Fprintf(os.Stderr, "evtraced: load providers: %v\n", err)
			os.Exit(1)
		}
	}

	tel, err := manager.NewTelemetry()
	if err != nil {
		fmt.Fprintf(os.Stderr, "evtraced: telemetry: %v\n", err)
		os.Exit(1)
	}

	var wiring *connect.Wiring
	needWiring := *alerts || *temporalSchedule || *configDB || *archive
	if needWiring {
		var err error
		wiring, err = connect.ParseWiring(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "evtraced: parse wiring: %v\n", err)
			os.Exit(1)
		}
	}

	opts := []manager.Option{manager.WithTelemetry(tel)}
	if *archive {
		up, err := s3x.NewUploader(context.Background(), wiring.Egress("archive"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "evtraced: archive uploader: %v\n", err)
			os.Exit(1)
		}
		opts = append(opts, manager.WithArchiver(up))
	}

	m := manager.New(registry, opts...)
	if err := m.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "evtraced: start: %v\n", err)
		os.Exit(1)
	}
	defer m.Shutdown()

	cfg, err := xmlconfig.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "evtraced: load config: %v\n", err)
		os.Exit(1)
	}
	if err := m.SetConfiguration(*cfg); err != nil {
		fmt.Fprintf(os.Stderr, "evtraced: apply config: %v\n", err)
		os.Exit(1)
	}
	m.WatchConfigFile(*configPath, xmlconfig.Load)

	if *alerts {
		ctx := context.Background()
		notifier, err := sqsx.NewNotifier(ctx, wiring.Egress("alerts"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "evtraced: alert notifier: %v\n", err)
			os.Exit(1)
		}
		stop := m.WatchAlerts(ctx, notifier)
		defer stop()
	}

	if *temporalSchedule {
		tc, err := temporalx.Dial(wiring.Egress("temporal"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "evtraced: temporal dial: %v\n", err)
			os.Exit(1)
		}
		defer tc.Close()
		w, err := schedule.StartWorker(tc, m)
		if err != nil {
			fmt.Fprintf(os.Stderr, "evtraced: temporal worker: %v\n", err)
			os.Exit(1)
		}
		defer w.Stop()
	}

	if *configDB {
		ctx := context.Background()
		pool, err := evtpgx.Connect(ctx, wiring.Egress("configdb"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "evtraced: configdb connect: %v\n", err)
			os.Exit(1)
		}
		defer pool.Close()
		store := configstore.New(pool, m)
		go store.Run(ctx)
		defer store.Stop()
	}

	fmt.Fprintf(os.Stderr, "evtraced: running with config %s\n", *configPath)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	fmt.Fprintf(os.Stderr, "evtraced: received %s, shutting down\n", sig)
}

// loadProviders registers every entry of a JSON object mapping provider
// name to GUID string into reg. Providers are declared by out-of-scope
// provider-side code (§1); this is the simplest bridge from that
// external registration source to evtspec.ProviderRegistry.
func loadProviders(reg *evtspec.ProviderRegistry, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	for name, raw := range entries {
		id, err := evtid.Parse(raw)
		if err != nil {
			return fmt.Errorf("provider %s: %w", name, err)
		}
		reg.Register(name, id)
	}
	return nil
}
