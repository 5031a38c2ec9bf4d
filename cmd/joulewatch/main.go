//go:build linux

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ja7ad/joulewatch/pkg/consumption"
	"github.com/ja7ad/joulewatch/pkg/logging"
	"github.com/ja7ad/joulewatch/pkg/monitor"
	"github.com/ja7ad/joulewatch/pkg/perf"
	"github.com/ja7ad/joulewatch/pkg/perf/rapl"
	"github.com/ja7ad/joulewatch/pkg/report"
)

const (
	backendPerf = "perf"
	backendRAPL = "rapl"
)

type opts struct {
	backend string

	// perf
	sudo     bool
	perfPath string
	events   []string
	interval time.Duration

	// rapl
	raplRoot string

	// model
	ema       float64
	tablePath string

	logLevel string
}

func main() {
	o := opts{}
	log := logging.New(logging.DefaultConfig())

	root := newRootCmd(&o, &log)
	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("joulewatch failed")
		os.Exit(1)
	}
}

func newRootCmd(o *opts, log *zerolog.Logger) *cobra.Command {
	def := perf.DefaultConfig()

	root := &cobra.Command{
		Use:   "joulewatch",
		Short: "Live package energy use with everyday comparisons",
		Long: `joulewatch reads RAPL energy counters, through perf stat or directly via
perf_event_open, prints the energy of every interval and the total since start,
and tells you what you could have done with that much energy.

Examples:
  joulewatch
  joulewatch -i 500ms
  joulewatch -e power/energy-pkg/ -e power/energy-ram/
  joulewatch --backend rapl
  joulewatch --table my-comparisons.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := logging.DefaultConfig()
			cfg.Level = o.logLevel
			*log = logging.New(cfg)
			return run(cmd.Context(), *o, *log)
		},
	}

	root.Flags().StringVar(&o.backend, "backend", backendPerf, "counter backend: perf (spawn perf stat) or rapl (perf_event_open)")
	root.Flags().BoolVar(&o.sudo, "sudo", def.Sudo, "run perf through sudo")
	root.Flags().StringVar(&o.perfPath, "perf", def.PerfPath, "perf binary")
	root.Flags().StringSliceVarP(&o.events, "event", "e", def.Events, "RAPL energy event to sample (repeatable)")
	root.Flags().DurationVarP(&o.interval, "interval", "i", def.Interval, "sampling interval (e.g. 1s, 500ms)")
	root.Flags().StringVar(&o.raplRoot, "rapl-root", rapl.DefaultRoot, "power PMU sysfs directory (rapl backend)")
	root.Flags().Float64Var(&o.ema, "ema", 0.5, "EMA alpha for the smoothed power [0..1]")
	root.Flags().StringVar(&o.tablePath, "table", "", "YAML comparison table (default: built-in)")
	root.Flags().StringVar(&o.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	return root
}

func run(ctx context.Context, o opts, log zerolog.Logger) error {
	if o.ema < 0 || o.ema > 1 {
		return fmt.Errorf("ema must be in [0,1]")
	}

	pcfg := perf.Config{
		Sudo:     o.sudo,
		PerfPath: o.perfPath,
		Events:   o.events,
		Interval: o.interval,
	}
	if err := pcfg.Validate(); err != nil {
		return err
	}
	events := pcfg.EventNames()
	interval := o.interval
	if interval == 0 {
		interval = time.Second
	}

	table := consumption.DefaultTable()
	if o.tablePath != "" {
		t, err := consumption.LoadTable(o.tablePath)
		if err != nil {
			return err
		}
		table = t
	}

	// Ctrl-C handling
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var src monitor.SampleSource
	switch o.backend {
	case backendPerf, "":
		argv := pcfg.Argv()
		log.Debug().Strs("argv", argv).Int("comparisons", table.Len()).Msg("starting perf")

		stream, err := perf.Start(ctx, argv)
		if err != nil {
			return err
		}
		defer stream.Close()

		log.Info().Int("pid", stream.Pid()).Strs("events", events).Dur("interval", interval).Msg("sampling")
		src = perf.NewReader(stream, events...)

	case backendRAPL:
		sampler, err := rapl.Open(ctx, rapl.Config{Root: o.raplRoot, Events: events, Interval: interval})
		if err != nil {
			return err
		}
		defer sampler.Close()

		log.Info().Str("root", o.raplRoot).Strs("events", events).Dur("interval", interval).Msg("sampling")
		src = sampler

	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", o.backend, backendPerf, backendRAPL)
	}

	m := &monitor.Monitor{
		Acc:     consumption.Config{Interval: interval, Alpha: o.ema},
		Table:   table,
		Out:     report.NewWriter(os.Stdout),
		Log:     log,
		Labeled: len(events) > 1,
	}

	stats, err := m.Run(src)
	if err != nil {
		return err
	}

	if ctx.Err() != nil {
		log.Info().Msg("interrupted")
	}
	logSummary(log, stats)
	return nil
}

func logSummary(log zerolog.Logger, stats monitor.Stats) {
	log.Info().Int("samples", stats.Samples()).Msg("sampling ended")
	for _, ev := range stats.Events {
		log.Info().
			Str("event", monitor.Label(ev.Event)).
			Int("samples", ev.Samples).
			Str("total", ev.Total.Humanized()).
			Float64("total_wh", ev.Total.WattHours()).
			Float64("total_kwh", ev.Total.KWh()).
			Str("avg_per_window", ev.Avg.EnergyJ.Humanized()).
			Float64("avg_w", ev.Avg.PowerW).
			Float64("smoothed_w", ev.SmoothedPowerW).
			Msg("summary")
	}
}
