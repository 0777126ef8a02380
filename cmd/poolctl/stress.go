// File: cmd/poolctl/stress.go
// Author: momentics <momentics@gmail.com>
//
// Concurrent acquire/hold/release load with an owner-stamp aliasing check.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/momentics/hioload-pool/affinity"
	"github.com/momentics/hioload-pool/api"
	"github.com/momentics/hioload-pool/control"
	"github.com/momentics/hioload-pool/internal/logging"
	"github.com/momentics/hioload-pool/pool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type stressOptions struct {
	Workers     int
	Iterations  int
	Hold        int
	Pin         bool
	MetricsAddr string
}

var stressOpts = stressOptions{
	Workers:    8,
	Iterations: 100000,
	Hold:       16,
}

func init() {
	cmd := newStressCmd()
	f := cmd.Flags()
	f.IntVarP(&stressOpts.Workers, "workers", "w", stressOpts.Workers, "Concurrent workers")
	f.IntVarP(&stressOpts.Iterations, "iterations", "n", stressOpts.Iterations, "Acquires per worker")
	f.IntVar(&stressOpts.Hold, "hold", stressOpts.Hold, "Objects each worker holds before releasing")
	f.BoolVar(&stressOpts.Pin, "pin", false, "Pin each worker to a CPU")
	f.StringVar(&stressOpts.MetricsAddr, "metrics-addr", "", "Serve /metrics on this address while running")
	rootCmd.AddCommand(cmd)
}

func newStressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stress",
		Short: "Hammer a pool from concurrent workers",
		Long: `The stress command runs workers that acquire objects, hold a batch of
them and release the batch, checking that no object is ever handed to two
workers at once.

Example:
  poolctl stress --workers 16 --iterations 1000000 --hold 32
  poolctl stress --debug --quarantine 64 --max-chunks 4
  poolctl stress --pin --metrics-addr :9100`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := poolConfig(cmd)
			if err != nil {
				return err
			}
			log, err := newLogger(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			rep, err := runStress(cmd.Context(), cfg, stressOpts, log)
			if err != nil {
				return err
			}
			logging.Slog(log).Info("stress finished",
				"workers", stressOpts.Workers,
				"elapsed", rep.Elapsed,
				"acquires", rep.Stats.Acquires,
				"exhausted", rep.Exhausted,
				"cas_retries", rep.Stats.CASRetries,
				"chunks", rep.Stats.Chunks,
				"high_water", rep.Stats.HighWater,
			)
			return nil
		},
	}
}

// stamp is the pooled payload. owner holds worker+1 while checked out.
type stamp struct {
	owner atomic.Int64
	seq   uint64
	_     [48]byte
}

type stressReport struct {
	Elapsed   time.Duration
	Exhausted uint64
	Stats     api.PoolStats
	Snapshot  map[string]any
}

func (o stressOptions) validate() error {
	if o.Workers < 1 || o.Iterations < 1 || o.Hold < 1 {
		return api.NewError(api.ErrCodeInvalidArgument, "workers, iterations and hold must be positive").
			WithContext("workers", o.Workers).
			WithContext("iterations", o.Iterations).
			WithContext("hold", o.Hold)
	}
	return nil
}

func runStress(ctx context.Context, cfg pool.Config, opts stressOptions, log *zap.Logger) (stressReport, error) {
	if err := opts.validate(); err != nil {
		return stressReport{}, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	p, err := pool.New[stamp](
		pool.WithConfig[stamp](cfg),
		pool.WithName[stamp]("stress"),
		pool.WithLogger[stamp](log),
	)
	if err != nil {
		return stressReport{}, err
	}

	probes := control.NewDebugProbes()
	control.RegisterPlatformProbes(probes)
	control.RegisterPoolProbe(probes, p.Name(), p)

	if opts.MetricsAddr != "" {
		stop, err := serveMetrics(opts.MetricsAddr, p, log)
		if err != nil {
			return stressReport{}, err
		}
		defer stop()
	}

	var exhausted atomic.Uint64
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < opts.Workers; w++ {
		w := w
		g.Go(func() error {
			if opts.Pin {
				if err := affinity.PinWorker(w); err != nil {
					log.Warn("cpu pinning failed", zap.Int("worker", w), zap.Error(err))
				}
			}
			n, err := stressWorker(gctx, p, int64(w+1), opts)
			exhausted.Add(n)
			return err
		})
	}
	runErr := g.Wait()
	elapsed := time.Since(start)

	reg := control.NewMetricsRegistry()
	reg.PublishStats(p.Name(), p.Stats())
	rep := stressReport{
		Elapsed:   elapsed,
		Exhausted: exhausted.Load(),
		Stats:     p.Stats(),
		Snapshot:  reg.GetSnapshot(),
	}
	log.Debug("pool state", zap.Any("probes", probes.DumpState()))

	if closeErr := p.Close(); runErr == nil {
		runErr = closeErr
	}
	return rep, runErr
}

// stressWorker returns how many acquires hit the capacity ceiling.
func stressWorker(ctx context.Context, p *pool.TaggedPool[stamp], id int64, opts stressOptions) (uint64, error) {
	held := pool.NewBatch(p, opts.Hold)
	var exhausted uint64

	drain := func() error {
		for _, obj := range held.Items() {
			if got := obj.owner.Load(); got != id {
				return fmt.Errorf("object %s owned by worker %d while held by worker %d", p.TagOf(obj), got-1, id-1)
			}
			obj.owner.Store(0)
		}
		held.Release()
		return nil
	}

	for i := 0; i < opts.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			held.Release()
			return exhausted, err
		}
		obj, err := p.Acquire()
		if errors.Is(err, api.ErrCapacityExhausted) {
			exhausted++
			if err := drain(); err != nil {
				return exhausted, err
			}
			continue
		}
		if err != nil {
			held.Release()
			return exhausted, err
		}
		if !obj.owner.CompareAndSwap(0, id) {
			return exhausted, fmt.Errorf("object %s handed to worker %d while owned by worker %d", p.TagOf(obj), id-1, obj.owner.Load()-1)
		}
		obj.seq = uint64(i)
		held.Append(obj)
		if held.Len() == opts.Hold {
			if err := drain(); err != nil {
				return exhausted, err
			}
		}
	}
	return exhausted, drain()
}

func serveMetrics(addr string, src api.StatsSource, log *zap.Logger) (func(), error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(control.NewPoolCollector("stress", src)); err != nil {
		return nil, err
	}
	reg.MustRegister(collectors.NewGoCollector())

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server", zap.String("addr", addr), zap.Error(err))
		}
	}()
	log.Info("serving metrics", zap.String("addr", addr))
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
