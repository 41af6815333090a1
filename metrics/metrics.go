// Package metrics exposes ledger activity as Prometheus collectors.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bitfsorg/fileledger-go/ledger"
)

const namespace = "fileledger"

// Recorder holds the ledger collectors. A nil *Recorder records nothing.
type Recorder struct {
	BlocksMined    prometheus.Counter
	MiningAttempts prometheus.Counter
	MiningDuration prometheus.Histogram
	FilesUploaded  prometheus.Counter
	VerifyFailures prometheus.Counter
	ChainLength    prometheus.Gauge
}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		BlocksMined: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_mined_total",
			Help:      "Blocks mined and appended to the chain.",
		}),
		MiningAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mining_attempts_total",
			Help:      "Nonces tried while mining.",
		}),
		MiningDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "mining_duration_seconds",
			Help:      "Wall time spent mining one block.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		FilesUploaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_uploaded_total",
			Help:      "Files encrypted, stored and recorded on the chain.",
		}),
		VerifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verify_failures_total",
			Help:      "Chain verifications that found tampering or a broken link.",
		}),
		ChainLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chain_length",
			Help:      "Number of blocks in the working chain, genesis included.",
		}),
	}

	for _, c := range []prometheus.Collector{
		r.BlocksMined, r.MiningAttempts, r.MiningDuration,
		r.FilesUploaded, r.VerifyFailures, r.ChainLength,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("metrics: register collector: %w", err)
		}
	}
	return r, nil
}

// ObserveMined records one mined block.
func (r *Recorder) ObserveMined(res ledger.MineResult) {
	if r == nil {
		return
	}
	r.BlocksMined.Inc()
	r.MiningAttempts.Add(float64(res.Attempts))
	r.MiningDuration.Observe(res.Elapsed.Seconds())
}

// AddUploaded counts n uploaded files.
func (r *Recorder) AddUploaded(n int) {
	if r == nil {
		return
	}
	r.FilesUploaded.Add(float64(n))
}

// VerifyFailed counts a failed chain verification.
func (r *Recorder) VerifyFailed() {
	if r == nil {
		return
	}
	r.VerifyFailures.Inc()
}

// SetChainLength records the current chain length.
func (r *Recorder) SetChainLength(n int) {
	if r == nil {
		return
	}
	r.ChainLength.Set(float64(n))
}

// Listen serves g on addr at /metrics until ctx is done.
func Listen(ctx context.Context, addr string, g prometheus.Gatherer) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics: listen on %s: %w", addr, err)
	}
	return Serve(ctx, ln, g)
}

// Serve is Listen on an existing listener. It closes ln.
func Serve(ctx context.Context, ln net.Listener, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Serving metrics", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics: serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics: shutdown: %w", err)
		}
		return nil
	}
}
