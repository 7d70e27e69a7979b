package metrics

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce sync.Once

	providerEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nowplaying",
		Name:      "provider_events_total",
		Help:      "Change callbacks received from the media source by kind",
	}, []string{"kind"})
	providerEventsIgnored = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nowplaying",
		Name:      "provider_events_ignored_total",
		Help:      "Change callbacks dropped because nobody was listening",
	}, []string{"kind"})
	fetchFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "nowplaying",
		Name:      "fetch_failures_total",
		Help:      "Property fetches that failed or timed out",
	})
	fetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "nowplaying",
		Name:      "fetch_duration_seconds",
		Help:      "Time to poll a property fetch to completion",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms up to ~2.5s
	})
	stateVersion = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "nowplaying",
		Name:      "state_version",
		Help:      "Current version of the shared media state",
	})
	waitsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "nowplaying",
		Name:      "waits_started_total",
		Help:      "Calls to wait_for_media",
	})
	waitsFinished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nowplaying",
		Name:      "waits_finished_total",
		Help:      "Finished waits by outcome (changed, halted, timeout, canceled)",
	}, []string{"outcome"})
	waitersActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "nowplaying",
		Name:      "waiters_active",
		Help:      "Callers currently blocked in wait_for_media",
	})
	halts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "nowplaying",
		Name:      "halts_total",
		Help:      "Calls to halt",
	})
)

// Register adds the collectors to the default registry (idempotent).
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(providerEvents, providerEventsIgnored, fetchFailures, fetchDuration,
			stateVersion, waitsStarted, waitsFinished, waitersActive, halts)
	})
}

// IncProviderEvent counts one provider callback of the given kind.
func IncProviderEvent(kind string) { providerEvents.WithLabelValues(kind).Inc() }

// IncProviderEventIgnored counts a callback dropped because nobody was listening.
func IncProviderEventIgnored(kind string) { providerEventsIgnored.WithLabelValues(kind).Inc() }

// IncFetchFailure counts a snapshot fetch that failed or timed out.
func IncFetchFailure() { fetchFailures.Inc() }

// ObserveFetchDuration records how long one snapshot fetch took.
func ObserveFetchDuration(d time.Duration) { fetchDuration.Observe(d.Seconds()) }

// SetVersion publishes the current state version.
func SetVersion(v uint64) { stateVersion.Set(float64(v)) }

// IncWaitStarted counts a new WaitForMedia call and marks it active.
func IncWaitStarted() {
	waitsStarted.Inc()
	waitersActive.Inc()
}

// IncWaitFinished records how a wait ended and marks it no longer active.
func IncWaitFinished(outcome string) {
	waitsFinished.WithLabelValues(outcome).Inc()
	waitersActive.Dec()
}

// IncHalt counts a Halt call.
func IncHalt() { halts.Inc() }

// Serve exposes /metrics on addr until ctx is done. It registers the
// collectors first.
func Serve(ctx context.Context, addr string) error {
	Register()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("[INFO] metrics: listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
