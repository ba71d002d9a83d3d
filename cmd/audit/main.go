package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"ai-verifier/internal/app"
	"ai-verifier/internal/events"
	"ai-verifier/internal/httputil"
	"ai-verifier/internal/judge"
)

func main() {
	deps, err := app.BuildAudit()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer deps.Close()
	deps.Log.Info("audit worker starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	// Consume gateway events
	t := newTally()
	g.Go(func() error {
		return deps.Events.Subscribe(ctx, handleEvent(deps.Log, t))
	})

	// Run health check server
	health := httputil.ServeHealth(deps.Log, "audit", deps.Config.HealthPort)
	g.Go(func() error {
		if err := health.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return health.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		deps.Log.Error("audit service stopped", "err", err)
	}
}

// stats counts outcomes for one provider and operation type.
type stats struct {
	OK       int
	Failed   int
	Matches  int
	Mismatch int
}

type tally struct {
	mu     sync.Mutex
	counts map[string]*stats
}

func newTally() *tally {
	return &tally{counts: make(map[string]*stats)}
}

// record adds ev to the running counts and returns a copy of the updated entry.
func (t *tally) record(ev events.Event) stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := string(ev.Type) + "/" + ev.Provider
	s, ok := t.counts[key]
	if !ok {
		s = &stats{}
		t.counts[key] = s
	}
	if ev.Error != "" {
		s.Failed++
		return *s
	}
	s.OK++
	if ev.Type == events.TypeSemanticMatch {
		if judge.MatchVerdict(ev.Result).IsMatch() {
			s.Matches++
		} else {
			s.Mismatch++
		}
	}
	return *s
}

func handleEvent(log *slog.Logger, t *tally) events.Handler {
	return func(ctx context.Context, ev events.Event) error {
		if ev.Type == "" {
			return errors.New("event without type")
		}
		s := t.record(ev)
		attrs := []any{
			"id", ev.ID,
			"type", ev.Type,
			"provider", ev.Provider,
			"duration_ms", ev.DurationMS,
			"ok_total", s.OK,
			"failed_total", s.Failed,
		}
		if ev.Type == events.TypeSemanticMatch {
			attrs = append(attrs, "verdict", ev.Result, "matches_total", s.Matches, "mismatches_total", s.Mismatch)
		}
		if ev.Error != "" {
			log.Warn("operation failed", append(attrs, "err", ev.Error, "kind", ev.ErrorKind)...)
			return nil
		}
		log.Info("operation completed", attrs...)
		return nil
	}
}
