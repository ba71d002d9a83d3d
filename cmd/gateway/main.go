package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"ai-verifier/internal/app"
	"ai-verifier/internal/events"
	"ai-verifier/internal/httputil"
	"ai-verifier/internal/judge"
	"ai-verifier/internal/provider"
)

//go:embed static/index.html
var static embed.FS

type askRequest struct {
	Model    string `json:"model" validate:"required"`
	Question string `json:"question" validate:"required"`
}

type verifyRequest struct {
	Question string            `json:"question" validate:"required"`
	Answers  map[string]string `json:"answers" validate:"required"`
}

type semanticMatchRequest struct {
	Answer string `json:"answer" validate:"required"`
	Final  string `json:"final" validate:"required"`
}

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			deps.Log.Warn("failed to release dependencies", "err", err)
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", deps.Config.Port),
		Handler:           newRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		deps.Log.Info("gateway listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		deps.Log.Info("gateway shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		deps.Log.Error("server failed", "err", err)
	}
}

func newRouter(deps app.Deps) chi.Router {
	r := httputil.NewRouter(deps.Log, deps.Config.RequestTimeout)

	r.Get("/", indexHandler(deps))
	r.Post("/api/ask_ai", askHandler(deps))
	r.Post("/api/verify", verifyHandler(deps))
	r.Post("/api/semantic_match", semanticMatchHandler(deps))
	r.Get("/api/models", modelsHandler(deps))
	r.Get("/healthz", httputil.HealthHandler(deps.Log))

	return r
}

func indexHandler(deps app.Deps) http.HandlerFunc {
	page, err := static.ReadFile("static/index.html")
	return func(w http.ResponseWriter, r *http.Request) {
		if err != nil {
			httputil.Fail(deps.Log, w, "index page unavailable", err, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := w.Write(page); err != nil {
			deps.Log.Warn("failed to write index page", "err", err)
		}
	}
}

func askHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req askRequest
		if !decode(deps, w, r, &req, "Missing model or question") {
			return
		}

		client, err := deps.Providers.Get(req.Model)
		if err != nil {
			httputil.Fail(deps.Log, w, "Unknown model", err, http.StatusBadRequest)
			return
		}

		start := time.Now()
		answer, err := client.Ask(r.Context(), req.Question)
		deps.Log.Debug("provider answered", "provider", client.Name(), "duration_ms", time.Since(start).Milliseconds(), "ok", err == nil)
		publish(r.Context(), deps, events.Event{
			Type:     events.TypeAsk,
			Provider: string(client.Name()),
			Question: req.Question,
			Result:   answer,
		}, start, err)
		if err != nil {
			failOperation(deps, w, err)
			return
		}

		httputil.WriteJSON(w, http.StatusOK, map[string]string{"answer": answer})
	}
}

func verifyHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req verifyRequest
		if !decode(deps, w, r, &req, "Missing question or answers") {
			return
		}

		start := time.Now()
		final, err := deps.Judge.VerifyMajority(r.Context(), req.Question, judge.AnswerSet(req.Answers))
		if errors.Is(err, judge.ErrIncompleteAnswers) {
			httputil.Fail(deps.Log, w, err.Error(), err, http.StatusBadRequest)
			return
		}
		publish(r.Context(), deps, events.Event{
			Type:     events.TypeVerify,
			Provider: string(deps.Judge.Provider()),
			Question: req.Question,
			Result:   final,
		}, start, err)
		if err != nil {
			failOperation(deps, w, err)
			return
		}

		httputil.WriteJSON(w, http.StatusOK, map[string]string{"final": final})
	}
}

func semanticMatchHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req semanticMatchRequest
		if !decode(deps, w, r, &req, "Missing answer or final") {
			return
		}

		start := time.Now()
		verdict, err := deps.Judge.SemanticMatch(r.Context(), req.Answer, req.Final)
		publish(r.Context(), deps, events.Event{
			Type:     events.TypeSemanticMatch,
			Provider: string(deps.Judge.Provider()),
			Result:   string(verdict),
		}, start, err)
		if err != nil {
			failOperation(deps, w, err)
			return
		}

		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"verdict": verdict,
			"match":   verdict.IsMatch(),
		})
	}
}

func modelsHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"models": deps.Providers.Names(),
			"judge":  deps.Judge.Provider(),
		})
	}
}

// decode writes a 400 and returns false when the body is not valid JSON or lacks required fields.
func decode(deps app.Deps, w http.ResponseWriter, r *http.Request, v any, missing string) bool {
	err := httputil.DecodeJSON(r, v)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		httputil.Fail(deps.Log, w, missing, err, http.StatusBadRequest)
	} else {
		httputil.ValidationError(deps.Log, w, err)
	}
	return false
}

// failOperation maps provider and judge failures onto the HTTP error envelope.
func failOperation(deps app.Deps, w http.ResponseWriter, err error) {
	if pe, ok := provider.AsError(err); ok {
		status := http.StatusBadGateway
		if pe.Kind == provider.KindTimeout {
			status = http.StatusGatewayTimeout
		}
		httputil.FailWith(deps.Log, w, httputil.ErrorBody{
			Error:    err.Error(),
			Provider: string(pe.Provider),
			Kind:     string(pe.Kind),
		}, err, status)
		return
	}

	switch {
	case errors.Is(err, judge.ErrUnexpectedJudgeOutput):
		httputil.Fail(deps.Log, w, err.Error(), err, http.StatusBadGateway)
	case errors.Is(err, context.DeadlineExceeded):
		httputil.Fail(deps.Log, w, err.Error(), err, http.StatusGatewayTimeout)
	default:
		httputil.Fail(deps.Log, w, err.Error(), err, http.StatusInternalServerError)
	}
}

// publish records the outcome of an operation. Publishing failures never fail the request.
func publish(ctx context.Context, deps app.Deps, ev events.Event, start time.Time, err error) {
	ev.DurationMS = time.Since(start).Milliseconds()
	if err != nil {
		ev.Result = ""
		ev.Error = err.Error()
		if pe, ok := provider.AsError(err); ok {
			ev.ErrorKind = string(pe.Kind)
		}
	}
	if pubErr := deps.Events.Publish(ctx, ev); pubErr != nil {
		deps.Log.Warn("failed to publish event", "type", ev.Type, "err", pubErr)
	}
}
