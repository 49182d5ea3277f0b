package ml

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"gayabelajar-api/internal/advisory"
	"gayabelajar-api/internal/common"
	"gayabelajar-api/internal/features"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// ModelServer provides HTTP API for model predictions
type ModelServer struct {
	predictor  *Predictor
	advisories *advisory.Table
	metrics    MetricsInterface
	router     *mux.Router
	handler    http.Handler
	server     *http.Server
	startTime  time.Time
}

// ServerConfig holds the listener settings for ModelServer.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// MetricsHandler is mounted at /metrics when non-nil.
	MetricsHandler http.Handler
}

// PredictionResponse is the success body of POST /predict.
type PredictionResponse struct {
	Status        string             `json:"status"`
	GayaBelajar   string             `json:"gaya_belajar"`
	Deskripsi     string             `json:"deskripsi"`
	Saran         []string           `json:"saran"`
	Probabilities map[string]float64 `json:"probabilities,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status        string     `json:"status"`
	ModelLoaded   bool       `json:"model_loaded"`
	ModelKind     string     `json:"model_kind,omitempty"`
	LoadedAt      *time.Time `json:"loaded_at,omitempty"`
	LastError     string     `json:"last_error,omitempty"`
	UptimeSeconds float64    `json:"uptime_seconds"`
}

// NewModelServer creates a new HTTP server for model serving
func NewModelServer(predictor *Predictor, advisories *advisory.Table, metrics MetricsInterface, cfg ServerConfig) *ModelServer {
	if advisories == nil {
		advisories = advisory.Default()
	}
	ms := &ModelServer{
		predictor:  predictor,
		advisories: advisories,
		metrics:    metrics,
		startTime:  time.Now(),
	}

	r := mux.NewRouter()
	r.HandleFunc("/", ms.handleHome).Methods(http.MethodGet)
	r.HandleFunc("/predict", ms.handlePredict).Methods(http.MethodPost)
	r.HandleFunc("/health", ms.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/model/info", ms.handleModelInfo).Methods(http.MethodGet)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler).Methods(http.MethodGet)
	}
	r.Use(ms.recoverMiddleware)
	ms.router = r
	// Logged outside the router so 404 and 405 responses are recorded too.
	ms.handler = ms.accessLogMiddleware(r)

	ms.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           ms.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	return ms
}

// Handler returns the routed handler, for tests and embedding.
func (ms *ModelServer) Handler() http.Handler {
	return ms.handler
}

// Start begins serving HTTP requests
func (ms *ModelServer) Start() error {
	log.Info().Str("addr", ms.server.Addr).Bool("model_loaded", ms.predictor.Available()).Msg("starting model server")
	return ms.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (ms *ModelServer) Shutdown(ctx context.Context) error {
	return ms.server.Shutdown(ctx)
}

func (ms *ModelServer) handleHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, common.LivenessMessage)
}

func (ms *ModelServer) handlePredict(w http.ResponseWriter, r *http.Request) {
	if !ms.predictor.Available() {
		writeError(w, http.StatusServiceUnavailable, common.ErrMsgModelNotLoaded)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, common.MaxRequestBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, common.ErrMsgNotJSONObject)
		return
	}

	vec, err := features.Decode(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := ms.predictor.Predict(vec)
	if err != nil {
		if errors.Is(err, ErrModelUnavailable) {
			writeError(w, http.StatusServiceUnavailable, common.ErrMsgModelNotLoaded)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if !ms.advisories.Has(res.Label) {
		log.Warn().Str("label", res.Label).Msg("no advisory for predicted label, using fallback")
		if ms.metrics != nil {
			ms.metrics.MLFallbackUseInc()
		}
	}
	adv := ms.advisories.Lookup(res.Label)

	writeJSON(w, http.StatusOK, PredictionResponse{
		Status:        common.StatusSuccess,
		GayaBelajar:   res.Label,
		Deskripsi:     adv.Description,
		Saran:         adv.Suggestions,
		Probabilities: res.Probabilities,
	})
}

func (ms *ModelServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthStatus{
		Status:        "ready",
		ModelLoaded:   ms.predictor.Available(),
		UptimeSeconds: time.Since(ms.startTime).Seconds(),
	}

	status := http.StatusOK
	if a := ms.predictor.Artifacts(); a != nil {
		health.ModelKind = a.ModelKind
		loadedAt := a.LoadedAt
		health.LoadedAt = &loadedAt
	} else {
		status = http.StatusServiceUnavailable
		health.Status = "degraded"
		if err := ms.predictor.LoadError(); err != nil {
			health.LastError = err.Error()
		}
	}

	writeJSON(w, status, health)
}

func (ms *ModelServer) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	a := ms.predictor.Artifacts()
	if a == nil {
		writeError(w, http.StatusServiceUnavailable, common.ErrMsgModelNotLoaded)
		return
	}

	_, probabilistic := a.Classifier.(ProbabilisticClassifier)
	info := map[string]interface{}{
		"model_kind":     a.ModelKind,
		"scaler_kind":    a.ScalerKind,
		"model_path":     a.ModelPath,
		"scaler_path":    a.ScalerPath,
		"classes":        a.Classifier.Classes(),
		"features":       common.FeatureOrder,
		"probabilities":  probabilistic,
		"advisories":     ms.advisories.Labels(),
		"loaded_at":      a.LoadedAt,
		"model_modified": a.ModelTime,
	}

	writeJSON(w, http.StatusOK, info)
}

// recoverMiddleware turns a handler panic into a 500 JSON error so one bad
// request cannot take the process down.
func (ms *ModelServer) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().
					Interface("panic", rec).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Msg("handler panic recovered")
				msg := fmt.Sprintf("%v", rec)
				if msg == "" {
					msg = common.ErrMsgInternalFallback
				}
				writeError(w, http.StatusInternalServerError, msg)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (ms *ModelServer) accessLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		route := ms.routeLabel(r)
		if ms.metrics != nil {
			ms.metrics.HTTPRequestObserve(route, rec.status, elapsed.Seconds())
		}

		log.Info().
			Str("method", r.Method).
			Str("path", route).
			Int("status", rec.status).
			Dur("duration", elapsed).
			Str("remote", r.RemoteAddr).
			Msg("request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// routeLabel returns the matched path template, or "unmatched" so unknown
// paths cannot grow the metric label set.
func (ms *ModelServer) routeLabel(r *http.Request) string {
	var match mux.RouteMatch
	if ms.router.Match(r, &match) && match.Route != nil {
		if tmpl, err := match.Route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	if errors.Is(match.MatchErr, mux.ErrMethodMismatch) {
		return r.URL.Path
	}
	return "unmatched"
}

// writeJSON encodes v before touching the response so an unencodable value
// still yields a JSON error instead of a bare status line.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode response")
		status = http.StatusInternalServerError
		body, _ = json.Marshal(ErrorResponse{Status: common.StatusError, Message: common.ErrMsgInternalFallback})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Status: common.StatusError, Message: message})
}
