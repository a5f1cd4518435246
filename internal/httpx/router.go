package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/decisio/retail-dss/internal/config"
	"github.com/decisio/retail-dss/internal/forecast"
	"github.com/decisio/retail-dss/internal/ingest"
	"github.com/decisio/retail-dss/internal/metrics"
	"github.com/decisio/retail-dss/internal/models"
	"github.com/decisio/retail-dss/internal/optimize"
	"github.com/decisio/retail-dss/internal/segment"
	"github.com/decisio/retail-dss/internal/store"
	"github.com/decisio/retail-dss/internal/utils"
)

func NewRouter(log *slog.Logger, st *store.SessionStore, m *metrics.Service, cfg config.Config) http.Handler {
	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ready")) })
	mux.Method(http.MethodGet, "/metrics", m.Handler())

	mux.Post("/v1/sessions/{id}/dataset", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		rows, skipped, err := ingest.ParseCSV(io.LimitReader(r.Body, cfg.MaxUploadBytes))
		if err != nil {
			writeError(w, err)
			return
		}
		st.PutDataset(id, rows)
		m.SetDatasetRows(id, len(rows))
		log.Info("dataset loaded", slog.String("session", id),
			slog.Int("rows", len(rows)), slog.Int("skipped", skipped))
		writeJSON(w, http.StatusCreated, map[string]any{"rows": len(rows), "skipped": skipped})
	})

	mux.Post("/v1/sessions/{id}/segmentation", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		rows, ok := st.Dataset(id)
		if !ok {
			writeErrorStatus(w, http.StatusNotFound, "no dataset loaded for session", "data")
			return
		}
		k := atoiDef(r.URL.Query().Get("k"), 3)
		withElbow := r.URL.Query().Get("elbow") == "true"

		start := time.Now()
		res, err := segment.Run(rows, k, withElbow)
		m.ObserveRun("segmentation", start, err)
		if err != nil {
			writeError(w, err)
			return
		}
		st.SetSegmentation(id, res)
		writeJSON(w, http.StatusOK, res)
	})

	mux.Post("/v1/sessions/{id}/optimization", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		rows, ok := st.Dataset(id)
		if !ok {
			writeErrorStatus(w, http.StatusNotFound, "no dataset loaded for session", "data")
			return
		}
		q := r.URL.Query()
		keyword := q.Get("keyword")
		budget := atofDef(q.Get("budget"), 0)
		months := atoiDef(q.Get("months"), 6)

		start := time.Now()
		res, err := optimize.Run(rows, keyword, budget, months)
		m.ObserveRun("optimization", start, err)
		if err != nil {
			writeError(w, err)
			return
		}
		st.SetOptimization(id, res)
		writeJSON(w, http.StatusOK, res)
	})

	mux.Post("/v1/sessions/{id}/forecast", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		rows, ok := st.Dataset(id)
		if !ok {
			writeErrorStatus(w, http.StatusNotFound, "no dataset loaded for session", "data")
			return
		}
		q := r.URL.Query()
		fcfg := forecast.Config{
			Keyword:       q.Get("keyword"),
			HistoryMonths: atoiDef(q.Get("history"), 12),
			HorizonMonths: atoiDef(q.Get("horizon"), 6),
			CapitalCost:   atofDef(q.Get("capital_cost"), 0),
			MAPEThreshold: atofDef(q.Get("mape_threshold"), cfg.MAPEThreshold),
		}

		start := time.Now()
		res, err := forecast.Run(rows, fcfg)
		m.ObserveRun("forecast", start, err)
		if err != nil {
			writeError(w, err)
			return
		}
		st.SetForecast(id, res)
		writeJSON(w, http.StatusOK, res)
	})

	mux.Get("/v1/sessions/{id}/results", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		sess, ok := st.Results(id)
		if !ok {
			writeErrorStatus(w, http.StatusNotFound, "unknown session", "data")
			return
		}
		writeJSON(w, http.StatusOK, sess)
	})

	return mux
}

// writeError maps typed analysis errors to status codes and guidance:
// data problems get data-quality guidance, infeasibility gets
// budget-adjustment guidance. Preprocessing failures never surface as
// 5xx; they are warnings about the input.
func writeError(w http.ResponseWriter, err error) {
	var (
		dataErr    *models.DataError
		emptyErr   *models.EmptyResultError
		insufErr   *models.InsufficientDataError
		infeasErr  *models.InfeasibleError
		unknownErr *models.UnknownModelError
	)
	switch {
	case errors.As(err, &infeasErr):
		writeErrorStatus(w, http.StatusConflict, err.Error(), "budget")
	case errors.As(err, &dataErr), errors.As(err, &emptyErr), errors.As(err, &insufErr):
		writeErrorStatus(w, http.StatusUnprocessableEntity, err.Error(), "data")
	case errors.As(err, &unknownErr):
		writeErrorStatus(w, http.StatusInternalServerError, err.Error(), "internal")
	default:
		writeErrorStatus(w, http.StatusInternalServerError, err.Error(), "internal")
	}
}

func writeErrorStatus(w http.ResponseWriter, status int, msg, guidance string) {
	writeJSON(w, status, map[string]string{"error": msg, "guidance": guidance})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}

func atoiDef(s string, d int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

func atofDef(s string, d float64) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return d
	}
	return v
}
