// Package httpapi exposes the simulator over a JSON HTTP API and a
// websocket that streams deck analyses spell by spell.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
	"golang.org/x/net/websocket"

	"github.com/Ellipz/ManaSourceCalc/internal/profile"
	"github.com/Ellipz/ManaSourceCalc/internal/service"
	"github.com/Ellipz/ManaSourceCalc/internal/storage/sqlite"
)

// max request body for /analyze
const maxBody = 1 << 20

type errResp struct {
	Err string `json:"err"`
}

type handler struct {
	svc *service.Service
	log zerolog.Logger
}

// New returns the router serving the API.
func New(svc *service.Service, logger zerolog.Logger) http.Handler {
	h := &handler{svc: svc, log: logger}
	r := httprouter.New()
	r.GET("/healthz", h.health)
	r.GET("/formats", h.formats)
	r.GET("/simulate", h.simulate)
	r.POST("/analyze", h.analyze)
	r.GET("/runs", h.runs)
	r.GET("/ws", h.ws)
	return r
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) formats(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	formats, err := h.svc.Formats()
	if err != nil {
		h.fail(w, err)
		return
	}
	if formats == nil {
		formats = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"formats": formats})
}

func (h *handler) simulate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	o, msg := parseOverrides(r)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, errResp{Err: msg})
		return
	}
	q := r.URL.Query()
	resp, err := h.svc.Simulate(h.log.WithContext(r.Context()), service.SimulateRequest{
		Format:    q.Get("format"),
		Deck:      q.Get("deck"),
		Overrides: o,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) analyze(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req service.AnalyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errResp{Err: "invalid body: " + err.Error()})
		return
	}
	resp, err := h.svc.Analyze(h.log.WithContext(r.Context()), req, nil)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) runs(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, _, msg := parseInt(r, "limit")
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, errResp{Err: msg})
		return
	}
	runs, err := h.svc.Runs(r.Context(), limit)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]sqlite.Run{"runs": runs})
}

// fail maps service errors onto status codes.
func (h *handler) fail(w http.ResponseWriter, err error) {
	switch {
	case service.IsInvalid(err):
		writeJSON(w, http.StatusBadRequest, errResp{Err: err.Error()})
	case errors.Is(err, sqlite.ErrNotConfigured):
		writeJSON(w, http.StatusServiceUnavailable, errResp{Err: err.Error()})
	default:
		h.log.Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errResp{Err: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseInt(r *http.Request, key string) (int, bool, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, false, ""
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, "invalid " + key
	}
	return v, true, ""
}

func parseBool(r *http.Request, key string) (bool, bool, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return false, false, ""
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, false, "invalid " + key
	}
	return v, true, ""
}

// parseOverrides reads the optional scenario query parameters.
func parseOverrides(r *http.Request) (profile.Overrides, string) {
	var o profile.Overrides
	for _, f := range []struct {
		key string
		dst **int
	}{
		{"deck_size", &o.DeckSize},
		{"lands", &o.Lands},
		{"colored_sources", &o.ColoredSources},
		{"turn", &o.Turn},
		{"colored_needed", &o.ColoredNeeded},
		{"trials", &o.Trials},
		{"workers", &o.Workers},
	} {
		v, ok, msg := parseInt(r, f.key)
		if msg != "" {
			return o, msg
		}
		if ok {
			*f.dst = &v
		}
	}

	q := r.URL.Query()
	if s := q.Get("seed"); s != "" {
		seed, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return o, "invalid seed"
		}
		o.Seed = &seed
	}
	if s := strings.TrimSpace(q.Get("mulligan")); s != "" {
		o.Mulligan = &s
	}
	tapped, ok, msg := parseBool(r, "tapped_delay")
	if msg != "" {
		return o, msg
	}
	if ok {
		o.TappedDelay = &tapped
	}
	return o, ""
}

func (h *handler) ws(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	websocket.Handler(h.stream).ServeHTTP(w, r)
}
