package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/huangsam/donorlens/core"
	"github.com/huangsam/donorlens/internal/contract"
	"github.com/huangsam/donorlens/schema"
	"github.com/rs/zerolog"
)

// errNoInputFile is returned by GET routes when the server was started without a file.
var errNoInputFile = errors.New("server has no input file; POST a CSV body instead")

type handler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
	logger  zerolog.Logger
}

type queueResponse struct {
	AsOf             time.Time                 `json:"as_of"`
	StewardshipQueue []schema.StewardshipEntry `json:"stewardship_queue"`
	OverduePledges   []schema.OverduePledge    `json:"overdue_pledges"`
}

func (h *handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) postReport(w http.ResponseWriter, r *http.Request) {
	report, ok := h.reportFromBody(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *handler) postQueue(w http.ResponseWriter, r *http.Request) {
	report, ok := h.reportFromBody(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, queueResponse{report.AsOf, report.StewardshipQueue, report.OverduePledges})
}

func (h *handler) getReport(w http.ResponseWriter, r *http.Request) {
	report, ok := h.reportFromFile(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *handler) getQueue(w http.ResponseWriter, r *http.Request) {
	report, ok := h.reportFromFile(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, queueResponse{report.AsOf, report.StewardshipQueue, report.OverduePledges})
}

// reportFromBody builds a report from the CSV request body. It writes the error response itself.
func (h *handler) reportFromBody(w http.ResponseWriter, r *http.Request) (*schema.DonorReport, bool) {
	s, err := settingsFromQuery(h.baseCfg.Settings, r.URL.Query(), time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	report, err := core.ReportFromCSV(r.Context(), body, s)
	if err != nil {
		h.logger.Debug().Err(err).Msg("report from body failed")
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	return report, true
}

// reportFromFile builds a report from the server's input file through the stores.
func (h *handler) reportFromFile(w http.ResponseWriter, r *http.Request) (*schema.DonorReport, bool) {
	if h.baseCfg.InputPath == "" {
		writeError(w, http.StatusNotFound, errNoInputFile)
		return nil, false
	}
	s, err := settingsFromQuery(h.baseCfg.Settings, r.URL.Query(), time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	cfg := h.baseCfg.Clone()
	cfg.Settings = s
	report, err := core.LoadReport(r.Context(), cfg, h.mgr)
	if err != nil {
		h.logger.Error().Err(err).Str("input", cfg.InputPath).Msg("report from file failed")
		writeError(w, http.StatusInternalServerError, err)
		return nil, false
	}
	return report, true
}

// settingsFromQuery applies query parameter overrides on top of base and validates the result.
func settingsFromQuery(base schema.Settings, q url.Values, now time.Time) (schema.Settings, error) {
	s := base
	if v := q.Get("as_of"); v != "" {
		asOf, err := contract.ParseAsOf(v, now)
		if err != nil {
			return s, err
		}
		s.AsOf = asOf
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"lapsed_days", &s.LapsedDays},
		{"recent_days", &s.RecentDays},
		{"ack_days", &s.AckDays},
		{"queue_size", &s.QueueSize},
		{"top_n", &s.TopN},
	}
	for _, p := range ints {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return s, fmt.Errorf("invalid %s %q: must be an integer", p.name, v)
		}
		*p.dst = n
	}

	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
