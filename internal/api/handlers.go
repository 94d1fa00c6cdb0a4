package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zeynepvrl/HKUygulama/internal/infrastructure/database"
	"github.com/zeynepvrl/HKUygulama/internal/monitor"
)

// handleListFacilities returns the facilities grouped by region.
func (s *Server) handleListFacilities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"regions": s.facilities.Regions(),
		"count":   s.facilities.Len(),
	})
}

// handleSnapshot returns the merged state of every batch seen so far.
func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

// tableResponse is the body of GET /tables/{table}.
type tableResponse struct {
	monitor.TableState
	Facility   *monitor.Facility      `json:"facility,omitempty"`
	Latest     *monitor.LatestReading `json:"latest,omitempty"`
	Violations []monitor.Violation    `json:"violations"`
}

// handleGetTable returns the merged state of one table.
func (s *Server) handleGetTable(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	if !database.ValidIdentifier(table) {
		writeBadRequest(w, "invalid table name")
		return
	}

	state, ok := s.store.Table(table)
	if !ok {
		writeNotFound(w, "no data for table "+table)
		return
	}

	resp := tableResponse{TableState: state, Violations: []monitor.Violation{}}
	if fac, found := s.facilities.Lookup(table); found {
		resp.Facility = &fac
	}
	if state.Result != nil {
		if latest, found := monitor.LatestRTUValue(*state.Result); found {
			resp.Latest = &latest
		}
		if v := monitor.CheckLimits(*state.Result, s.facilities.Limit(table)); v != nil {
			resp.Violations = v
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleViolations returns every limit violation in the merged state.
func (s *Server) handleViolations(w http.ResponseWriter, _ *http.Request) {
	v := s.store.Violations(s.facilities)
	if v == nil {
		v = []monitor.Violation{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"violations": v,
		"count":      len(v),
	})
}

// handleScan runs a batch over every facility and answers when it completes.
//
// The batch is detached from the request context so a client disconnect does
// not cancel queries of tables still being fetched.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	res := s.scanner.Scan(context.WithoutCancel(r.Context()))

	switch {
	case res.AlreadyRunning():
		writeJSON(w, http.StatusConflict, res)
	case !res.Success:
		s.logger.Error("on-demand scan failed", "error", res.Error)
		writeJSON(w, http.StatusInternalServerError, res)
	default:
		writeJSON(w, http.StatusOK, res)
	}
}
