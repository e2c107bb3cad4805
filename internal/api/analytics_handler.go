package api

import (
	"net/http"
	"time"

	"github.com/tasknest/tasknest-api/internal/domain"
	"github.com/tasknest/tasknest-api/internal/store"
)

// defaultTrendDays is the window for completion trends when the query
// doesn't specify one.
const defaultTrendDays = 30

// AnalyticsHandler serves the aggregate task statistics endpoints.
type AnalyticsHandler struct {
	statsStore store.StatsStore
}

// NewAnalyticsHandler creates a new AnalyticsHandler with the given dependencies.
func NewAnalyticsHandler(statsStore store.StatsStore) *AnalyticsHandler {
	return &AnalyticsHandler{statsStore: statsStore}
}

// StatusSummary handles GET /api/analytics/status-summary.
func (h *AnalyticsHandler) StatusSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	counts, err := h.statsStore.CountByStatus(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if counts == nil {
		counts = []store.StatusCount{}
	}
	RespondWithJSON(w, r, http.StatusOK, counts)
}

// CompletionTrends handles GET /api/analytics/completion-trends?days=N.
func (h *AnalyticsHandler) CompletionTrends(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	days := queryInt(r.URL.Query().Get("days"), defaultTrendDays)
	since := time.Now().UTC().AddDate(0, 0, -days)

	trends, err := h.statsStore.CompletionTrends(r.Context(), userID, since)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if trends == nil {
		trends = []store.DailyCompletion{}
	}
	RespondWithJSON(w, r, http.StatusOK, trends)
}

// PriorityBreakdown handles GET /api/analytics/priority-breakdown.
func (h *AnalyticsHandler) PriorityBreakdown(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	counts, err := h.statsStore.CountByPriority(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if counts == nil {
		counts = []store.PriorityCount{}
	}
	RespondWithJSON(w, r, http.StatusOK, counts)
}

// OverdueAnalysis handles GET /api/analytics/overdue-analysis.
func (h *AnalyticsHandler) OverdueAnalysis(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	groups, err := h.statsStore.OverdueByPriority(r.Context(), userID, time.Now().UTC())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if groups == nil {
		groups = []store.OverdueGroup{}
	}
	RespondWithJSON(w, r, http.StatusOK, groups)
}
