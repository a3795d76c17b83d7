package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"laborstatus.service/internal/core"
	"laborstatus.service/internal/core/model"
	"laborstatus.service/internal/ports/repository"
)

// StatusComputer is the daily engine as seen by the HTTP layer.
type StatusComputer interface {
	ComputeDailyStatus(ctx context.Context, clockID string, date *time.Time) ([]model.EmployeeStatus, error)
	Location() *time.Location
	Today() time.Time
}

// WeeklyComputer is the weekly aggregator as seen by the HTTP layer.
type WeeklyComputer interface {
	ComputeWeeklyTotals(ctx context.Context, clockID string, ref time.Time) (map[string]*model.WeeklyEntry, error)
}

// Names resolves user ids and reports whether the directory is loaded.
type Names interface {
	Name(userID string) string
	Len() int
}

type StatusHandler struct {
	Stores repository.Repository
	Status StatusComputer
	Weekly WeeklyComputer
	Names  Names
}

type DailyStatusResponse struct {
	StoreID   string                 `json:"storeId,omitempty"`
	StoreName string                 `json:"storeName,omitempty"`
	ClockID   string                 `json:"clockId"`
	Date      string                 `json:"date"`
	Employees []model.EmployeeStatus `json:"employees"`
}

type WeeklyUserTotal struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Total  string `json:"total"`
	*model.WeeklyEntry
}

type WeeklyTotalsResponse struct {
	StoreID   string            `json:"storeId,omitempty"`
	ClockID   string            `json:"clockId"`
	WeekStart string            `json:"weekStart"`
	Totals    []WeeklyUserTotal `json:"totals"`
}

// StoreStatus serves the daily dashboard for a registered store.
func (h *StatusHandler) StoreStatus(w http.ResponseWriter, r *http.Request) {
	store, ok := h.lookupStore(w, r)
	if !ok {
		return
	}
	h.writeDailyStatus(w, r, store.ClockID, func(resp *DailyStatusResponse) {
		resp.StoreID = store.StoreID
		resp.StoreName = store.DisplayName
	})
}

// ClockStatus serves the daily dashboard for a raw clock id.
func (h *StatusHandler) ClockStatus(w http.ResponseWriter, r *http.Request) {
	h.writeDailyStatus(w, r, mux.Vars(r)["clockId"], nil)
}

// StoreWeekly serves weekly totals for a registered store.
func (h *StatusHandler) StoreWeekly(w http.ResponseWriter, r *http.Request) {
	store, ok := h.lookupStore(w, r)
	if !ok {
		return
	}
	h.writeWeeklyTotals(w, r, store.ClockID, store.StoreID)
}

// ClockWeekly serves weekly totals for a raw clock id.
func (h *StatusHandler) ClockWeekly(w http.ResponseWriter, r *http.Request) {
	h.writeWeeklyTotals(w, r, mux.Vars(r)["clockId"], "")
}

// Ready reports whether the user directory has been loaded.
func (h *StatusHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.Names.Len() == 0 {
		writeError(w, http.StatusServiceUnavailable, "user directory not loaded")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready", "users": h.Names.Len()})
}

func (h *StatusHandler) writeDailyStatus(w http.ResponseWriter, r *http.Request, clockID string, decorate func(*DailyStatusResponse)) {
	date, ok := h.parseDate(w, r)
	if !ok {
		return
	}

	employees, err := h.Status.ComputeDailyStatus(r.Context(), clockID, date)
	if err != nil {
		h.writeComputeError(w, r, err)
		return
	}

	day := h.Status.Today()
	if date != nil {
		day = *date
	}
	resp := DailyStatusResponse{
		ClockID:   clockID,
		Date:      day.Format(model.DateLayout),
		Employees: employees,
	}
	if decorate != nil {
		decorate(&resp)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *StatusHandler) writeWeeklyTotals(w http.ResponseWriter, r *http.Request, clockID, storeID string) {
	date, ok := h.parseDate(w, r)
	if !ok {
		return
	}
	ref := h.Status.Today()
	if date != nil {
		ref = *date
	}

	totals, err := h.Weekly.ComputeWeeklyTotals(r.Context(), clockID, ref)
	if err != nil {
		h.writeComputeError(w, r, err)
		return
	}

	users := make([]WeeklyUserTotal, 0, len(totals))
	for userID, entry := range totals {
		users = append(users, WeeklyUserTotal{
			UserID:      userID,
			Name:        h.Names.Name(userID),
			Total:       core.FormatDuration(entry.WeeklySeconds),
			WeeklyEntry: entry,
		})
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].WeeklySeconds != users[j].WeeklySeconds {
			return users[i].WeeklySeconds > users[j].WeeklySeconds
		}
		return users[i].UserID < users[j].UserID
	})

	writeJSON(w, http.StatusOK, WeeklyTotalsResponse{
		StoreID:   storeID,
		ClockID:   clockID,
		WeekStart: core.WeekStart(ref, h.Status.Location()).Format(model.DateLayout),
		Totals:    users,
	})
}

func (h *StatusHandler) lookupStore(w http.ResponseWriter, r *http.Request) (*model.Store, bool) {
	store, err := h.Stores.GetStore(r.Context(), mux.Vars(r)["storeId"])
	if errors.Is(err, model.ErrStoreNotFound) {
		writeError(w, http.StatusNotFound, "store not found")
		return nil, false
	}
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Store lookup failed")
		writeError(w, http.StatusInternalServerError, "store lookup failed")
		return nil, false
	}
	return store, true
}

// parseDate reads the optional ?date=YYYY-MM-DD query parameter in the
// engine's time zone.
func (h *StatusHandler) parseDate(w http.ResponseWriter, r *http.Request) (*time.Time, bool) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return nil, true
	}
	date, err := time.ParseInLocation(model.DateLayout, raw, h.Status.Location())
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return nil, false
	}
	return &date, true
}

func (h *StatusHandler) writeComputeError(w http.ResponseWriter, r *http.Request, err error) {
	log.Ctx(r.Context()).Error().Err(err).Msg("Status computation failed")
	if errors.Is(err, model.ErrFetch) {
		writeError(w, http.StatusBadGateway, "time clock unavailable")
		return
	}
	writeError(w, http.StatusInternalServerError, "status computation failed")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
