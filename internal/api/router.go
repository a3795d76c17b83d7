package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"laborstatus.service/internal/api/handler"
)

// NewRouter sets up the gorilla/mux router and defines all API routes.
func NewRouter(statusHandler *handler.StatusHandler) *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/stores/{storeId}/status", statusHandler.StoreStatus).Methods(http.MethodGet)
	api.HandleFunc("/stores/{storeId}/weekly", statusHandler.StoreWeekly).Methods(http.MethodGet)
	api.HandleFunc("/clocks/{clockId}/status", statusHandler.ClockStatus).Methods(http.MethodGet)
	api.HandleFunc("/clocks/{clockId}/weekly", statusHandler.ClockWeekly).Methods(http.MethodGet)
	api.HandleFunc("/ready", statusHandler.Ready).Methods(http.MethodGet)
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Service is operational."))
	}).Methods(http.MethodGet)

	return r
}
