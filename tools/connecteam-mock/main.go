package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"laborstatus.service/pkg/logger"
)

// A small stand-in for the Connecteam API. Every clock returns the same
// synthetic crew: one employee on lunch, one mid-shift without a break, one
// clocked out, and one who has been on the clock long enough to be overdue.

type ts struct {
	Timestamp int64 `json:"timestamp"`
}

type segment struct {
	Start ts  `json:"start"`
	End   *ts `json:"end,omitempty"`
}

type userActivities struct {
	UserID       int64     `json:"userId"`
	Shifts       []segment `json:"shifts"`
	ManualBreaks []segment `json:"manualBreaks"`
}

type user struct {
	UserID    int64  `json:"userId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

var crew = []user{
	{UserID: 1001, FirstName: "Ana", LastName: "Lopez"},
	{UserID: 1002, FirstName: "Ben", LastName: "Ortiz"},
	{UserID: 1003, FirstName: "Cara", LastName: "Ng"},
	{UserID: 1004, FirstName: "Dev", LastName: "Patel"},
}

func closed(start, end time.Time) segment {
	return segment{Start: ts{start.Unix()}, End: &ts{end.Unix()}}
}

func open(start time.Time) segment {
	return segment{Start: ts{start.Unix()}}
}

func activitiesFor(day time.Time, now time.Time) []userActivities {
	today := day.Format("2006-01-02") == now.Format("2006-01-02")
	morning := day.Add(8 * time.Hour)
	if !today {
		return []userActivities{
			{UserID: 1001, Shifts: []segment{closed(morning, morning.Add(8*time.Hour))},
				ManualBreaks: []segment{closed(morning.Add(4*time.Hour), morning.Add(4*time.Hour+30*time.Minute))}},
			{UserID: 1002, Shifts: []segment{closed(morning, morning.Add(9*time.Hour))}},
		}
	}
	return []userActivities{
		{UserID: 1001, Shifts: []segment{open(now.Add(-5 * time.Hour))},
			ManualBreaks: []segment{open(now.Add(-10 * time.Minute))}},
		{UserID: 1002, Shifts: []segment{open(now.Add(-3 * time.Hour))}},
		{UserID: 1003, Shifts: []segment{closed(now.Add(-9*time.Hour), now.Add(-1*time.Hour))},
			ManualBreaks: []segment{closed(now.Add(-5*time.Hour), now.Add(-4*time.Hour-20*time.Minute))}},
		{UserID: 1004, Shifts: []segment{open(now.Add(-6 * time.Hour))}},
	}
}

func timeActivitiesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-API-KEY") == "" {
		http.Error(w, "missing api key", http.StatusUnauthorized)
		return
	}
	day, err := time.ParseInLocation("2006-01-02", r.URL.Query().Get("startDate"), time.Local)
	if err != nil {
		http.Error(w, "bad startDate", http.StatusBadRequest)
		return
	}

	log.Info().
		Str("clock_id", mux.Vars(r)["clockId"]).
		Str("date", day.Format("2006-01-02")).
		Msg("Serving time activities")

	writeJSON(w, map[string]any{
		"data": map[string]any{"timeActivitiesByUsers": activitiesFor(day, time.Now())},
	})
}

func usersHandler(w http.ResponseWriter, r *http.Request) {
	var offset int
	fmt.Sscanf(r.URL.Query().Get("offset"), "%d", &offset)
	page := []user{}
	if offset < len(crew) {
		page = crew[offset:]
	}
	writeJSON(w, map[string]any{"data": map[string]any{"users": page}})
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func main() {
	logger.Setup("connecteam-mock", true)

	r := mux.NewRouter()
	r.HandleFunc("/time-clock/v1/time-clocks/{clockId}/time-activities", timeActivitiesHandler).Methods(http.MethodGet)
	r.HandleFunc("/users/v1/users", usersHandler).Methods(http.MethodGet)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}
	log.Info().Str("port", port).Msg("Connecteam mock server starting")
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatal().Err(err).Msg("listen")
	}
}
