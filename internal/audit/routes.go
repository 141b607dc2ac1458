package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

const defaultPageSize = 50

// RegisterRoutes mounts the activity trail under /api/activity.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Route("/api/activity", func(r chi.Router) {
		r.Get("/", handleList(store))
		r.Delete("/", handlePrune(store))
		r.Get("/{id}", handleEntry(store))
	})
}

// parseFilter reads ?action=&outcome=&wallet=&since=&until=&limit=&offset=.
// Times are RFC 3339.
func parseFilter(q url.Values) (QueryFilter, error) {
	f := QueryFilter{
		Action:  Action(q.Get("action")),
		Outcome: Outcome(q.Get("outcome")),
		Wallet:  q.Get("wallet"),
		Limit:   defaultPageSize,
	}
	if f.Action != "" && !f.Action.Valid() {
		return f, fmt.Errorf("unknown action %q", f.Action)
	}
	if f.Outcome != "" && !f.Outcome.Valid() {
		return f, fmt.Errorf("unknown outcome %q", f.Outcome)
	}

	var err error
	if f.Since, err = parseTime(q, "since"); err != nil {
		return f, err
	}
	if f.Until, err = parseTime(q, "until"); err != nil {
		return f, err
	}
	if f.Limit, err = parseCount(q, "limit", defaultPageSize); err != nil {
		return f, err
	}
	if f.Offset, err = parseCount(q, "offset", 0); err != nil {
		return f, err
	}
	return f, nil
}

func parseTime(q url.Values, key string) (*time.Time, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, fmt.Errorf("%s must be an RFC 3339 time", key)
	}
	return &t, nil
}

func parseCount(q url.Values, key string, def int) (int, error) {
	v := q.Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return n, nil
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseFilter(r.URL.Query())
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		entries, err := store.Query(r.Context(), filter)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load activity")
			return
		}
		if entries == nil {
			entries = []Entry{}
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

// handlePrune deletes entries older than ?before= (RFC 3339) or
// ?older_than= (a duration such as 720h).
func handlePrune(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var cutoff time.Time
		switch {
		case q.Get("before") != "":
			t, err := parseTime(q, "before")
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			cutoff = *t
		case q.Get("older_than") != "":
			d, err := time.ParseDuration(q.Get("older_than"))
			if err != nil || d <= 0 {
				writeError(w, http.StatusBadRequest, "older_than must be a positive duration")
				return
			}
			cutoff = time.Now().Add(-d)
		default:
			writeError(w, http.StatusBadRequest, "before or older_than is required")
			return
		}

		n, err := store.DeleteBefore(r.Context(), cutoff)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to prune activity")
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
	}
}

func handleEntry(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry, err := store.GetByID(r.Context(), chi.URLParam(r, "id"))
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, "activity entry not found")
		case err != nil:
			writeError(w, http.StatusInternalServerError, "failed to load activity entry")
		default:
			writeJSON(w, http.StatusOK, entry)
		}
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
