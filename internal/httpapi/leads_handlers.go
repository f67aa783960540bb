package httpapi

import (
	"database/sql"
	"net/http"
	"strconv"

	"outreach-engine/internal/store"
)

type LeadsHandler struct {
	DB *sql.DB
}

func (h LeadsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	leads, err := store.ListLeads(r.Context(), h.DB, limit)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, leads)
}

func (h LeadsHandler) Outreach(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	recs, err := store.ListOutreach(r.Context(), h.DB, limit)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, recs)
}
