package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

const datePattern = `{date:[0-9]{4}-[0-9]{2}-[0-9]{2}}`

func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/summaries/daily", h.listDaily).Methods(http.MethodGet)
	r.HandleFunc("/summaries/daily/"+datePattern, h.getDaily).Methods(http.MethodGet)
	r.HandleFunc("/summaries/overall", h.getOverall).Methods(http.MethodGet)
	r.HandleFunc("/index", h.getIndex).Methods(http.MethodGet)
	r.HandleFunc("/index/"+datePattern, h.getIndexEntry).Methods(http.MethodGet)

	return r
}
