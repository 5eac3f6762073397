package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"wtfBlog/errs"
)

func (s *Server) registerGroupRoutes(r *mux.Router) {
	r.HandleFunc("/groups/", s.handleListGroups).Methods("GET")
}

// handleListGroups handles the route "GET /groups/". Groups are managed from the
// command line, so there is nothing to write here.
func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.gs.All(r.Context())
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.writeJSON(w, r, groups)
}
