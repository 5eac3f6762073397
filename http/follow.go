package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"wtfBlog/auth"
	"wtfBlog/errs"
)

func (s *Server) registerFollowRoutes(r *mux.Router) {
	r.HandleFunc("/profile/{username}/follow/", s.requireAuth(s.handleFollow)).Methods("POST")
	r.HandleFunc("/profile/{username}/unfollow/", s.requireAuth(s.handleUnfollow)).Methods("POST")
}

// handleFollow handles the route "POST /profile/{username}/follow/".
// Following yourself changes nothing, you just end up on your own profile.
func (s *Server) handleFollow(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	author, err := s.us.ByUsername(r.Context(), username)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	user := auth.GetUser(r.Context())
	if err := s.fs.Follow(r.Context(), user.ID, author.ID); err != nil && errs.ErrorCode(err) != errs.EINVALID {
		errs.ReturnError(w, r, err)
		return
	}
	http.Redirect(w, r, profilePath(author.Username), http.StatusFound)
}

// handleUnfollow handles the route "POST /profile/{username}/unfollow/".
func (s *Server) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	author, err := s.us.ByUsername(r.Context(), username)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	user := auth.GetUser(r.Context())
	if err := s.fs.Unfollow(r.Context(), user.ID, author.ID); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	http.Redirect(w, r, profilePath(author.Username), http.StatusFound)
}
