package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"wtfBlog/auth"
	"wtfBlog/domain"
	"wtfBlog/errs"
)

func (s *Server) registerFeedRoutes(r *mux.Router) {
	r.HandleFunc("/", s.handleIndex).Methods("GET")
	r.HandleFunc("/group/{slug}/", s.handleGroupFeed).Methods("GET")
	r.HandleFunc("/profile/{username}/", s.handleProfile).Methods("GET")
	r.HandleFunc("/follow/", s.requireAuth(s.handleFollowFeed)).Methods("GET")
}

// pageResponse is a feed page as sent to clients, with the paging info precomputed.
type pageResponse struct {
	Posts    []domain.Post `json:"posts"`
	Total    int           `json:"total"`
	Number   int           `json:"number"`
	Size     int           `json:"size"`
	NumPages int           `json:"num_pages"`
	HasNext  bool          `json:"has_next"`
	HasPrev  bool          `json:"has_previous"`
}

func newPageResponse(p *domain.Page) *pageResponse {
	return &pageResponse{
		Posts:    p.Posts,
		Total:    p.Total,
		Number:   p.Number,
		Size:     p.Size,
		NumPages: p.NumPages(),
		HasNext:  p.HasNext(),
		HasPrev:  p.Number > 1,
	}
}

type groupFeedResponse struct {
	Group *domain.Group `json:"group"`
	Page  *pageResponse `json:"page"`
}

type profileResponse struct {
	Author    *domain.User  `json:"author"`
	Following bool          `json:"following"`
	Page      *pageResponse `json:"page"`
}

// pageNumber reads the "page" query parameter. Garbage means the first page.
func pageNumber(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// feedPage fetches the requested page of a scope for the current viewer.
func (s *Server) feedPage(r *http.Request, scope domain.FeedScope) (*pageResponse, error) {
	page, err := s.feed.Feed(r.Context(), scope, auth.UserID(r.Context()), pageNumber(r), s.pageSize)
	if err != nil {
		return nil, err
	}
	return newPageResponse(page), nil
}

// handleIndex handles the route "GET /", the feed of all posts.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := s.feedPage(r, domain.FeedScope{Kind: domain.AllPosts})
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.writeJSON(w, r, page)
}

// handleGroupFeed handles the route "GET /group/{slug}/".
func (s *Server) handleGroupFeed(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	group, err := s.gs.BySlug(r.Context(), slug)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	page, err := s.feedPage(r, domain.GroupScope(slug))
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.writeJSON(w, r, &groupFeedResponse{Group: group, Page: page})
}

// handleProfile handles the route "GET /profile/{username}/". Besides the author's
// posts it tells the viewer whether they follow the author already.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	author, err := s.us.ByUsername(r.Context(), username)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	following, err := s.fs.IsFollowing(r.Context(), auth.UserID(r.Context()), author.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	page, err := s.feedPage(r, domain.AuthorScope(username))
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.writeJSON(w, r, &profileResponse{Author: author, Following: following, Page: page})
}

// handleFollowFeed handles the route "GET /follow/", the posts of everyone the viewer follows.
func (s *Server) handleFollowFeed(w http.ResponseWriter, r *http.Request) {
	page, err := s.feedPage(r, domain.FeedScope{Kind: domain.FollowedAuthors})
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.writeJSON(w, r, page)
}

// writeJSON writes v with status 200.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		errs.LogError(r, err)
	}
}

// handleNotFound answers requests to unknown routes.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	errs.ReturnError(w, r, errs.Errorf(errs.ENOTFOUND, "Page not found."))
}
