package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"

	"wtfBlog/auth"
	"wtfBlog/domain"
	"wtfBlog/errs"
)

func (s *Server) registerPostRoutes(r *mux.Router) {
	r.HandleFunc("/create/", s.requireAuth(s.handleCreatePost)).Methods("POST")
	r.HandleFunc("/posts/{id:[0-9]+}/", s.handlePostDetail).Methods("GET")
	r.HandleFunc("/posts/{id:[0-9]+}/edit/", s.requireAuth(s.handleEditPost)).Methods("POST")
	r.HandleFunc("/posts/{id:[0-9]+}/comment/", s.requireAuth(s.handleCreateComment)).Methods("POST")
	r.HandleFunc("/posts/{id:[0-9]+}/delete/", s.requireAuth(s.handleDeletePost)).Methods("POST")
}

// postForm is the json body of a new post.
type postForm struct {
	Text    string `json:"text"`
	GroupID *int   `json:"group"`
	Image   string `json:"image"`
}

type commentForm struct {
	Text string `json:"text"`
}

type postDetailResponse struct {
	Post     *domain.Post     `json:"post"`
	Comments []domain.Comment `json:"comments"`
}

func postPath(id int) string {
	return fmt.Sprintf("/posts/%d/", id)
}

func profilePath(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}

// postID reads the post ID route parameter. The route pattern only lets digits through.
func postID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		return 0, errs.Errorf(errs.ENOTFOUND, "The post does not exist.")
	}
	return id, nil
}

// handlePostDetail handles the route "GET /posts/{id}/".
func (s *Server) handlePostDetail(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	post, err := s.ps.ByID(r.Context(), id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	comments, err := s.cs.ByPost(r.Context(), id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.writeJSON(w, r, &postDetailResponse{Post: post, Comments: comments})
}

// handleCreatePost handles the route "POST /create/".
// The new post's author is always the logged in user.
func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var form postForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid post data."))
		return
	}
	user := auth.GetUser(r.Context())
	post := domain.Post{
		Text:     form.Text,
		GroupID:  form.GroupID,
		Image:    form.Image,
		AuthorID: user.ID,
	}
	if err := s.ps.Create(r.Context(), &post); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	http.Redirect(w, r, profilePath(user.Username), http.StatusFound)
}

// handleEditPost handles the route "POST /posts/{id}/edit/". Anyone but the author
// is sent back to the post without anything being changed.
func (s *Server) handleEditPost(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	var upd domain.PostUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid post data."))
		return
	}
	user := auth.GetUser(r.Context())
	if _, err := s.ps.Edit(r.Context(), user.ID, id, &upd); err != nil {
		if errs.ErrorCode(err) == errs.EFORBIDDEN {
			http.Redirect(w, r, postPath(id), http.StatusFound)
			return
		}
		errs.ReturnError(w, r, err)
		return
	}
	http.Redirect(w, r, postPath(id), http.StatusFound)
}

// handleDeletePost handles the route "POST /posts/{id}/delete/".
func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	user := auth.GetUser(r.Context())
	if err := s.ps.Delete(r.Context(), user.ID, id); err != nil {
		if errs.ErrorCode(err) == errs.EFORBIDDEN {
			http.Redirect(w, r, postPath(id), http.StatusFound)
			return
		}
		errs.ReturnError(w, r, err)
		return
	}
	http.Redirect(w, r, profilePath(user.Username), http.StatusFound)
}

// handleCreateComment handles the route "POST /posts/{id}/comment/".
func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	var form commentForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid comment data."))
		return
	}
	comment := domain.Comment{
		PostID:   id,
		AuthorID: auth.GetUser(r.Context()).ID,
		Text:     form.Text,
	}
	if err := s.cs.Create(r.Context(), &comment); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	http.Redirect(w, r, postPath(id), http.StatusFound)
}
