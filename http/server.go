package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"wtfBlog/crud"
	"wtfBlog/domain"
)

// Config holds the settings of the web server that don't belong to any service.
type Config struct {
	// IsProd marks the CSRF cookie as secure.
	IsProd bool
	// CSRFKey is the 32 byte authentication key of the CSRF protection.
	CSRFKey string
	// DisableCSRF turns the CSRF protection off, e.g. for api tests.
	DisableCSRF bool
	// PageSize is the number of posts on a feed page.
	PageSize int
}

// Server provides the http functionality of this app, namely routing,
// request handling, and middleware. It also performs authentication and
// authorization before handing things over to one of the crud services.
type Server struct {
	router   *mux.Router
	logger   *zap.Logger
	pageSize int
	us       domain.UserService
	gs       domain.GroupService
	ps       domain.PostService
	cs       domain.CommentService
	fs       domain.FollowService
	feed     domain.FeedService
}

// NewServer returns a new instance of the server, registers all necessary
// routes and gives their handlers access to the app services passed in.
func NewServer(cfg Config, services *crud.Services, logger *zap.Logger) *Server {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = domain.DefaultPageSize
	}

	// Construct a new Server with a gorilla router and the services passed in.
	s := &Server{
		router:   mux.NewRouter(),
		logger:   logger,
		pageSize: pageSize,
		us:       services.User,
		gs:       services.Group,
		ps:       services.Post,
		cs:       services.Comment,
		fs:       services.Follow,
		feed:     services.Feed,
	}
	s.router.StrictSlash(true)
	s.router.NotFoundHandler = http.HandlerFunc(s.handleNotFound)

	// Register routes of the auth system.
	s.registerAuthRoutes(s.router)

	// Register routes of the blog.
	s.registerFeedRoutes(s.router)
	s.registerPostRoutes(s.router)
	s.registerFollowRoutes(s.router)
	s.registerGroupRoutes(s.router)

	// Set up middleware that needs to run on every request.
	mws := []mux.MiddlewareFunc{s.logRequests}
	if !cfg.DisableCSRF {
		// The token travels in the X-CSRF-Token header in both directions.
		csrfMw := csrf.Protect([]byte(cfg.CSRFKey), csrf.Secure(cfg.IsProd), csrf.Path("/"))
		mws = append(mws, csrfMw, exposeCSRFToken)
	}
	mws = append(mws, setContentTypeJSON, s.checkUser)
	s.router.Use(mws...)
	return s
}

// ServeHTTP lets the Server act as the root http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// The setContentTypeJSON middleware sets the content type to "application/json".
func setContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// exposeCSRFToken hands the current CSRF token to the client with every response.
func exposeCSRFToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CSRF-Token", csrf.Token(r))
		next.ServeHTTP(w, r)
	})
}

// statusRecorder remembers the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// logRequests logs every request along with its status code and duration.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// Run starts to listen and serve on the specified port until ctx is done,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.Int("port", port))
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
