package crud

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"wtfBlog/database"
	"wtfBlog/domain"
)

// testClock hands out strictly increasing times, one second apart,
// unless it is frozen.
type testClock struct {
	mu     sync.Mutex
	t      time.Time
	frozen bool
}

func (c *testClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.frozen {
		c.t = c.t.Add(time.Second)
	}
	return c.t
}

func (c *testClock) freeze() {
	c.mu.Lock()
	c.frozen = true
	c.mu.Unlock()
}

type fixture struct {
	t     *testing.T
	ctx   context.Context
	db    *database.DB
	svc   *Services
	clock *testClock
}

// newFixture opens a private in-memory database with all tables and every crud service.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := database.NewDB(database.DialectSQLite, database.SQLiteMemory())
	require.NoError(t, database.Open(db, true))
	t.Cleanup(func() { database.Close(db) })
	require.NoError(t, database.AutoMigrate(db))

	clock := &testClock{t: time.Date(2023, 3, 10, 12, 0, 0, 0, time.UTC)}
	svc, err := NewServices(db.Gorm,
		WithClock(clock.now),
		WithUser("pepper", "hmac-key"),
		WithGroup(),
		WithPost(),
		WithComment(),
		WithFollow(),
		WithFeed(),
	)
	require.NoError(t, err)
	return &fixture{t: t, ctx: context.Background(), db: db, svc: svc, clock: clock}
}

func (f *fixture) user(username string) *domain.User {
	f.t.Helper()
	u := &domain.User{Username: username, Password: "secret-password"}
	require.NoError(f.t, f.svc.User.Create(f.ctx, u))
	return u
}

func (f *fixture) group(slug string) *domain.Group {
	f.t.Helper()
	g := &domain.Group{Title: "Group " + slug, Slug: slug, Description: "About " + slug}
	require.NoError(f.t, f.svc.Group.Create(f.ctx, g))
	return g
}

func (f *fixture) post(author *domain.User, group *domain.Group, text string) *domain.Post {
	f.t.Helper()
	p := &domain.Post{AuthorID: author.ID, Text: text}
	if group != nil {
		p.GroupID = &group.ID
	}
	require.NoError(f.t, f.svc.Post.Create(f.ctx, p))
	return p
}

func (f *fixture) comment(author *domain.User, post *domain.Post, text string) *domain.Comment {
	f.t.Helper()
	c := &domain.Comment{AuthorID: author.ID, PostID: post.ID, Text: text}
	require.NoError(f.t, f.svc.Comment.Create(f.ctx, c))
	return c
}

func (f *fixture) count(model interface{}, query string, args ...interface{}) int {
	f.t.Helper()
	var n int64
	db := f.db.Gorm.Model(model)
	if query != "" {
		db = db.Where(query, args...)
	}
	require.NoError(f.t, db.Count(&n).Error)
	return int(n)
}
