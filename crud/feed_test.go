package crud

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wtfBlog/domain"
	"wtfBlog/errs"
)

func TestFeedPageSizes(t *testing.T) {
	f := newFixture(t)
	leo := f.user("leo")
	const pageSize = 4
	const posts = 10
	for i := 0; i < posts; i++ {
		f.post(leo, nil, fmt.Sprintf("post %d", i))
	}

	for page := 1; page <= 5; page++ {
		got, err := f.svc.Feed.Feed(f.ctx, domain.FeedScope{}, 0, page, pageSize)
		require.NoError(t, err)
		want := pageSize
		if rest := posts - (page-1)*pageSize; rest < want {
			want = rest
		}
		if want < 0 {
			want = 0
		}
		assert.Len(t, got.Posts, want, "page %d", page)
		assert.Equal(t, posts, got.Total)
		assert.Equal(t, page, got.Number)
	}
}

func TestFeedNewestFirst(t *testing.T) {
	f := newFixture(t)
	leo := f.user("leo")
	first := f.post(leo, nil, "first")
	second := f.post(leo, nil, "second")
	third := f.post(leo, nil, "third")

	got, err := f.svc.Feed.Feed(f.ctx, domain.FeedScope{}, 0, 1, 10)
	require.NoError(t, err)
	require.Len(t, got.Posts, 3)
	assert.Equal(t, []int{third.ID, second.ID, first.ID}, postIDs(got.Posts))
	require.NotNil(t, got.Posts[0].Author)
	assert.Equal(t, "leo", got.Posts[0].Author.Username)
}

func TestFeedTieBreakIsStable(t *testing.T) {
	f := newFixture(t)
	leo := f.user("leo")
	f.clock.freeze()
	var ids []int
	for i := 0; i < 7; i++ {
		ids = append([]int{f.post(leo, nil, fmt.Sprintf("bulk %d", i)).ID}, ids...)
	}

	var seen []int
	for page := 1; page <= 3; page++ {
		got, err := f.svc.Feed.Feed(f.ctx, domain.FeedScope{}, 0, page, 3)
		require.NoError(t, err)
		seen = append(seen, postIDs(got.Posts)...)
	}
	assert.Equal(t, ids, seen)
}

func TestFeedBulkPageSizePlusThree(t *testing.T) {
	f := newFixture(t)
	leo := f.user("leo")
	g := f.group("test-slug")
	f.clock.freeze()
	for i := 0; i < domain.DefaultPageSize+3; i++ {
		f.post(leo, g, "bulk")
	}

	scopes := []domain.FeedScope{
		{Kind: domain.AllPosts},
		domain.GroupScope("test-slug"),
		domain.AuthorScope("leo"),
	}
	for _, scope := range scopes {
		page1, err := f.svc.Feed.Feed(f.ctx, scope, 0, 1, 0)
		require.NoError(t, err)
		assert.Len(t, page1.Posts, domain.DefaultPageSize)
		assert.True(t, page1.HasNext())

		page2, err := f.svc.Feed.Feed(f.ctx, scope, 0, 2, 0)
		require.NoError(t, err)
		assert.Len(t, page2.Posts, 3)
		assert.False(t, page2.HasNext())
	}
}

func TestFeedPageBelowOne(t *testing.T) {
	f := newFixture(t)
	leo := f.user("leo")
	f.post(leo, nil, "only")

	got, err := f.svc.Feed.Feed(f.ctx, domain.FeedScope{}, 0, -3, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Number)
	assert.Len(t, got.Posts, 1)
}

func TestFeedGroupScope(t *testing.T) {
	f := newFixture(t)
	leo := f.user("leo")
	novels := f.group("novels")
	f.group("empty")
	inGroup := f.post(leo, novels, "War and Peace")
	f.post(leo, nil, "no group")

	got, err := f.svc.Feed.Feed(f.ctx, domain.GroupScope("novels"), 0, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []int{inGroup.ID}, postIDs(got.Posts))
	require.NotNil(t, got.Posts[0].Group)
	assert.Equal(t, "novels", got.Posts[0].Group.Slug)

	empty, err := f.svc.Feed.Feed(f.ctx, domain.GroupScope("empty"), 0, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, empty.Posts)
	assert.Equal(t, 0, empty.Total)

	_, err = f.svc.Feed.Feed(f.ctx, domain.GroupScope("missing"), 0, 1, 10)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

func TestFeedAuthorScope(t *testing.T) {
	f := newFixture(t)
	leo := f.user("leo")
	anna := f.user("anna")
	leoPost := f.post(leo, nil, "War and Peace")
	f.post(anna, nil, "Anna's notes")

	got, err := f.svc.Feed.Feed(f.ctx, domain.AuthorScope("leo"), 0, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []int{leoPost.ID}, postIDs(got.Posts))

	_, err = f.svc.Feed.Feed(f.ctx, domain.AuthorScope("nobody"), 0, 1, 10)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

func TestFeedFollowedAuthors(t *testing.T) {
	f := newFixture(t)
	auth := f.user("auth")
	auth2 := f.user("auth2")
	author := f.user("author")
	post := f.post(author, nil, "followed post")
	f.post(auth2, nil, "not followed")

	followed := domain.FeedScope{Kind: domain.FollowedAuthors}

	// Following nobody yet.
	got, err := f.svc.Feed.Feed(f.ctx, followed, auth.ID, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, got.Posts)
	assert.Equal(t, 0, got.Total)

	require.NoError(t, f.svc.Follow.Follow(f.ctx, auth.ID, author.ID))

	got, err = f.svc.Feed.Feed(f.ctx, followed, auth.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []int{post.ID}, postIDs(got.Posts))

	other, err := f.svc.Feed.Feed(f.ctx, followed, auth2.ID, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, other.Posts)

	_, err = f.svc.Feed.Feed(f.ctx, followed, 0, 1, 10)
	assert.Equal(t, errs.EUNAUTHORIZED, errs.ErrorCode(err))

	require.NoError(t, f.svc.Follow.Unfollow(f.ctx, auth.ID, author.ID))
	got, err = f.svc.Feed.Feed(f.ctx, followed, auth.ID, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, got.Posts)
}

func postIDs(posts []domain.Post) []int {
	ids := make([]int, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}
