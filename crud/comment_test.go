package crud

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wtfBlog/domain"
	"wtfBlog/errs"
)

func TestCommentCreate(t *testing.T) {
	f := newFixture(t)
	leo := f.user("leo")
	anna := f.user("anna")
	p := f.post(leo, nil, "War and Peace")

	first := f.comment(anna, p, "Too long.")
	second := f.comment(leo, p, "Read it anyway.")
	assert.False(t, first.Created.IsZero())
	require.NotNil(t, first.Author)
	assert.Equal(t, "anna", first.Author.Username)

	comments, err := f.svc.Comment.ByPost(f.ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, second.ID, comments[0].ID)
	assert.Equal(t, first.ID, comments[1].ID)
}

func TestCommentCreateValidation(t *testing.T) {
	f := newFixture(t)
	leo := f.user("leo")
	p := f.post(leo, nil, "War and Peace")

	tests := []struct {
		name    string
		comment domain.Comment
		code    string
	}{
		{"anonymous", domain.Comment{PostID: p.ID, Text: "hi"}, errs.EUNAUTHORIZED},
		{"empty text", domain.Comment{PostID: p.ID, AuthorID: leo.ID, Text: " "}, errs.EINVALID},
		{"unknown post", domain.Comment{PostID: p.ID + 1, AuthorID: leo.ID, Text: "hi"}, errs.ENOTFOUND},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, errs.ErrorCode(f.svc.Comment.Create(f.ctx, &tt.comment)))
		})
	}
	assert.Equal(t, 0, f.count(&domain.Comment{}, ""))
}
