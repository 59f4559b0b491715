package api

import (
	"context"
	"net/http"

	"github.com/and161185/newsdesk/internal/model"
	"github.com/and161185/newsdesk/internal/pipeline"
)

// Comments covers /comments.
type Comments struct{ s pipeline.Sender }

func (c *Comments) Create(ctx context.Context, req model.CommentCreateRequest) (model.Comment, error) {
	return pipeline.Call[model.Comment](ctx, c.s, pipeline.Envelope{Method: http.MethodPost, Path: "/comments", Body: req})
}

func (c *Comments) ForNews(ctx context.Context, newsID int64) ([]model.Comment, error) {
	return pipeline.Call[[]model.Comment](ctx, c.s, pipeline.Envelope{Path: "/comments/news/" + id(newsID)})
}

func (c *Comments) Delete(ctx context.Context, commentID int64) error {
	_, err := c.s.Send(ctx, pipeline.Envelope{Method: http.MethodDelete, Path: "/comments/" + id(commentID)})
	return err
}

func (c *Comments) Count(ctx context.Context, newsID int64) (int64, error) {
	n, err := pipeline.Call[model.Count](ctx, c.s, pipeline.Envelope{Path: "/comments/news/" + id(newsID) + "/count"})
	return n.Count, err
}

// Likes covers /likes.
type Likes struct{ s pipeline.Sender }

func (l *Likes) Like(ctx context.Context, newsID int64) error {
	_, err := l.s.Send(ctx, pipeline.Envelope{Method: http.MethodPost, Path: likePath(newsID)})
	return err
}

func (l *Likes) Unlike(ctx context.Context, newsID int64) error {
	_, err := l.s.Send(ctx, pipeline.Envelope{Method: http.MethodDelete, Path: likePath(newsID)})
	return err
}

func (l *Likes) Status(ctx context.Context, newsID int64) (bool, error) {
	st, err := pipeline.Call[model.LikeStatus](ctx, l.s, pipeline.Envelope{Path: likePath(newsID) + "/status"})
	return st.Liked, err
}

func (l *Likes) Count(ctx context.Context, newsID int64) (int64, error) {
	n, err := pipeline.Call[model.Count](ctx, l.s, pipeline.Envelope{Path: likePath(newsID) + "/count"})
	return n.Count, err
}

func likePath(newsID int64) string { return "/likes/news/" + id(newsID) }
