package api

import (
	"context"
	"net/http"

	"github.com/and161185/newsdesk/internal/model"
	"github.com/and161185/newsdesk/internal/pipeline"
)

// News covers /news. Create, Update, Delete and Statistics are admin calls;
// the backend decides, the client only forwards.
type News struct{ s pipeline.Sender }

func (n *News) List(ctx context.Context, q model.PageQuery) (model.Page[model.News], error) {
	q.Keyword = ""
	return n.page(ctx, "/news", q)
}

func (n *News) Search(ctx context.Context, q model.PageQuery) (model.Page[model.News], error) {
	q.CategoryID = 0
	return n.page(ctx, "/news/search", q)
}

func (n *News) Hot(ctx context.Context, q model.PageQuery) (model.Page[model.News], error) {
	return n.page(ctx, "/news/hot", model.PageQuery{Page: q.Page, Size: q.Size})
}

func (n *News) Latest(ctx context.Context, q model.PageQuery) (model.Page[model.News], error) {
	return n.page(ctx, "/news/latest", model.PageQuery{Page: q.Page, Size: q.Size})
}

func (n *News) page(ctx context.Context, path string, q model.PageQuery) (model.Page[model.News], error) {
	return pipeline.Call[model.Page[model.News]](ctx, n.s, pipeline.Envelope{Path: path, Query: pageValues(q)})
}

func (n *News) Get(ctx context.Context, newsID int64) (model.News, error) {
	return pipeline.Call[model.News](ctx, n.s, pipeline.Envelope{Path: "/news/" + id(newsID)})
}

func (n *News) Create(ctx context.Context, in model.NewsInput) (model.News, error) {
	return pipeline.Call[model.News](ctx, n.s, pipeline.Envelope{Method: http.MethodPost, Path: "/news", Body: in})
}

func (n *News) Update(ctx context.Context, newsID int64, in model.NewsInput) (model.News, error) {
	return pipeline.Call[model.News](ctx, n.s, pipeline.Envelope{Method: http.MethodPut, Path: "/news/" + id(newsID), Body: in})
}

func (n *News) Delete(ctx context.Context, newsID int64) error {
	_, err := n.s.Send(ctx, pipeline.Envelope{Method: http.MethodDelete, Path: "/news/" + id(newsID)})
	return err
}

// Statistics returns the backend's free-form statistics object.
func (n *News) Statistics(ctx context.Context) (map[string]any, error) {
	return pipeline.Call[map[string]any](ctx, n.s, pipeline.Envelope{Path: "/news/statistics"})
}

// Categories covers /categories.
type Categories struct{ s pipeline.Sender }

func (c *Categories) List(ctx context.Context) ([]model.Category, error) {
	return pipeline.Call[[]model.Category](ctx, c.s, pipeline.Envelope{Path: "/categories"})
}

// Summaries covers /summaries.
type Summaries struct{ s pipeline.Sender }

// Get looks up the summary of a news item. A missing summary is reported as a
// NotFound failure without a notification; check it with errs.IsNotFound.
func (s *Summaries) Get(ctx context.Context, newsID int64) (model.Summary, error) {
	return pipeline.Call[model.Summary](ctx, s.s, pipeline.Envelope{Path: "/summaries/news/" + id(newsID)})
}

func (s *Summaries) Generate(ctx context.Context, newsID int64) (model.Summary, error) {
	return pipeline.Call[model.Summary](ctx, s.s, pipeline.Envelope{Method: http.MethodPost, Path: "/summaries/generate/" + id(newsID)})
}

func (s *Summaries) GenerateBatch(ctx context.Context) (map[string]any, error) {
	return pipeline.Call[map[string]any](ctx, s.s, pipeline.Envelope{Method: http.MethodPost, Path: "/summaries/generate/batch"})
}
