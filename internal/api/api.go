// Package api holds the thin call builders for the news backend. Every call
// is one pipeline.Envelope; failures come back as *errs.Failure with their
// side effects already applied by the pipeline.
package api

import (
	"net/url"
	"strconv"

	"github.com/and161185/newsdesk/internal/model"
	"github.com/and161185/newsdesk/internal/pipeline"
)

// API groups the resource clients over one sender.
type API struct {
	Auth       *Auth
	News       *News
	Categories *Categories
	Summaries  *Summaries
	Comments   *Comments
	Likes      *Likes
}

// New builds every resource client over s.
func New(s pipeline.Sender) *API {
	return &API{
		Auth:       &Auth{s: s},
		News:       &News{s: s},
		Categories: &Categories{s: s},
		Summaries:  &Summaries{s: s},
		Comments:   &Comments{s: s},
		Likes:      &Likes{s: s},
	}
}

func id(v int64) string { return strconv.FormatInt(v, 10) }

func pageValues(q model.PageQuery) url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Size > 0 {
		v.Set("size", strconv.Itoa(q.Size))
	}
	if q.CategoryID > 0 {
		v.Set("categoryId", id(q.CategoryID))
	}
	if q.Keyword != "" {
		v.Set("keyword", q.Keyword)
	}
	return v
}
