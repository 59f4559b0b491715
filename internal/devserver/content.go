package devserver

import (
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/and161185/newsdesk/internal/errs"
	"github.com/and161185/newsdesk/internal/model"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	summaryRunes    = 120
	maxCommentRunes = 1000
)

// News statuses.
const (
	StatusDraft     = "DRAFT"
	StatusPublished = "PUBLISHED"
	StatusArchived  = "ARCHIVED"
)

// Content keeps news, categories, summaries, comments and likes in memory.
// Safe for concurrent use.
type Content struct {
	mu  sync.RWMutex
	now func() time.Time

	nextNews, nextComment, nextSummary int64

	news       map[int64]*model.News
	categories []model.Category
	summaries  map[int64]model.Summary // by news id
	comments   map[int64]*model.Comment
	likes      map[int64]map[int64]struct{} // news id -> user ids
}

// NewContent returns an empty store.
func NewContent() *Content {
	return &Content{
		now:       time.Now,
		news:      map[int64]*model.News{},
		summaries: map[int64]model.Summary{},
		comments:  map[int64]*model.Comment{},
		likes:     map[int64]map[int64]struct{}{},
	}
}

// Seed adds the default categories and a few published articles.
func (c *Content) Seed() {
	now := c.now().UTC()
	c.mu.Lock()
	for i, name := range []string{"Politics", "Economy", "Technology", "Sports", "Culture"} {
		c.categories = append(c.categories, model.Category{
			ID: int64(i + 1), Name: name, IsDefault: true, CreatedAt: now, UpdatedAt: now,
		})
	}
	c.mu.Unlock()

	for i, t := range []struct{ title, content string }{
		{"Central bank holds rates steady", "The central bank left its key rate unchanged on Thursday, citing stable inflation."},
		{"New battery chemistry doubles range", "Researchers reported a lithium-sulfur cell that survives a thousand charge cycles."},
		{"Local club wins the cup", "A late goal decided the final in front of a sold-out stadium."},
	} {
		_, _ = c.CreateNews(model.NewsInput{
			Title:         t.title,
			Content:       t.content,
			SourceWebsite: "newsdesk",
			CategoryID:    []int64{2, 3, 4}[i],
			Status:        StatusPublished,
		}, 0)
	}
}

func validateNews(in model.NewsInput, partial bool) error {
	if !partial || in.Title != "" {
		if n := utf8.RuneCountInString(strings.TrimSpace(in.Title)); n == 0 || n > 500 {
			return errs.Invalid("title must be between 1 and 500 characters")
		}
	}
	if !partial && strings.TrimSpace(in.Content) == "" {
		return errs.Invalid("content is required")
	}
	switch in.Status {
	case "", StatusDraft, StatusPublished, StatusArchived:
	default:
		return errs.Invalid("unknown status %q", in.Status)
	}
	return nil
}

// CreateNews stores a new article. by is the creating user, 0 for seed data.
func (c *Content) CreateNews(in model.NewsInput, by int64) (model.News, error) {
	if err := validateNews(in, false); err != nil {
		return model.News{}, err
	}
	now := c.now().UTC()

	c.mu.Lock()
	defer c.mu.Unlock()
	if in.CategoryID != 0 && !c.hasCategory(in.CategoryID) {
		return model.News{}, errs.Invalid("unknown category %d", in.CategoryID)
	}
	c.nextNews++
	n := &model.News{
		ID:                   c.nextNews,
		Title:                strings.TrimSpace(in.Title),
		Content:              in.Content,
		SourceWebsite:        in.SourceWebsite,
		OriginalURL:          in.OriginalURL,
		ImageURL:             in.ImageURL,
		CategoryID:           in.CategoryID,
		PublishTime:          now,
		Status:               in.Status,
		ClassificationMethod: "MANUAL",
		UpdatedAt:            now,
	}
	if n.Status == "" {
		n.Status = StatusPublished
	}
	if by != 0 {
		n.CreatedBy = &by
	}
	c.news[n.ID] = n
	return *n, nil
}

// UpdateNews applies the non-empty fields of in.
func (c *Content) UpdateNews(id int64, in model.NewsInput) (model.News, error) {
	if err := validateNews(in, true); err != nil {
		return model.News{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.news[id]
	if !ok {
		return model.News{}, errs.ErrNotFound
	}
	if in.CategoryID != 0 && !c.hasCategory(in.CategoryID) {
		return model.News{}, errs.Invalid("unknown category %d", in.CategoryID)
	}
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&n.Title, strings.TrimSpace(in.Title))
	set(&n.Content, in.Content)
	set(&n.SourceWebsite, in.SourceWebsite)
	set(&n.OriginalURL, in.OriginalURL)
	set(&n.ImageURL, in.ImageURL)
	set(&n.Status, in.Status)
	if in.CategoryID != 0 {
		n.CategoryID = in.CategoryID
	}
	n.UpdatedAt = c.now().UTC()
	return c.decorate(*n), nil
}

// DeleteNews removes an article with its summary, comments and likes.
func (c *Content) DeleteNews(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.news[id]; !ok {
		return errs.ErrNotFound
	}
	delete(c.news, id)
	delete(c.summaries, id)
	delete(c.likes, id)
	for cid, cm := range c.comments {
		if cm.NewsID == id {
			delete(c.comments, cid)
		}
	}
	return nil
}

// GetNews returns an article; view counts it as one more read.
func (c *Content) GetNews(id int64, view bool) (model.News, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.news[id]
	if !ok {
		return model.News{}, errs.ErrNotFound
	}
	if view {
		n.ViewCount++
	}
	return c.decorate(*n), nil
}

// Order selects the list ordering.
type Order int

const (
	OrderLatest Order = iota
	OrderHot
)

// ListNews pages over published articles. A category or keyword in q narrows
// the result.
func (c *Content) ListNews(q model.PageQuery, order Order) model.Page[model.News] {
	kw := strings.ToLower(strings.TrimSpace(q.Keyword))

	c.mu.RLock()
	out := make([]model.News, 0, len(c.news))
	for _, n := range c.news {
		if n.Status != StatusPublished {
			continue
		}
		if q.CategoryID != 0 && n.CategoryID != q.CategoryID {
			continue
		}
		if kw != "" && !strings.Contains(strings.ToLower(n.Title), kw) && !strings.Contains(strings.ToLower(n.Content), kw) {
			continue
		}
		out = append(out, c.decorate(*n))
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if order == OrderHot && out[i].ViewCount != out[j].ViewCount {
			return out[i].ViewCount > out[j].ViewCount
		}
		if !out[i].PublishTime.Equal(out[j].PublishTime) {
			return out[i].PublishTime.After(out[j].PublishTime)
		}
		return out[i].ID > out[j].ID
	})
	return paginate(out, q.Page, q.Size)
}

func paginate[T any](all []T, page, size int) model.Page[T] {
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	total := len(all)
	from := min(page*size, total)
	to := min(from+size, total)
	return model.Page[T]{
		Content:       all[from:to],
		TotalElements: int64(total),
		TotalPages:    (total + size - 1) / size,
		Size:          size,
		Number:        page,
	}
}

// Statistics reports aggregate counters.
func (c *Content) Statistics() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var views int64
	byStatus := map[string]int{}
	for _, n := range c.news {
		views += n.ViewCount
		byStatus[n.Status]++
	}
	return map[string]any{
		"totalViewCount": views,
		"totalNews":      len(c.news),
		"totalComments":  len(c.comments),
		"byStatus":       byStatus,
	}
}

// Categories lists all categories.
func (c *Content) Categories() []model.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Category(nil), c.categories...)
}

func (c *Content) hasCategory(id int64) bool {
	for _, cat := range c.categories {
		if cat.ID == id {
			return true
		}
	}
	return false
}

// decorate fills the derived counters. Caller holds c.mu.
func (c *Content) decorate(n model.News) model.News {
	n.LikeCount = int64(len(c.likes[n.ID]))
	var cnt int64
	for _, cm := range c.comments {
		if cm.NewsID == n.ID {
			cnt++
		}
	}
	n.CommentCount = cnt
	return n
}

// Summary returns the summary of a news item.
func (c *Content) Summary(newsID int64) (model.Summary, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.summaries[newsID]
	if !ok {
		return model.Summary{}, errs.ErrNotFound
	}
	return s, nil
}

// GenerateSummary (re)builds an extractive summary from the article body.
func (c *Content) GenerateSummary(newsID int64) (model.Summary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.news[newsID]
	if !ok {
		return model.Summary{}, errs.ErrNotFound
	}
	return c.summarize(n), nil
}

// GenerateMissingSummaries summarizes every article without a summary and
// returns how many were generated.
func (c *Content) GenerateMissingSummaries() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	done := 0
	for id, n := range c.news {
		if _, ok := c.summaries[id]; ok {
			continue
		}
		c.summarize(n)
		done++
	}
	return done
}

// summarize needs c.mu held.
func (c *Content) summarize(n *model.News) model.Summary {
	text := strings.Join(strings.Fields(n.Content), " ")
	if utf8.RuneCountInString(text) > summaryRunes {
		text = string([]rune(text)[:summaryRunes]) + "..."
	}
	s, ok := c.summaries[n.ID]
	if !ok {
		c.nextSummary++
		s.ID = c.nextSummary
	}
	s.NewsID = n.ID
	s.SummaryContent = text
	s.GeneratedAt = c.now().UTC()
	s.ModelVersion = "extractive"
	s.Status = "COMPLETED"
	c.summaries[n.ID] = s
	return s
}

// AddComment stores a comment from author on a news item.
func (c *Content) AddComment(author model.Identity, req model.CommentCreateRequest) (model.Comment, error) {
	body := strings.TrimSpace(req.Content)
	if n := utf8.RuneCountInString(body); n == 0 || n > maxCommentRunes {
		return model.Comment{}, errs.Invalid("comment must be between 1 and %d characters", maxCommentRunes)
	}
	now := c.now().UTC()

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.news[req.NewsID]; !ok {
		return model.Comment{}, errs.ErrNotFound
	}
	c.nextComment++
	cm := &model.Comment{
		ID:        c.nextComment,
		NewsID:    req.NewsID,
		UserID:    author.ID,
		Username:  author.Username,
		Content:   body,
		Status:    "APPROVED",
		CreatedAt: now,
		UpdatedAt: now,
	}
	c.comments[cm.ID] = cm
	return *cm, nil
}

// Comments lists the comments of a news item, oldest first.
func (c *Content) Comments(newsID int64) []model.Comment {
	c.mu.RLock()
	out := []model.Comment{}
	for _, cm := range c.comments {
		if cm.NewsID == newsID {
			out = append(out, *cm)
		}
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CommentCount counts the comments of a news item.
func (c *Content) CommentCount(newsID int64) int64 {
	return int64(len(c.Comments(newsID)))
}

// DeleteComment removes a comment. Only its author or an admin may do so.
func (c *Content) DeleteComment(id int64, by model.Identity) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cm, ok := c.comments[id]
	if !ok {
		return errs.ErrNotFound
	}
	if cm.UserID != by.ID && !by.IsAdmin() {
		return errs.ErrForbidden
	}
	delete(c.comments, id)
	return nil
}

// Like records that userID likes newsID.
func (c *Content) Like(newsID, userID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.news[newsID]; !ok {
		return errs.ErrNotFound
	}
	set := c.likes[newsID]
	if set == nil {
		set = map[int64]struct{}{}
		c.likes[newsID] = set
	}
	if _, ok := set[userID]; ok {
		return errs.Invalid("already liked")
	}
	set[userID] = struct{}{}
	return nil
}

// Unlike drops a like; a missing like is not an error.
func (c *Content) Unlike(newsID, userID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.news[newsID]; !ok {
		return errs.ErrNotFound
	}
	delete(c.likes[newsID], userID)
	return nil
}

// Liked reports whether userID likes newsID.
func (c *Content) Liked(newsID, userID int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.likes[newsID][userID]
	return ok
}

// LikeCount counts the likes of a news item.
func (c *Content) LikeCount(newsID int64) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int64(len(c.likes[newsID]))
}
