package devserver

import (
	"net/http"

	"github.com/and161185/newsdesk/internal/model"
)

func (s *Server) listNews(w http.ResponseWriter, r *http.Request) {
	q := pageQuery(r)
	q.Keyword = ""
	writeJSON(w, http.StatusOK, s.content.ListNews(q, OrderLatest))
}

func (s *Server) searchNews(w http.ResponseWriter, r *http.Request) {
	q := pageQuery(r)
	q.CategoryID = 0
	writeJSON(w, http.StatusOK, s.content.ListNews(q, OrderLatest))
}

func (s *Server) hotNews(w http.ResponseWriter, r *http.Request) {
	q := pageQuery(r)
	writeJSON(w, http.StatusOK, s.content.ListNews(model.PageQuery{Page: q.Page, Size: q.Size}, OrderHot))
}

func (s *Server) latestNews(w http.ResponseWriter, r *http.Request) {
	q := pageQuery(r)
	writeJSON(w, http.StatusOK, s.content.ListNews(model.PageQuery{Page: q.Page, Size: q.Size}, OrderLatest))
}

func (s *Server) getNews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	n, err := s.content.GetNews(id, true)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) createNews(w http.ResponseWriter, r *http.Request) {
	var in model.NewsInput
	if err := decodeJSON(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	by, _ := IdentityFromCtx(r.Context())
	n, err := s.content.CreateNews(in, by.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) updateNews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var in model.NewsInput
	if err := decodeJSON(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	n, err := s.content.UpdateNews(id, in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) deleteNews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.content.DeleteNews(id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) statistics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.content.Statistics())
}

func (s *Server) listCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.content.Categories())
}

func (s *Server) getSummary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "newsID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sum, err := s.content.Summary(id)
	if err != nil {
		writeError(w, r, http.StatusNotFound, "summary not found")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) generateSummary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "newsID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sum, err := s.content.GenerateSummary(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) generateBatch(w http.ResponseWriter, _ *http.Request) {
	n := s.content.GenerateMissingSummaries()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "started",
		"message":   "generating summaries for news without one",
		"generated": n,
	})
}

func (s *Server) createComment(w http.ResponseWriter, r *http.Request) {
	var req model.CommentCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	author, _ := IdentityFromCtx(r.Context())
	cm, err := s.content.AddComment(author, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cm)
}

func (s *Server) listComments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "newsID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.content.Comments(id))
}

func (s *Server) commentCount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "newsID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.Count{Count: s.content.CommentCount(id)})
}

func (s *Server) deleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	by, _ := IdentityFromCtx(r.Context())
	if err := s.content.DeleteComment(id, by); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "comment deleted"})
}

func (s *Server) like(w http.ResponseWriter, r *http.Request) {
	s.toggleLike(w, r, true)
}

func (s *Server) unlike(w http.ResponseWriter, r *http.Request) {
	s.toggleLike(w, r, false)
}

func (s *Server) toggleLike(w http.ResponseWriter, r *http.Request, on bool) {
	id, err := pathID(r, "newsID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	who, _ := IdentityFromCtx(r.Context())
	msg := "liked"
	if on {
		err = s.content.Like(id, who.ID)
	} else {
		err = s.content.Unlike(id, who.ID)
		msg = "like removed"
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

func (s *Server) likeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "newsID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	who, _ := IdentityFromCtx(r.Context())
	writeJSON(w, http.StatusOK, model.LikeStatus{Liked: s.content.Liked(id, who.ID)})
}

func (s *Server) likeCount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "newsID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.Count{Count: s.content.LikeCount(id)})
}
