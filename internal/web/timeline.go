package web

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"github.com/ict4events/eventsite/internal/auth"
	"github.com/ict4events/eventsite/internal/db"
)

const maxPostLength = 500

// Post is one GET_TIMELINE row: id, author, body, posted at.
type Post struct {
	ID     string
	Author string
	Body   string
	Posted string
}

func postFromRow(row db.Row) Post {
	var p Post
	fields := []*string{&p.ID, &p.Author, &p.Body, &p.Posted}
	for i := range fields {
		if i < len(row) {
			*fields[i] = row[i]
		}
	}
	return p
}

type timelinePage struct {
	pageData
	User          *auth.User
	Posts         []Post
	PostCount     string
	MaxPostLength int
}

func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) *auth.User {
	user, _ := s.currentUser(r)
	if user == nil {
		target := "/Account/Login?ReturnUrl=" + url.QueryEscape(r.URL.Path)
		http.Redirect(w, r, target, http.StatusFound)
	}
	return user
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user := s.requireUser(w, r)
	if user == nil {
		return
	}
	s.renderTimeline(w, r, user, "")
}

func (s *Server) renderTimeline(w http.ResponseWriter, r *http.Request, user *auth.User, message string) {
	data := timelinePage{
		pageData:      s.page(s.text.Timeline.Title),
		User:          user,
		MaxPostLength: maxPostLength,
	}
	data.Error = message

	rows, err := s.store.ExecuteReader(r.Context(), "GET_TIMELINE", db.In("p_user_id", user.ID))
	if err != nil {
		s.log(r).Error("Loading timeline failed", zap.Error(err))
		data.Error = s.text.Login.GenericError
	}
	for _, row := range rows {
		data.Posts = append(data.Posts, postFromRow(row))
	}

	count, err := s.store.ExecuteScalar(r.Context(), "COUNT_POSTS")
	switch {
	case err != nil:
		s.log(r).Error("Counting posts failed", zap.Error(err))
		data.PostCount = "-"
	case count == nil:
		data.PostCount = "0"
	default:
		data.PostCount = db.Value{Raw: count}.String()
	}

	s.render(w, r, "timeline", data)
}

func (s *Server) handleNewPost(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user := s.requireUser(w, r)
	if user == nil {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	body := strings.TrimSpace(r.PostFormValue("Body"))
	if body == "" {
		http.Redirect(w, r, "/Timeline", http.StatusSeeOther)
		return
	}
	if len([]rune(body)) > maxPostLength {
		s.renderTimeline(w, r, user, s.text.Timeline.PostFailed)
		return
	}

	ok, err := s.store.ExecuteNonQuery(r.Context(), "INSERT_POST",
		db.Out("p_status"),
		db.In("p_user_id", user.ID),
		db.In("p_body", body),
	)
	if err != nil || !ok {
		s.log(r).Warn("Post rejected", zap.Int("user_id", user.ID), zap.Bool("status_ok", ok), zap.Error(err))
		s.renderTimeline(w, r, user, s.text.Timeline.PostFailed)
		return
	}

	s.log(r).Info("Post created", zap.String("user", user.Username), zap.Int("length", len(body)))
	http.Redirect(w, r, "/Timeline", http.StatusSeeOther)
}
