package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"github.com/ict4events/eventsite/internal/auth"
)

const maxFormBytes = 64 << 10

type loginPage struct {
	pageData
	AlreadyLoggedIn bool
	Email           string
	ReturnURL       string
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	data := loginPage{
		pageData:  s.page(s.text.Login.Title),
		ReturnURL: r.URL.Query().Get("ReturnUrl"),
	}
	if user, _ := s.currentUser(r); user != nil {
		data.AlreadyLoggedIn = true
	}
	s.render(w, r, "login", data)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	req := auth.LoginRequest{
		Email:      r.PostFormValue("Email"),
		Password:   r.PostFormValue("Password"),
		RememberMe: r.PostFormValue("RememberMe") != "",
		ReturnURL:  r.FormValue("ReturnUrl"),
	}

	res, err := s.auth.Login(r.Context(), req)
	if err != nil {
		data := loginPage{
			pageData:  s.page(s.text.Login.Title),
			Email:     req.Email,
			ReturnURL: req.ReturnURL,
		}
		data.Error = s.loginMessage(r, err)
		s.render(w, r, "login", data)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.session.CookieName,
		Value:    res.Cookie,
		Path:     s.session.CookiePath,
		Expires:  res.Ticket.Expiration,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, res.Redirect, http.StatusSeeOther)
}

func (s *Server) loginMessage(r *http.Request, err error) string {
	var loginErr *auth.LoginError
	if errors.As(err, &loginErr) {
		switch loginErr.Code {
		case auth.InvalidEmail:
			return s.text.Login.InvalidEmail
		case auth.UnknownCredentials:
			return s.text.Login.UnknownCredentials
		}
	}
	s.log(r).Error("Login failed", zap.Error(err))
	return s.text.Login.GenericError
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.session.CookieName,
		Value:    "",
		Path:     s.session.CookiePath,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.Redirect(w, r, "/Account/Login", http.StatusSeeOther)
}

// currentUser returns the account in the session cookie, or nil when the
// request carries no valid session.
func (s *Server) currentUser(r *http.Request) (*auth.User, error) {
	c, err := r.Cookie(s.session.CookieName)
	if err != nil || c.Value == "" {
		return nil, nil
	}
	user, _, err := s.auth.CurrentUser(c.Value)
	if err != nil {
		s.log(r).Debug("Ignoring session cookie", zap.Error(err))
		return nil, err
	}
	return user, nil
}
