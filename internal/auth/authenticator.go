package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

type LoginErrorCode int

const (
	InvalidEmail LoginErrorCode = iota + 1
	UnknownCredentials
)

// LoginError is a rejection the user is told about. Anything else returned by
// Login is an infrastructure failure.
type LoginError struct {
	Code LoginErrorCode
}

func (e *LoginError) Error() string {
	switch e.Code {
	case InvalidEmail:
		return "invalid email address"
	case UnknownCredentials:
		return "credentials do not match an account"
	default:
		return fmt.Sprintf("login rejected (%d)", int(e.Code))
	}
}

type LoginRequest struct {
	Email      string
	Password   string
	RememberMe bool
	ReturnURL  string
}

type LoginResult struct {
	User     *User
	Ticket   *Ticket
	Cookie   string
	Redirect string
}

// Users looks accounts up; *UserRepository is the database-backed version.
type Users interface {
	AuthenticateUser(ctx context.Context, email, passwordHash string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

type Options struct {
	Lifetime        time.Duration
	DefaultRedirect string
}

type Authenticator struct {
	users  Users
	hasher Hasher
	codec  *TicketCodec
	opts   Options
	logger *zap.Logger
	now    func() time.Time
}

func NewAuthenticator(users Users, hasher Hasher, codec *TicketCodec, opts Options, logger *zap.Logger) *Authenticator {
	if opts.Lifetime <= 0 {
		opts.Lifetime = 30 * time.Minute
	}
	if opts.DefaultRedirect == "" {
		opts.DefaultRedirect = "/Timeline"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{
		users:  users,
		hasher: hasher,
		codec:  codec,
		opts:   opts,
		logger: logger.Named("auth"),
		now:    time.Now,
	}
}

func (a *Authenticator) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	email := strings.TrimSpace(req.Email)
	if !IsValidEmail(email) {
		return nil, &LoginError{Code: InvalidEmail}
	}

	user, err := a.lookup(ctx, email, req.Password)
	if err != nil {
		a.logger.Error("Looking up account failed", zap.Error(err))
		return nil, fmt.Errorf("looking up account: %w", err)
	}
	if user == nil {
		return nil, &LoginError{Code: UnknownCredentials}
	}

	snapshot, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("encoding account: %w", err)
	}

	issued := a.now()
	ticket := &Ticket{
		Version:    ticketVersion,
		Name:       user.Username,
		IssuedAt:   issued,
		Expiration: issued.Add(a.opts.Lifetime),
		Persistent: req.RememberMe,
		UserData:   string(snapshot),
	}
	cookie, err := a.codec.Seal(ticket)
	if err != nil {
		a.logger.Error("Sealing ticket failed", zap.Error(err))
		return nil, err
	}

	a.logger.Info("User logged in", zap.String("user", user.Username), zap.Bool("persistent", req.RememberMe))
	return &LoginResult{
		User:     user,
		Ticket:   ticket,
		Cookie:   cookie,
		Redirect: a.redirectTarget(req.ReturnURL),
	}, nil
}

func (a *Authenticator) lookup(ctx context.Context, email, password string) (*User, error) {
	if a.hasher.Deterministic() {
		hash, err := a.hasher.Hash(password)
		if err != nil {
			return nil, err
		}
		return a.users.AuthenticateUser(ctx, email, hash)
	}

	user, err := a.users.GetUserByEmail(ctx, email)
	if err != nil || user == nil {
		return nil, err
	}
	if !a.hasher.Verify(user.passwordHash, password) {
		return nil, nil
	}
	return user, nil
}

// CurrentUser opens a cookie value and decodes the account snapshot in it.
func (a *Authenticator) CurrentUser(cookie string) (*User, *Ticket, error) {
	ticket, err := a.codec.Open(cookie)
	if err != nil {
		return nil, nil, err
	}
	var user User
	if err := json.Unmarshal([]byte(ticket.UserData), &user); err != nil {
		return nil, nil, ErrTicketInvalid
	}
	return &user, ticket, nil
}

// redirectTarget only follows local paths; anything else, including
// protocol-relative URLs, lands on the default page.
func (a *Authenticator) redirectTarget(returnURL string) string {
	if returnURL == "" || !strings.HasPrefix(returnURL, "/") ||
		strings.HasPrefix(returnURL, "//") || strings.HasPrefix(returnURL, "/\\") {
		return a.opts.DefaultRedirect
	}
	return returnURL
}
