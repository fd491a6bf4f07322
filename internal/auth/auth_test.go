package auth

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ict4events/eventsite/internal/db"
)

type fakeUsers struct {
	byHash  map[string]*User // key: email + "|" + hash
	byEmail map[string]*User
	err     error
	calls   int
}

func (f *fakeUsers) AuthenticateUser(_ context.Context, email, hash string) (*User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.byHash[email+"|"+hash], nil
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (*User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.byEmail[email], nil
}

var issued = time.Date(2015, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestAuthenticator(t *testing.T, users Users, hasher Hasher) *Authenticator {
	t.Helper()
	codec, err := NewTicketCodec("test-secret")
	require.NoError(t, err)
	codec.now = func() time.Time { return issued.Add(time.Minute) }

	a := NewAuthenticator(users, hasher, codec, Options{}, zap.NewNop())
	a.now = func() time.Time { return issued }
	return a
}

func sha(t *testing.T, pw string) string {
	h, err := SHA256Hasher{}.Hash(pw)
	require.NoError(t, err)
	return h
}

func TestLogin_InvalidEmailRejectedBeforeLookup(t *testing.T) {
	users := &fakeUsers{}
	a := newTestAuthenticator(t, users, SHA256Hasher{})

	for _, email := range []string{"bad@@x", "", "no-at-sign", "a@b", "a b@c.nl"} {
		_, err := a.Login(context.Background(), LoginRequest{Email: email, Password: "pw"})

		var loginErr *LoginError
		require.ErrorAs(t, err, &loginErr, email)
		assert.Equal(t, InvalidEmail, loginErr.Code)
	}
	assert.Zero(t, users.calls)
}

func TestLogin_UnknownCredentials(t *testing.T) {
	users := &fakeUsers{byHash: map[string]*User{
		"jan@ict4events.nl|" + sha(t, "right"): {ID: 1, Username: "jan"},
	}}
	a := newTestAuthenticator(t, users, SHA256Hasher{})

	res, err := a.Login(context.Background(), LoginRequest{Email: "jan@ict4events.nl", Password: "wrong"})
	assert.Nil(t, res)

	var loginErr *LoginError
	require.ErrorAs(t, err, &loginErr)
	assert.Equal(t, UnknownCredentials, loginErr.Code)
	assert.Equal(t, 1, users.calls)
}

func TestLogin_Success(t *testing.T) {
	user := &User{ID: 1, Username: "jan", Email: "jan@ict4events.nl", Role: "bezoeker"}
	users := &fakeUsers{byHash: map[string]*User{"jan@ict4events.nl|" + sha(t, "right"): user}}
	a := newTestAuthenticator(t, users, SHA256Hasher{})

	res, err := a.Login(context.Background(), LoginRequest{Email: " jan@ict4events.nl ", Password: "right"})
	require.NoError(t, err)

	assert.Equal(t, "/Timeline", res.Redirect)
	assert.Equal(t, "jan", res.Ticket.Name)
	assert.Equal(t, issued, res.Ticket.IssuedAt)
	assert.Equal(t, 30*time.Minute, res.Ticket.Expiration.Sub(res.Ticket.IssuedAt))
	assert.False(t, res.Ticket.Persistent)

	var snapshot User
	require.NoError(t, json.Unmarshal([]byte(res.Ticket.UserData), &snapshot))
	assert.Equal(t, *user, snapshot)

	current, ticket, err := a.CurrentUser(res.Cookie)
	require.NoError(t, err)
	assert.Equal(t, "jan", current.Username)
	assert.Equal(t, res.Ticket.Expiration.Unix(), ticket.Expiration.Unix())
}

func TestLogin_RememberMeAndReturnURL(t *testing.T) {
	users := &fakeUsers{byHash: map[string]*User{"jan@ict4events.nl|" + sha(t, "pw"): {Username: "jan"}}}
	a := newTestAuthenticator(t, users, SHA256Hasher{})

	tests := []struct {
		returnURL string
		want      string
	}{
		{"/Events/12", "/Events/12"},
		{"", "/Timeline"},
		{"https://evil.example/", "/Timeline"},
		{"//evil.example/", "/Timeline"},
		{"/\\evil.example/", "/Timeline"},
	}
	for _, tt := range tests {
		res, err := a.Login(context.Background(), LoginRequest{
			Email: "jan@ict4events.nl", Password: "pw", RememberMe: true, ReturnURL: tt.returnURL,
		})
		require.NoError(t, err)
		assert.Equal(t, tt.want, res.Redirect, tt.returnURL)
		assert.True(t, res.Ticket.Persistent)
	}
}

func TestLogin_DatabaseFaultIsNotALoginError(t *testing.T) {
	users := &fakeUsers{err: db.ErrQueryFailed}
	a := newTestAuthenticator(t, users, SHA256Hasher{})

	_, err := a.Login(context.Background(), LoginRequest{Email: "jan@ict4events.nl", Password: "pw"})
	require.Error(t, err)

	var loginErr *LoginError
	assert.False(t, errors.As(err, &loginErr))
	assert.ErrorIs(t, err, db.ErrQueryFailed)
}

func TestLogin_Bcrypt(t *testing.T) {
	hasher := BcryptHasher{Cost: 4}
	hash, err := hasher.Hash("geheim")
	require.NoError(t, err)

	users := &fakeUsers{byEmail: map[string]*User{
		"jan@ict4events.nl": {Username: "jan", passwordHash: hash},
	}}
	a := newTestAuthenticator(t, users, hasher)

	_, err = a.Login(context.Background(), LoginRequest{Email: "jan@ict4events.nl", Password: "fout"})
	var loginErr *LoginError
	require.ErrorAs(t, err, &loginErr)
	assert.Equal(t, UnknownCredentials, loginErr.Code)

	res, err := a.Login(context.Background(), LoginRequest{Email: "jan@ict4events.nl", Password: "geheim"})
	require.NoError(t, err)
	assert.NotContains(t, res.Ticket.UserData, hash)
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"jan@ict4events.nl", "a.b+c@mail.fontys.nl", "X_Y@x-y.com"}
	invalid := []string{"bad@@x", "@x.nl", "jan@", "jan@nl", "jan@ict4events.", "j an@x.nl"}

	for _, e := range valid {
		assert.True(t, IsValidEmail(e), e)
	}
	for _, e := range invalid {
		assert.False(t, IsValidEmail(e), e)
	}
}

func TestNewHasher(t *testing.T) {
	h, err := NewHasher("sha256")
	require.NoError(t, err)
	assert.True(t, h.Deterministic())

	digest, _ := h.Hash("abc")
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", digest)
	assert.True(t, h.Verify(digest, "abc"))

	_, err = NewHasher("md5")
	assert.Error(t, err)
}
