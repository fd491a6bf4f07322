package web

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/ict4events/eventsite/internal/auth"
	"github.com/ict4events/eventsite/internal/config"
	"github.com/ict4events/eventsite/internal/db"
	"github.com/ict4events/eventsite/internal/locale"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeUsers struct {
	users map[string]*auth.User // key: email|sha256(password)
	err   error
	calls int
}

func (f *fakeUsers) AuthenticateUser(_ context.Context, email, hash string) (*auth.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.users[email+"|"+hash], nil
}

func (f *fakeUsers) GetUserByEmail(context.Context, string) (*auth.User, error) {
	return nil, errors.New("not used")
}

type fakeStore struct {
	timeline    []db.Row
	count       any
	readerErr   error
	insertOK    bool
	insertErr   error
	inserted    []db.Param
	pingErr     error
	readerCalls []string
}

func (f *fakeStore) ExecuteReader(_ context.Context, proc string, _ ...db.Param) ([]db.Row, error) {
	f.readerCalls = append(f.readerCalls, proc)
	return f.timeline, f.readerErr
}

func (f *fakeStore) ExecuteScalar(context.Context, string, ...db.Param) (any, error) {
	return f.count, nil
}

func (f *fakeStore) ExecuteNonQuery(_ context.Context, _ string, params ...db.Param) (bool, error) {
	f.inserted = params
	return f.insertOK, f.insertErr
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func hashHex(pw string) string {
	sum := sha256.Sum256([]byte(pw))
	return hex.EncodeToString(sum[:])
}

type fixture struct {
	server *Server
	users  *fakeUsers
	store  *fakeStore
	text   *locale.Locale
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	users := &fakeUsers{users: map[string]*auth.User{
		"jan@ict4events.nl|" + hashHex("geheim"): {ID: 3, Username: "jan", Email: "jan@ict4events.nl"},
	}}
	store := &fakeStore{insertOK: true}

	codec, err := auth.NewTicketCodec("test-secret")
	require.NoError(t, err)
	authenticator := auth.NewAuthenticator(users, auth.SHA256Hasher{}, codec, auth.Options{}, zap.NewNop())

	text, err := locale.Load("nl")
	require.NoError(t, err)

	session := config.Session{CookieName: "EVENTSITEAUTH", CookiePath: "/", DefaultRedirect: "/Timeline"}
	server, err := NewServer(authenticator, store, text, session, zap.NewNop())
	require.NoError(t, err)

	return &fixture{server: server, users: users, store: store, text: text}
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func (f *fixture) login(t *testing.T) *http.Cookie {
	t.Helper()
	rec := f.do(postForm("/Account/Login", url.Values{"Email": {"jan@ict4events.nl"}, "Password": {"geheim"}}))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestLogin_Success(t *testing.T) {
	f := newFixture(t)

	start := time.Now()
	rec := f.do(postForm("/Account/Login", url.Values{"Email": {"jan@ict4events.nl"}, "Password": {"geheim"}}))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/Timeline", rec.Header().Get("Location"))
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "EVENTSITEAUTH", c.Name)
	assert.Equal(t, "/", c.Path)
	assert.True(t, c.HttpOnly)
	assert.WithinDuration(t, start.Add(30*time.Minute), c.Expires, 2*time.Second)
}

func TestLogin_ReturnURL(t *testing.T) {
	f := newFixture(t)

	rec := f.do(postForm("/Account/Login?ReturnUrl=%2FEvents%2F4", url.Values{
		"Email": {"jan@ict4events.nl"}, "Password": {"geheim"}, "RememberMe": {"true"},
	}))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/Events/4", rec.Header().Get("Location"))
}

func TestLogin_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		email     string
		password  string
		wantText  string
		wantCalls int
	}{
		{name: "malformed email", email: "bad@@x", password: "geheim", wantText: "Uw heeft een ongeldig emailadres ingevuld.", wantCalls: 0},
		{name: "wrong password", email: "jan@ict4events.nl", password: "fout", wantText: "Uw inloggegevens komen niet overeen met een bestaand account.", wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			rec := f.do(postForm("/Account/Login", url.Values{"Email": {tt.email}, "Password": {tt.password}}))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantText)
			assert.Empty(t, rec.Result().Cookies())
			assert.Equal(t, tt.wantCalls, f.users.calls)
		})
	}
}

func TestLogin_DatabaseFaultShowsGenericMessage(t *testing.T) {
	f := newFixture(t)
	f.users.err = errors.Join(db.ErrQueryFailed, errors.New("ORA-03113: end-of-file on communication channel"))

	rec := f.do(postForm("/Account/Login", url.Values{"Email": {"jan@ict4events.nl"}, "Password": {"geheim"}}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), f.text.Login.GenericError)
	assert.NotContains(t, rec.Body.String(), "ORA-03113")
	assert.Empty(t, rec.Result().Cookies())
}

func TestLoginForm_AlreadyLoggedIn(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/Account/Login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="loginForm"`)

	req := httptest.NewRequest(http.MethodGet, "/Account/Login", nil)
	req.AddCookie(f.login(t))
	rec = f.do(req)
	assert.Contains(t, rec.Body.String(), "Je bent al ingelogd.")
	assert.NotContains(t, rec.Body.String(), `id="loginForm"`)
}

func TestTimeline_RequiresSession(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/Timeline", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/Account/Login?ReturnUrl=%2FTimeline", rec.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/Timeline", nil)
	req.AddCookie(&http.Cookie{Name: "EVENTSITEAUTH", Value: "forged"})
	rec = f.do(req)
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestTimeline_ListsPosts(t *testing.T) {
	f := newFixture(t)
	f.store.timeline = []db.Row{
		{"1", "jan", "Eerste <b>bericht</b>", "2015-06-01T12:00:00Z"},
		{"2", "piet", "Hallo", ""},
	}
	f.store.count = int64(2)

	req := httptest.NewRequest(http.MethodGet, "/Timeline", nil)
	req.AddCookie(f.login(t))
	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Eerste &lt;b&gt;bericht&lt;/b&gt;")
	assert.Contains(t, body, "piet")
	assert.Contains(t, body, `<span id="postCount">2</span>`)
	assert.Equal(t, []string{"GET_TIMELINE"}, f.store.readerCalls)
}

func TestTimeline_EmptyAndFault(t *testing.T) {
	f := newFixture(t)
	cookie := f.login(t)

	req := httptest.NewRequest(http.MethodGet, "/Timeline", nil)
	req.AddCookie(cookie)
	rec := f.do(req)
	assert.Contains(t, rec.Body.String(), f.text.Timeline.Empty)
	assert.Contains(t, rec.Body.String(), `<span id="postCount">0</span>`)

	f.store.readerErr = db.ErrQueryFailed
	req = httptest.NewRequest(http.MethodGet, "/Timeline", nil)
	req.AddCookie(cookie)
	rec = f.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), f.text.Login.GenericError)
}

func TestNewPost(t *testing.T) {
	f := newFixture(t)
	cookie := f.login(t)

	req := postForm("/Timeline", url.Values{"Body": {"Hallo allemaal"}})
	req.AddCookie(cookie)
	rec := f.do(req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, []db.Param{
		db.Out("p_status"),
		db.In("p_user_id", 3),
		db.In("p_body", "Hallo allemaal"),
	}, f.store.inserted)

	f.store.insertOK = false
	req = postForm("/Timeline", url.Values{"Body": {"Nog een"}})
	req.AddCookie(cookie)
	rec = f.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), f.text.Timeline.PostFailed)
}

func TestLogout(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodPost, "/Account/Logout", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/Account/Login", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "", cookies[0].Value)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	f.store.pingErr = errors.New("ORA-12541: TNS:no listener")
	rec = f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequestIDIsKept(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "9b2d3c3e-6f5e-4f0c-9a53-0f1d3e2c4b5a")
	rec := f.do(req)
	assert.Equal(t, "9b2d3c3e-6f5e-4f0c-9a53-0f1d3e2c4b5a", rec.Header().Get(requestIDHeader))
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- f.server.ListenAndServe(ctx, config.Server{Addr: "127.0.0.1:0", WriteTimeout: time.Second})
	}()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
