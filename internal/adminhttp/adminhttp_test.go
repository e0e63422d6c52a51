package adminhttp

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/slasshy/slasshy/internal/keyring"
	"github.com/slasshy/slasshy/internal/logging"
	"github.com/slasshy/slasshy/internal/vaultindex"
)

func newTestServer(t *testing.T) (*Server, *vaultindex.Store) {
	dir := t.TempDir()
	store := vaultindex.NewStore(dir, 0, keyring.DefaultKDFParams())
	require.NoError(t, store.Init([]byte("correct horse battery staple")))
	store.Lock()

	log := logging.New("error", io.Discard)
	srv, err := New(store, log)
	require.NoError(t, err)
	return srv, store
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "127.0.0.1:9999"
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestUnlockIssuesSessionCookie(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.Handler()

	rr := doJSON(t, handler, http.MethodPost, "/unlock", map[string]string{
		"passphrase": "correct horse battery staple",
	}, nil)

	require.Equal(t, http.StatusOK, rr.Code)
	resp := rr.Result()
	defer resp.Body.Close()
	require.NotEmpty(t, resp.Cookies())
	require.Equal(t, sessionCookieName, resp.Cookies()[0].Name)
}

func TestUnlockWrongPassphraseGivesGenericError(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.Handler()

	rr := doJSON(t, handler, http.MethodPost, "/unlock", map[string]string{
		"passphrase": "wrong passphrase entirely",
	}, nil)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Contains(t, rr.Body.String(), logging.GenericMessage)
	require.NotContains(t, strings.ToLower(rr.Body.String()), "passphrase")
}

func TestListRequiresSessionCookie(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.Handler()

	rr := doJSON(t, handler, http.MethodGet, "/list", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestListSucceedsAfterUnlock(t *testing.T) {
	srv, store := newTestServer(t)
	handler := srv.Handler()

	unlockRR := doJSON(t, handler, http.MethodPost, "/unlock", map[string]string{
		"passphrase": "correct horse battery staple",
	}, nil)
	require.Equal(t, http.StatusOK, unlockRR.Code)
	cookies := unlockRR.Result().Cookies()

	require.True(t, store.IsUnlocked())

	listRR := doJSON(t, handler, http.MethodGet, "/list", nil, cookies)
	require.Equal(t, http.StatusOK, listRR.Code)

	var summaries []vaultindex.IndexSummary
	require.NoError(t, json.Unmarshal(listRR.Body.Bytes(), &summaries))
	require.Empty(t, summaries)
}

func TestLockInvalidatesSession(t *testing.T) {
	srv, store := newTestServer(t)
	handler := srv.Handler()

	unlockRR := doJSON(t, handler, http.MethodPost, "/unlock", map[string]string{
		"passphrase": "correct horse battery staple",
	}, nil)
	cookies := unlockRR.Result().Cookies()

	lockRR := doJSON(t, handler, http.MethodPost, "/lock", nil, cookies)
	require.Equal(t, http.StatusOK, lockRR.Code)
	require.False(t, store.IsUnlocked())

	listRR := doJSON(t, handler, http.MethodGet, "/list", nil, cookies)
	require.Equal(t, http.StatusUnauthorized, listRR.Code)
}

func TestListenAndServeRejectsNonLoopback(t *testing.T) {
	err := ListenAndServe("93.184.216.34:8080", http.NewServeMux())
	require.Error(t, err)
}
