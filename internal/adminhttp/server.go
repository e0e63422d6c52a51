package adminhttp

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/slasshy/slasshy/internal/logging"
	"github.com/slasshy/slasshy/internal/vaultindex"
)

const sessionCookieName = "slasshy_admin_session"

// Server is the loopback-only admin HTTP daemon (§1, §6 Terminal/UI
// collaborator). It never listens on a non-loopback address.
type Server struct {
	store  *vaultindex.Store
	signer *Signer
	log    *logrus.Logger

	mu       sync.Mutex
	sessions map[string]bool // live session ids, checked in the cookie middleware
}

// New builds an admin daemon bound to store.
func New(store *vaultindex.Store, log *logrus.Logger) (*Server, error) {
	signer, err := NewSigner(30 * time.Minute)
	if err != nil {
		return nil, err
	}
	return &Server{
		store:    store,
		signer:   signer,
		log:      log,
		sessions: make(map[string]bool),
	}, nil
}

// Handler builds the routed, rate-limited http.Handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/unlock", s.handleUnlock)
	mux.HandleFunc("/lock", s.requireSession(s.handleLock))
	mux.HandleFunc("/list", s.requireSession(s.handleList))
	mux.HandleFunc("/search", s.requireSession(s.handleSearch))
	mux.HandleFunc("/stats", s.requireSession(s.handleStats))

	return RateLimit(mux, 5, 10)
}

// ListenAndServe binds to a loopback address only, refusing anything
// else — the daemon's entire threat model assumes no remote peer can
// reach it.
func ListenAndServe(addr string, handler http.Handler) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("adminhttp: parsing address: %w", err)
	}
	if !isLoopback(host) {
		return fmt.Errorf("adminhttp: refusing to bind non-loopback address %q", host)
	}
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (s *Server) handleUnlock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Passphrase string `json:"passphrase"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.store.Unlock([]byte(req.Passphrase)); err != nil {
		logging.Internal(s.log, logging.KindAuth, "unlock", err)
		writeGenericError(w, http.StatusUnauthorized)
		return
	}

	sessionID := uuid.NewString()
	s.mu.Lock()
	s.sessions[sessionID] = true
	s.mu.Unlock()

	cookie, exp, err := s.signer.Issue(sessionID)
	if err != nil {
		logging.Internal(s.log, logging.KindIO, "issue-session", err)
		writeGenericError(w, http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    cookie,
		Expires:  exp,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, map[string]bool{"ok": true})
}

func (s *Server) handleLock(w http.ResponseWriter, r *http.Request, sessionID string) {
	s.store.Lock()
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	writeJSON(w, map[string]bool{"ok": true})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request, sessionID string) {
	summaries, err := s.store.List()
	if err != nil {
		logging.Internal(s.log, logging.KindVault, "list", err)
		writeGenericError(w, http.StatusInternalServerError)
		return
	}
	writeJSON(w, summaries)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request, sessionID string) {
	query := r.URL.Query().Get("q")
	summaries, err := s.store.Search(query)
	if err != nil {
		logging.Internal(s.log, logging.KindVault, "search", err)
		writeGenericError(w, http.StatusInternalServerError)
		return
	}
	writeJSON(w, summaries)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request, sessionID string) {
	stats, err := s.store.Stats()
	if err != nil {
		logging.Internal(s.log, logging.KindVault, "stats", err)
		writeGenericError(w, http.StatusInternalServerError)
		return
	}
	writeJSON(w, stats)
}

// requireSession wraps a handler that needs a validated session cookie,
// adapting it to the stdlib http.HandlerFunc shape.
func (s *Server) requireSession(next func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil {
			writeGenericError(w, http.StatusUnauthorized)
			return
		}
		claims, err := s.signer.Validate(cookie.Value)
		if err != nil {
			writeGenericError(w, http.StatusUnauthorized)
			return
		}
		s.mu.Lock()
		live := s.sessions[claims.SessionID]
		s.mu.Unlock()
		if !live {
			writeGenericError(w, http.StatusUnauthorized)
			return
		}
		next(w, r, claims.SessionID)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeGenericError(w, http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeGenericError implements §7's propagation policy: the full error
// kind is logged locally only; the untrusted HTTP caller sees nothing
// but a status code and a fixed generic message.
func writeGenericError(w http.ResponseWriter, status int) {
	http.Error(w, logging.GenericMessage, status)
}
