package relay

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"chatseal/internal/domain"
	"chatseal/internal/logging"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Server exposes a Backend over HTTP.
type Server struct {
	backend Backend
	log     logging.Logger
	router  *mux.Router
}

// NewServer builds the relay's routes on top of backend.
func NewServer(backend Backend, log logging.Logger) *Server {
	s := &Server{backend: backend, log: log, router: mux.NewRouter()}
	// Match on the escaped path so a user id may contain "/".
	s.router.UseEncodedPath()

	s.router.HandleFunc("/users/public-key", s.publishKey).Methods(http.MethodPost)
	s.router.HandleFunc("/users/{userId}", s.getUser).Methods(http.MethodGet)
	s.router.HandleFunc("/messages", s.postMessage).Methods(http.MethodPost)
	s.router.HandleFunc("/messages", s.listMessages).Methods(http.MethodGet)
	s.router.Use(s.accessLog)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

func (s *Server) publishKey(w http.ResponseWriter, r *http.Request) {
	var req domain.PublishKeyRequest
	if !decode(w, r, &req) {
		return
	}
	if req.UserID == "" || req.PublicKey == "" {
		writeError(w, http.StatusBadRequest, "userId and publicKey are required")
		return
	}
	if err := s.backend.PutPublicKey(r.Context(), req.UserID, req.PublicKey); err != nil {
		s.internal(w, r, err)
		return
	}
	key := req.PublicKey
	writeJSON(w, http.StatusOK, domain.UserProfile{ID: req.UserID, PublicKey: &key})
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	raw, err := url.PathUnescape(mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed user id")
		return
	}
	id := domain.UserID(raw)
	p, err := s.backend.User(r.Context(), id)
	if errors.Is(err, ErrUnknownUser) {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		s.internal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) postMessage(w http.ResponseWriter, r *http.Request) {
	var rec domain.MessageRecord
	if !decode(w, r, &rec) {
		return
	}
	if msg := validateRecord(rec); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if !rec.IsEncrypted {
		rec.EncryptedContent, rec.IV = nil, nil
	}
	stored, err := s.backend.AppendMessage(r.Context(), rec)
	if err != nil {
		s.internal(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	conv := domain.ConversationID(q.Get("conversationId"))
	if conv == "" {
		writeError(w, http.StatusBadRequest, "conversationId is required")
		return
	}
	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	msgs, err := s.backend.Messages(r.Context(), conv, limit)
	if err != nil {
		s.internal(w, r, err)
		return
	}
	if msgs == nil {
		msgs = []domain.MessageRecord{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

// validateRecord returns a client-facing reason when rec cannot be stored.
func validateRecord(rec domain.MessageRecord) string {
	if rec.ConversationID == "" || rec.SenderID == "" || rec.ReceiverID == "" {
		return "conversationId, senderId and receiverId are required"
	}
	if rec.IsEncrypted {
		if _, ok := rec.Encrypted(); !ok {
			return "encrypted messages need encryptedContent and iv"
		}
		return ""
	}
	if rec.Content == "" {
		return "content is required"
	}
	return ""
}

func (s *Server) internal(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error(r.Context(), "relay backend error", "path", r.URL.Path, "err", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		s.log.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"duration", time.Since(start),
		)
	})
}

func decode(w http.ResponseWriter, r *http.Request, into any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
