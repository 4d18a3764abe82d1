// Package web serves the chat pages, the identity API and the WebSocket endpoint.
package web

import (
	"chat-relay/auth"
	"chat-relay/errors"
	"chat-relay/infrastructure/ws"
	"chat-relay/services"
	"embed"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
)

//go:embed templates/*.html
var templatesFS embed.FS

const title = "chat-relay"

type pageData struct {
	Title       string
	Participant string
}

type Server struct {
	log           *slog.Logger
	chatService   services.IChatService
	tokens        *auth.TokenIssuer
	tokenDuration time.Duration
	readLimit     int64
	templates     *template.Template
}

// NewServer builds the HTTP layer. readLimit caps the size in bytes of one inbound WebSocket message.
func NewServer(log *slog.Logger, chatService services.IChatService, tokens *auth.TokenIssuer,
	tokenDuration time.Duration, readLimit int64) *Server {
	return &Server{
		log:           log,
		chatService:   chatService,
		tokens:        tokens,
		tokenDuration: tokenDuration,
		readLimit:     readLimit,
		templates:     template.Must(template.ParseFS(templatesFS, "templates/*.html")),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /chat", s.handleChatPage)
	mux.HandleFunc("GET /api/current_user", s.handleCurrentUser)
	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.Handle("GET /api/chat", auth.RequireIdentity(s.tokens, s.log, http.HandlerFunc(s.handleChat)))
	mux.HandleFunc("GET /api/status", s.handleStatus)
	return mux
}

func (s *Server) handleHome(w http.ResponseWriter, _ *http.Request) {
	s.render(w, "index.html", pageData{Title: title})
}

func (s *Server) handleChatPage(w http.ResponseWriter, r *http.Request) {
	participant, err := auth.Identify(s.tokens, r)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, "chat.html", pageData{Title: title, Participant: participant})
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	participant, err := auth.Identify(s.tokens, r)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, participant)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&req); err != nil {
		s.fail(w, errors.ErrInvalidFrame)
		return
	}
	if err := auth.ValidateRegister(req); err != nil {
		s.fail(w, err)
		return
	}
	token, err := s.tokens.GenerateToken(req.Username)
	if err != nil {
		s.fail(w, err)
		return
	}
	http.SetCookie(w, auth.IdentityCookie(token, int(s.tokenDuration.Seconds())))
	s.log.Info("Participant registered", "participant", req.Username)
	s.writeJSON(w, http.StatusOK, req)
}

// handleChat upgrades the request and serves the connection until it closes.
// Identity was checked by the middleware before the upgrade.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	participant, _ := auth.ParticipantFromContext(r.Context())
	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.Warn("WebSocket upgrade failed", "participant", participant, "error", err)
		return
	}
	defer func() { _ = c.CloseNow() }()
	if s.readLimit > 0 {
		c.SetReadLimit(s.readLimit)
	}

	if err := s.chatService.Join(r.Context(), ws.NewConn(c), participant); err != nil {
		s.log.Warn("Connection refused", "participant", participant, "error", err)
		_ = c.Close(websocket.StatusPolicyViolation, err.Error())
		return
	}
	_ = c.Close(websocket.StatusNormalClosure, "")
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := s.chatService.Status(r.Context())
	if err != nil {
		s.log.Warn("Status collected with errors", "error", err)
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) render(w http.ResponseWriter, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.log.Error("Failed to render page", "page", name, "error", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("Failed to write response", "error", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), errors.MapToHTTPStatus(err))
}
