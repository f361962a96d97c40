package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"

	"github.com/blackmichael/timepheus/internal/bot"
	"github.com/blackmichael/timepheus/internal/config"
	"github.com/blackmichael/timepheus/internal/domain"
)

const maxBodyBytes = 1 << 20

// Server is the HTTP server that receives Slack webhooks. Event and
// interaction handling is dispatched without awaiting completion so the
// webhook is acknowledged within Slack's deadline; only slash commands are
// answered synchronously.
type Server struct {
	cfg        *config.Config
	bot        *bot.Service
	logger     *slog.Logger
	httpServer *http.Server
}

// NewServer creates a new HTTP server routing webhooks to the bot service.
func NewServer(cfg *config.Config, botService *bot.Service, logger *slog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		bot:    botService,
		logger: logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /slack/events", s.handleEvents)
	mux.HandleFunc("POST /slack/interactions", s.handleInteractions)
	mux.HandleFunc("POST /slack/command/optout", s.handleOptout)
	mux.HandleFunc("POST /slack/command/optin", s.handleOptin)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      withLogging(logger, mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start begins listening for HTTP requests. It blocks until the server is
// shut down or an error occurs.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// verifiedBody reads and signature-verifies the request body. A bad or
// missing signature, a stale timestamp, or a non-numeric timestamp all get
// an empty 500 with no further processing.
func (s *Server) verifiedBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.logger.Warn("failed to read request body", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return nil, false
	}

	verifier, err := slack.NewSecretsVerifier(r.Header, s.cfg.SigningSecret)
	if err != nil {
		s.logger.Warn("request verification failed", "path", r.URL.Path, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return nil, false
	}
	verifier.Write(body)
	if err := verifier.Ensure(); err != nil {
		s.logger.Warn("request signature mismatch", "path", r.URL.Path, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return nil, false
	}
	return body, true
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	body, ok := s.verifiedBody(w, r)
	if !ok {
		return
	}

	event, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		s.logger.Warn("failed to parse event payload", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	switch event.Type {
	case slackevents.URLVerification:
		var challenge slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &challenge); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(challenge.Challenge))

	case slackevents.CallbackEvent:
		if ev, ok := toDomainEvent(event.InnerEvent); ok {
			s.bot.DispatchAsync(ev)
		}
		w.WriteHeader(http.StatusOK)

	default:
		w.WriteHeader(http.StatusOK)
	}
}

// toDomainEvent maps a Slack inner event onto the domain's tagged union.
// Unhandled event types are acknowledged and dropped.
func toDomainEvent(inner slackevents.EventsAPIInnerEvent) (domain.Event, bool) {
	switch ev := inner.Data.(type) {
	case *slackevents.MessageEvent:
		return domain.MessageEvent{
			Channel:  ev.Channel,
			TS:       ev.TimeStamp,
			ThreadTS: ev.ThreadTimeStamp,
			User:     ev.User,
			Text:     ev.Text,
			BotID:    ev.BotID,
			SubType:  ev.SubType,
		}, true
	case *slackevents.AppMentionEvent:
		return domain.MentionEvent{
			Channel:  ev.Channel,
			TS:       ev.TimeStamp,
			ThreadTS: ev.ThreadTimeStamp,
			User:     ev.User,
			Text:     ev.Text,
		}, true
	case *slackevents.ReactionAddedEvent:
		if ev.Item.Type != "message" {
			return nil, false
		}
		return domain.ReactionEvent{
			User:        ev.User,
			Reaction:    ev.Reaction,
			ItemChannel: ev.Item.Channel,
			ItemTS:      ev.Item.Timestamp,
		}, true
	}
	return nil, false
}

func (s *Server) handleInteractions(w http.ResponseWriter, r *http.Request) {
	body, ok := s.verifiedBody(w, r)
	if !ok {
		return
	}

	form, err := url.ParseQuery(string(body))
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	var callback slack.InteractionCallback
	if err := json.Unmarshal([]byte(form.Get("payload")), &callback); err != nil {
		s.logger.Warn("failed to parse interaction payload", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if callback.Type == slack.InteractionTypeBlockActions {
		for _, action := range callback.ActionCallback.BlockActions {
			s.bot.DispatchAsync(domain.ActionEvent{
				User:     callback.User.ID,
				Channel:  callback.Channel.ID,
				ThreadTS: callback.Message.ThreadTimestamp,
				ActionID: action.ActionID,
				Value:    action.Value,
			})
		}
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleOptout(w http.ResponseWriter, r *http.Request) {
	s.handleCommand(w, r, s.bot.OptOut)
}

func (s *Server) handleOptin(w http.ResponseWriter, r *http.Request) {
	s.handleCommand(w, r, s.bot.OptIn)
}

// handleCommand answers a slash command synchronously: the acknowledgment
// text is the response body.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request, fn func(context.Context, string) (string, error)) {
	body, ok := s.verifiedBody(w, r)
	if !ok {
		return
	}

	// SlashCommandParse consumes the form body, which verification already
	// read; restore it first.
	r.Body = io.NopCloser(bytes.NewReader(body))
	cmd, err := slack.SlashCommandParse(r)
	if err != nil || cmd.UserID == "" {
		s.logger.Warn("failed to parse slash command", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	ack, err := fn(r.Context(), cmd.UserID)
	if err != nil {
		s.logger.Error("slash command failed", "command", cmd.Command, "user", cmd.UserID, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte(ack))
}

func withLogging(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration", time.Since(start),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
