// Copyright 2024-2026 Aiku AI

// Package admin serves the admin HTTP API: channel settings, a preview of
// the substitution engine and prometheus metrics.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/aiku/buttbot/pkg/buttify"
	"github.com/aiku/buttbot/pkg/settings"
)

const maxBodySize = 1 << 20

// Bot is the part of the bot the API reads and changes.
type Bot interface {
	ChannelNames() []string
	Settings(name string) (settings.Channel, bool)
	EffectiveRate(name string) (int, bool)
	Update(ctx context.Context, name string, fn func(*settings.Channel) error) (settings.Channel, error)
	Preview(channel, text string) buttify.Result
}

type api struct {
	bot Bot
}

// NewHandler returns the router of the admin API.
func NewHandler(b Bot, gatherer prometheus.Gatherer, log zerolog.Logger) http.Handler {
	a := &api{bot: b}
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer,
		hlog.NewHandler(log),
		hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
			hlog.FromRequest(r).Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("size", size).
				Dur("duration", duration).
				Msg("Admin API request")
		}),
		middleware.Heartbeat("/healthz"),
	)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RequestSize(maxBodySize))
		r.Get("/channels", a.listChannels)
		r.Get("/channels/{channel}", a.getChannel)
		r.Put("/channels/{channel}", a.updateChannel)
		r.Post("/preview", a.preview)
	})
	return r
}

type channelResponse struct {
	Name string `json:"name"`
	settings.Channel
	EffectiveRate int `json:"effective_rate"`
}

// channelPatch holds the fields a PUT request may change. Missing fields
// keep their value.
type channelPatch struct {
	Rate               *int      `json:"rate"`
	Word               *string   `json:"word"`
	RandomWordsEnabled *bool     `json:"random_words_enabled"`
	RandomWords        *[]string `json:"random_words"`
}

func (p channelPatch) apply(c *settings.Channel) {
	if p.Rate != nil {
		c.Rate = *p.Rate
	}
	if p.Word != nil {
		c.Word = *p.Word
	}
	if p.RandomWordsEnabled != nil {
		c.RandomWordsEnabled = *p.RandomWordsEnabled
	}
	if p.RandomWords != nil {
		c.RandomWords = append([]string{}, *p.RandomWords...)
	}
}

type previewRequest struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

type previewResponse struct {
	Text    string `json:"text"`
	Outcome string `json:"outcome"`
	Sites   int    `json:"sites"`
}

func (a *api) channel(name string) (channelResponse, bool) {
	c, ok := a.bot.Settings(name)
	if !ok {
		return channelResponse{}, false
	}
	eff, _ := a.bot.EffectiveRate(name)
	return channelResponse{Name: name, Channel: c, EffectiveRate: eff}, true
}

func (a *api) listChannels(w http.ResponseWriter, r *http.Request) {
	names := a.bot.ChannelNames()
	resp := make([]channelResponse, 0, len(names))
	for _, name := range names {
		if ch, ok := a.channel(name); ok {
			resp = append(resp, ch)
		}
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (a *api) getChannel(w http.ResponseWriter, r *http.Request) {
	name, err := channelParam(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid channel name")
		return
	}
	ch, ok := a.channel(name)
	if !ok {
		writeError(w, r, http.StatusNotFound, "channel not found")
		return
	}
	writeJSON(w, r, http.StatusOK, ch)
}

func (a *api) updateChannel(w http.ResponseWriter, r *http.Request) {
	name, err := channelParam(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid channel name")
		return
	}
	var patch channelPatch
	if err = json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON")
		return
	}
	_, err = a.bot.Update(r.Context(), name, func(c *settings.Channel) error {
		patch.apply(c)
		return nil
	})
	switch {
	case errors.Is(err, settings.ErrChannelNotFound):
		writeError(w, r, http.StatusNotFound, "channel not found")
		return
	case errors.Is(err, settings.ErrRateOutOfRange), errors.Is(err, settings.ErrEmptyWord):
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		hlog.FromRequest(r).Error().Err(err).Str("channel", name).Msg("Failed to update channel settings")
		writeError(w, r, http.StatusInternalServerError, "failed to update channel")
		return
	}
	hlog.FromRequest(r).Info().Str("channel", name).Msg("Channel settings changed through admin API")
	ch, _ := a.channel(name)
	writeJSON(w, r, http.StatusOK, ch)
}

func (a *api) preview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON")
		return
	} else if req.Text == "" {
		writeError(w, r, http.StatusBadRequest, "text is required")
		return
	}
	res := a.bot.Preview(req.Channel, req.Text)
	text := res.Text
	if res.Outcome != buttify.OutcomeSubstituted {
		text = req.Text
	}
	writeJSON(w, r, http.StatusOK, previewResponse{
		Text:    text,
		Outcome: res.Outcome.String(),
		Sites:   len(res.Sites),
	})
}

func channelParam(r *http.Request) (string, error) {
	return url.PathUnescape(chi.URLParam(r, "channel"))
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("Failed to write admin API response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, map[string]string{"error": message})
}

// Server runs the admin API until its context is done.
type Server struct {
	server *http.Server
	log    zerolog.Logger
}

func NewServer(addr string, handler http.Handler, log zerolog.Logger) *Server {
	return &Server{
		server: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		log: log.With().Str("component", "admin_api").Logger(),
	}
}

// Run listens until ctx is done and then shuts the server down.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.server.Addr).Msg("Starting admin API")
		errCh <- s.server.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("admin API failed: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down admin API: %w", err)
	}
	return nil
}
