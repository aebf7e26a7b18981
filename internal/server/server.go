// Package server is the small admin surface of the ladder: the publish
// trigger, bot registration, and read access to published artifacts for
// the external dashboard.
package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"bot-ladder/internal/domain"
	"bot-ladder/internal/middleware"
	"bot-ladder/internal/repository"
	"bot-ladder/internal/service"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// PublishTrigger is the "prepare publish" entry point.
type PublishTrigger interface {
	PreparePublish(ctx context.Context) error
}

type Server struct {
	trigger    PublishTrigger
	bots       repository.BotStore
	publishDir string
	logger     zerolog.Logger
}

func New(trigger PublishTrigger, bots repository.BotStore, publishDir string, logger zerolog.Logger) *Server {
	return &Server{
		trigger:    trigger,
		bots:       bots,
		publishDir: publishDir,
		logger:     logger,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/publish", s.handlePublish)
	mux.HandleFunc("POST /v1/bots", s.handleRegisterBot)
	mux.HandleFunc("POST /v1/bots/{name}/disable", s.handleDisableBot)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /stats/", http.StripPrefix("/stats/", http.FileServer(http.Dir(s.publishDir))))

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	return middleware.RequestID(s.logger)(c.Handler(mux))
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	err := s.trigger.PreparePublish(r.Context())
	switch {
	case errors.Is(err, service.ErrPublishInProgress):
		http.Error(w, "publish cycle already in progress", http.StatusConflict)
	case err != nil:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("publish cycle failed")
		http.Error(w, "publish cycle failed", http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

type registerBotRequest struct {
	Name       string `json:"name"`
	Race       string `json:"race"`
	BinaryPath string `json:"binaryPath"`
	ParentID   *int64 `json:"parentId"`
}

func (s *Server) handleRegisterBot(w http.ResponseWriter, r *http.Request) {
	var req registerBotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	race := domain.Race(req.Race)
	switch race {
	case domain.RaceProtoss, domain.RaceZerg, domain.RaceTerran, domain.RaceRandom:
	default:
		http.Error(w, "race must be one of PROTOSS, ZERG, TERRAN, RANDOM", http.StatusBadRequest)
		return
	}

	bot := &domain.Bot{
		Enabled:    true,
		ParentID:   req.ParentID,
		Name:       req.Name,
		Race:       race,
		BinaryPath: req.BinaryPath,
		Rank:       domain.RankUnknown,
		Rating:     domain.DefaultRating,
	}
	if err := s.bots.CreateBot(r.Context(), bot); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("name", req.Name).Msg("failed to register bot")
		http.Error(w, "failed to register bot", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{"id": bot.ID, "name": bot.Name})
}

func (s *Server) handleDisableBot(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	bot, err := s.bots.GetBotByName(r.Context(), name)
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "bot not found", http.StatusNotFound)
		return
	}
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("name", name).Msg("failed to look up bot")
		http.Error(w, "failed to look up bot", http.StatusInternalServerError)
		return
	}

	if err := s.bots.SetBotEnabled(r.Context(), bot.ID, false); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("name", name).Msg("failed to disable bot")
		http.Error(w, "failed to disable bot", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
