package handlers

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/openfrc/stats-api/internal/logic"
)

// MaxBodySize limits the size of request bodies to 1MB
const MaxBodySize = 1048576

// SnapshotQueue is the rating history worker pool
type SnapshotQueue interface {
	QueueDepth() int
}

// HealthCheck pings one dependency
type HealthCheck func(ctx context.Context) error

type Config struct {
	// Queue and History are nil when no history store is configured
	Queue  SnapshotQueue
	Checks map[string]HealthCheck
	Logger *zap.Logger
	// Services
	Ratings logic.RatingService
	Global  logic.GlobalService
	Draft   logic.DraftService
	Luck    logic.LuckService
	History logic.HistoryService
	Teams   logic.TeamDirectory
}

type Handler struct {
	queue     SnapshotQueue
	checks    map[string]HealthCheck
	logger    *zap.SugaredLogger
	validator *validator.Validate
	ratings   logic.RatingService
	global    logic.GlobalService
	draft     logic.DraftService
	luck      logic.LuckService
	history   logic.HistoryService
	teams     logic.TeamDirectory
}

func New(cfg Config) *Handler {
	return &Handler{
		queue:     cfg.Queue,
		checks:    cfg.Checks,
		logger:    cfg.Logger.Sugar(),
		validator: validator.New(),
		ratings:   cfg.Ratings,
		global:    cfg.Global,
		draft:     cfg.Draft,
		luck:      cfg.Luck,
		history:   cfg.History,
		teams:     cfg.Teams,
	}
}
