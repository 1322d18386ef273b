package logic

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/openfrc/stats-api/internal/models"
)

type teamDirectory struct {
	provider    MatchProvider
	concurrency int
	logger      *zap.SugaredLogger
}

func NewTeamDirectory(provider MatchProvider, concurrency int, logger *zap.Logger) TeamDirectory {
	if concurrency <= 0 {
		concurrency = 8
	}
	return &teamDirectory{provider: provider, concurrency: concurrency, logger: logger.Sugar()}
}

// Locations looks teams up concurrently. A failed lookup degrades to a bare
// entry carrying only the team key.
func (d *teamDirectory) Locations(ctx context.Context, teamKeys []string) map[string]models.TeamInfo {
	var mu sync.Mutex
	out := make(map[string]models.TeamInfo, len(teamKeys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for _, key := range teamKeys {
		key := key
		g.Go(func() error {
			info, err := d.provider.GetTeam(gctx, key)
			if err != nil || info == nil {
				d.logger.Warnw("Team lookup failed", "team", key, "error", err)
				info = &models.TeamInfo{Key: key}
			}
			mu.Lock()
			out[key] = *info
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}
