package logic

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/openfrc/stats-api/internal/models"
	"github.com/openfrc/stats-api/internal/scoring"
	"github.com/openfrc/stats-api/internal/store"
)

var errProviderDown = errors.New("provider unavailable")

// fakeProvider serves canned provider data and counts calls per op
type fakeProvider struct {
	mu         sync.Mutex
	matches    map[string][]models.MatchResult
	rankings   map[string][]models.Ranking
	alliances  map[string][]models.AllianceAssignment
	pages      map[int][]string
	events     map[string][]models.EventRef
	teams      map[string]*models.TeamInfo
	failEvents map[string]bool
	calls      map[string]int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		matches:    make(map[string][]models.MatchResult),
		rankings:   make(map[string][]models.Ranking),
		alliances:  make(map[string][]models.AllianceAssignment),
		pages:      make(map[int][]string),
		events:     make(map[string][]models.EventRef),
		teams:      make(map[string]*models.TeamInfo),
		failEvents: make(map[string]bool),
		calls:      make(map[string]int),
	}
}

func (p *fakeProvider) count(op string) {
	p.mu.Lock()
	p.calls[op]++
	p.mu.Unlock()
}

func (p *fakeProvider) Calls(op string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[op]
}

func (p *fakeProvider) ListQualMatches(ctx context.Context, eventCode string) ([]models.MatchResult, error) {
	p.count("matches")
	if p.failEvents[eventCode] {
		return nil, errProviderDown
	}
	return p.matches[eventCode], nil
}

func (p *fakeProvider) ListRankings(ctx context.Context, eventCode string) ([]models.Ranking, error) {
	p.count("rankings")
	if p.failEvents[eventCode] {
		return nil, errProviderDown
	}
	return p.rankings[eventCode], nil
}

func (p *fakeProvider) ListAlliances(ctx context.Context, eventCode string) ([]models.AllianceAssignment, error) {
	p.count("alliances")
	a, ok := p.alliances[eventCode]
	if !ok {
		return nil, errProviderDown
	}
	return a, nil
}

func (p *fakeProvider) ListTeams(ctx context.Context, year, page int) ([]string, error) {
	p.count(fmt.Sprintf("teams:%d", page))
	return p.pages[page], nil
}

func (p *fakeProvider) GetTeamEvents(ctx context.Context, teamKey string, year int) ([]models.EventRef, error) {
	p.count("events")
	return p.events[teamKey], nil
}

func (p *fakeProvider) GetTeam(ctx context.Context, teamKey string) (*models.TeamInfo, error) {
	p.count("team")
	info, ok := p.teams[teamKey]
	if !ok {
		return nil, errProviderDown
	}
	return info, nil
}

// fakeRatings is a RatingService with fixed per-event output
type fakeRatings struct {
	mu      sync.Mutex
	ratings map[string]map[string]float64
	draft   map[string][]models.DraftTeam
	calls   int
}

func (f *fakeRatings) EventRatings(ctx context.Context, eventCode string) (map[string]float64, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	r, ok := f.ratings[eventCode]
	if !ok {
		return nil, &NoMatchDataError{EventCode: eventCode}
	}
	return r, nil
}

func (f *fakeRatings) EventStandings(ctx context.Context, eventCode string) ([]models.EventStanding, error) {
	return nil, nil
}

func (f *fakeRatings) DraftTeams(ctx context.Context, eventCode string) ([]models.DraftTeam, error) {
	teams, ok := f.draft[eventCode]
	if !ok {
		return nil, &NoMatchDataError{EventCode: eventCode}
	}
	return teams, nil
}

// blockingModel waits for the context to end
type blockingModel struct{}

func (blockingModel) Predict(ctx context.Context, _ scoring.Features) (float64, error) {
	<-ctx.Done()
	return 0, ctx.Err()
}

// recordingSink collects snapshots
type recordingSink struct {
	mu        sync.Mutex
	snapshots []*models.RatingSnapshot
}

func (s *recordingSink) Enqueue(snapshot *models.RatingSnapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, snapshot)
	return true
}

// conflictStore lets another writer win the first PutShard of every shard
type conflictStore struct {
	*store.MemoryStore
	winner map[string]float64
	once   sync.Map
}

func (s *conflictStore) PutShard(ctx context.Context, shard *models.GlobalRankingShard, expected time.Time) error {
	if _, raced := s.once.LoadOrStore(shard.ShardID, true); !raced {
		_ = s.MemoryStore.PutShard(ctx, &models.GlobalRankingShard{ShardID: shard.ShardID, Rankings: s.winner}, expected)
	}
	return s.MemoryStore.PutShard(ctx, shard, expected)
}

// MockConn returns canned rating history rows
type MockConn struct {
	driver.Conn
	QueryCalls int
	LastArgs   []interface{}
}

func (m *MockConn) Query(ctx context.Context, query string, args ...interface{}) (driver.Rows, error) {
	m.QueryCalls++
	m.LastArgs = args
	return &MockRows{}, nil
}

type MockRows struct {
	driver.Rows
	rowIndex int
}

func (m *MockRows) Next() bool {
	m.rowIndex++
	return m.rowIndex <= 2
}

func (m *MockRows) Scan(dest ...interface{}) error {
	assign(dest[0], fmt.Sprintf("2025event%d", m.rowIndex))
	assign(dest[1], float64(40+m.rowIndex))
	assign(dest[2], uint32(10))
	assign(dest[3], time.Date(2025, 3, m.rowIndex, 0, 0, 0, 0, time.UTC))
	return nil
}

func (m *MockRows) Close() error { return nil }

func (m *MockRows) Err() error { return nil }

func assign(dest interface{}, val interface{}) {
	v := reflect.ValueOf(dest).Elem()
	v.Set(reflect.ValueOf(val))
}
