package logic

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/openfrc/stats-api/internal/models"
	"github.com/openfrc/stats-api/internal/store"
)

func qual(n int, red, blue [3]string, redScore, blueScore float64) models.MatchResult {
	return models.MatchResult{
		Key:         "m" + string(rune('0'+n)),
		RedTeams:    red,
		BlueTeams:   blue,
		RedScore:    redScore,
		BlueScore:   blueScore,
		CompLevel:   models.CompLevelQual,
		MatchNumber: n,
	}
}

func mixedMatches() []models.MatchResult {
	return []models.MatchResult{
		qual(1, [3]string{"A", "B", "C"}, [3]string{"D", "E", "F"}, 90, 60),
		qual(2, [3]string{"A", "D", "G"}, [3]string{"B", "E", "H"}, 100, 40),
		qual(3, [3]string{"C", "F", "H"}, [3]string{"A", "E", "G"}, 55, 80),
	}
}

func TestComputeRatings_FixedPoint(t *testing.T) {
	matches := []models.MatchResult{
		qual(1, [3]string{"A", "B", "C"}, [3]string{"D", "E", "F"}, 90, 60),
	}

	ratings, err := ComputeRatings(matches, DefaultTuning())
	if err != nil {
		t.Fatalf("ComputeRatings failed: %v", err)
	}

	for _, team := range []string{"A", "B", "C"} {
		if ratings[team] != 30 {
			t.Errorf("Expected %s to stay at 30, got %v", team, ratings[team])
		}
	}
	for _, team := range []string{"D", "E", "F"} {
		if ratings[team] != 20 {
			t.Errorf("Expected %s to stay at 20, got %v", team, ratings[team])
		}
	}
}

func TestComputeRatings_Deterministic(t *testing.T) {
	first, err := ComputeRatings(mixedMatches(), DefaultTuning())
	if err != nil {
		t.Fatalf("ComputeRatings failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		again, _ := ComputeRatings(mixedMatches(), DefaultTuning())
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Run %d differs: %v vs %v", i, first, again)
		}
	}
}

func TestComputeRatings_AdjustmentsDecay(t *testing.T) {
	at := func(iters int) map[string]float64 {
		tuning := DefaultTuning()
		tuning.MaxIters = iters
		r, err := ComputeRatings(mixedMatches(), tuning)
		if err != nil {
			t.Fatalf("ComputeRatings failed: %v", err)
		}
		return r
	}

	early := math.Abs(at(2)["A"] - at(1)["A"])
	late := math.Abs(at(500)["A"] - at(499)["A"])
	if late >= early {
		t.Errorf("Expected late adjustment (%v) to be smaller than early adjustment (%v)", late, early)
	}

	if got := math.Pow(DefaultTuning().Decay, 500); got < 0.017 || got > 0.019 {
		t.Errorf("Expected decay multiplier ~0.018 after 500 iterations, got %v", got)
	}
}

func TestComputeRatings_Empty(t *testing.T) {
	_, err := ComputeRatings(nil, DefaultTuning())
	var noData *NoMatchDataError
	if !errors.As(err, &noData) {
		t.Fatalf("Expected NoMatchDataError, got %v", err)
	}
}

func TestPassesFor(t *testing.T) {
	tuning := DefaultTuning()
	tests := []struct {
		remaining int
		want      int
	}{
		{1, 3},
		{24, 3},
		{25, 2},
		{44, 2},
		{45, 1},
		{200, 1},
	}
	for _, tt := range tests {
		if got := passesFor(tt.remaining, tuning); got != tt.want {
			t.Errorf("passesFor(%d) = %d, want %d", tt.remaining, got, tt.want)
		}
	}
}

func TestJoinStandings(t *testing.T) {
	rankings := []models.Ranking{
		{TeamKey: "frc2", Rank: 2},
		{TeamKey: "frc1", Rank: 1},
		{TeamKey: "frc3", Rank: 3},
	}
	ratings := map[string]float64{"frc1": 30, "frc2": 12.3456}

	got := JoinStandings(rankings, ratings)
	want := []models.EventStanding{
		{TeamKey: "frc1", Rank: 1, FSM: "30.00"},
		{TeamKey: "frc2", Rank: 2, FSM: "12.35"},
		{TeamKey: "frc3", Rank: 3, FSM: "0.00"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("JoinStandings = %+v, want %+v", got, want)
	}
}

func TestComponentAverages(t *testing.T) {
	m := qual(1, [3]string{"A", "B", "C"}, [3]string{"D", "E", "F"}, 90, 60)
	m.RedBreakdown = &models.ScoreBreakdown{Algae: 30, Coral: 60, Auto: 15, Climb: 12}
	avg := ComponentAverages([]models.MatchResult{m})

	if got := avg["A"]; got.Algae != 10 || got.Coral != 20 || got.Auto != 5 || got.Climb != 4 {
		t.Errorf("Unexpected averages for A: %+v", got)
	}
	if _, ok := avg["D"]; ok {
		t.Error("Expected no averages for a team without breakdowns")
	}
}

func TestRatingService_CachesSummary(t *testing.T) {
	provider := newFakeProvider()
	provider.matches["2025test"] = mixedMatches()
	sink := &recordingSink{}

	svc := NewRatingService(RatingConfig{
		Provider: provider,
		Store:    store.NewMemoryStore(),
		Sink:     sink,
		Tuning:   DefaultTuning(),
		Logger:   zap.NewNop(),
	})

	ctx := context.Background()
	first, err := svc.EventRatings(ctx, "2025test")
	if err != nil {
		t.Fatalf("EventRatings failed: %v", err)
	}
	second, err := svc.EventRatings(ctx, "2025test")
	if err != nil {
		t.Fatalf("EventRatings failed: %v", err)
	}

	if calls := provider.Calls("matches"); calls != 1 {
		t.Errorf("Expected 1 provider call, got %d", calls)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("Cached ratings differ from computed ratings")
	}
	if len(sink.snapshots) != len(first) {
		t.Errorf("Expected %d snapshots, got %d", len(first), len(sink.snapshots))
	}
	runID := sink.snapshots[0].RunID
	for _, s := range sink.snapshots {
		if s.RunID != runID {
			t.Fatal("Expected one run id per computation")
		}
	}
}

func TestRatingService_Errors(t *testing.T) {
	provider := newFakeProvider()
	provider.failEvents["2025down"] = true

	svc := NewRatingService(RatingConfig{
		Provider: provider,
		Store:    store.NewMemoryStore(),
		Tuning:   DefaultTuning(),
		Logger:   zap.NewNop(),
	})

	_, err := svc.EventRatings(context.Background(), "2025down")
	var fetchErr *DataFetchError
	if !errors.As(err, &fetchErr) || !fetchErr.Temporary() {
		t.Errorf("Expected temporary DataFetchError, got %v", err)
	}

	_, err = svc.EventRatings(context.Background(), "2025empty")
	var noData *NoMatchDataError
	if !errors.As(err, &noData) {
		t.Fatalf("Expected NoMatchDataError, got %v", err)
	}
	if noData.EventCode != "2025empty" {
		t.Errorf("Expected event code on error, got %q", noData.EventCode)
	}
}

func TestRatingService_StandingsAndDraftTeams(t *testing.T) {
	provider := newFakeProvider()
	m := qual(1, [3]string{"A", "B", "C"}, [3]string{"D", "E", "F"}, 90, 60)
	m.RedBreakdown = &models.ScoreBreakdown{Algae: 30}
	provider.matches["2025test"] = []models.MatchResult{m}
	provider.rankings["2025test"] = []models.Ranking{{TeamKey: "D", Rank: 1}, {TeamKey: "A", Rank: 2}, {TeamKey: "Z", Rank: 3}}

	svc := NewRatingService(RatingConfig{
		Provider: provider,
		Store:    store.NewMemoryStore(),
		Tuning:   DefaultTuning(),
		Logger:   zap.NewNop(),
	})

	standings, err := svc.EventStandings(context.Background(), "2025test")
	if err != nil {
		t.Fatalf("EventStandings failed: %v", err)
	}
	if len(standings) != 3 || standings[0].FSM != "20.00" || standings[2].FSM != "0.00" {
		t.Errorf("Unexpected standings: %+v", standings)
	}

	teams, err := svc.DraftTeams(context.Background(), "2025test")
	if err != nil {
		t.Fatalf("DraftTeams failed: %v", err)
	}
	if teams[1].TeamKey != "A" || teams[1].FSM != 30 || teams[1].Algae != 10 {
		t.Errorf("Unexpected draft team: %+v", teams[1])
	}
}
