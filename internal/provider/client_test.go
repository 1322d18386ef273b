package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListQualMatches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/event/2025casj/matches" {
			t.Errorf("Expected path /event/2025casj/matches, got %s", r.URL.Path)
		}
		if r.Header.Get(authHeader) != "secret" {
			t.Errorf("Expected auth header, got %q", r.Header.Get(authHeader))
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"key":"2025casj_qm2","comp_level":"qm","match_number":2,
			 "alliances":{"red":{"team_keys":["frc1","frc2","frc3"],"score":80},
			              "blue":{"team_keys":["frc4","frc5","frc6"],"score":70}},
			 "score_breakdown":{"red":{"algaePoints":10,"autoCoralPoints":3,"teleopCoralPoints":4,"autoPoints":12,"endGameBargePoints":6},
			                    "blue":null}},
			{"key":"2025casj_qm1","comp_level":"qm","match_number":1,
			 "alliances":{"red":{"team_keys":["frc1","frc2","frc3"],"score":50},
			              "blue":{"team_keys":["frc4","frc5","frc6"],"score":60}}},
			{"key":"2025casj_qm3","comp_level":"qm","match_number":3,
			 "alliances":{"red":{"team_keys":["frc1","frc2","frc3"],"score":-1},
			              "blue":{"team_keys":["frc4","frc5","frc6"],"score":-1}}},
			{"key":"2025casj_sf1m1","comp_level":"sf","match_number":1,
			 "alliances":{"red":{"team_keys":["frc1","frc2","frc3"],"score":100},
			              "blue":{"team_keys":["frc4","frc5","frc6"],"score":90}}}
		]`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithAuthKey("secret"))

	matches, err := client.ListQualMatches(context.Background(), "2025casj")
	if err != nil {
		t.Fatalf("ListQualMatches failed: %v", err)
	}

	if len(matches) != 2 {
		t.Fatalf("Expected 2 played qual matches, got %d", len(matches))
	}
	if matches[0].MatchNumber != 1 || matches[1].MatchNumber != 2 {
		t.Errorf("Matches not sorted by number: %d, %d", matches[0].MatchNumber, matches[1].MatchNumber)
	}
	if matches[1].RedTeams != [3]string{"frc1", "frc2", "frc3"} {
		t.Errorf("Wrong red teams: %v", matches[1].RedTeams)
	}
	if matches[1].RedBreakdown == nil || matches[1].RedBreakdown.Coral != 7 {
		t.Errorf("Expected coral 7 in red breakdown, got %+v", matches[1].RedBreakdown)
	}
	if matches[1].BlueBreakdown != nil {
		t.Errorf("Expected nil blue breakdown, got %+v", matches[1].BlueBreakdown)
	}
}

func TestListRankingsAndAlliances(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/event/2025casj/rankings":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"rankings": []map[string]interface{}{
					{"team_key": "frc254", "rank": 1},
					{"team_key": "frc1678", "rank": 2},
				},
			})
		case "/event/2025casj/alliances":
			json.NewEncoder(w).Encode([]map[string]interface{}{
				{"name": "Alliance 1", "picks": []string{"frc254", "frc1678", "frc604"}},
				{"name": "Alliance 2", "picks": []string{"frc971", "frc973"}},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	rankings, err := client.ListRankings(context.Background(), "2025casj")
	if err != nil {
		t.Fatalf("ListRankings failed: %v", err)
	}
	if len(rankings) != 2 || rankings[0].TeamKey != "frc254" || rankings[0].Rank != 1 {
		t.Errorf("Unexpected rankings: %+v", rankings)
	}

	alliances, err := client.ListAlliances(context.Background(), "2025casj")
	if err != nil {
		t.Fatalf("ListAlliances failed: %v", err)
	}
	if len(alliances) != 2 {
		t.Fatalf("Expected 2 alliances, got %d", len(alliances))
	}
	if alliances[1][2] != "" {
		t.Errorf("Expected padded empty second pick, got %q", alliances[1][2])
	}
}

func TestStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such team", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	_, err := client.GetTeam(context.Background(), "frc0")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", statusErr.StatusCode)
	}
}

func TestGetTeamRegionKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/team/frc3478/simple" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"key": "frc3478", "team_number": 3478, "nickname": "LamBot",
			"city": "San Luis Potosí", "state_prov": "San Luis Potosí", "country": "Mexico",
		})
	}))
	defer server.Close()

	info, err := NewClient(WithBaseURL(server.URL)).GetTeam(context.Background(), "frc3478")
	if err != nil {
		t.Fatalf("GetTeam failed: %v", err)
	}
	if info.RegionKey != "mexico/san-luis-potosi" {
		t.Errorf("RegionKey = %q, want mexico/san-luis-potosi", info.RegionKey)
	}
}

func TestRegionKey(t *testing.T) {
	tests := []struct {
		country, state, want string
	}{
		{"USA", "California", "usa/california"},
		{"México", "Nuevo León", "mexico/nuevo-leon"},
		{"Türkiye", "", "turkiye"},
		{"  Canada ", "Québec", "canada/quebec"},
	}
	for _, tt := range tests {
		if got := RegionKey(tt.country, tt.state); got != tt.want {
			t.Errorf("RegionKey(%q, %q) = %q, want %q", tt.country, tt.state, got, tt.want)
		}
	}
}
