package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tipster/api"
	"tipster/config"
	"tipster/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeAPI(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func writeBody(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestAdminClient_SendsActorHeaders(t *testing.T) {
	var gotUser, gotCode, gotPath string
	var gotBody map[string]string
	srv := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		gotUser = r.Header.Get(api.HeaderUserID)
		gotCode = r.Header.Get(api.HeaderAccessCode)
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		writeBody(w, http.StatusOK, map[string]any{"id": "p1", "status": "success"})
	})

	client := newAdminClient(config.CLIConfig{APIBaseURL: srv.URL + "/", UserID: "mod", AccessCode: "secret"})
	require.NoError(t, client.RecordResult(context.Background(), "p1", "success"))

	assert.Equal(t, "mod", gotUser)
	assert.Equal(t, "secret", gotCode)
	assert.Equal(t, "/v1/admin/predictions/p1/result", gotPath)
	assert.Equal(t, "success", gotBody["result"])
}

func TestAdminClient_DecodesListings(t *testing.T) {
	pseudo := "alice"
	srv := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/admin/predictions/pending":
			writeBody(w, http.StatusOK, map[string]any{
				"predictions": []*entities.PredictionWithAuthor{{
					Prediction: &entities.Prediction{ID: "p1", Sport: entities.SportFootball, MatchName: "PSG - OM", Odds: 1.9},
					Author:     &entities.Author{ID: "u1", Pseudo: &pseudo},
				}},
			})
		case "/v1/leaderboard":
			assert.Equal(t, "odds_range", r.URL.Query().Get("mode"))
			assert.Equal(t, "risky", r.URL.Query().Get("odds_range"))
			writeBody(w, http.StatusOK, map[string]any{
				"params":  map[string]string{"mode": "odds_range", "odds_range": "risky"},
				"entries": []map[string]any{{"rank": 1, "user_id": "u1", "total_predictions": 3}},
			})
		default:
			http.NotFound(w, r)
		}
	})

	client := newAdminClient(config.CLIConfig{APIBaseURL: srv.URL})

	pending, err := client.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "p1", pending[0].ID)
	assert.Equal(t, "alice", authorName(pending[0].Author))

	board, err := client.Leaderboard(context.Background(), "odds_range", "risky", "")
	require.NoError(t, err)
	require.Len(t, board.Entries, 1)
	assert.Equal(t, 1, board.Entries[0].Rank)
	assert.Equal(t, entities.OddsRangeRisky, board.Params.OddsRange)
}

func TestAdminClient_ReturnsAPIErrors(t *testing.T) {
	srv := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/admin/sweep":
			writeBody(w, http.StatusForbidden, map[string]string{"error": "forbidden", "message": "moderator rights required"})
		case "/v1/admin/predictions/p1/validate":
			writeBody(w, http.StatusNotFound, map[string]string{"error": "not_found", "message": "prediction not found"})
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	})

	client := newAdminClient(config.CLIConfig{APIBaseURL: srv.URL})

	_, err := client.Sweep(context.Background())
	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "forbidden", apiErr.Code)

	err = client.Validate(context.Background(), "p1")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "not_found: prediction not found", apiErr.Error())

	err = client.Reject(context.Background(), "p2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestAdminCommand_Validate(t *testing.T) {
	var called bool
	srv := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		called = r.Method == http.MethodPost && r.URL.Path == "/v1/admin/predictions/abc/validate"
		assert.Equal(t, "code", r.Header.Get(api.HeaderAccessCode))
		writeBody(w, http.StatusOK, map[string]string{"id": "abc", "status": "active"})
	})

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"admin", "--api", srv.URL, "--access-code", "code", "validate", "abc"})

	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.True(t, called)
	assert.Contains(t, out.String(), "prediction abc is now active")
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := NewRootCmd()

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "sweep", "admin"} {
		assert.True(t, names[want], "missing %s command", want)
	}
}

func TestRenderLeaderboard(t *testing.T) {
	pseudo := "zizou"
	var out bytes.Buffer
	require.NoError(t, renderLeaderboard(&out, []*entities.LeaderboardEntry{
		{Rank: 1, UserID: "u1", Pseudo: &pseudo, TotalPredictions: 4, SuccessPredictions: 3, SuccessRate: 75, AvgOdds: 2.1},
		{Rank: 2, UserID: "u2", TotalPredictions: 2},
	}))

	assert.Contains(t, out.String(), "zizou")
	assert.Contains(t, out.String(), "75.0%")
	assert.Contains(t, out.String(), "u2")

	out.Reset()
	require.NoError(t, renderPredictions(&out, nil))
	assert.Equal(t, "no predictions\n", out.String())
}
