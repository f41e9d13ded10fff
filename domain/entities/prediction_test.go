package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPrediction(status PredictionStatus) *Prediction {
	return &Prediction{
		ID:             "p-1",
		UserID:         "u-1",
		Sport:          SportFootball,
		Competition:    "FRA_L1",
		MatchName:      "PSG - OM",
		MatchDate:      "2025-03-01",
		MatchTime:      "21:00",
		Odds:           2.5,
		PredictionText: "PSG wins",
		Status:         status,
		CreatedAt:      time.Date(2025, 2, 20, 10, 0, 0, 0, time.UTC),
	}
}

func assertResultInvariant(t *testing.T, p *Prediction) {
	t.Helper()
	assert.Equal(t, p.Result != nil, p.Status.IsFinalized(),
		"result must be set exactly when status %s is finalized", p.Status)
}

func TestPrediction_Transitions(t *testing.T) {
	t.Run("happy path keeps result invariant", func(t *testing.T) {
		p := newTestPrediction(PredictionStatusPendingValidation)
		assertResultInvariant(t, p)

		require.True(t, p.Activate())
		assert.Equal(t, PredictionStatusActive, p.Status)
		assertResultInvariant(t, p)

		require.True(t, p.MarkWaitingResult())
		assert.Equal(t, PredictionStatusWaitingResult, p.Status)
		assertResultInvariant(t, p)

		require.True(t, p.Finalize(ResultFailed))
		assert.Equal(t, PredictionStatusFailed, p.Status)
		require.NotNil(t, p.Result)
		assert.Equal(t, ResultFailed, *p.Result)
		assertResultInvariant(t, p)
	})

	t.Run("transitions from the wrong state are no-ops", func(t *testing.T) {
		p := newTestPrediction(PredictionStatusActive)
		assert.False(t, p.Activate())
		assert.False(t, p.Finalize(ResultSuccess))
		assert.Equal(t, PredictionStatusActive, p.Status)
		assert.Nil(t, p.Result)

		p.Status = PredictionStatusWaitingResult
		assert.False(t, p.MarkWaitingResult())
		assert.Equal(t, PredictionStatusWaitingResult, p.Status)
	})

	t.Run("finalized predictions cannot be finalized again", func(t *testing.T) {
		p := newTestPrediction(PredictionStatusWaitingResult)
		require.True(t, p.Finalize(ResultSuccess))
		assert.False(t, p.Finalize(ResultFailed))
		assert.Equal(t, ResultSuccess, *p.Result)
	})
}

func TestPrediction_CheckOutcome(t *testing.T) {
	p := newTestPrediction(PredictionStatusWaitingResult)

	assert.NoError(t, p.CheckOutcome(ResultSuccess))
	assert.NoError(t, p.CheckOutcome(ResultFailed))

	err := p.CheckOutcome(ResultExactSuccess)
	assert.True(t, IsReason(err, ReasonInvalidOutcome))

	err = p.CheckOutcome(Result("draw"))
	assert.True(t, IsReason(err, ReasonInvalidOutcome))

	score := "2-1"
	p.ProbableScore = &score
	assert.NoError(t, p.CheckOutcome(ResultExactSuccess))
}

func TestPrediction_CheckDeletable(t *testing.T) {
	grace := 48 * time.Hour
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		status  PredictionStatus
		age     time.Duration
		owner   string
		wantErr Reason
	}{
		{name: "one day old is too recent", status: PredictionStatusActive, age: 24 * time.Hour, owner: "u-1", wantErr: ReasonTooRecent},
		{name: "exactly at grace is too recent", status: PredictionStatusActive, age: grace, owner: "u-1", wantErr: ReasonTooRecent},
		{name: "three days old active is deletable", status: PredictionStatusActive, age: 72 * time.Hour, owner: "u-1"},
		{name: "three days old pending is deletable", status: PredictionStatusPendingValidation, age: 72 * time.Hour, owner: "u-1"},
		{name: "three days old success is finalized", status: PredictionStatusSuccess, age: 72 * time.Hour, owner: "u-1", wantErr: ReasonCannotDeleteFinalized},
		{name: "three days old exact_success is finalized", status: PredictionStatusExactSuccess, age: 72 * time.Hour, owner: "u-1", wantErr: ReasonCannotDeleteFinalized},
		{name: "other user is forbidden", status: PredictionStatusActive, age: 72 * time.Hour, owner: "u-2", wantErr: ReasonForbidden},
		{name: "forbidden is checked before age", status: PredictionStatusSuccess, age: time.Hour, owner: "u-2", wantErr: ReasonForbidden},
		{name: "age is checked before finalized", status: PredictionStatusSuccess, age: time.Hour, owner: "u-1", wantErr: ReasonTooRecent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPrediction(tt.status)
			p.CreatedAt = now.Add(-tt.age)

			err := p.CheckDeletable(tt.owner, now, grace)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, IsReason(err, tt.wantErr), "expected %s, got %v", tt.wantErr, err)
		})
	}
}

func TestPrediction_ScheduledAt(t *testing.T) {
	p := newTestPrediction(PredictionStatusActive)

	at, err := p.ScheduledAt(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 21, 0, 0, 0, time.UTC), at)

	p.MatchTime = "21:00:30"
	at, err = p.ScheduledAt(nil)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 21, 0, 30, 0, time.UTC), at)

	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	p.MatchTime = "21:00"
	at, err = p.ScheduledAt(paris)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC), at.UTC())

	p.MatchDate = "not-a-date"
	_, err = p.ScheduledAt(time.UTC)
	assert.Error(t, err)
}

func TestOddsRangeFor(t *testing.T) {
	tests := []struct {
		odds   float64
		want   OddsRange
		wantOK bool
	}{
		{odds: 0.99, wantOK: false},
		{odds: 1.00, want: OddsRangeVerySafe, wantOK: true},
		{odds: 1.49, want: OddsRangeVerySafe, wantOK: true},
		{odds: 1.50, want: OddsRangeVerySafe, wantOK: true},
		{odds: 1.51, want: OddsRangeModeratelySafe, wantOK: true},
		{odds: 2.00, want: OddsRangeModeratelySafe, wantOK: true},
		{odds: 2.01, want: OddsRangeRisky, wantOK: true},
		{odds: 5.00, want: OddsRangeRisky, wantOK: true},
		{odds: 5.01, want: OddsRangeVeryRisky, wantOK: true},
		{odds: 998.99, want: OddsRangeVeryRisky, wantOK: true},
		{odds: 999, want: OddsRangeVeryRisky, wantOK: true},
		{odds: 999.01, wantOK: false},
		{odds: 1000, wantOK: false},
	}

	for _, tt := range tests {
		got, ok := OddsRangeFor(tt.odds)
		assert.Equal(t, tt.wantOK, ok, "odds %.2f", tt.odds)
		assert.Equal(t, tt.want, got, "odds %.2f", tt.odds)
	}
}

func TestSubmitPredictionRequest_Validate(t *testing.T) {
	valid := func() *SubmitPredictionRequest {
		return &SubmitPredictionRequest{
			UserID:         "u-1",
			Sport:          "football",
			Competition:    "FRA_L1",
			MatchName:      "PSG - OM",
			MatchDate:      "2025-03-01",
			MatchTime:      "21:00",
			Odds:           1.85,
			PredictionText: "Both teams score",
		}
	}

	t.Run("valid request", func(t *testing.T) {
		req := valid()
		req.Normalize()
		assert.NoError(t, req.Validate())
	})

	t.Run("odds exactly one is accepted", func(t *testing.T) {
		req := valid()
		req.Odds = 1.00
		assert.NoError(t, req.Validate())
	})

	t.Run("odds bounds follow the stored precision", func(t *testing.T) {
		for _, odds := range []float64{MaxOdds, 1.51, 2.1, 998.99} {
			req := valid()
			req.Odds = odds
			assert.NoError(t, req.Validate(), "odds %v", odds)
		}

		for _, odds := range []float64{1e7, MaxOdds + 0.01, 1.505, 2.001} {
			req := valid()
			req.Odds = odds
			err := req.Validate()
			var verr *ValidationError
			require.ErrorAs(t, err, &verr, "odds %v", odds)
			assert.Contains(t, verr.Fields, "odds")
		}
	})

	t.Run("collects every bad field", func(t *testing.T) {
		req := valid()
		req.Odds = 0.95
		req.MatchName = "   "
		req.PredictionText = ""
		req.MatchTime = "25:99"
		req.Normalize()

		err := req.Validate()
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "odds")
		assert.Contains(t, verr.Fields, "match_name")
		assert.Contains(t, verr.Fields, "prediction_text")
		assert.Contains(t, verr.Fields, "time")
	})

	t.Run("competition must belong to sport", func(t *testing.T) {
		req := valid()
		req.Sport = "rugby"
		err := req.Validate()
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "competition")
	})

	t.Run("unknown sport", func(t *testing.T) {
		req := valid()
		req.Sport = "tennis"
		err := req.Validate()
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "sport")
		assert.NotContains(t, verr.Fields, "competition")
	})

	t.Run("blank optional fields become nil", func(t *testing.T) {
		req := valid()
		req.ProbableScore = "  "
		req.Details = " note "
		req.Normalize()
		p := req.ToPrediction()
		assert.Nil(t, p.ProbableScore)
		require.NotNil(t, p.Details)
		assert.Equal(t, "note", *p.Details)
		assert.Equal(t, PredictionStatusPendingValidation, p.Status)
	})
}

func TestParseLeaderboardParams(t *testing.T) {
	params, err := ParseLeaderboardParams("", "", "")
	require.NoError(t, err)
	assert.Equal(t, LeaderboardModeGlobal, params.Mode)

	params, err = ParseLeaderboardParams("odds_range", "", "")
	require.NoError(t, err)
	assert.Equal(t, OddsRangeVerySafe, params.OddsRange)

	_, err = ParseLeaderboardParams("odds_range", "insane", "")
	assert.True(t, IsValidationError(err))

	params, err = ParseLeaderboardParams("sport", "", "Rugby")
	require.NoError(t, err)
	require.NotNil(t, params.Sport)
	assert.Equal(t, SportRugby, *params.Sport)

	params, err = ParseLeaderboardParams("sport", "", "")
	require.NoError(t, err)
	assert.Nil(t, params.Sport)

	_, err = ParseLeaderboardParams("weekly", "", "")
	assert.True(t, IsValidationError(err))
}

func TestCompetitions(t *testing.T) {
	assert.True(t, IsValidCompetition(SportFootball, "ENG_PL"))
	assert.True(t, IsValidCompetition(SportFootball, "eng_pl"))
	assert.True(t, IsValidCompetition(SportRugby, "INT_RUG_WC"))
	assert.False(t, IsValidCompetition(SportBasketball, "ENG_PL"))
	assert.False(t, IsValidCompetition(SportHandball, "UNKNOWN"))

	for _, c := range CompetitionsFor(SportHandball) {
		assert.Equal(t, SportHandball, c.Sport)
	}
}
