package cmd

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"tipster/api"
	"tipster/config"
	"tipster/domain/entities"

	"github.com/go-resty/resty/v2"
)

// apiError is the error body returned by the HTTP API
type apiError struct {
	Code    string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

func (e *apiError) Error() string {
	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for field, msg := range e.Fields {
			parts = append(parts, field+": "+msg)
		}
		return fmt.Sprintf("%s (%s)", e.Code, strings.Join(parts, "; "))
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Code
}

// adminClient calls the moderation endpoints of a running tipster API
type adminClient struct {
	http *resty.Client
}

func newAdminClient(cfg config.CLIConfig) *adminClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")).
		SetTimeout(30*time.Second).
		SetHeader("Accept", "application/json")
	if cfg.UserID != "" {
		client.SetHeader(api.HeaderUserID, cfg.UserID)
	}
	if cfg.AccessCode != "" {
		client.SetHeader(api.HeaderAccessCode, cfg.AccessCode)
	}
	return &adminClient{http: client}
}

type predictionList struct {
	Predictions []*entities.PredictionWithAuthor `json:"predictions"`
}

type leaderboardResponse struct {
	Params  entities.LeaderboardParams   `json:"params"`
	Entries []*entities.LeaderboardEntry `json:"entries"`
}

func (c *adminClient) do(ctx context.Context, method, path string, body, out any) error {
	req := c.http.R().SetContext(ctx).SetError(&apiError{})
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("failed to call %s %s: %w", method, path, err)
	}
	if resp.IsError() {
		if apiErr, ok := resp.Error().(*apiError); ok && apiErr.Code != "" {
			return apiErr
		}
		return fmt.Errorf("%s %s returned %s", method, path, resp.Status())
	}
	return nil
}

func (c *adminClient) ListPending(ctx context.Context) ([]*entities.PredictionWithAuthor, error) {
	var out predictionList
	if err := c.do(ctx, resty.MethodGet, "/v1/admin/predictions/pending", nil, &out); err != nil {
		return nil, err
	}
	return out.Predictions, nil
}

func (c *adminClient) ListWaiting(ctx context.Context) ([]*entities.PredictionWithAuthor, error) {
	var out predictionList
	if err := c.do(ctx, resty.MethodGet, "/v1/admin/predictions/waiting", nil, &out); err != nil {
		return nil, err
	}
	return out.Predictions, nil
}

func (c *adminClient) Validate(ctx context.Context, id string) error {
	return c.do(ctx, resty.MethodPost, "/v1/admin/predictions/"+url.PathEscape(id)+"/validate", nil, nil)
}

func (c *adminClient) Reject(ctx context.Context, id string) error {
	return c.do(ctx, resty.MethodPost, "/v1/admin/predictions/"+url.PathEscape(id)+"/reject", nil, nil)
}

func (c *adminClient) RecordResult(ctx context.Context, id, outcome string) error {
	body := map[string]string{"result": outcome}
	return c.do(ctx, resty.MethodPost, "/v1/admin/predictions/"+url.PathEscape(id)+"/result", body, nil)
}

func (c *adminClient) Sweep(ctx context.Context) (int, error) {
	var out struct {
		Promoted int `json:"promoted"`
	}
	if err := c.do(ctx, resty.MethodPost, "/v1/admin/sweep", nil, &out); err != nil {
		return 0, err
	}
	return out.Promoted, nil
}

func (c *adminClient) Leaderboard(ctx context.Context, mode, oddsRange, sport string) (*leaderboardResponse, error) {
	query := url.Values{}
	if mode != "" {
		query.Set("mode", mode)
	}
	if oddsRange != "" {
		query.Set("odds_range", oddsRange)
	}
	if sport != "" {
		query.Set("sport", sport)
	}

	path := "/v1/leaderboard"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var out leaderboardResponse
	if err := c.do(ctx, resty.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
