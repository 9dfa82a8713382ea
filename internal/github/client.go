package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/taitfuller/feedr-backend/internal/domain"
	apperrors "github.com/taitfuller/feedr-backend/pkg/errors"
	"github.com/taitfuller/feedr-backend/pkg/httpclient"
)

const userAgent = "FEEDR"

// Client creates issues through the GitHub REST API on behalf of a user.
type Client struct {
	http    *httpclient.CircuitBreakerClient
	baseURL string
	logger  *slog.Logger
}

// NewClient creates a GitHub client rooted at baseURL.
func NewClient(hc *httpclient.CircuitBreakerClient, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		http:    hc,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

type createIssueRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// CreateIssue posts issue with the user's token and returns GitHub's status
// code. 4xx and 5xx statuses are returned as statuses, not errors. An
// unreachable API or an open circuit yields a ServiceUnavailable error.
func (c *Client) CreateIssue(ctx context.Context, token string, issue domain.Issue) (int, error) {
	payload, err := json.Marshal(createIssueRequest{Title: issue.Title, Body: issue.Body})
	if err != nil {
		return 0, fmt.Errorf("encode issue: %w", err)
	}

	endpoint := fmt.Sprintf("%s/repos/%s/%s/issues", c.baseURL, url.PathEscape(issue.Owner), url.PathEscape(issue.Repo))
	header := http.Header{}
	header.Set("Authorization", "token "+token)
	header.Set("User-Agent", userAgent)
	header.Set("Accept", "application/vnd.github+json")

	resp, err := c.http.Post(ctx, endpoint, "application/json", bytes.NewReader(payload), header)
	if err != nil {
		if status, ok := httpclient.StatusCodeOf(err); ok {
			c.logger.WarnContext(ctx, "github rejected issue",
				slog.String("owner", issue.Owner),
				slog.String("repo", issue.Repo),
				slog.Int("status", status),
			)
			return status, nil
		}
		if errors.Is(err, httpclient.ErrCircuitOpen) {
			return 0, apperrors.ServiceUnavailable("github is unavailable", err)
		}
		return 0, apperrors.ServiceUnavailable("github request failed", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	level := slog.LevelInfo
	if httpclient.IsClientError(resp.StatusCode) {
		level = slog.LevelWarn
	}
	c.logger.Log(ctx, level, "github issue request completed",
		slog.String("owner", issue.Owner),
		slog.String("repo", issue.Repo),
		slog.Int("status", resp.StatusCode),
	)
	return resp.StatusCode, nil
}
