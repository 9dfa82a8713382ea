package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/taitfuller/feedr-backend/internal/domain"
	"github.com/taitfuller/feedr-backend/internal/service"
	"github.com/taitfuller/feedr-backend/pkg/httputil"
)

const maxBodyBytes = 1 << 20

// parseSummaryQuery reads feed, from, to and platforms from the query string.
// On failure it writes a 400 and returns false.
func parseSummaryQuery(w http.ResponseWriter, r *http.Request, feedRequired bool) (service.SummaryQuery, bool) {
	var q service.SummaryQuery
	values := r.URL.Query()

	feed := values.Get("feed")
	switch {
	case feed == "" && feedRequired:
		httputil.WriteBadRequest(w, "INVALID_PARAMETER", "`feed` is required")
		return q, false
	case feed != "":
		id, ok := httputil.ParseUUID(w, feed)
		if !ok {
			return q, false
		}
		q.FeedID = id.String()
	}

	from, ok := httputil.ParseTime(w, "from", values.Get("from"))
	if !ok {
		return q, false
	}
	to, ok := httputil.ParseTime(w, "to", values.Get("to"))
	if !ok {
		return q, false
	}
	q.Window = domain.Window{From: from, To: to}
	if !q.Window.Valid() {
		httputil.WriteBadRequest(w, "INVALID_PARAMETER", "`from` must not be after `to`")
		return q, false
	}

	platforms, ok := parsePlatforms(w, values.Get("platforms"))
	if !ok {
		return q, false
	}
	q.Platforms = platforms
	return q, true
}

// parsePlatforms parses a comma-separated platform list. An empty list
// selects every platform and is returned as nil.
func parsePlatforms(w http.ResponseWriter, raw string) ([]domain.Platform, bool) {
	if strings.TrimSpace(raw) == "" {
		return nil, true
	}

	seen := make(map[domain.Platform]bool)
	var platforms []domain.Platform
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		p, ok := domain.ParsePlatform(part)
		if !ok {
			httputil.WriteBadRequest(w, "INVALID_PARAMETER", "unknown platform: "+part)
			return nil, false
		}
		if !seen[p] {
			seen[p] = true
			platforms = append(platforms, p)
		}
	}
	return platforms, true
}

// decodeBody decodes an optional JSON body into dst. An empty body leaves dst
// untouched. On a malformed body it writes a 400 and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		httputil.WriteBadRequest(w, "INVALID_INPUT", "invalid request body: "+err.Error())
		return false
	}
	return true
}
