// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/netscope/internal/httputil"
	"github.com/pdiddy/netscope/pkg/types"
)

const (
	quakeDefaultBase = "https://quake.360.net/api/v3"
	quakeMaxPageSize = 100
)

// Quake queries the 360 Quake service-data API. Quake paginates by offset,
// authenticates via the X-QuakeToken header, and serves all three query
// types (company lookups use the org field).
type Quake struct {
	client       *http.Client
	cfg          types.SourceConfig
	httpCfg      types.HTTPConfig
	capabilities map[types.QueryType]bool
}

// NewQuake builds the Quake adapter.
func NewQuake(cfg types.SourceConfig, httpCfg types.HTTPConfig, client *http.Client) *Quake {
	return &Quake{
		client:  client,
		cfg:     cfg,
		httpCfg: httpCfg,
		capabilities: map[types.QueryType]bool{
			types.QueryDomain:  true,
			types.QueryIP:      true,
			types.QueryCompany: true,
		},
	}
}

// Name returns the source identifier.
func (q *Quake) Name() string { return "quake" }

// Supports reports whether Quake serves the query type.
func (q *Quake) Supports(t types.QueryType) bool { return q.capabilities[t] }

// MaxPageSize returns Quake's per-request ceiling.
func (q *Quake) MaxPageSize() int { return quakeMaxPageSize }

// endpoint resolves an API path against the configured base address,
// adding the /api/v3 segment only when the base does not already carry it.
func (q *Quake) endpoint(path string) string {
	base := q.cfg.BaseURL
	if base == "" {
		base = quakeDefaultBase
	}
	base = strings.TrimRight(base, "/")
	if !strings.Contains(base, "/api/v3") {
		base += "/api/v3"
	}
	return base + path
}

// buildQuakeQuery renders Quake's search syntax for the query type.
func buildQuakeQuery(t types.QueryType, target string) string {
	switch t {
	case types.QueryIP:
		return fmt.Sprintf("ip:%q", target)
	case types.QueryCompany:
		return fmt.Sprintf("org:%q", target)
	}
	return fmt.Sprintf("domain:%q", target)
}

type quakeResponse struct {
	// Code is numeric 0 on success but a string like "u3004" on errors,
	// so it cannot decode into a single concrete type.
	Code    any        `json:"code"`
	Message string     `json:"message"`
	Data    []quakeRow `json:"data"`
	Meta    struct {
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	} `json:"meta"`
}

func (r *quakeResponse) codeOK() bool {
	c, ok := r.Code.(float64)
	return ok && c == 0
}

type quakeRow struct {
	IP       string `json:"ip"`
	Port     int    `json:"port"`
	Hostname string `json:"hostname"`
	Domain   string `json:"domain"`
	Service  struct {
		HTTP struct {
			Host  string `json:"host"`
			Title string `json:"title"`
		} `json:"http"`
	} `json:"service"`
}

// Probe checks the credential against the user-info endpoint.
func (q *Quake) Probe(ctx context.Context) error {
	if q.cfg.APIKey == "" {
		return &CredentialError{Source: q.Name(), Kind: CredentialInvalid,
			Err: fmt.Errorf("no API key configured")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, q.endpoint("/user/info"), nil)
	if err != nil {
		return &CredentialError{Source: q.Name(), Kind: CredentialUnreachable,
			Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("X-QuakeToken", q.cfg.APIKey)
	req.Header.Set("User-Agent", q.httpCfg.UserAgent)

	resp, err := q.client.Do(req)
	if err != nil {
		return &CredentialError{Source: q.Name(), Kind: CredentialUnreachable, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == 401 || resp.StatusCode == 403:
		return &CredentialError{Source: q.Name(), Kind: CredentialInvalid,
			Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	case resp.StatusCode == 429:
		return &CredentialError{Source: q.Name(), Kind: CredentialThrottled,
			Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return &CredentialError{Source: q.Name(), Kind: CredentialUnreachable,
			Err: fmt.Errorf("Quake API returned HTTP %d", resp.StatusCode)}
	}

	var qr quakeResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		return &CredentialError{Source: q.Name(), Kind: CredentialUnreachable,
			Err: fmt.Errorf("parsing Quake response: %w", err)}
	}
	if !qr.codeOK() {
		return &CredentialError{Source: q.Name(), Kind: CredentialInvalid,
			Err: fmt.Errorf("Quake API error: %s", qr.Message)}
	}
	return nil
}

// Fetch retrieves one page of service search results. Quake pages by
// offset, so the start index is derived from the 1-based page number.
func (q *Quake) Fetch(ctx context.Context, task Task) (*Page, error) {
	if q.cfg.APIKey == "" {
		return nil, &FetchError{Source: q.Name(), Target: task.Target, Kind: FetchAuthRevoked,
			Err: fmt.Errorf("no API key configured")}
	}

	size := clampSize(task.PageSize, quakeMaxPageSize)
	payload := map[string]any{
		"query":  buildQuakeQuery(task.Type, task.Target),
		"start":  (task.Page - 1) * size,
		"size":   size,
		"latest": true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &FetchError{Source: q.Name(), Target: task.Target, Kind: FetchNetwork,
			Err: fmt.Errorf("encoding request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		q.endpoint("/search/quake_service"), bytes.NewReader(body))
	if err != nil {
		return nil, &FetchError{Source: q.Name(), Target: task.Target, Kind: FetchNetwork,
			Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("X-QuakeToken", q.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", q.httpCfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, q.client, req, 0)
	if err != nil {
		return nil, &FetchError{Source: q.Name(), Target: task.Target, Kind: FetchNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Source: q.Name(), Target: task.Target,
			Kind: statusFetchKind(resp.StatusCode),
			Err:  fmt.Errorf("Quake API returned HTTP %d", resp.StatusCode)}
	}

	var qr quakeResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		return nil, &FetchError{Source: q.Name(), Target: task.Target, Kind: FetchServerError,
			Err: fmt.Errorf("parsing Quake response: %w", err)}
	}
	if !qr.codeOK() {
		return nil, &FetchError{Source: q.Name(), Target: task.Target,
			Kind: apiErrorKind(qr.Message),
			Err:  fmt.Errorf("Quake API error: %s", qr.Message)}
	}

	return &Page{
		Source: q.Name(),
		Size:   size,
		Count:  len(qr.Data),
		Total:  qr.Meta.Pagination.Total,
		rows:   qr.Data,
	}, nil
}

// Normalize converts Quake rows into canonical records. The hostname field
// and the nested service.http block fill in for each other when one side
// is missing.
func (q *Quake) Normalize(p *Page) []types.AssetRecord {
	rows, ok := p.rows.([]quakeRow)
	if !ok {
		return nil
	}

	var records []types.AssetRecord
	for _, row := range rows {
		host := row.Hostname
		domain := row.Service.HTTP.Host
		if domain == "" {
			domain = row.Hostname
		}
		if host == "" {
			host = domain
		}
		if host == "" && row.Domain != "" {
			host = row.Domain
			domain = row.Domain
		}

		r := types.AssetRecord{
			Host:   host,
			IP:     row.IP,
			Port:   row.Port,
			Title:  row.Service.HTTP.Title,
			Domain: domain,
			Source: q.Name(),
		}
		if r.Host == "" && r.IP == "" {
			p.Dropped++
			continue
		}
		records = append(records, r)
	}
	return records
}
