// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/netscope/internal/httputil"
	"github.com/pdiddy/netscope/pkg/types"
)

const (
	hunterDefaultBase = "https://hunter.qianxin.com/openApi"

	// hunterPageSize is the only page size the Hunter API accepts. Any
	// requested size is silently forced to it.
	hunterPageSize = 10
)

// Hunter queries the Qianxin Hunter API. Hunter serves all three query
// types but fixes the page size at 10.
type Hunter struct {
	client       *http.Client
	cfg          types.SourceConfig
	httpCfg      types.HTTPConfig
	capabilities map[types.QueryType]bool
}

// NewHunter builds the Hunter adapter.
func NewHunter(cfg types.SourceConfig, httpCfg types.HTTPConfig, client *http.Client) *Hunter {
	return &Hunter{
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
func (h *Hunter) Name() string { return "hunter" }

// Supports reports whether Hunter serves the query type.
func (h *Hunter) Supports(t types.QueryType) bool { return h.capabilities[t] }

// MaxPageSize returns Hunter's fixed page size.
func (h *Hunter) MaxPageSize() int { return hunterPageSize }

func (h *Hunter) baseURL() string {
	if h.cfg.BaseURL != "" {
		return strings.TrimRight(h.cfg.BaseURL, "/")
	}
	return hunterDefaultBase
}

// buildHunterQuery renders Hunter's search syntax for the query type.
func buildHunterQuery(t types.QueryType, target string) string {
	switch t {
	case types.QueryIP:
		return fmt.Sprintf("ip=%q", target)
	case types.QueryCompany:
		return fmt.Sprintf("company=%q", target)
	}
	return fmt.Sprintf("domain=%q", target)
}

type hunterResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Total        int         `json:"total"`
		SyntaxPrompt string      `json:"syntax_prompt"`
		Arr          []hunterRow `json:"arr"`
	} `json:"data"`
}

type hunterRow struct {
	IP       string `json:"ip"`
	Port     int    `json:"port"`
	Domain   string `json:"domain"`
	WebTitle string `json:"web_title"`
	URL      string `json:"url"`
	Company  string `json:"company"`
}

// Probe checks the credential against the account-info endpoint.
func (h *Hunter) Probe(ctx context.Context) error {
	if h.cfg.APIKey == "" {
		return &CredentialError{Source: h.Name(), Kind: CredentialInvalid,
			Err: fmt.Errorf("no API key configured")}
	}

	params := url.Values{"api-key": {h.cfg.APIKey}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL()+"/userInfo?"+params.Encode(), nil)
	if err != nil {
		return &CredentialError{Source: h.Name(), Kind: CredentialUnreachable,
			Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", h.httpCfg.UserAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return &CredentialError{Source: h.Name(), Kind: CredentialUnreachable, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == 401 || resp.StatusCode == 403:
		return &CredentialError{Source: h.Name(), Kind: CredentialInvalid,
			Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	case resp.StatusCode == 429:
		return &CredentialError{Source: h.Name(), Kind: CredentialThrottled,
			Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return &CredentialError{Source: h.Name(), Kind: CredentialUnreachable,
			Err: fmt.Errorf("Hunter API returned HTTP %d", resp.StatusCode)}
	}

	var hr hunterResponse
	if err := json.NewDecoder(resp.Body).Decode(&hr); err != nil {
		return &CredentialError{Source: h.Name(), Kind: CredentialUnreachable,
			Err: fmt.Errorf("parsing Hunter response: %w", err)}
	}
	if hr.Code != 200 {
		return &CredentialError{Source: h.Name(), Kind: CredentialInvalid,
			Err: fmt.Errorf("Hunter API error: %s", hr.Message)}
	}
	return nil
}

// Fetch retrieves one page of search results. The search parameter is
// base64url-encoded without padding, per the Hunter API contract.
func (h *Hunter) Fetch(ctx context.Context, task Task) (*Page, error) {
	if h.cfg.APIKey == "" {
		return nil, &FetchError{Source: h.Name(), Target: task.Target, Kind: FetchAuthRevoked,
			Err: fmt.Errorf("no API key configured")}
	}

	q := buildHunterQuery(task.Type, task.Target)
	params := url.Values{
		"api-key":   {h.cfg.APIKey},
		"search":    {base64.RawURLEncoding.EncodeToString([]byte(q))},
		"page":      {strconv.Itoa(task.Page)},
		"page_size": {strconv.Itoa(hunterPageSize)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL()+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, &FetchError{Source: h.Name(), Target: task.Target, Kind: FetchNetwork,
			Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", h.httpCfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, h.client, req, 0)
	if err != nil {
		return nil, &FetchError{Source: h.Name(), Target: task.Target, Kind: FetchNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Source: h.Name(), Target: task.Target,
			Kind: statusFetchKind(resp.StatusCode),
			Err:  fmt.Errorf("Hunter API returned HTTP %d", resp.StatusCode)}
	}

	var hr hunterResponse
	if err := json.NewDecoder(resp.Body).Decode(&hr); err != nil {
		return nil, &FetchError{Source: h.Name(), Target: task.Target, Kind: FetchServerError,
			Err: fmt.Errorf("parsing Hunter response: %w", err)}
	}
	if hr.Code != 200 {
		return nil, &FetchError{Source: h.Name(), Target: task.Target,
			Kind: apiErrorKind(hr.Message),
			Err:  fmt.Errorf("Hunter API error: %s", hr.Message)}
	}

	return &Page{
		Source: h.Name(),
		Size:   hunterPageSize,
		Count:  len(hr.Data.Arr),
		Total:  hr.Data.Total,
		rows:   hr.Data.Arr,
	}, nil
}

// Normalize converts Hunter rows into canonical records. The host comes
// from the row's url field when present, since Hunter reports the served
// vhost there rather than in a dedicated field.
func (h *Hunter) Normalize(p *Page) []types.AssetRecord {
	rows, ok := p.rows.([]hunterRow)
	if !ok {
		return nil
	}

	var records []types.AssetRecord
	for _, row := range rows {
		host := row.Domain
		if row.URL != "" {
			if u, err := url.Parse(row.URL); err == nil && u.Host != "" {
				host = u.Host
			}
		}

		r := types.AssetRecord{
			Host:   host,
			IP:     row.IP,
			Port:   row.Port,
			Title:  row.WebTitle,
			Domain: row.Domain,
			Source: h.Name(),
		}
		if r.Host == "" && r.IP == "" {
			p.Dropped++
			continue
		}
		records = append(records, r)
	}
	return records
}
