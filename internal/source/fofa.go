// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/netscope/pkg/types"
)

const (
	fofaDefaultBase = "https://fofoapi.com"
	fofaSearchPath  = "/api/v1/search/all"
	fofaMaxPageSize = 10000

	// fofaFields fixes the positional row layout the API returns.
	fofaFields = "host,ip,port,title,domain"
)

// Fofa queries the FOFA search API. FOFA has no company-query syntax, so
// its capability set excludes QueryCompany.
type Fofa struct {
	client       *http.Client
	cfg          types.SourceConfig
	httpCfg      types.HTTPConfig
	capabilities map[types.QueryType]bool
}

// NewFofa builds the FOFA adapter.
func NewFofa(cfg types.SourceConfig, httpCfg types.HTTPConfig, client *http.Client) *Fofa {
	return &Fofa{
		client:  client,
		cfg:     cfg,
		httpCfg: httpCfg,
		capabilities: map[types.QueryType]bool{
			types.QueryDomain: true,
			types.QueryIP:     true,
		},
	}
}

// Name returns the source identifier.
func (f *Fofa) Name() string { return "fofa" }

// Supports reports whether FOFA serves the query type.
func (f *Fofa) Supports(t types.QueryType) bool { return f.capabilities[t] }

// MaxPageSize returns FOFA's documented per-page ceiling.
func (f *Fofa) MaxPageSize() int { return fofaMaxPageSize }

// searchURL resolves the search endpoint from the configured base address.
// Mirror deployments hand out bases with or without the API path, so the
// path is completed rather than blindly appended.
func (f *Fofa) searchURL() string {
	base := f.cfg.BaseURL
	if base == "" {
		base = fofaDefaultBase
	}
	base = strings.TrimRight(base, "/")
	switch {
	case strings.HasSuffix(base, fofaSearchPath):
		return base
	case strings.HasSuffix(base, "/api/v1"):
		return base + "/search/all"
	}
	return base + fofaSearchPath
}

// buildQuery renders the FOFA search syntax for the query type. IP lookups
// use the unquoted form, which matches more records on some mirrors.
func buildFofaQuery(t types.QueryType, target string) string {
	if t == types.QueryIP {
		return "ip=" + target
	}
	return fmt.Sprintf("host=%q", target)
}

type fofaResponse struct {
	Error   bool              `json:"error"`
	Errmsg  string            `json:"errmsg"`
	Message string            `json:"message"`
	Size    int               `json:"size"`
	Query   string            `json:"query"`
	Results []json.RawMessage `json:"results"`
}

// Probe runs a one-row domain search as a cheap liveness check; FOFA has
// no dedicated account-info endpoint on mirror deployments.
func (f *Fofa) Probe(ctx context.Context) error {
	if f.cfg.APIKey == "" {
		return &CredentialError{Source: f.Name(), Kind: CredentialInvalid,
			Err: fmt.Errorf("no API key configured")}
	}
	_, err := f.Fetch(ctx, Task{
		Source:   f.Name(),
		Type:     types.QueryDomain,
		Target:   "example.com",
		Page:     1,
		PageSize: 1,
	})
	if err == nil {
		return nil
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return &CredentialError{Source: f.Name(), Kind: probeKind(fe.Kind), Err: fe.Err}
	}
	return &CredentialError{Source: f.Name(), Kind: CredentialUnreachable, Err: err}
}

// Fetch retrieves one page of search results.
func (f *Fofa) Fetch(ctx context.Context, task Task) (*Page, error) {
	if !f.Supports(task.Type) {
		return nil, &FetchError{Source: f.Name(), Target: task.Target, Kind: FetchMalformedQuery,
			Err: fmt.Errorf("fofa does not support %s queries", task.Type)}
	}
	if f.cfg.APIKey == "" {
		return nil, &FetchError{Source: f.Name(), Target: task.Target, Kind: FetchAuthRevoked,
			Err: fmt.Errorf("no API key configured")}
	}

	size := clampSize(task.PageSize, fofaMaxPageSize)
	q := buildFofaQuery(task.Type, task.Target)

	params := url.Values{
		"key":     {f.cfg.APIKey},
		"qbase64": {base64.StdEncoding.EncodeToString([]byte(q))},
		"page":    {strconv.Itoa(task.Page)},
		"size":    {strconv.Itoa(size)},
		"fields":  {fofaFields},
		"r_type":  {"json"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.searchURL()+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &FetchError{Source: f.Name(), Target: task.Target, Kind: FetchNetwork,
			Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", f.httpCfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{Source: f.Name(), Target: task.Target, Kind: FetchNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Source: f.Name(), Target: task.Target,
			Kind: statusFetchKind(resp.StatusCode),
			Err:  fmt.Errorf("FOFA API returned HTTP %d", resp.StatusCode)}
	}

	var fr fofaResponse
	if err := json.NewDecoder(resp.Body).Decode(&fr); err != nil {
		// Mirrors sometimes answer with HTML or plain text.
		return nil, &FetchError{Source: f.Name(), Target: task.Target, Kind: FetchServerError,
			Err: fmt.Errorf("parsing FOFA response: %w", err)}
	}

	if fr.Error {
		msg := fr.Errmsg
		if msg == "" {
			msg = fr.Message
		}
		return nil, &FetchError{Source: f.Name(), Target: task.Target,
			Kind: apiErrorKind(msg),
			Err:  fmt.Errorf("FOFA API error: %s", msg)}
	}

	return &Page{
		Source: f.Name(),
		Size:   size,
		Count:  len(fr.Results),
		Total:  fr.Size,
		rows:   fr.Results,
	}, nil
}

// Normalize converts FOFA's positional rows into canonical records. Rows
// arrive as arrays in fofaFields order; some mirrors return objects
// instead, and both shapes are accepted.
func (f *Fofa) Normalize(p *Page) []types.AssetRecord {
	rows, ok := p.rows.([]json.RawMessage)
	if !ok {
		return nil
	}

	var records []types.AssetRecord
	for _, raw := range rows {
		var r types.AssetRecord

		var arr []json.RawMessage
		if err := json.Unmarshal(raw, &arr); err == nil {
			r = fofaRowFromArray(arr)
		} else {
			var obj map[string]any
			if err := json.Unmarshal(raw, &obj); err != nil {
				p.Dropped++
				continue
			}
			r = fofaRowFromObject(obj)
		}

		if r.Host == "" && r.IP == "" {
			p.Dropped++
			continue
		}
		r.Source = f.Name()
		records = append(records, r)
	}
	return records
}

// fofaRowFromArray decodes a positional row in fofaFields order. Missing
// trailing fields stay absent.
func fofaRowFromArray(arr []json.RawMessage) types.AssetRecord {
	field := func(i int) string {
		if i >= len(arr) {
			return ""
		}
		var s string
		if err := json.Unmarshal(arr[i], &s); err == nil {
			return s
		}
		// Ports occasionally arrive as bare numbers.
		var n int
		if err := json.Unmarshal(arr[i], &n); err == nil {
			return strconv.Itoa(n)
		}
		return ""
	}

	r := types.AssetRecord{
		Host:   field(0),
		IP:     field(1),
		Title:  field(3),
		Domain: field(4),
	}
	if port, err := strconv.Atoi(field(2)); err == nil {
		r.Port = port
	}
	if r.Domain == "" {
		r.Domain = r.Host
	}
	return r
}

func fofaRowFromObject(obj map[string]any) types.AssetRecord {
	r := types.AssetRecord{
		Host:   stringField(obj, "host"),
		IP:     stringField(obj, "ip"),
		Title:  stringField(obj, "title"),
		Domain: stringField(obj, "domain"),
		Port:   intField(obj, "port"),
	}
	if r.Domain == "" {
		r.Domain = r.Host
	}
	return r
}

// apiErrorKind classifies a source-level error message. Quota and balance
// complaints map to quota exhaustion; everything else is a query problem.
func apiErrorKind(msg string) FetchErrorKind {
	lower := strings.ToLower(msg)
	for _, marker := range []string{"fpoint", "quota", "insufficient", "balance", "积分", "余额"} {
		if strings.Contains(lower, marker) {
			return FetchQuotaExhausted
		}
	}
	return FetchMalformedQuery
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

func intField(obj map[string]any, key string) int {
	switch v := obj[key].(type) {
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	}
	return 0
}
