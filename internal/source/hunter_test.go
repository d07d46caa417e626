// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/netscope/pkg/types"
)

func newTestHunter(ts *httptest.Server, key string) *Hunter {
	return NewHunter(
		types.SourceConfig{APIKey: key, BaseURL: ts.URL},
		types.HTTPConfig{UserAgent: "netscope-test"},
		ts.Client(),
	)
}

func TestHunterSupportsAllTypes(t *testing.T) {
	h := NewHunter(types.SourceConfig{APIKey: "k"}, types.HTTPConfig{}, http.DefaultClient)

	assert.True(t, h.Supports(types.QueryDomain))
	assert.True(t, h.Supports(types.QueryIP))
	assert.True(t, h.Supports(types.QueryCompany))
}

func TestHunterFetchEncodesSearch(t *testing.T) {
	var gotSearch, gotPageSize string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotSearch = q.Get("search")
		gotPageSize = q.Get("page_size")
		fmt.Fprint(w, `{"code":200,"data":{"total":0,"arr":[]}}`)
	}))
	defer ts.Close()

	h := newTestHunter(ts, "hk")
	_, err := h.Fetch(context.Background(), Task{
		Source: "hunter", Type: types.QueryCompany, Target: "Acme Corp", Page: 1, PageSize: 100,
	})
	require.NoError(t, err)

	// The search parameter is base64url without padding; the requested size
	// is overridden by Hunter's fixed page size.
	decoded, err := base64.RawURLEncoding.DecodeString(gotSearch)
	require.NoError(t, err)
	assert.Equal(t, `company="Acme Corp"`, string(decoded))
	assert.Equal(t, "10", gotPageSize)
}

func TestBuildHunterQuery(t *testing.T) {
	tests := []struct {
		qt     types.QueryType
		target string
		want   string
	}{
		{types.QueryDomain, "example.com", `domain="example.com"`},
		{types.QueryIP, "1.2.3.4", `ip="1.2.3.4"`},
		{types.QueryCompany, "Acme Corp", `company="Acme Corp"`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, buildHunterQuery(tt.qt, tt.target))
	}
}

func TestHunterNormalize(t *testing.T) {
	body := `{"code":200,"data":{"total":2,"arr":[
		{"ip":"93.184.216.34","port":443,"domain":"example.com","web_title":"Example","url":"https://www.example.com/login"},
		{"ip":"10.0.0.9","port":22,"domain":"","web_title":"","url":""}
	]}}`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, body)
	}))
	defer ts.Close()

	h := newTestHunter(ts, "hk")
	page, err := h.Fetch(context.Background(), Task{
		Source: "hunter", Type: types.QueryDomain, Target: "example.com", Page: 1, PageSize: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Count)
	assert.Equal(t, 2, page.Total)

	records := h.Normalize(page)
	require.Len(t, records, 2)

	// Host is taken from the url field when present.
	assert.Equal(t, types.AssetRecord{
		Host:   "www.example.com",
		IP:     "93.184.216.34",
		Port:   443,
		Title:  "Example",
		Domain: "example.com",
		Source: "hunter",
	}, records[0])

	// A row with no host still survives on its IP alone.
	assert.Equal(t, "", records[1].Host)
	assert.Equal(t, "10.0.0.9", records[1].IP)
}

func TestHunterFetchAPIError(t *testing.T) {
	tests := []struct {
		name string
		body string
		want FetchErrorKind
	}{
		{"quota spent", `{"code":40204,"message":"余额不足"}`, FetchQuotaExhausted},
		{"bad syntax", `{"code":40002,"message":"syntax error in search"}`, FetchMalformedQuery},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, tt.body)
			}))
			defer ts.Close()

			h := newTestHunter(ts, "hk")
			_, err := h.Fetch(context.Background(), Task{
				Source: "hunter", Type: types.QueryDomain, Target: "example.com", Page: 1, PageSize: 10,
			})
			var fe *FetchError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.want, fe.Kind)
		})
	}
}

func TestHunterProbe(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   CredentialErrorKind
		ok     bool
	}{
		{"live", 200, `{"code":200,"message":"ok"}`, 0, true},
		{"rejected key", 200, `{"code":401,"message":"api-key error"}`, CredentialInvalid, false},
		{"http 401", 401, ``, CredentialInvalid, false},
		{"http 429", 429, ``, CredentialThrottled, false},
		{"http 502", 502, ``, CredentialUnreachable, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer ts.Close()

			h := newTestHunter(ts, "hk")
			err := h.Probe(context.Background())
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var ce *CredentialError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.want, ce.Kind)
		})
	}
}

func TestHunterProbeSendsKey(t *testing.T) {
	var gotKey string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("api-key")
		fmt.Fprint(w, `{"code":200}`)
	}))
	defer ts.Close()

	h := newTestHunter(ts, "hk-secret")
	require.NoError(t, h.Probe(context.Background()))
	assert.Equal(t, "hk-secret", gotKey)
}
