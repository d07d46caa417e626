// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import "fmt"

// CredentialErrorKind classifies why a credential probe failed.
type CredentialErrorKind int

const (
	// CredentialInvalid means the source rejected the credential.
	CredentialInvalid CredentialErrorKind = iota

	// CredentialUnreachable means the probe could not reach the source.
	CredentialUnreachable

	// CredentialThrottled means the source rate-limited the probe.
	CredentialThrottled
)

func (k CredentialErrorKind) String() string {
	switch k {
	case CredentialInvalid:
		return "invalid"
	case CredentialUnreachable:
		return "unreachable"
	case CredentialThrottled:
		return "throttled"
	}
	return "unknown"
}

// CredentialError reports a failed credential probe for one source. A dead
// credential excludes the source from planning but never aborts siblings.
type CredentialError struct {
	Source string
	Kind   CredentialErrorKind
	Err    error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("%s credential %s: %v", e.Source, e.Kind, e.Err)
}

func (e *CredentialError) Unwrap() error { return e.Err }

// FetchErrorKind classifies why a page fetch failed.
type FetchErrorKind int

const (
	// FetchNetwork is a transport-level failure (DNS, connect, timeout).
	FetchNetwork FetchErrorKind = iota

	// FetchServerError is an HTTP 5xx from the source.
	FetchServerError

	// FetchQuotaExhausted means the account's quota or rate limit is spent.
	FetchQuotaExhausted

	// FetchMalformedQuery means the source rejected the query itself.
	FetchMalformedQuery

	// FetchAuthRevoked means the credential stopped working mid-run.
	FetchAuthRevoked
)

func (k FetchErrorKind) String() string {
	switch k {
	case FetchNetwork:
		return "network"
	case FetchServerError:
		return "server error"
	case FetchQuotaExhausted:
		return "quota exhausted"
	case FetchMalformedQuery:
		return "malformed query"
	case FetchAuthRevoked:
		return "auth revoked"
	}
	return "unknown"
}

// FetchError reports a failed page fetch for one (source, target) task.
// The orchestrator records it as a diagnostic; it never propagates as a
// run-level failure.
type FetchError struct {
	Source string
	Target string
	Kind   FetchErrorKind
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s fetch for %q (%s): %v", e.Source, e.Target, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// statusFetchKind maps an HTTP status code onto a fetch error kind.
func statusFetchKind(status int) FetchErrorKind {
	switch {
	case status == 401 || status == 403:
		return FetchAuthRevoked
	case status == 429:
		return FetchQuotaExhausted
	case status >= 500:
		return FetchServerError
	}
	return FetchMalformedQuery
}

// probeKind converts a fetch error kind into the credential error kind a
// probe should report for the same condition.
func probeKind(k FetchErrorKind) CredentialErrorKind {
	switch k {
	case FetchNetwork, FetchServerError:
		return CredentialUnreachable
	case FetchQuotaExhausted:
		return CredentialThrottled
	}
	return CredentialInvalid
}
