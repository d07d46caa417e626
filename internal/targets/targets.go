// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package targets parses and validates query target lists. Input is either
// a comma-separated string or a path to a .txt file with one target per
// line; mixed-type lists (an IP among domains) are rejected before any
// source is queried.
package targets

import (
	"fmt"
	"os"
	"strings"

	"github.com/pdiddy/netscope/pkg/types"
)

// Parse splits user input into a target list. Input ending in .txt that
// names an existing file is read line by line; blank lines and #-comments
// are skipped. Otherwise the input splits on commas, full-width commas
// included.
func Parse(input string) ([]string, error) {
	input = strings.TrimSpace(input)

	if strings.HasSuffix(input, ".txt") {
		if _, err := os.Stat(input); err == nil {
			return parseFile(input)
		}
	}

	splitter := func(r rune) bool { return r == ',' || r == '，' }
	var targets []string
	for _, part := range strings.FieldsFunc(input, splitter) {
		if t := strings.TrimSpace(part); t != "" {
			targets = append(targets, t)
		}
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("no targets found in %q", input)
	}
	return targets, nil
}

func parseFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading target file: %w", err)
	}

	var targets []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		targets = append(targets, line)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("no targets found in %s", path)
	}
	return targets, nil
}

// Detect guesses a target's query type. It recognizes IPv4 addresses and
// dotted hostnames; anything else (likely a company name) reports ok
// false, leaving the type to the caller.
func Detect(target string) (types.QueryType, bool) {
	target = strings.TrimSpace(target)

	if isIPv4(target) {
		return types.QueryIP, true
	}
	if isDomain(target) {
		return types.QueryDomain, true
	}
	return "", false
}

// Validate rejects target lists whose detected types contradict the
// declared query type. Undetectable targets pass: they may well be
// company names.
func Validate(list []string, qt types.QueryType) error {
	var mismatched []string
	for _, target := range list {
		detected, ok := Detect(target)
		if ok && detected != qt {
			mismatched = append(mismatched, fmt.Sprintf("%s (looks like %s)", target, detected))
		}
	}
	if len(mismatched) > 0 {
		return fmt.Errorf("targets do not match query type %s: %s",
			qt, strings.Join(mismatched, ", "))
	}
	return nil
}

func isIPv4(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return false
	}
	for _, p := range parts {
		if len(p) == 0 || len(p) > 3 {
			return false
		}
		n := 0
		for _, r := range p {
			if r < '0' || r > '9' {
				return false
			}
			n = n*10 + int(r-'0')
		}
		if n > 255 {
			return false
		}
	}
	return true
}

func isDomain(s string) bool {
	if !strings.Contains(s, ".") || strings.HasPrefix(s, ".") || strings.HasSuffix(s, ".") {
		return false
	}
	labels := strings.Split(s, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if !isDomainLabel(label) {
			return false
		}
	}
	return true
}

func isDomainLabel(label string) bool {
	if label == "" {
		return false
	}
	for i, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' && i != 0 && i != len(label)-1:
		default:
			return false
		}
	}
	return true
}
