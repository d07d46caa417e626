// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export renders finalized result sets: a terminal table, CSV and
// TXT files, and a YAML run file that can be reloaded later. All of it
// consumes the engine's output read-only.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/netscope/internal/engine"
	"github.com/pdiddy/netscope/pkg/types"
)

// csvHeader is the fixed CSV column contract.
var csvHeader = []string{"host", "ip", "port", "title", "domain"}

// FormatTable writes one target's records as a human-readable table.
func FormatTable(w io.Writer, target string, records []types.AssetRecord, diags []engine.Diagnostic) {
	fmt.Fprintf(w, "Target: %s\n", target)
	if len(records) == 0 {
		fmt.Fprintln(w, "No results found.")
	} else {
		fmt.Fprintf(w, "%-4s  %-8s  %-30s  %-15s  %-5s  %-24s  %s\n",
			"#", "Source", "Host", "IP", "Port", "Domain", "Title")
		fmt.Fprintln(w, strings.Repeat("-", 110))
		for i, r := range records {
			fmt.Fprintf(w, "%-4d  %-8s  %-30s  %-15s  %-5s  %-24s  %s\n",
				i+1, r.Source, truncate(r.Host, 30), r.IP, portString(r.Port),
				truncate(r.Domain, 24), truncate(r.Title, 40))
		}
		fmt.Fprintf(w, "\n%d unique assets\n", len(records))
	}
	for _, d := range diags {
		fmt.Fprintf(w, "warning: %s\n", d)
	}
}

// WriteCSV writes records with the fixed host,ip,port,title,domain header.
// The source column is deliberately absent: the file contract predates
// multi-source runs and downstream tooling depends on it.
func WriteCSV(w io.Writer, records []types.AssetRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, r := range records {
		row := []string{r.Host, r.IP, portString(r.Port), r.Title, r.Domain}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTXT writes one value per line: the IP for IP queries, otherwise the
// domain or host (scheme and port stripped), falling back to the IP.
// Values are sorted and deduplicated so the list feeds cleanly into other
// tools.
func WriteTXT(w io.Writer, records []types.AssetRecord, qt types.QueryType) error {
	seen := make(map[string]bool)
	var values []string
	for _, r := range records {
		value := txtValue(r, qt)
		if value == "" || seen[value] {
			continue
		}
		seen[value] = true
		values = append(values, value)
	}
	sort.Strings(values)

	for _, v := range values {
		if _, err := fmt.Fprintln(w, v); err != nil {
			return err
		}
	}
	return nil
}

func txtValue(r types.AssetRecord, qt types.QueryType) string {
	if qt == types.QueryIP {
		return r.IP
	}
	if r.Domain != "" {
		return r.Domain
	}
	if r.Host != "" {
		return stripHost(r.Host)
	}
	return r.IP
}

// stripHost removes a scheme prefix and port suffix from a host value.
func stripHost(host string) string {
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return host
}

func portString(port int) string {
	if port == 0 {
		return ""
	}
	return strconv.Itoa(port)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// FileSink writes one export file per target into a directory, named
// after the sanitized target. Format is "csv" or "txt".
type FileSink struct {
	Dir    string
	Format string
	Type   types.QueryType

	// Written collects the paths produced, for reporting.
	Written []string
}

// Consume writes one target's records to <dir>/<target>.<format>.
func (s *FileSink) Consume(target string, records []types.AssetRecord, _ []engine.Diagnostic) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}

	path := filepath.Join(s.Dir, SanitizeFilename(target)+"."+s.Format)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	if s.Format == "txt" {
		err = WriteTXT(f, records, s.Type)
	} else {
		err = WriteCSV(f, records)
	}
	if err != nil {
		return err
	}
	s.Written = append(s.Written, path)
	return nil
}

// SanitizeFilename replaces characters that are unsafe in file names and
// bounds the length.
func SanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"<", "_", ">", "_", ":", "_", "\"", "_",
		"/", "_", "\\", "_", "|", "_", "?", "_", "*", "_",
	)
	name = replacer.Replace(name)
	if len(name) > 200 {
		name = name[:200]
	}
	return name
}
