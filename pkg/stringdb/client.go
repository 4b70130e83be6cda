// Package stringdb queries the STRING functional-enrichment API and writes its
// answers as per-category enrichment tables.
package stringdb

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the public STRING API root.
	DefaultBaseURL = "https://string-db.org/api"

	enrichmentPath = "/tsv/enrichment"

	// identifierSep is the literal separator STRING expects between identifiers.
	identifierSep = "%0d"

	maxResponseBytes = 64 << 20
	maxErrorSnippet  = 512
)

// Query is one enrichment request.
type Query struct {
	Identifiers    []string
	Species        int
	CallerIdentity string
}

// Annotation is one enriched term returned by STRING.
type Annotation struct {
	Category                  string
	Term                      string
	Description               string
	NumberOfGenes             int
	NumberOfGenesInBackground int
	TaxonID                   int
	InputGenes                []string
	PreferredNames            []string
	PValue                    float64
	FDR                       float64
}

// Client queries functional enrichment.
type Client interface {
	Enrich(ctx context.Context, q Query) ([]Annotation, error)
}

// HTTPClient talks to the STRING web API.
type HTTPClient struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// ClientOption configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(hc *HTTPClient) { hc.httpClient = c }
}

// WithBaseURL overrides the API root, primarily for test servers.
func WithBaseURL(base string) ClientOption {
	return func(hc *HTTPClient) { hc.baseURL = strings.TrimSuffix(base, "/") }
}

// WithLogger sets the logger used for request timing.
func WithLogger(l *slog.Logger) ClientOption {
	return func(hc *HTTPClient) { hc.logger = l }
}

// NewHTTPClient creates a client for DefaultBaseURL using http.DefaultClient.
func NewHTTPClient(opts ...ClientOption) *HTTPClient {
	hc := &HTTPClient{
		httpClient: http.DefaultClient,
		baseURL:    DefaultBaseURL,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(hc)
	}

	return hc
}

// Enrich posts the identifiers and parses the TSV answer.
func (hc *HTTPClient) Enrich(ctx context.Context, q Query) ([]Annotation, error) {
	if len(q.Identifiers) == 0 {
		return nil, ErrNoIdentifiers
	}

	form := url.Values{}
	form.Set("identifiers", strings.Join(q.Identifiers, identifierSep))
	form.Set("species", strconv.Itoa(q.Species))
	form.Set("caller_identity", q.CallerIdentity)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hc.baseURL+enrichmentPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	hc.logger.InfoContext(ctx, "stringdb: querying",
		"caller", q.CallerIdentity, "species", q.Species, "identifiers", len(q.Identifiers))

	start := time.Now()

	resp, err := hc.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	hc.logger.InfoContext(ctx, "stringdb: replied", "status", resp.StatusCode, "elapsed", time.Since(start))

	body := io.LimitReader(resp.Body, maxResponseBytes)

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(body, maxErrorSnippet)) //nolint:errcheck // Best-effort error context.

		return nil, fmt.Errorf("%w: status %d: %s", ErrAPI, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	return ParseAnnotations(body)
}

var requiredFields = []string{
	"category", "term", "number_of_genes", "number_of_genes_in_background",
	"inputGenes", "preferredNames", "fdr", "description",
}

// ParseAnnotations reads the TSV body of an enrichment answer.
func ParseAnnotations(r io.Reader) ([]Annotation, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrBadResponse, err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}

	if _, ok := idx["Error"]; ok {
		return nil, apiError(reader, idx)
	}

	for _, f := range requiredFields {
		if _, ok := idx[f]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrBadResponse, f)
		}
	}

	var out []Annotation

	for line := 2; ; line++ {
		rec, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}

		if readErr != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrBadResponse, line, readErr)
		}

		ann, parseErr := parseAnnotation(rec, idx)
		if parseErr != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrBadResponse, line, parseErr)
		}

		out = append(out, ann)
	}

	return out, nil
}

func apiError(reader *csv.Reader, idx map[string]int) error {
	rec, err := reader.Read()
	if err != nil {
		return fmt.Errorf("%w: unreadable error body", ErrAPI)
	}

	msg := field(rec, idx, "Error")
	if desc := field(rec, idx, "ErrorMessage"); desc != "" {
		msg += ": " + desc
	}

	return fmt.Errorf("%w: %s", ErrAPI, msg)
}

func field(rec []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(rec) {
		return ""
	}

	return strings.TrimSpace(rec[i])
}

func parseAnnotation(rec []string, idx map[string]int) (Annotation, error) {
	ann := Annotation{
		Category:       field(rec, idx, "category"),
		Term:           field(rec, idx, "term"),
		Description:    field(rec, idx, "description"),
		InputGenes:     splitList(field(rec, idx, "inputGenes")),
		PreferredNames: splitList(field(rec, idx, "preferredNames")),
	}

	var err error

	if ann.NumberOfGenes, err = strconv.Atoi(field(rec, idx, "number_of_genes")); err != nil {
		return ann, fmt.Errorf("number_of_genes: %w", err)
	}

	if ann.NumberOfGenesInBackground, err = strconv.Atoi(field(rec, idx, "number_of_genes_in_background")); err != nil {
		return ann, fmt.Errorf("number_of_genes_in_background: %w", err)
	}

	if ann.FDR, err = strconv.ParseFloat(field(rec, idx, "fdr"), 64); err != nil {
		return ann, fmt.Errorf("fdr: %w", err)
	}

	if s := field(rec, idx, "p_value"); s != "" {
		if ann.PValue, err = strconv.ParseFloat(s, 64); err != nil {
			return ann, fmt.Errorf("p_value: %w", err)
		}
	}

	if s := field(rec, idx, "ncbiTaxonId"); s != "" {
		if ann.TaxonID, err = strconv.Atoi(s); err != nil {
			return ann, fmt.Errorf("ncbiTaxonId: %w", err)
		}
	}

	return ann, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}

	return strings.Split(s, ",")
}
