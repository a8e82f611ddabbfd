package listing

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"StockLens/internal/model"
	"StockLens/internal/netutil"
)

// DefaultKRXURL is the KIND corporate list download, served as an EUC-KR
// encoded HTML table.
const DefaultKRXURL = "http://kind.krx.co.kr/corpgeneral/corpList.do?method=download&searchType=13"

const (
	nameHeader = "회사명"
	codeHeader = "종목코드"
)

// KRXSource fetches the listed-company table from KRX KIND.
type KRXSource struct {
	url    string
	client *http.Client
	log    zerolog.Logger
}

// KRXOption configures a KRXSource.
type KRXOption func(*KRXSource)

// WithURL overrides the listing URL.
func WithURL(u string) KRXOption {
	return func(s *KRXSource) {
		if u != "" {
			s.url = u
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) KRXOption {
	return func(s *KRXSource) { s.client = c }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) KRXOption {
	return func(s *KRXSource) { s.log = l }
}

// NewKRXSource creates a source with a bounded-timeout client.
func NewKRXSource(opts ...KRXOption) *KRXSource {
	s := &KRXSource{
		url:    DefaultKRXURL,
		client: netutil.NewHTTPClient(netutil.DefaultTimeout, ""),
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("component", "krx").Logger()
	return s
}

func (s *KRXSource) Name() string { return "krx" }

// FetchListing downloads and parses the full listing table.
func (s *KRXSource) FetchListing(ctx context.Context) ([]model.CompanyEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, model.NewProviderError(s.Name(), err)
	}
	req.Header.Set("User-Agent", netutil.UserAgent)

	start := time.Now()
	resp, err := s.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		s.log.Error().Err(err).Dur("elapsed", elapsed).Msg("listing request failed")
		return nil, model.NewProviderError(s.Name(), fmt.Errorf("fetch listing: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		s.log.Warn().Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("listing non-OK response")
		return nil, model.NewProviderError(s.Name(), fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body)))
	}

	entries, err := ParseListing(transform.NewReader(resp.Body, korean.EUCKR.NewDecoder()))
	if err != nil {
		return nil, model.NewProviderError(s.Name(), err)
	}
	s.log.Info().Int("entries", len(entries)).Dur("elapsed", elapsed).Msg("listing fetched")
	return entries, nil
}

// ParseListing extracts name/code pairs from a UTF-8 HTML listing table.
// Codes are zero-padded to six digits; rows with a non-numeric code are
// skipped.
func ParseListing(r io.Reader) ([]model.CompanyEntry, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	rows := doc.Find("table").First().Find("tr")
	if rows.Length() == 0 {
		return nil, fmt.Errorf("parse listing: no table rows")
	}

	nameIdx, codeIdx := -1, -1
	rows.First().Find("th, td").Each(func(i int, cell *goquery.Selection) {
		switch strings.TrimSpace(cell.Text()) {
		case nameHeader:
			nameIdx = i
		case codeHeader:
			codeIdx = i
		}
	})
	if nameIdx < 0 || codeIdx < 0 {
		return nil, fmt.Errorf("parse listing: missing %s/%s columns", nameHeader, codeHeader)
	}

	var entries []model.CompanyEntry
	rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() <= nameIdx || cells.Length() <= codeIdx {
			return
		}
		name := strings.TrimSpace(cells.Eq(nameIdx).Text())
		code, ok := padCode(cells.Eq(codeIdx).Text())
		if name == "" || !ok {
			return
		}
		entries = append(entries, model.CompanyEntry{Name: name, Code: code})
	})
	if len(entries) == 0 {
		return nil, fmt.Errorf("parse listing: no entries")
	}
	return entries, nil
}

// padCode left-pads a numeric code to six digits.
func padCode(raw string) (string, bool) {
	code := strings.TrimSpace(raw)
	if code == "" || len(code) > 6 {
		return "", false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return "", false
		}
	}
	return strings.Repeat("0", 6-len(code)) + code, true
}
