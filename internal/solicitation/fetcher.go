package solicitation

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// Fetcher downloads a solicitation document from a user-supplied URL.
// Internal hosts are refused outright; the caller's URL is untrusted input.
type Fetcher struct {
	UserAgent      string
	RequestTimeout time.Duration
	MaxBodySize    int
	Logger         *zap.Logger
}

func NewFetcher(logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		RequestTimeout: 30 * time.Second,
		MaxBodySize:    10 * 1024 * 1024,
		Logger:         logger,
	}
}

// Fetch downloads the document and returns plain text ready for extraction.
// PDF responses go through the PDF text extractor; everything else is
// treated as HTML/text.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) (string, error) {
	parsed, err := url.Parse(targetURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", fmt.Errorf("invalid solicitation url")
	}
	if err := refuseInternalHost(parsed.Hostname()); err != nil {
		return "", err
	}

	c := colly.NewCollector(
		colly.UserAgent(f.UserAgent),
		colly.MaxBodySize(f.MaxBodySize),
		colly.AllowURLRevisit(),
		colly.AllowedDomains(parsed.Host),
	)
	c.SetRequestTimeout(f.RequestTimeout)

	var (
		body        []byte
		contentType string
		fetchErr    error
	)
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
		contentType = r.Headers.Get("Content-Type")
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
	})

	if err := ctx.Err(); err != nil {
		return "", err
	}
	// Visit is synchronous: OnResponse/OnError fire before it returns.
	if err := c.Visit(targetURL); err != nil {
		return "", fmt.Errorf("fetch solicitation: %w", err)
	}
	if fetchErr != nil {
		return "", fmt.Errorf("fetch solicitation: %w", fetchErr)
	}
	if len(body) == 0 {
		return "", fmt.Errorf("solicitation url returned an empty document")
	}

	f.Logger.Info("fetched solicitation document",
		zap.String("url", targetURL),
		zap.String("content_type", contentType),
		zap.Int("bytes", len(body)),
	)

	if isPDF(contentType, targetURL, body) {
		text, err := ExtractPDFText(body)
		if err != nil {
			return "", fmt.Errorf("extract pdf text: %w", err)
		}
		return PrepareText(text), nil
	}

	return PrepareText(string(body)), nil
}

func isPDF(contentType, targetURL string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "application/pdf") {
		return true
	}
	if strings.HasSuffix(strings.ToLower(targetURL), ".pdf") {
		return true
	}
	return len(body) > 4 && string(body[:5]) == "%PDF-"
}

func refuseInternalHost(host string) error {
	lower := strings.ToLower(host)
	if lower == "" || lower == "localhost" || strings.HasSuffix(lower, ".local") {
		return fmt.Errorf("internal network access forbidden")
	}

	ips, err := net.LookupIP(host)
	if err != nil || len(ips) == 0 {
		return fmt.Errorf("unable to resolve solicitation url host")
	}
	for _, ip := range ips {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
			ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsMulticast() {
			return fmt.Errorf("internal network access forbidden")
		}
	}
	return nil
}
