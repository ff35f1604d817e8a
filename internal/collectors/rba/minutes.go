package rba

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/meridian-labs/yarra/internal/core/domain"
	"github.com/meridian-labs/yarra/internal/core/ports/driven"
	"github.com/meridian-labs/yarra/internal/logger"
)

// DocTypeMinutes is the stored document type for board minutes.
const DocTypeMinutes = "rba_minutes"

// minutesBaseURL is the index of monetary policy board minutes. Each
// meeting's minutes live at <base>/<year>/<yyyy-mm-dd>.html.
const minutesBaseURL = "https://www.rba.gov.au/monetary-policy/rba-board-minutes/"

// maxMinutesPerRun caps how many meetings one collection run fetches.
const maxMinutesPerRun = 3

var (
	minutesLinkPattern = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})\.html`)
	titlePattern       = regexp.MustCompile(`(?is)<title>(.*?)</title>`)
	tagPattern         = regexp.MustCompile(`(?s)<[^>]*>`)
	scriptPattern      = regexp.MustCompile(`(?is)<(script|style|nav|header|footer)[^>]*>.*?</(script|style|nav|header|footer)>`)
	spacePattern       = regexp.MustCompile(`[ \t]+`)
)

// MinutesCollector fetches recent RBA monetary policy board minutes and
// stores them as documents.
type MinutesCollector struct {
	store   driven.DocumentStore
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
}

// NewMinutesCollector creates the minutes collector.
func NewMinutesCollector(store driven.DocumentStore) *MinutesCollector {
	return &MinutesCollector{
		store:   store,
		client:  &http.Client{Timeout: requestTimeout},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		baseURL: minutesBaseURL,
	}
}

// Name identifies the collector.
func (c *MinutesCollector) Name() string { return "rba-minutes" }

// Source describes the minutes pages behind this collector.
func (c *MinutesCollector) Source() domain.DataSource {
	return domain.DataSource{
		Name:            "Reserve Bank of Australia",
		Kind:            "web",
		URL:             c.baseURL,
		UpdateFrequency: "per board meeting",
		Description:     "Monetary Policy Board meeting minutes.",
	}
}

// Collect discovers this year's minutes pages, fetches the most recent
// ones and stores them. It returns the number of documents stored.
func (c *MinutesCollector) Collect(ctx context.Context) (int, error) {
	year := time.Now().Year()
	dates, err := c.listMeetingDates(ctx, year)
	if err != nil {
		return 0, err
	}
	// Early in the year the index may still be empty; fall back to the
	// previous year's meetings.
	if len(dates) == 0 {
		if dates, err = c.listMeetingDates(ctx, year-1); err != nil {
			return 0, err
		}
		year--
	}
	if len(dates) == 0 {
		return 0, fmt.Errorf("no minutes listed for %d or %d", year+1, year)
	}

	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	if len(dates) > maxMinutesPerRun {
		dates = dates[:maxMinutesPerRun]
	}

	stored := 0
	for _, date := range dates {
		url := fmt.Sprintf("%s%d/%s.html", c.baseURL, year, date)
		doc, err := c.fetchMinutes(ctx, date, url)
		if err != nil {
			logger.Warn("minutes %s: %v", date, err)
			continue
		}
		if err := c.store.SaveDocument(ctx, doc); err != nil {
			return stored, fmt.Errorf("store minutes %s: %w", date, err)
		}
		stored++
	}
	if stored == 0 {
		return 0, fmt.Errorf("no minutes pages could be fetched")
	}

	logger.Info("collector rba-minutes stored %d documents", stored)
	return stored, nil
}

// listMeetingDates scrapes the year index for meeting date links.
func (c *MinutesCollector) listMeetingDates(ctx context.Context, year int) ([]string, error) {
	html, err := c.get(ctx, fmt.Sprintf("%s%d/", c.baseURL, year))
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	var dates []string
	for _, m := range minutesLinkPattern.FindAllStringSubmatch(html, -1) {
		if _, dup := seen[m[1]]; dup {
			continue
		}
		seen[m[1]] = struct{}{}
		dates = append(dates, m[1])
	}
	return dates, nil
}

// fetchMinutes downloads and normalises one minutes page.
func (c *MinutesCollector) fetchMinutes(ctx context.Context, date, url string) (*domain.Document, error) {
	html, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	published, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("bad meeting date %q: %w", date, err)
	}

	title := "RBA Board Minutes " + date
	if m := titlePattern.FindStringSubmatch(html); m != nil {
		if t := strings.TrimSpace(stripTags(m[1])); t != "" {
			title = t
		}
	}

	content := stripTags(html)
	if len(content) < 200 {
		return nil, fmt.Errorf("minutes page %s has no usable text", url)
	}

	return &domain.Document{
		Type:        DocTypeMinutes,
		ExternalID:  date,
		Title:       title,
		SourceURL:   url,
		PublishedAt: published,
		Content:     content,
	}, nil
}

func (c *MinutesCollector) get(ctx context.Context, url string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: HTTP %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// stripTags reduces an HTML page to readable text. Good enough for
// storage and keyword search; no DOM fidelity required.
func stripTags(html string) string {
	text := scriptPattern.ReplaceAllString(html, " ")
	text = tagPattern.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = strings.ReplaceAll(text, "&amp;", "&")
	text = strings.ReplaceAll(text, "&#8217;", "'")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(spacePattern.ReplaceAllString(line, " "))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
