package extractor

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"flamecompanion/internal/domain"
	"flamecompanion/internal/pkg/storyurl"
)

// Profile crawling limits. Discovery is capped at the first cards of the
// profile page; the politeness delay separates sequential story
// extractions to avoid tripping anti-scraping defenses.
const (
	maxProfileCards = 10
	politenessDelay = 1 * time.Second
)

// Story-card anchors on a profile page, ordered like the field rules:
// dedicated card containers first, generic story links last.
var profileCardSelectors = []string{
	".story-card a[href]",
	"[data-story-card] a[href]",
	".works-list a[href]",
	`a[href*="/story/"]`,
}

// Per-story crawl statuses
const (
	CrawlStatusCreated = "created"
	CrawlStatusUpdated = "updated"
	CrawlStatusFailed  = "failed"
)

// CrawlReport summarizes one profile crawl
type CrawlReport struct {
	TotalDiscovered int                `json:"total_discovered"`
	Created         int                `json:"created"`
	Updated         int                `json:"updated"`
	PerStory        []CrawlStoryResult `json:"per_story"`
}

// CrawlStoryResult is the per-story outcome within a crawl. Failures are
// recorded here and never abort the remaining batch.
type CrawlStoryResult struct {
	Title        string `json:"title"`
	URL          string `json:"url"`
	Status       string `json:"status"`
	ChapterCount int    `json:"chapter_count"`
	Error        string `json:"error,omitempty"`
}

// ProfileCrawler discovers story links on an author-profile page and runs
// the full extraction pipeline for each, sequentially.
type ProfileCrawler struct {
	service       *Service
	logger        *slog.Logger
	client        *http.Client
	render        renderFunc
	knownProfiles map[string][]string
	limiter       *rate.Limiter
}

// NewProfileCrawler creates a crawler over the extraction service. The
// knownProfiles table maps usernames to previously confirmed story URLs
// and is only consulted when discovery yields nothing from either
// rendering path.
func NewProfileCrawler(service *Service, logger *slog.Logger, knownProfiles map[string][]string) *ProfileCrawler {
	if knownProfiles == nil {
		knownProfiles = map[string][]string{}
	}
	return &ProfileCrawler{
		service:       service,
		logger:        logger,
		client:        &http.Client{Timeout: staticFetchTimeout},
		render:        fetchRenderedHTML,
		knownProfiles: knownProfiles,
		limiter:       rate.NewLimiter(rate.Every(politenessDelay), 1),
	}
}

// Crawl discovers stories on the profile and processes each one in
// discovery order, pausing between stories.
func (c *ProfileCrawler) Crawl(ctx context.Context, profileURL string) (*CrawlReport, error) {
	username, err := storyurl.ParseProfile(profileURL)
	if err != nil {
		return nil, domain.ValidationError("url does not match the site's profile shape: %v", err)
	}

	storyURLs := c.discoverStoryURLs(ctx, profileURL)
	if len(storyURLs) == 0 {
		storyURLs = dedupeURLs(c.knownProfiles[username])
		if len(storyURLs) > 0 {
			c.logger.Info("Profile discovery empty, using known-profile table",
				"profile_url", profileURL,
				"username", username,
				"stories", len(storyURLs),
			)
		}
	}

	report := &CrawlReport{
		TotalDiscovered: len(storyURLs),
		PerStory:        make([]CrawlStoryResult, 0, len(storyURLs)),
	}

	for _, storyURL := range storyURLs {
		if err := c.limiter.Wait(ctx); err != nil {
			return report, err
		}

		outcome, err := c.service.ExtractStory(ctx, storyURL, false)
		if err != nil {
			c.logger.Warn("Story extraction failed during profile crawl",
				"story_url", storyURL,
				"error", err,
			)
			report.PerStory = append(report.PerStory, CrawlStoryResult{
				URL:    storyURL,
				Status: CrawlStatusFailed,
				Error:  err.Error(),
			})
			continue
		}

		status := CrawlStatusUpdated
		if outcome.StoryCreated {
			status = CrawlStatusCreated
			report.Created++
		} else {
			report.Updated++
		}

		report.PerStory = append(report.PerStory, CrawlStoryResult{
			Title:        outcome.Story.Title,
			URL:          storyURL,
			Status:       status,
			ChapterCount: outcome.ChaptersTotal,
		})
	}

	c.logger.Info("Profile crawl completed",
		"profile_url", profileURL,
		"discovered", report.TotalDiscovered,
		"created", report.Created,
		"updated", report.Updated,
	)
	return report, nil
}

// discoverStoryURLs probes the profile page for story cards, dynamic
// rendering first, static fetch as fallback. Returns deduplicated story
// URLs in page order, capped at maxProfileCards.
func (c *ProfileCrawler) discoverStoryURLs(ctx context.Context, profileURL string) []string {
	if html, err := c.render(ctx, profileURL, dynamicNavTimeout, dynamicSettleDelay); err == nil {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
			if urls := probeStoryCards(doc, profileURL); len(urls) > 0 {
				return urls
			}
		}
	} else {
		c.logger.Warn("Dynamic profile rendering failed, trying static fetch",
			"profile_url", profileURL,
			"error", err,
		)
	}

	doc, err := fetchStaticDocument(ctx, c.client, profileURL)
	if err != nil {
		c.logger.Warn("Static profile fetch failed",
			"profile_url", profileURL,
			"error", err,
		)
		return nil
	}
	return probeStoryCards(doc, profileURL)
}

// probeStoryCards runs the card selectors in order and keeps anchors whose
// href matches the story URL shape.
func probeStoryCards(doc *goquery.Document, pageURL string) []string {
	for _, selector := range profileCardSelectors {
		anchors := doc.Find(selector)
		if anchors.Length() == 0 {
			continue
		}

		var urls []string
		seen := make(map[string]bool)
		anchors.EachWithBreak(func(_ int, a *goquery.Selection) bool {
			if len(urls) >= maxProfileCards {
				return false
			}
			href, _ := a.Attr("href")
			if href == "" {
				return true
			}
			href = storyurl.Resolve(pageURL, href)
			if !storyurl.IsStory(href) {
				return true
			}
			if !seen[href] {
				seen[href] = true
				urls = append(urls, href)
			}
			return true
		})

		if len(urls) > 0 {
			return urls
		}
	}
	return nil
}

func dedupeURLs(urls []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}
	return out
}
