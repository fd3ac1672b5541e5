package collector

import (
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/coinfeed/coinfeed/internal/news"
	"github.com/coinfeed/coinfeed/internal/processor"
)

const headlineTimeout = 8 * time.Second

// HeadlineFetcher scrapes a news front page for article headlines feeding the
// archive. It is best-effort: the selectors track the current DOM, and a
// selector that stops matching simply yields fewer items.
type HeadlineFetcher struct {
	PageURL string
	scorer  *processor.Scorer
}

func NewHeadlineFetcher(pageURL string, scorer *processor.Scorer) *HeadlineFetcher {
	return &HeadlineFetcher{PageURL: pageURL, scorer: scorer}
}

func (h *HeadlineFetcher) Name() string {
	return "headline_scraper"
}

func (h *HeadlineFetcher) Fetch() ([]news.Item, error) {
	pageURL, err := url.Parse(h.PageURL)
	if err != nil {
		return nil, err
	}
	host := strings.TrimPrefix(strings.ToLower(pageURL.Host), "www.")

	c := colly.NewCollector(
		colly.AllowedDomains(pageURL.Host, host, "www."+host),
		colly.UserAgent("CoinfeedBot/1.0"),
	)
	c.SetRequestTimeout(headlineTimeout)

	results := make([]news.Item, 0, 30)
	seen := make(map[string]struct{})
	now := time.Now()

	c.OnHTML("article, div[class*='card'], div[class*='story']", func(e *colly.HTMLElement) {
		title := strings.TrimSpace(e.ChildText("h1, h2, h3"))
		if title == "" {
			return
		}

		link := e.ChildAttr("a", "href")
		if link == "" {
			return
		}
		if !strings.HasPrefix(link, "http") {
			link = pageURL.Scheme + "://" + pageURL.Host + link
		}
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}

		summary := strings.TrimSpace(e.ChildText("p"))
		if summary == "" {
			summary = title
		}

		results = append(results, news.Item{
			Title:       title,
			Source:      host,
			URL:         link,
			PublishedAt: now, // front pages rarely expose timestamps
			Summary:     summary,
			Sentiment:   h.scorer.ScoreItem(title, summary),
		})
	})

	if err := c.Visit(h.PageURL); err != nil {
		return nil, err
	}
	c.Wait()

	if len(results) == 0 {
		log.Printf("headlines: no items scraped from %s", h.PageURL)
	}
	return results, nil
}
