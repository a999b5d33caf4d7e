// Package crawl discovers the pages of a site for `generate --all`.
// It reads sitemap.xml when the site has one and otherwise crawls
// same-domain links breadth first.
package crawl

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/reportpipe/core"
	"github.com/gaurav-prasanna/reportpipe/logger"
	"github.com/sirupsen/logrus"
)

// MaxPages bounds a single discovery run.
const MaxPages = 100

// urlset is the subset of the sitemap protocol we read.
type urlset struct {
	Entries []struct {
		Loc string `xml:"loc"`
	} `xml:"url"`
}

// Discoverer finds the pages of one site.
type Discoverer struct {
	fetcher core.Fetcher
	limit   int
}

// NewDiscoverer creates a Discoverer bounded to MaxPages.
func NewDiscoverer(fetcher core.Fetcher) *Discoverer {
	return &Discoverer{fetcher: fetcher, limit: MaxPages}
}

// DiscoverAll is shorthand for NewDiscoverer(fetcher).Discover(ctx, baseURL).
func DiscoverAll(ctx context.Context, baseURL string, fetcher core.Fetcher) ([]string, error) {
	return NewDiscoverer(fetcher).Discover(ctx, baseURL)
}

// Discover returns the same-domain pages reachable from baseURL, baseURL
// first. The sitemap is used when it lists at least one page.
func (d *Discoverer) Discover(ctx context.Context, baseURL string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", baseURL)
	}

	log := logger.Log.WithField("url", baseURL)
	sitemap := base.ResolveReference(&url.URL{Path: "/sitemap.xml"}).String()

	pages, err := d.fromSitemap(ctx, sitemap, base.Host, NormalizeURL(baseURL))
	switch {
	case err != nil:
		log.Debugf("Sitemap unavailable, crawling links: %v", err)
	case len(pages) > 1:
		log.WithField("pages", len(pages)).Debug("Discovered pages from sitemap")
		return pages, nil
	}

	pages, err = d.fromLinks(ctx, NormalizeURL(baseURL), base.Host)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"pages": len(pages)}).Debug("Discovered pages from links")
	return pages, nil
}

// fromSitemap returns start followed by every crawlable sitemap entry.
func (d *Discoverer) fromSitemap(ctx context.Context, sitemapURL, host, start string) ([]string, error) {
	body, err := d.fetcher.FetchRawData(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}

	var set urlset
	if err := xml.Unmarshal([]byte(body), &set); err != nil {
		return nil, fmt.Errorf("parsing sitemap: %w", err)
	}

	q := NewQueue(d.limit)
	q.Add(start)
	for _, e := range set.Entries {
		loc := strings.TrimSpace(e.Loc)
		if IsCrawlable(loc, host) {
			q.Add(NormalizeURL(loc))
		}
	}
	return q.All(), nil
}

// fromLinks crawls breadth first from start until the queue is exhausted
// or full. Pages that fail to fetch are skipped.
func (d *Discoverer) fromLinks(ctx context.Context, start, host string) ([]string, error) {
	q := NewQueue(d.limit)
	q.Add(start)

	for !q.Full() {
		page, ok := q.Next()
		if !ok {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		body, err := d.fetcher.FetchRawData(ctx, page)
		if err != nil {
			logger.Log.WithField("url", page).Debugf("Skipping page: %v", err)
			continue
		}
		links, err := pageLinks(body, page)
		if err != nil {
			continue
		}
		for _, link := range links {
			if IsCrawlable(link, host) {
				q.Add(NormalizeURL(link))
			}
		}
	}
	return q.All(), nil
}

// pageLinks returns the absolute targets of every <a href> on the page,
// honouring a <base href> element.
func pageLinks(body, pageURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if ref, err := url.Parse(strings.TrimSpace(href)); err == nil {
			base = base.ResolveReference(ref)
		}
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if target, ok := resolve(base, href); ok {
			links = append(links, target)
		}
	})
	return links, nil
}

var skippedSchemes = []string{"mailto:", "javascript:", "tel:", "data:", "#"}

// resolve makes href absolute against base. Non-navigational hrefs are rejected.
func resolve(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}
	lower := strings.ToLower(href)
	for _, prefix := range skippedSchemes {
		if strings.HasPrefix(lower, prefix) {
			return "", false
		}
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	target := base.ResolveReference(ref)
	target.Fragment = ""
	return target.String(), true
}
