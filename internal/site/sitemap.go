package site

import (
	"encoding/xml"
	"fmt"
	"io"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// WriteSitemap writes sitemap.xml listing every page.
func (s *Site) WriteSitemap(w io.Writer) error {
	set := urlset{Xmlns: sitemapNS}
	for _, p := range s.Pages() {
		u := sitemapURL{Loc: s.absURL(p.Path)}
		if p.Kind == PagePost {
			if post, err := s.posts.Get(p.Slug); err == nil && post.HasDate() {
				u.LastMod = post.PublishedAt.Format("2006-01-02")
			}
		}
		set.URLs = append(set.URLs, u)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return fmt.Errorf("encode sitemap: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// WriteRobots writes robots.txt allowing all crawlers and pointing at the sitemap.
func (s *Site) WriteRobots(w io.Writer) error {
	_, err := fmt.Fprintf(w, "User-agent: *\nAllow: /\n\nSitemap: %s\n", s.absURL("/sitemap.xml"))
	return err
}
