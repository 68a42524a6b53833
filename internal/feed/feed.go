// Package feed renders published posts as an RSS 2.0 document.
package feed

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/beevik/etree"

	"github.com/Dan9191/blog-service/internal/models"
)

const summaryLen = 280

// Channel describes the feed itself
type Channel struct {
	Title       string
	Link        string // absolute base URL, no trailing slash
	Description string
}

// Build renders posts, which should already be newest first
func Build(ch Channel, posts []models.Post, now time.Time) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	rss := doc.CreateElement("rss")
	rss.CreateAttr("version", "2.0")
	rss.CreateAttr("xmlns:dc", "http://purl.org/dc/elements/1.1/")

	channel := rss.CreateElement("channel")
	channel.CreateElement("title").SetText(ch.Title)
	channel.CreateElement("link").SetText(ch.Link)
	channel.CreateElement("description").SetText(ch.Description)
	lastBuild := now
	if len(posts) > 0 {
		lastBuild = posts[0].UpdatedAt
	}
	channel.CreateElement("lastBuildDate").SetText(lastBuild.UTC().Format(time.RFC1123Z))

	for _, p := range posts {
		link := fmt.Sprintf("%s/api/posts/%d", ch.Link, p.ID)
		item := channel.CreateElement("item")
		item.CreateElement("title").SetText(p.Title)
		item.CreateElement("link").SetText(link)
		guid := item.CreateElement("guid")
		guid.CreateAttr("isPermaLink", "true")
		guid.SetText(link)
		item.CreateElement("description").SetText(summarize(p.Content))
		if p.User.Username != "" {
			item.CreateElement("dc:creator").SetText(p.User.Username)
		}
		item.CreateElement("pubDate").SetText(p.CreatedAt.UTC().Format(time.RFC1123Z))
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to write feed: %w", err)
	}
	return out, nil
}

func summarize(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	if utf8.RuneCountInString(content) <= summaryLen {
		return content
	}
	runes := []rune(content)
	return string(runes[:summaryLen]) + "..."
}
