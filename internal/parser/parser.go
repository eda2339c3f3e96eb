// Package parser extracts structured publication results from the free-form
// text an agent run produces.
package parser

import (
	"regexp"
	"strings"
)

var (
	// markdown link emitted by the publishing step
	viewPostPattern = regexp.MustCompile(`\[View Post\]\((https?://[^\s)]+)\)`)
	// plain success line, used when no link is present
	publishedAtPattern = regexp.MustCompile(`SUCCESS: Post published at\s*(https?://\S+)`)
	titlePattern       = regexp.MustCompile(`Final Title:([^\r\n]*)`)
)

// DraftMarkers are the phrases that mark a post as saved without publishing
var DraftMarkers = []string{
	"Saved as Draft",
	"retrying as draft",
}

// Result is what could be recovered from an agent output
type Result struct {
	PublishedURL *string
	Title        *string
	IsDraft      bool
}

// Parse scans text for a published URL, a final title and a draft marker.
// It never fails; missing pieces are left nil or false.
func Parse(text string) Result {
	var res Result

	if m := viewPostPattern.FindStringSubmatch(text); m != nil {
		res.PublishedURL = &m[1]
	} else if m := publishedAtPattern.FindStringSubmatch(text); m != nil {
		res.PublishedURL = &m[1]
	}

	if m := titlePattern.FindStringSubmatch(text); m != nil {
		if title := strings.TrimSpace(m[1]); title != "" {
			res.Title = &title
		}
	}

	for _, marker := range DraftMarkers {
		if strings.Contains(text, marker) {
			res.IsDraft = true
			break
		}
	}

	return res
}
