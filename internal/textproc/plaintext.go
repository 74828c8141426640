package textproc

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/russross/blackfriday/v2"
)

var (
	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
)

func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1") // Keep only the text
	return urlPattern.ReplaceAllString(input, "")
}

// PlainText renders markdown to plain text, one paragraph per line pair.
// Links keep their anchor text and bare URLs are dropped.
func PlainText(markdown string) string {
	html := blackfriday.Run([]byte(RemoveLinks(markdown)))

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return collapse(RemoveLinks(markdown))
	}

	return collapse(RemoveLinks(doc.Text()))
}

// collapse squeezes whitespace inside each line and drops blank lines.
func collapse(text string) string {
	var paragraphs []string
	for _, line := range strings.Split(text, "\n") {
		if l := strings.Join(strings.Fields(line), " "); l != "" {
			paragraphs = append(paragraphs, l)
		}
	}
	return strings.Join(paragraphs, "\n\n")
}
