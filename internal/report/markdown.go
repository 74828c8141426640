package report

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

type lineKind int

const (
	lineParagraph lineKind = iota
	lineHeading
	lineBullet
)

// run is a span of text drawn in one font style.
type run struct {
	Text  string
	Style string
}

type line struct {
	Kind   lineKind
	Prefix string
	Runs   []run
}

var (
	markdownParser = goldmark.New().Parser()
	bulletPattern  = regexp.MustCompile(`^[*+-]\s+`)
	numberPattern  = regexp.MustCompile(`^(\d+[.)])\s+`)
	hashPattern    = regexp.MustCompile(`^#{1,6}\s+`)
)

// parseNarrative turns the narrative into drawable lines. A line wrapped in
// ** markers (or a markdown # heading) becomes a heading; blank lines are
// dropped.
func parseNarrative(narrative string) []line {
	var out []line
	for _, raw := range strings.Split(narrative, "\n") {
		l := strings.TrimSpace(raw)
		if l == "" {
			continue
		}

		if isHeading(l) {
			heading := strings.ReplaceAll(hashPattern.ReplaceAllString(l, ""), "**", "")
			out = append(out, line{Kind: lineHeading, Runs: []run{{Text: strings.TrimSpace(heading), Style: "B"}}})
			continue
		}

		kind, prefix := lineParagraph, ""
		if m := bulletPattern.FindString(l); m != "" {
			kind, prefix = lineBullet, "•"
			l = l[len(m):]
		} else if m := numberPattern.FindStringSubmatch(l); m != nil {
			kind, prefix = lineBullet, m[1]
			l = l[len(m[0]):]
		}

		out = append(out, line{Kind: kind, Prefix: prefix, Runs: inlineRuns(l)})
	}
	return out
}

func isHeading(l string) bool {
	if hashPattern.MatchString(l) {
		return true
	}
	return len(l) > 4 && strings.HasPrefix(l, "**") && strings.HasSuffix(l, "**")
}

// inlineRuns splits a single line into styled runs using its markdown
// emphasis: * is italic, ** is bold.
func inlineRuns(l string) []run {
	source := []byte(l)
	doc := markdownParser.Parse(text.NewReader(source))

	var runs []run
	bold, italic := 0, 0
	add := func(s string) {
		if s == "" {
			return
		}
		style := ""
		if bold > 0 {
			style += "B"
		}
		if italic > 0 {
			style += "I"
		}
		if n := len(runs); n > 0 && runs[n-1].Style == style {
			runs[n-1].Text += s
			return
		}
		runs = append(runs, run{Text: s, Style: style})
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Emphasis:
			delta := 1
			if !entering {
				delta = -1
			}
			if node.Level >= 2 {
				bold += delta
			} else {
				italic += delta
			}
		case *ast.Text:
			if entering {
				add(string(node.Segment.Value(source)))
				if node.SoftLineBreak() || node.HardLineBreak() {
					add(" ")
				}
			}
		case *ast.String:
			if entering {
				add(string(node.Value))
			}
		}
		return ast.WalkContinue, nil
	})

	if len(runs) == 0 {
		return []run{{Text: l}}
	}
	return runs
}
