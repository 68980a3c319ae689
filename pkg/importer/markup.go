package importer

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// maxBalanceWarnings caps how many structural warnings one input can produce
const maxBalanceWarnings = 10

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true, "keygen": true,
}

// elements whose end tag may be omitted by the author
var optionalEndElements = map[string]bool{
	"html": true, "head": true, "body": true, "p": true, "li": true,
	"dt": true, "dd": true, "option": true, "optgroup": true, "tr": true,
	"td": true, "th": true, "thead": true, "tbody": true, "tfoot": true,
	"colgroup": true, "caption": true, "rb": true, "rt": true, "rtc": true, "rp": true,
}

// checkMarkupBalance tokenizes the raw input and reports closing tags with no
// matching opener and elements that were never closed. The HTML parser
// recovers from both silently, so this is the only place they surface.
func checkMarkupBalance(markup string) []string {
	z := html.NewTokenizer(strings.NewReader(markup))
	var stack []string
	var warnings []string

	report := func(format string, args ...interface{}) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() != io.EOF {
				report("markup tokenizer stopped early: %v", z.Err())
			}
			break
		}

		switch tt {
		case html.StartTagToken:
			name, _ := z.TagName()
			if tag := string(name); !voidElements[tag] {
				stack = append(stack, tag)
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			open := -1
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i] == tag {
					open = i
					break
				}
			}
			if open < 0 {
				if !voidElements[tag] {
					report("unexpected closing tag </%s>", tag)
				}
				continue
			}
			for i := len(stack) - 1; i > open; i-- {
				if !optionalEndElements[stack[i]] {
					report("unclosed <%s>", stack[i])
				}
			}
			stack = stack[:open]
		}
	}

	for i := len(stack) - 1; i >= 0; i-- {
		if !optionalEndElements[stack[i]] {
			report("unclosed <%s>", stack[i])
		}
	}

	if len(warnings) > maxBalanceWarnings {
		extra := len(warnings) - maxBalanceWarnings
		warnings = append(warnings[:maxBalanceWarnings], fmt.Sprintf("%d more markup structure problems", extra))
	}
	return warnings
}

func isSpaceLike(r rune) bool {
	switch r {
	case '\u200b', '\u200c', '\u200d', '\ufeff':
		return true
	}
	return unicode.IsSpace(r)
}

// isBlank reports text made only of whitespace, non-breaking and zero width
// spaces
func isBlank(s string) bool {
	return strings.TrimFunc(s, isSpaceLike) == ""
}

// normalizeText collapses runs of whitespace into single spaces
func normalizeText(s string) string {
	return strings.Join(strings.FieldsFunc(s, isSpaceLike), " ")
}

// renderNodes serializes nodes back to markup
func renderNodes(nodes []*html.Node) string {
	var buf bytes.Buffer
	for _, n := range nodes {
		_ = html.Render(&buf, n)
	}
	return buf.String()
}

// outerHTML returns the trimmed markup of the first node in sel
func outerHTML(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(renderNodes(sel.Nodes[:1]))
}

// innerHTML returns the trimmed markup of the children of sel
func innerHTML(sel *goquery.Selection) string {
	h, err := sel.Html()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(h)
}

// directText concatenates the text nodes that are immediate children of sel
func directText(sel *goquery.Selection) string {
	var sb strings.Builder
	for _, n := range sel.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				sb.WriteString(c.Data)
			}
		}
	}
	return sb.String()
}

// textExcluding returns the normalized text of sel without the text of
// descendants matching skip
func textExcluding(sel *goquery.Selection, skip string) string {
	clone := sel.Clone()
	clone.Find(skip).Remove()
	return normalizeText(clone.Text())
}

// childNodes lists the child nodes of the first node in sel
func childNodes(sel *goquery.Selection) []*html.Node {
	if sel.Length() == 0 {
		return nil
	}
	var out []*html.Node
	for c := sel.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// contentElements would carry meaning even without any text
const contentElements = "img, input, select, textarea, button, hr, video, audio, iframe, svg, canvas, object, embed"

// hasContent reports whether sel holds visible text or a content element
func hasContent(sel *goquery.Selection) bool {
	if !isBlank(sel.Text()) {
		return true
	}
	return sel.Is(contentElements) || sel.Find(contentElements).Length() > 0
}

// blockText returns the normalized text of sel with a space at the edges of
// every block element and line break, so <h1>Hello<p>World</p></h1> reads
// "Hello World" rather than "HelloWorld"
func blockText(sel *goquery.Selection) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				sb.WriteString(c.Data)
			case html.ElementNode:
				boundary := !inlineTags[c.Data] || c.Data == "br"
				if boundary {
					sb.WriteByte(' ')
				}
				walk(c)
				if boundary {
					sb.WriteByte(' ')
				}
			}
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return normalizeText(sb.String())
}

// losesStructure reports descendants that a text-only block cannot carry:
// content elements and link targets
func losesStructure(sel *goquery.Selection) bool {
	return sel.Find(contentElements).Length() > 0 || sel.Find("a[href]").Length() > 0
}
