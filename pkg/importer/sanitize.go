package importer

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer strips executable content and unsafe attributes from markup
// before it is parsed
type Sanitizer interface {
	Sanitize(markup string) string
}

// PolicySanitizer is a Sanitizer backed by a bluemonday policy
type PolicySanitizer struct {
	policy *bluemonday.Policy
}

var (
	sanitizerElements = []string{
		"a", "abbr", "address", "article", "aside", "b", "bdi", "bdo", "blockquote",
		"br", "button", "caption", "center", "cite", "code", "col", "colgroup", "dd",
		"del", "details", "dfn", "div", "dl", "dt", "em", "fieldset", "figcaption",
		"figure", "font", "footer", "form", "h1", "h2", "h3", "h4", "h5", "h6",
		"header", "hr", "i", "img", "input", "ins", "kbd", "label", "legend", "li",
		"main", "mark", "nav", "ol", "optgroup", "option", "p", "pre", "q", "s",
		"samp", "section", "select", "small", "span", "strike", "strong", "sub",
		"summary", "sup", "table", "tbody", "td", "textarea", "tfoot", "th", "thead",
		"time", "tr", "u", "ul", "var", "wbr",
	}

	sanitizerAttributes = []string{
		"id", "class", "style", "title", "lang", "dir", "role", "name", "value",
		"type", "placeholder", "required", "checked", "selected", "disabled",
		"multiple", "for", "rows", "cols", "alt", "width", "height", "align",
		"valign", "bgcolor", "border", "cellpadding", "cellspacing", "colspan",
		"rowspan", "color", "size", "start", "reversed", "datetime",
		"scope", "novalidate", "maxlength", "min", "max", "step", "pattern",
	}

	safeTarget = regexp.MustCompile(`^(_blank|_self|_parent|_top)$`)
)

// NewPolicySanitizer builds the default policy: structural, text, table and
// form elements plus layout attributes survive; scripts, event handlers,
// embedded frames and non web URL schemes do not.
func NewPolicySanitizer() *PolicySanitizer {
	p := bluemonday.NewPolicy()

	p.AllowElements(sanitizerElements...)
	p.AllowNoAttrs().OnElements("a", "label", "form", "main", "font", "legend", "input", "bdo", "ins")
	p.AllowAttrs(sanitizerAttributes...).Globally()
	p.AllowAttrs("target").Matching(safeTarget).OnElements("a")
	p.AllowDataAttributes()

	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("src").OnElements("img")
	p.AllowURLSchemes("http", "https", "mailto", "tel")
	p.AllowRelativeURLs(true)
	p.AllowImages()
	p.RequireNoFollowOnLinks(false)

	return &PolicySanitizer{policy: p}
}

func (s *PolicySanitizer) Sanitize(markup string) string {
	return s.policy.Sanitize(markup)
}
