package exporter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeAttributeValue(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		attribute string
		want      string
	}{
		{"plain text", "hello", "alt", "hello"},
		{"quotes", `say "hi" it's`, "alt", "say &quot;hi&quot; it&#39;s"},
		{"angle brackets", "<b>", "title", "&lt;b&gt;"},
		{"ampersand in text", "a & b", "alt", "a &amp; b"},
		{"ampersand in absolute href", "https://x.test/?a=1&b=2", "href", "https://x.test/?a=1&b=2"},
		{"ampersand in protocol relative src", "//cdn.test/i.png?w=1&h=2", "src", "//cdn.test/i.png?w=1&h=2"},
		{"ampersand in relative href", "/path?a=1&b=2", "href", "/path?a=1&amp;b=2"},
		{"url-like value in other attribute", "https://x.test/?a=1&b=2", "data-url", "https://x.test/?a=1&amp;b=2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, escapeAttributeValue(tt.value, tt.attribute))
		})
	}
}

func TestEscapeContent(t *testing.T) {
	assert.Equal(t, "Tom &amp; Jerry &lt;3 &gt;", escapeContent("Tom & Jerry <3 >"))
	assert.Equal(t, `"quoted"`, escapeContent(`"quoted"`))
}

func TestAttributesString(t *testing.T) {
	attrs := attributes{}
	attrs.add("id", "x")
	attrs.add("name", "")
	attrs.addAlways("alt", "")
	attrs.addInt("rows", 3)
	attrs.addFlag("required", true)
	attrs.addFlag("checked", false)
	attrs.addBool("data-striped", false)

	assert.Equal(t, ` id="x" alt="" rows="3" required data-striped="false"`, attrs.String())
}

func TestStylesString(t *testing.T) {
	s := styles{}
	s.set("color", "#fff")
	s.set("background-color", "")
	s.setPx("font-size", 14)

	assert.Equal(t, "color:#fff;font-size:14px", s.String())
	assert.Equal(t, "", styles{}.String())
}
