package exporter

import (
	"fmt"
	"strconv"
	"strings"
)

// attribute is one rendered element attribute. Boolean attributes render
// without a value.
type attribute struct {
	key     string
	value   string
	boolean bool
}

// attributes keeps insertion order so output is deterministic
type attributes []attribute

// add appends key when value is not empty
func (a *attributes) add(key, value string) {
	if value == "" {
		return
	}
	*a = append(*a, attribute{key: key, value: value})
}

// addAlways appends key even when value is empty
func (a *attributes) addAlways(key, value string) {
	*a = append(*a, attribute{key: key, value: value})
}

func (a *attributes) addInt(key string, value int) {
	*a = append(*a, attribute{key: key, value: strconv.Itoa(value)})
}

// addFlag appends a boolean attribute such as required when on is true
func (a *attributes) addFlag(key string, on bool) {
	if on {
		*a = append(*a, attribute{key: key, boolean: true})
	}
}

// addBool appends a data attribute holding "true" or "false"
func (a *attributes) addBool(key string, value bool) {
	*a = append(*a, attribute{key: key, value: strconv.FormatBool(value)})
}

func (a attributes) String() string {
	var sb strings.Builder
	for _, attr := range a {
		sb.WriteByte(' ')
		sb.WriteString(attr.key)
		if attr.boolean {
			continue
		}
		sb.WriteString(`="`)
		sb.WriteString(escapeAttributeValue(attr.value, attr.key))
		sb.WriteByte('"')
	}
	return sb.String()
}

// escapeAttributeValue escapes a value for a double quoted attribute.
// Ampersands in absolute URLs are left alone so query strings stay readable.
func escapeAttributeValue(value string, attributeName string) string {
	isURLAttribute := attributeName == "src" || attributeName == "href" || attributeName == "action"
	looksLikeURL := strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") || strings.HasPrefix(value, "//")

	if !(isURLAttribute && looksLikeURL) {
		value = strings.ReplaceAll(value, "&", "&amp;")
	}
	value = strings.ReplaceAll(value, "\"", "&quot;")
	value = strings.ReplaceAll(value, "'", "&#39;")
	value = strings.ReplaceAll(value, "<", "&lt;")
	value = strings.ReplaceAll(value, ">", "&gt;")
	return value
}

// escapeContent escapes plain text for element content
func escapeContent(content string) string {
	content = strings.ReplaceAll(content, "&", "&amp;")
	content = strings.ReplaceAll(content, "<", "&lt;")
	content = strings.ReplaceAll(content, ">", "&gt;")
	return content
}

// styles builds an inline style attribute value in insertion order
type styles []string

func (s *styles) set(prop, value string) {
	if value == "" {
		return
	}
	*s = append(*s, prop+":"+value)
}

func (s *styles) setPx(prop string, value int) {
	*s = append(*s, fmt.Sprintf("%s:%dpx", prop, value))
}

func (s styles) String() string {
	return strings.Join(s, ";")
}
