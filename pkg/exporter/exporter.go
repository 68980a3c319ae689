// Package exporter renders a block document back into HTML. Documents it
// writes carry the block tree as a metadata comment so the importer can
// restore them exactly.
package exporter

import (
	_ "embed"
	"html"
	"strings"

	"github.com/osteele/liquid"

	"github.com/sparkeditor/spark/pkg/blocks"
)

// DefaultTitle is used when a document is rendered without a title
const DefaultTitle = "Spark document"

//go:embed assets/validation.js
var validationScript string

//go:embed assets/base.css
var baseStylesheet string

const documentTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{ title | escape }}</title>
<style>
{{ stylesheet }}</style>
</head>
<body>
{% if metadata != "" %}{{ metadata }}
{% endif %}<form class="spark-form" novalidate>
{{ body }}</form>
<script>
{{ script }}</script>
</body>
</html>
`

// Options configures an Exporter
type Options struct {
	DefaultTitle string
}

// BodyOptions controls RenderBody
type BodyOptions struct {
	IncludeMetadata bool
}

// DocumentOptions controls RenderDocument
type DocumentOptions struct {
	Title string
	// OmitMetadata leaves out the round-trip comment
	OmitMetadata bool
}

// Exporter renders documents. It is safe for concurrent use.
type Exporter struct {
	engine       *liquid.Engine
	defaultTitle string
}

// New creates an exporter
func New(opts Options) *Exporter {
	if opts.DefaultTitle == "" {
		opts.DefaultTitle = DefaultTitle
	}
	return &Exporter{
		engine:       liquid.NewEngine(),
		defaultTitle: opts.DefaultTitle,
	}
}

var defaultExporter = New(Options{})

// RenderBody renders doc with the default exporter
func RenderBody(doc blocks.Document, opts BodyOptions) string {
	return defaultExporter.RenderBody(doc, opts)
}

// RenderDocument renders doc with the default exporter
func RenderDocument(doc blocks.Document, opts DocumentOptions) string {
	return defaultExporter.RenderDocument(doc, opts)
}

// RenderBody returns the section markup without the page shell. The metadata
// comment, when requested, comes first so it precedes any comment carried in
// paragraph or raw html content.
func (e *Exporter) RenderBody(doc blocks.Document, opts BodyOptions) string {
	body := renderSections(doc)
	if opts.IncludeMetadata {
		body = MetadataComment(doc) + "\n" + body
	}
	return body
}

// RenderDocument returns a complete standalone HTML page
func (e *Exporter) RenderDocument(doc blocks.Document, opts DocumentOptions) string {
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = e.defaultTitle
	}
	metadata := ""
	if !opts.OmitMetadata {
		metadata = MetadataComment(doc)
	}
	body := renderSections(doc)

	rendered, err := e.engine.ParseAndRenderString(documentTemplate, map[string]interface{}{
		"title":      title,
		"stylesheet": baseStylesheet,
		"body":       body,
		"metadata":   metadata,
		"script":     validationScript,
	})
	if err != nil {
		return assembleDocument(title, body, metadata)
	}
	return rendered
}

// assembleDocument builds the same page as documentTemplate without the
// template engine
func assembleDocument(title, body, metadata string) string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	sb.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	sb.WriteString("<title>" + html.EscapeString(title) + "</title>\n")
	sb.WriteString("<style>\n" + baseStylesheet + "</style>\n</head>\n<body>\n")
	if metadata != "" {
		sb.WriteString(metadata + "\n")
	}
	sb.WriteString("<form class=\"spark-form\" novalidate>\n" + body + "</form>\n")
	sb.WriteString("<script>\n" + validationScript + "</script>\n</body>\n</html>\n")
	return sb.String()
}

func renderSections(doc blocks.Document) string {
	var sb strings.Builder
	for _, section := range doc {
		renderSection(&sb, section)
	}
	return sb.String()
}

// MetadataComment returns the round-trip comment for doc. The JSON encoder
// escapes <, > and & so the payload cannot terminate the comment early.
func MetadataComment(doc blocks.Document) string {
	payload, err := blocks.MarshalMetadata(doc)
	if err != nil {
		return ""
	}
	return "<!-- " + blocks.MetadataMarker + " " + string(payload) + " -->"
}
