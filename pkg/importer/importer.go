// Package importer converts arbitrary HTML into the block document model.
//
// An import never fails: markup that cannot be decomposed is preserved as
// raw-html blocks and every lossy or ambiguous decision is reported as a
// warning on the Result.
package importer

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sparkeditor/spark/pkg/blocks"
)

const (
	// DefaultBlocksPerSection is how many loose blocks are grouped into one
	// single-column section by the generic layout parser
	DefaultBlocksPerSection = 5
	// DefaultMaxDepth bounds container unwrapping recursion
	DefaultMaxDepth = 32
)

// Layout names the strategy used for an import
type Layout string

const (
	LayoutMetadata   Layout = "metadata"
	LayoutSection    Layout = "section"
	LayoutTableEmail Layout = "table-email"
	LayoutGeneric    Layout = "generic"
	LayoutEmpty      Layout = "empty"
)

// Options configures an Importer. Zero values select the defaults.
type Options struct {
	BlocksPerSection int
	MaxDepth         int
	// Sanitizer cleans markup before parsing; nil selects NewPolicySanitizer
	Sanitizer Sanitizer
	// SkipSanitize feeds the input to the parser untouched. Only for input
	// that was already sanitized by the caller.
	SkipSanitize bool
}

// Result is the outcome of an import
type Result struct {
	Sections blocks.Document `json:"sections"`
	Warnings []string        `json:"warnings"`
	Layout   Layout          `json:"layout"`
}

// Importer holds immutable configuration and is safe for concurrent use;
// every Import call owns its own state.
type Importer struct {
	opts Options
}

// New creates an Importer, filling unset options with defaults
func New(opts Options) *Importer {
	if opts.BlocksPerSection <= 0 {
		opts.BlocksPerSection = DefaultBlocksPerSection
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Sanitizer == nil {
		opts.Sanitizer = NewPolicySanitizer()
	}
	return &Importer{opts: opts}
}

// Import converts markup with the default options
func Import(markup string) Result {
	return New(Options{}).Import(markup)
}

// Import converts markup into sections. Documents carrying valid round-trip
// metadata are returned as embedded; everything else goes through sanitizing,
// layout classification and element mapping.
func (i *Importer) Import(markup string) Result {
	ctx := newImportContext(i.opts)

	if strings.TrimSpace(markup) == "" {
		return ctx.result(blocks.Document{}, LayoutEmpty)
	}

	doc, found, err := detectMetadata(markup)
	if found && err == nil {
		return ctx.result(doc, LayoutMetadata)
	}
	if found {
		ctx.warn("metadata found but invalid: %v", err)
	}

	for _, w := range checkMarkupBalance(markup) {
		ctx.warn("%s", w)
	}

	safe := markup
	if !i.opts.SkipSanitize {
		safe = i.opts.Sanitizer.Sanitize(markup)
	}

	dom, err := goquery.NewDocumentFromReader(strings.NewReader(safe))
	if err != nil {
		ctx.warn("failed to parse markup, preserved as raw html: %v", err)
		return ctx.result(blocks.Document{blocks.NewSectionWithBlocks([]blocks.Block{blocks.NewRawHTML(safe)})}, LayoutGeneric)
	}
	ctx.root = dom.Selection

	body := dom.Find("body").First()
	layout := classify(body)

	var sections blocks.Document
	switch layout {
	case LayoutSection:
		sections = parseSectionLayout(ctx, body)
	case LayoutTableEmail:
		sections = parseTableEmailLayout(ctx, layoutRoot(body))
	default:
		sections = parseGenericLayout(ctx, body)
	}
	sections = ctx.prune(sections)

	if sections.BlockCount() == 0 {
		bodyHTML, _ := body.Html()
		bodyHTML = strings.TrimSpace(bodyHTML)
		if bodyHTML != "" {
			ctx.warn("no blocks could be mapped, whole body preserved as raw html")
			sections = blocks.Document{blocks.NewSectionWithBlocks([]blocks.Block{blocks.NewRawHTML(bodyHTML)})}
		} else {
			ctx.warn("input contained no importable content")
			sections = blocks.Document{}
		}
	}

	return ctx.result(sections, layout)
}
