package importer

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/sparkeditor/spark/pkg/blocks"
)

// pendingLabel is a <label for> already emitted as a paragraph before its
// control was reached
type pendingLabel struct {
	text  string
	block blocks.Block
}

// importContext carries the per-import state through every recursive call.
// It is never shared between imports.
type importContext struct {
	opts     Options
	warnings []string
	root     *goquery.Selection

	ids           map[string]struct{}
	pendingLabels map[string]pendingLabel
	claimedLabels map[string]bool
	dropped       map[blocks.Block]bool
}

func newImportContext(opts Options) *importContext {
	return &importContext{
		opts:          opts,
		warnings:      []string{},
		ids:           make(map[string]struct{}),
		pendingLabels: make(map[string]pendingLabel),
		claimedLabels: make(map[string]bool),
		dropped:       make(map[blocks.Block]bool),
	}
}

func (c *importContext) warn(format string, args ...interface{}) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

// adoptID keeps an id found in the markup when it has not been used yet in
// this import, otherwise the generated id stays.
func (c *importContext) adoptID(id string, set func(string)) {
	if id == "" {
		return
	}
	if _, taken := c.ids[id]; taken {
		c.warn("duplicate id %s replaced", id)
		return
	}
	c.ids[id] = struct{}{}
	set(id)
}

// claimLabel returns the text of the <label for=id> describing a control and
// marks it consumed so the label itself is not imported a second time.
func (c *importContext) claimLabel(id string) string {
	if id == "" || c.root == nil {
		return ""
	}
	if p, ok := c.pendingLabels[id]; ok {
		delete(c.pendingLabels, id)
		c.dropped[p.block] = true
		c.claimedLabels[id] = true
		return p.text
	}
	label := c.root.Find("label").FilterFunction(func(_ int, s *goquery.Selection) bool {
		v, _ := s.Attr("for")
		return v == id
	}).First()
	if label.Length() == 0 {
		return ""
	}
	c.claimedLabels[id] = true
	return normalizeText(label.Text())
}

// prune drops label paragraphs that were claimed by a control after being
// emitted, and sections left without blocks.
func (c *importContext) prune(doc blocks.Document) blocks.Document {
	out := blocks.Document{}
	for _, section := range doc {
		if len(c.dropped) > 0 {
			for i, col := range section.Blocks {
				kept := blocks.Column{}
				for _, b := range col {
					if !c.dropped[b] {
						kept = append(kept, b)
					}
				}
				section.Blocks[i] = kept
			}
		}
		if section.BlockCount() == 0 {
			continue
		}
		out = append(out, section)
	}
	return out
}

func (c *importContext) result(doc blocks.Document, layout Layout) Result {
	if doc == nil {
		doc = blocks.Document{}
	}
	return Result{
		Sections: doc,
		Warnings: c.warnings,
		Layout:   layout,
	}
}
