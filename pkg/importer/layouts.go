package importer

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/sparkeditor/spark/pkg/blocks"
)

// chunk groups loose blocks into single-column sections of at most size
func chunk(list []blocks.Block, size int) blocks.Document {
	doc := blocks.Document{}
	for len(list) > 0 {
		n := size
		if n > len(list) {
			n = len(list)
		}
		doc = append(doc, blocks.NewSectionWithBlocks(list[:n]))
		list = list[n:]
	}
	return doc
}

// parseGenericLayout maps the body's children in order and chunks them
func parseGenericLayout(ctx *importContext, body *goquery.Selection) blocks.Document {
	return chunk(mapNodes(ctx, childNodes(body), 0), ctx.opts.BlocksPerSection)
}

// parseSectionLayout honors explicit section and column markers. Content
// outside any section is mapped and chunked in document order; columns
// without a section are grouped with their marked siblings.
func parseSectionLayout(ctx *importContext, body *goquery.Selection) blocks.Document {
	doc := blocks.Document{}
	walkSectionMarkers(ctx, body, &doc)
	return doc
}

func walkSectionMarkers(ctx *importContext, parent *goquery.Selection, doc *blocks.Document) {
	var loose []*html.Node
	var columns []*goquery.Selection

	flushLoose := func() {
		if len(loose) > 0 {
			*doc = append(*doc, chunk(mapNodes(ctx, loose, 0), ctx.opts.BlocksPerSection)...)
			loose = nil
		}
	}
	flushColumns := func() {
		if len(columns) > 0 {
			if section, ok := sectionFromColumns(ctx, columns); ok {
				*doc = append(*doc, section)
			}
			columns = nil
		}
	}

	for _, n := range childNodes(parent) {
		if n.Type != html.ElementNode {
			if n.Type == html.TextNode && isBlank(n.Data) {
				continue
			}
			flushColumns()
			loose = append(loose, n)
			continue
		}

		el := goquery.NewDocumentFromNode(n).Selection
		switch {
		case el.Is(sectionSelector):
			flushLoose()
			flushColumns()
			if section, ok := parseMarkedSection(ctx, el); ok {
				*doc = append(*doc, section)
			}
		case el.Is(columnSelector):
			flushLoose()
			columns = append(columns, el)
		case el.Find(markerSelector).Length() > 0:
			flushLoose()
			flushColumns()
			walkSectionMarkers(ctx, el, doc)
		default:
			flushColumns()
			loose = append(loose, n)
		}
	}
	flushLoose()
	flushColumns()
}

// parseMarkedSection builds a section from an element carrying a section
// marker. Direct column children become columns; a section without columns
// is a single column of its content.
func parseMarkedSection(ctx *importContext, sel *goquery.Selection) (blocks.Section, bool) {
	var columns []*goquery.Selection
	var stray []*html.Node
	for _, n := range childNodes(sel) {
		if n.Type == html.ElementNode {
			el := goquery.NewDocumentFromNode(n).Selection
			if el.Is(columnSelector) {
				columns = append(columns, el)
				continue
			}
		}
		if n.Type == html.CommentNode || (n.Type == html.TextNode && isBlank(n.Data)) {
			continue
		}
		stray = append(stray, n)
	}

	var section blocks.Section
	var ok bool
	if len(columns) == 0 {
		section = blocks.NewSectionWithBlocks(mapNodes(ctx, stray, 1))
		ok = section.BlockCount() > 0
	} else {
		section, ok = sectionFromColumns(ctx, columns)
		if extra := mapNodes(ctx, stray, 1); len(extra) > 0 {
			ctx.warn("content outside columns moved into the first column")
			section.Blocks[0] = append(section.Blocks[0], extra...)
			ok = true
		}
	}

	if id := attrString(sel, "data-section-id"); id != "" {
		ctx.adoptID(id, func(v string) { section.ID = v })
	}
	return section, ok
}

// sectionFromColumns maps up to MaxColumns column elements into one section
func sectionFromColumns(ctx *importContext, columns []*goquery.Selection) (blocks.Section, bool) {
	if len(columns) > blocks.MaxColumns {
		ctx.warn("section has %d columns, only the first %d were imported", len(columns), blocks.MaxColumns)
		columns = columns[:blocks.MaxColumns]
	}
	section := blocks.NewSection(len(columns))
	for i, col := range columns {
		section.Blocks[i] = append(blocks.Column{}, mapNodes(ctx, childNodes(col), 1)...)
	}
	return section, section.BlockCount() > 0
}

// parseTableEmailLayout turns every row of the top-level tables into a
// section with one column per cell. Spacer rows are skipped and content
// outside the tables is chunked into single-column sections.
func parseTableEmailLayout(ctx *importContext, root *goquery.Selection) blocks.Document {
	doc := blocks.Document{}
	var loose []*html.Node

	flushLoose := func() {
		if len(loose) > 0 {
			doc = append(doc, chunk(mapNodes(ctx, loose, 0), ctx.opts.BlocksPerSection)...)
			loose = nil
		}
	}

	for _, n := range childNodes(root) {
		if n.Type == html.ElementNode && n.Data == "table" {
			flushLoose()
			appendTableRows(ctx, goquery.NewDocumentFromNode(n).Selection, &doc, 0)
			continue
		}
		loose = append(loose, n)
	}
	flushLoose()
	return doc
}

// appendTableRows emits one section per row. A row whose only cell merely
// wraps further layout tables is descended into instead.
func appendTableRows(ctx *importContext, table *goquery.Selection, doc *blocks.Document, depth int) {
	ownRows(table).Each(func(_ int, row *goquery.Selection) {
		if inner := wrappedLayoutTables(row); inner != nil && depth < ctx.opts.MaxDepth {
			inner.Each(func(_ int, t *goquery.Selection) {
				appendTableRows(ctx, t, doc, depth+1)
			})
			return
		}
		if section, ok := sectionFromRow(ctx, row); ok {
			*doc = append(*doc, section)
		}
	})
}

// wrappedLayoutTables returns the tables of a single-cell row when the cell
// holds nothing but layout tables
func wrappedLayoutTables(row *goquery.Selection) *goquery.Selection {
	cells := row.ChildrenFiltered("td, th")
	if cells.Length() != 1 || !isBlank(directText(cells)) {
		return nil
	}
	children := cells.Children()
	if children.Length() == 0 || children.Length() != children.Filter("table").Length() {
		return nil
	}
	layout := children.FilterFunction(func(_ int, t *goquery.Selection) bool {
		return isLayoutTable(t)
	})
	if layout.Length() != children.Length() {
		return nil
	}
	return children
}

func sectionFromRow(ctx *importContext, row *goquery.Selection) (blocks.Section, bool) {
	if isSpacerRow(row) {
		return blocks.Section{}, false
	}
	cells := row.ChildrenFiltered("td, th")
	if cells.Length() == 0 {
		return blocks.Section{}, false
	}
	if cells.Length() > blocks.MaxColumns {
		ctx.warn("table row has %d cells, only the first %d were imported", cells.Length(), blocks.MaxColumns)
		cells = cells.Slice(0, blocks.MaxColumns)
	}

	section := blocks.NewSection(cells.Length())
	cells.Each(func(i int, cell *goquery.Selection) {
		section.Blocks[i] = mapCell(ctx, cell)
	})
	return section, section.BlockCount() > 0
}

// mapCell maps the content of one layout cell into a column
func mapCell(ctx *importContext, cell *goquery.Selection) blocks.Column {
	col := blocks.Column{}
	if cell.Children().Length() == 0 {
		if isBlank(cell.Text()) {
			return col
		}
		return append(col, paragraphFrom(cell, innerHTML(cell)))
	}
	return append(col, mapNodes(ctx, childNodes(cell), 1)...)
}

// isSpacerRow reports a row with no visible text and no content element,
// typically used for vertical spacing in email layouts
func isSpacerRow(row *goquery.Selection) bool {
	if strings.TrimFunc(row.Text(), isSpaceLike) != "" {
		return false
	}
	return row.Find(contentElements).Length() == 0
}
