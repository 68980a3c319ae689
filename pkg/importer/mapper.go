package importer

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/sparkeditor/spark/pkg/blocks"
)

// elementMapper turns one element into at most one block. A nil block means
// the element carries nothing to import.
type elementMapper func(ctx *importContext, sel *goquery.Selection, depth int) blocks.Block

// elementMappers is filled in init because the container mapper recurses
// through mapElement, which reads this table
var elementMappers map[string]elementMapper

// inlineTags may be merged with neighbouring text into one paragraph
var inlineTags = map[string]bool{
	"a": true, "abbr": true, "b": true, "bdi": true, "bdo": true, "br": true,
	"cite": true, "code": true, "del": true, "dfn": true, "em": true, "font": true,
	"i": true, "ins": true, "kbd": true, "mark": true, "q": true, "s": true,
	"samp": true, "small": true, "span": true, "strike": true, "strong": true,
	"sub": true, "sup": true, "time": true, "u": true, "var": true, "wbr": true,
}

func init() {
	elementMappers = map[string]elementMapper{
		"p":        mapParagraph,
		"a":        mapAnchor,
		"button":   mapButtonElement,
		"input":    mapInput,
		"textarea": mapTextarea,
		"select":   mapSelect,
		"label":    mapLabel,
		"hr":       mapDivider,
		"img":      mapImage,
		"table":    mapTable,
		"ul":       mapList,
		"ol":       mapList,
	}
	for _, tag := range []string{"h1", "h2", "h3", "h4", "h5", "h6"} {
		elementMappers[tag] = mapHeading
	}
	for _, tag := range []string{"div", "span", "section", "article", "main", "header", "footer", "center", "form", "font", "aside", "nav"} {
		elementMappers[tag] = mapContainer
	}
	for _, tag := range []string{"script", "style", "meta", "link", "title", "head", "noscript", "template", "base", "br", "wbr"} {
		elementMappers[tag] = skipElement
	}
	for tag := range inlineTags {
		if _, ok := elementMappers[tag]; !ok {
			elementMappers[tag] = mapPhrasing
		}
	}
}

// mapNodes maps a run of sibling nodes in document order. Text that sits
// between inline elements is kept together as one paragraph.
func mapNodes(ctx *importContext, nodes []*html.Node, depth int) []blocks.Block {
	out := []blocks.Block{}
	var run []*html.Node

	flush := func() {
		if len(run) == 0 {
			return
		}
		if runHasText(run) {
			if content := strings.TrimSpace(renderNodes(run)); content != "" {
				out = append(out, blocks.NewParagraph(content))
			}
		} else {
			for _, n := range run {
				if n.Type == html.ElementNode {
					if b := mapElement(ctx, goquery.NewDocumentFromNode(n).Selection, depth); b != nil {
						out = append(out, b)
					}
				}
			}
		}
		run = nil
	}

	for _, n := range nodes {
		switch n.Type {
		case html.TextNode:
			run = append(run, n)
		case html.ElementNode:
			if inlineTags[n.Data] {
				run = append(run, n)
				continue
			}
			flush()
			if b := mapElement(ctx, goquery.NewDocumentFromNode(n).Selection, depth); b != nil {
				out = append(out, b)
			}
		}
	}
	flush()
	return out
}

func runHasText(run []*html.Node) bool {
	for _, n := range run {
		if n.Type == html.TextNode && !isBlank(n.Data) {
			return true
		}
	}
	return false
}

// mapElement resolves one element, honoring data-block-type hints written by
// the exporter before falling back to the tag table
func mapElement(ctx *importContext, sel *goquery.Selection, depth int) blocks.Block {
	tag := goquery.NodeName(sel)
	if depth > ctx.opts.MaxDepth {
		ctx.warn("nesting deeper than %d levels, <%s> preserved as raw html", ctx.opts.MaxDepth, tag)
		return blocks.NewRawHTML(outerHTML(sel))
	}

	var block blocks.Block
	if t, ok := sel.Attr("data-block-type"); ok {
		block = deriveBlock(ctx, sel, blocks.BlockType(strings.TrimSpace(t)), depth)
	}
	if block == nil {
		fn, ok := elementMappers[tag]
		if !ok {
			return mapUnrecognized(ctx, sel)
		}
		block = fn(ctx, sel, depth)
	}
	if block == nil {
		return nil
	}

	if id, ok := sel.Attr("data-block-id"); ok {
		ctx.adoptID(strings.TrimSpace(id), block.SetID)
	}
	if dataBool(sel, "data-locked") {
		block.Base().Locked = true
	}
	return block
}

func skipElement(_ *importContext, _ *goquery.Selection, _ int) blocks.Block {
	return nil
}

func mapUnrecognized(ctx *importContext, sel *goquery.Selection) blocks.Block {
	ctx.warn("unrecognized element <%s> preserved as raw html", goquery.NodeName(sel))
	return blocks.NewRawHTML(outerHTML(sel))
}

func mapHeading(ctx *importContext, sel *goquery.Selection, _ int) blocks.Block {
	if losesStructure(sel) {
		ctx.warn("heading with embedded content preserved as raw html")
		return blocks.NewRawHTML(outerHTML(sel))
	}

	level, _ := strconv.Atoi(strings.TrimPrefix(goquery.NodeName(sel), "h"))
	h := blocks.NewHeading(level, blockText(sel))
	decls := styleOf(sel)

	h.Color = firstNonEmpty(dataString(sel, "data-color"), decls.color("color"), h.Color)
	h.FontSize = firstPositive(dataInt(sel, "data-font-size"), lengthOrZero(decls, "font-size"), h.FontSize)
	h.FontWeight = firstNonEmpty(dataString(sel, "data-font-weight"), decls.get("font-weight"), h.FontWeight)
	h.TextAlign = textAlign(sel, decls, h.TextAlign)

	applyBaseStyle(sel, decls, &h.BaseBlock)
	return h
}

func mapParagraph(_ *importContext, sel *goquery.Selection, _ int) blocks.Block {
	if !hasContent(sel) {
		return nil
	}
	return paragraphFrom(sel, innerHTML(sel))
}

// mapPhrasing imports a lone inline element such as <strong> as a paragraph
// keeping its markup
func mapPhrasing(_ *importContext, sel *goquery.Selection, _ int) blocks.Block {
	if !hasContent(sel) {
		return nil
	}
	return blocks.NewParagraph(outerHTML(sel))
}

// paragraphFrom builds a paragraph with content and the text styling of sel
func paragraphFrom(sel *goquery.Selection, content string) *blocks.ParagraphBlock {
	p := blocks.NewParagraph(content)
	decls := styleOf(sel)

	p.Color = firstNonEmpty(dataString(sel, "data-color"), decls.color("color"), p.Color)
	p.FontSize = firstPositive(dataInt(sel, "data-font-size"), lengthOrZero(decls, "font-size"), p.FontSize)
	if v, err := strconv.ParseFloat(firstNonEmpty(dataString(sel, "data-line-height"), decls.get("line-height")), 64); err == nil && v > 0 {
		p.LineHeight = v
	}
	p.TextAlign = textAlign(sel, decls, p.TextAlign)

	applyBaseStyle(sel, decls, &p.BaseBlock)
	return p
}

func mapAnchor(ctx *importContext, sel *goquery.Selection, _ int) blocks.Block {
	href, _ := sel.Attr("href")
	href = strings.TrimSpace(href)

	if looksLikeButton(sel) {
		b := buttonFrom(sel, normalizeText(sel.Text()))
		b.Href = href
		return b
	}

	if sel.Children().FilterFunction(func(_ int, c *goquery.Selection) bool {
		return !inlineTags[goquery.NodeName(c)]
	}).Length() > 0 {
		ctx.warn("link wrapping non-text content preserved as raw html")
		return blocks.NewRawHTML(outerHTML(sel))
	}

	text := normalizeText(sel.Text())
	if text == "" && href == "" {
		return nil
	}

	link := blocks.NewHyperlink(text, href)
	decls := styleOf(sel)
	if target, ok := sel.Attr("target"); ok {
		link.Target = target
	}
	link.Color = firstNonEmpty(dataString(sel, "data-color"), decls.color("color"), link.Color)
	link.FontSize = firstPositive(dataInt(sel, "data-font-size"), lengthOrZero(decls, "font-size"), link.FontSize)
	if v, ok := sel.Attr("data-underline"); ok {
		link.Underline = v == "true"
	} else if strings.Contains(decls.get("text-decoration"), "none") {
		link.Underline = false
	}

	applyBaseStyle(sel, decls, &link.BaseBlock)
	return link
}

func looksLikeButton(sel *goquery.Selection) bool {
	if t, _ := sel.Attr("data-block-type"); t == string(blocks.BlockTypeButton) {
		return true
	}
	if role, _ := sel.Attr("role"); role == "button" {
		return true
	}
	class, _ := sel.Attr("class")
	for _, c := range strings.Fields(strings.ToLower(class)) {
		if c == "button" || c == "btn" || strings.HasSuffix(c, "-button") || strings.HasPrefix(c, "btn-") {
			return true
		}
	}
	return false
}

func mapButtonElement(_ *importContext, sel *goquery.Selection, _ int) blocks.Block {
	b := buttonFrom(sel, normalizeText(sel.Text()))
	if t, ok := sel.Attr("type"); ok {
		b.ButtonType = normalizeButtonType(t)
	}
	return b
}

func normalizeButtonType(t string) string {
	switch t = strings.ToLower(strings.TrimSpace(t)); t {
	case "submit", "reset", "button":
		return t
	}
	return blocks.DefaultButtonType
}

// buttonFrom builds a button reading fill, text color and alignment from sel
func buttonFrom(sel *goquery.Selection, text string) *blocks.ButtonBlock {
	b := blocks.NewButton(text)
	decls := styleOf(sel)

	applyBaseStyle(sel, decls, &b.BaseBlock)

	b.Color = firstNonEmpty(dataString(sel, "data-color"), backgroundColor(sel, decls), b.Color)
	b.TextColor = firstNonEmpty(dataString(sel, "data-text-color"), decls.color("color"), b.TextColor)
	b.FontSize = firstPositive(dataInt(sel, "data-font-size"), lengthOrZero(decls, "font-size"), b.FontSize)
	b.Align = firstNonEmpty(dataString(sel, "data-align"), b.Align)
	if t := dataString(sel, "data-button-type"); t != "" {
		b.ButtonType = normalizeButtonType(t)
	}
	if b.BackgroundColor == b.Color {
		b.BackgroundColor = ""
	}
	return b
}

func mapDivider(_ *importContext, sel *goquery.Selection, _ int) blocks.Block {
	d := blocks.NewDivider()
	decls := styleOf(sel)

	thicknessSet, colorSet := false, false
	for _, prop := range []string{"border-top", "border"} {
		v := decls.get(prop)
		if v == "" {
			continue
		}
		width, ok, style, color := parseBorder(v)
		if ok && width > 0 {
			d.Thickness, thicknessSet = width, true
		}
		if style != "" && style != "none" && style != "hidden" {
			d.Style = style
		}
		if color != "" {
			d.Color, colorSet = color, true
		}
		if thicknessSet || colorSet {
			break
		}
	}
	if n, ok := decls.length("border-top-width"); ok && n > 0 {
		d.Thickness, thicknessSet = n, true
	}
	if c := decls.color("border-top-color"); c != "" {
		d.Color, colorSet = c, true
	}
	if s := strings.ToLower(decls.get("border-top-style")); borderStyles[s] && s != "none" {
		d.Style = s
	}
	if !thicknessSet {
		if n, ok := decls.length("height"); ok && n > 0 {
			d.Thickness = n
		} else if v, ok := sel.Attr("size"); ok {
			if n, ok := parseLength(v); ok && n > 0 {
				d.Thickness = n
			}
		}
	}
	if !colorSet {
		d.Color = firstNonEmpty(decls.color("background-color"), attrString(sel, "color"), d.Color)
	}

	d.Thickness = firstPositive(dataInt(sel, "data-thickness"), d.Thickness)
	d.Color = firstNonEmpty(dataString(sel, "data-color"), d.Color)
	d.Style = firstNonEmpty(dataString(sel, "data-style"), d.Style)

	bg := backgroundColor(sel, decls)
	applyBaseStyle(sel, decls, &d.BaseBlock)
	if bg != "" && bg == d.Color {
		d.BackgroundColor = ""
	}
	d.BorderWidth, d.BorderColor = 0, ""
	return d
}

func mapImage(_ *importContext, sel *goquery.Selection, _ int) blocks.Block {
	src := attrString(sel, "src")
	alt, _ := sel.Attr("alt")
	if src == "" && strings.TrimSpace(alt) == "" {
		return nil
	}

	img := blocks.NewImage(src, alt)
	decls := styleOf(sel)

	if n, ok := decls.length("height"); ok {
		img.Height = n
	} else if n, ok := parseLength(attrString(sel, "height")); ok {
		img.Height = n
	}
	img.Align = firstNonEmpty(dataString(sel, "data-align"), attrString(sel, "align"), floatAlign(decls), img.Align)

	applyBaseStyle(sel, decls, &img.BaseBlock)
	return img
}

func floatAlign(decls declarations) string {
	switch f := decls.get("float"); f {
	case "left", "right":
		return f
	}
	return ""
}

func mapList(ctx *importContext, sel *goquery.Selection, _ int) blocks.Block {
	items := sel.ChildrenFiltered("li")
	if items.Length() != sel.Children().Length() || !isBlank(directText(sel)) {
		ctx.warn("list with content outside its items preserved as raw html")
		return blocks.NewRawHTML(outerHTML(sel))
	}
	if losesStructure(items) || items.Find("ul, ol, table").Length() > 0 {
		ctx.warn("list with structured items preserved as raw html")
		return blocks.NewRawHTML(outerHTML(sel))
	}

	texts := []string{}
	items.Each(func(_ int, li *goquery.Selection) {
		texts = append(texts, blockText(li))
	})
	if len(texts) == 0 {
		return nil
	}

	list := blocks.NewList(goquery.NodeName(sel) == "ol", texts)
	applyBaseStyle(sel, styleOf(sel), &list.BaseBlock)
	return list
}

func mapTable(ctx *importContext, sel *goquery.Selection, _ int) blocks.Block {
	if isLayoutTable(sel) {
		ctx.warn("layout table preserved as raw html")
		return blocks.NewRawHTML(outerHTML(sel))
	}

	if hasLooseContent(sel) {
		ctx.warn("table with caption or content outside its rows preserved as raw html")
		return blocks.NewRawHTML(outerHTML(sel))
	}

	rows := ownRows(sel)
	if rows.Length() == 0 {
		if hasContent(sel) {
			ctx.warn("table without rows preserved as raw html")
			return blocks.NewRawHTML(outerHTML(sel))
		}
		return nil
	}

	structured := losesStructure(rows.ChildrenFiltered("td, th"))
	rows.Each(func(_ int, row *goquery.Selection) {
		row.ChildrenFiltered("td, th").Find("*").Each(func(_ int, el *goquery.Selection) {
			if !inlineTags[goquery.NodeName(el)] {
				structured = true
			}
		})
	})
	if structured {
		ctx.warn("table with structured cell content preserved as raw html")
		return blocks.NewRawHTML(outerHTML(sel))
	}

	header := rows.FilterFunction(func(_ int, row *goquery.Selection) bool {
		return row.Parent().Is("thead")
	}).First()
	if header.Length() == 0 {
		header = rows.First()
	}

	headers := cellTexts(header)
	data := [][]string{}
	rows.Each(func(_ int, row *goquery.Selection) {
		if row.Get(0) == header.Get(0) {
			return
		}
		data = append(data, cellTexts(row))
	})

	table := blocks.NewTable(headers, data)
	decls := styleOf(sel)
	if n, ok := parseLength(attrString(sel, "border")); ok && n > 0 {
		table.Bordered = true
	}
	if v, ok := sel.Attr("data-bordered"); ok {
		table.Bordered = v == "true"
	}
	table.Striped = dataBool(sel, "data-striped")
	headerCells := header.ChildrenFiltered("td, th").First()
	table.HeaderBackground = firstNonEmpty(
		dataString(sel, "data-header-background"),
		backgroundColor(header, styleOf(header)),
		backgroundColor(headerCells, styleOf(headerCells)),
	)

	applyBaseStyle(sel, decls, &table.BaseBlock)
	return table
}

// ownRows returns the rows that belong to table itself, not to tables nested
// inside its cells
func ownRows(table *goquery.Selection) *goquery.Selection {
	node := table.Get(0)
	return table.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return tr.Closest("table").Get(0) == node
	})
}

// hasLooseContent reports a caption or anything else a table holds outside
// its row groups, none of which a table block has room for
func hasLooseContent(table *goquery.Selection) bool {
	if !isBlank(directText(table)) {
		return true
	}
	loose := table.Children().Not("thead, tbody, tfoot, tr, colgroup, col")
	if loose.Length() > 0 {
		return true
	}
	return table.ChildrenFiltered("thead, tbody, tfoot").Children().Not("tr").Length() > 0
}

func cellTexts(row *goquery.Selection) []string {
	cells := []string{}
	row.ChildrenFiltered("td, th").Each(func(_ int, cell *goquery.Selection) {
		cells = append(cells, blockText(cell))
	})
	return cells
}

// mapContainer collapses generic wrappers. Text-only wrappers become
// paragraphs, a single child is resolved recursively with the wrapper's layout
// filling unset fields, and anything more ambiguous is kept as raw html.
func mapContainer(ctx *importContext, sel *goquery.Selection, depth int) blocks.Block {
	tag := goquery.NodeName(sel)
	children := sel.Children()
	hasText := !isBlank(directText(sel))

	switch {
	case children.Length() == 0:
		if !hasText {
			return nil
		}
		return paragraphFrom(sel, innerHTML(sel))

	case hasText:
		if onlyInline(children) {
			return paragraphFrom(sel, innerHTML(sel))
		}
		ctx.warn("<%s> mixing text and block content preserved as raw html", tag)
		return blocks.NewRawHTML(outerHTML(sel))

	case children.Length() == 1:
		block := mapElement(ctx, children, depth+1)
		if block != nil {
			inheritBaseStyle(sel, block.Base())
		}
		return block

	default:
		if !hasContent(sel) {
			return nil
		}
		ctx.warn("<%s> with %d child elements preserved as raw html", tag, children.Length())
		return blocks.NewRawHTML(outerHTML(sel))
	}
}

func onlyInline(children *goquery.Selection) bool {
	return children.FilterFunction(func(_ int, c *goquery.Selection) bool {
		return !inlineTags[goquery.NodeName(c)]
	}).Length() == 0
}

func textAlign(sel *goquery.Selection, decls declarations, fallback string) string {
	return firstNonEmpty(dataString(sel, "data-align"), decls.get("text-align"), attrString(sel, "align"), fallback)
}

func attrString(sel *goquery.Selection, name string) string {
	v, _ := sel.Attr(name)
	return strings.TrimSpace(v)
}

func dataString(sel *goquery.Selection, name string) string {
	return attrString(sel, name)
}

func dataInt(sel *goquery.Selection, name string) int {
	n, err := strconv.Atoi(attrString(sel, name))
	if err != nil {
		return 0
	}
	return n
}

func dataBool(sel *goquery.Selection, name string) bool {
	return attrString(sel, name) == "true"
}

func lengthOrZero(decls declarations, prop string) int {
	n, _ := decls.length(prop)
	return n
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
