package importer

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	sectionSelector = "[data-spark-section], .spark-section"
	columnSelector  = "[data-spark-column], .spark-column"
	markerSelector  = sectionSelector + ", " + columnSelector
)

// layoutTableMinWidth is the declared width above which a table is treated
// as a fixed width email layout
const layoutTableMinWidth = 400

// wrapperTags may be unwrapped while looking for the layout root of an email
var wrapperTags = map[string]bool{
	"div": true, "center": true, "span": true, "section": true,
	"article": true, "main": true, "form": true,
}

// classify picks the layout strategy for a parsed body. Explicit section or
// column markers win; otherwise a top-level table together with any layout
// table means a table based email; everything else is generic.
func classify(body *goquery.Selection) Layout {
	if body.Find(markerSelector).Length() > 0 {
		return LayoutSection
	}

	root := layoutRoot(body)
	if root.ChildrenFiltered("table").Length() == 0 {
		return LayoutGeneric
	}

	layoutTables := body.Find("table").FilterFunction(func(_ int, t *goquery.Selection) bool {
		return isLayoutTable(t)
	})
	if layoutTables.Length() > 0 {
		return LayoutTableEmail
	}
	return LayoutGeneric
}

// layoutRoot descends through wrappers that hold exactly one element and no
// text of their own, the usual <center> or <div class="wrapper"> around an
// email's outer table.
func layoutRoot(body *goquery.Selection) *goquery.Selection {
	root := body
	for {
		if root.ChildrenFiltered("table").Length() > 0 {
			return root
		}
		children := root.Children()
		if children.Length() != 1 || !isBlank(directText(root)) {
			return root
		}
		if !wrapperTags[goquery.NodeName(children)] {
			return root
		}
		root = children
	}
}

// isLayoutTable recognizes tables used for positioning rather than data
func isLayoutTable(table *goquery.Selection) bool {
	if role, _ := table.Attr("role"); strings.EqualFold(strings.TrimSpace(role), "presentation") {
		return true
	}
	if _, ok := table.Attr("cellpadding"); ok {
		return true
	}
	return declaredWidth(table, styleOf(table)) > layoutTableMinWidth
}
