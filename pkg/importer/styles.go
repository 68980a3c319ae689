package importer

import (
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"

	"github.com/sparkeditor/spark/pkg/blocks"
)

// rootFontSize converts em and rem lengths to pixels
const rootFontSize = 16

// declarations maps lowercased CSS property names to their values
type declarations map[string]string

var importantSuffix = regexp.MustCompile(`(?i)\s*!\s*important\s*$`)

// parseInlineStyle reads the declarations of a style attribute. Later
// declarations of the same property win, as in the cascade.
func parseInlineStyle(style string) declarations {
	decls := declarations{}
	if strings.TrimSpace(style) == "" {
		return decls
	}

	p := css.NewParser(parse.NewInputString(style), true)
	for {
		gt, _, data := p.Next()
		if gt == css.ErrorGrammar {
			if p.Err() == io.EOF {
				break
			}
			// malformed declaration, skip to the next one
			continue
		}
		if gt != css.DeclarationGrammar {
			continue
		}
		prop := strings.ToLower(strings.TrimSpace(string(data)))
		if prop == "" {
			continue
		}
		decls[prop] = declarationValue(p.Values())
	}
	return decls
}

func declarationValue(tokens []css.Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		if t.TokenType == css.WhitespaceToken {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			continue
		}
		sb.Write(t.Data)
	}
	return strings.TrimSpace(importantSuffix.ReplaceAllString(sb.String(), ""))
}

// styleOf parses the style attribute of sel
func styleOf(sel *goquery.Selection) declarations {
	style, _ := sel.Attr("style")
	return parseInlineStyle(style)
}

func (d declarations) get(prop string) string {
	return strings.TrimSpace(d[prop])
}

// length returns a declaration converted to whole pixels
func (d declarations) length(prop string) (int, bool) {
	return parseLength(d.get(prop))
}

// color returns a declaration when it looks like a color value
func (d declarations) color(prop string) string {
	return findColor(d.get(prop))
}

var lengthPattern = regexp.MustCompile(`^(-?\d*\.?\d+)(px|em|rem|pt)?$`)

// parseLength converts px, unitless, em, rem and pt values to whole pixels
func parseLength(v string) (int, bool) {
	m := lengthPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(v)))
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	switch m[2] {
	case "em", "rem":
		n *= rootFontSize
	case "pt":
		n = n * 4 / 3
	}
	return int(math.Round(n)), true
}

var percentPattern = regexp.MustCompile(`^(\d*\.?\d+)\s*%$`)

// parsePercent reads a percentage in 1..100
func parsePercent(v string) (int, bool) {
	m := percentPattern.FindStringSubmatch(strings.TrimSpace(v))
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	p := int(math.Round(n))
	if p < 1 || p > 100 {
		return 0, false
	}
	return p, true
}

var leadingNumberPattern = regexp.MustCompile(`^\s*(\d*\.?\d+)`)

// leadingNumber reads the number a value starts with, whatever its unit
func leadingNumber(v string) (float64, bool) {
	m := leadingNumberPattern.FindStringSubmatch(v)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(m[1], 64)
	return n, err == nil
}

var colorFunctionPattern = regexp.MustCompile(`(?i)#[0-9a-f]{3,8}\b|(?:rgba?|hsla?)\([^)]*\)`)

var namedColors = map[string]bool{
	"black": true, "white": true, "red": true, "green": true, "blue": true,
	"yellow": true, "orange": true, "purple": true, "gray": true, "grey": true,
	"silver": true, "maroon": true, "navy": true, "teal": true, "olive": true,
	"lime": true, "aqua": true, "fuchsia": true, "pink": true, "brown": true,
	"transparent": true,
}

// findColor extracts the first color found in a value such as a background
// or border shorthand
func findColor(v string) string {
	if v == "" {
		return ""
	}
	if m := colorFunctionPattern.FindString(v); m != "" {
		return m
	}
	for _, field := range strings.Fields(strings.ToLower(v)) {
		if namedColors[field] {
			return field
		}
	}
	return ""
}

var borderStyles = map[string]bool{
	"none": true, "hidden": true, "dotted": true, "dashed": true, "solid": true,
	"double": true, "groove": true, "ridge": true, "inset": true, "outset": true,
}

// parseBorder splits a border shorthand into width, style and color. ok is
// false for each part not present.
func parseBorder(v string) (width int, widthOK bool, style, color string) {
	color = findColor(v)
	for _, field := range strings.Fields(colorFunctionPattern.ReplaceAllString(v, " ")) {
		lower := strings.ToLower(field)
		if borderStyles[lower] {
			style = lower
			continue
		}
		if n, ok := parseLength(lower); ok && !widthOK {
			width, widthOK = n, true
		}
	}
	if style == "none" || style == "hidden" {
		width, widthOK = 0, true
	}
	return width, widthOK, style, color
}

// parseBox expands a 1-4 value margin or padding shorthand to top, right,
// bottom, left
func parseBox(v string) (box [4]int, ok bool) {
	fields := strings.Fields(v)
	vals := make([]int, 0, len(fields))
	for _, f := range fields {
		n, ok := parseLength(f)
		if !ok {
			if strings.EqualFold(f, "auto") {
				n = 0
			} else {
				return box, false
			}
		}
		vals = append(vals, n)
	}
	switch len(vals) {
	case 1:
		return [4]int{vals[0], vals[0], vals[0], vals[0]}, true
	case 2:
		return [4]int{vals[0], vals[1], vals[0], vals[1]}, true
	case 3:
		return [4]int{vals[0], vals[1], vals[2], vals[1]}, true
	case 4:
		return [4]int{vals[0], vals[1], vals[2], vals[3]}, true
	}
	return box, false
}

// declaredWidth reads the numeric width from the width attribute or style,
// whichever is larger
func declaredWidth(sel *goquery.Selection, decls declarations) float64 {
	var width float64
	if v, ok := sel.Attr("width"); ok {
		if n, ok := leadingNumber(v); ok {
			width = n
		}
	}
	if n, ok := leadingNumber(decls.get("width")); ok && n > width {
		width = n
	}
	return width
}

// applyBaseStyle copies the recognized layout properties of an element onto
// base. Fields the element does not declare keep their current values.
func applyBaseStyle(sel *goquery.Selection, decls declarations, base *blocks.BaseBlock) {
	if c := backgroundColor(sel, decls); c != "" {
		base.BackgroundColor = c
	}

	if v := decls.get("border"); v != "" {
		width, ok, _, color := parseBorder(v)
		if ok {
			base.BorderWidth = width
		}
		if color != "" {
			base.BorderColor = color
		}
	} else if v, ok := sel.Attr("border"); ok && !sel.Is("table") {
		if n, ok := parseLength(v); ok {
			base.BorderWidth = n
		}
	}
	if n, ok := decls.length("border-width"); ok {
		base.BorderWidth = n
	}
	if c := decls.color("border-color"); c != "" {
		base.BorderColor = c
	}
	if v := decls.get("border-radius"); v != "" {
		if n, ok := parseLength(strings.Fields(v)[0]); ok {
			base.BorderRadius = n
		}
	}

	if box, ok := parseBox(decls.get("margin")); ok {
		base.MarginTop, base.MarginRight, base.MarginBottom, base.MarginLeft = box[0], box[1], box[2], box[3]
	}
	if n, ok := decls.length("margin-top"); ok {
		base.MarginTop = n
	}
	if n, ok := decls.length("margin-right"); ok {
		base.MarginRight = n
	}
	if n, ok := decls.length("margin-bottom"); ok {
		base.MarginBottom = n
	}
	if n, ok := decls.length("margin-left"); ok {
		base.MarginLeft = n
	}

	if box, ok := parseBox(decls.get("padding")); ok {
		base.PaddingY, base.PaddingX = box[0], box[3]
	}
	if n, ok := decls.length("padding-bottom"); ok {
		base.PaddingY = n
	}
	if n, ok := decls.length("padding-top"); ok {
		base.PaddingY = n
	}
	if n, ok := decls.length("padding-right"); ok {
		base.PaddingX = n
	}
	if n, ok := decls.length("padding-left"); ok {
		base.PaddingX = n
	}

	if n, ok := elementWidthPercent(sel, decls); ok {
		base.Width = n
	}
}

func backgroundColor(sel *goquery.Selection, decls declarations) string {
	if c := decls.color("background-color"); c != "" {
		return c
	}
	if c := decls.color("background"); c != "" {
		return c
	}
	if v, ok := sel.Attr("bgcolor"); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func elementWidthPercent(sel *goquery.Selection, decls declarations) (int, bool) {
	if n, ok := parsePercent(decls.get("width")); ok {
		return n, true
	}
	if v, ok := sel.Attr("width"); ok {
		return parsePercent(v)
	}
	return 0, false
}

// inheritBaseStyle fills the fields of child that are still at their zero or
// default value with the layout properties declared on a collapsed wrapper
func inheritBaseStyle(wrapper *goquery.Selection, child *blocks.BaseBlock) {
	var w blocks.BaseBlock
	applyBaseStyle(wrapper, styleOf(wrapper), &w)

	fillInt := func(dst *int, v int) {
		if *dst == 0 && v != 0 {
			*dst = v
		}
	}
	fillString := func(dst *string, v string) {
		if *dst == "" && v != "" {
			*dst = v
		}
	}

	fillInt(&child.MarginTop, w.MarginTop)
	fillInt(&child.MarginRight, w.MarginRight)
	fillInt(&child.MarginBottom, w.MarginBottom)
	fillInt(&child.MarginLeft, w.MarginLeft)
	fillInt(&child.PaddingX, w.PaddingX)
	fillInt(&child.PaddingY, w.PaddingY)
	fillInt(&child.BorderWidth, w.BorderWidth)
	fillInt(&child.BorderRadius, w.BorderRadius)
	fillString(&child.BackgroundColor, w.BackgroundColor)
	fillString(&child.BorderColor, w.BorderColor)
	if child.Width == blocks.DefaultWidth && w.Width > 0 {
		child.Width = w.Width
	}
}
