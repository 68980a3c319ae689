package exporter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sparkeditor/spark/pkg/blocks"
)

const (
	sectionGap        = 16
	fieldIDPrefix     = "spark-field-"
	stripedRowColor   = "#f9fafb"
	tableBorderColor  = "#e5e7eb"
	defaultBorderLine = "solid"
)

// renderSection writes one section. Single column sections hold their
// blocks directly, wider ones wrap each column in a flex child.
func renderSection(sb *strings.Builder, section blocks.Section) {
	attrs := attributes{}
	attrs.addAlways("class", "spark-section")
	attrs.addFlag("data-spark-section", true)
	attrs.add("data-section-id", section.ID)
	attrs.addInt("data-columns", len(section.Blocks))

	if len(section.Blocks) > 1 {
		attrs.addAlways("style", fmt.Sprintf("display:flex;gap:%dpx", sectionGap))
	}

	sb.WriteString("<div" + attrs.String() + ">\n")
	if len(section.Blocks) == 1 {
		renderColumnBlocks(sb, section.Blocks[0])
	} else {
		for _, col := range section.Blocks {
			sb.WriteString(`<div class="spark-column" data-spark-column style="flex:1;min-width:0">` + "\n")
			renderColumnBlocks(sb, col)
			sb.WriteString("</div>\n")
		}
	}
	sb.WriteString("</div>\n")
}

func renderColumnBlocks(sb *strings.Builder, col blocks.Column) {
	for _, b := range col {
		if b == nil {
			continue
		}
		sb.WriteString(RenderBlock(b))
		sb.WriteByte('\n')
	}
}

// RenderBlock returns the markup of a single block
func RenderBlock(b blocks.Block) string {
	switch block := b.(type) {
	case *blocks.HeadingBlock:
		return renderHeading(block)
	case *blocks.ParagraphBlock:
		return renderParagraph(block)
	case *blocks.HyperlinkBlock:
		return renderHyperlink(block)
	case *blocks.TextInputBlock:
		return renderTextInput(block)
	case *blocks.TextareaBlock:
		return renderTextarea(block)
	case *blocks.DropdownBlock:
		return renderDropdown(block)
	case *blocks.SingleCheckboxBlock:
		return renderCheckbox(block)
	case *blocks.DatePickerBlock:
		return renderDatePicker(block)
	case *blocks.DividerBlock:
		return renderDivider(block)
	case *blocks.ImageBlock:
		return renderImage(block)
	case *blocks.TableBlock:
		return renderTable(block)
	case *blocks.ListBlock:
		return renderList(block)
	case *blocks.ButtonBlock:
		return renderButton(block)
	case *blocks.RawHTMLBlock:
		return renderRawHTML(block)
	default:
		return renderUnknown(b)
	}
}

// identity returns the attributes every block element starts with
func identity(b *blocks.BaseBlock) attributes {
	attrs := attributes{}
	attrs.add("data-block-type", string(b.Type))
	attrs.add("data-block-id", b.ID)
	if b.Locked {
		attrs.addBool("data-locked", true)
	}
	return attrs
}

// baseStyles appends the shared layout fields as inline CSS
func baseStyles(b *blocks.BaseBlock, s *styles, withBorder bool) {
	if b.Width > 0 && b.Width < blocks.DefaultWidth {
		s.set("width", strconv.Itoa(b.Width)+"%")
	}
	if b.MarginTop != 0 || b.MarginRight != 0 || b.MarginBottom != 0 || b.MarginLeft != 0 {
		s.set("margin", fmt.Sprintf("%dpx %dpx %dpx %dpx", b.MarginTop, b.MarginRight, b.MarginBottom, b.MarginLeft))
	}
	if b.PaddingX != 0 || b.PaddingY != 0 {
		s.set("padding", fmt.Sprintf("%dpx %dpx", b.PaddingY, b.PaddingX))
	}
	s.set("background-color", b.BackgroundColor)
	if withBorder {
		if b.BorderWidth > 0 {
			s.set("border", strings.TrimSpace(fmt.Sprintf("%dpx %s %s", b.BorderWidth, defaultBorderLine, b.BorderColor)))
		} else if b.BorderColor != "" {
			s.set("border-color", b.BorderColor)
		}
	}
	if b.BorderRadius > 0 {
		s.setPx("border-radius", b.BorderRadius)
	}
}

func element(tag string, attrs attributes, s styles, content string) string {
	if len(s) > 0 {
		attrs.addAlways("style", s.String())
	}
	return "<" + tag + attrs.String() + ">" + content + "</" + tag + ">"
}

func voidElement(tag string, attrs attributes, s styles) string {
	if len(s) > 0 {
		attrs.addAlways("style", s.String())
	}
	return "<" + tag + attrs.String() + ">"
}

func renderHeading(h *blocks.HeadingBlock) string {
	level := h.Level
	if level < 1 || level > 6 {
		level = 1
	}
	attrs := identity(&h.BaseBlock)
	attrs.addInt("data-level", level)
	attrs.add("data-color", h.Color)
	if h.FontSize > 0 {
		attrs.addInt("data-font-size", h.FontSize)
	}
	attrs.add("data-font-weight", h.FontWeight)
	attrs.add("data-align", h.TextAlign)

	s := styles{}
	s.set("color", h.Color)
	if h.FontSize > 0 {
		s.setPx("font-size", h.FontSize)
	}
	s.set("font-weight", h.FontWeight)
	s.set("text-align", h.TextAlign)
	baseStyles(&h.BaseBlock, &s, true)

	return element("h"+strconv.Itoa(level), attrs, s, escapeContent(h.Text))
}

func renderParagraph(p *blocks.ParagraphBlock) string {
	attrs := identity(&p.BaseBlock)
	attrs.add("data-color", p.Color)
	if p.FontSize > 0 {
		attrs.addInt("data-font-size", p.FontSize)
	}
	lineHeight := ""
	if p.LineHeight > 0 {
		lineHeight = strconv.FormatFloat(p.LineHeight, 'f', -1, 64)
	}
	attrs.add("data-line-height", lineHeight)
	attrs.add("data-align", p.TextAlign)

	s := styles{}
	s.set("color", p.Color)
	if p.FontSize > 0 {
		s.setPx("font-size", p.FontSize)
	}
	s.set("line-height", lineHeight)
	s.set("text-align", p.TextAlign)
	baseStyles(&p.BaseBlock, &s, true)

	return element("p", attrs, s, p.Content)
}

func renderHyperlink(l *blocks.HyperlinkBlock) string {
	attrs := identity(&l.BaseBlock)
	attrs.add("href", l.Href)
	attrs.add("target", l.Target)
	if l.Target == "_blank" {
		attrs.addAlways("rel", "noopener noreferrer")
	}
	attrs.add("data-color", l.Color)
	if l.FontSize > 0 {
		attrs.addInt("data-font-size", l.FontSize)
	}
	attrs.addBool("data-underline", l.Underline)

	s := styles{}
	s.set("color", l.Color)
	if l.FontSize > 0 {
		s.setPx("font-size", l.FontSize)
	}
	if l.Underline {
		s.set("text-decoration", "underline")
	} else {
		s.set("text-decoration", "none")
	}
	baseStyles(&l.BaseBlock, &s, true)

	return element("a", attrs, s, escapeContent(l.Text))
}

// fieldID is the element id tying a control to its label
func fieldID(b *blocks.BaseBlock) string {
	return fieldIDPrefix + b.ID
}

// field wraps a form control and its label in the shared field container.
// Checkboxes put the label after the control.
func field(b *blocks.BaseBlock, label, control string, labelAfter bool) string {
	attrs := attributes{}
	attrs.addAlways("class", "spark-field")
	attrs = append(attrs, identity(b)...)

	s := styles{}
	baseStyles(b, &s, true)

	labelMarkup := ""
	if label != "" {
		labelAttrs := attributes{}
		labelAttrs.addAlways("for", fieldID(b))
		labelMarkup = "<label" + labelAttrs.String() + ">" + escapeContent(label) + "</label>"
	}

	content := labelMarkup + control
	if labelAfter {
		content = control + labelMarkup
	}
	return element("div", attrs, s, content)
}

func controlAttrs(b *blocks.BaseBlock, name string, required bool) attributes {
	attrs := attributes{}
	attrs.addAlways("id", fieldID(b))
	attrs.add("name", name)
	attrs.addFlag("required", required)
	return attrs
}

func renderTextInput(t *blocks.TextInputBlock) string {
	inputType := t.InputType
	if inputType == "" {
		inputType = blocks.DefaultInputType
	}
	attrs := attributes{{key: "type", value: inputType}}
	attrs = append(attrs, controlAttrs(&t.BaseBlock, t.Name, t.Required)...)
	attrs.add("placeholder", t.Placeholder)

	return field(&t.BaseBlock, t.Label, voidElement("input", attrs, nil), false)
}

func renderTextarea(t *blocks.TextareaBlock) string {
	attrs := controlAttrs(&t.BaseBlock, t.Name, t.Required)
	if t.Rows > 0 {
		attrs.addInt("rows", t.Rows)
	}
	attrs.add("placeholder", t.Placeholder)

	value := escapeContent(t.Value)
	// the parser drops one newline directly after <textarea>
	if strings.HasPrefix(value, "\n") {
		value = "\n" + value
	}
	return field(&t.BaseBlock, t.Label, element("textarea", attrs, nil, value), false)
}

func renderDropdown(d *blocks.DropdownBlock) string {
	var options strings.Builder
	for _, opt := range d.Options {
		optAttrs := attributes{}
		optAttrs.addAlways("value", opt.Value)
		options.WriteString("<option" + optAttrs.String() + ">" + escapeContent(opt.Label) + "</option>")
	}
	attrs := controlAttrs(&d.BaseBlock, d.Name, d.Required)
	return field(&d.BaseBlock, d.Label, element("select", attrs, nil, options.String()), false)
}

func renderCheckbox(c *blocks.SingleCheckboxBlock) string {
	attrs := attributes{{key: "type", value: "checkbox"}}
	attrs = append(attrs, controlAttrs(&c.BaseBlock, c.Name, c.Required)...)
	attrs.addFlag("checked", c.Checked)

	return field(&c.BaseBlock, c.Label, voidElement("input", attrs, nil), true)
}

func renderDatePicker(d *blocks.DatePickerBlock) string {
	inputType := "date"
	if d.IncludeTime {
		inputType = "datetime-local"
	}
	attrs := attributes{{key: "type", value: inputType}}
	attrs = append(attrs, controlAttrs(&d.BaseBlock, d.Name, d.Required)...)

	return field(&d.BaseBlock, d.Label, voidElement("input", attrs, nil), false)
}

func renderDivider(d *blocks.DividerBlock) string {
	thickness := d.Thickness
	if thickness <= 0 {
		thickness = 1
	}
	style := d.Style
	if style == "" {
		style = blocks.DefaultDividerStyle
	}
	color := d.Color
	if color == "" {
		color = blocks.DefaultDividerColor
	}

	attrs := identity(&d.BaseBlock)
	attrs.addInt("data-thickness", thickness)
	attrs.add("data-color", color)
	attrs.add("data-style", style)

	s := styles{}
	s.set("border", "none")
	s.set("border-top", fmt.Sprintf("%dpx %s %s", thickness, style, color))
	baseStyles(&d.BaseBlock, &s, false)

	return voidElement("hr", attrs, s)
}

func renderImage(img *blocks.ImageBlock) string {
	attrs := identity(&img.BaseBlock)
	attrs.addAlways("src", img.Src)
	attrs.addAlways("alt", img.Alt)
	attrs.add("data-align", img.Align)

	s := styles{}
	s.set("display", "block")
	s.set("max-width", "100%")
	if img.Height > 0 {
		s.setPx("height", img.Height)
	}
	b := &img.BaseBlock
	if b.MarginLeft == 0 && b.MarginRight == 0 {
		switch img.Align {
		case "center":
			s.set("margin-left", "auto")
			s.set("margin-right", "auto")
		case "right":
			s.set("margin-left", "auto")
		}
	}
	baseStyles(b, &s, true)

	return voidElement("img", attrs, s)
}

func renderTable(t *blocks.TableBlock) string {
	attrs := identity(&t.BaseBlock)
	attrs.addBool("data-striped", t.Striped)
	attrs.addBool("data-bordered", t.Bordered)
	attrs.add("data-header-background", t.HeaderBackground)

	s := styles{}
	s.set("border-collapse", "collapse")
	baseStyles(&t.BaseBlock, &s, true)

	cellStyle := styles{}
	cellStyle.set("padding", "8px")
	if t.Bordered {
		cellStyle.set("border", "1px solid "+tableBorderColor)
	}

	var sb strings.Builder
	if len(t.Headers) > 0 {
		headStyle := append(styles{}, cellStyle...)
		headStyle.set("background-color", t.HeaderBackground)
		headStyle.set("text-align", "left")
		sb.WriteString("<thead><tr>")
		for _, h := range t.Headers {
			sb.WriteString(element("th", nil, headStyle, escapeContent(h)))
		}
		sb.WriteString("</tr></thead>")
	}
	sb.WriteString("<tbody>")
	for i, row := range t.Rows {
		rowStyle := styles{}
		if t.Striped && i%2 == 1 {
			rowStyle.set("background-color", stripedRowColor)
		}
		var cells strings.Builder
		for _, cell := range row {
			cells.WriteString(element("td", nil, cellStyle, escapeContent(cell)))
		}
		sb.WriteString(element("tr", nil, rowStyle, cells.String()))
	}
	sb.WriteString("</tbody>")

	return element("table", attrs, s, sb.String())
}

func renderList(l *blocks.ListBlock) string {
	tag := "ul"
	if l.Ordered {
		tag = "ol"
	}
	attrs := identity(&l.BaseBlock)
	s := styles{}
	baseStyles(&l.BaseBlock, &s, true)

	var items strings.Builder
	for _, item := range l.Items {
		items.WriteString("<li>" + escapeContent(item) + "</li>")
	}
	return element(tag, attrs, s, items.String())
}

func renderButton(b *blocks.ButtonBlock) string {
	buttonType := b.ButtonType
	if buttonType == "" {
		buttonType = blocks.DefaultButtonType
	}

	attrs := attributes{}
	attrs.addAlways("class", "spark-button")
	attrs = append(attrs, identity(&b.BaseBlock)...)
	attrs.add("data-color", b.Color)
	attrs.add("data-text-color", b.TextColor)
	if b.FontSize > 0 {
		attrs.addInt("data-font-size", b.FontSize)
	}
	attrs.add("data-align", b.Align)
	attrs.addAlways("data-button-type", buttonType)

	s := styles{}
	s.set("display", "inline-block")
	s.set("background-color", b.Color)
	s.set("color", b.TextColor)
	if b.FontSize > 0 {
		s.setPx("font-size", b.FontSize)
	}
	s.set("text-decoration", "none")
	s.set("cursor", "pointer")
	baseStyles(&b.BaseBlock, &s, true)
	if b.BorderWidth == 0 && b.BorderColor == "" {
		s.set("border", "none")
	}

	if b.Href != "" {
		linkAttrs := attributes{{key: "href", value: b.Href}, {key: "role", value: "button"}}
		return element("a", append(linkAttrs, attrs...), s, escapeContent(b.Text))
	}
	typeAttr := attributes{{key: "type", value: buttonType}}
	return element("button", append(typeAttr, attrs...), s, escapeContent(b.Text))
}

// renderRawHTML emits the payload untouched inside a typed wrapper
func renderRawHTML(r *blocks.RawHTMLBlock) string {
	return "<div" + identity(&r.BaseBlock).String() + ">" + r.HTML + "</div>"
}

func renderUnknown(b blocks.Block) string {
	attrs := attributes{}
	attrs.addAlways("class", "spark-unknown-block")
	if base := b.Base(); base != nil {
		attrs.add("data-block-type", string(base.Type))
		attrs.add("data-block-id", base.ID)
	}
	return "<div" + attrs.String() + "></div>"
}
