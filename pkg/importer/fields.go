package importer

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sparkeditor/spark/pkg/blocks"
)

const controlSelector = "input, select, textarea"

var textInputTypes = map[string]bool{
	"text": true, "email": true, "number": true, "tel": true,
	"password": true, "url": true, "search": true,
}

var fieldBlockTypes = map[blocks.BlockType]bool{
	blocks.BlockTypeTextInput:      true,
	blocks.BlockTypeTextarea:       true,
	blocks.BlockTypeDropdown:       true,
	blocks.BlockTypeSingleCheckbox: true,
	blocks.BlockTypeDatePicker:     true,
}

// deriveBlock rebuilds blocks whose exported markup is a wrapper rather than
// a single element: form fields and raw html. Other types return nil and are
// read by the tag mappers, which honor the data-* attributes themselves.
func deriveBlock(ctx *importContext, sel *goquery.Selection, t blocks.BlockType, depth int) blocks.Block {
	switch {
	case t == blocks.BlockTypeRawHTML:
		return blocks.NewRawHTML(innerHTML(sel))

	case fieldBlockTypes[t]:
		if sel.Is(controlSelector) {
			return nil
		}
		control := sel.Find(controlSelector).First()
		if control.Length() == 0 {
			return nil
		}
		fn := elementMappers[goquery.NodeName(control)]
		block := fn(ctx, control, depth+1)
		if block == nil {
			return nil
		}
		if label := sel.Find("label").First(); label.Length() > 0 {
			setFieldLabel(block, normalizeText(label.Text()))
		}
		applyBaseStyle(sel, styleOf(sel), block.Base())
		return block
	}
	return nil
}

// setFieldLabel sets the visible label of a form field block
func setFieldLabel(block blocks.Block, label string) {
	switch b := block.(type) {
	case *blocks.TextInputBlock:
		b.Label = label
	case *blocks.TextareaBlock:
		b.Label = label
	case *blocks.DropdownBlock:
		b.Label = label
	case *blocks.SingleCheckboxBlock:
		b.Label = label
	case *blocks.DatePickerBlock:
		b.Label = label
	}
}

// mappableControl reports whether a control element imports as a block
func mappableControl(sel *goquery.Selection) bool {
	if !sel.Is(controlSelector) {
		return false
	}
	if !sel.Is("input") {
		return true
	}
	t := strings.ToLower(attrString(sel, "type"))
	return t != "hidden" && t != "radio"
}

func mapInput(ctx *importContext, sel *goquery.Selection, _ int) blocks.Block {
	inputType := strings.ToLower(attrString(sel, "type"))
	if inputType == "" {
		inputType = blocks.DefaultInputType
	}
	name := attrString(sel, "name")
	required := hasAttr(sel, "required")
	decls := styleOf(sel)

	var block blocks.Block
	switch {
	case inputType == "hidden":
		return nil

	case inputType == "radio":
		ctx.warn("radio input %q skipped, radio groups are not supported", name)
		return nil

	case inputType == "checkbox":
		cb := blocks.NewSingleCheckbox(name)
		cb.Checked = hasAttr(sel, "checked")
		cb.Required = required
		cb.Label = ctx.claimLabel(attrString(sel, "id"))
		block = cb

	case inputType == "date" || inputType == "datetime-local":
		dp := blocks.NewDatePicker(name)
		dp.IncludeTime = inputType == "datetime-local"
		dp.Required = required
		dp.Label = ctx.claimLabel(attrString(sel, "id"))
		block = dp

	case inputType == "submit" || inputType == "button" || inputType == "reset":
		text := attrString(sel, "value")
		if text == "" {
			text = strings.ToUpper(inputType[:1]) + inputType[1:]
		}
		b := buttonFrom(sel, text)
		b.ButtonType = inputType
		return b

	case textInputTypes[inputType]:
		ti := blocks.NewTextInput(name)
		ti.InputType = inputType
		ti.Placeholder = attrString(sel, "placeholder")
		ti.Required = required
		ti.Label = ctx.claimLabel(attrString(sel, "id"))
		block = ti

	default:
		ctx.warn("unsupported input type %q preserved as raw html", inputType)
		return blocks.NewRawHTML(outerHTML(sel))
	}

	applyBaseStyle(sel, decls, block.Base())
	return block
}

func mapTextarea(ctx *importContext, sel *goquery.Selection, _ int) blocks.Block {
	ta := blocks.NewTextarea(attrString(sel, "name"))
	ta.Placeholder = attrString(sel, "placeholder")
	ta.Value = sel.Text()
	ta.Required = hasAttr(sel, "required")
	if rows, err := strconv.Atoi(attrString(sel, "rows")); err == nil && rows > 0 {
		ta.Rows = rows
	}
	ta.Label = ctx.claimLabel(attrString(sel, "id"))

	applyBaseStyle(sel, styleOf(sel), &ta.BaseBlock)
	return ta
}

func mapSelect(ctx *importContext, sel *goquery.Selection, _ int) blocks.Block {
	dd := blocks.NewDropdown(attrString(sel, "name"))
	sel.Find("option").Each(func(_ int, opt *goquery.Selection) {
		label := firstNonEmpty(normalizeText(opt.Text()), attrString(opt, "label"))
		value, ok := opt.Attr("value")
		if !ok {
			value = label
		}
		dd.Options = append(dd.Options, blocks.DropdownOption{Label: label, Value: value})
	})
	dd.Required = hasAttr(sel, "required")
	dd.Label = ctx.claimLabel(attrString(sel, "id"))

	applyBaseStyle(sel, styleOf(sel), &dd.BaseBlock)
	return dd
}

// mapLabel attaches a label to the control it describes. A label wrapping one
// control imports as that control; a label pointing at a control elsewhere is
// emitted provisionally and dropped once the control claims it.
func mapLabel(ctx *importContext, sel *goquery.Selection, depth int) blocks.Block {
	controls := sel.Find(controlSelector).FilterFunction(func(_ int, c *goquery.Selection) bool {
		return mappableControl(c)
	})
	switch controls.Length() {
	case 0:
	case 1:
		block := mapElement(ctx, controls, depth+1)
		if block == nil {
			return nil
		}
		setFieldLabel(block, textExcluding(sel, "select, textarea"))
		inheritBaseStyle(sel, block.Base())
		return block
	default:
		ctx.warn("label wrapping %d controls preserved as raw html", controls.Length())
		return blocks.NewRawHTML(outerHTML(sel))
	}

	if !hasContent(sel) {
		return nil
	}

	forID := attrString(sel, "for")
	if forID == "" {
		return paragraphFrom(sel, innerHTML(sel))
	}
	if ctx.claimedLabels[forID] {
		return nil
	}

	target := ctx.root.Find(controlSelector).FilterFunction(func(_ int, c *goquery.Selection) bool {
		return attrString(c, "id") == forID
	}).First()
	p := paragraphFrom(sel, innerHTML(sel))
	if target.Length() > 0 && mappableControl(target) {
		ctx.pendingLabels[forID] = pendingLabel{text: normalizeText(sel.Text()), block: p}
	}
	return p
}

func hasAttr(sel *goquery.Selection, name string) bool {
	_, ok := sel.Attr(name)
	return ok
}
