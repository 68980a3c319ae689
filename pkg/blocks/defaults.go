package blocks

import (
	"github.com/google/uuid"
)

// Default style values applied when the source markup does not specify them
const (
	DefaultWidth           = 100
	DefaultHeadingColor    = "#111827"
	DefaultHeadingWeight   = "bold"
	DefaultTextColor       = "#374151"
	DefaultFontSize        = 16
	DefaultLineHeight      = 1.6
	DefaultTextAlign       = "left"
	DefaultLinkColor       = "#2563eb"
	DefaultButtonColor     = "#2563eb"
	DefaultButtonTextColor = "#ffffff"
	DefaultDividerColor    = "#e5e7eb"
	DefaultDividerStyle    = "solid"
	DefaultTextareaRows    = 4
	DefaultInputType       = "text"
	DefaultButtonType      = "button"
)

var headingFontSizes = map[int]int{1: 32, 2: 26, 3: 22, 4: 18, 5: 16, 6: 14}

// NewID returns a fresh globally unique block or section id
func NewID() string {
	return uuid.New().String()
}

// HeadingFontSize returns the default font size for a heading level
func HeadingFontSize(level int) int {
	if size, ok := headingFontSizes[level]; ok {
		return size
	}
	return DefaultFontSize
}

func newBase(t BlockType) BaseBlock {
	return BaseBlock{
		ID:    NewID(),
		Type:  t,
		Width: DefaultWidth,
	}
}

func NewHeading(level int, text string) *HeadingBlock {
	if level < 1 || level > 6 {
		level = 1
	}
	return &HeadingBlock{
		BaseBlock:  newBase(BlockTypeHeading),
		Level:      level,
		Text:       text,
		Color:      DefaultHeadingColor,
		FontSize:   HeadingFontSize(level),
		FontWeight: DefaultHeadingWeight,
		TextAlign:  DefaultTextAlign,
	}
}

func NewParagraph(content string) *ParagraphBlock {
	return &ParagraphBlock{
		BaseBlock:  newBase(BlockTypeParagraph),
		Content:    content,
		Color:      DefaultTextColor,
		FontSize:   DefaultFontSize,
		LineHeight: DefaultLineHeight,
		TextAlign:  DefaultTextAlign,
	}
}

func NewHyperlink(text, href string) *HyperlinkBlock {
	return &HyperlinkBlock{
		BaseBlock: newBase(BlockTypeHyperlink),
		Text:      text,
		Href:      href,
		Color:     DefaultLinkColor,
		FontSize:  DefaultFontSize,
		Underline: true,
	}
}

func NewTextInput(name string) *TextInputBlock {
	return &TextInputBlock{
		BaseBlock: newBase(BlockTypeTextInput),
		Name:      name,
		InputType: DefaultInputType,
	}
}

func NewTextarea(name string) *TextareaBlock {
	return &TextareaBlock{
		BaseBlock: newBase(BlockTypeTextarea),
		Name:      name,
		Rows:      DefaultTextareaRows,
	}
}

func NewDropdown(name string) *DropdownBlock {
	return &DropdownBlock{
		BaseBlock: newBase(BlockTypeDropdown),
		Name:      name,
		Options:   []DropdownOption{},
	}
}

func NewSingleCheckbox(name string) *SingleCheckboxBlock {
	return &SingleCheckboxBlock{
		BaseBlock: newBase(BlockTypeSingleCheckbox),
		Name:      name,
	}
}

func NewDatePicker(name string) *DatePickerBlock {
	return &DatePickerBlock{
		BaseBlock: newBase(BlockTypeDatePicker),
		Name:      name,
	}
}

func NewDivider() *DividerBlock {
	return &DividerBlock{
		BaseBlock: newBase(BlockTypeDivider),
		Thickness: 1,
		Color:     DefaultDividerColor,
		Style:     DefaultDividerStyle,
	}
}

func NewImage(src, alt string) *ImageBlock {
	return &ImageBlock{
		BaseBlock: newBase(BlockTypeImage),
		Src:       src,
		Alt:       alt,
		Align:     DefaultTextAlign,
	}
}

func NewTable(headers []string, rows [][]string) *TableBlock {
	if headers == nil {
		headers = []string{}
	}
	if rows == nil {
		rows = [][]string{}
	}
	return &TableBlock{
		BaseBlock: newBase(BlockTypeTable),
		Headers:   headers,
		Rows:      rows,
	}
}

func NewList(ordered bool, items []string) *ListBlock {
	if items == nil {
		items = []string{}
	}
	return &ListBlock{
		BaseBlock: newBase(BlockTypeList),
		Ordered:   ordered,
		Items:     items,
	}
}

func NewButton(text string) *ButtonBlock {
	return &ButtonBlock{
		BaseBlock:  newBase(BlockTypeButton),
		Text:       text,
		ButtonType: DefaultButtonType,
		Color:      DefaultButtonColor,
		TextColor:  DefaultButtonTextColor,
		FontSize:   DefaultFontSize,
		Align:      DefaultTextAlign,
	}
}

func NewRawHTML(html string) *RawHTMLBlock {
	return &RawHTMLBlock{
		BaseBlock: newBase(BlockTypeRawHTML),
		HTML:      html,
	}
}

// NewSection creates a section with the given number of empty columns,
// clamped to 1..MaxColumns
func NewSection(columns int) Section {
	columns = ClampColumns(columns)
	cols := make([]Column, columns)
	for i := range cols {
		cols[i] = Column{}
	}
	return Section{
		ID:      NewID(),
		Columns: columns,
		Blocks:  cols,
	}
}

// NewSectionWithBlocks creates a single column section holding blocks
func NewSectionWithBlocks(blocks []Block) Section {
	section := NewSection(1)
	section.Blocks[0] = append(Column{}, blocks...)
	return section
}

// ClampColumns clamps a column count to 1..MaxColumns
func ClampColumns(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxColumns {
		return MaxColumns
	}
	return n
}
