package blocks

// BlockType represents the available block types
type BlockType string

const (
	BlockTypeHeading        BlockType = "heading"
	BlockTypeParagraph      BlockType = "paragraph"
	BlockTypeHyperlink      BlockType = "hyperlink"
	BlockTypeTextInput      BlockType = "text-input"
	BlockTypeTextarea       BlockType = "textarea"
	BlockTypeDropdown       BlockType = "dropdown"
	BlockTypeSingleCheckbox BlockType = "single-checkbox"
	BlockTypeDatePicker     BlockType = "date-picker"
	BlockTypeDivider        BlockType = "divider"
	BlockTypeImage          BlockType = "image"
	BlockTypeTable          BlockType = "table"
	BlockTypeList           BlockType = "list"
	BlockTypeButton         BlockType = "button"
	BlockTypeRawHTML        BlockType = "raw-html"
)

// MaxColumns is the largest number of columns a section can hold
const MaxColumns = 3

// Block is any member of the closed block union.
type Block interface {
	GetID() string
	SetID(string)
	GetType() BlockType
	Base() *BaseBlock
}

// BaseBlock holds the identity and layout attributes shared by every block.
// Margins, paddings, border width and radius are pixels; Width is a percentage.
type BaseBlock struct {
	ID              string    `json:"id"`
	Type            BlockType `json:"type"`
	Width           int       `json:"width"`
	MarginTop       int       `json:"marginTop"`
	MarginRight     int       `json:"marginRight"`
	MarginBottom    int       `json:"marginBottom"`
	MarginLeft      int       `json:"marginLeft"`
	PaddingX        int       `json:"paddingX"`
	PaddingY        int       `json:"paddingY"`
	BackgroundColor string    `json:"backgroundColor"`
	BorderWidth     int       `json:"borderWidth"`
	BorderColor     string    `json:"borderColor"`
	BorderRadius    int       `json:"borderRadius"`
	Locked          bool      `json:"locked"`
}

func (b *BaseBlock) GetID() string {
	if b == nil {
		return ""
	}
	return b.ID
}

func (b *BaseBlock) SetID(id string) {
	if b != nil {
		b.ID = id
	}
}

func (b *BaseBlock) GetType() BlockType {
	if b == nil {
		return ""
	}
	return b.Type
}

// Base gives mutable access to the shared attributes
func (b *BaseBlock) Base() *BaseBlock {
	return b
}

// HeadingBlock is an h1-h6 heading
type HeadingBlock struct {
	BaseBlock
	Level      int    `json:"level"`
	Text       string `json:"text"`
	Color      string `json:"color"`
	FontSize   int    `json:"fontSize"`
	FontWeight string `json:"fontWeight"`
	TextAlign  string `json:"textAlign"`
}

// ParagraphBlock holds a run of inline markup
type ParagraphBlock struct {
	BaseBlock
	Content    string  `json:"content"`
	Color      string  `json:"color"`
	FontSize   int     `json:"fontSize"`
	LineHeight float64 `json:"lineHeight"`
	TextAlign  string  `json:"textAlign"`
}

// HyperlinkBlock is a standalone link
type HyperlinkBlock struct {
	BaseBlock
	Text      string `json:"text"`
	Href      string `json:"href"`
	Target    string `json:"target"`
	Color     string `json:"color"`
	FontSize  int    `json:"fontSize"`
	Underline bool   `json:"underline"`
}

// TextInputBlock is a single line form field
type TextInputBlock struct {
	BaseBlock
	Label       string `json:"label"`
	Name        string `json:"name"`
	Placeholder string `json:"placeholder"`
	InputType   string `json:"inputType"` // text, email, number, tel, password, url, search
	Required    bool   `json:"required"`
}

// TextareaBlock is a multi line form field
type TextareaBlock struct {
	BaseBlock
	Label       string `json:"label"`
	Name        string `json:"name"`
	Placeholder string `json:"placeholder"`
	Value       string `json:"value"`
	Rows        int    `json:"rows"`
	Required    bool   `json:"required"`
}

// DropdownOption is one entry of a dropdown
type DropdownOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// DropdownBlock is a select form field
type DropdownBlock struct {
	BaseBlock
	Label    string           `json:"label"`
	Name     string           `json:"name"`
	Options  []DropdownOption `json:"options"`
	Required bool             `json:"required"`
}

// SingleCheckboxBlock is one checkbox with its label
type SingleCheckboxBlock struct {
	BaseBlock
	Label    string `json:"label"`
	Name     string `json:"name"`
	Checked  bool   `json:"checked"`
	Required bool   `json:"required"`
}

// DatePickerBlock is a date (or date and time) form field
type DatePickerBlock struct {
	BaseBlock
	Label       string `json:"label"`
	Name        string `json:"name"`
	Required    bool   `json:"required"`
	IncludeTime bool   `json:"includeTime"`
}

// DividerBlock is a horizontal rule
type DividerBlock struct {
	BaseBlock
	Thickness int    `json:"thickness"`
	Color     string `json:"color"`
	Style     string `json:"style"` // solid, dashed, dotted
}

// ImageBlock is an image; its displayed width is BaseBlock.Width
type ImageBlock struct {
	BaseBlock
	Src    string `json:"src"`
	Alt    string `json:"alt"`
	Height int    `json:"height"`
	Align  string `json:"align"`
}

// TableBlock is a data table of plain text cells
type TableBlock struct {
	BaseBlock
	Headers          []string   `json:"headers"`
	Rows             [][]string `json:"rows"`
	Striped          bool       `json:"striped"`
	Bordered         bool       `json:"bordered"`
	HeaderBackground string     `json:"headerBackground"`
}

// ListBlock is an ordered or bulleted list
type ListBlock struct {
	BaseBlock
	Ordered bool     `json:"ordered"`
	Items   []string `json:"items"`
}

// ButtonBlock is a clickable button, rendered as a link when Href is set
type ButtonBlock struct {
	BaseBlock
	Text       string `json:"text"`
	Href       string `json:"href"`
	ButtonType string `json:"buttonType"` // button, submit
	Color      string `json:"color"`
	TextColor  string `json:"textColor"`
	FontSize   int    `json:"fontSize"`
	Align      string `json:"align"`
}

// RawHTMLBlock wraps markup that could not be decomposed. HTML is opaque.
type RawHTMLBlock struct {
	BaseBlock
	HTML string `json:"html"`
}

// Column is an ordered run of blocks
type Column []Block

// Section is a horizontal band of 1 to 3 columns
type Section struct {
	ID      string   `json:"id"`
	Columns int      `json:"columns"`
	Blocks  []Column `json:"blocks"`
}

// Document is the ordered list of sections, top to bottom
type Document []Section

// BlockCount returns the number of blocks across all columns
func (s Section) BlockCount() int {
	n := 0
	for _, col := range s.Blocks {
		n += len(col)
	}
	return n
}

// BlockCount returns the number of blocks in the whole document
func (d Document) BlockCount() int {
	n := 0
	for _, s := range d {
		n += s.BlockCount()
	}
	return n
}

// Walk calls fn for every block in render order
func (d Document) Walk(fn func(Block)) {
	for _, s := range d {
		for _, col := range s.Blocks {
			for _, b := range col {
				if b != nil {
					fn(b)
				}
			}
		}
	}
}
