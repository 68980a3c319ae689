package blocks

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MetadataVersion is the version written into round-trip metadata
const MetadataVersion = 1

// MetadataMarker prefixes the HTML comment that embeds a document's block tree
const MetadataMarker = "spark-metadata:"

// Metadata is the payload embedded in exported documents
type Metadata struct {
	Version  int      `json:"version"`
	Sections Document `json:"sections"`
}

// blockTypeProbe reads only the discriminator of a block
type blockTypeProbe struct {
	Type BlockType `json:"type"`
}

// newTypedBlock returns an empty block of the variant matching t
func newTypedBlock(t BlockType) (Block, error) {
	switch t {
	case BlockTypeHeading:
		return &HeadingBlock{}, nil
	case BlockTypeParagraph:
		return &ParagraphBlock{}, nil
	case BlockTypeHyperlink:
		return &HyperlinkBlock{}, nil
	case BlockTypeTextInput:
		return &TextInputBlock{}, nil
	case BlockTypeTextarea:
		return &TextareaBlock{}, nil
	case BlockTypeDropdown:
		return &DropdownBlock{}, nil
	case BlockTypeSingleCheckbox:
		return &SingleCheckboxBlock{}, nil
	case BlockTypeDatePicker:
		return &DatePickerBlock{}, nil
	case BlockTypeDivider:
		return &DividerBlock{}, nil
	case BlockTypeImage:
		return &ImageBlock{}, nil
	case BlockTypeTable:
		return &TableBlock{}, nil
	case BlockTypeList:
		return &ListBlock{}, nil
	case BlockTypeButton:
		return &ButtonBlock{}, nil
	case BlockTypeRawHTML:
		return &RawHTMLBlock{}, nil
	default:
		return nil, fmt.Errorf("unknown block type %q", t)
	}
}

// IsKnownType reports whether t is a member of the block union
func IsKnownType(t BlockType) bool {
	_, err := newTypedBlock(t)
	return err == nil
}

// UnmarshalBlock decodes a single block, dispatching on its type field
func UnmarshalBlock(data []byte) (Block, error) {
	var probe blockTypeProbe
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to unmarshal block JSON: %w", err)
	}

	block, err := newTypedBlock(probe.Type)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, block); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s block: %w", probe.Type, err)
	}
	return block, nil
}

// UnmarshalJSON implements json.Unmarshaler for the block union
func (c *Column) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*c = nil
		return nil
	}

	var rawBlocks []json.RawMessage
	if err := json.Unmarshal(data, &rawBlocks); err != nil {
		return fmt.Errorf("failed to unmarshal column: %w", err)
	}

	col := make(Column, 0, len(rawBlocks))
	for i, raw := range rawBlocks {
		block, err := UnmarshalBlock(raw)
		if err != nil {
			return fmt.Errorf("block at index %d: %w", i, err)
		}
		col = append(col, block)
	}
	*c = col
	return nil
}

// UnmarshalDocument decodes a JSON array of sections
func UnmarshalDocument(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return doc, nil
}

// MarshalMetadata encodes doc as round-trip metadata. The encoder escapes
// <, > and & so the payload is safe inside an HTML comment. Invalid UTF-8 in
// any string is replaced with U+FFFD, so only valid text survives a round trip
// byte for byte.
func MarshalMetadata(doc Document) ([]byte, error) {
	if doc == nil {
		doc = Document{}
	}
	return json.Marshal(Metadata{
		Version:  MetadataVersion,
		Sections: doc,
	})
}
