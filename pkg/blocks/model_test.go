package blocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsApplyDefaults(t *testing.T) {
	heading := NewHeading(2, "Title")
	assert.Equal(t, BlockTypeHeading, heading.GetType())
	assert.Equal(t, 26, heading.FontSize)
	assert.Equal(t, DefaultHeadingColor, heading.Color)
	assert.Equal(t, DefaultWidth, heading.Width)

	assert.Equal(t, 1, NewHeading(9, "x").Level)

	paragraph := NewParagraph("text")
	assert.Equal(t, DefaultLineHeight, paragraph.LineHeight)

	divider := NewDivider()
	assert.Equal(t, 1, divider.Thickness)
	assert.Equal(t, DefaultDividerStyle, divider.Style)

	table := NewTable(nil, nil)
	assert.NotNil(t, table.Headers)
	assert.NotNil(t, table.Rows)
}

func TestNewIDIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestBaseGivesMutableAccess(t *testing.T) {
	var block Block = NewButton("Go")
	block.Base().MarginTop = 10
	block.SetID("fixed")

	button := block.(*ButtonBlock)
	assert.Equal(t, 10, button.MarginTop)
	assert.Equal(t, "fixed", button.GetID())
}

func TestNewSectionClampsColumns(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 3},
		{7, 3},
	}
	for _, tt := range tests {
		section := NewSection(tt.in)
		assert.Equal(t, tt.want, section.Columns)
		assert.Len(t, section.Blocks, tt.want)
	}
}

func TestDocumentBlockCountAndWalk(t *testing.T) {
	doc := sampleDocument()
	assert.Equal(t, 14, doc.BlockCount())

	var types []BlockType
	doc.Walk(func(b Block) { types = append(types, b.GetType()) })
	require.Len(t, types, 14)
	assert.Equal(t, BlockTypeHeading, types[0])
	assert.Equal(t, BlockTypeRawHTML, types[len(types)-1])
}
