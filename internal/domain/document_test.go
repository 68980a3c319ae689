package domain

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparkeditor/spark/pkg/blocks"
)

const validID = "5f0c4d6e-3b1a-4f59-9a43-6d2b8f3c1e7a"

func TestDocumentValidate(t *testing.T) {
	valid := func() *Document {
		return &Document{
			ID:       validID,
			Name:     "Signup",
			Sections: blocks.Document{blocks.NewSectionWithBlocks([]blocks.Block{blocks.NewParagraph("x")})},
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name    string
		mutate  func(d *Document)
		wantErr string
	}{
		{"missing id", func(d *Document) { d.ID = "" }, "id is required"},
		{"bad id", func(d *Document) { d.ID = "abc" }, "id must be a UUID"},
		{"missing name", func(d *Document) { d.Name = "  " }, "name is required"},
		{"long name", func(d *Document) { d.Name = strings.Repeat("a", 256) }, "name length must be between 1 and 255"},
		{"column mismatch", func(d *Document) { d.Sections[0].Columns = 2 }, "declares 2 columns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid()
			tt.mutate(d)
			err := d.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCreateDocumentRequestValidate(t *testing.T) {
	assert.NoError(t, (&CreateDocumentRequest{Name: "a", HTML: ""}).Validate())

	err := (&CreateDocumentRequest{HTML: "<p>x</p>"}).Validate()
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestUpdateDocumentRequestValidate(t *testing.T) {
	ok := &UpdateDocumentRequest{ID: validID, Name: "a", Sections: blocks.Document{}}
	assert.NoError(t, ok.Validate())

	tests := []struct {
		name    string
		req     UpdateDocumentRequest
		wantErr string
	}{
		{"missing id", UpdateDocumentRequest{Name: "a", Sections: blocks.Document{}}, "id is required"},
		{"missing name", UpdateDocumentRequest{ID: validID, Sections: blocks.Document{}}, "name is required"},
		{"missing sections", UpdateDocumentRequest{ID: validID, Name: "a"}, "sections is required"},
		{"invalid sections", UpdateDocumentRequest{ID: validID, Name: "a", Sections: blocks.Document{{ID: "s", Columns: 4, Blocks: []blocks.Column{{}, {}, {}, {}}}}}, "columns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetAndDeleteDocumentRequest(t *testing.T) {
	var get GetDocumentRequest
	require.NoError(t, get.FromURLParams(url.Values{"id": {validID}}))
	assert.Equal(t, validID, get.ID)
	assert.Error(t, (&GetDocumentRequest{}).FromURLParams(url.Values{}))
	assert.Error(t, (&GetDocumentRequest{}).FromURLParams(url.Values{"id": {"nope"}}))

	assert.NoError(t, (&DeleteDocumentRequest{ID: validID}).Validate())
	assert.Error(t, (&DeleteDocumentRequest{}).Validate())
}

func TestListDocumentsRequestFromURLParams(t *testing.T) {
	var req ListDocumentsRequest
	require.NoError(t, req.FromURLParams(url.Values{}))
	assert.Equal(t, DefaultListLimit, req.Limit)
	assert.Equal(t, 0, req.Offset)

	req = ListDocumentsRequest{}
	require.NoError(t, req.FromURLParams(url.Values{"limit": {"50"}, "offset": {"10"}}))
	assert.Equal(t, 50, req.Limit)
	assert.Equal(t, 10, req.Offset)

	for _, params := range []url.Values{
		{"limit": {"abc"}},
		{"limit": {"0"}},
		{"limit": {"101"}},
		{"offset": {"-1"}},
		{"offset": {"x"}},
	} {
		req = ListDocumentsRequest{}
		err := req.FromURLParams(params)
		assert.True(t, IsValidationError(err), params.Encode())
	}
}

func TestRenderDocumentRequestFromURLParams(t *testing.T) {
	var req RenderDocumentRequest
	require.NoError(t, req.FromURLParams(url.Values{"id": {validID}}))
	assert.Equal(t, ExportFormatDocument, req.Format)

	req = RenderDocumentRequest{}
	require.NoError(t, req.FromURLParams(url.Values{"id": {validID}, "format": {"body"}, "title": {"T"}}))
	assert.Equal(t, ExportFormatBody, req.Format)
	assert.Equal(t, "T", req.Title)

	req = RenderDocumentRequest{}
	assert.Error(t, req.FromURLParams(url.Values{"id": {validID}, "format": {"pdf"}}))
}
