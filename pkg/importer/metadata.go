package importer

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/tidwall/gjson"

	"github.com/sparkeditor/spark/pkg/blocks"
)

var metadataPattern = regexp.MustCompile(`(?s)<!--\s*` + regexp.QuoteMeta(blocks.MetadataMarker) + `\s*(.*?)\s*-->`)

// detectMetadata looks for the first embedded metadata comment. found reports
// whether a comment was present at all; err explains why its payload was
// rejected.
func detectMetadata(markup string) (doc blocks.Document, found bool, err error) {
	m := metadataPattern.FindStringSubmatch(markup)
	if m == nil {
		return nil, false, nil
	}
	doc, err = parseMetadataPayload(m[1])
	return doc, true, err
}

// parseMetadataPayload validates the JSON envelope then decodes the sections
func parseMetadataPayload(payload string) (blocks.Document, error) {
	if !gjson.Valid(payload) {
		return nil, errors.New("payload is not valid JSON")
	}

	envelope := gjson.Parse(payload)
	if !envelope.IsObject() {
		return nil, errors.New("payload is not a JSON object")
	}

	version := envelope.Get("version")
	if !version.Exists() {
		return nil, errors.New("missing version")
	}
	if version.Type != gjson.Number {
		return nil, fmt.Errorf("version must be a number, got %s", version.Raw)
	}
	if v := version.Int(); v < 1 || v > blocks.MetadataVersion {
		return nil, fmt.Errorf("unsupported version %d", v)
	}

	sections := envelope.Get("sections")
	if !sections.IsArray() {
		return nil, errors.New("sections must be an array")
	}

	doc, err := blocks.UnmarshalDocument([]byte(sections.Raw))
	if err != nil {
		return nil, err
	}
	if err := blocks.Validate(doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = blocks.Document{}
	}
	return doc, nil
}
