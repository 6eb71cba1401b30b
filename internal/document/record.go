package document

import (
	"fmt"
	"sort"
	"strings"
)

// RecordConfig describes how to reduce a flat key/value record to a
// document. With an empty field selection the text covers every field and
// the metadata keeps every scalar, both in key order so the rendering is
// deterministic.
type RecordConfig struct {
	IDField        string   `json:"id_field"`
	IDPrefix       string   `json:"id_prefix"`
	TextFields     []string `json:"text_fields"`
	MetadataFields []string `json:"metadata_fields"`
}

type recordDocument struct {
	id       string
	text     string
	metadata map[string]interface{}
}

func (d *recordDocument) ID() string {
	return d.id
}

func (d *recordDocument) Text() string {
	return d.text
}

func (d *recordDocument) Metadata() map[string]interface{} {
	return d.metadata
}

// NewRecordFactory builds the generic "record" document factory. Deployments
// with richer items register their own Factory instead.
func NewRecordFactory(cfg RecordConfig) Factory {
	idField := strings.TrimSpace(cfg.IDField)
	if idField == "" {
		idField = "id"
	}
	return func(item map[string]interface{}) (Document, error) {
		rawID, ok := item[idField]
		if !ok {
			return nil, fmt.Errorf("missing id field %q", idField)
		}
		id := scalarString(rawID)
		if id == "" {
			return nil, fmt.Errorf("empty id field %q", idField)
		}

		textFields := cfg.TextFields
		if len(textFields) == 0 {
			textFields = sortedKeys(item, idField)
		}
		var lines []string
		for _, field := range textFields {
			value, ok := item[field]
			if !ok {
				return nil, fmt.Errorf("missing text field %q", field)
			}
			if !isScalar(value) {
				return nil, fmt.Errorf("field %q is not a scalar", field)
			}
			lines = append(lines, fmt.Sprintf("%s: %s", field, scalarString(value)))
		}

		metaFields := cfg.MetadataFields
		if len(metaFields) == 0 {
			metaFields = sortedKeys(item, idField)
		}
		metadata := make(map[string]interface{}, len(metaFields))
		for _, field := range metaFields {
			value, ok := item[field]
			if !ok {
				return nil, fmt.Errorf("missing metadata field %q", field)
			}
			if !isScalar(value) {
				return nil, fmt.Errorf("field %q is not a scalar", field)
			}
			metadata[field] = value
		}

		return &recordDocument{
			id:       cfg.IDPrefix + id,
			text:     strings.Join(lines, "\n"),
			metadata: metadata,
		}, nil
	}
}

func sortedKeys(item map[string]interface{}, skip string) []string {
	keys := make([]string, 0, len(item))
	for key := range item {
		if key == skip {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func isScalar(value interface{}) bool {
	switch value.(type) {
	case string, bool, float64, float32, int, int32, int64:
		return true
	default:
		return false
	}
}

func scalarString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		// JSON numbers decode as float64; keep integers clean.
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
