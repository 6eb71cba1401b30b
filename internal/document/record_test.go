package document

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordFactoryDefaults(t *testing.T) {
	factory := NewRecordFactory(RecordConfig{})
	doc, err := factory(map[string]interface{}{
		"id":    "42",
		"title": "The Future of AI",
		"type":  "keynote",
	})
	require.NoError(t, err)
	require.Equal(t, "42", doc.ID())
	// fields rendered in key order, id excluded
	require.Equal(t, "title: The Future of AI\ntype: keynote", doc.Text())
	require.Equal(t, map[string]interface{}{
		"title": "The Future of AI",
		"type":  "keynote",
	}, doc.Metadata())
}

func TestRecordFactoryConfigured(t *testing.T) {
	factory := NewRecordFactory(RecordConfig{
		IDField:        "key",
		IDPrefix:       "session_",
		TextFields:     []string{"title", "speaker"},
		MetadataFields: []string{"title", "type"},
	})
	doc, err := factory(map[string]interface{}{
		"key":     float64(1),
		"title":   "Agile in Practice",
		"speaker": "John Doe",
		"type":    "session",
	})
	require.NoError(t, err)
	require.Equal(t, "session_1", doc.ID())
	require.Equal(t, "title: Agile in Practice\nspeaker: John Doe", doc.Text())
	require.Equal(t, map[string]interface{}{
		"title": "Agile in Practice",
		"type":  "session",
	}, doc.Metadata())
}

func TestRecordFactoryErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  RecordConfig
		item map[string]interface{}
	}{
		{
			name: "missing id",
			cfg:  RecordConfig{},
			item: map[string]interface{}{"title": "x"},
		},
		{
			name: "empty id",
			cfg:  RecordConfig{},
			item: map[string]interface{}{"id": "  ", "title": "x"},
		},
		{
			name: "missing text field",
			cfg:  RecordConfig{TextFields: []string{"title"}},
			item: map[string]interface{}{"id": "1"},
		},
		{
			name: "non scalar field",
			cfg:  RecordConfig{},
			item: map[string]interface{}{"id": "1", "nested": map[string]interface{}{"x": 1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory := NewRecordFactory(tt.cfg)
			_, err := factory(tt.item)
			require.Error(t, err)
		})
	}
}
