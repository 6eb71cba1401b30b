package document

import (
	appErr "github.com/xxxsen/datachat/internal/pkg/errors"
)

// Document reduces one structured item to the triple the vector pipeline
// needs: a stable identifier, an embeddable text rendering and flat metadata.
// Documents are transient; only the derived (id, vector, metadata) survives.
type Document interface {
	ID() string
	Text() string
	Metadata() map[string]interface{}
}

// Factory turns one untyped record into a Document. A factory failure is a
// user-input problem (malformed item), not an infrastructure fault.
type Factory func(item map[string]interface{}) (Document, error)

// Build resolves docType against the registry and constructs one document
// per item. The first malformed item aborts the whole batch.
func Build(reg *Registry, docType string, items []map[string]interface{}) ([]Document, error) {
	factory, err := reg.Get(docType)
	if err != nil {
		return nil, err
	}
	docs := make([]Document, 0, len(items))
	for _, item := range items {
		doc, err := factory(item)
		if err != nil {
			return nil, &appErr.DocumentConstructionError{DocType: docType, Err: err}
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
