// Package docstore provides a small document database abstraction: named
// collections of JSON documents with field-level updates, equality queries
// and live subscriptions.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"
)

// Store errors
var (
	ErrNotFound      = errors.New("document not found")
	ErrAlreadyExists = errors.New("document already exists")
	ErrClosed        = errors.New("document store closed")
)

// CreateTimeField orders query results by the store-maintained creation time
// instead of a field inside the document.
const CreateTimeField = "__createTime"

// Document is a single stored document.
type Document struct {
	ID         string
	Collection string
	Data       map[string]any
	CreateTime time.Time
	UpdateTime time.Time
}

// DataTo decodes the document data into v.
func (d *Document) DataTo(v any) error {
	raw, err := json.Marshal(d.Data)
	if err != nil {
		return fmt.Errorf("failed to encode document %s/%s: %w", d.Collection, d.ID, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode document %s/%s: %w", d.Collection, d.ID, err)
	}
	return nil
}

// Filter restricts a query to documents whose field equals Value.
type Filter struct {
	Field string
	Value any
}

// Where builds an equality filter.
func Where(field string, value any) Filter {
	return Filter{Field: field, Value: value}
}

// OrderBy sorts query results by a document field or by CreateTimeField.
type OrderBy struct {
	Field string
	Desc  bool
}

// Store is the document database consumed by the repositories.
type Store interface {
	// Get returns ErrNotFound when the document does not exist.
	Get(ctx context.Context, collection, id string) (*Document, error)
	// Create stores v under a generated ID and returns the ID.
	Create(ctx context.Context, collection string, v any) (string, error)
	// Set creates or replaces the document stored under id.
	Set(ctx context.Context, collection, id string, v any) error
	// Update overwrites the named fields, leaving the others untouched.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Query(ctx context.Context, collection string, filters []Filter, order *OrderBy) ([]*Document, error)
	// Subscribe delivers the full matching set now and after every change to
	// the collection until the subscription is cancelled.
	Subscribe(ctx context.Context, collection string, filters []Filter) (*Subscription, error)
	Close() error
}

// toFields converts a struct or map into the generic representation stored
// in Document.Data.
func toFields(v any) (map[string]any, error) {
	if m, ok := v.(map[string]any); ok {
		return normalizeMap(m)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("document must encode to a JSON object: %w", err)
	}
	return fields, nil
}

func normalizeMap(m map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode fields: %w", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode fields: %w", err)
	}
	return out, nil
}

// normalizeValue gives filter values the same shape they have after a JSON
// round trip, so 8 and 8.0 compare equal.
func normalizeValue(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}

func matches(data map[string]any, filters []Filter) bool {
	for _, f := range filters {
		got, ok := data[f.Field]
		if !ok {
			return false
		}
		if !reflect.DeepEqual(got, normalizeValue(f.Value)) {
			return false
		}
	}
	return true
}

func cloneDocument(d *Document) *Document {
	data := make(map[string]any, len(d.Data))
	for k, v := range d.Data {
		data[k] = v
	}
	out := *d
	out.Data = data
	return &out
}
