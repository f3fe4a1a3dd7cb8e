package store

import "github.com/alirezadp10/ezapply/internal/model"

// NopStore discards everything. Used in dry-run mode so nothing is persisted
// and every posting looks fresh.
type NopStore struct{}

// NewNopStore returns a store that persists nothing.
func NewNopStore() *NopStore {
	return &NopStore{}
}

func (n *NopStore) HasApplied(string) (bool, error)              { return false, nil }
func (n *NopStore) SaveResult(model.ApplicationResult) error     { return nil }
func (n *NopStore) Results() ([]model.ApplicationResult, error)  { return nil, nil }
func (n *NopStore) SaveField(model.StoredField) error            { return nil }
func (n *NopStore) Fields() ([]model.StoredField, error)         { return nil, nil }
