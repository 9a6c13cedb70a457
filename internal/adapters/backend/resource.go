package backend

import (
	"context"
	"net/http"
)

// Paths builds the endpoint paths of one resource. scope is the parent id
// (usually the phase) and is ignored by resources that are not nested.
type Paths struct {
	List   func(scope int64) string
	Create func(scope int64) string
	Item   func(scope, id int64) string
}

// Resource is the generic list/get/create/update/delete repository over one endpoint family.
type Resource[T any] struct {
	client *Client
	paths  Paths
}

// NewResource binds paths to a client.
func NewResource[T any](c *Client, p Paths) Resource[T] {
	return Resource[T]{client: c, paths: p}
}

// List fetches every record under scope. A null body decodes to an empty slice.
func (r Resource[T]) List(ctx context.Context, scope int64) ([]T, error) {
	var out []T
	if err := r.client.Do(ctx, http.MethodGet, r.paths.List(scope), nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// Get fetches one record.
func (r Resource[T]) Get(ctx context.Context, scope, id int64) (T, error) {
	var out T
	err := r.client.Do(ctx, http.MethodGet, r.paths.Item(scope, id), nil, &out)
	return out, err
}

// Create POSTs payload.
func (r Resource[T]) Create(ctx context.Context, scope int64, payload any) error {
	return r.client.Do(ctx, http.MethodPost, r.paths.Create(scope), payload, nil)
}

// Update PATCHes payload onto the record with id.
func (r Resource[T]) Update(ctx context.Context, scope, id int64, payload any) error {
	return r.client.Do(ctx, http.MethodPatch, r.paths.Item(scope, id), payload, nil)
}

// Delete removes the record with id.
func (r Resource[T]) Delete(ctx context.Context, scope, id int64) error {
	return r.client.Do(ctx, http.MethodDelete, r.paths.Item(scope, id), nil, nil)
}

// Save creates when id is zero and updates otherwise.
// POST: created reports which of the two requests was issued
func (r Resource[T]) Save(ctx context.Context, scope, id int64, payload any) (created bool, err error) {
	if id == 0 {
		return true, r.Create(ctx, scope, payload)
	}
	return false, r.Update(ctx, scope, id, payload)
}
