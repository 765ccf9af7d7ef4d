package client

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/stockflowhq/stockflow-go/entity"
)

// Record is an entity payload. Business entities are opaque to this layer;
// the caller owns their shape.
type Record = map[string]any

// Entity is the bound CRUD surface for one entity kind. All six operations
// evaluate the same scoping predicate; they differ only in where the
// computed organization identifier lands (query parameters vs body).
type Entity struct {
	c    *Client
	desc entity.Descriptor
}

// Entity returns the CRUD operations bound to kind.
func (c *Client) Entity(kind entity.Kind) *Entity {
	return &Entity{c: c, desc: entity.Describe(kind)}
}

// Kind returns the entity kind this surface is bound to.
func (e *Entity) Kind() entity.Kind {
	return e.desc.Kind
}

// List fetches the collection. params are optional filters merged with the
// computed scope into the query string.
func (e *Entity) List(ctx context.Context, params Record) ([]Record, error) {
	scoped := applyScope(e.c.scopeFor(e.desc, params), params)
	var out []Record
	if err := e.c.do(ctx, request{method: http.MethodGet, path: e.desc.Path, params: scoped}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Filter fetches the collection matching params. Unlike List, params are
// required.
func (e *Entity) Filter(ctx context.Context, params Record) ([]Record, error) {
	if len(params) == 0 {
		return nil, errors.Errorf("[Entity.Filter] %s: params are required", e.desc.Kind)
	}
	scoped := applyScope(e.c.scopeFor(e.desc, params), params)
	var out []Record
	if err := e.c.do(ctx, request{method: http.MethodGet, path: e.desc.Path, params: scoped}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches a single item by id.
func (e *Entity) Get(ctx context.Context, id string, params Record) (Record, error) {
	scoped := applyScope(e.c.scopeFor(e.desc, params), params)
	var out Record
	if err := e.c.do(ctx, request{method: http.MethodGet, path: e.itemPath(id), params: scoped}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create sanitizes body and posts it with the computed scope merged into
// the body. The scoping decision inspects the caller's original body, so
// an explicit organization_id survives even when sanitization would have
// dropped its empty value.
func (e *Entity) Create(ctx context.Context, body Record) (Record, error) {
	scope := e.c.scopeFor(e.desc, body)
	payload := applyScope(scope, sanitizeObject(body))
	var out Record
	if err := e.c.do(ctx, request{method: http.MethodPost, path: e.desc.Path, jsonBody: payload}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update sanitizes body and puts it to the item endpoint. The computed
// scope lands in the query parameters, not the body; backend routing
// depends on this shape, so it is preserved rather than aligned with
// Create.
func (e *Entity) Update(ctx context.Context, id string, body Record) (Record, error) {
	scope := e.c.scopeFor(e.desc, body)
	params := applyScope(scope, nil)
	var out Record
	req := request{
		method:   http.MethodPut,
		path:     e.itemPath(id),
		params:   params,
		jsonBody: sanitizeObject(body),
	}
	if err := e.c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes an item by id.
func (e *Entity) Delete(ctx context.Context, id string, params Record) error {
	scoped := applyScope(e.c.scopeFor(e.desc, params), params)
	return e.c.do(ctx, request{method: http.MethodDelete, path: e.itemPath(id), params: scoped}, nil)
}

func (e *Entity) itemPath(id string) string {
	// The id is placed in the unescaped path; the URL layer escapes it
	// when the request is built.
	return e.desc.Path + id
}
