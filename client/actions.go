package client

import (
	"context"
	"net/http"
)

// The endpoints below bypass the generic entity surface and hand-construct
// their requests; none of them auto-scope.

// PurchaseOrders groups the purchase-order workflow actions.
type PurchaseOrders struct {
	c *Client
}

func (c *Client) PurchaseOrders() *PurchaseOrders {
	return &PurchaseOrders{c: c}
}

// Approve moves a purchase order from pending approval into the approved
// state.
func (p *PurchaseOrders) Approve(ctx context.Context, id string) (Record, error) {
	var out Record
	path := "purchase-orders/" + id + "/approve"
	if err := p.c.do(ctx, request{method: http.MethodPost, path: path}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReceivedItem reports the received quantity for one line of a purchase
// order.
type ReceivedItem struct {
	ProductID        string  `json:"product_id"`
	QuantityReceived float64 `json:"quantity_received"`
}

// Receive records received quantities against a purchase order. A partial
// receipt leaves the order partially received server-side.
func (p *PurchaseOrders) Receive(ctx context.Context, id string, items []ReceivedItem) (Record, error) {
	var out Record
	path := "purchase-orders/" + id + "/receive"
	body := map[string]any{"items": items}
	if err := p.c.do(ctx, request{method: http.MethodPost, path: path, jsonBody: body}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Alerts groups the alert actions.
type Alerts struct {
	c *Client
}

func (c *Client) Alerts() *Alerts {
	return &Alerts{c: c}
}

// MarkAllRead marks every alert for the current user as read.
func (a *Alerts) MarkAllRead(ctx context.Context) error {
	return a.c.do(ctx, request{method: http.MethodPost, path: "alerts/mark-all-read"}, nil)
}

// UnreadCount returns the number of unread alerts for the current user.
func (a *Alerts) UnreadCount(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := a.c.do(ctx, request{method: http.MethodGet, path: "alerts/unread-count"}, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// Vendors groups the vendor lookups that bypass the entity surface.
type Vendors struct {
	c *Client
}

func (c *Client) Vendors() *Vendors {
	return &Vendors{c: c}
}

// ByUser fetches the vendor record linked to a user account.
func (v *Vendors) ByUser(ctx context.Context, userID string) (Record, error) {
	var out Record
	path := "vendors/by-user/" + userID
	if err := v.c.do(ctx, request{method: http.MethodGet, path: path}, &out); err != nil {
		return nil, err
	}
	return out, nil
}
