// Package entity defines the logical entity kinds exposed by the StockFlow
// REST API and the static descriptors used to route and scope requests.
package entity

import (
	"sort"
	"strings"
)

// Kind identifies a logical entity type by its canonical name.
type Kind string

// The entity kinds known to the API.
const (
	Alert               Kind = "Alert"
	Category            Kind = "Category"
	Location            Kind = "Location"
	Order               Kind = "Order"
	Organization        Kind = "Organization"
	OrganizationPayment Kind = "OrganizationPayment"
	Product             Kind = "Product"
	PurchaseOrder       Kind = "PurchaseOrder"
	Sale                Kind = "Sale"
	StockMovement       Kind = "StockMovement"
	Supplier            Kind = "Supplier"
	User                Kind = "User"
	Vendor              Kind = "Vendor"
	VendorPayment       Kind = "VendorPayment"
	Warehouse           Kind = "Warehouse"
)

// Descriptor is the static configuration for one entity kind: the REST
// collection path (always with a trailing slash) and whether requests for
// the kind are auto-scoped to the caller's organization.
//
// Organization and Location are super-tenant resources and carry
// TenantScoped false. Changing that set is a design decision, not a data
// tweak; every other kind belongs to exactly one organization.
type Descriptor struct {
	Kind         Kind
	Path         string
	TenantScoped bool
}

var descriptors = map[Kind]Descriptor{
	Alert:               {Alert, "alerts/", true},
	Category:            {Category, "categories/", true},
	Location:            {Location, "locations/", false},
	Order:               {Order, "orders/", true},
	Organization:        {Organization, "organizations/", false},
	OrganizationPayment: {OrganizationPayment, "organization-payments/", true},
	Product:             {Product, "products/", true},
	PurchaseOrder:       {PurchaseOrder, "purchase-orders/", true},
	Sale:                {Sale, "sales/", true},
	StockMovement:       {StockMovement, "stock-movements/", true},
	Supplier:            {Supplier, "suppliers/", true},
	User:                {User, "users/", true},
	Vendor:              {Vendor, "vendors/", true},
	VendorPayment:       {VendorPayment, "vendor-payments/", true},
	Warehouse:           {Warehouse, "warehouses/", true},
}

// Describe returns the descriptor for kind. Unknown kinds get a derived
// descriptor (lower-cased name plus "s/", tenant scoped), so Describe is
// total over strings and never fails.
func Describe(kind Kind) Descriptor {
	if d, ok := descriptors[kind]; ok {
		return d
	}
	return Descriptor{
		Kind:         kind,
		Path:         strings.ToLower(string(kind)) + "s/",
		TenantScoped: true,
	}
}

// Known reports whether kind is one of the registered entity kinds.
func Known(kind Kind) bool {
	_, ok := descriptors[kind]
	return ok
}

// Kinds returns the registered entity kinds in name order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(descriptors))
	for k := range descriptors {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
