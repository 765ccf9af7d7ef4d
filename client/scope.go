package client

import (
	"github.com/stockflowhq/stockflow-go/entity"
	"github.com/stockflowhq/stockflow-go/session"
)

// OrganizationIDKey is the parameter and body key used for tenant scoping.
const OrganizationIDKey = "organization_id"

// requestScope is the per-call decision of whether the caller's
// organization identifier is injected, and with what value.
type requestScope struct {
	inject         bool
	organizationID string
}

// computeScope decides tenant auto-injection for one operation. It is a
// pure function of the session snapshot, the entity descriptor and the
// caller's ORIGINAL values: inject when the session carries an
// organization, the user is not platform staff, the entity is tenant
// scoped, and the caller has not already supplied the key. Explicit caller
// intent always wins; there is no override and no error.
func computeScope(sess *session.Session, desc entity.Descriptor, callerValues map[string]any) requestScope {
	if !sess.HasOrganization() {
		return requestScope{}
	}
	if sess.PlatformStaff() {
		return requestScope{}
	}
	if !desc.TenantScoped {
		return requestScope{}
	}
	if _, ok := callerValues[OrganizationIDKey]; ok {
		return requestScope{}
	}
	return requestScope{inject: true, organizationID: sess.OrganizationID}
}

// applyScope merges scope into a copy of values. The caller's map is never
// mutated.
func applyScope(scope requestScope, values map[string]any) map[string]any {
	out := make(map[string]any, len(values)+1)
	for k, v := range values {
		out[k] = v
	}
	if scope.inject {
		out[OrganizationIDKey] = scope.organizationID
	}
	return out
}

// scopeFor reads the session fresh and computes the scope for one call.
// A failing or empty store degrades to no injection.
func (c *Client) scopeFor(desc entity.Descriptor, callerValues map[string]any) requestScope {
	return computeScope(c.currentSession(), desc, callerValues)
}
