package dashboard

// DefaultTenantId is the bucket used for principals without a tenant.
// Nothing is registered under it, so such callers see no properties.
const DefaultTenantId = "default_tenant"

// Principal is the caller identity produced by authentication.
type Principal struct {
	TenantId string
	UserId   int
	Username string
}

// ResolvedTenantId returns TenantId, or DefaultTenantId when it is empty.
func (p Principal) ResolvedTenantId() string {
	if p.TenantId == "" {
		return DefaultTenantId
	}
	return p.TenantId
}
