package dashboard

import "fmt"

type Property struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

// TenantDirectory answers which properties a tenant owns.
// Unknown tenants own nothing; absence is never an error.
type TenantDirectory interface {
	PropertiesFor(tenantId string) []Property
	IsOwned(tenantId, propertyId string) bool
}

// StaticDirectory is a TenantDirectory backed by a table fixed at construction.
// It is read-only and safe for concurrent use.
type StaticDirectory struct {
	properties map[string][]Property
	owned      map[string]map[string]struct{}
}

// NewStaticDirectory copies table. A property id may repeat across tenants but not within one.
func NewStaticDirectory(table map[string][]Property) (*StaticDirectory, error) {
	d := &StaticDirectory{
		properties: make(map[string][]Property, len(table)),
		owned:      make(map[string]map[string]struct{}, len(table)),
	}
	for tenantId, props := range table {
		ids := make(map[string]struct{}, len(props))
		for _, p := range props {
			if p.Id == "" {
				return nil, fmt.Errorf("tenant %q: property id is empty", tenantId)
			}
			if _, dup := ids[p.Id]; dup {
				return nil, fmt.Errorf("tenant %q: duplicate property id %q", tenantId, p.Id)
			}
			ids[p.Id] = struct{}{}
		}
		d.properties[tenantId] = append([]Property(nil), props...)
		d.owned[tenantId] = ids
	}
	return d, nil
}

// PropertiesFor returns a copy of the tenant's properties in table order.
func (d *StaticDirectory) PropertiesFor(tenantId string) []Property {
	props := d.properties[tenantId]
	out := make([]Property, len(props))
	copy(out, props)
	return out
}

func (d *StaticDirectory) IsOwned(tenantId, propertyId string) bool {
	_, ok := d.owned[tenantId][propertyId]
	return ok
}
