package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mmdatafocus/dashboard_backend/dashboard"
	"gopkg.in/yaml.v3"
)

type tenantDirectoryFile struct {
	Tenants map[string][]tenantPropertyEntry `yaml:"tenants" validate:"required,dive,keys,required,max=64,endkeys,dive"`
}

type tenantPropertyEntry struct {
	Id   string `yaml:"id" validate:"required,max=64"`
	Name string `yaml:"name" validate:"required,max=255"`
}

// DefaultTenantProperties mirrors the seed data used in development.
// Note prop-001 exists under both tenants and names different properties.
func DefaultTenantProperties() map[string][]dashboard.Property {
	return map[string][]dashboard.Property{
		"tenant-a": {
			{Id: "prop-001", Name: "Beach House Alpha"},
			{Id: "prop-002", Name: "City Apartment Downtown"},
			{Id: "prop-003", Name: "Country Villa Estate"},
		},
		"tenant-b": {
			{Id: "prop-001", Name: "Mountain Lodge Beta"},
			{Id: "prop-004", Name: "Lakeside Cottage"},
			{Id: "prop-005", Name: "Urban Loft Modern"},
		},
	}
}

// LoadTenantDirectory reads TENANT_DIRECTORY_FILE, or falls back to DefaultTenantProperties.
func LoadTenantDirectory() (*dashboard.StaticDirectory, error) {
	path := strings.TrimSpace(os.Getenv("TENANT_DIRECTORY_FILE"))
	if path == "" {
		return dashboard.NewStaticDirectory(DefaultTenantProperties())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tenant directory: %w", err)
	}
	table, err := ParseTenantDirectory(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return dashboard.NewStaticDirectory(table)
}

// ParseTenantDirectory decodes a YAML (or JSON) document of the form
//
//	tenants:
//	  tenant-a:
//	    - id: prop-001
//	      name: Beach House Alpha
func ParseTenantDirectory(data []byte) (map[string][]dashboard.Property, error) {
	var file tenantDirectoryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse tenant directory: %w", err)
	}
	if err := validator.New().Struct(&file); err != nil {
		return nil, fmt.Errorf("invalid tenant directory: %w", err)
	}

	table := make(map[string][]dashboard.Property, len(file.Tenants))
	for tenantId, entries := range file.Tenants {
		props := make([]dashboard.Property, 0, len(entries))
		for _, e := range entries {
			props = append(props, dashboard.Property{Id: e.Id, Name: e.Name})
		}
		table[tenantId] = props
	}
	return table, nil
}
