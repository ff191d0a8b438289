package team

import (
	"fmt"
	"os"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
)

type catalogFile struct {
	Teams    []Identity        `json:"teams" validate:"required,min=1,dive"`
	Mappings map[string]string `json:"mappings,omitempty"`
}

// LoadCatalogFile reads a catalog override from a JSON file. It lets an
// operator swap the curated identity set per competition without a database.
func LoadCatalogFile(path string) (Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog file: %w", err)
	}

	var parsed catalogFile
	if err := sonic.Unmarshal(raw, &parsed); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog file %s: %w", path, err)
	}

	if err := validator.New().Struct(parsed); err != nil {
		return Catalog{}, fmt.Errorf("validate catalog file %s: %w", path, err)
	}

	catalog := Catalog{
		Identities: parsed.Teams,
		Mappings:   MappingTable(parsed.Mappings),
	}
	if err := catalog.Validate(); err != nil {
		return Catalog{}, fmt.Errorf("catalog file %s: %w", path, err)
	}

	return catalog, nil
}
