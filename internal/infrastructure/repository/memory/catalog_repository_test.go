package memory

import (
	"context"
	"testing"

	"github.com/seatfeed/offer-aggregator/internal/domain/team"
)

func TestCatalogRepository_SeedLoadsAsValidCatalog(t *testing.T) {
	repo := NewCatalogRepository(SeedIdentities(), SeedMappings())

	catalog, err := team.LoadCatalog(context.Background(), repo)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if len(catalog.Identities) == 0 {
		t.Fatal("seed catalog has no identities")
	}
	if len(catalog.Mappings) == 0 {
		t.Fatal("seed catalog has no mappings")
	}
}

func TestCatalogRepository_UpsertIdentities(t *testing.T) {
	repo := NewCatalogRepository(SeedIdentities(), SeedMappings())
	ctx := context.Background()

	if err := repo.UpsertIdentities(ctx, []team.Identity{
		{CanonicalID: "t-ajax", Name: "Ajax Amsterdam", Slug: "ajax"},
		{CanonicalID: "t-feyenoord", Name: "Feyenoord", Slug: "feyenoord"},
	}); err != nil {
		t.Fatalf("UpsertIdentities() error = %v", err)
	}

	identities, err := repo.ListIdentities(ctx)
	if err != nil {
		t.Fatalf("ListIdentities() error = %v", err)
	}

	var ajaxName string
	var hasFeyenoord bool
	for _, item := range identities {
		switch item.CanonicalID {
		case "t-ajax":
			ajaxName = item.Name
		case "t-feyenoord":
			hasFeyenoord = true
		}
	}
	if ajaxName != "Ajax Amsterdam" {
		t.Fatalf("ajax name = %q, want replaced value", ajaxName)
	}
	if !hasFeyenoord {
		t.Fatal("new identity was not appended")
	}
}

func TestCatalogRepository_ListMappingsReturnsCopy(t *testing.T) {
	repo := NewCatalogRepository(nil, team.MappingTable{"SSC Napoli": "napoli"})
	ctx := context.Background()

	first, err := repo.ListMappings(ctx)
	if err != nil {
		t.Fatalf("ListMappings() error = %v", err)
	}
	first["SSC Napoli"] = "mutated"

	second, err := repo.ListMappings(ctx)
	if err != nil {
		t.Fatalf("ListMappings() error = %v", err)
	}
	if second["SSC Napoli"] != "napoli" {
		t.Fatal("ListMappings() exposed internal map")
	}
}
