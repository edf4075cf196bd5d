package models

// CatalogKind names one of the master catalogs.
type CatalogKind string

const (
	CatalogBrands       CatalogKind = "brands"
	CatalogModels       CatalogKind = "models"
	CatalogWorkshops    CatalogKind = "workshops"
	CatalogServiceTypes CatalogKind = "service_types"
)

// CatalogItem is an entry of the brands, workshops or service types catalog.
// Contact fields are only used by workshops.
type CatalogItem struct {
	ID          string `json:"id" bson:"_id"`
	Name        string `json:"name" bson:"name"`
	ManagerName string `json:"managerName,omitempty" bson:"manager_name,omitempty"`
	Address     string `json:"address,omitempty" bson:"address,omitempty"`
	City        string `json:"city,omitempty" bson:"city,omitempty"`
	State       string `json:"state,omitempty" bson:"state,omitempty"`
	Phone       string `json:"phone,omitempty" bson:"phone,omitempty"`
	Email       string `json:"email,omitempty" bson:"email,omitempty"`
}

// ModelCatalogItem is a vehicle model belonging to a brand.
type ModelCatalogItem struct {
	ID      string `json:"id" bson:"_id"`
	Name    string `json:"name" bson:"name"`
	BrandID string `json:"brandId" bson:"brand_id"`
}
