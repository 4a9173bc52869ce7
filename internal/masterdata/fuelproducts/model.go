// Package fuelproducts keeps the tenant's saleable fuel catalogue: product
// names, tax percentages and the LFRN licence reference printed on invoices.
package fuelproducts

import (
	"time"

	"github.com/google/uuid"
)

// FuelProduct represents one saleable fuel grade.
type FuelProduct struct {
	ID            uuid.UUID `json:"id"`
	TenantID      uuid.UUID `json:"tenantId"`
	ProductName   string    `json:"productName"`
	ShortName     string    `json:"shortName"`
	GSTPercentage *float64  `json:"gstPercentage,omitempty"`
	TDSPercentage *float64  `json:"tdsPercentage,omitempty"`
	WGTPercentage *float64  `json:"wgtPercentage,omitempty"`
	LFRN          string    `json:"lfrn"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
}
