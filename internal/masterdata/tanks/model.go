// Package tanks keeps the physical forecourt registry: storage tanks and
// the dispenser nozzles drawing from them. A nozzle references its tank and
// the fuel product it dispenses; stock figures live on the tank.
package tanks

import (
	"time"

	"github.com/google/uuid"
)

// Tank is one underground storage tank.
type Tank struct {
	ID            uuid.UUID  `json:"id"`
	TenantID      uuid.UUID  `json:"tenantId"`
	TankNumber    string     `json:"tankNumber"`
	FuelProductID *uuid.UUID `json:"fuelProductId,omitempty"`
	Capacity      *float64   `json:"capacity,omitempty"`
	CurrentStock  *float64   `json:"currentStock,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// Nozzle is one dispenser nozzle wired to a tank.
type Nozzle struct {
	ID            uuid.UUID  `json:"id"`
	TenantID      uuid.UUID  `json:"tenantId"`
	NozzleNumber  string     `json:"nozzleNumber"`
	TankID        uuid.UUID  `json:"tankId"`
	FuelProductID *uuid.UUID `json:"fuelProductId,omitempty"`
	PumpStation   string     `json:"pumpStation,omitempty"`
	IsActive      bool       `json:"isActive"`
	CreatedAt     time.Time  `json:"createdAt"`
}
