package tanks

// TankForm is the tank create payload.
type TankForm struct {
	TankNumber    string   `json:"tankNumber" validate:"required,max=50"`
	FuelProductID *string  `json:"fuelProductId" validate:"omitempty,uuid"`
	Capacity      *float64 `json:"capacity" validate:"omitempty,gte=0"`
	CurrentStock  *float64 `json:"currentStock" validate:"omitempty,gte=0"`
}

// NozzleForm is the nozzle create payload. FuelProductID defaults to the
// tank's product when omitted.
type NozzleForm struct {
	NozzleNumber  string  `json:"nozzleNumber" validate:"required,max=50"`
	FuelProductID *string `json:"fuelProductId" validate:"omitempty,uuid"`
	PumpStation   string  `json:"pumpStation" validate:"omitempty,max=100"`
	IsActive      *bool   `json:"isActive"`
}
