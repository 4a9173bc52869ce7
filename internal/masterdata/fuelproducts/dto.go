package fuelproducts

// FuelProductForm is the create/update payload.
type FuelProductForm struct {
	ProductName   string   `json:"productName" validate:"required,max=200"`
	ShortName     string   `json:"shortName" validate:"required,max=50"`
	GSTPercentage *float64 `json:"gstPercentage" validate:"omitempty,gte=0,lte=100"`
	TDSPercentage *float64 `json:"tdsPercentage" validate:"omitempty,gte=0,lte=100"`
	WGTPercentage *float64 `json:"wgtPercentage" validate:"omitempty,gte=0,lte=100"`
	LFRN          string   `json:"lfrn" validate:"required,max=100"`
	IsActive      *bool    `json:"isActive"`
}

func (f FuelProductForm) model() FuelProduct {
	active := true
	if f.IsActive != nil {
		active = *f.IsActive
	}
	return FuelProduct{
		ProductName:   f.ProductName,
		ShortName:     f.ShortName,
		GSTPercentage: f.GSTPercentage,
		TDSPercentage: f.TDSPercentage,
		WGTPercentage: f.WGTPercentage,
		LFRN:          f.LFRN,
		IsActive:      active,
	}
}
