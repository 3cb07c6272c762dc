package domain

// PackageDimensions is the estimated parcel for a cart, in the units the
// carrier API expects: grams and centimeters. All values are positive.
type PackageDimensions struct {
	WeightG  int `json:"weight"`
	HeightCM int `json:"height"`
	WidthCM  int `json:"width"`
	LengthCM int `json:"length"`
}

// Rate is one shipping option returned by the carrier for a destination.
type Rate struct {
	DeliveredType   ShippingMethod `json:"deliveredType"`
	ProductName     string         `json:"productName"`
	Price           float64        `json:"price"`
	DeliveryTimeMin string         `json:"deliveryTimeMin"`
	DeliveryTimeMax string         `json:"deliveryTimeMax"`
}

// RateQuote is the carrier's answer for a package/destination pair, valid
// until ValidTo.
type RateQuote struct {
	Rates   []Rate `json:"rates"`
	ValidTo string `json:"validTo"`
}
