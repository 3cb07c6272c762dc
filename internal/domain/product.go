package domain

// Category is the closed set of product types the store sells.
type Category string

const (
	CategoryCap        Category = "cap"
	CategorySunglasses Category = "sunglasses"
	CategorySocks      Category = "socks"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryCap, CategorySunglasses, CategorySocks:
		return true
	}
	return false
}

// Product is a catalog entry. Products are never deleted, only deactivated,
// so historical order lines keep pointing at real rows.
type Product struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
	Photos      []string `json:"photos"`
	Stock       int      `json:"stock"`
	Price       float64  `json:"price"`
	WeightG     int      `json:"weight_g"`
	HeightCM    int      `json:"height_cm"`
	WidthCM     int      `json:"width_cm"`
	LengthCM    int      `json:"length_cm"`
	Active      bool     `json:"active"`
}
