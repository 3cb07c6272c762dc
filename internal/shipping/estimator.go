package shipping

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/catalog"
	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/domain"
)

const (
	// packaging tare added to every parcel
	baseWeightG  = 200
	baseHeightCM = 4

	// carrier-imposed limits
	MaxWeightG = 25000
	MaxDimCM   = 150
)

// ItemRef identifies a cart entry for estimation: just product and quantity.
type ItemRef struct {
	ProductID int64
	Quantity  int
}

// ProductGetter is the slice of the catalog the estimator needs.
type ProductGetter interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
}

// Estimator derives aggregate parcel dimensions from cart contents. Heights
// are stacked and widths/lengths maxed; this deliberately ignores real
// bin-packing.
type Estimator struct {
	catalog ProductGetter
}

func NewEstimator(catalog ProductGetter) *Estimator {
	return &Estimator{catalog: catalog}
}

// EstimatePackage is pure apart from catalog reads: for a given catalog
// snapshot the same cart always yields the same dimensions. Entries with a
// non-positive quantity, an unknown product or an inactive product are
// skipped.
func (e *Estimator) EstimatePackage(ctx context.Context, items []ItemRef) (domain.PackageDimensions, error) {
	weight := baseWeightG
	height := baseHeightCM
	width := 0
	length := 0

	for _, item := range items {
		if item.Quantity < 1 {
			continue
		}
		p, err := e.catalog.GetProduct(ctx, item.ProductID)
		if errors.Is(err, catalog.ErrProductNotFound) {
			continue
		}
		if err != nil {
			return domain.PackageDimensions{}, fmt.Errorf("resolve product %d: %w", item.ProductID, err)
		}
		if !p.Active {
			continue
		}

		weight += p.WeightG * item.Quantity
		height += p.HeightCM * item.Quantity
		if p.WidthCM > width {
			width = p.WidthCM
		}
		if p.LengthCM > length {
			length = p.LengthCM
		}
	}

	return domain.PackageDimensions{
		WeightG:  clamp(weight, MaxWeightG),
		HeightCM: clamp(height, MaxDimCM),
		WidthCM:  clamp(width, MaxDimCM),
		LengthCM: clamp(length, MaxDimCM),
	}, nil
}

func clamp(v, max int) int {
	if v < 1 {
		return 1
	}
	if v > max {
		return max
	}
	return v
}
