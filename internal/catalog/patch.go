package catalog

import "time"

// ProductPatch is a typed field patch for partial product updates. A nil
// field was not sent; a non-nil field is applied even when its value is
// zero or empty. This replaces the truthiness checks of ad hoc SQL
// string building with explicit presence semantics.
type ProductPatch struct {
	Name        *string
	MakeModel   *string
	Category    *string
	Description *string
	Quantity    *int
	Price       *float64
	ImageURL    *string
}

// patchColumns fixes the column order the patch is applied in. Keeping the
// order static makes the generated statement deterministic.
var patchColumns = []string{
	"product_name",
	"make_model",
	"category",
	"description",
	"quantity",
	"price",
	"image_url",
}

// IsEmpty reports whether no field was supplied.
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.MakeModel == nil && p.Category == nil &&
		p.Description == nil && p.Quantity == nil && p.Price == nil &&
		p.ImageURL == nil
}

// Columns returns the supplied column names in patch order.
func (p ProductPatch) Columns() []string {
	var cols []string
	for _, c := range patchColumns {
		if p.value(c) != nil {
			cols = append(cols, c)
		}
	}
	return cols
}

// Values returns the update assignments for the supplied fields plus the
// updated_at touch. The map is consumed by gorm, which orders parameters
// by sorted column name.
func (p ProductPatch) Values(now time.Time) map[string]interface{} {
	values := map[string]interface{}{"updated_at": now}
	for _, c := range patchColumns {
		if v := p.value(c); v != nil {
			values[c] = v
		}
	}
	return values
}

func (p ProductPatch) value(column string) interface{} {
	switch column {
	case "product_name":
		if p.Name != nil {
			return *p.Name
		}
	case "make_model":
		if p.MakeModel != nil {
			return *p.MakeModel
		}
	case "category":
		if p.Category != nil {
			return *p.Category
		}
	case "description":
		if p.Description != nil {
			return *p.Description
		}
	case "quantity":
		if p.Quantity != nil {
			return *p.Quantity
		}
	case "price":
		if p.Price != nil {
			return *p.Price
		}
	case "image_url":
		if p.ImageURL != nil {
			return *p.ImageURL
		}
	}
	return nil
}
