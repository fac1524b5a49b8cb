package procurement

import (
	"fmt"
	"strings"
)

// Category classifies a catalog product for spend reporting
type Category string

const (
	CategoryReagent     Category = "REAGENT"
	CategoryTool        Category = "TOOL"
	CategoryEquipment   Category = "EQUIPMENT"
	CategoryConsumable  Category = "CONSUMABLE"
	CategoryRawMaterial Category = "RAW_MATERIAL"
)

// IsValid checks if the category is one of the known values
func (c Category) IsValid() bool {
	switch c {
	case CategoryReagent, CategoryTool, CategoryEquipment, CategoryConsumable, CategoryRawMaterial:
		return true
	}
	return false
}

// String returns the string representation of Category
func (c Category) String() string {
	return string(c)
}

// ParseCategory converts a stored or user-supplied value into a Category.
// An empty value yields nil (uncategorized).
func ParseCategory(value string) (*Category, error) {
	v := strings.ToUpper(strings.TrimSpace(value))
	if v == "" {
		return nil, nil
	}
	c := Category(v)
	if !c.IsValid() {
		return nil, fmt.Errorf("unknown category: %q", value)
	}
	return &c, nil
}
