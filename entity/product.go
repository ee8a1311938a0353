// Package entity defines domain types shared across the application.
package entity

// Product is one catalog item; only the name matters to this layer,
// the stats cleanup routine compares tracked entries against it.
type Product struct {
	Name string `json:"name"`
}

// Catalog maps a category name to its ordered product list.
type Catalog map[string][]Product

// HasProduct reports whether the named product exists in the category.
func (c Catalog) HasProduct(category, name string) bool {
	for _, p := range c[category] {
		if p.Name == name {
			return true
		}
	}
	return false
}
