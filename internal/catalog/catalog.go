package catalog

import (
	"fmt"
	"strings"

	"github.com/SavithriNandadasa/message-construction-patterns/pkg/models"
)

// Catalog is the phone inventory. It is built once at process start and
// never mutated afterwards, so handlers on both services share it without
// locking.
type Catalog struct {
	entries []models.InventoryEntry
}

// Default returns the built-in phone list used when no database source is
// configured.
func Default() *Catalog {
	return New([]models.InventoryEntry{
		{Name: "Apple", Price: 190000},
		{Name: "Samsung", Price: 150000},
		{Name: "Nokia", Price: 80000},
		{Name: "HTC", Price: 40000},
		{Name: "Huawei", Price: 70000},
	})
}

func New(entries []models.InventoryEntry) *Catalog {
	return &Catalog{entries: entries}
}

// Display renders every entry in the "Name:Price" wire form returned by
// getPhoneList. The same form is what clients echo back as PhoneName.
func (c *Catalog) Display() []string {
	list := make([]string, 0, len(c.entries))
	for _, entry := range c.entries {
		list = append(list, display(entry))
	}
	return list
}

// Available reports whether the requested item matches a catalog entry.
// The comparison is a case-insensitive exact match against the rendered
// "Name:Price" form; partial matches do not count. The catalog is small
// and static, so a linear scan is fine; switch to a map if it grows.
func (c *Catalog) Available(item string) bool {
	for _, entry := range c.entries {
		if strings.EqualFold(item, display(entry)) {
			return true
		}
	}
	return false
}

func (c *Catalog) Len() int {
	return len(c.entries)
}

func display(entry models.InventoryEntry) string {
	return fmt.Sprintf("%s:%d", entry.Name, entry.Price)
}
