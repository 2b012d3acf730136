package cart

import (
	"sort"

	"github.com/google/uuid"

	"github.com/dmarquez/storefront-backend/pkg/db/models"
)

// DefaultSize is the sentinel used for lines that carry no size dimension.
const DefaultSize = "default"

// Snapshot is the nested cart state keyed by product then size.
type Snapshot map[uuid.UUID]map[string]int

// ParseSnapshot converts a wire-format cart payload into a Snapshot. Keys that
// are not valid UUIDs and entries with non-positive quantities are dropped.
func ParseSnapshot(wire map[string]map[string]int) Snapshot {
	snap := Snapshot{}
	for rawID, sizes := range wire {
		productID, err := uuid.Parse(rawID)
		if err != nil {
			continue
		}
		for size, qty := range sizes {
			if qty <= 0 {
				continue
			}
			if size == "" {
				size = DefaultSize
			}
			if snap[productID] == nil {
				snap[productID] = map[string]int{}
			}
			snap[productID][size] = qty
		}
	}
	return snap
}

// SnapshotFromLines folds persisted cart rows back into a Snapshot.
func SnapshotFromLines(lines []models.CartLine) Snapshot {
	snap := Snapshot{}
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		if snap[line.ProductID] == nil {
			snap[line.ProductID] = map[string]int{}
		}
		snap[line.ProductID][line.Size] = line.Quantity
	}
	return snap
}

// Wire renders the snapshot in the JSON shape served to clients.
func (s Snapshot) Wire() map[string]map[string]int {
	out := make(map[string]map[string]int, len(s))
	for productID, sizes := range s {
		entry := make(map[string]int, len(sizes))
		for size, qty := range sizes {
			entry[size] = qty
		}
		out[productID.String()] = entry
	}
	return out
}

// ProductIDs returns the product keys in sorted order for deterministic
// iteration.
func (s Snapshot) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}

// Sizes returns the size keys for a product in sorted order.
func (s Snapshot) Sizes(productID uuid.UUID) []string {
	sizes := make([]string, 0, len(s[productID]))
	for size := range s[productID] {
		sizes = append(sizes, size)
	}
	sort.Strings(sizes)
	return sizes
}

// IsEmpty reports whether the snapshot carries no positive-quantity entries.
func (s Snapshot) IsEmpty() bool {
	for _, sizes := range s {
		for _, qty := range sizes {
			if qty > 0 {
				return false
			}
		}
	}
	return true
}
