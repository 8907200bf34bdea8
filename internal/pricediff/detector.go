// Package pricediff reports price changes between catalog snapshots.
package pricediff

import (
	"sync"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/Proton-105/storefront-bot/internal/catalog"
)

// Change is a price delta for an item present in both snapshots.
type Change struct {
	Category      string
	Name          string
	PreviousPrice decimal.Decimal
	NewPrice      decimal.Decimal
}

type key struct {
	category string
	name     string
}

// Diff compares previous and current by (category, name). Items missing on
// either side are ignored. Only the first item per key counts on each side,
// so every key is reported at most once. Changes follow current snapshot order.
func Diff(previous, current *catalog.Snapshot) []Change {
	if previous.IsEmpty() || current.IsEmpty() {
		return nil
	}

	before := lo.SliceToMap(lo.UniqBy(previous.All(), keyOf), func(item catalog.Item) (key, decimal.Decimal) {
		return keyOf(item), item.Price
	})

	var changes []Change
	for _, item := range lo.UniqBy(current.All(), keyOf) {
		old, ok := before[keyOf(item)]
		if !ok || old.Equal(item.Price) {
			continue
		}
		changes = append(changes, Change{
			Category:      item.Category,
			Name:          item.Name,
			PreviousPrice: old,
			NewPrice:      item.Price,
		})
	}

	return changes
}

func keyOf(item catalog.Item) key {
	return key{category: item.Category, name: item.Name}
}

// Report is the outcome of a single Check.
type Report struct {
	Changes []Change
	// BaselineEstablished is set when no baseline existed and current became it.
	BaselineEstablished bool
	// Version is the baseline version installed by this check.
	Version uint64
}

// Detector owns the process-wide price baseline.
type Detector struct {
	mu       sync.Mutex
	baseline *catalog.Snapshot
	version  uint64
}

// NewDetector returns a Detector with an empty baseline.
func NewDetector() *Detector {
	return &Detector{}
}

// Check diffs current against the baseline and installs current as the new
// baseline in one atomic step.
func (d *Detector) Check(current *catalog.Snapshot) Report {
	d.mu.Lock()
	defer d.mu.Unlock()

	previous := d.baseline
	d.baseline = current
	d.version++

	if previous.IsEmpty() {
		return Report{BaselineEstablished: true, Version: d.version}
	}

	return Report{Changes: Diff(previous, current), Version: d.version}
}

// Reset empties the baseline so the next Check re-establishes it.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.baseline = nil
	d.version++
}

// Version returns the current baseline version.
func (d *Detector) Version() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.version
}
