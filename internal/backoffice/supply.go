// Package backoffice provides the supporting services a build crew leans
// on: the supply house for materials and the permit office for approvals.
package backoffice

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrOutOfStock is returned when an order asks for more units than the
// supply house holds.
var ErrOutOfStock = errors.New("out of stock")

// Material is one catalog entry.
type Material struct {
	SKU      string
	Name     string
	UnitCost float64 // Per unit, in dollars
	LeadDays int     // Delivery lead time
	InStock  int
}

// Quote prices a quantity of one material.
type Quote struct {
	SKU      string
	Quantity int
	Total    float64
	LeadDays int
	Supplier string
}

// SupplyHouse is an in-memory materials vendor with a fixed catalog.
type SupplyHouse struct {
	name string

	mu      sync.Mutex
	catalog map[string]*Material
}

// NewSupplyHouse creates a supply house stocked with the standard catalog.
func NewSupplyHouse(name string) *SupplyHouse {
	catalog := make(map[string]*Material)
	for _, m := range defaultCatalog() {
		material := m
		catalog[material.SKU] = &material
	}
	return &SupplyHouse{name: name, catalog: catalog}
}

// Name returns the vendor name quotes are issued under.
func (s *SupplyHouse) Name() string {
	return s.name
}

// Quote prices a quantity without reserving stock.
func (s *SupplyHouse) Quote(sku string, quantity int) (Quote, error) {
	if quantity <= 0 {
		return Quote{}, fmt.Errorf("quote for %q: quantity must be positive, got %d", sku, quantity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	material, exists := s.catalog[sku]
	if !exists {
		return Quote{}, fmt.Errorf("supply house %s does not carry %q", s.name, sku)
	}

	return Quote{
		SKU:      sku,
		Quantity: quantity,
		Total:    material.UnitCost * float64(quantity),
		LeadDays: material.LeadDays,
		Supplier: s.name,
	}, nil
}

// Order reserves stock and returns the final quote. Stock is decremented
// only when the full quantity is available.
func (s *SupplyHouse) Order(sku string, quantity int) (Quote, error) {
	if quantity <= 0 {
		return Quote{}, fmt.Errorf("order for %q: quantity must be positive, got %d", sku, quantity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	material, exists := s.catalog[sku]
	if !exists {
		return Quote{}, fmt.Errorf("supply house %s does not carry %q", s.name, sku)
	}
	if material.InStock < quantity {
		return Quote{}, fmt.Errorf("ordering %d of %q (%d in stock): %w",
			quantity, sku, material.InStock, ErrOutOfStock)
	}

	material.InStock -= quantity
	return Quote{
		SKU:      sku,
		Quantity: quantity,
		Total:    material.UnitCost * float64(quantity),
		LeadDays: material.LeadDays,
		Supplier: s.name,
	}, nil
}

// Restock adds units back to the catalog.
func (s *SupplyHouse) Restock(sku string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("restock for %q: quantity must be positive, got %d", sku, quantity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	material, exists := s.catalog[sku]
	if !exists {
		return fmt.Errorf("supply house %s does not carry %q", s.name, sku)
	}

	material.InStock += quantity
	return nil
}

// Catalog returns a copy of every material, sorted by SKU.
func (s *SupplyHouse) Catalog() []Material {
	s.mu.Lock()
	defer s.mu.Unlock()

	materials := make([]Material, 0, len(s.catalog))
	for _, m := range s.catalog {
		materials = append(materials, *m)
	}
	sort.Slice(materials, func(i, j int) bool { return materials[i].SKU < materials[j].SKU })
	return materials
}

func defaultCatalog() []Material {
	return []Material{
		{SKU: "lumber-2x4", Name: "Framing lumber 2x4x8", UnitCost: 4.25, LeadDays: 1, InStock: 5000},
		{SKU: "lumber-2x10", Name: "Joist lumber 2x10x12", UnitCost: 14.80, LeadDays: 2, InStock: 1200},
		{SKU: "concrete-mix", Name: "Ready-mix concrete, cubic yard", UnitCost: 135.00, LeadDays: 1, InStock: 400},
		{SKU: "rebar-10mm", Name: "Rebar 10mm x 6m", UnitCost: 7.10, LeadDays: 1, InStock: 2000},
		{SKU: "sheathing-osb", Name: "OSB sheathing 4x8", UnitCost: 18.50, LeadDays: 1, InStock: 900},
		{SKU: "roof-shingle", Name: "Architectural shingle bundle", UnitCost: 32.00, LeadDays: 3, InStock: 600},
		{SKU: "roof-underlay", Name: "Synthetic roof underlayment roll", UnitCost: 89.00, LeadDays: 3, InStock: 150},
		{SKU: "window-vinyl", Name: "Vinyl window 36x48", UnitCost: 240.00, LeadDays: 10, InStock: 80},
		{SKU: "door-exterior", Name: "Insulated exterior door", UnitCost: 410.00, LeadDays: 7, InStock: 40},
		{SKU: "pipe-pvc-40", Name: "PVC pipe schedule 40, 10ft", UnitCost: 9.60, LeadDays: 1, InStock: 800},
		{SKU: "pipe-pex-half", Name: "PEX tubing 1/2in, 100ft", UnitCost: 38.00, LeadDays: 2, InStock: 220},
		{SKU: "wire-12awg", Name: "Copper wire 12 AWG, 250ft", UnitCost: 92.00, LeadDays: 2, InStock: 300},
		{SKU: "panel-200a", Name: "Load center 200A", UnitCost: 310.00, LeadDays: 5, InStock: 25},
		{SKU: "duct-flex", Name: "Flexible duct 8in, 25ft", UnitCost: 46.00, LeadDays: 2, InStock: 180},
		{SKU: "insulation-batt", Name: "Fiberglass batt R-19 bundle", UnitCost: 54.00, LeadDays: 2, InStock: 350},
		{SKU: "drywall-sheet", Name: "Drywall 4x8 1/2in", UnitCost: 13.20, LeadDays: 1, InStock: 1500},
		{SKU: "paint-interior", Name: "Interior latex paint, 5gal", UnitCost: 118.00, LeadDays: 1, InStock: 200},
		{SKU: "trim-casing", Name: "Door casing 8ft", UnitCost: 11.40, LeadDays: 2, InStock: 700},
		{SKU: "fixture-sink", Name: "Kitchen sink, stainless", UnitCost: 185.00, LeadDays: 6, InStock: 30},
		{SKU: "fixture-light", Name: "LED ceiling fixture", UnitCost: 64.00, LeadDays: 4, InStock: 160},
	}
}
