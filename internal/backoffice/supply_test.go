package backoffice

import (
	"errors"
	"strings"
	"testing"
)

func TestQuotePricesWithoutReserving(t *testing.T) {
	house := NewSupplyHouse("acme-building-supply")

	quote, err := house.Quote("lumber-2x4", 100)
	if err != nil {
		t.Fatalf("Quote() error = %v", err)
	}
	if quote.Total != 425.0 {
		t.Errorf("quote total = %.2f, want 425.00", quote.Total)
	}
	if quote.Supplier != "acme-building-supply" {
		t.Errorf("quote supplier = %q, want %q", quote.Supplier, "acme-building-supply")
	}

	// Quoting twice must not touch stock.
	if _, err := house.Quote("lumber-2x4", 100); err != nil {
		t.Fatalf("second Quote() error = %v", err)
	}
	if _, err := house.Order("lumber-2x4", 5000); err != nil {
		t.Errorf("Order() after quotes error = %v, want full stock still available", err)
	}
}

func TestQuoteValidation(t *testing.T) {
	house := NewSupplyHouse("acme")

	tests := []struct {
		name        string
		sku         string
		quantity    int
		errContains string
	}{
		{"unknown sku", "unobtainium", 1, "does not carry"},
		{"zero quantity", "lumber-2x4", 0, "must be positive"},
		{"negative quantity", "lumber-2x4", -3, "must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := house.Quote(tt.sku, tt.quantity)
			if err == nil {
				t.Fatal("Quote() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("Quote() error = %v, want containing %q", err, tt.errContains)
			}
		})
	}
}

func TestOrderDecrementsStock(t *testing.T) {
	house := NewSupplyHouse("acme")

	if _, err := house.Order("panel-200a", 20); err != nil {
		t.Fatalf("Order() error = %v", err)
	}

	// 25 seeded, 20 taken: only 5 left.
	if _, err := house.Order("panel-200a", 6); !errors.Is(err, ErrOutOfStock) {
		t.Errorf("Order() error = %v, want ErrOutOfStock", err)
	}
	if _, err := house.Order("panel-200a", 5); err != nil {
		t.Errorf("Order() for remaining stock error = %v", err)
	}
}

func TestOrderOutOfStockLeavesStockAlone(t *testing.T) {
	house := NewSupplyHouse("acme")

	if _, err := house.Order("door-exterior", 41); !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("Order() error = %v, want ErrOutOfStock", err)
	}

	// A rejected order must not partially reserve.
	if _, err := house.Order("door-exterior", 40); err != nil {
		t.Errorf("Order() for full stock error = %v", err)
	}
}

func TestRestock(t *testing.T) {
	house := NewSupplyHouse("acme")

	if _, err := house.Order("fixture-sink", 30); err != nil {
		t.Fatalf("Order() error = %v", err)
	}
	if _, err := house.Order("fixture-sink", 1); !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("Order() on empty stock error = %v, want ErrOutOfStock", err)
	}

	if err := house.Restock("fixture-sink", 10); err != nil {
		t.Fatalf("Restock() error = %v", err)
	}
	if _, err := house.Order("fixture-sink", 10); err != nil {
		t.Errorf("Order() after restock error = %v", err)
	}

	if err := house.Restock("unobtainium", 10); err == nil {
		t.Error("Restock() of unknown sku error = nil, want error")
	}
}

func TestCatalogSortedCopy(t *testing.T) {
	house := NewSupplyHouse("acme")

	catalog := house.Catalog()
	if len(catalog) == 0 {
		t.Fatal("Catalog() is empty")
	}
	for i := 1; i < len(catalog); i++ {
		if catalog[i-1].SKU >= catalog[i].SKU {
			t.Fatalf("catalog not sorted: %q before %q", catalog[i-1].SKU, catalog[i].SKU)
		}
	}

	// Mutating the copy must not touch the house's stock.
	catalog[0].InStock = 0
	fresh := house.Catalog()
	if fresh[0].InStock == 0 {
		t.Error("Catalog() returned a live reference to internal state")
	}
}
