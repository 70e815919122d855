// Package cart holds the products the customer picked before checkout.
package cart

import (
	"sync"

	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/storefront/internal/apierr"
	"github.com/vasiliy-maslov/storefront/internal/product"
)

// Line is one product in the cart. Quantity always stays within [1, Stock].
type Line struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Stock     int             `json:"stock"`
}

// Total is Price * Quantity.
func (l Line) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Store keeps lines in the order they were first added.
type Store struct {
	mu    sync.RWMutex
	lines []Line
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) indexLocked(productID int64) int {
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// AddItem puts qty units of p into the cart. Adding a product that is already
// there raises its quantity, capped at p.Stock. qty below 1 counts as 1.
func (s *Store) AddItem(p product.Product, qty int) error {
	if p.Stock < 1 {
		return apierr.Validation(p.Name + " is out of stock")
	}
	if p.Price.IsNegative() {
		return apierr.Validation(p.Name + " has an invalid price")
	}
	if qty < 1 {
		qty = 1
	}
	qty = min(qty, p.Stock)

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(p.ID); i >= 0 {
		line := &s.lines[i]
		line.Name = p.Name
		line.Price = p.Price
		line.Stock = p.Stock
		// остаток мог уменьшиться с прошлого добавления
		room := p.Stock - line.Quantity
		if room <= 0 {
			line.Quantity = p.Stock
			return nil
		}
		line.Quantity += min(qty, room)
		return nil
	}

	s.lines = append(s.lines, Line{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Quantity:  qty,
		Stock:     p.Stock,
	})
	return nil
}

// UpdateQuantity ignores quantities below 1 and unknown products.
func (s *Store) UpdateQuantity(productID int64, qty int) {
	if qty < 1 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(productID); i >= 0 {
		s.lines[i].Quantity = min(qty, s.lines[i].Stock)
	}
}

func (s *Store) RemoveItem(productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(productID); i >= 0 {
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
	}
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
}

// Lines returns a copy of the cart contents.
func (s *Store) Lines() []Line {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Store) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines) == 0
}

// Count is the total number of units.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}

func (s *Store) Subtotal() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for _, l := range s.lines {
		total = total.Add(l.Total())
	}
	return total
}
