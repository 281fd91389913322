package storefront

import (
	"ecostore/internal/domain"

	"github.com/shopspring/decimal"
)

// CartItem is one product in the cart with the quantity to buy.
type CartItem struct {
	domain.Product
	Quantity int `json:"quantity"`
}

// Subtotal is price times quantity, rounded to cents.
func (c CartItem) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(c.Price).Mul(decimal.NewFromInt(int64(c.Quantity))).Round(2)
}

func cartTotal(items []CartItem) float64 {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total.InexactFloat64()
}

// Cart returns the cart entries in the order they were first added.
func (s *Store) Cart() []CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]CartItem(nil), s.cart...)
}

// CartTotal sums price times quantity over the cart. It is computed on
// every call.
func (s *Store) CartTotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cartTotal(s.cart)
}

// CartCount is the number of units in the cart.
func (s *Store) CartCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, item := range s.cart {
		count += item.Quantity
	}
	return count
}

// AddToCart adds one unit of p, creating the entry if needed.
func (s *Store) AddToCart(p domain.Product) {
	s.update(func() {
		for i := range s.cart {
			if s.cart[i].ID == p.ID {
				s.cart[i].Quantity++
				return
			}
		}
		s.cart = append(s.cart, CartItem{Product: p, Quantity: 1})
	})
	s.Notify("Added to cart", KindSuccess)
}

// UpdateCartItem sets the quantity of product id; zero or less removes it.
// Unknown ids are ignored.
func (s *Store) UpdateCartItem(id int64, quantity int) {
	if quantity <= 0 {
		s.update(func() { s.removeLocked(id) })
		return
	}

	s.update(func() {
		for i := range s.cart {
			if s.cart[i].ID == id {
				s.cart[i].Quantity = quantity
			}
		}
	})
}

// RemoveFromCart drops product id from the cart.
func (s *Store) RemoveFromCart(id int64) {
	s.update(func() { s.removeLocked(id) })
	s.Notify("Removed from cart", KindSuccess)
}

// ClearCart empties the cart.
func (s *Store) ClearCart() {
	s.update(func() { s.cart = []CartItem{} })
}

func (s *Store) removeLocked(id int64) {
	kept := make([]CartItem, 0, len(s.cart))
	for _, item := range s.cart {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	s.cart = kept
}
