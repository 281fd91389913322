package storefront

import (
	"context"
	"sync"
	"time"

	"ecostore/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultNotificationDelay is how long a notification stays visible.
const DefaultNotificationDelay = 3 * time.Second

// Catalog is the part of the API the store needs.
type Catalog interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	SearchProducts(ctx context.Context, query, category string) ([]domain.Product, error)
	CreateProduct(ctx context.Context, fields domain.ProductFields) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, fields domain.ProductFields) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// Kind classifies a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Notification is a transient message shown to the user.
type Notification struct {
	ID      uuid.UUID
	Message string
	Kind    Kind
}

// Snapshot is a consistent copy of the store state.
type Snapshot struct {
	Products     []domain.Product
	Cart         []CartItem
	Loading      bool
	Notification *Notification
	CartTotal    float64
}

// Option configures a Store.
type Option func(*Store)

// WithNotificationDelay overrides DefaultNotificationDelay.
func WithNotificationDelay(d time.Duration) Option {
	return func(s *Store) { s.notificationDelay = d }
}

// WithChangeListener registers fn to receive a snapshot after every state
// change. Listeners run outside the store lock and may call back into it.
func WithChangeListener(fn func(Snapshot)) Option {
	return func(s *Store) { s.listeners = append(s.listeners, fn) }
}

// WithLogger sets the logger used for failed operations.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// Store holds the client-side catalog state: the product list, the cart,
// a loading flag and the current notification.
type Store struct {
	api               Catalog
	logger            *zap.Logger
	notificationDelay time.Duration
	listeners         []func(Snapshot)

	mu           sync.Mutex
	products     []domain.Product
	cart         []CartItem
	inflight     int
	notification *Notification
	clearTimer   *time.Timer
}

// NewStore creates an empty store backed by api.
func NewStore(api Catalog, opts ...Option) *Store {
	s := &Store{
		api:               api,
		logger:            zap.NewNop(),
		notificationDelay: DefaultNotificationDelay,
		products:          []domain.Product{},
		cart:              []CartItem{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// update runs fn under the lock and notifies listeners afterwards.
func (s *Store) update(fn func()) {
	s.mu.Lock()
	fn()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	for _, listener := range s.listeners {
		listener(snap)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Products:  append([]domain.Product(nil), s.products...),
		Cart:      append([]CartItem(nil), s.cart...),
		Loading:   s.inflight > 0,
		CartTotal: cartTotal(s.cart),
	}
	if s.notification != nil {
		n := *s.notification
		snap.Notification = &n
	}
	return snap
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Products returns the product list as of the last successful fetch and
// local reconciliations.
func (s *Store) Products() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Product(nil), s.products...)
}

// Loading reports whether an API call is in progress.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

// Notification returns the visible notification, if any.
func (s *Store) Notification() *Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notification == nil {
		return nil
	}
	n := *s.notification
	return &n
}

// Notify shows message and schedules it to clear. A newer notification
// replaces it and cancels its pending clear.
func (s *Store) Notify(message string, kind Kind) {
	s.update(func() {
		if s.clearTimer != nil {
			s.clearTimer.Stop()
		}

		id := uuid.New()
		s.notification = &Notification{ID: id, Message: message, Kind: kind}
		s.clearTimer = time.AfterFunc(s.notificationDelay, func() { s.clearNotification(id) })
	})
}

// clearNotification only clears the notification it was scheduled for, so a
// timer that fired while a newer one was being set is harmless.
func (s *Store) clearNotification(id uuid.UUID) {
	s.mu.Lock()
	if s.notification == nil || s.notification.ID != id {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.update(func() {
		if s.notification != nil && s.notification.ID == id {
			s.notification = nil
			s.clearTimer = nil
		}
	})
}

// Close cancels the pending notification clear.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clearTimer != nil {
		s.clearTimer.Stop()
		s.clearTimer = nil
	}
}

func (s *Store) begin() {
	s.update(func() { s.inflight++ })
}

func (s *Store) end(apply func()) {
	s.update(func() {
		s.inflight--
		if apply != nil {
			apply()
		}
	})
}

func (s *Store) fail(message string, err error) {
	s.logger.Warn(message, zap.Error(err))
	s.Notify(message, KindError)
}

// FetchProducts replaces the product list with the server listing. On
// failure the previous list is kept.
func (s *Store) FetchProducts(ctx context.Context) error {
	s.begin()
	products, err := s.api.ListProducts(ctx)
	if err != nil {
		s.end(nil)
		s.fail("Error loading products", err)
		return err
	}

	s.end(func() { s.products = products })
	return nil
}

// SearchProducts replaces the product list with the matching products.
func (s *Store) SearchProducts(ctx context.Context, query, category string) error {
	s.begin()
	products, err := s.api.SearchProducts(ctx, query, category)
	if err != nil {
		s.end(nil)
		s.fail("Error searching products", err)
		return err
	}

	s.end(func() { s.products = products })
	return nil
}

// AddProduct creates a product and prepends it to the list.
func (s *Store) AddProduct(ctx context.Context, fields domain.ProductFields) (*domain.Product, error) {
	s.begin()
	product, err := s.api.CreateProduct(ctx, fields)
	if err != nil {
		s.end(nil)
		s.fail("Error adding product", err)
		return nil, err
	}

	s.end(func() { s.products = append([]domain.Product{*product}, s.products...) })
	s.Notify("Product added successfully", KindSuccess)
	return product, nil
}

// UpdateProduct saves fields for id and replaces the matching list entry.
func (s *Store) UpdateProduct(ctx context.Context, id int64, fields domain.ProductFields) (*domain.Product, error) {
	s.begin()
	product, err := s.api.UpdateProduct(ctx, id, fields)
	if err != nil {
		s.end(nil)
		s.fail("Error updating product", err)
		return nil, err
	}

	s.end(func() {
		for i := range s.products {
			if s.products[i].ID == id {
				s.products[i] = *product
			}
		}
	})
	s.Notify("Product updated successfully", KindSuccess)
	return product, nil
}

// DeleteProduct deletes id and drops it from the list.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	s.begin()
	if err := s.api.DeleteProduct(ctx, id); err != nil {
		s.end(nil)
		s.fail("Error deleting product", err)
		return err
	}

	s.end(func() {
		kept := make([]domain.Product, 0, len(s.products))
		for _, p := range s.products {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		s.products = kept
	})
	s.Notify("Product deleted successfully", KindSuccess)
	return nil
}
