// Package memory is an in-process document store used for development and
// tests. It implements every repository interface and database.Transactor.
package memory

import (
	"context"
	"sync"

	"marketplace/models"
)

type journalKey struct{}

// journal collects undo steps for the running transaction.
type journal struct {
	undo []func()
}

func (j *journal) record(f func()) {
	if j != nil {
		j.undo = append(j.undo, f)
	}
}

// Store holds all collections behind one lock. Transactions are serialized
// by txMu and rolled back from their journal on error.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	bookings        map[string]models.Booking
	providers       map[string]models.Provider
	clients         map[string]models.Client
	availability    map[string]*models.AvailabilityRecord
	notifications   map[string]models.Notification
	reviews         map[string]models.Review
	reviewByBooking map[string]string
	services        map[string]models.ServiceOffering
	subscriptions   map[string]models.Subscription
}

func NewStore() *Store {
	return &Store{
		bookings:        make(map[string]models.Booking),
		providers:       make(map[string]models.Provider),
		clients:         make(map[string]models.Client),
		availability:    make(map[string]*models.AvailabilityRecord),
		notifications:   make(map[string]models.Notification),
		reviews:         make(map[string]models.Review),
		reviewByBooking: make(map[string]string),
		services:        make(map[string]models.ServiceOffering),
		subscriptions:   make(map[string]models.Subscription),
	}
}

func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(journalKey{}).(*journal); ok {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	j := &journal{}
	err := fn(context.WithValue(ctx, journalKey{}, j))
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		s.mu.Lock()
		for i := len(j.undo) - 1; i >= 0; i-- {
			j.undo[i]()
		}
		s.mu.Unlock()
	}
	return err
}

// write runs fn under the write lock. Outside a transaction it also takes
// txMu so a single write never interleaves with a running transaction.
func (s *Store) write(ctx context.Context, fn func(j *journal) error) error {
	j, inTx := ctx.Value(journalKey{}).(*journal)
	if !inTx {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(j)
}

// read runs fn under the read lock. Outside a transaction it waits for any
// running transaction to finish so uncommitted writes are never observed.
func (s *Store) read(ctx context.Context, fn func()) {
	if _, inTx := ctx.Value(journalKey{}).(*journal); !inTx {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn()
}

func (s *Store) Bookings() *BookingRepo           { return &BookingRepo{s: s} }
func (s *Store) Providers() *ProviderRepo         { return &ProviderRepo{s: s} }
func (s *Store) Users() *UserRepo                 { return &UserRepo{s: s} }
func (s *Store) Availability() *AvailabilityRepo  { return &AvailabilityRepo{s: s} }
func (s *Store) Notifications() *NotificationRepo { return &NotificationRepo{s: s} }
func (s *Store) Reviews() *ReviewRepo             { return &ReviewRepo{s: s} }
func (s *Store) Catalog() *CatalogRepo            { return &CatalogRepo{s: s} }
func (s *Store) Subscriptions() *SubscriptionRepo { return &SubscriptionRepo{s: s} }
