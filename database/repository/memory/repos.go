package memory

import (
	"context"
	"sort"

	"marketplace/apperror"
	bookingRepo "marketplace/database/repository/booking"
	"marketplace/models"
)

func conflict(op, id string) error {
	return apperror.New(apperror.KindConflict, op, "document %s was modified concurrently", id)
}

type BookingRepo struct{ s *Store }

func (r *BookingRepo) Create(ctx context.Context, b *models.Booking) error {
	return r.s.write(ctx, func(j *journal) error {
		if _, ok := r.s.bookings[b.ID]; ok {
			return apperror.New(apperror.KindAlreadyExists, "bookings.Create", "booking %s exists", b.ID)
		}
		r.s.bookings[b.ID] = *b
		j.record(func() { delete(r.s.bookings, b.ID) })
		return nil
	})
}

func (r *BookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var (
		b  models.Booking
		ok bool
	)
	r.s.read(ctx, func() { b, ok = r.s.bookings[id] })
	if !ok {
		return nil, apperror.NotFound("bookings.GetByID", "booking %s not found", id)
	}
	return &b, nil
}

func (r *BookingRepo) Update(ctx context.Context, b *models.Booking) error {
	return r.s.write(ctx, func(j *journal) error {
		cur, ok := r.s.bookings[b.ID]
		if !ok {
			return apperror.NotFound("bookings.Update", "booking %s not found", b.ID)
		}
		if cur.Version != b.Version {
			return conflict("bookings.Update", b.ID)
		}
		b.Version++
		r.s.bookings[b.ID] = *b
		j.record(func() { r.s.bookings[cur.ID] = cur })
		return nil
	})
}

func (r *BookingRepo) List(ctx context.Context, filter bookingRepo.BookingFilter) ([]models.Booking, error) {
	var out []models.Booking
	r.s.read(ctx, func() {
		for _, b := range r.s.bookings {
			if filter.Matches(&b) {
				out = append(out, b)
			}
		}
	})
	sort.Slice(out, func(i, k int) bool {
		if out[i].CreatedAt.Equal(out[k].CreatedAt) {
			return out[i].ID < out[k].ID
		}
		return out[i].CreatedAt.After(out[k].CreatedAt)
	})
	return out, nil
}

type ProviderRepo struct{ s *Store }

func (r *ProviderRepo) Create(ctx context.Context, p *models.Provider) error {
	return r.s.write(ctx, func(j *journal) error {
		for _, existing := range r.s.providers {
			if existing.ID == p.ID || (p.Email != "" && existing.Email == p.Email) {
				return apperror.New(apperror.KindAlreadyExists, "providers.Create", "provider already exists")
			}
		}
		r.s.providers[p.ID] = *p
		j.record(func() { delete(r.s.providers, p.ID) })
		return nil
	})
}

func (r *ProviderRepo) GetByID(ctx context.Context, id string) (*models.Provider, error) {
	var (
		p  models.Provider
		ok bool
	)
	r.s.read(ctx, func() { p, ok = r.s.providers[id] })
	if !ok {
		return nil, apperror.NotFound("providers.GetByID", "provider %s not found", id)
	}
	return &p, nil
}

func (r *ProviderRepo) GetByEmail(ctx context.Context, email string) (*models.Provider, error) {
	var found *models.Provider
	r.s.read(ctx, func() {
		for _, p := range r.s.providers {
			if p.Email == email {
				p := p
				found = &p
				return
			}
		}
	})
	if found == nil {
		return nil, apperror.NotFound("providers.GetByEmail", "provider with email %s not found", email)
	}
	return found, nil
}

func (r *ProviderRepo) GetAll(ctx context.Context) ([]models.Provider, error) {
	var out []models.Provider
	r.s.read(ctx, func() {
		for _, p := range r.s.providers {
			out = append(out, p)
		}
	})
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

func (r *ProviderRepo) Update(ctx context.Context, p *models.Provider) error {
	return r.s.write(ctx, func(j *journal) error {
		cur, ok := r.s.providers[p.ID]
		if !ok {
			return apperror.NotFound("providers.Update", "provider %s not found", p.ID)
		}
		if cur.Version != p.Version {
			return conflict("providers.Update", p.ID)
		}
		p.Version++
		r.s.providers[p.ID] = *p
		j.record(func() { r.s.providers[cur.ID] = cur })
		return nil
	})
}

type UserRepo struct{ s *Store }

func (r *UserRepo) Create(ctx context.Context, c *models.Client) error {
	return r.s.write(ctx, func(j *journal) error {
		for _, existing := range r.s.clients {
			if existing.ID == c.ID || (c.Email != "" && existing.Email == c.Email) {
				return apperror.New(apperror.KindAlreadyExists, "users.Create", "user already exists")
			}
		}
		r.s.clients[c.ID] = *c
		j.record(func() { delete(r.s.clients, c.ID) })
		return nil
	})
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*models.Client, error) {
	var (
		c  models.Client
		ok bool
	)
	r.s.read(ctx, func() { c, ok = r.s.clients[id] })
	if !ok {
		return nil, apperror.NotFound("users.GetByID", "user %s not found", id)
	}
	return &c, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.Client, error) {
	var found *models.Client
	r.s.read(ctx, func() {
		for _, c := range r.s.clients {
			if c.Email == email {
				c := c
				found = &c
				return
			}
		}
	})
	if found == nil {
		return nil, apperror.NotFound("users.GetByEmail", "user with email %s not found", email)
	}
	return found, nil
}

func (r *UserRepo) Update(ctx context.Context, c *models.Client) error {
	return r.s.write(ctx, func(j *journal) error {
		cur, ok := r.s.clients[c.ID]
		if !ok {
			return apperror.NotFound("users.Update", "user %s not found", c.ID)
		}
		if cur.Version != c.Version {
			return conflict("users.Update", c.ID)
		}
		c.Version++
		r.s.clients[c.ID] = *c
		j.record(func() { r.s.clients[cur.ID] = cur })
		return nil
	})
}

type AvailabilityRepo struct{ s *Store }

func (r *AvailabilityRepo) Get(ctx context.Context, providerID string) (*models.AvailabilityRecord, error) {
	var rec *models.AvailabilityRecord
	r.s.read(ctx, func() { rec = r.s.availability[providerID].Clone() })
	if rec == nil {
		return nil, apperror.NotFound("availability.Get", "no availability record for provider %s", providerID)
	}
	return rec, nil
}

func (r *AvailabilityRepo) Save(ctx context.Context, rec *models.AvailabilityRecord) error {
	return r.s.write(ctx, func(j *journal) error {
		prev, existed := r.s.availability[rec.ProviderID]
		r.s.availability[rec.ProviderID] = rec.Clone()
		j.record(func() {
			if existed {
				r.s.availability[prev.ProviderID] = prev
			} else {
				delete(r.s.availability, rec.ProviderID)
			}
		})
		return nil
	})
}

type NotificationRepo struct{ s *Store }

func (r *NotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	return r.s.write(ctx, func(j *journal) error {
		r.s.notifications[n.ID] = *n
		j.record(func() { delete(r.s.notifications, n.ID) })
		return nil
	})
}

func (r *NotificationRepo) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	var (
		n  models.Notification
		ok bool
	)
	r.s.read(ctx, func() { n, ok = r.s.notifications[id] })
	if !ok {
		return nil, apperror.NotFound("notifications.GetByID", "notification %s not found", id)
	}
	return &n, nil
}

func (r *NotificationRepo) ListForTarget(ctx context.Context, role models.Role, targetID string, unreadOnly bool) ([]models.Notification, error) {
	var out []models.Notification
	r.s.read(ctx, func() {
		for _, n := range r.s.notifications {
			if n.TargetRole != role || n.TargetID != targetID || (unreadOnly && n.Read) {
				continue
			}
			out = append(out, n)
		}
	})
	sort.Slice(out, func(i, k int) bool {
		if out[i].CreatedAt.Equal(out[k].CreatedAt) {
			return out[i].ID < out[k].ID
		}
		return out[i].CreatedAt.After(out[k].CreatedAt)
	})
	return out, nil
}

func (r *NotificationRepo) MarkRead(ctx context.Context, id string, role models.Role, targetID string) error {
	return r.s.write(ctx, func(j *journal) error {
		n, ok := r.s.notifications[id]
		if !ok || n.TargetRole != role || n.TargetID != targetID {
			return apperror.NotFound("notifications.MarkRead", "notification %s not found", id)
		}
		prev := n
		n.Read = true
		r.s.notifications[id] = n
		j.record(func() { r.s.notifications[id] = prev })
		return nil
	})
}

type ReviewRepo struct{ s *Store }

func (r *ReviewRepo) Create(ctx context.Context, rev *models.Review) error {
	return r.s.write(ctx, func(j *journal) error {
		if _, ok := r.s.reviewByBooking[rev.BookingID]; ok {
			return apperror.New(apperror.KindAlreadyExists, "reviews.Create", "booking %s already reviewed", rev.BookingID)
		}
		r.s.reviews[rev.ID] = *rev
		r.s.reviewByBooking[rev.BookingID] = rev.ID
		j.record(func() {
			delete(r.s.reviews, rev.ID)
			delete(r.s.reviewByBooking, rev.BookingID)
		})
		return nil
	})
}

func (r *ReviewRepo) ListByProvider(ctx context.Context, providerID string) ([]models.Review, error) {
	var out []models.Review
	r.s.read(ctx, func() {
		for _, rev := range r.s.reviews {
			if rev.ProviderID == providerID {
				out = append(out, rev)
			}
		}
	})
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	return out, nil
}

type CatalogRepo struct{ s *Store }

func (r *CatalogRepo) Create(ctx context.Context, svc *models.ServiceOffering) error {
	return r.s.write(ctx, func(j *journal) error {
		if _, ok := r.s.services[svc.ID]; ok {
			return apperror.New(apperror.KindAlreadyExists, "services.Create", "service %s exists", svc.ID)
		}
		r.s.services[svc.ID] = *svc
		j.record(func() { delete(r.s.services, svc.ID) })
		return nil
	})
}

func (r *CatalogRepo) GetByID(ctx context.Context, id string) (*models.ServiceOffering, error) {
	var (
		svc models.ServiceOffering
		ok  bool
	)
	r.s.read(ctx, func() { svc, ok = r.s.services[id] })
	if !ok {
		return nil, apperror.NotFound("services.GetByID", "service %s not found", id)
	}
	return &svc, nil
}

func (r *CatalogRepo) ListByProvider(ctx context.Context, providerID string) ([]models.ServiceOffering, error) {
	var out []models.ServiceOffering
	r.s.read(ctx, func() {
		for _, svc := range r.s.services {
			if svc.ProviderID == providerID {
				out = append(out, svc)
			}
		}
	})
	sort.Slice(out, func(i, k int) bool {
		if out[i].CreatedAt.Equal(out[k].CreatedAt) {
			return out[i].ID < out[k].ID
		}
		return out[i].CreatedAt.After(out[k].CreatedAt)
	})
	return out, nil
}

func (r *CatalogRepo) Update(ctx context.Context, svc *models.ServiceOffering) error {
	return r.s.write(ctx, func(j *journal) error {
		cur, ok := r.s.services[svc.ID]
		if !ok {
			return apperror.NotFound("services.Update", "service %s not found", svc.ID)
		}
		if cur.Version != svc.Version {
			return conflict("services.Update", svc.ID)
		}
		svc.Version++
		r.s.services[svc.ID] = *svc
		j.record(func() { r.s.services[cur.ID] = cur })
		return nil
	})
}

func (r *CatalogRepo) Delete(ctx context.Context, id string) error {
	return r.s.write(ctx, func(j *journal) error {
		cur, ok := r.s.services[id]
		if !ok {
			return apperror.NotFound("services.Delete", "service %s not found", id)
		}
		delete(r.s.services, id)
		j.record(func() { r.s.services[id] = cur })
		return nil
	})
}

// SubscriptionRepo keys subscriptions by client.
type SubscriptionRepo struct{ s *Store }

func (r *SubscriptionRepo) Create(ctx context.Context, sub *models.Subscription) error {
	return r.s.write(ctx, func(j *journal) error {
		if _, ok := r.s.subscriptions[sub.ClientID]; ok {
			return apperror.New(apperror.KindAlreadyExists, "subscriptions.Create", "client %s already subscribed", sub.ClientID)
		}
		r.s.subscriptions[sub.ClientID] = *sub
		j.record(func() { delete(r.s.subscriptions, sub.ClientID) })
		return nil
	})
}

func (r *SubscriptionRepo) GetByClient(ctx context.Context, clientID string) (*models.Subscription, error) {
	var (
		sub models.Subscription
		ok  bool
	)
	r.s.read(ctx, func() { sub, ok = r.s.subscriptions[clientID] })
	if !ok {
		return nil, apperror.NotFound("subscriptions.GetByClient", "no subscription for client %s", clientID)
	}
	return &sub, nil
}

func (r *SubscriptionRepo) Update(ctx context.Context, sub *models.Subscription) error {
	return r.s.write(ctx, func(j *journal) error {
		cur, ok := r.s.subscriptions[sub.ClientID]
		if !ok || cur.ID != sub.ID {
			return apperror.NotFound("subscriptions.Update", "subscription %s not found", sub.ID)
		}
		if cur.Version != sub.Version {
			return conflict("subscriptions.Update", sub.ID)
		}
		sub.Version++
		r.s.subscriptions[sub.ClientID] = *sub
		j.record(func() { r.s.subscriptions[cur.ClientID] = cur })
		return nil
	})
}
