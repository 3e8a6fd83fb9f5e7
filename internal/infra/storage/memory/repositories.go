package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domainbooking "rentbook/internal/domain/booking"
	domainpayment "rentbook/internal/domain/payment"
	domainproperty "rentbook/internal/domain/property"
	domainreviews "rentbook/internal/domain/reviews"
	"rentbook/internal/domain/shared/daterange"
	domainuser "rentbook/internal/domain/user"
)

// PropertyRepository is an in-memory property directory. Records are copied
// in and out so callers never share state with the store.
type PropertyRepository struct {
	mu    sync.RWMutex
	items map[domainproperty.ID]*domainproperty.Property
}

func NewPropertyRepository() *PropertyRepository {
	return &PropertyRepository{items: make(map[domainproperty.ID]*domainproperty.Property)}
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperty.ID) (*domainproperty.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return nil, domainproperty.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *PropertyRepository) Save(ctx context.Context, p *domainproperty.Property) error {
	if p == nil || strings.TrimSpace(string(p.ID)) == "" {
		return domainproperty.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[p.ID] = p.Clone()
	return nil
}

// UserRepository indexes users by id and by normalized username.
type UserRepository struct {
	mu         sync.RWMutex
	items      map[domainuser.ID]*domainuser.User
	byUsername map[string]domainuser.ID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		items:      make(map[domainuser.ID]*domainuser.User),
		byUsername: make(map[string]domainuser.ID),
	}
}

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.items[id]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	return u.Clone(), nil
}

func (r *UserRepository) ByUsername(ctx context.Context, username string) (*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byUsername[domainuser.NormalizeUsername(username)]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	return r.items[id].Clone(), nil
}

func (r *UserRepository) Save(ctx context.Context, u *domainuser.User) error {
	if u == nil || strings.TrimSpace(string(u.ID)) == "" {
		return domainuser.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.items[u.ID]; ok {
		delete(r.byUsername, prev.Username)
	}
	r.items[u.ID] = u.Clone()
	r.byUsername[domainuser.NormalizeUsername(u.Username)] = u.ID
	return nil
}

// BookingRepository re-checks the overlap invariant under its own lock on
// every insert and range change, so two writers that both passed the
// handler-level check cannot both succeed.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.ID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.ID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	return b.Clone(), nil
}

func (r *BookingRepository) Insert(ctx context.Context, b *domainbooking.Booking) error {
	if b == nil || strings.TrimSpace(string(b.ID)) == "" {
		return domainbooking.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[b.ID]; exists {
		return domainbooking.ErrConcurrentUpdate
	}
	if domainbooking.FindConflict(r.snapshotLocked(), b.PropertyID, b.Range, b.ID) != nil {
		return domainbooking.ErrDatesOverlap
	}
	b.Version = 1
	r.items[b.ID] = b.Clone()
	return nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	if b == nil {
		return domainbooking.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[b.ID]
	if !ok {
		return domainbooking.ErrNotFound
	}
	if stored.Version != b.Version {
		return domainbooking.ErrConcurrentUpdate
	}
	if !stored.Range.Equal(b.Range) && b.Status.Active() {
		if domainbooking.FindConflict(r.snapshotLocked(), b.PropertyID, b.Range, b.ID) != nil {
			return domainbooking.ErrDatesOverlap
		}
	}
	next := b.Clone()
	next.PaymentID = stored.PaymentID
	next.ReviewID = stored.ReviewID
	next.Version = stored.Version + 1
	r.items[b.ID] = next
	b.Version = next.Version
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id domainbooking.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainbooking.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *BookingRepository) AttachPayment(ctx context.Context, id domainbooking.ID, paymentID string) error {
	return r.attach(id, func(b *domainbooking.Booking) { b.PaymentID = paymentID })
}

func (r *BookingRepository) AttachReview(ctx context.Context, id domainbooking.ID, reviewID string) error {
	return r.attach(id, func(b *domainbooking.Booking) { b.ReviewID = reviewID })
}

func (r *BookingRepository) attach(id domainbooking.ID, set func(*domainbooking.Booking)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[id]
	if !ok {
		return domainbooking.ErrNotFound
	}
	set(stored)
	return nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID domainuser.ID) ([]*domainbooking.Booking, error) {
	return r.list(func(b *domainbooking.Booking) bool { return b.UserID == userID }), nil
}

func (r *BookingRepository) ListByProperty(ctx context.Context, propertyID domainproperty.ID) ([]*domainbooking.Booking, error) {
	return r.list(func(b *domainbooking.Booking) bool { return b.PropertyID == propertyID }), nil
}

func (r *BookingRepository) Overlapping(ctx context.Context, propertyID domainproperty.ID, dr daterange.DateRange, exclude domainbooking.ID) ([]*domainbooking.Booking, error) {
	return r.list(func(b *domainbooking.Booking) bool {
		if b.PropertyID != propertyID || !b.Status.Active() {
			return false
		}
		if exclude != "" && b.ID == exclude {
			return false
		}
		return b.Range.Overlaps(dr)
	}), nil
}

// LockProperty is a no-op: Insert and Save already check under the store mutex.
func (r *BookingRepository) LockProperty(ctx context.Context, propertyID domainproperty.ID) error {
	return ctx.Err()
}

func (r *BookingRepository) list(keep func(*domainbooking.Booking) bool) []*domainbooking.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainbooking.Booking, 0)
	for _, b := range r.items {
		if keep(b) {
			out = append(out, b.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Range.Start.Equal(out[j].Range.Start) {
			return out[i].Range.Start.Before(out[j].Range.Start)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *BookingRepository) snapshotLocked() []*domainbooking.Booking {
	out := make([]*domainbooking.Booking, 0, len(r.items))
	for _, b := range r.items {
		out = append(out, b)
	}
	return out
}

// PaymentRepository keeps at most one payment per booking.
type PaymentRepository struct {
	mu        sync.RWMutex
	items     map[domainpayment.ID]*domainpayment.Payment
	byBooking map[domainbooking.ID]domainpayment.ID
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{
		items:     make(map[domainpayment.ID]*domainpayment.Payment),
		byBooking: make(map[domainbooking.ID]domainpayment.ID),
	}
}

func (r *PaymentRepository) ByID(ctx context.Context, id domainpayment.ID) (*domainpayment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return nil, domainpayment.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *PaymentRepository) ByBooking(ctx context.Context, bookingID domainbooking.ID) (*domainpayment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byBooking[bookingID]
	if !ok {
		return nil, domainpayment.ErrNotFound
	}
	return r.items[id].Clone(), nil
}

func (r *PaymentRepository) Insert(ctx context.Context, p *domainpayment.Payment) error {
	if p == nil || strings.TrimSpace(string(p.ID)) == "" {
		return domainpayment.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byBooking[p.BookingID]; exists {
		return domainpayment.ErrAlreadyExists
	}
	if _, exists := r.items[p.ID]; exists {
		return domainpayment.ErrAlreadyExists
	}
	r.items[p.ID] = p.Clone()
	r.byBooking[p.BookingID] = p.ID
	return nil
}

func (r *PaymentRepository) Save(ctx context.Context, p *domainpayment.Payment) error {
	if p == nil {
		return domainpayment.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[p.ID]
	if !ok {
		return domainpayment.ErrNotFound
	}
	next := p.Clone()
	next.BookingID = stored.BookingID
	next.Amount = stored.Amount
	r.items[p.ID] = next
	return nil
}

func (r *PaymentRepository) Delete(ctx context.Context, id domainpayment.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return domainpayment.ErrNotFound
	}
	delete(r.byBooking, p.BookingID)
	delete(r.items, id)
	return nil
}

// ReviewRepository keeps at most one review per booking.
type ReviewRepository struct {
	mu        sync.RWMutex
	items     map[domainreviews.ID]*domainreviews.Review
	byBooking map[domainbooking.ID]domainreviews.ID
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{
		items:     make(map[domainreviews.ID]*domainreviews.Review),
		byBooking: make(map[domainbooking.ID]domainreviews.ID),
	}
}

func (r *ReviewRepository) ByID(ctx context.Context, id domainreviews.ID) (*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	review, ok := r.items[id]
	if !ok {
		return nil, domainreviews.ErrNotFound
	}
	return review.Clone(), nil
}

func (r *ReviewRepository) ByBooking(ctx context.Context, bookingID domainbooking.ID) (*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byBooking[bookingID]
	if !ok {
		return nil, domainreviews.ErrNotFound
	}
	return r.items[id].Clone(), nil
}

func (r *ReviewRepository) Insert(ctx context.Context, review *domainreviews.Review) error {
	if review == nil || strings.TrimSpace(string(review.ID)) == "" {
		return domainreviews.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byBooking[review.BookingID]; exists {
		return domainreviews.ErrDuplicateReview
	}
	if _, exists := r.items[review.ID]; exists {
		return domainreviews.ErrDuplicateReview
	}
	r.items[review.ID] = review.Clone()
	r.byBooking[review.BookingID] = review.ID
	return nil
}

func (r *ReviewRepository) Save(ctx context.Context, review *domainreviews.Review) error {
	if review == nil {
		return domainreviews.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[review.ID]
	if !ok {
		return domainreviews.ErrNotFound
	}
	next := review.Clone()
	next.BookingID = stored.BookingID
	r.items[review.ID] = next
	return nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id domainreviews.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	review, ok := r.items[id]
	if !ok {
		return domainreviews.ErrNotFound
	}
	delete(r.byBooking, review.BookingID)
	delete(r.items, id)
	return nil
}

var (
	_ domainproperty.Repository = (*PropertyRepository)(nil)
	_ domainuser.Repository     = (*UserRepository)(nil)
	_ domainbooking.Repository  = (*BookingRepository)(nil)
	_ domainpayment.Repository  = (*PaymentRepository)(nil)
	_ domainreviews.Repository  = (*ReviewRepository)(nil)
)
