package postgres

import (
	"context"

	"gorm.io/gorm"

	domainbooking "rentbook/internal/domain/booking"
	domainproperty "rentbook/internal/domain/property"
	"rentbook/internal/domain/shared/daterange"
	domainuser "rentbook/internal/domain/user"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	var row bookingRow
	if err := conn(ctx, r.db).Take(&row, "id = ?", string(id)).Error; err != nil {
		return nil, translate(err, domainbooking.ErrNotFound, nil)
	}
	return row.toAggregate(), nil
}

// Insert takes the property's advisory lock before checking for overlaps.
// The bookings_no_overlap constraint rejects anything that slips past.
func (r *BookingRepository) Insert(ctx context.Context, b *domainbooking.Booking) error {
	if err := r.checkOverlap(ctx, b); err != nil {
		return err
	}
	b.Version = 1
	row := newBookingRow(b)
	if err := conn(ctx, r.db).Create(&row).Error; err != nil {
		return translate(err, nil, domainbooking.ErrConcurrentUpdate)
	}
	return nil
}

// Save updates range, price and status under optimistic versioning.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	if b.Status.Active() {
		if err := r.checkOverlap(ctx, b); err != nil {
			return err
		}
	}
	row := newBookingRow(b)
	res := conn(ctx, r.db).Model(&bookingRow{}).
		Where("id = ? AND version = ?", row.ID, b.Version).
		Updates(map[string]any{
			"start_date":  row.StartDate,
			"end_date":    row.EndDate,
			"total_minor": row.TotalMinor,
			"currency":    row.Currency,
			"status":      row.Status,
			"updated_at":  row.UpdatedAt,
			"version":     b.Version + 1,
		})
	if res.Error != nil {
		return translate(res.Error, nil, nil)
	}
	if res.RowsAffected == 0 {
		return domainbooking.ErrConcurrentUpdate
	}
	b.Version++
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id domainbooking.ID) error {
	res := conn(ctx, r.db).Delete(&bookingRow{}, "id = ?", string(id))
	if res.Error != nil {
		return translate(res.Error, nil, nil)
	}
	if res.RowsAffected == 0 {
		return domainbooking.ErrNotFound
	}
	return nil
}

func (r *BookingRepository) AttachPayment(ctx context.Context, id domainbooking.ID, paymentID string) error {
	return r.setColumn(ctx, id, "payment_id", paymentID)
}

func (r *BookingRepository) AttachReview(ctx context.Context, id domainbooking.ID, reviewID string) error {
	return r.setColumn(ctx, id, "review_id", reviewID)
}

func (r *BookingRepository) setColumn(ctx context.Context, id domainbooking.ID, column, value string) error {
	res := conn(ctx, r.db).Model(&bookingRow{}).Where("id = ?", string(id)).Update(column, value)
	if res.Error != nil {
		return translate(res.Error, nil, nil)
	}
	if res.RowsAffected == 0 {
		return domainbooking.ErrNotFound
	}
	return nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID domainuser.ID) ([]*domainbooking.Booking, error) {
	return r.find(conn(ctx, r.db).Where("user_id = ?", string(userID)))
}

func (r *BookingRepository) ListByProperty(ctx context.Context, propertyID domainproperty.ID) ([]*domainbooking.Booking, error) {
	return r.find(conn(ctx, r.db).Where("property_id = ?", string(propertyID)))
}

func (r *BookingRepository) Overlapping(ctx context.Context, propertyID domainproperty.ID, dr daterange.DateRange, exclude domainbooking.ID) ([]*domainbooking.Booking, error) {
	return r.find(overlapScope(conn(ctx, r.db), propertyID, dr, exclude))
}

// LockProperty takes a transaction-scoped advisory lock keyed on the
// property id. Outside a transaction the lock is released immediately.
func (r *BookingRepository) LockProperty(ctx context.Context, propertyID domainproperty.ID) error {
	err := conn(ctx, r.db).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "property:"+string(propertyID)).Error
	return translate(err, nil, nil)
}

func (r *BookingRepository) checkOverlap(ctx context.Context, b *domainbooking.Booking) error {
	if err := r.LockProperty(ctx, b.PropertyID); err != nil {
		return err
	}
	var n int64
	err := overlapScope(conn(ctx, r.db).Model(&bookingRow{}), b.PropertyID, b.Range, b.ID).Count(&n).Error
	if err != nil {
		return translate(err, nil, nil)
	}
	if n > 0 {
		return domainbooking.ErrDatesOverlap
	}
	return nil
}

func (r *BookingRepository) find(q *gorm.DB) ([]*domainbooking.Booking, error) {
	var rows []bookingRow
	if err := q.Order("start_date ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, translate(err, nil, nil)
	}
	out := make([]*domainbooking.Booking, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toAggregate())
	}
	return out, nil
}

// overlapScope matches active bookings whose closed range intersects dr.
func overlapScope(q *gorm.DB, propertyID domainproperty.ID, dr daterange.DateRange, exclude domainbooking.ID) *gorm.DB {
	q = q.Where("property_id = ? AND status <> ? AND start_date <= ? AND end_date >= ?",
		string(propertyID), string(domainbooking.StatusCancelled), dr.End, dr.Start)
	if exclude != "" {
		q = q.Where("id <> ?", string(exclude))
	}
	return q
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
