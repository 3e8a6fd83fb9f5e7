package postgres

import (
	"context"

	"gorm.io/gorm"

	domainbooking "rentbook/internal/domain/booking"
	domainpayment "rentbook/internal/domain/payment"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) ByID(ctx context.Context, id domainpayment.ID) (*domainpayment.Payment, error) {
	return r.take(ctx, "id = ?", string(id))
}

func (r *PaymentRepository) ByBooking(ctx context.Context, bookingID domainbooking.ID) (*domainpayment.Payment, error) {
	return r.take(ctx, "booking_id = ?", string(bookingID))
}

func (r *PaymentRepository) Insert(ctx context.Context, p *domainpayment.Payment) error {
	row := newPaymentRow(p)
	return translate(conn(ctx, r.db).Create(&row).Error, nil, domainpayment.ErrAlreadyExists)
}

// Save leaves the booking link and amount alone; both are fixed at creation.
func (r *PaymentRepository) Save(ctx context.Context, p *domainpayment.Payment) error {
	row := newPaymentRow(p)
	res := conn(ctx, r.db).Model(&paymentRow{}).Where("id = ?", row.ID).Updates(map[string]any{
		"status":         row.Status,
		"method":         row.Method,
		"transaction_id": row.TransactionID,
		"updated_at":     row.UpdatedAt,
	})
	if res.Error != nil {
		return translate(res.Error, nil, nil)
	}
	if res.RowsAffected == 0 {
		return domainpayment.ErrNotFound
	}
	return nil
}

func (r *PaymentRepository) Delete(ctx context.Context, id domainpayment.ID) error {
	res := conn(ctx, r.db).Delete(&paymentRow{}, "id = ?", string(id))
	if res.Error != nil {
		return translate(res.Error, nil, nil)
	}
	if res.RowsAffected == 0 {
		return domainpayment.ErrNotFound
	}
	return nil
}

func (r *PaymentRepository) take(ctx context.Context, query string, arg string) (*domainpayment.Payment, error) {
	var row paymentRow
	if err := conn(ctx, r.db).Take(&row, query, arg).Error; err != nil {
		return nil, translate(err, domainpayment.ErrNotFound, nil)
	}
	return row.toAggregate(), nil
}

var _ domainpayment.Repository = (*PaymentRepository)(nil)
