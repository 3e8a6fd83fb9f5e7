package postgres

import (
	"context"

	"gorm.io/gorm"

	domainbooking "rentbook/internal/domain/booking"
	domainreviews "rentbook/internal/domain/reviews"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) ByID(ctx context.Context, id domainreviews.ID) (*domainreviews.Review, error) {
	return r.take(ctx, "id = ?", string(id))
}

func (r *ReviewRepository) ByBooking(ctx context.Context, bookingID domainbooking.ID) (*domainreviews.Review, error) {
	return r.take(ctx, "booking_id = ?", string(bookingID))
}

func (r *ReviewRepository) Insert(ctx context.Context, review *domainreviews.Review) error {
	row := newReviewRow(review)
	return translate(conn(ctx, r.db).Create(&row).Error, nil, domainreviews.ErrDuplicateReview)
}

func (r *ReviewRepository) Save(ctx context.Context, review *domainreviews.Review) error {
	row := newReviewRow(review)
	res := conn(ctx, r.db).Model(&reviewRow{}).Where("id = ?", row.ID).Updates(map[string]any{
		"rating":     row.Rating,
		"comment":    row.Comment,
		"updated_at": row.UpdatedAt,
	})
	if res.Error != nil {
		return translate(res.Error, nil, nil)
	}
	if res.RowsAffected == 0 {
		return domainreviews.ErrNotFound
	}
	return nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id domainreviews.ID) error {
	res := conn(ctx, r.db).Delete(&reviewRow{}, "id = ?", string(id))
	if res.Error != nil {
		return translate(res.Error, nil, nil)
	}
	if res.RowsAffected == 0 {
		return domainreviews.ErrNotFound
	}
	return nil
}

func (r *ReviewRepository) take(ctx context.Context, query string, arg string) (*domainreviews.Review, error) {
	var row reviewRow
	if err := conn(ctx, r.db).Take(&row, query, arg).Error; err != nil {
		return nil, translate(err, domainreviews.ErrNotFound, nil)
	}
	return row.toAggregate(), nil
}

var _ domainreviews.Repository = (*ReviewRepository)(nil)
