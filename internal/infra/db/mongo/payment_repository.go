package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	domainbooking "rentbook/internal/domain/booking"
	domainpayment "rentbook/internal/domain/payment"
)

// PaymentRepository relies on the unique booking_id index for the
// one-payment-per-booking rule.
type PaymentRepository struct {
	col *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) *PaymentRepository {
	return &PaymentRepository{col: db.Collection(paymentsCollection)}
}

func (r *PaymentRepository) ByID(ctx context.Context, id domainpayment.ID) (*domainpayment.Payment, error) {
	return r.findOne(ctx, bson.M{"_id": string(id)})
}

func (r *PaymentRepository) ByBooking(ctx context.Context, bookingID domainbooking.ID) (*domainpayment.Payment, error) {
	return r.findOne(ctx, bson.M{"booking_id": string(bookingID)})
}

func (r *PaymentRepository) Insert(ctx context.Context, p *domainpayment.Payment) error {
	if _, err := r.col.InsertOne(ctx, newPaymentDocument(p)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainpayment.ErrAlreadyExists
		}
		return mapWriteConflict(err)
	}
	return nil
}

func (r *PaymentRepository) Save(ctx context.Context, p *domainpayment.Payment) error {
	doc := newPaymentDocument(p)
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": bson.M{
		"status":         doc.Status,
		"method":         doc.Method,
		"transaction_id": doc.TransactionID,
		"updated_at":     doc.UpdatedAt,
	}})
	if err != nil {
		return mapWriteConflict(err)
	}
	if res.MatchedCount == 0 {
		return domainpayment.ErrNotFound
	}
	return nil
}

func (r *PaymentRepository) Delete(ctx context.Context, id domainpayment.ID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return mapWriteConflict(err)
	}
	if res.DeletedCount == 0 {
		return domainpayment.ErrNotFound
	}
	return nil
}

func (r *PaymentRepository) findOne(ctx context.Context, filter bson.M) (*domainpayment.Payment, error) {
	var doc paymentDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainpayment.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

var _ domainpayment.Repository = (*PaymentRepository)(nil)
