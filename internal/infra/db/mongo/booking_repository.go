package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "rentbook/internal/domain/booking"
	domainproperty "rentbook/internal/domain/property"
	"rentbook/internal/domain/shared/daterange"
	domainuser "rentbook/internal/domain/user"
)

type BookingRepository struct {
	col   *mongo.Collection
	locks *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{
		col:   db.Collection(bookingsCollection),
		locks: db.Collection(propertyLocksCollection),
	}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Insert bumps the property lock document before checking for overlaps, so
// two transactions inserting on the same property conflict on that write
// and one of them aborts.
func (r *BookingRepository) Insert(ctx context.Context, b *domainbooking.Booking) error {
	if err := r.LockProperty(ctx, b.PropertyID); err != nil {
		return err
	}
	n, err := r.col.CountDocuments(ctx, overlapFilter(b.PropertyID, b.Range, b.ID))
	if err != nil {
		return err
	}
	if n > 0 {
		return domainbooking.ErrDatesOverlap
	}
	b.Version = 1
	if _, err := r.col.InsertOne(ctx, newBookingDocument(b)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainbooking.ErrConcurrentUpdate
		}
		return mapWriteConflict(err)
	}
	return nil
}

// Save updates the mutable fields under optimistic versioning. The payment
// and review back-references are owned by AttachPayment / AttachReview.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	if b.Status.Active() {
		if err := r.LockProperty(ctx, b.PropertyID); err != nil {
			return err
		}
		n, err := r.col.CountDocuments(ctx, overlapFilter(b.PropertyID, b.Range, b.ID))
		if err != nil {
			return err
		}
		if n > 0 {
			return domainbooking.ErrDatesOverlap
		}
	}
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	update := bson.M{"$set": bson.M{
		"start":       doc.Start,
		"end":         doc.End,
		"total_price": doc.TotalPrice,
		"status":      doc.Status,
		"updated_at":  doc.UpdatedAt,
		"version":     b.Version + 1,
	}}
	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return mapWriteConflict(err)
	}
	if res.MatchedCount == 0 {
		return domainbooking.ErrConcurrentUpdate
	}
	b.Version++
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id domainbooking.ID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return mapWriteConflict(err)
	}
	if res.DeletedCount == 0 {
		return domainbooking.ErrNotFound
	}
	return nil
}

func (r *BookingRepository) AttachPayment(ctx context.Context, id domainbooking.ID, paymentID string) error {
	return r.setField(ctx, id, "payment_id", paymentID)
}

func (r *BookingRepository) AttachReview(ctx context.Context, id domainbooking.ID, reviewID string) error {
	return r.setField(ctx, id, "review_id", reviewID)
}

func (r *BookingRepository) setField(ctx context.Context, id domainbooking.ID, field, value string) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": string(id)}, bson.M{"$set": bson.M{field: value}})
	if err != nil {
		return mapWriteConflict(err)
	}
	if res.MatchedCount == 0 {
		return domainbooking.ErrNotFound
	}
	return nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID domainuser.ID) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"user_id": string(userID)})
}

func (r *BookingRepository) ListByProperty(ctx context.Context, propertyID domainproperty.ID) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"property_id": string(propertyID)})
}

func (r *BookingRepository) Overlapping(ctx context.Context, propertyID domainproperty.ID, dr daterange.DateRange, exclude domainbooking.ID) ([]*domainbooking.Booking, error) {
	return r.find(ctx, overlapFilter(propertyID, dr, exclude))
}

// LockProperty writes the property's lock document inside the session
// transaction. Any other transaction touching the same document fails
// with a write conflict until this one ends.
func (r *BookingRepository) LockProperty(ctx context.Context, propertyID domainproperty.ID) error {
	_, err := r.locks.UpdateOne(ctx,
		bson.M{"_id": string(propertyID)},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.Update().SetUpsert(true),
	)
	return mapWriteConflict(err)
}

func (r *BookingRepository) find(ctx context.Context, filter bson.M) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var docs []bookingDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainbooking.Booking, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toAggregate())
	}
	return out, nil
}

// overlapFilter matches active bookings whose closed range intersects dr.
func overlapFilter(propertyID domainproperty.ID, dr daterange.DateRange, exclude domainbooking.ID) bson.M {
	filter := bson.M{
		"property_id": string(propertyID),
		"status":      bson.M{"$ne": string(domainbooking.StatusCancelled)},
		"start":       bson.M{"$lte": dr.End.UnixMilli()},
		"end":         bson.M{"$gte": dr.Start.UnixMilli()},
	}
	if exclude != "" {
		filter["_id"] = bson.M{"$ne": string(exclude)}
	}
	return filter
}

// mapWriteConflict turns a transient transaction conflict into the
// retryable domain conflict.
func mapWriteConflict(err error) error {
	if err == nil {
		return nil
	}
	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) && serverErr.HasErrorLabel("TransientTransactionError") {
		return domainbooking.ErrConcurrentUpdate
	}
	return err
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
