package mongo

import (
	"time"

	domainbooking "rentbook/internal/domain/booking"
	domainpayment "rentbook/internal/domain/payment"
	domainproperty "rentbook/internal/domain/property"
	domainreviews "rentbook/internal/domain/reviews"
	"rentbook/internal/domain/shared/daterange"
	"rentbook/internal/domain/shared/money"
	domainuser "rentbook/internal/domain/user"
)

type moneyDocument struct {
	Amount   int64  `bson:"amount"`
	Currency string `bson:"currency"`
}

func newMoneyDocument(m money.Money) moneyDocument {
	return moneyDocument{Amount: m.Amount, Currency: m.Currency}
}

func (d moneyDocument) toMoney() money.Money {
	return money.Money{Amount: d.Amount, Currency: d.Currency}
}

// bookingDocument stores calendar dates as UTC-midnight unix millis so the
// overlap query is a pair of integer comparisons.
type bookingDocument struct {
	ID         string        `bson:"_id"`
	PropertyID string        `bson:"property_id"`
	UserID     string        `bson:"user_id"`
	Start      int64         `bson:"start"`
	End        int64         `bson:"end"`
	TotalPrice moneyDocument `bson:"total_price"`
	Status     string        `bson:"status"`
	PaymentID  string        `bson:"payment_id"`
	ReviewID   string        `bson:"review_id"`
	BookedAt   int64         `bson:"booked_at"`
	UpdatedAt  int64         `bson:"updated_at"`
	Version    int64         `bson:"version"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:         string(b.ID),
		PropertyID: string(b.PropertyID),
		UserID:     string(b.UserID),
		Start:      b.Range.Start.UnixMilli(),
		End:        b.Range.End.UnixMilli(),
		TotalPrice: newMoneyDocument(b.TotalPrice),
		Status:     string(b.Status),
		PaymentID:  b.PaymentID,
		ReviewID:   b.ReviewID,
		BookedAt:   b.BookedAt.UnixMilli(),
		UpdatedAt:  b.UpdatedAt.UnixMilli(),
		Version:    b.Version,
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:         domainbooking.ID(d.ID),
		PropertyID: domainproperty.ID(d.PropertyID),
		UserID:     domainuser.ID(d.UserID),
		Range:      daterange.DateRange{Start: timestampToTime(d.Start), End: timestampToTime(d.End)},
		TotalPrice: d.TotalPrice.toMoney(),
		Status:     domainbooking.Status(d.Status),
		PaymentID:  d.PaymentID,
		ReviewID:   d.ReviewID,
		BookedAt:   timestampToTime(d.BookedAt),
		UpdatedAt:  timestampToTime(d.UpdatedAt),
		Version:    d.Version,
	}
}

type paymentDocument struct {
	ID            string        `bson:"_id"`
	BookingID     string        `bson:"booking_id"`
	PayerID       string        `bson:"payer_id"`
	Amount        moneyDocument `bson:"amount"`
	Status        string        `bson:"status"`
	Method        string        `bson:"method"`
	TransactionID string        `bson:"transaction_id,omitempty"`
	PaidAt        int64         `bson:"paid_at"`
	UpdatedAt     int64         `bson:"updated_at"`
}

func newPaymentDocument(p *domainpayment.Payment) paymentDocument {
	return paymentDocument{
		ID:            string(p.ID),
		BookingID:     string(p.BookingID),
		PayerID:       string(p.PayerID),
		Amount:        newMoneyDocument(p.Amount),
		Status:        string(p.Status),
		Method:        string(p.Method),
		TransactionID: p.TransactionID,
		PaidAt:        p.PaidAt.UnixMilli(),
		UpdatedAt:     p.UpdatedAt.UnixMilli(),
	}
}

func (d paymentDocument) toAggregate() *domainpayment.Payment {
	return &domainpayment.Payment{
		ID:            domainpayment.ID(d.ID),
		BookingID:     domainbooking.ID(d.BookingID),
		PayerID:       domainuser.ID(d.PayerID),
		Amount:        d.Amount.toMoney(),
		Status:        domainpayment.Status(d.Status),
		Method:        domainpayment.Method(d.Method),
		TransactionID: d.TransactionID,
		PaidAt:        timestampToTime(d.PaidAt),
		UpdatedAt:     timestampToTime(d.UpdatedAt),
	}
}

type reviewDocument struct {
	ID         string `bson:"_id"`
	BookingID  string `bson:"booking_id"`
	PropertyID string `bson:"property_id"`
	UserID     string `bson:"user_id"`
	Rating     int    `bson:"rating"`
	Comment    string `bson:"comment"`
	ReviewedAt int64  `bson:"reviewed_at"`
	UpdatedAt  int64  `bson:"updated_at"`
}

func newReviewDocument(r *domainreviews.Review) reviewDocument {
	return reviewDocument{
		ID:         string(r.ID),
		BookingID:  string(r.BookingID),
		PropertyID: string(r.PropertyID),
		UserID:     string(r.UserID),
		Rating:     r.Rating,
		Comment:    r.Comment,
		ReviewedAt: r.ReviewedAt.UnixMilli(),
		UpdatedAt:  r.UpdatedAt.UnixMilli(),
	}
}

func (d reviewDocument) toAggregate() *domainreviews.Review {
	return &domainreviews.Review{
		ID:         domainreviews.ID(d.ID),
		BookingID:  domainbooking.ID(d.BookingID),
		PropertyID: domainproperty.ID(d.PropertyID),
		UserID:     domainuser.ID(d.UserID),
		Rating:     d.Rating,
		Comment:    d.Comment,
		ReviewedAt: timestampToTime(d.ReviewedAt),
		UpdatedAt:  timestampToTime(d.UpdatedAt),
	}
}

type propertyDocument struct {
	ID           string        `bson:"_id"`
	OwnerID      string        `bson:"owner_id"`
	Title        string        `bson:"title"`
	NightlyPrice moneyDocument `bson:"nightly_price"`
	Available    bool          `bson:"available"`
	ListedAt     int64         `bson:"listed_at"`
}

func newPropertyDocument(p *domainproperty.Property) propertyDocument {
	return propertyDocument{
		ID:           string(p.ID),
		OwnerID:      string(p.OwnerID),
		Title:        p.Title,
		NightlyPrice: newMoneyDocument(p.NightlyPrice),
		Available:    p.Available,
		ListedAt:     p.ListedAt.UnixMilli(),
	}
}

func (d propertyDocument) toEntity() *domainproperty.Property {
	return &domainproperty.Property{
		ID:           domainproperty.ID(d.ID),
		OwnerID:      domainproperty.OwnerID(d.OwnerID),
		Title:        d.Title,
		NightlyPrice: d.NightlyPrice.toMoney(),
		Available:    d.Available,
		ListedAt:     timestampToTime(d.ListedAt),
	}
}

type userDocument struct {
	ID        string `bson:"_id"`
	Username  string `bson:"username"`
	CreatedAt int64  `bson:"created_at"`
}

func newUserDocument(u *domainuser.User) userDocument {
	return userDocument{ID: string(u.ID), Username: domainuser.NormalizeUsername(u.Username), CreatedAt: u.CreatedAt.UnixMilli()}
}

func (d userDocument) toEntity() *domainuser.User {
	return &domainuser.User{ID: domainuser.ID(d.ID), Username: d.Username, CreatedAt: timestampToTime(d.CreatedAt)}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
