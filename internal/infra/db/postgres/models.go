package postgres

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

type propertyRow struct {
	ID           string `gorm:"primaryKey;size:64"`
	OwnerID      string `gorm:"size:64;index"`
	Title        string
	NightlyMinor int64     `gorm:"not null"`
	Currency     string    `gorm:"size:3;not null"`
	Available    bool      `gorm:"not null;default:true"`
	ListedAt     time.Time `gorm:"not null"`
}

func (propertyRow) TableName() string { return "properties" }

func newPropertyRow(p *domainproperty.Property) propertyRow {
	return propertyRow{
		ID:           string(p.ID),
		OwnerID:      string(p.OwnerID),
		Title:        p.Title,
		NightlyMinor: p.NightlyPrice.Amount,
		Currency:     p.NightlyPrice.Currency,
		Available:    p.Available,
		ListedAt:     p.ListedAt.UTC(),
	}
}

func (r propertyRow) toEntity() *domainproperty.Property {
	return &domainproperty.Property{
		ID:           domainproperty.ID(r.ID),
		OwnerID:      domainproperty.OwnerID(r.OwnerID),
		Title:        r.Title,
		NightlyPrice: money.Money{Amount: r.NightlyMinor, Currency: r.Currency},
		Available:    r.Available,
		ListedAt:     r.ListedAt.UTC(),
	}
}

type userRow struct {
	ID        string    `gorm:"primaryKey;size:64"`
	Username  string    `gorm:"size:128;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (userRow) TableName() string { return "users" }

func newUserRow(u *domainuser.User) userRow {
	return userRow{ID: string(u.ID), Username: domainuser.NormalizeUsername(u.Username), CreatedAt: u.CreatedAt.UTC()}
}

func (r userRow) toEntity() *domainuser.User {
	return &domainuser.User{ID: domainuser.ID(r.ID), Username: r.Username, CreatedAt: r.CreatedAt.UTC()}
}

// bookingRow keeps the range as two DATE columns; the exclusion constraint
// created by Migrate reads them as a closed daterange.
type bookingRow struct {
	ID         string    `gorm:"primaryKey;size:64"`
	PropertyID string    `gorm:"size:64;not null;index"`
	UserID     string    `gorm:"size:64;not null;index"`
	StartDate  time.Time `gorm:"type:date;not null"`
	EndDate    time.Time `gorm:"type:date;not null"`
	TotalMinor int64     `gorm:"not null"`
	Currency   string    `gorm:"size:3;not null"`
	Status     string    `gorm:"size:16;not null"`
	PaymentID  string    `gorm:"size:64"`
	ReviewID   string    `gorm:"size:64"`
	BookedAt   time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null;autoUpdateTime:false"`
	Version    int64     `gorm:"not null;default:1"`
}

func (bookingRow) TableName() string { return "bookings" }

func newBookingRow(b *domainbooking.Booking) bookingRow {
	return bookingRow{
		ID:         string(b.ID),
		PropertyID: string(b.PropertyID),
		UserID:     string(b.UserID),
		StartDate:  b.Range.Start,
		EndDate:    b.Range.End,
		TotalMinor: b.TotalPrice.Amount,
		Currency:   b.TotalPrice.Currency,
		Status:     string(b.Status),
		PaymentID:  b.PaymentID,
		ReviewID:   b.ReviewID,
		BookedAt:   b.BookedAt.UTC(),
		UpdatedAt:  b.UpdatedAt.UTC(),
		Version:    b.Version,
	}
}

func (r bookingRow) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:         domainbooking.ID(r.ID),
		PropertyID: domainproperty.ID(r.PropertyID),
		UserID:     domainuser.ID(r.UserID),
		Range:      daterange.DateRange{Start: daterange.Day(r.StartDate), End: daterange.Day(r.EndDate)},
		TotalPrice: money.Money{Amount: r.TotalMinor, Currency: r.Currency},
		Status:     domainbooking.Status(r.Status),
		PaymentID:  r.PaymentID,
		ReviewID:   r.ReviewID,
		BookedAt:   r.BookedAt.UTC(),
		UpdatedAt:  r.UpdatedAt.UTC(),
		Version:    r.Version,
	}
}

type paymentRow struct {
	ID            string    `gorm:"primaryKey;size:64"`
	BookingID     string    `gorm:"size:64;not null;uniqueIndex"`
	PayerID       string    `gorm:"size:64;not null;index"`
	AmountMinor   int64     `gorm:"not null"`
	Currency      string    `gorm:"size:3;not null"`
	Status        string    `gorm:"size:16;not null"`
	Method        string    `gorm:"size:16;not null"`
	TransactionID string    `gorm:"size:128"`
	PaidAt        time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (paymentRow) TableName() string { return "payments" }

func newPaymentRow(p *domainpayment.Payment) paymentRow {
	return paymentRow{
		ID:            string(p.ID),
		BookingID:     string(p.BookingID),
		PayerID:       string(p.PayerID),
		AmountMinor:   p.Amount.Amount,
		Currency:      p.Amount.Currency,
		Status:        string(p.Status),
		Method:        string(p.Method),
		TransactionID: p.TransactionID,
		PaidAt:        p.PaidAt.UTC(),
		UpdatedAt:     p.UpdatedAt.UTC(),
	}
}

func (r paymentRow) toAggregate() *domainpayment.Payment {
	return &domainpayment.Payment{
		ID:            domainpayment.ID(r.ID),
		BookingID:     domainbooking.ID(r.BookingID),
		PayerID:       domainuser.ID(r.PayerID),
		Amount:        money.Money{Amount: r.AmountMinor, Currency: r.Currency},
		Status:        domainpayment.Status(r.Status),
		Method:        domainpayment.Method(r.Method),
		TransactionID: r.TransactionID,
		PaidAt:        r.PaidAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
}

type reviewRow struct {
	ID         string    `gorm:"primaryKey;size:64"`
	BookingID  string    `gorm:"size:64;not null;uniqueIndex"`
	PropertyID string    `gorm:"size:64;not null;index"`
	UserID     string    `gorm:"size:64;not null"`
	Rating     int       `gorm:"not null;check:rating BETWEEN 1 AND 5"`
	Comment    string    `gorm:"type:text"`
	ReviewedAt time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (reviewRow) TableName() string { return "reviews" }

func newReviewRow(r *domainreviews.Review) reviewRow {
	return reviewRow{
		ID:         string(r.ID),
		BookingID:  string(r.BookingID),
		PropertyID: string(r.PropertyID),
		UserID:     string(r.UserID),
		Rating:     r.Rating,
		Comment:    r.Comment,
		ReviewedAt: r.ReviewedAt.UTC(),
		UpdatedAt:  r.UpdatedAt.UTC(),
	}
}

func (r reviewRow) toAggregate() *domainreviews.Review {
	return &domainreviews.Review{
		ID:         domainreviews.ID(r.ID),
		BookingID:  domainbooking.ID(r.BookingID),
		PropertyID: domainproperty.ID(r.PropertyID),
		UserID:     domainuser.ID(r.UserID),
		Rating:     r.Rating,
		Comment:    r.Comment,
		ReviewedAt: r.ReviewedAt.UTC(),
		UpdatedAt:  r.UpdatedAt.UTC(),
	}
}
