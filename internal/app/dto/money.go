package dto

import "rentbook/internal/domain/shared/money"

// MoneyDTO carries amounts as decimal strings so clients never see floats.
type MoneyDTO struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{
		Amount:   value.Decimal(),
		Currency: value.Currency,
	}
}

// Message is the result of commands that only report what happened.
type Message struct {
	Message string `json:"message"`
}

// Ownership answers an IsXOwner query.
type Ownership struct {
	Owner bool `json:"owner"`
}
