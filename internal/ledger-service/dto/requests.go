package dto

import "github.com/shopspring/decimal"

// Campos ponteiro: ausente no JSON = não altera

type AccountRequest struct {
	AccountIdentifier *string `json:"account_identifier"`
	AccountType       *string `json:"account_type"`
	Name              *string `json:"name"`
	IsActive          *bool   `json:"is_active"`
	Notes             *string `json:"notes"`
}

type SportsbookRequest struct {
	Name        *string `json:"name"`
	DisplayName *string `json:"display_name"`
	WebsiteURL  *string `json:"website_url"`
	LogoURL     *string `json:"logo_url"`
	IsActive    *bool   `json:"is_active"`
	Country     *string `json:"country"`
	Description *string `json:"description"`
}

type BulkSportsbooksRequest struct {
	Sportsbooks []SportsbookRequest `json:"sportsbooks"`
}

// ResolveSportsbookRequest aceita id ou nome
type ResolveSportsbookRequest struct {
	Sportsbook string `json:"sportsbook"`
}

// TransactionRequest: sportsbook e account aceitam id ou nome/identificador
type TransactionRequest struct {
	TransactionType    *string          `json:"transaction_type"`
	Sportsbook         *string          `json:"sportsbook"`
	Account            *string          `json:"account"`
	Amount             *decimal.Decimal `json:"amount"`
	Tax                *decimal.Decimal `json:"tax"`
	TransactionCharges *decimal.Decimal `json:"transaction_charges"`
	PaymentMethod      *string          `json:"payment_method"`
	ReferenceID        *string          `json:"reference_id"`
	Status             *string          `json:"status"`
	Notes              *string          `json:"notes"`
}
