package model

import (
	"strings"
	"time"
	"unicode"
)

const (
	AccountEmail = "email"
	AccountPhone = "phone"
)

// Account é uma conta (e-mail ou telefone) usada nas casas de apostas
type Account struct {
	ID                string    `json:"id"`
	AccountIdentifier string    `json:"account_identifier"`
	AccountType       string    `json:"account_type"`
	Name              string    `json:"name"`
	IsActive          bool      `json:"is_active"`
	Notes             *string   `json:"notes"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// DetectAccountType classifica o identificador. Com '@' e '.' é e-mail;
// só dígitos (ignorando + - ( ) e espaços) é telefone; na dúvida, e-mail.
func DetectAccountType(identifier string) string {
	if strings.Contains(identifier, "@") && strings.Contains(identifier, ".") {
		return AccountEmail
	}
	digits := strings.NewReplacer("+", "", "-", "", " ", "", "(", "", ")", "").Replace(identifier)
	if digits != "" && strings.IndexFunc(digits, func(r rune) bool { return !unicode.IsDigit(r) }) < 0 {
		return AccountPhone
	}
	return AccountEmail
}

type AccountStats struct {
	TotalAccounts    int `json:"total_accounts"`
	ActiveAccounts   int `json:"active_accounts"`
	InactiveAccounts int `json:"inactive_accounts"`
	EmailAccounts    int `json:"email_accounts"`
	PhoneAccounts    int `json:"phone_accounts"`
}
