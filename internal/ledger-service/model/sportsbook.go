package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Sportsbook é uma casa de apostas; o nome é único sem diferenciar maiúsculas
type Sportsbook struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DisplayName *string   `json:"-"`
	WebsiteURL  *string   `json:"website_url"`
	LogoURL     *string   `json:"logo_url"`
	IsActive    bool      `json:"is_active"`
	Country     *string   `json:"country"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MarshalJSON expõe display_name caindo para o nome quando vazio
func (s Sportsbook) MarshalJSON() ([]byte, error) {
	type alias Sportsbook
	display := s.Name
	if s.DisplayName != nil && *s.DisplayName != "" {
		display = *s.DisplayName
	}
	return json.Marshal(struct {
		alias
		DisplayName string `json:"display_name"`
	}{alias(s), display})
}

type SportsbookUsage struct {
	SportsbookID   string          `json:"sportsbook_id"`
	SportsbookName string          `json:"sportsbook_name"`
	BetCount       int             `json:"bet_count"`
	TotalStake     decimal.Decimal `json:"total_stake"`
	AvgOdds        float64         `json:"avg_odds"`
}

type SportsbookStats struct {
	TotalSportsbooks    int               `json:"total_sportsbooks"`
	ActiveSportsbooks   int               `json:"active_sportsbooks"`
	InactiveSportsbooks int               `json:"inactive_sportsbooks"`
	TopUsed             []SportsbookUsage `json:"top_used_sportsbooks"`
}
