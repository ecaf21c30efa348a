package dto

import "github.com/radieske/arb-bet-tracker/internal/ledger-service/model"

type Pagination struct {
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

func NewPagination(page, perPage, total int) Pagination {
	pages := 0
	if perPage > 0 {
		pages = (total + perPage - 1) / perPage
	}
	return Pagination{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: pages,
		HasNext:    page*perPage < total,
		HasPrev:    page > 1,
	}
}

type AccountsPage struct {
	Accounts   []model.Account `json:"accounts"`
	Pagination Pagination      `json:"pagination"`
}

type SportsbooksPage struct {
	Sportsbooks []model.Sportsbook `json:"sportsbooks"`
	Pagination  *Pagination        `json:"pagination,omitempty"`
}

type TransactionsPage struct {
	Transactions []model.Transaction `json:"transactions"`
	Pagination   Pagination          `json:"pagination"`
}

type ToggleResponse struct {
	Message    string           `json:"message"`
	Sportsbook model.Sportsbook `json:"sportsbook"`
}

type BulkResponse struct {
	Message      string             `json:"message"`
	CreatedCount int                `json:"created_count"`
	SkippedCount int                `json:"skipped_count"`
	SkippedNames []string           `json:"skipped_names"`
	Created      []model.Sportsbook `json:"created_sportsbooks"`
}

// RefResponse é o par devolvido pelos endpoints de resolução
type RefResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
