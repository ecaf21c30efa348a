package http

import (
	"net/http"
	"strings"

	"github.com/radieske/arb-bet-tracker/internal/ledger-service/dto"
	"github.com/radieske/arb-bet-tracker/internal/ledger-service/model"
	"github.com/radieske/arb-bet-tracker/internal/ledger-service/repo"
)

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repo.AccountFilter{
		Search:      q.Get("search"),
		AccountType: q.Get("account_type"),
		SortBy:      q.Get("sort_by"),
		SortOrder:   q.Get("sort_order"),
		Page:        page(r),
	}
	if v := q.Get("is_active"); v != "" {
		active := v == "true" || v == "1" || v == "yes"
		f.IsActive = &active
	}
	list, total, err := s.repo.ListAccounts(r.Context(), f)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	pg := f.Page.Norm()
	writeJSON(w, http.StatusOK, dto.AccountsPage{Accounts: list, Pagination: dto.NewPagination(pg.Page, pg.PerPage, total)})
}

func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	var req dto.AccountRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	ident, name := trimmed(req.AccountIdentifier), trimmed(req.Name)
	switch {
	case ident == nil:
		writeError(w, http.StatusBadRequest, "account_identifier is required")
		return
	case name == nil:
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	now := s.now()
	a := model.Account{
		AccountIdentifier: *ident,
		AccountType:       model.DetectAccountType(*ident),
		Name:              *name,
		IsActive:          true,
		Notes:             trimmed(req.Notes),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if t := trimmed(req.AccountType); t != nil {
		a.AccountType = *t
	}
	if req.IsActive != nil {
		a.IsActive = *req.IsActive
	}
	if err := s.repo.CreateAccount(r.Context(), &a); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	a, err := s.repo.GetAccount(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// updateAccount: trocar o identificador redetecta o tipo, salvo se account_type vier junto
func (s *Server) updateAccount(w http.ResponseWriter, r *http.Request) {
	var req dto.AccountRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	a, err := s.repo.GetAccount(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if req.AccountIdentifier != nil {
		ident := trimmed(req.AccountIdentifier)
		if ident == nil {
			writeError(w, http.StatusBadRequest, "account_identifier cannot be empty")
			return
		}
		a.AccountIdentifier = *ident
		a.AccountType = model.DetectAccountType(*ident)
	}
	if req.Name != nil {
		name := trimmed(req.Name)
		if name == nil {
			writeError(w, http.StatusBadRequest, "name cannot be empty")
			return
		}
		a.Name = *name
	}
	if req.AccountType != nil {
		a.AccountType = strings.TrimSpace(*req.AccountType)
	}
	if req.IsActive != nil {
		a.IsActive = *req.IsActive
	}
	if req.Notes != nil {
		a.Notes = trimmed(req.Notes)
	}
	a.UpdatedAt = s.now()

	if err := s.repo.UpdateAccount(r.Context(), &a); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.DeleteAccount(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	writeMessage(w, "account deleted")
}

func (s *Server) accountStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.repo.AccountStats(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// resolveAccount atende o bet-service: id ou identificador, 404 se não existe
func (s *Server) resolveAccount(w http.ResponseWriter, r *http.Request) {
	a, err := s.repo.ResolveAccount(r.Context(), r.URL.Query().Get("account"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.RefResponse{ID: a.ID, Name: a.AccountIdentifier})
}
