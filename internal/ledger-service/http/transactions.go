package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/radieske/arb-bet-tracker/internal/ledger-service/dto"
	"github.com/radieske/arb-bet-tracker/internal/ledger-service/model"
	"github.com/radieske/arb-bet-tracker/internal/ledger-service/repo"
)

func txFilter(r *http.Request) (repo.TxFilter, error) {
	q := r.URL.Query()
	f := repo.TxFilter{
		Type:         q.Get("type"),
		SportsbookID: q.Get("sportsbook_id"),
		AccountID:    q.Get("account_id"),
		Status:       q.Get("status"),
		Page:         page(r),
	}
	var err error
	if f.Start, err = parseTime(q.Get("start_date")); err != nil {
		return f, err
	}
	if f.End, err = parseTime(q.Get("end_date")); err != nil {
		return f, err
	}
	return f, nil
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	f, err := txFilter(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	list, total, err := s.repo.ListTransactions(r.Context(), f)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	pg := f.Page.Norm()
	writeJSON(w, http.StatusOK, dto.TransactionsPage{Transactions: list, Pagination: dto.NewPagination(pg.Page, pg.PerPage, total)})
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.repo.GetTransaction(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func nonNegative(field string, v *decimal.Decimal) (decimal.Decimal, error) {
	if v == nil {
		return decimal.Zero, nil
	}
	if v.IsNegative() {
		return decimal.Zero, badRequest(field + " cannot be negative")
	}
	return v.Round(2), nil
}

// apply copia os campos presentes do pedido para a transação
func (req txRequest) apply(t *model.Transaction) error {
	if req.TransactionType != nil {
		if err := model.ValidTxType(*req.TransactionType); err != nil {
			return badRequest(err.Error())
		}
		t.TransactionType = *req.TransactionType
	}
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return badRequest("amount must be greater than 0")
		}
		t.Amount = req.Amount.Round(2)
	}
	if req.Tax != nil {
		v, err := nonNegative("tax", req.Tax)
		if err != nil {
			return err
		}
		t.Tax = v
	}
	if req.TransactionCharges != nil {
		v, err := nonNegative("transaction_charges", req.TransactionCharges)
		if err != nil {
			return err
		}
		t.TransactionCharges = v
	}
	if req.PaymentMethod != nil {
		t.PaymentMethod = trimmed(req.PaymentMethod)
	}
	if req.ReferenceID != nil {
		t.ReferenceID = trimmed(req.ReferenceID)
	}
	if req.Notes != nil {
		t.Notes = trimmed(req.Notes)
	}
	if req.Status != nil {
		if err := model.ValidTxStatus(*req.Status); err != nil {
			return badRequest(err.Error())
		}
	}
	return nil
}

type txRequest dto.TransactionRequest

// createTransaction exige tipo, casa e valor; status padrão é completed
func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req txRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	switch {
	case req.TransactionType == nil:
		writeError(w, http.StatusBadRequest, "transaction_type is required")
		return
	case trimmed(req.Sportsbook) == nil:
		writeError(w, http.StatusBadRequest, "sportsbook is required")
		return
	case req.Amount == nil:
		writeError(w, http.StatusBadRequest, "amount is required")
		return
	}

	now := s.now()
	t := model.Transaction{DateCreated: now}
	if err := req.apply(&t); err != nil {
		s.fail(w, r, err)
		return
	}
	status := model.TxCompleted
	if req.Status != nil {
		status = *req.Status
	}
	t.MarkStatus(status, now)

	if err := s.repo.CreateTransaction(r.Context(), &t, repo.TxRefs{Sportsbook: req.Sportsbook, Account: req.Account}); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) updateTransaction(w http.ResponseWriter, r *http.Request) {
	var req txRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	t, err := s.repo.GetTransaction(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := req.apply(&t); err != nil {
		s.fail(w, r, err)
		return
	}
	now := s.now()
	if req.Status != nil {
		t.MarkStatus(*req.Status, now)
	}
	if err := s.repo.UpdateTransaction(r.Context(), &t, repo.TxRefs{Sportsbook: req.Sportsbook, Account: req.Account}, now); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	writeMessage(w, "transaction deleted")
}

// transactionStats considera só transações concluídas; datas filtram date_processed
func (s *Server) transactionStats(w http.ResponseWriter, r *http.Request) {
	f, err := txFilter(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	list, err := s.repo.CompletedTransactions(r.Context(), f)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.ComputeTxStats(list))
}
