package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TxDeposit    = "deposit"
	TxWithdrawal = "withdrawal"

	TxPending   = "pending"
	TxCompleted = "completed"
	TxFailed    = "failed"
)

var (
	ErrInvalidTxType   = errors.New(`transaction_type must be either "deposit" or "withdrawal"`)
	ErrInvalidTxStatus = errors.New(`status must be one of "pending", "completed", "failed"`)
)

func ValidTxType(t string) error {
	if t != TxDeposit && t != TxWithdrawal {
		return ErrInvalidTxType
	}
	return nil
}

func ValidTxStatus(s string) error {
	switch s {
	case TxPending, TxCompleted, TxFailed:
		return nil
	}
	return ErrInvalidTxStatus
}

// Transaction é um depósito ou saque numa casa, com imposto e tarifas informados pelo usuário
type Transaction struct {
	ID                 string          `json:"id"`
	TransactionType    string          `json:"transaction_type"`
	SportsbookID       *string         `json:"sportsbook_id"`
	Sportsbook         *string         `json:"sportsbook"`
	AccountID          *string         `json:"account_id"`
	Account            *string         `json:"account"`
	AccountName        *string         `json:"account_name"`
	Amount             decimal.Decimal `json:"amount"`
	Tax                decimal.Decimal `json:"tax"`
	TransactionCharges decimal.Decimal `json:"transaction_charges"`
	PaymentMethod      *string         `json:"payment_method"`
	ReferenceID        *string         `json:"reference_id"`
	Status             string          `json:"status"`
	DateCreated        time.Time       `json:"date_created"`
	DateProcessed      *time.Time      `json:"date_processed"`
	Notes              *string         `json:"notes"`
}

// MarkStatus troca o status; completed sem data de processamento recebe now
func (t *Transaction) MarkStatus(status string, now time.Time) {
	t.Status = status
	if status == TxCompleted && t.DateProcessed == nil {
		p := now
		t.DateProcessed = &p
	}
}

type SportsbookFlow struct {
	Deposits        decimal.Decimal `json:"deposits"`
	Withdrawals     decimal.Decimal `json:"withdrawals"`
	Net             decimal.Decimal `json:"net"`
	DepositCount    int             `json:"deposit_count"`
	WithdrawalCount int             `json:"withdrawal_count"`
}

type TxStats struct {
	TotalDeposits     decimal.Decimal            `json:"total_deposits"`
	TotalWithdrawals  decimal.Decimal            `json:"total_withdrawals"`
	NetPosition       decimal.Decimal            `json:"net_position"`
	TotalTax          decimal.Decimal            `json:"total_tax"`
	TotalCharges      decimal.Decimal            `json:"total_charges"`
	DepositCount      int                        `json:"deposit_count"`
	WithdrawalCount   int                        `json:"withdrawal_count"`
	TotalTransactions int                        `json:"total_transactions"`
	ByBook            map[string]*SportsbookFlow `json:"sportsbook_breakdown"`
}

// ComputeTxStats agrega transações concluídas.
// net_position = saques − depósitos − impostos − tarifas; por casa, net = depósitos − saques.
func ComputeTxStats(list []Transaction) TxStats {
	s := TxStats{ByBook: map[string]*SportsbookFlow{}}
	for _, t := range list {
		if t.Status != TxCompleted {
			continue
		}
		s.TotalTransactions++
		s.TotalTax = s.TotalTax.Add(t.Tax)
		s.TotalCharges = s.TotalCharges.Add(t.TransactionCharges)

		name := "Unknown"
		if t.Sportsbook != nil {
			name = *t.Sportsbook
		}
		f, ok := s.ByBook[name]
		if !ok {
			f = &SportsbookFlow{}
			s.ByBook[name] = f
		}

		if t.TransactionType == TxDeposit {
			s.TotalDeposits = s.TotalDeposits.Add(t.Amount)
			s.DepositCount++
			f.Deposits = f.Deposits.Add(t.Amount)
			f.DepositCount++
		} else {
			s.TotalWithdrawals = s.TotalWithdrawals.Add(t.Amount)
			s.WithdrawalCount++
			f.Withdrawals = f.Withdrawals.Add(t.Amount)
			f.WithdrawalCount++
		}
		f.Net = f.Deposits.Sub(f.Withdrawals)
	}

	s.NetPosition = s.TotalWithdrawals.Sub(s.TotalDeposits).Sub(s.TotalTax).Sub(s.TotalCharges).Round(2)
	s.TotalDeposits = s.TotalDeposits.Round(2)
	s.TotalWithdrawals = s.TotalWithdrawals.Round(2)
	s.TotalTax = s.TotalTax.Round(2)
	s.TotalCharges = s.TotalCharges.Round(2)
	return s
}
