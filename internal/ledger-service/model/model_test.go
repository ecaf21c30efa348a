package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectAccountType(t *testing.T) {
	cases := map[string]string{
		"joao@mail.com":    AccountEmail,
		"+55 (11) 9999-00": AccountPhone,
		"11999990000":      AccountPhone,
		"joao_bet":         AccountEmail,
		"joao@localhost":   AccountEmail,
		"":                 AccountEmail,
	}
	for in, want := range cases {
		assert.Equal(t, want, DetectAccountType(in), in)
	}
}

func TestSportsbookJSON_DisplayNameFallsBackToName(t *testing.T) {
	b, err := json.Marshal(Sportsbook{ID: "1", Name: "bet365"})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"display_name":"bet365"`)

	d := "Bet 365"
	b, err = json.Marshal(Sportsbook{ID: "1", Name: "bet365", DisplayName: &d})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"display_name":"Bet 365"`)
	assert.Contains(t, string(b), `"name":"bet365"`)
}

func TestComputeTxStats(t *testing.T) {
	sb := "bet365"
	dec := decimal.RequireFromString
	list := []Transaction{
		{TransactionType: TxDeposit, Sportsbook: &sb, Amount: dec("1000"), Tax: dec("50"), TransactionCharges: dec("115"), Status: TxCompleted},
		{TransactionType: TxWithdrawal, Sportsbook: &sb, Amount: dec("1500"), Status: TxCompleted},
		{TransactionType: TxDeposit, Amount: dec("200"), Status: TxCompleted},
		{TransactionType: TxDeposit, Amount: dec("999"), Status: TxPending},
	}

	s := ComputeTxStats(list)
	assert.Equal(t, 3, s.TotalTransactions)
	assert.Equal(t, "1200", s.TotalDeposits.String())
	assert.Equal(t, "1500", s.TotalWithdrawals.String())
	// 1500 − 1200 − 50 − 115
	assert.Equal(t, "135", s.NetPosition.String())
	assert.Equal(t, 2, s.DepositCount)
	assert.Equal(t, 1, s.WithdrawalCount)

	require.Contains(t, s.ByBook, "bet365")
	assert.Equal(t, "-500", s.ByBook["bet365"].Net.String())
	require.Contains(t, s.ByBook, "Unknown")
	assert.Equal(t, 1, s.ByBook["Unknown"].DepositCount)
}

func TestMarkStatus_CompletedKeepsFirstProcessedDate(t *testing.T) {
	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tx := Transaction{}
	tx.MarkStatus(TxPending, first)
	assert.Nil(t, tx.DateProcessed)

	tx.MarkStatus(TxCompleted, first)
	require.NotNil(t, tx.DateProcessed)
	tx.MarkStatus(TxCompleted, first.Add(time.Hour))
	assert.Equal(t, first, *tx.DateProcessed)
}

func TestValidators(t *testing.T) {
	assert.NoError(t, ValidTxType(TxDeposit))
	assert.ErrorIs(t, ValidTxType("transfer"), ErrInvalidTxType)
	assert.NoError(t, ValidTxStatus(TxFailed))
	assert.ErrorIs(t, ValidTxStatus("done"), ErrInvalidTxStatus)
}
