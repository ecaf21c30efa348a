package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/arb-bet-tracker/internal/ledger-service/dto"
	"github.com/radieske/arb-bet-tracker/internal/ledger-service/model"
	"github.com/radieske/arb-bet-tracker/internal/ledger-service/repo"
)

// fakeRepo implementa só o que os testes usam; o resto entra em pânico via Repo nil
type fakeRepo struct {
	Repo
	accounts  map[string]model.Account
	books     map[string]model.Sportsbook
	txs       []model.Transaction
	txFilter  repo.TxFilter
	lastRefs  repo.TxRefs
	createErr error
}

func newFake() *fakeRepo {
	return &fakeRepo{accounts: map[string]model.Account{}, books: map[string]model.Sportsbook{}}
}

func (f *fakeRepo) CreateAccount(_ context.Context, a *model.Account) error {
	if f.createErr != nil {
		return f.createErr
	}
	a.ID = "a1"
	f.accounts[a.ID] = *a
	return nil
}

func (f *fakeRepo) GetAccount(_ context.Context, id string) (model.Account, error) {
	a, ok := f.accounts[id]
	if !ok {
		return model.Account{}, repo.ErrNotFound
	}
	return a, nil
}

func (f *fakeRepo) UpdateAccount(_ context.Context, a *model.Account) error {
	f.accounts[a.ID] = *a
	return nil
}

func (f *fakeRepo) ResolveAccount(_ context.Context, input string) (model.Account, error) {
	for _, a := range f.accounts {
		if a.ID == input || a.AccountIdentifier == input {
			return a, nil
		}
	}
	return model.Account{}, repo.ErrNotFound
}

func (f *fakeRepo) ResolveSportsbook(_ context.Context, input string, now time.Time) (model.Sportsbook, error) {
	for _, s := range f.books {
		if strings.EqualFold(s.Name, input) {
			return s, nil
		}
	}
	s := model.Sportsbook{ID: fmt.Sprintf("s%d", len(f.books)+1), Name: input, IsActive: true, CreatedAt: now}
	f.books[s.ID] = s
	return s, nil
}

func (f *fakeRepo) ToggleSportsbook(_ context.Context, id string, _ time.Time) (model.Sportsbook, error) {
	s, ok := f.books[id]
	if !ok {
		return s, repo.ErrNotFound
	}
	s.IsActive = !s.IsActive
	f.books[id] = s
	return s, nil
}

func (f *fakeRepo) DeleteSportsbook(_ context.Context, id string) error {
	return fmt.Errorf("%w: referenced by 2 bet(s), deactivate it instead", repo.ErrInUse)
}

func (f *fakeRepo) CreateTransaction(_ context.Context, t *model.Transaction, refs repo.TxRefs) error {
	f.lastRefs = refs
	t.ID = "t1"
	f.txs = append(f.txs, *t)
	return nil
}

func (f *fakeRepo) CompletedTransactions(_ context.Context, flt repo.TxFilter) ([]model.Transaction, error) {
	f.txFilter = flt
	return f.txs, nil
}

func (f *fakeRepo) ListTransactions(_ context.Context, flt repo.TxFilter) ([]model.Transaction, int, error) {
	f.txFilter = flt
	return f.txs, len(f.txs), nil
}

func newTestServer(r Repo) http.Handler {
	s := NewServer(zap.NewNop(), r)
	s.now = func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) }
	return s.Router()
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestCreateAccount_DetectsType(t *testing.T) {
	f := newFake()
	h := newTestServer(f)

	rec := do(h, http.MethodPost, "/accounts", `{"account_identifier":" +55 11 99999-0000 ","name":"main"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, model.AccountPhone, f.accounts["a1"].AccountType)
	assert.Equal(t, "+55 11 99999-0000", f.accounts["a1"].AccountIdentifier)
	assert.True(t, f.accounts["a1"].IsActive)

	rec = do(h, http.MethodPost, "/accounts", `{"account_identifier":"x@y.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAccount_ConflictIs409(t *testing.T) {
	f := newFake()
	f.createErr = fmt.Errorf("%w: account with this name", repo.ErrConflict)

	rec := do(newTestServer(f), http.MethodPost, "/accounts", `{"account_identifier":"x@y.com","name":"main"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateAccount_RedetectsType(t *testing.T) {
	f := newFake()
	f.accounts["a1"] = model.Account{ID: "a1", AccountIdentifier: "x@y.com", AccountType: model.AccountEmail, Name: "main"}
	h := newTestServer(f)

	rec := do(h, http.MethodPut, "/accounts/a1", `{"account_identifier":"11999990000"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.AccountPhone, f.accounts["a1"].AccountType)

	rec = do(h, http.MethodPut, "/accounts/a1", `{"name":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h, http.MethodPut, "/accounts/nope", `{"name":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResolveEndpoints(t *testing.T) {
	f := newFake()
	f.accounts["a1"] = model.Account{ID: "a1", AccountIdentifier: "x@y.com", Name: "main"}
	h := newTestServer(f)

	rec := do(h, http.MethodGet, "/accounts/resolve?account=x@y.com", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var ref dto.RefResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ref))
	assert.Equal(t, dto.RefResponse{ID: "a1", Name: "x@y.com"}, ref)

	rec = do(h, http.MethodGet, "/accounts/resolve?account=ghost", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(h, http.MethodPost, "/sportsbooks/resolve", `{"sportsbook":"Betano"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(h, http.MethodPost, "/sportsbooks/resolve", `{"sportsbook":"betano"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, f.books, 1)
}

func TestSportsbookToggleAndDelete(t *testing.T) {
	f := newFake()
	f.books["s1"] = model.Sportsbook{ID: "s1", Name: "bet365", IsActive: true}
	h := newTestServer(f)

	rec := do(h, http.MethodPatch, "/sportsbooks/s1/toggle-active", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sportsbook deactivated")
	assert.False(t, f.books["s1"].IsActive)

	rec = do(h, http.MethodDelete, "/sportsbooks/s1", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "deactivat")
}

func TestCreateTransaction(t *testing.T) {
	f := newFake()
	h := newTestServer(f)

	rec := do(h, http.MethodPost, "/transactions",
		`{"transaction_type":"deposit","sportsbook":"bet365","account":"x@y.com","amount":"100","tax":5,"transaction_charges":"115"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, f.txs, 1)
	tx := f.txs[0]
	assert.Equal(t, model.TxCompleted, tx.Status)
	require.NotNil(t, tx.DateProcessed)
	assert.True(t, decimal.NewFromInt(115).Equal(tx.TransactionCharges))
	require.NotNil(t, f.lastRefs.Sportsbook)
	assert.Equal(t, "bet365", *f.lastRefs.Sportsbook)

	for _, body := range []string{
		`{"sportsbook":"bet365","amount":1}`,
		`{"transaction_type":"transfer","sportsbook":"bet365","amount":1}`,
		`{"transaction_type":"deposit","amount":1}`,
		`{"transaction_type":"deposit","sportsbook":"bet365","amount":0}`,
		`{"transaction_type":"deposit","sportsbook":"bet365","amount":1,"tax":-1}`,
		`{"transaction_type":"deposit","sportsbook":"bet365","amount":1,"status":"done"}`,
	} {
		rec := do(h, http.MethodPost, "/transactions", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestTransactionStats(t *testing.T) {
	f := newFake()
	sb := "bet365"
	f.txs = []model.Transaction{
		{TransactionType: model.TxDeposit, Sportsbook: &sb, Amount: decimal.NewFromInt(100), Status: model.TxCompleted},
		{TransactionType: model.TxWithdrawal, Sportsbook: &sb, Amount: decimal.NewFromInt(150), Tax: decimal.NewFromInt(10), Status: model.TxCompleted},
	}
	h := newTestServer(f)

	rec := do(h, http.MethodGet, "/transactions/stats?sportsbook_id=s1&start_date=2024-03-01", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s1", f.txFilter.SportsbookID)
	require.NotNil(t, f.txFilter.Start)

	var st model.TxStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, "40", st.NetPosition.String())

	rec = do(h, http.MethodGet, "/transactions/stats?start_date=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListTransactions_Pagination(t *testing.T) {
	f := newFake()
	rec := do(newTestServer(f), http.MethodGet, "/transactions?type=deposit&page=2&per_page=500", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "deposit", f.txFilter.Type)

	var out dto.TransactionsPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 2, out.Pagination.Page)
	assert.Equal(t, repo.MaxPerPage, out.Pagination.PerPage)
	assert.True(t, out.Pagination.HasPrev)
}
