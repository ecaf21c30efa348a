package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/arb-bet-tracker/internal/bet-service/bets"
	"github.com/radieske/arb-bet-tracker/internal/bet-service/ledger"
	"github.com/radieske/arb-bet-tracker/internal/bet-service/odds"
	"github.com/radieske/arb-bet-tracker/pkg/contracts/events"
	"github.com/radieske/arb-bet-tracker/pkg/stakes"
)

// DefaultSport é usado quando o pedido não informa o esporte
const DefaultSport = "Football"

// ErrLedger indica falha ao falar com o ledger-service
var ErrLedger = errors.New("ledger unavailable")

// ValidationError é um pedido malformado (HTTP 400)
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

type Store interface {
	CreateMany(ctx context.Context, list []*bets.Bet) error
}

type OddsSource interface {
	Current(ctx context.Context, arbitrageID string) (events.ArbitrageFound, bool, error)
}

type Ledger interface {
	ResolveSportsbook(ctx context.Context, input string) (ledger.Ref, error)
	ResolveAccount(ctx context.Context, input string) (ledger.Ref, error)
}

type Publisher interface {
	PublishBetPlaced(ctx context.Context, e events.BetPlaced) error
}

// LegInput é o stake (e a conta opcional) de uma perna, na ordem da combinação
type LegInput struct {
	Stake   decimal.Decimal `json:"stake"`
	Account string          `json:"account,omitempty"`
}

// ConfirmRequest é o "adicionar às apostas" da calculadora.
// Ou Stakes (um por perna) ou Mode (o alocador roda aqui) deve vir preenchido.
type ConfirmRequest struct {
	ArbitrageID        string             `json:"arbitrage_id,omitempty"`
	MatchSignature     string             `json:"match_signature"`
	Profit             float64            `json:"profit"`
	KickoffDatetime    string             `json:"kickoff_datetime"`
	CombinationDetails []events.LegDetail `json:"combination_details"`
	Stakes             []LegInput         `json:"stakes,omitempty"`
	Mode               *stakes.ModeSpec   `json:"mode,omitempty"`
	Account            string             `json:"account,omitempty"`
	Sport              string             `json:"sport,omitempty"`
}

type ConfirmResult struct {
	Message                  string          `json:"message"`
	BetsCreated              int             `json:"bets_created"`
	TotalStake               decimal.Decimal `json:"total_stake"`
	ExpectedProfitPercentage float64         `json:"expected_profit_percentage"`
	Bets                     []*bets.Bet     `json:"bets"`
}

type Confirmer struct {
	Store  Store
	Odds   OddsSource // opcional: sem ele não há checagem de odds
	Ledger Ledger
	Pub    Publisher
	Log    *zap.Logger
	Now    func() time.Time
}

// Confirm cria uma aposta pendente por perna, numa transação, e publica bet_placed
func (c *Confirmer) Confirm(ctx context.Context, req ConfirmRequest) (ConfirmResult, error) {
	details := req.CombinationDetails
	if len(details) == 0 {
		return ConfirmResult{}, &ValidationError{Msg: "no betting combinations found"}
	}

	legStakes, err := resolveStakes(req)
	if err != nil {
		return ConfirmResult{}, err
	}

	if err := c.checkOdds(ctx, req); err != nil {
		return ConfirmResult{}, err
	}

	expected := req.Profit
	if pct, err := events.Combination(details).ProfitPercentage(); err == nil {
		expected = math.Round(pct*100) / 100
	}

	now := c.now()
	ev := events.ArbitrageFound{MatchSignature: req.MatchSignature, CombinationDetails: details}
	kickoff, _ := bets.ParseKickoff(req.KickoffDatetime)
	sport := req.Sport
	if sport == "" {
		sport = DefaultSport
	}
	var arbID *string
	if req.ArbitrageID != "" {
		id := req.ArbitrageID
		arbID = &id
	}

	books := map[string]ledger.Ref{}
	list := make([]*bets.Bet, 0, len(details))
	total := decimal.Zero
	for i, d := range details {
		sb, ok := books[d.Bookmaker]
		if !ok {
			sb, err = c.Ledger.ResolveSportsbook(ctx, d.Bookmaker)
			if err != nil {
				return ConfirmResult{}, fmt.Errorf("%w: resolve sportsbook %q: %v", ErrLedger, d.Bookmaker, err)
			}
			books[d.Bookmaker] = sb
		}
		sbID := sb.ID

		account := req.Account
		if i < len(req.Stakes) && req.Stakes[i].Account != "" {
			account = req.Stakes[i].Account
		}
		accID, err := c.resolveAccount(ctx, account)
		if err != nil {
			return ConfirmResult{}, err
		}

		selection := d.Name
		if selection == "" {
			selection = "Unknown Selection"
		}
		b := &bets.Bet{
			Sport:        sport,
			EventName:    ev.EventName(),
			BetType:      ev.Market(),
			Selection:    selection,
			SportsbookID: &sbID,
			Sportsbook:   &sb.Name,
			AccountID:    accID,
			ArbitrageID:  arbID,
			Odds:         float64(d.Odds),
			Stake:        legStakes[i],
			Status:       bets.StatusPending,
			DatePlaced:   now,
			Kickoff:      kickoff,
			Notes:        fmt.Sprintf("Added from arbitrage opportunity (Profit: %v%%)", expected),
		}
		b.RecalculatePotential()
		total = total.Add(b.Stake)
		list = append(list, b)
	}

	if err := c.Store.CreateMany(ctx, list); err != nil {
		return ConfirmResult{}, fmt.Errorf("create bets: %w", err)
	}

	for i, b := range list {
		e := events.BetPlaced{
			BetID:          b.ID,
			ArbitrageID:    req.ArbitrageID,
			MatchSignature: req.MatchSignature,
			LegIndex:       i,
			EventName:      b.EventName,
			Selection:      b.Selection,
			SportsbookID:   deref(b.SportsbookID),
			AccountID:      deref(b.AccountID),
			Odds:           b.Odds,
			Stake:          b.Stake,
			TsUnixMs:       now.UnixMilli(),
		}
		if err := c.Pub.PublishBetPlaced(ctx, e); err != nil {
			c.Log.Warn("publish bet_placed failed", zap.String("bet_id", b.ID), zap.Error(err))
		}
	}

	c.Log.Info("bets created from arbitrage",
		zap.String("match_signature", req.MatchSignature),
		zap.Int("bets", len(list)),
		zap.String("total_stake", total.String()))

	return ConfirmResult{
		Message:                  fmt.Sprintf("Successfully created %d bets from arbitrage opportunity", len(list)),
		BetsCreated:              len(list),
		TotalStake:               total,
		ExpectedProfitPercentage: expected,
		Bets:                     list,
	}, nil
}

// resolveStakes devolve o stake de cada perna: via alocador (Mode) ou explícito (Stakes)
func resolveStakes(req ConfirmRequest) ([]decimal.Decimal, error) {
	n := len(req.CombinationDetails)
	out := make([]decimal.Decimal, n)

	if req.Mode != nil {
		mode, err := req.Mode.Mode()
		if err != nil {
			return nil, err
		}
		b, err := stakes.Allocate(events.Combination(req.CombinationDetails), mode)
		if err != nil {
			return nil, err
		}
		for i, a := range b.Allocations() {
			// total muito pequeno pode arredondar a perna para 0.00
			if !a.Stake.IsPositive() {
				return nil, &stakes.InvalidStakeError{Field: "stake", Value: a.Stake.InexactFloat64()}
			}
			out[i] = a.Stake
		}
		return out, nil
	}

	if len(req.Stakes) != n {
		return nil, &ValidationError{Msg: fmt.Sprintf("expected %d stakes (one per leg) or a mode, got %d", n, len(req.Stakes))}
	}
	// as pernas também passam pela validação do alocador
	if _, err := events.Combination(req.CombinationDetails).ImpliedProbability(); err != nil {
		return nil, err
	}
	for i, s := range req.Stakes {
		if !s.Stake.IsPositive() {
			return nil, &stakes.InvalidStakeError{Field: "stake", Value: s.Stake.InexactFloat64()}
		}
		out[i] = s.Stake.Round(2)
	}
	return out, nil
}

func (c *Confirmer) checkOdds(ctx context.Context, req ConfirmRequest) error {
	if c.Odds == nil || req.ArbitrageID == "" {
		return nil
	}
	cur, ok, err := c.Odds.Current(ctx, req.ArbitrageID)
	if err != nil {
		// cache fora do ar não bloqueia a confirmação
		c.Log.Warn("odds cache read failed", zap.String("arbitrage_id", req.ArbitrageID), zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	return odds.CheckDrift(req.CombinationDetails, cur.CombinationDetails)
}

func (c *Confirmer) resolveAccount(ctx context.Context, input string) (*string, error) {
	if input == "" {
		return nil, nil
	}
	ref, err := c.Ledger.ResolveAccount(ctx, input)
	if errors.Is(err, ledger.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: resolve account: %v", ErrLedger, err)
	}
	return &ref.ID, nil
}

func (c *Confirmer) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now().UTC()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
