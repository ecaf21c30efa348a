package httpapi

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/arb-bet-tracker/pkg/contracts/events"
)

// Source carrega uma arbitragem pelo id: Redis primeiro, Postgres como fallback
// (aquecendo o cache). Usado pela calculadora REST e pelo WS.
type Source struct {
	Repo  Repository
	Cache Cache
	TTL   time.Duration
	Log   *zap.Logger
}

func (s *Source) Load(ctx context.Context, id string) (events.ArbitrageFound, error) {
	if ev, ok, err := s.Cache.GetCurrent(ctx, id); err == nil && ok {
		return ev, nil
	} else if err != nil {
		s.Log.Warn("arbitrage cache read failed", zap.String("arbitrage_id", id), zap.Error(err))
	}

	arb, err := s.Repo.Get(ctx, id)
	if err != nil {
		return events.ArbitrageFound{}, err
	}
	ev := arb.Event()
	if err := s.Cache.SetCurrent(ctx, id, ev, s.TTL); err != nil {
		s.Log.Warn("arbitrage cache set failed", zap.String("arbitrage_id", id), zap.Error(err))
	}
	return ev, nil
}
