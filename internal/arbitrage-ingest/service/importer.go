package service

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
)

type ImportResult struct {
	Published int
	Skipped   int
	Failed    int
}

// ImportFile publica uma lista JSON de arbitragens (export do scanner) no mesmo tópico do WS
func ImportFile(ctx context.Context, path string, pub Publisher, source string, log *zap.Logger) (ImportResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ImportResult{}, fmt.Errorf("read import file: %w", err)
	}
	batch, skipped, err := DecodeBatch(raw)
	if err != nil {
		return ImportResult{}, err
	}

	res := ImportResult{Skipped: skipped}
	for _, arb := range batch {
		if arb.Source == "" {
			arb.Source = source
		}
		if err := pub.Publish(ctx, arb); err != nil {
			log.Warn("import publish failed", zap.String("match_signature", arb.MatchSignature), zap.Error(err))
			res.Failed++
			continue
		}
		res.Published++
	}
	log.Info("import finished", zap.String("file", path),
		zap.Int("published", res.Published), zap.Int("skipped", res.Skipped), zap.Int("failed", res.Failed))
	return res, nil
}
