// Package gate проверяет подписку пользователя на обязательные каналы.
package gate

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"tg-gate-bot/internal/domain"
	"tg-gate-bot/internal/infra/metrics"
)

// Gate сверяет членство пользователя со списком обязательных каналов.
type Gate struct {
	channels domain.ChannelRepo
	oracle   domain.MembershipOracle
	log      zerolog.Logger
}

// New создаёт проверку подписки.
func New(channels domain.ChannelRepo, oracle domain.MembershipOracle, logger zerolog.Logger) *Gate {
	return &Gate{channels: channels, oracle: oracle, log: logger}
}

// Missing возвращает каналы, на которые пользователь не подписан, в порядке добавления.
// Ошибка запроса членства считается отсутствием подписки.
func (g *Gate) Missing(ctx context.Context, userID int64) ([]domain.Channel, error) {
	channels, err := g.channels.ListChannels(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение каналов: %w", err)
	}
	return g.Check(ctx, userID, channels), nil
}

// Check проверяет пользователя по переданному списку каналов.
func (g *Gate) Check(ctx context.Context, userID int64, channels []domain.Channel) []domain.Channel {
	var missing []domain.Channel
	for _, ch := range channels {
		status, err := g.oracle.MemberStatus(ctx, domain.ChatRef(ch.ChatRef), userID)
		if err != nil {
			g.log.Debug().Err(err).Int64("user", userID).Str("chat", ch.ChatRef).Msg("gate: запрос членства не удался")
			metrics.GateChecks.WithLabelValues("error").Inc()
			missing = append(missing, ch)
			continue
		}
		if !status.Joined() {
			metrics.GateChecks.WithLabelValues("missing").Inc()
			missing = append(missing, ch)
			continue
		}
		metrics.GateChecks.WithLabelValues("joined").Inc()
	}
	return missing
}
