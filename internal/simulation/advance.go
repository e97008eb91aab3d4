package simulation

import (
	"context"

	"github.com/rxtech-lab/argo-arena/internal/chat"
	"github.com/rxtech-lab/argo-arena/internal/clock"
	"github.com/rxtech-lab/argo-arena/internal/tradewindow"
	"github.com/rxtech-lab/argo-arena/internal/types"
	"github.com/rxtech-lab/argo-arena/pkg/errors"
)

// AdvanceKind selects the round transition to perform.
type AdvanceKind string

const (
	AdvanceKindIntraday AdvanceKind = "intraday"
	AdvanceKindDay      AdvanceKind = "day"
)

// ParseAdvanceKind resolves a request's advance type, defaulting to intraday.
func ParseAdvanceKind(value string) (AdvanceKind, error) {
	switch value {
	case "", string(AdvanceKindIntraday):
		return AdvanceKindIntraday, nil
	case string(AdvanceKindDay):
		return AdvanceKindDay, nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidAdvanceType, "advance type must be %q or %q, got %q", AdvanceKindIntraday, AdvanceKindDay, value)
	}
}

// AdvanceRound moves the simulation one round forward: clock transition,
// market regeneration, trading-window decision and chat delivery, committed
// as a single atomic snapshot replace. On failure the prior round stays
// current, so retrying the same advance is safe.
func (s *Store) AdvanceRound(ctx context.Context, kind AdvanceKind) (*types.SimulationSnapshot, error) {
	return s.Update(func(next *types.SimulationSnapshot) error {
		c := clock.Clock{Day: next.Day, IntradayHour: next.IntradayHour}
		dayStep := kind == AdvanceKindDay

		if dayStep {
			c.AdvanceDay()
		} else {
			c.AdvanceIntraday()
		}

		marketData, err := s.gen.NextRound(ctx, next.MarketData, dayStep)
		if err != nil {
			return errors.Wrap(errors.ErrCodeAdvanceFailed, "market data generation failed", err)
		}

		gate := tradewindow.Gate{LastTradingHour: next.LastTradingHour}

		if dayStep {
			gate.Reset()

			next.TradingWindowOpen = false
		} else {
			next.TradingWindowOpen = gate.Allow(c.IntradayHour)
		}

		next.Day = c.Day
		next.IntradayHour = c.IntradayHour
		next.MarketData = marketData
		next.LastTradingHour = gate.LastTradingHour
		next.Chat = s.chat.Deliver(next.Chat, c.CurrentRound())

		if next.Mode == types.ModeHistorical {
			next.Complete = c.HistoricalComplete()
		}

		return nil
	})
}

// SubmitChat validates and appends a user chat message in the current round.
// Validation failures reject the submission without mutating the snapshot.
func (s *Store) SubmitChat(req chat.SubmitRequest) (types.ChatMessage, *types.SimulationSnapshot, error) {
	var message types.ChatMessage

	snap, err := s.Update(func(next *types.SimulationSnapshot) error {
		msg, chatState, err := s.chat.Submit(next.Chat, s.chatCfg, next.Agents, next.Round(), req)
		if err != nil {
			return err
		}

		message = msg
		next.Chat = chatState

		return nil
	})
	if err != nil {
		return types.ChatMessage{}, nil, err
	}

	return message, snap, nil
}

// RecordAgentReply records one agent's reply for the current round. Agents
// with no delivered messages this round are skipped without touching chat.
func (s *Store) RecordAgentReply(agentID, reply string) (*types.SimulationSnapshot, error) {
	return s.Update(func(next *types.SimulationSnapshot) error {
		agent, ok := types.FindAgent(next.Agents, agentID)
		if !ok {
			return errors.Newf(errors.ErrCodeAgentNotFound, "no agent with id %s", agentID)
		}

		chatState, acted := s.chat.RecordAgentReply(next.Chat, s.chatCfg, agent, next.Round(), reply)
		if acted {
			next.Chat = chatState
		}

		return nil
	})
}
