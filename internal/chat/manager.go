// Package chat owns the message lifecycle state machine: ingesting user
// messages, delivering them on round boundaries, and recording agent replies.
package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-arena/internal/logger"
	"github.com/rxtech-lab/argo-arena/internal/types"
	"github.com/rxtech-lab/argo-arena/pkg/errors"
	"github.com/rxtech-lab/argo-arena/pkg/sanitize"
)

// Manager drives chat message transitions. It never mutates the state it is
// given: every operation returns a fresh ChatState for atomic publication.
type Manager struct {
	log *logger.Logger
	now func() time.Time
}

// NewManager creates a chat lifecycle manager.
func NewManager(log *logger.Logger) *Manager {
	return &Manager{
		log: log,
		now: time.Now,
	}
}

// SubmitRequest is one user chat submission. AgentID is empty for general,
// non-agent-directed messages.
type SubmitRequest struct {
	Username string `json:"username"`
	AgentID  string `json:"agentId,omitempty"`
	Content  string `json:"content"`
}

// Submit validates a user submission and appends it as a PENDING message in
// the given round. Rejections leave the state untouched and carry a
// human-readable reason; nothing is retried automatically.
func (m *Manager) Submit(state types.ChatState, cfg types.ChatConfig, agents []types.Agent, round types.Round, req SubmitRequest) (types.ChatMessage, types.ChatState, error) {
	if !cfg.Enabled {
		return types.ChatMessage{}, state, errors.New(errors.ErrCodeChatDisabled, "chat is disabled for this simulation")
	}

	name := sanitize.DisplayName(req.Username)
	if name == "" {
		return types.ChatMessage{}, state, errors.New(errors.ErrCodeInvalidUsername, "username is empty or contains only disallowed characters")
	}

	content := sanitize.Content(req.Content)
	if content == "" {
		return types.ChatMessage{}, state, errors.New(errors.ErrCodeEmptyMessage, "message content is empty")
	}

	if sanitize.HasSpamIndicators(content) {
		return types.ChatMessage{}, state, errors.New(errors.ErrCodeSpamDetected, "message contains links or promotional content")
	}

	agentID := optional.None[string]()
	agentName := optional.None[string]()

	if req.AgentID != "" {
		agent, ok := types.FindAgent(agents, req.AgentID)
		if !ok {
			return types.ChatMessage{}, state, errors.Newf(errors.ErrCodeAgentNotFound, "no agent with id %s", req.AgentID)
		}

		if agentAtCapacity(state, cfg, round, req.AgentID, name) {
			return types.ChatMessage{}, state, errors.Newf(errors.ErrCodeAgentRateLimited, "%s has enough messages this round, try again next round", agent.Name)
		}

		agentID = optional.Some(agent.ID)
		agentName = optional.Some(agent.Name)
	}

	if userMessageCount(state, round, name) >= cfg.MaxMessagesPerUser {
		return types.ChatMessage{}, state, errors.Newf(errors.ErrCodeUserRateLimited, "you already sent %d message(s) this round", cfg.MaxMessagesPerUser)
	}

	message := types.ChatMessage{
		ID:         uuid.NewString(),
		Sender:     name,
		SenderType: types.SenderTypeUser,
		AgentID:    agentID,
		AgentName:  agentName,
		Content:    sanitize.Clip(content, cfg.MaxMessageLength),
		RoundID:    round.Key(),
		CreatedAt:  m.now(),
		Status:     types.MessageStatusPending,
	}

	next := state.Clone()
	next.Messages = append(next.Messages, message)

	return message, next, nil
}

// Deliver marks every PENDING user message created before the newly-current
// round as DELIVERED, stamping the delivering round. Messages targeting a
// future round stay PENDING. It runs once per round transition, independent
// of message creation.
func (m *Manager) Deliver(state types.ChatState, newRound types.Round) types.ChatState {
	next := state.Clone()

	for i := range next.Messages {
		msg := &next.Messages[i]
		if msg.SenderType != types.SenderTypeUser || msg.Status != types.MessageStatusPending {
			continue
		}

		created, err := types.ParseRoundKey(msg.RoundID)
		if err != nil {
			m.log.Warn("skipping message with malformed round id",
				zap.String("message_id", msg.ID),
				zap.String("round_id", msg.RoundID),
			)

			continue
		}

		if !created.Before(newRound) {
			continue
		}

		if !msg.Status.CanTransition(types.MessageStatusDelivered) {
			continue
		}

		msg.Status = types.MessageStatusDelivered
		msg.DeliveredRoundID = optional.Some(newRound.Key())
	}

	return next
}

// RecordAgentReply applies one agent's reaction to its messages delivered
// this round. An empty or unsanitizable reply transitions them all to
// IGNORED. A usable reply becomes a visible agent message prefixed with
// @mentions of the distinct senders, replacing any reply the agent already
// posted this round, and the contributing messages become RESPONDED.
//
// The bool result is false when the agent had nothing delivered this round:
// the state is returned unchanged and no reply message is created, so agents
// are never invoked to reply to nothing.
func (m *Manager) RecordAgentReply(state types.ChatState, cfg types.ChatConfig, agent types.Agent, round types.Round, reply string) (types.ChatState, bool) {
	var delivered []int

	for i, msg := range state.Messages {
		if msg.SenderType == types.SenderTypeUser &&
			msg.Status == types.MessageStatusDelivered &&
			msg.AgentID.TakeOr("") == agent.ID &&
			msg.DeliveredRoundID.TakeOr("") == round.Key() {
			delivered = append(delivered, i)
		}
	}

	if len(delivered) == 0 {
		return state, false
	}

	next := state.Clone()
	now := m.now()

	body := sanitize.Clip(sanitize.Content(reply), cfg.MaxMessageLength)
	if body == "" {
		m.transitionAll(next.Messages, delivered, types.MessageStatusIgnored, now)

		return next, true
	}

	content := sanitize.Clip(mentionPrefix(next.Messages, delivered)+body, cfg.MaxMessageLength)

	if existing := findAgentReply(next.Messages, agent, round); existing >= 0 {
		next.Messages[existing].Content = content
		next.Messages[existing].RespondedAt = optional.Some(now)
	} else {
		next.Messages = append(next.Messages, types.ChatMessage{
			ID:          uuid.NewString(),
			Sender:      agent.Name,
			SenderType:  types.SenderTypeAgent,
			AgentID:     optional.Some(agent.ID),
			AgentName:   optional.Some(agent.Name),
			Content:     content,
			RoundID:     round.Key(),
			CreatedAt:   now,
			Status:      types.MessageStatusResponded,
			RespondedAt: optional.Some(now),
		})
	}

	m.transitionAll(next.Messages, delivered, types.MessageStatusResponded, now)

	return next, true
}

// transitionAll moves the indexed messages to a terminal status, stamping
// respondedAt. Unmodeled transitions are rejected and logged.
func (m *Manager) transitionAll(messages []types.ChatMessage, indexes []int, status types.MessageStatus, now time.Time) {
	for _, i := range indexes {
		if !messages[i].Status.CanTransition(status) {
			m.log.Warn("rejecting unmodeled message transition",
				zap.String("message_id", messages[i].ID),
				zap.String("from", string(messages[i].Status)),
				zap.String("to", string(status)),
			)

			continue
		}

		messages[i].Status = status
		messages[i].RespondedAt = optional.Some(now)
	}
}

// mentionPrefix renders the distinct senders of the indexed messages as
// "@sender" mentions in stable order of first appearance, with a trailing
// space.
func mentionPrefix(messages []types.ChatMessage, indexes []int) string {
	var (
		mentions []string
		seen     = make(map[string]bool)
	)

	for _, i := range indexes {
		key := strings.ToLower(messages[i].Sender)
		if seen[key] {
			continue
		}

		seen[key] = true

		mentions = append(mentions, "@"+messages[i].Sender)
	}

	return strings.Join(mentions, " ") + " "
}

func findAgentReply(messages []types.ChatMessage, agent types.Agent, round types.Round) int {
	for i, msg := range messages {
		if msg.SenderType == types.SenderTypeAgent &&
			msg.AgentID.TakeOr("") == agent.ID &&
			msg.RoundID == round.Key() {
			return i
		}
	}

	return -1
}

// agentAtCapacity checks the distinct-sender cap for an agent in a round. A
// sender already counted this round is governed by the per-user limit alone.
func agentAtCapacity(state types.ChatState, cfg types.ChatConfig, round types.Round, agentID, sender string) bool {
	senders := make(map[string]bool)

	for _, msg := range state.Messages {
		if msg.SenderType == types.SenderTypeUser &&
			msg.RoundID == round.Key() &&
			msg.AgentID.TakeOr("") == agentID {
			senders[strings.ToLower(msg.Sender)] = true
		}
	}

	if senders[strings.ToLower(sender)] {
		return false
	}

	return len(senders) >= cfg.MaxMessagesPerAgent
}

// userMessageCount counts a user's messages created in the given round,
// matching the sender case-insensitively.
func userMessageCount(state types.ChatState, round types.Round, sender string) int {
	count := 0

	for _, msg := range state.Messages {
		if msg.SenderType == types.SenderTypeUser &&
			msg.RoundID == round.Key() &&
			strings.EqualFold(msg.Sender, sender) {
			count++
		}
	}

	return count
}
