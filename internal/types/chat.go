package types

import (
	"time"

	"github.com/moznion/go-optional"
)

type SenderType string

const (
	SenderTypeUser  SenderType = "user"
	SenderTypeAgent SenderType = "agent"
)

// MessageStatus is the closed set of chat message lifecycle states.
type MessageStatus string

const (
	MessageStatusPending   MessageStatus = "PENDING"
	MessageStatusDelivered MessageStatus = "DELIVERED"
	MessageStatusResponded MessageStatus = "RESPONDED"
	MessageStatusIgnored   MessageStatus = "IGNORED"
)

// CanTransition reports whether moving from s to next is a modeled
// transition. The lifecycle is PENDING → DELIVERED → {RESPONDED | IGNORED};
// everything else is rejected.
func (s MessageStatus) CanTransition(next MessageStatus) bool {
	switch s {
	case MessageStatusPending:
		return next == MessageStatusDelivered
	case MessageStatusDelivered:
		return next == MessageStatusResponded || next == MessageStatusIgnored
	case MessageStatusResponded, MessageStatusIgnored:
		return false
	default:
		return false
	}
}

// ChatMessage is one entry in a simulation's chat log. User messages walk the
// full lifecycle; agent replies are created directly in RESPONDED state.
type ChatMessage struct {
	ID         string                  `yaml:"id" json:"id"`
	Sender     string                  `yaml:"sender" json:"sender"`
	SenderType SenderType              `yaml:"sender_type" json:"senderType"`
	AgentID    optional.Option[string] `yaml:"agent_id" json:"agentId,omitempty"`
	AgentName  optional.Option[string] `yaml:"agent_name" json:"agentName,omitempty"`
	Content    string                  `yaml:"content" json:"content"`
	// RoundID is the creation round for user messages and the target round
	// for agent replies.
	RoundID          string                     `yaml:"round_id" json:"roundId"`
	CreatedAt        time.Time                  `yaml:"created_at" json:"createdAt"`
	Status           MessageStatus              `yaml:"status" json:"status"`
	DeliveredRoundID optional.Option[string]    `yaml:"delivered_round_id" json:"deliveredRoundId,omitempty"`
	RespondedAt      optional.Option[time.Time] `yaml:"responded_at" json:"respondedAt,omitempty"`
}

// ChatConfig bounds one simulation's chat behavior. The per-round limits are
// sliding-window counts keyed on the message's creation round.
type ChatConfig struct {
	Enabled          bool `yaml:"enabled" json:"enabled"`
	MaxMessageLength int  `yaml:"max_message_length" json:"maxMessageLength" validate:"gt=0"`
	// MaxMessagesPerUser caps messages from one user (case-insensitive) per round.
	MaxMessagesPerUser int `yaml:"max_messages_per_user" json:"maxMessagesPerUser" validate:"gt=0"`
	// MaxMessagesPerAgent caps distinct user senders targeting one agent per round.
	MaxMessagesPerAgent int `yaml:"max_messages_per_agent" json:"maxMessagesPerAgent" validate:"gt=0"`
}

// ChatState is the full chat log of one simulation instance.
type ChatState struct {
	Messages []ChatMessage `yaml:"messages" json:"messages"`
}

// Clone returns a deep copy of the chat state so updates never alias the
// previously published snapshot.
func (c ChatState) Clone() ChatState {
	if c.Messages == nil {
		return ChatState{Messages: nil}
	}

	messages := make([]ChatMessage, len(c.Messages))
	copy(messages, c.Messages)

	return ChatState{Messages: messages}
}
