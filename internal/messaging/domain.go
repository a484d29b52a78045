package messaging

import "time"

// Conversation is a two-party thread. Participant order is normalized
// on insert so each pair maps to exactly one row.
type Conversation struct {
	ID            int64     `json:"id"`
	ParticipantA  int64     `json:"participant_a"`
	ParticipantB  int64     `json:"participant_b"`
	CreatedAt     time.Time `json:"created_at"`
	LastMessageAt time.Time `json:"last_message_at"`
}

// ConversationSummary is the inbox projection for one user.
type ConversationSummary struct {
	ID          int64     `json:"id"`
	PeerID      int64     `json:"peer_id"`
	PeerName    string    `json:"peer_name"`
	LastBody    string    `json:"last_body"`
	LastSentAt  time.Time `json:"last_sent_at"`
	UnreadCount int       `json:"unread_count"`
}

type Message struct {
	ID             int64      `json:"id"`
	ConversationID int64      `json:"conversation_id"`
	SenderID       int64      `json:"sender_id"`
	Body           string     `json:"body"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
