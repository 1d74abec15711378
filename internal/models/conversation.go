package models

import (
	"time"
)

// Conversation is the single discussion thread between one buyer and one
// seller about one property. The (PropertyID, BuyerID, SellerID) triple is
// unique across the system.
type Conversation struct {
	ID            string    `json:"id"`
	PropertyID    string    `json:"property_id"`
	BuyerID       string    `json:"buyer_id"`
	SellerID      string    `json:"seller_id"`
	LastMessageAt time.Time `json:"last_message_at"`
	CreatedAt     time.Time `json:"created_at"`
}

// Participant reports whether userID is the buyer or the seller of c.
func (c *Conversation) Participant(userID string) bool {
	return c.BuyerID == userID || c.SellerID == userID
}

// Other returns the participant opposite to userID. Callers must check
// Participant first.
func (c *Conversation) Other(userID string) string {
	if c.BuyerID == userID {
		return c.SellerID
	}
	return c.BuyerID
}

// Message is one unit of an append-only conversation log. Seq is assigned by
// the database on insert and strictly increases per conversation history, so
// it breaks creation-time ties deterministically.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Body           string    `json:"body"`
	IsRead         bool      `json:"is_read"`
	Seq            int64     `json:"seq"`
	CreatedAt      time.Time `json:"created_at"`
}

// InboxEntry is a conversation as seen from one user's inbox, carrying the
// number of messages the other participant sent that this user has not read.
type InboxEntry struct {
	Conversation
	UnreadCount int `json:"unread_count"`
}

// User is a marketplace account as seen by the messaging core: an opaque,
// stable identifier. Profile data lives with the accounts subsystem.
type User struct {
	ID string
}

// Property is a listing as seen by the messaging core. OwnerID is the seller
// side of any conversation about it.
type Property struct {
	ID      string
	OwnerID string
}
