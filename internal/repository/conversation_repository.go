package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"homefind/messaging-service/internal/models"
)

// ErrNotFound is returned when a conversation does not exist. Any other error
// from this package indicates a storage failure.
var ErrNotFound = errors.New("conversation not found")

type ConversationRepository interface {
	FindOrCreateConversation(ctx context.Context, conv *models.Conversation) error
	GetConversationByID(ctx context.Context, id string) (*models.Conversation, error)
	ListUserConversations(ctx context.Context, userID string) ([]*models.InboxEntry, error)
	AppendMessage(ctx context.Context, msg *models.Message) error
	MarkMessagesAsRead(ctx context.Context, conversationID, readerID string) (int, error)
	ListMessages(ctx context.Context, conversationID string, limit int, beforeSeq int64) ([]*models.Message, error)
	InitializeTables() error
}

type conversationRepository struct {
	db *sql.DB
}

func NewConversationRepository(db *sql.DB) ConversationRepository {
	return &conversationRepository{
		db: db,
	}
}

func (r *conversationRepository) InitializeTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS conversations (
		id UUID PRIMARY KEY,
		property_id UUID NOT NULL,
		buyer_id UUID NOT NULL,
		seller_id UUID NOT NULL,
		last_message_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		UNIQUE(property_id, buyer_id, seller_id)
	);

	CREATE TABLE IF NOT EXISTS messages (
		id UUID PRIMARY KEY,
		conversation_id UUID NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
		sender_id UUID NOT NULL,
		body TEXT NOT NULL,
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		seq BIGSERIAL,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_messages_conversation_seq ON messages(conversation_id, seq);
	CREATE INDEX IF NOT EXISTS idx_messages_unread ON messages(conversation_id) WHERE NOT is_read;
	CREATE INDEX IF NOT EXISTS idx_conversations_buyer ON conversations(buyer_id, last_message_at DESC);
	CREATE INDEX IF NOT EXISTS idx_conversations_seller ON conversations(seller_id, last_message_at DESC);
	`

	_, err := r.db.Exec(query)
	return err
}

// FindOrCreateConversation inserts the conversation keyed on its
// (property, buyer, seller) triple, or loads the existing row when the triple
// is already taken. The insert relies on the unique constraint, so two
// concurrent calls for the same triple both end up with the same row; the
// loser's insert is a no-op and falls through to the select. Safe to retry.
func (r *conversationRepository) FindOrCreateConversation(ctx context.Context, conv *models.Conversation) error {
	query := `
	INSERT INTO conversations (id, property_id, buyer_id, seller_id, last_message_at, created_at)
	VALUES ($1, $2, $3, $4, $5, $5)
	ON CONFLICT (property_id, buyer_id, seller_id) DO NOTHING
	RETURNING id, last_message_at, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		conv.ID, conv.PropertyID, conv.BuyerID, conv.SellerID, conv.CreatedAt,
	).Scan(&conv.ID, &conv.LastMessageAt, &conv.CreatedAt)

	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("insert conversation: %w", err)
	}

	// Conflict: another writer owns the triple. Conversations are never
	// deleted, so the row is visible now.
	query = `
	SELECT id, property_id, buyer_id, seller_id, last_message_at, created_at
	FROM conversations
	WHERE property_id = $1 AND buyer_id = $2 AND seller_id = $3
	`

	err = r.db.QueryRowContext(ctx, query, conv.PropertyID, conv.BuyerID, conv.SellerID).Scan(
		&conv.ID, &conv.PropertyID, &conv.BuyerID, &conv.SellerID, &conv.LastMessageAt, &conv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("load conversation after conflict: %w", err)
	}

	return nil
}

func (r *conversationRepository) GetConversationByID(ctx context.Context, id string) (*models.Conversation, error) {
	query := `
	SELECT id, property_id, buyer_id, seller_id, last_message_at, created_at
	FROM conversations
	WHERE id = $1
	`

	var conv models.Conversation
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&conv.ID, &conv.PropertyID, &conv.BuyerID, &conv.SellerID, &conv.LastMessageAt, &conv.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	return &conv, nil
}

func (r *conversationRepository) ListUserConversations(ctx context.Context, userID string) ([]*models.InboxEntry, error) {
	query := `
	SELECT c.id, c.property_id, c.buyer_id, c.seller_id, c.last_message_at, c.created_at,
	       COUNT(m.id) FILTER (WHERE m.sender_id <> $1 AND NOT m.is_read) AS unread
	FROM conversations c
	LEFT JOIN messages m ON m.conversation_id = c.id
	WHERE c.buyer_id = $1 OR c.seller_id = $1
	GROUP BY c.id
	ORDER BY c.last_message_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var entries []*models.InboxEntry
	for rows.Next() {
		var e models.InboxEntry
		err := rows.Scan(
			&e.ID, &e.PropertyID, &e.BuyerID, &e.SellerID, &e.LastMessageAt, &e.CreatedAt, &e.UnreadCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}

// AppendMessage writes the message and advances the conversation's
// last_message_at in one transaction: a reader never sees a conversation
// whose timestamp trails its newest message. The GREATEST keeps the
// timestamp monotonic when appends land out of order.
func (r *conversationRepository) AppendMessage(ctx context.Context, msg *models.Message) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	query := `
	INSERT INTO messages (id, conversation_id, sender_id, body, created_at)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING seq
	`

	err = tx.QueryRowContext(ctx, query,
		msg.ID, msg.ConversationID, msg.SenderID, msg.Body, msg.CreatedAt,
	).Scan(&msg.Seq)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	touch := `
	UPDATE conversations
	SET last_message_at = GREATEST(last_message_at, $2)
	WHERE id = $1
	`

	result, err := tx.ExecContext(ctx, touch, msg.ConversationID, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}

	return nil
}

// MarkMessagesAsRead flips every unread message the other participant sent.
// Re-running it matches zero rows and reports zero, not an error.
func (r *conversationRepository) MarkMessagesAsRead(ctx context.Context, conversationID, readerID string) (int, error) {
	query := `
	UPDATE messages
	SET is_read = TRUE
	WHERE conversation_id = $1 AND sender_id <> $2 AND NOT is_read
	`

	result, err := r.db.ExecContext(ctx, query, conversationID, readerID)
	if err != nil {
		return 0, fmt.Errorf("mark read: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark read: %w", err)
	}

	return int(rowsAffected), nil
}

// ListMessages returns up to limit messages in ascending seq order. A
// non-zero beforeSeq restricts the page to messages older than that seq, so
// callers walk history backwards page by page while each page itself reads
// oldest first.
func (r *conversationRepository) ListMessages(ctx context.Context, conversationID string, limit int, beforeSeq int64) ([]*models.Message, error) {
	var query string
	var args []interface{}

	if beforeSeq > 0 {
		query = `
		SELECT id, conversation_id, sender_id, body, is_read, seq, created_at
		FROM messages
		WHERE conversation_id = $1 AND seq < $2
		ORDER BY seq DESC
		LIMIT $3
		`
		args = []interface{}{conversationID, beforeSeq, limit}
	} else {
		query = `
		SELECT id, conversation_id, sender_id, body, is_read, seq, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY seq DESC
		LIMIT $2
		`
		args = []interface{}{conversationID, limit}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		var msg models.Message
		err := rows.Scan(
			&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.Body, &msg.IsRead, &msg.Seq, &msg.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, &msg)
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, rows.Err()
}
