package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"homefind/messaging-service/internal/directory"
	"homefind/messaging-service/internal/models"
	"homefind/messaging-service/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ConversationService interface {
	StartOrResumeConversation(ctx context.Context, propertyID, buyerID, sellerID string) (*models.Conversation, error)
	GetConversation(ctx context.Context, conversationID string) (*models.Conversation, error)
	SendMessage(ctx context.Context, conversationID, senderID, body string) (*models.Message, error)
	MarkConversationRead(ctx context.Context, conversationID, readerID string) (int, error)
	ListInbox(ctx context.Context, userID string) ([]*models.InboxEntry, error)
	ListMessages(ctx context.Context, conversationID string, limit int, beforeSeq int64) ([]*models.Message, error)
}

type conversationService struct {
	repository repository.ConversationRepository
	resolver   *ParticipantResolver
	notifier   Notifier
	clock      Clock
	logger     *logrus.Logger
}

type Option func(*conversationService)

// WithClock replaces the timestamp source.
func WithClock(clock Clock) Option {
	return func(s *conversationService) {
		s.clock = clock
	}
}

// WithNotifier attaches an observer for newly appended messages.
func WithNotifier(n Notifier) Option {
	return func(s *conversationService) {
		s.notifier = n
	}
}

func NewConversationService(repo repository.ConversationRepository, dir directory.Directory, logger *logrus.Logger, opts ...Option) ConversationService {
	s := &conversationService{
		repository: repo,
		resolver:   NewParticipantResolver(dir, logger),
		notifier:   noopNotifier{},
		clock:      time.Now,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartOrResumeConversation returns the one conversation for the triple,
// creating it on first contact. Repeated and concurrent calls all land on
// the same thread.
func (s *conversationService) StartOrResumeConversation(ctx context.Context, propertyID, buyerID, sellerID string) (*models.Conversation, error) {
	if _, err := s.resolver.Resolve(ctx, propertyID, buyerID, sellerID); err != nil {
		return nil, err
	}

	now := s.clock().UTC()
	conv := &models.Conversation{
		ID:            uuid.New().String(),
		PropertyID:    propertyID,
		BuyerID:       buyerID,
		SellerID:      sellerID,
		LastMessageAt: now,
		CreatedAt:     now,
	}

	created := conv.ID
	if err := s.repository.FindOrCreateConversation(ctx, conv); err != nil {
		s.logger.WithError(err).Error("Failed to find or create conversation")
		return nil, fmt.Errorf("%w: find or create conversation: %v", ErrUnavailable, err)
	}

	s.logger.WithFields(logrus.Fields{
		"conversation_id": conv.ID,
		"property_id":     propertyID,
		"buyer_id":        buyerID,
		"seller_id":       sellerID,
		"resumed":         conv.ID != created,
	}).Info("Conversation started or resumed")

	return conv, nil
}

func (s *conversationService) GetConversation(ctx context.Context, conversationID string) (*models.Conversation, error) {
	return s.loadConversation(ctx, conversationID)
}

// SendMessage appends one message to the conversation. Validation happens
// before any write; the append and the last-activity bump commit together,
// so a cancelled or failed send leaves no partial state behind.
func (s *conversationService) SendMessage(ctx context.Context, conversationID, senderID, body string) (*models.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}

	conv, err := s.loadConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if !conv.Participant(senderID) {
		return nil, ErrNotParticipant
	}

	msg := &models.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           body,
		CreatedAt:      s.clock().UTC(),
	}

	if err := s.repository.AppendMessage(ctx, msg); err != nil {
		s.logger.WithError(err).Error("Failed to append message")
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: append message: %v", ErrUnavailable, err)
	}

	s.logger.WithFields(logrus.Fields{
		"message_id":      msg.ID,
		"conversation_id": conversationID,
		"sender_id":       senderID,
		"seq":             msg.Seq,
	}).Info("Message sent")

	s.notifier.MessageAppended(ctx, conv, msg)

	return msg, nil
}

// MarkConversationRead marks every message from the other participant as
// read and reports how many changed. Idempotent.
func (s *conversationService) MarkConversationRead(ctx context.Context, conversationID, readerID string) (int, error) {
	conv, err := s.loadConversation(ctx, conversationID)
	if err != nil {
		return 0, err
	}

	if !conv.Participant(readerID) {
		return 0, ErrNotParticipant
	}

	count, err := s.repository.MarkMessagesAsRead(ctx, conversationID, readerID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to mark messages as read")
		return 0, fmt.Errorf("%w: mark read: %v", ErrUnavailable, err)
	}

	return count, nil
}

// ListInbox returns the user's conversations, most recently active first.
func (s *conversationService) ListInbox(ctx context.Context, userID string) ([]*models.InboxEntry, error) {
	entries, err := s.repository.ListUserConversations(ctx, userID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list inbox")
		return nil, fmt.Errorf("%w: list inbox: %v", ErrUnavailable, err)
	}

	return entries, nil
}

func (s *conversationService) ListMessages(ctx context.Context, conversationID string, limit int, beforeSeq int64) ([]*models.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	messages, err := s.repository.ListMessages(ctx, conversationID, limit, beforeSeq)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list messages")
		return nil, fmt.Errorf("%w: list messages: %v", ErrUnavailable, err)
	}

	return messages, nil
}

func (s *conversationService) loadConversation(ctx context.Context, conversationID string) (*models.Conversation, error) {
	conv, err := s.repository.GetConversationByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: conversation %s", ErrNotFound, conversationID)
		}
		return nil, fmt.Errorf("%w: get conversation: %v", ErrUnavailable, err)
	}
	return conv, nil
}
