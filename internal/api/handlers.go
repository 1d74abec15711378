package api

import (
	"errors"
	"net/http"
	"strconv"

	"homefind/messaging-service/internal/models"
	"homefind/messaging-service/internal/service"

	"github.com/labstack/echo/v4"
)

type startConversationRequest struct {
	PropertyID string `json:"property_id"`
	BuyerID    string `json:"buyer_id"`
	SellerID   string `json:"seller_id"`
}

type sendMessageRequest struct {
	SenderID string `json:"sender_id"`
	Body     string `json:"body"`
}

type markReadRequest struct {
	ReaderID string `json:"reader_id"`
}

type markReadResponse struct {
	Marked int `json:"marked"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) startConversation(c echo.Context) error {
	var req startConversationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Code: "bad_request", Message: "invalid request body"})
	}

	conv, err := s.service.StartOrResumeConversation(c.Request().Context(), req.PropertyID, req.BuyerID, req.SellerID)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusOK, conv)
}

func (s *Server) getConversation(c echo.Context) error {
	conv, err := s.service.GetConversation(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusOK, conv)
}

func (s *Server) sendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Code: "bad_request", Message: "invalid request body"})
	}

	msg, err := s.service.SendMessage(c.Request().Context(), c.Param("id"), req.SenderID, req.Body)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusCreated, msg)
}

func (s *Server) listMessages(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	before, _ := strconv.ParseInt(c.QueryParam("before"), 10, 64)

	messages, err := s.service.ListMessages(c.Request().Context(), c.Param("id"), limit, before)
	if err != nil {
		return s.writeError(c, err)
	}

	if messages == nil {
		messages = []*models.Message{}
	}
	return c.JSON(http.StatusOK, messages)
}

func (s *Server) markConversationRead(c echo.Context) error {
	var req markReadRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Code: "bad_request", Message: "invalid request body"})
	}

	count, err := s.service.MarkConversationRead(c.Request().Context(), c.Param("id"), req.ReaderID)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusOK, markReadResponse{Marked: count})
}

func (s *Server) listInbox(c echo.Context) error {
	entries, err := s.service.ListInbox(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return s.writeError(c, err)
	}

	if entries == nil {
		entries = []*models.InboxEntry{}
	}
	return c.JSON(http.StatusOK, entries)
}

// writeError maps the service error taxonomy onto stable HTTP codes. The UI
// relies on these to tell "try again" from "invalid request" from "empty
// message".
func (s *Server) writeError(c echo.Context, err error) error {
	var status int
	var code string

	switch {
	case errors.Is(err, service.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrInvalidParticipants):
		status, code = http.StatusUnprocessableEntity, "invalid_participants"
	case errors.Is(err, service.ErrNotParticipant):
		status, code = http.StatusForbidden, "not_participant"
	case errors.Is(err, service.ErrEmptyMessage):
		status, code = http.StatusUnprocessableEntity, "empty_message"
	case errors.Is(err, service.ErrUnavailable):
		status, code = http.StatusServiceUnavailable, "unavailable"
	default:
		s.logger.WithError(err).Error("Unhandled error")
		status, code = http.StatusInternalServerError, "internal"
	}

	return c.JSON(status, errorResponse{Code: code, Message: err.Error()})
}
