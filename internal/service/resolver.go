package service

import (
	"context"
	"errors"
	"fmt"

	"homefind/messaging-service/internal/directory"
	"homefind/messaging-service/internal/models"

	"github.com/sirupsen/logrus"
)

// ParticipantResolver validates that a property, buyer, and seller all refer
// to real, distinct entities before any conversation state is touched. Pure
// lookups, no side effects.
type ParticipantResolver struct {
	dir    directory.Directory
	logger *logrus.Logger
}

func NewParticipantResolver(dir directory.Directory, logger *logrus.Logger) *ParticipantResolver {
	return &ParticipantResolver{
		dir:    dir,
		logger: logger,
	}
}

// Resolve returns the property when the triple is valid. Buyer == seller is
// rejected before any lookup. The seller is normally the property's owner,
// but callers supply roles explicitly and an owner mismatch is only logged,
// not rejected.
func (r *ParticipantResolver) Resolve(ctx context.Context, propertyID, buyerID, sellerID string) (*models.Property, error) {
	if buyerID == sellerID {
		return nil, ErrInvalidParticipants
	}

	prop, err := r.dir.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, resolveErr("property", propertyID, err)
	}

	if _, err := r.dir.GetUser(ctx, buyerID); err != nil {
		return nil, resolveErr("buyer", buyerID, err)
	}
	if _, err := r.dir.GetUser(ctx, sellerID); err != nil {
		return nil, resolveErr("seller", sellerID, err)
	}

	if prop.OwnerID != "" && prop.OwnerID != sellerID {
		r.logger.WithFields(logrus.Fields{
			"property_id": propertyID,
			"owner_id":    prop.OwnerID,
			"seller_id":   sellerID,
		}).Warn("Seller is not the property owner")
	}

	return prop, nil
}

func resolveErr(role, id string, err error) error {
	if errors.Is(err, directory.ErrNotFound) {
		return fmt.Errorf("%w: unknown %s %s", ErrNotFound, role, id)
	}
	return fmt.Errorf("%w: look up %s %s: %v", ErrUnavailable, role, id, err)
}
