package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"homefind/messaging-service/internal/models"
)

type pgDirectory struct {
	db *sql.DB
}

// NewPgDirectory reads the marketplace users and properties tables through
// the shared connection pool.
func NewPgDirectory(db *sql.DB) Directory {
	return &pgDirectory{
		db: db,
	}
}

func (d *pgDirectory) GetUser(ctx context.Context, id string) (*models.User, error) {
	query := `
	SELECT id
	FROM users
	WHERE id = $1
	`

	var user models.User
	err := d.db.QueryRowContext(ctx, query, id).Scan(&user.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (d *pgDirectory) GetProperty(ctx context.Context, id string) (*models.Property, error) {
	query := `
	SELECT id, owner_id
	FROM properties
	WHERE id = $1
	`

	var prop models.Property
	var ownerID sql.NullString
	err := d.db.QueryRowContext(ctx, query, id).Scan(&prop.ID, &ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get property: %w", err)
	}

	if ownerID.Valid {
		prop.OwnerID = ownerID.String
	}

	return &prop, nil
}
