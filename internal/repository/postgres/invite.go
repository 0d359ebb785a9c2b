package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/relay/internal/models"
)

type InviteStore struct {
	pool *pgxpool.Pool
}

func NewInviteStore(pool *pgxpool.Pool) *InviteStore {
	return &InviteStore{pool: pool}
}

func (s *InviteStore) Create(ctx context.Context, tenantID uuid.UUID, email, role, token string, invitedBy uuid.UUID) (*models.Invitation, error) {
	// Invitations expire after 7 days. The expiry is computed in SQL so it
	// uses the database clock — the same clock that later checks it.
	query := `
		INSERT INTO invitations (tenant_id, email, role, token, invited_by, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, now() + interval '7 days', now())
		RETURNING id, tenant_id, email, role, token, invited_by, accepted_at, expires_at, created_at`

	var inv models.Invitation
	err := s.pool.QueryRow(ctx, query, tenantID, email, role, token, invitedBy).Scan(
		&inv.ID,
		&inv.TenantID,
		&inv.Email,
		&inv.Role,
		&inv.Token,
		&inv.InvitedBy,
		&inv.AcceptedAt,
		&inv.ExpiresAt,
		&inv.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert invitation: %w", err)
	}
	return &inv, nil
}

func (s *InviteStore) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	query := `
		SELECT id, tenant_id, email, role, token, invited_by, accepted_at, expires_at, created_at
		FROM invitations
		WHERE token = $1`

	var inv models.Invitation
	err := s.pool.QueryRow(ctx, query, token).Scan(
		&inv.ID,
		&inv.TenantID,
		&inv.Email,
		&inv.Role,
		&inv.Token,
		&inv.InvitedBy,
		&inv.AcceptedAt,
		&inv.ExpiresAt,
		&inv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	return &inv, nil
}

func (s *InviteStore) MarkAccepted(ctx context.Context, inviteID uuid.UUID) error {
	query := `
		UPDATE invitations
		SET accepted_at = now()
		WHERE id = $1 AND accepted_at IS NULL`

	_, err := s.pool.Exec(ctx, query, inviteID)
	if err != nil {
		return fmt.Errorf("mark invitation accepted: %w", err)
	}
	return nil
}
