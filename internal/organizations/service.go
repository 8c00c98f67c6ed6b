package organizations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	acctshared "github.com/grandlivre-erp/grandlivre-erp/internal/accounting/shared"
	"github.com/grandlivre-erp/grandlivre-erp/internal/platform/httpx"
)

// Service manages the organization registry.
type Service struct {
	pool *pgxpool.Pool
}

// NewService constructs the organization service.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

const organizationColumns = `id, name, siren, created_at, updated_at`

// Get fetches one organization.
func (s *Service) Get(ctx context.Context, id int64) (Organization, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+organizationColumns+` FROM organizations WHERE id = $1`, id)
	org, err := scanOrganization(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Organization{}, httpx.ErrNotFound
	}
	return org, err
}

// Create registers an organization after validating its SIREN.
func (s *Service) Create(ctx context.Context, name, siren string) (Organization, error) {
	name = strings.TrimSpace(name)
	siren = strings.TrimSpace(siren)
	if name == "" {
		return Organization{}, fmt.Errorf("%w: name required", acctshared.ErrInvalidInput)
	}
	if err := ValidateSIREN(siren); err != nil {
		return Organization{}, err
	}
	row := s.pool.QueryRow(ctx, `INSERT INTO organizations (name, siren) VALUES ($1, $2) RETURNING `+organizationColumns, name, siren)
	return scanOrganization(row)
}

// ValidateSIREN checks the 9-digit format.
func ValidateSIREN(siren string) error {
	if len(siren) != 9 {
		return fmt.Errorf("%w: siren must be 9 digits", acctshared.ErrInvalidInput)
	}
	for _, r := range siren {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: siren must be 9 digits", acctshared.ErrInvalidInput)
		}
	}
	return nil
}

func scanOrganization(row pgx.Row) (Organization, error) {
	var org Organization
	err := row.Scan(&org.ID, &org.Name, &org.SIREN, &org.CreatedAt, &org.UpdatedAt)
	return org, err
}
