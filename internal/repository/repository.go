package repository

import (
	"context"

	"github.com/sakif/applytrack/internal/model"
)

// CompanyRepository persists application records.
//
// Create assigns ID and CreatedAt. List returns every record newest first.
// GetByID, Update and Delete return apperror.ErrNotFound for an unknown id.
type CompanyRepository interface {
	Create(ctx context.Context, company *model.Company) error
	GetByID(ctx context.Context, id string) (*model.Company, error)
	List(ctx context.Context) ([]model.Company, error)
	Update(ctx context.Context, company *model.Company) error
	Delete(ctx context.Context, id string) error
}

// Pinger is implemented by repositories that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
