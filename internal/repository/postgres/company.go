package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/xid"

	"github.com/sakif/applytrack/internal/apperror"
	"github.com/sakif/applytrack/internal/model"
	"github.com/sakif/applytrack/internal/repository"
)

var _ repository.CompanyRepository = (*DB)(nil)

func (db *DB) Create(ctx context.Context, company *model.Company) error {
	company.ID = xid.New().String()

	err := db.conn.QueryRowContext(ctx,
		`INSERT INTO companies (id, name, date, rejected, comments)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		company.ID, company.Name, company.Date, company.Rejected, company.Comments,
	).Scan(&company.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: creating company: %w", err)
	}

	return nil
}

func (db *DB) GetByID(ctx context.Context, id string) (*model.Company, error) {
	var c model.Company

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, date, rejected, comments, created_at
		 FROM companies
		 WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Name, &c.Date, &c.Rejected, &c.Comments, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("company", id)
		}
		return nil, fmt.Errorf("postgres: getting company %s: %w", id, err)
	}

	return &c, nil
}

func (db *DB) List(ctx context.Context) ([]model.Company, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, date, rejected, comments, created_at
		 FROM companies
		 ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing companies: %w", err)
	}
	defer rows.Close()

	companies := make([]model.Company, 0)
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Date, &c.Rejected, &c.Comments, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scanning company row: %w", err)
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterating companies: %w", err)
	}

	return companies, nil
}

func (db *DB) Update(ctx context.Context, company *model.Company) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE companies
		 SET name = $1, rejected = $2, comments = $3
		 WHERE id = $4`,
		company.Name, company.Rejected, company.Comments, company.ID,
	)
	if err != nil {
		return fmt.Errorf("postgres: updating company %s: %w", company.ID, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("postgres: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("company", company.ID)
	}
	return nil
}

func (db *DB) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: deleting company %s: %w", id, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("postgres: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("company", id)
	}
	return nil
}
