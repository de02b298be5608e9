package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/applytrack/internal/apperror"
	"github.com/sakif/applytrack/internal/model"
	"github.com/sakif/applytrack/internal/repository"
)

// Compile-time check that DB satisfies the repository contract.
var _ repository.CompanyRepository = (*DB)(nil)

const companyColumns = `id, name, date, rejected, comments, created_at`

// Create inserts a new company, assigning its ID and CreatedAt.
//
// xid produces 20-character, URL-safe ids that sort by creation time, which
// also makes them a stable tie-breaker for records created in the same
// nanosecond.
func (db *DB) Create(ctx context.Context, company *model.Company) error {
	company.ID = xid.New().String()
	company.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO companies (`+companyColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		company.ID,
		company.Name,
		company.Date,
		company.Rejected,
		company.Comments,
		company.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating company: %w", err)
	}

	return nil
}

func (db *DB) GetByID(ctx context.Context, id string) (*model.Company, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+companyColumns+`
		 FROM companies
		 WHERE id = ?`,
		id,
	)

	company, err := scanCompany(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("company", id)
		}
		return nil, fmt.Errorf("sqlite: getting company %s: %w", id, err)
	}

	return company, nil
}

// List returns every company, newest first.
func (db *DB) List(ctx context.Context) ([]model.Company, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+companyColumns+`
		 FROM companies
		 ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing companies: %w", err)
	}
	defer rows.Close()

	companies := make([]model.Company, 0)
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning company row: %w", err)
		}
		companies = append(companies, *company)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating companies: %w", err)
	}

	return companies, nil
}

// Update writes the mutable fields (name, rejected, comments). Date and
// CreatedAt are never touched.
func (db *DB) Update(ctx context.Context, company *model.Company) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE companies
		 SET name = ?, rejected = ?, comments = ?
		 WHERE id = ?`,
		company.Name,
		company.Rejected,
		company.Comments,
		company.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating company %s: %w", company.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("company", company.ID)
	}

	return nil
}

func (db *DB) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM companies WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting company %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("company", id)
	}

	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCompany(s scanner) (*model.Company, error) {
	var (
		c         model.Company
		createdAt int64
	)
	if err := s.Scan(&c.ID, &c.Name, &c.Date, &c.Rejected, &c.Comments, &createdAt); err != nil {
		return nil, err
	}
	c.CreatedAt = time.Unix(0, createdAt)
	return &c, nil
}
