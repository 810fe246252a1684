package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"donatrack/internal/domain"
)

const donationColumns = `id, donor_name, donor_phone, donor_email, donation_type, quantity, destination, created_at, status, token, photo_path`

// DonationRepositorySQLite implements donation persistence over SQLite.
type DonationRepositorySQLite struct {
	db *sql.DB
}

// NewDonationRepository creates a new donation repo.
func NewDonationRepository(db *sql.DB) *DonationRepositorySQLite {
	return &DonationRepositorySQLite{db: db}
}

// Create inserts a new donation record and fills in the assigned id.
// A token collision is reported as domain.ErrDuplicateToken so the caller
// can mint a fresh token and retry.
func (r *DonationRepositorySQLite) Create(ctx context.Context, donation *domain.Donation) error {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO donations (donor_name, donor_phone, donor_email, donation_type, quantity, destination, created_at, status, token, photo_path)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL);
`,
		donation.DonorName,
		donation.DonorPhone,
		donation.DonorEmail,
		donation.DonationType,
		donation.Quantity,
		donation.Destination,
		donation.CreatedAt,
		donation.Status,
		donation.Token,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateToken
		}
		return fmt.Errorf("insert donation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert donation id: %w", err)
	}
	donation.ID = id
	return nil
}

// List returns donations ordered by creation time descending. A non-empty
// query restricts results to rows where any searchable field contains it as
// a substring; a non-empty status restricts to an exact status match. Both
// filters combine.
func (r *DonationRepositorySQLite) List(ctx context.Context, query, status string) ([]domain.Donation, error) {
	sb := strings.Builder{}
	sb.WriteString(`SELECT ` + donationColumns + ` FROM donations WHERE 1=1`)
	var args []any

	if query != "" {
		like := "%" + escapeLike(query) + "%"
		sb.WriteString(`
AND (donor_name LIKE ? ESCAPE '\'
  OR donor_phone LIKE ? ESCAPE '\'
  OR donor_email LIKE ? ESCAPE '\'
  OR donation_type LIKE ? ESCAPE '\'
  OR destination LIKE ? ESCAPE '\'
  OR token LIKE ? ESCAPE '\')`)
		args = append(args, like, like, like, like, like, like)
	}
	if status != "" {
		sb.WriteString(" AND status = ?")
		args = append(args, status)
	}
	sb.WriteString(" ORDER BY created_at DESC")

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	defer rows.Close()

	var items []domain.Donation
	for rows.Next() {
		donation, err := scanDonation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, donation)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	return items, nil
}

// GetByID fetches a donation by its internal id.
func (r *DonationRepositorySQLite) GetByID(ctx context.Context, id int64) (domain.Donation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+donationColumns+` FROM donations WHERE id = ?`, id)
	return scanDonation(row)
}

// GetByToken fetches a donation by its public token.
func (r *DonationRepositorySQLite) GetByToken(ctx context.Context, token string) (domain.Donation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+donationColumns+` FROM donations WHERE token = ?`, token)
	return scanDonation(row)
}

// Update persists the mutable columns of the donation. The token and the
// creation timestamp are never touched.
func (r *DonationRepositorySQLite) Update(ctx context.Context, donation domain.Donation) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE donations
SET donor_name = ?,
    donor_phone = ?,
    donor_email = ?,
    donation_type = ?,
    quantity = ?,
    destination = ?,
    status = ?,
    photo_path = ?
WHERE id = ?;
`,
		donation.DonorName,
		donation.DonorPhone,
		donation.DonorEmail,
		donation.DonationType,
		donation.Quantity,
		donation.Destination,
		donation.Status,
		nullableString(donation.PhotoPath),
		donation.ID,
	)
	if err != nil {
		return fmt.Errorf("update donation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update donation: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a donation permanently. Only donations still in the initial
// status may be removed; anything else is a policy violation.
func (r *DonationRepositorySQLite) Delete(ctx context.Context, id int64) error {
	donation, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !donation.Deletable() {
		return domain.ErrDonationFinalized
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM donations WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete donation: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDonation(row rowScanner) (domain.Donation, error) {
	var donation domain.Donation
	var photo sql.NullString
	err := row.Scan(
		&donation.ID,
		&donation.DonorName,
		&donation.DonorPhone,
		&donation.DonorEmail,
		&donation.DonationType,
		&donation.Quantity,
		&donation.Destination,
		&donation.CreatedAt,
		&donation.Status,
		&donation.Token,
		&photo,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Donation{}, domain.ErrNotFound
		}
		return domain.Donation{}, fmt.Errorf("scan donation: %w", err)
	}
	if photo.Valid {
		donation.PhotoPath = photo.String
	}
	return donation, nil
}

// escapeLike neutralizes LIKE wildcards in user input so the search term is
// matched literally.
func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	return errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintUnique
}
