package receipts

import (
	"database/sql"
	"time"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(rc *Receipt) error {
	if rc.CreatedAt.IsZero() {
		rc.CreatedAt = time.Now()
	}
	res, err := r.db.Exec(`INSERT INTO receipts (user_id, email, tier, amount, file_name, file_data, text_preview, status, created_at) VALUES (?,?,?,?,?,?,?,?,?)`,
		rc.UserID, rc.Email, string(rc.Tier), rc.Amount, rc.FileName, rc.FileData, rc.TextPreview, rc.Status, rc.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rc.ID = int(id)
	return nil
}

const receiptColumns = "id, user_id, email, tier, amount, file_name, file_data, IFNULL(text_preview,''), status, created_at"

// List returns receipts newest first; userID 0 means every user (admin view).
func (r *Repository) List(userID int) ([]Receipt, error) {
	rows, err := r.db.Query(`SELECT `+receiptColumns+` FROM receipts WHERE (?=0 OR user_id=?) ORDER BY created_at DESC, id DESC`, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Receipt{}
	for rows.Next() {
		var rc Receipt
		if err := rows.Scan(&rc.ID, &rc.UserID, &rc.Email, &rc.Tier, &rc.Amount, &rc.FileName, &rc.FileData, &rc.TextPreview, &rc.Status, &rc.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}

func (r *Repository) GetByID(id int) (*Receipt, error) {
	row := r.db.QueryRow(`SELECT `+receiptColumns+` FROM receipts WHERE id=? LIMIT 1`, id)
	var rc Receipt
	if err := row.Scan(&rc.ID, &rc.UserID, &rc.Email, &rc.Tier, &rc.Amount, &rc.FileName, &rc.FileData, &rc.TextPreview, &rc.Status, &rc.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &rc, nil
}

// UpdateStatus transitions a pending receipt; returns false when the
// receipt was already processed (the transitions are terminal).
func (r *Repository) UpdateStatus(id int, status string) (bool, error) {
	res, err := r.db.Exec(`UPDATE receipts SET status=? WHERE id=? AND status=?`, status, id, StatusPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ApprovedRevenue sums approved receipt amounts; since is the zero time
// for an all-time total.
func (r *Repository) ApprovedRevenue(since time.Time) (float64, error) {
	var total sql.NullFloat64
	err := r.db.QueryRow(`SELECT SUM(amount) FROM receipts WHERE status=? AND created_at >= ?`, StatusApproved, since).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Float64, nil
}

func (r *Repository) CountByStatus(status string) (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(1) FROM receipts WHERE status=?`, status).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
