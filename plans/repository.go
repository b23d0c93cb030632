package plans

import (
	"database/sql"
	"encoding/json"
	"time"

	"visionary-backend/finance"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(p *SavedPlan) error {
	form, err := json.Marshal(p.FormData)
	if err != nil {
		return err
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	res, err := r.db.Exec(`INSERT INTO plans (user_id, user_email, company_name, plan_text, form_data, created_at) VALUES (?,?,?,?,?,?)`,
		p.UserID, p.UserEmail, p.CompanyName, p.PlanText, string(form), p.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = int(id)
	return nil
}

// ListByUser returns the user's plans newest first for display.
func (r *Repository) ListByUser(userID int) ([]SavedPlan, error) {
	rows, err := r.db.Query(`SELECT id, user_id, user_email, company_name, plan_text, form_data, created_at FROM plans WHERE user_id=? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []SavedPlan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *Repository) GetByID(id int) (*SavedPlan, error) {
	row := r.db.QueryRow(`SELECT id, user_id, user_email, company_name, plan_text, form_data, created_at FROM plans WHERE id=? LIMIT 1`, id)
	p, err := scanPlan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (r *Repository) CountByUser(userID int) (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(1) FROM plans WHERE user_id=?`, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// OldestByUser finds the eviction candidate: minimum created_at, ties
// broken by lowest id so the choice is stable.
func (r *Repository) OldestByUser(userID int) (*SavedPlan, error) {
	row := r.db.QueryRow(`SELECT id, user_id, user_email, company_name, plan_text, form_data, created_at FROM plans WHERE user_id=? ORDER BY created_at ASC, id ASC LIMIT 1`, userID)
	p, err := scanPlan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (r *Repository) Delete(id int) error {
	_, err := r.db.Exec(`DELETE FROM plans WHERE id=?`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(row rowScanner) (*SavedPlan, error) {
	var p SavedPlan
	var form string
	if err := row.Scan(&p.ID, &p.UserID, &p.UserEmail, &p.CompanyName, &p.PlanText, &form, &p.CreatedAt); err != nil {
		return nil, err
	}
	if form != "" {
		if err := json.Unmarshal([]byte(form), &p.FormData); err != nil {
			// a corrupt snapshot should not make the plan unreadable
			p.FormData = finance.BusinessFormData{}
		}
	}
	return &p, nil
}
