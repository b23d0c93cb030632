package coupons

import (
	"database/sql"
)

type Coupon struct {
	ID              int    `json:"id"`
	Code            string `json:"code"`
	DiscountPercent int    `json:"discount_percent"`
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// GetByCode matches a coupon by case-insensitive equality, so 'sani10'
// redeems a stored 'SANI10'.
func (r *Repository) GetByCode(code string) (*Coupon, error) {
	row := r.db.QueryRow(`SELECT id, code, discount_percent FROM coupons WHERE UPPER(code) = UPPER(?) LIMIT 1`, code)
	var cp Coupon
	if err := row.Scan(&cp.ID, &cp.Code, &cp.DiscountPercent); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &cp, nil
}

func (r *Repository) List() ([]Coupon, error) {
	rows, err := r.db.Query(`SELECT id, code, discount_percent FROM coupons ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Coupon{}
	for rows.Next() {
		var cp Coupon
		if err := rows.Scan(&cp.ID, &cp.Code, &cp.DiscountPercent); err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, rows.Err()
}

func (r *Repository) Create(cp *Coupon) error {
	res, err := r.db.Exec(`INSERT INTO coupons (code, discount_percent) VALUES (?,?)`, cp.Code, cp.DiscountPercent)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	cp.ID = int(id)
	return nil
}

func (r *Repository) Delete(id int) error {
	_, err := r.db.Exec(`DELETE FROM coupons WHERE id=?`, id)
	return err
}
