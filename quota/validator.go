package quota

import (
	"context"
	"database/sql"
	"log"
	"time"

	"visionary-backend/migrations"
	"visionary-backend/tiers"
)

// Validator enforces the per-day generation quota. The check and the
// counter update are a single conditional UPDATE so two concurrent
// requests from the same account cannot both slip under the cap.
type Validator struct {
	db *sql.DB
}

func NewValidator(db *sql.DB) *Validator { return &Validator{db: db} }

// Today returns the calendar date the daily counters are keyed by.
func Today() string {
	return time.Now().Format("2006-01-02")
}

// DailyLimit resolves the applicable limit for a user. A pending payment
// receipt overrides the tier limit down to a single trial generation.
func DailyLimit(u *migrations.User) int {
	if u.SubscriptionStatus == migrations.StatusPending {
		return tiers.PendingDailyLimit
	}
	return tiers.For(u.Tier).DailyLimit
}

// EffectiveCount is the number of generations that count against today.
// A counter recorded on an earlier date never blocks.
func EffectiveCount(u *migrations.User, today string) int {
	if u.LastGenerationDate != today {
		return 0
	}
	return u.GenerationsToday
}

// CanGenerate reports whether the user has quota left today, without
// consuming any. Used for display; the authoritative check is Reserve.
func CanGenerate(u *migrations.User, today string) bool {
	return EffectiveCount(u, today) < DailyLimit(u)
}

// Reserve atomically checks the daily cap and records one generation.
// The WHERE clause evaluates the effective count (zero when the stored
// date is stale) against the limit, and the SET either increments or
// restarts the counter at 1 for a new date. Zero rows affected means the
// limit was reached.
func (v *Validator) Reserve(ctx context.Context, userID int, today string, limit int) (bool, error) {
	res, err := v.db.ExecContext(ctx,
		`UPDATE users
		 SET generations_today = IF(last_generation_date = ?, generations_today + 1, 1),
		     last_generation_date = ?
		 WHERE id = ? AND IF(last_generation_date = ?, generations_today, 0) < ?`,
		today, today, userID, today, limit)
	if err != nil {
		log.Printf("[quota][error] op=reserve user_id=%d err=%v", userID, err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		log.Printf("[quota][deny] op=reserve user_id=%d limit=%d reason=limit_reached", userID, limit)
		return false, nil
	}
	log.Printf("[quota][ok] op=reserve user_id=%d limit=%d date=%s", userID, limit, today)
	return true, nil
}

// Release undoes a reservation after the generation call itself failed,
// so a failed call never consumes quota. Only a same-day positive counter
// is decremented.
func (v *Validator) Release(ctx context.Context, userID int, today string) error {
	_, err := v.db.ExecContext(ctx,
		`UPDATE users
		 SET generations_today = generations_today - 1
		 WHERE id = ? AND last_generation_date = ? AND generations_today > 0`,
		userID, today)
	if err != nil {
		log.Printf("[quota][error] op=release user_id=%d err=%v", userID, err)
		return err
	}
	log.Printf("[quota][ok] op=release user_id=%d date=%s", userID, today)
	return nil
}
