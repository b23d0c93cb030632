package plans

import (
	"fmt"
	"log"

	"visionary-backend/migrations"
	"visionary-backend/tiers"
)

// Store applies the per-tier storage policy on top of the repository:
// when a user is at their cap, exactly one plan — the oldest — is evicted
// before the new one is inserted. The insert is never blocked: an eviction
// failure is logged and reported alongside, since losing a freshly
// generated plan is worse than briefly exceeding the cap.
type Store struct {
	repo *Repository
}

func NewStore(repo *Repository) *Store {
	return &Store{repo: repo}
}

// Record persists a newly generated plan for the user. It returns the id
// of the evicted plan (0 when nothing was evicted) and a non-nil error
// only when the insert itself failed.
func (s *Store) Record(user *migrations.User, p *SavedPlan) (int, error) {
	evicted := 0
	cap := tiers.For(user.Tier).StorageCap
	if cap > 0 {
		count, err := s.repo.CountByUser(user.ID)
		if err != nil {
			log.Printf("[plans][error] op=count user_id=%d err=%v", user.ID, err)
		} else if count >= cap {
			oldest, err := s.repo.OldestByUser(user.ID)
			if err != nil || oldest == nil {
				log.Printf("[plans][evict_skip] user_id=%d count=%d cap=%d err=%v", user.ID, count, cap, err)
			} else if err := s.repo.Delete(oldest.ID); err != nil {
				log.Printf("[plans][evict_failed] user_id=%d plan_id=%d err=%v", user.ID, oldest.ID, err)
			} else {
				evicted = oldest.ID
				log.Printf("[plans][evict] user_id=%d plan_id=%d created_at=%s", user.ID, oldest.ID, oldest.CreatedAt.Format("2006-01-02T15:04:05"))
			}
		}
	}

	if p.CompanyName == "" {
		p.CompanyName = "Untitled"
	}
	p.UserID = user.ID
	p.UserEmail = user.Email
	if err := s.repo.Insert(p); err != nil {
		return evicted, fmt.Errorf("insert plan: %w", err)
	}
	log.Printf("[plans][saved] user_id=%d plan_id=%d company=%q evicted=%d", user.ID, p.ID, p.CompanyName, evicted)
	return evicted, nil
}
