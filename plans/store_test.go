package plans

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"visionary-backend/migrations"
	"visionary-backend/tiers"
)

func planColumns() []string {
	return []string{"id", "user_id", "user_email", "company_name", "plan_text", "form_data", "created_at"}
}

func TestRecordUnderCapInsertsWithoutEviction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT").WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectExec("INSERT INTO plans").
		WillReturnResult(sqlmock.NewResult(10, 1))

	user := &migrations.User{ID: 1, Email: "a@b.fi", Tier: tiers.Free}
	store := NewStore(NewRepository(db))
	p := &SavedPlan{CompanyName: "Kahvila", PlanText: "plan"}
	evicted, err := store.Record(user, p)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if evicted != 0 {
		t.Errorf("evicted = %d, want 0", evicted)
	}
	if p.ID != 10 {
		t.Errorf("plan id = %d, want 10", p.ID)
	}
	if p.UserID != 1 || p.UserEmail != "a@b.fi" {
		t.Errorf("owner not stamped: %+v", p)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRecordAtCapEvictsOldest(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery("SELECT COUNT").WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery("ORDER BY created_at ASC, id ASC").WithArgs(1).
		WillReturnRows(sqlmock.NewRows(planColumns()).
			AddRow(3, 1, "a@b.fi", "Old", "old text", "{}", created))
	mock.ExpectExec("DELETE FROM plans").WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO plans").
		WillReturnResult(sqlmock.NewResult(42, 1))

	user := &migrations.User{ID: 1, Email: "a@b.fi", Tier: tiers.Free}
	store := NewStore(NewRepository(db))
	p := &SavedPlan{CompanyName: "Uusi", PlanText: "new text"}
	evicted, err := store.Record(user, p)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if evicted != 3 {
		t.Errorf("evicted = %d, want 3", evicted)
	}
	if p.ID != 42 {
		t.Errorf("plan id = %d, want 42", p.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRecordUnlimitedTierNeverEvicts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	// no count query expected: the insert is the only statement
	mock.ExpectExec("INSERT INTO plans").
		WillReturnResult(sqlmock.NewResult(99, 1))

	user := &migrations.User{ID: 2, Email: "pro@b.fi", Tier: tiers.Pro}
	store := NewStore(NewRepository(db))
	evicted, err := store.Record(user, &SavedPlan{CompanyName: "Iso", PlanText: "text"})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if evicted != 0 {
		t.Errorf("evicted = %d, want 0", evicted)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRecordEvictionFailureStillInserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery("SELECT COUNT").WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery("ORDER BY created_at ASC, id ASC").WithArgs(1).
		WillReturnRows(sqlmock.NewRows(planColumns()).
			AddRow(3, 1, "a@b.fi", "Old", "old text", "{}", created))
	mock.ExpectExec("DELETE FROM plans").WithArgs(3).
		WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectExec("INSERT INTO plans").
		WillReturnResult(sqlmock.NewResult(43, 1))

	user := &migrations.User{ID: 1, Email: "a@b.fi", Tier: tiers.Free}
	store := NewStore(NewRepository(db))
	p := &SavedPlan{PlanText: "text"}
	evicted, err := store.Record(user, p)
	if err != nil {
		t.Fatalf("a failed eviction must not fail the save: %v", err)
	}
	if evicted != 0 {
		t.Errorf("evicted = %d, want 0 after failed delete", evicted)
	}
	if p.ID != 43 {
		t.Errorf("plan id = %d, want 43", p.ID)
	}
}

func TestRecordDefaultsCompanyName(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT").WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("INSERT INTO plans").
		WillReturnResult(sqlmock.NewResult(1, 1))

	user := &migrations.User{ID: 1, Email: "a@b.fi", Tier: tiers.Free}
	store := NewStore(NewRepository(db))
	p := &SavedPlan{PlanText: "text"}
	if _, err := store.Record(user, p); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if p.CompanyName != "Untitled" {
		t.Errorf("company name = %q, want Untitled", p.CompanyName)
	}
}

func TestScanPlanToleratesCorruptSnapshot(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery("FROM plans WHERE id").WithArgs(5).
		WillReturnRows(sqlmock.NewRows(planColumns()).
			AddRow(5, 1, "a@b.fi", "Kahvila", "text", "{not json", created))

	repo := NewRepository(db)
	p, err := repo.GetByID(5)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if p == nil {
		t.Fatal("expected a plan")
	}
	if p.PlanText != "text" {
		t.Errorf("plan text = %q, want text", p.PlanText)
	}
	if p.FormData.CompanyName != "" {
		t.Errorf("corrupt snapshot should scan as empty form, got %+v", p.FormData)
	}
}
