package receipts

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"

	"visionary-backend/coupons"
	"visionary-backend/login"
	"visionary-backend/migrations"
	"visionary-backend/tiers"
)

func userCols() []string {
	return []string{"id", "name", "phone", "email", "password", "role", "tier",
		"subscription_status", "subscription_end_date", "generations_today",
		"last_generation_date", "dark_mode", "language", "created_at", "updated_at"}
}

func adminRow() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(userCols()).
		AddRow(1, "Admin", "", "admin@test.fi", "admin", "admin", "free",
			migrations.StatusNone, nil, 0, "", false, "en", now, now)
}

func memberRow(id int, tier tiers.Tier, status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(userCols()).
		AddRow(id, "Member", "", "member@test.fi", "pw", "user", string(tier),
			status, nil, 0, "", false, "en", now, now)
}

func receiptCols() []string {
	return []string{"id", "user_id", "email", "tier", "amount", "file_name",
		"file_data", "text_preview", "status", "created_at"}
}

func setup(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	migrations.Init(db)

	h := NewHandler(NewRepository(db), coupons.NewRepository(db))
	r := gin.New()
	h.RegisterRoutes(r)
	return r, mock
}

func TestSubmitReceiptEntersPendingRegime(t *testing.T) {
	r, mock := setup(t)

	// session lookup, coupon match, insert, then the pending flip
	mock.ExpectQuery("FROM users WHERE email").
		WillReturnRows(memberRow(9, tiers.Free, migrations.StatusNone))
	mock.ExpectQuery("UPPER").WithArgs("sani10").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "discount_percent"}).
			AddRow(1, "SANI10", 10))
	mock.ExpectExec("INSERT INTO receipts").
		WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectExec("UPDATE users SET tier").
		WithArgs("plus", migrations.StatusPending, 9).
		WillReturnResult(sqlmock.NewResult(0, 1))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("tier", "plus")
	_ = mw.WriteField("coupon", "sani10")
	fw, _ := mw.CreateFormFile("receipt", "payment.png")
	_, _ = fw.Write([]byte("fake image bytes"))
	mw.Close()

	token, _ := login.IssueToken("member@test.fi", false)
	req := httptest.NewRequest(http.MethodPost, "/checkout/receipt", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data Receipt `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.Amount != 9 { // 10 EUR minus the 10% coupon
		t.Errorf("amount = %v, want 9", resp.Data.Amount)
	}
	if resp.Data.Status != StatusPending {
		t.Errorf("status = %q, want pending", resp.Data.Status)
	}
	if resp.Data.FileData != "" {
		t.Error("file payload must be stripped from the response")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSubmitReceiptRejectsFreeTier(t *testing.T) {
	r, mock := setup(t)

	mock.ExpectQuery("FROM users WHERE email").
		WillReturnRows(memberRow(9, tiers.Free, migrations.StatusNone))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("tier", "free")
	fw, _ := mw.CreateFormFile("receipt", "payment.png")
	_, _ = fw.Write([]byte("x"))
	mw.Close()

	token, _ := login.IssueToken("member@test.fi", false)
	req := httptest.NewRequest(http.MethodPost, "/checkout/receipt", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestSubmitReceiptRequiresFile(t *testing.T) {
	r, mock := setup(t)

	mock.ExpectQuery("FROM users WHERE email").
		WillReturnRows(memberRow(9, tiers.Free, migrations.StatusNone))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("tier", "plus")
	mw.Close()

	token, _ := login.IssueToken("member@test.fi", false)
	req := httptest.NewRequest(http.MethodPost, "/checkout/receipt", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "attach") {
		t.Errorf("unexpected error message: %s", w.Body.String())
	}
}

func TestApproveActivatesSubscription(t *testing.T) {
	r, mock := setup(t)

	mock.ExpectQuery("FROM users WHERE email").WillReturnRows(adminRow())
	mock.ExpectQuery("FROM receipts WHERE id").WithArgs(4).
		WillReturnRows(sqlmock.NewRows(receiptCols()).
			AddRow(4, 9, "member@test.fi", "plus", 9.0, "payment.png", "data:...", "", StatusPending, time.Now()))
	mock.ExpectExec("UPDATE receipts SET status").
		WithArgs(StatusApproved, 4, StatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE users SET tier").
		WithArgs("plus", migrations.StatusActive, sqlmock.AnyArg(), 9).
		WillReturnResult(sqlmock.NewResult(0, 1))

	token, _ := login.IssueToken("admin@test.fi", false)
	req := httptest.NewRequest(http.MethodPost, "/receipts/4/approve", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Status  string `json:"status"`
		EndDate string `json:"subscription_end_date"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "approved" {
		t.Errorf("status = %q, want approved", resp.Status)
	}
	end, err := time.Parse(time.RFC3339, resp.EndDate)
	if err != nil {
		t.Fatalf("parse end date %q: %v", resp.EndDate, err)
	}
	want := time.Now().Add(tiers.SubscriptionTerm)
	if diff := end.Sub(want); diff < -time.Minute || diff > time.Minute {
		t.Errorf("end date %v not ~30 days out (want ~%v)", end, want)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestApproveAlreadyProcessedConflicts(t *testing.T) {
	r, mock := setup(t)

	mock.ExpectQuery("FROM users WHERE email").WillReturnRows(adminRow())
	mock.ExpectQuery("FROM receipts WHERE id").WithArgs(4).
		WillReturnRows(sqlmock.NewRows(receiptCols()).
			AddRow(4, 9, "member@test.fi", "plus", 9.0, "payment.png", "data:...", "", StatusApproved, time.Now()))
	// the guarded update matches no rows
	mock.ExpectExec("UPDATE receipts SET status").
		WillReturnResult(sqlmock.NewResult(0, 0))

	token, _ := login.IssueToken("admin@test.fi", false)
	req := httptest.NewRequest(http.MethodPost, "/receipts/4/approve", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
	if !strings.Contains(w.Body.String(), "already processed") {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestApproveRequiresAdmin(t *testing.T) {
	r, mock := setup(t)

	mock.ExpectQuery("FROM users WHERE email").
		WillReturnRows(memberRow(9, tiers.Plus, migrations.StatusPending))

	token, _ := login.IssueToken("member@test.fi", false)
	req := httptest.NewRequest(http.MethodPost, "/receipts/4/approve", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestRejectClearsPendingClaim(t *testing.T) {
	r, mock := setup(t)

	mock.ExpectQuery("FROM users WHERE email").WillReturnRows(adminRow())
	mock.ExpectQuery("FROM receipts WHERE id").WithArgs(4).
		WillReturnRows(sqlmock.NewRows(receiptCols()).
			AddRow(4, 9, "member@test.fi", "plus", 9.0, "payment.png", "data:...", "", StatusPending, time.Now()))
	mock.ExpectExec("UPDATE receipts SET status").
		WithArgs(StatusRejected, 4, StatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE users SET subscription_status").
		WithArgs(migrations.StatusNone, 9, migrations.StatusPending, "plus").
		WillReturnResult(sqlmock.NewResult(0, 1))

	token, _ := login.IssueToken("admin@test.fi", false)
	req := httptest.NewRequest(http.MethodPost, "/receipts/4/reject", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
