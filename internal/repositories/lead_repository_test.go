package repositories

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"leadcrm/internal/models"
)

var leadCols = []string{"id", "user_id", "first_name", "last_name", "email", "phone", "company", "city", "state",
	"source", "status", "score", "lead_value", "last_activity_at", "is_qualified", "created_at", "updated_at"}

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	db := sqlx.NewDb(raw, "postgres")
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func leadRow(id string, ts time.Time) []driver.Value {
	return []driver.Value{id, owner, "Ada", "Lovelace", "ada@example.com", nil, "Analytical", nil, nil,
		"referral", "new", 50, 1200.5, ts, false, ts, ts}
}

func TestLeadRepositoryGetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewLeadRepository(db)
	id := "65a1b2c3d4e5f60718293a4c"
	ts := time.Date(2024, 2, 2, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM leads WHERE id = $1 AND user_id = $2")).
		WithArgs(id, owner).
		WillReturnRows(sqlmock.NewRows(leadCols).AddRow(leadRow(id, ts)...))

	lead, err := repo.GetByID(context.Background(), owner, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if lead.ID != id || lead.Source != models.SourceReferral || lead.Score != 50 {
		t.Errorf("lead = %+v", lead)
	}
	if lead.Phone != nil || lead.Company == nil || *lead.Company != "Analytical" {
		t.Errorf("nullable columns scanned wrong: %+v", lead)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestLeadRepositoryDeleteMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewLeadRepository(db)
	id := "65a1b2c3d4e5f60718293a4c"

	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM leads WHERE id = $1 AND user_id = $2 RETURNING")).
		WithArgs(id, owner).
		WillReturnRows(sqlmock.NewRows(leadCols))

	_, err := repo.Delete(context.Background(), owner, id)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestLeadRepositoryCreateDuplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewLeadRepository(db)

	mock.ExpectExec("INSERT INTO leads").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := repo.Create(context.Background(), &models.Lead{ID: "65a1b2c3d4e5f60718293a4c", UserID: owner, Score: 300})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestLeadRepositoryCreateClampsScore(t *testing.T) {
	db, mock := newMock(t)
	repo := NewLeadRepository(db)

	mock.ExpectExec("INSERT INTO leads").WillReturnResult(sqlmock.NewResult(0, 1))

	lead := &models.Lead{ID: "65a1b2c3d4e5f60718293a4c", UserID: owner, Score: 300}
	if err := repo.Create(context.Background(), lead); err != nil {
		t.Fatal(err)
	}
	if lead.Score != 100 {
		t.Errorf("score = %d, want 100", lead.Score)
	}
}

func TestLeadRepositoryList(t *testing.T) {
	db, mock := newMock(t)
	mock.MatchExpectationsInOrder(false)
	repo := NewLeadRepository(db)
	ts := time.Now().UTC()

	status := models.StatusNew
	q := models.DefaultLeadListQuery()
	q.Status = &status
	q.Page = 3

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM leads WHERE user_id = $1 AND status = $2")).
		WithArgs(owner, "new").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(45))
	rows := sqlmock.NewRows(leadCols)
	for _, id := range []string{"65a1b2c3d4e5f60718293a41", "65a1b2c3d4e5f60718293a42", "65a1b2c3d4e5f60718293a43",
		"65a1b2c3d4e5f60718293a44", "65a1b2c3d4e5f60718293a45"} {
		rows.AddRow(leadRow(id, ts)...)
	}
	mock.ExpectQuery(regexp.QuoteMeta("FROM leads WHERE user_id = $1 AND status = $2 ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4")).
		WithArgs(owner, "new", 20, 40).
		WillReturnRows(rows)

	leads, total, err := repo.List(context.Background(), owner, q)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 45 || len(leads) != 5 {
		t.Errorf("total=%d len=%d", total, len(leads))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUserRepositoryGetByEmailMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "full_name", "password_hash", "profile_pic", "created_at", "updated_at"}))

	_, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
