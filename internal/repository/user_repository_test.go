package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/parking-reservation/internal/model"
)

func TestUserRepoCreateDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO users").
		WithArgs("alice", "hash", model.RoleUser, 0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO users").
		WithArgs("alice", "hash", model.RoleUser, 0).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	repo := NewUserRepo(db)
	u := model.User{Username: "alice", PasswordHash: "hash", Role: model.RoleUser}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if err := repo.Create(context.Background(), u); !errors.Is(err, ErrUsernameExists) {
		t.Fatalf("expected ErrUsernameExists, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepoGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT username,password_hash,role,points FROM users").
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"username", "password_hash", "role", "points"}).
			AddRow("admin", "h", model.RoleAdmin, 100))
	mock.ExpectQuery("SELECT username,password_hash,role,points FROM users").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"username", "password_hash", "role", "points"}))

	repo := NewUserRepo(db)
	u, err := repo.Get(context.Background(), "admin")
	if err != nil || u.Role != model.RoleAdmin || u.Points != 100 {
		t.Fatalf("Get = %+v, %v", u, err)
	}
	if _, err := repo.Get(context.Background(), "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepoSetPointsUnchangedValue(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	// zero rows affected for an unchanged balance, then the existence lookup
	mock.ExpectExec("UPDATE users SET points").
		WithArgs(40, "alice").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT username,password_hash,role,points FROM users").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"username", "password_hash", "role", "points"}).
			AddRow("alice", "h", model.RoleUser, 40))

	if err := NewUserRepo(db).SetPoints(context.Background(), "alice", 40); err != nil {
		t.Fatalf("SetPoints: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMemoryUserRepo(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryUserRepo()
	if err := r.Create(ctx, model.User{Username: "bob", Points: 5}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := r.Create(ctx, model.User{Username: "bob"}); !errors.Is(err, ErrUsernameExists) {
		t.Fatalf("expected ErrUsernameExists, got %v", err)
	}
	if err := r.SetPoints(ctx, "bob", -3); err != nil {
		t.Fatalf("SetPoints: %v", err)
	}
	if u, _ := r.Get(ctx, "bob"); u.Points != 0 {
		t.Fatalf("balance must be floored at 0, got %d", u.Points)
	}
	if err := r.SetPoints(ctx, "ghost", 1); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
