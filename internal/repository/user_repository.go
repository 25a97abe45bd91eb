package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/parking-reservation/internal/model"
)

// UserStore keeps accounts and their eco points balance.  Usernames are
// stored as given; callers normalise them.
type UserStore interface {
	Create(ctx context.Context, u model.User) error
	Get(ctx context.Context, username string) (model.User, error)
	SetPoints(ctx context.Context, username string, points int) error
}

// UserRepo is the MySQL-backed UserStore (table 'users').
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts u.  A duplicate username yields ErrUsernameExists.
func (r *UserRepo) Create(ctx context.Context, u model.User) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, password_hash, role, points) VALUES (?,?,?,?)",
		u.Username, u.PasswordHash, u.Role, u.Points)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return ErrUsernameExists
		}
		return err
	}
	return nil
}

// Get fetches a user by username.
func (r *UserRepo) Get(ctx context.Context, username string) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT username,password_hash,role,points FROM users WHERE username=? LIMIT 1",
		username).Scan(&u.Username, &u.PasswordHash, &u.Role, &u.Points)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// SetPoints overwrites the balance.  MySQL reports zero affected rows for
// an unchanged value, so a missing user is detected with a lookup instead.
func (r *UserRepo) SetPoints(ctx context.Context, username string, points int) error {
	if points < 0 {
		points = 0
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET points=? WHERE username=?", points, username)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	_, err = r.Get(ctx, username)
	return err
}

// NormalizeUsername trims and lower-cases a login name.
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
