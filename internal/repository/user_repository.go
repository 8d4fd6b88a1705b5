package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/utils"
)

const userCols = "id, username, password_hash, full_name, role, permissions, is_active, created_at"

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create hashes password and inserts u, filling u.ID.  A nil permission
// list takes the role defaults.
func (r *UserRepo) Create(ctx context.Context, u *model.User, password string, cost int) error {
	u.Username = strings.ToLower(strings.TrimSpace(u.Username))
	if u.Permissions == nil {
		u.Permissions = model.DefaultPermissions[u.Role]
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	perms, err := json.Marshal(u.Permissions)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, password_hash, full_name, role, permissions, is_active) VALUES (?,?,?,?,?,?)",
		u.Username, hash, u.FullName, u.Role, perms, u.IsActive)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	u.PasswordHash = hash
	return nil
}

// EnsureAdmin creates the admin account when username does not exist.  It
// reports whether a user was created.
func (r *UserRepo) EnsureAdmin(ctx context.Context, username, password string, cost int) (bool, error) {
	if _, err := r.GetByUsername(ctx, username); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	u := &model.User{Username: username, FullName: "Administrator", Role: model.RoleAdmin, IsActive: true}
	if err := r.Create(ctx, u, password, cost); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetByUsername fetches a user by normalized username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	return r.one(ctx, "SELECT "+userCols+" FROM users WHERE username=? LIMIT 1", username)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return r.one(ctx, "SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id)
}

func (r *UserRepo) one(ctx context.Context, q string, arg any) (*model.User, error) {
	var (
		u     model.User
		perms sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, q, arg).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.Role, &perms, &u.IsActive, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if perms.Valid && perms.String != "" {
		if err := json.Unmarshal([]byte(perms.String), &u.Permissions); err != nil {
			return nil, err
		}
	}
	if u.Permissions == nil {
		u.Permissions = model.DefaultPermissions[u.Role]
	}
	return &u, nil
}
