package store

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/pantry/internal/apperror"
	"github.com/dukerupert/pantry/internal/model"
)

type UserStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db, now: utcNow}
}

func scanUser(sc scanner) (*model.User, error) {
	var u model.User
	err := sc.Scan(&u.ID, &u.Username, &u.FullName, &u.Email, &u.PasswordHash, &u.DietPreference, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

const userCols = `id, username, full_name, email, password_hash, diet_preference, created_at, updated_at`

// UserUpdate carries a profile edit. An empty PasswordHash keeps the current
// password.
type UserUpdate struct {
	Username       string
	FullName       string
	Email          string
	PasswordHash   string
	DietPreference string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create registers a user. E-mail addresses are unique, compared
// case-insensitively.
func (s *UserStore) Create(username, fullName, email, passwordHash string) (*model.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if strings.TrimSpace(username) == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}

	taken, err := s.emailTaken(email, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperror.Duplicate("user", email)
	}

	id := uuid.NewString()
	now := s.now()
	_, err = s.db.Exec(
		`INSERT INTO users (`+userCols+`) VALUES (?, ?, ?, ?, ?, '', ?, ?)`,
		id, strings.TrimSpace(username), strings.TrimSpace(fullName), email, passwordHash, now, now,
	)
	if isUniqueViolation(err) {
		return nil, apperror.Duplicate("user", email)
	}
	if err != nil {
		return nil, apperror.Persistence("insert user", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) emailTaken(email, exceptID string) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM users WHERE email = ? AND id != ?`, email, exceptID).Scan(&n)
	if err != nil {
		return false, apperror.Persistence("check email", err)
	}
	return n > 0, nil
}

func (s *UserStore) GetByID(id string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("user", id)
	}
	if err != nil {
		return nil, apperror.Persistence("get user", err)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(email string) (*model.User, error) {
	email = normalizeEmail(email)
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("user", email)
	}
	if err != nil {
		return nil, apperror.Persistence("get user by email", err)
	}
	return u, nil
}

func (s *UserStore) Update(id string, in UserUpdate) (*model.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if strings.TrimSpace(in.Username) == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}

	taken, err := s.emailTaken(email, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperror.Duplicate("user", email)
	}

	result, err := s.db.Exec(
		`UPDATE users SET username = ?, full_name = ?, email = ?, diet_preference = ?,
		 password_hash = CASE WHEN ? = '' THEN password_hash ELSE ? END, updated_at = ?
		 WHERE id = ?`,
		strings.TrimSpace(in.Username), strings.TrimSpace(in.FullName), email, strings.TrimSpace(in.DietPreference),
		in.PasswordHash, in.PasswordHash, s.now(), id,
	)
	if isUniqueViolation(err) {
		return nil, apperror.Duplicate("user", email)
	}
	if err != nil {
		return nil, apperror.Persistence("update user", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, apperror.Persistence("rows affected", err)
	}
	if n == 0 {
		return nil, apperror.NotFound("user", id)
	}
	return s.GetByID(id)
}

// ListIDs returns the ids of all users, oldest first.
func (s *UserStore) ListIDs() ([]string, error) {
	rows, err := s.db.Query(`SELECT id FROM users ORDER BY created_at ASC, rowid ASC`)
	if err != nil {
		return nil, apperror.Persistence("list user ids", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperror.Persistence("scan user id", err)
		}
		ids = append(ids, id)
	}
	return ids, apperror.Persistence("list user ids", rows.Err())
}
