package repository

import (
	"database/sql"

	"github.com/lib/pq"

	"github.com/myportfolios/task-app/internal/models"
	"github.com/myportfolios/task-app/pkg/crypto"
)

const userColumns = "id, name, email, age, password, created_at, updated_at"

func scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Age, &user.Password, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser validates, hashes the plaintext password and inserts the
// account. The password on the struct is replaced with its hash.
func (s *Store) CreateUser(user *models.User) error {
	user.Normalize()
	if err := models.ValidatePassword(user.Password); err != nil {
		return &ValidationError{Reason: err.Error()}
	}
	if err := user.Validate(); err != nil {
		return &ValidationError{Reason: err.Error()}
	}

	hashed, err := crypto.HashPassword(user.Password)
	if err != nil {
		return err
	}
	user.Password = hashed

	err = s.DB.QueryRow(
		"INSERT INTO users (name, email, age, password) VALUES ($1, $2, $3, $4) RETURNING id, created_at, updated_at",
		user.Name, user.Email, user.Age, user.Password,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// FindByCredentials looks an account up by email and checks the password.
// A missing account and a wrong password both come back as ErrNotFound so
// login failures stay indistinguishable.
func (s *Store) FindByCredentials(email, password string) (*models.User, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		return nil, ErrNotFound
	}
	if err := crypto.CheckPassword(user.Password, password); err != nil {
		return nil, ErrNotFound
	}
	return user, nil
}

func (s *Store) GetUserByEmail(email string) (*models.User, error) {
	row := s.DB.QueryRow("SELECT "+userColumns+" FROM users WHERE email = $1", email)
	return scanUser(row)
}

func (s *Store) GetUserByID(id int) (*models.User, error) {
	row := s.DB.QueryRow("SELECT "+userColumns+" FROM users WHERE id = $1", id)
	return scanUser(row)
}

// GetUserByIDAndToken resolves the user a bearer token belongs to. The token
// must still be present in the user's session list, which is how logged-out
// tokens get rejected even though their signature is still valid.
func (s *Store) GetUserByIDAndToken(id int, token string) (*models.User, error) {
	row := s.DB.QueryRow(
		"SELECT u.id, u.name, u.email, u.age, u.password, u.created_at, u.updated_at FROM users u JOIN user_tokens t ON t.user_id = u.id WHERE u.id = $1 AND t.token = $2",
		id, token)
	return scanUser(row)
}

// UpdateUser persists the allow-listed profile fields. The plaintext password
// is validated and re-hashed only when passwordChanged is set.
func (s *Store) UpdateUser(user *models.User, passwordChanged bool) error {
	user.Normalize()
	if err := user.Validate(); err != nil {
		return &ValidationError{Reason: err.Error()}
	}
	if passwordChanged {
		if err := models.ValidatePassword(user.Password); err != nil {
			return &ValidationError{Reason: err.Error()}
		}
		hashed, err := crypto.HashPassword(user.Password)
		if err != nil {
			return err
		}
		user.Password = hashed
	}

	err := s.DB.QueryRow(
		"UPDATE users SET name = $1, email = $2, age = $3, password = $4, updated_at = CURRENT_TIMESTAMP WHERE id = $5 RETURNING updated_at",
		user.Name, user.Email, user.Age, user.Password, user.ID,
	).Scan(&user.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// DeleteUser removes the account, its session tokens and every owned task in
// one transaction so a crash cannot leave orphaned tasks behind.
func (s *Store) DeleteUser(id int) error {
	tx, err := s.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := cascadeDeleteOwnedTasks(tx, id); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM user_tokens WHERE user_id = $1", id); err != nil {
		return err
	}
	res, err := tx.Exec("DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func cascadeDeleteOwnedTasks(tx *sql.Tx, ownerID int) error {
	_, err := tx.Exec("DELETE FROM tasks WHERE owner_id = $1", ownerID)
	return err
}

func (s *Store) AddToken(userID int, token string) error {
	_, err := s.DB.Exec("INSERT INTO user_tokens (user_id, token) VALUES ($1, $2)", userID, token)
	return err
}

func (s *Store) RemoveToken(userID int, token string) error {
	_, err := s.DB.Exec("DELETE FROM user_tokens WHERE user_id = $1 AND token = $2", userID, token)
	return err
}

func (s *Store) ClearTokens(userID int) error {
	_, err := s.DB.Exec("DELETE FROM user_tokens WHERE user_id = $1", userID)
	return err
}

func (s *Store) UpdateAvatar(userID int, avatar []byte) error {
	_, err := s.DB.Exec("UPDATE users SET avatar = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2", avatar, userID)
	return err
}

func (s *Store) ClearAvatar(userID int) error {
	_, err := s.DB.Exec("UPDATE users SET avatar = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = $1", userID)
	return err
}

// GetAvatar returns the stored avatar bytes; a missing user and a user
// without an avatar are both ErrNotFound.
func (s *Store) GetAvatar(userID int) ([]byte, error) {
	var avatar []byte
	err := s.DB.QueryRow("SELECT avatar FROM users WHERE id = $1", userID).Scan(&avatar)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(avatar) == 0 {
		return nil, ErrNotFound
	}
	return avatar, nil
}
