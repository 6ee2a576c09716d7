package models

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Per-field validation rules. Each returns the first rule the value breaks;
// entity-level Validate composes them before any write hits the store.

func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("name is required")
	}
	return nil
}

func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return errors.New("email is required")
	}
	if err := validate.Var(email, "email"); err != nil {
		return errors.New("email is invalid")
	}
	return nil
}

func ValidateAge(age int) error {
	if age < 0 {
		return errors.New("age must be a positive number")
	}
	return nil
}

func ValidatePassword(password string) error {
	if password == "" {
		return errors.New("password is required")
	}
	if len(password) <= 6 {
		return errors.New("password must be longer than 6 characters")
	}
	if strings.Contains(strings.ToLower(password), "password") {
		return errors.New("password must not contain 'password'")
	}
	return nil
}

func ValidateDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return errors.New("description is required")
	}
	return nil
}

// Normalize trims name and password whitespace and lowercases the email,
// mirroring what the store expects before validation runs.
func (u *User) Normalize() {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Password = strings.TrimSpace(u.Password)
}

// Validate checks every field rule. The password rule is skipped when the
// stored value is already a hash; callers validate plaintext passwords
// through ValidatePassword before hashing.
func (u *User) Validate() error {
	if err := ValidateName(u.Name); err != nil {
		return err
	}
	if err := ValidateEmail(u.Email); err != nil {
		return err
	}
	return ValidateAge(u.Age)
}

func (t *Task) Normalize() {
	t.Description = strings.TrimSpace(t.Description)
}

func (t *Task) Validate() error {
	return ValidateDescription(t.Description)
}
