package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"

	"github.com/myportfolios/task-app/internal/email"
	"github.com/myportfolios/task-app/internal/repository"
)

var validate = validator.New()

// Handler carries every dependency the route handlers need. It is built in
// cmd/api and in the tests instead of living in package-level globals.
type Handler struct {
	Store  *repository.Store
	Cache  *redis.Client
	Outbox *email.Outbox
	Secret []byte
}

func New(store *repository.Store, cache *redis.Client, outbox *email.Outbox, secret []byte) *Handler {
	return &Handler{
		Store:  store,
		Cache:  cache,
		Outbox: outbox,
		Secret: secret,
	}
}
