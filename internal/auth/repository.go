package auth

import (
	"context"

	"github.com/ict4events/eventsite/internal/db"
)

// RecordReader is the part of *db.Store the repository needs.
type RecordReader interface {
	ExecuteReaderDict(ctx context.Context, proc string, params ...db.Param) ([]db.Record, error)
}

type UserRepository struct {
	store RecordReader
}

func NewUserRepository(store RecordReader) *UserRepository {
	return &UserRepository{store: store}
}

// AuthenticateUser returns the account whose email and password hash both
// match, or nil when there is none.
func (r *UserRepository) AuthenticateUser(ctx context.Context, email, passwordHash string) (*User, error) {
	return r.first(ctx, "AUTHENTICATE_USER", db.In("p_email", email), db.In("p_password", passwordHash))
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return r.first(ctx, "GET_USER_BY_EMAIL", db.In("p_email", email))
}

func (r *UserRepository) first(ctx context.Context, proc string, params ...db.Param) (*User, error) {
	records, err := r.store.ExecuteReaderDict(ctx, proc, params...)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return userFromRecord(records[0]), nil
}
