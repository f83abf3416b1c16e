package repository

import (
	"context"
	"log/slog"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/pantry-tracker/internal/common"
	"github.com/joseph-ayodele/pantry-tracker/internal/entity"
)

var userColumns = []string{"id", "external_id", "email", "first_name", "last_name", "profile_image", "created_at", "updated_at"}

type UserRepository interface {
	// GetOrCreate returns the user with u.ExternalID, creating it or refreshing
	// its profile fields from u.
	GetOrCreate(ctx context.Context, u entity.User) (*entity.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

type userRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewUserRepository(db *DB, logger *slog.Logger) UserRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	query, args := r.db.builder().Select(userColumns...).
		From(r.db.table(tableUsers)).
		Where(entsql.EQ("id", id)).
		Query()
	u, err := scanUser(r.db.SQL.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, notFound(err, "user")
	}
	return u, nil
}

func (r *userRepository) GetOrCreate(ctx context.Context, in entity.User) (*entity.User, error) {
	existing, err := r.byExternalID(ctx, in.ExternalID)
	switch {
	case err == nil:
		return r.refresh(ctx, existing, in)
	case !common.IsNotFound(err):
		r.logger.Error("failed to look up user", "external_id", in.ExternalID, "error", err)
		return nil, err
	}

	now := r.db.now()
	u := &entity.User{
		ID:           uuid.New(),
		ExternalID:   in.ExternalID,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		ProfileImage: in.ProfileImage,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	query, args := r.db.builder().Insert(tableUsers).
		Columns(userColumns...).
		Values(u.ID, u.ExternalID, u.Email, u.FirstName, u.LastName, u.ProfileImage, u.CreatedAt, u.UpdatedAt).
		Query()
	if _, err := r.db.SQL.ExecContext(ctx, query, args...); err != nil {
		// A concurrent first request for the same subject may have won the insert.
		if again, lookupErr := r.byExternalID(ctx, in.ExternalID); lookupErr == nil {
			return again, nil
		}
		r.logger.Error("failed to create user", "external_id", in.ExternalID, "error", err)
		return nil, err
	}
	r.logger.Info("user.created", "user_id", u.ID, "external_id", u.ExternalID)
	return u, nil
}

func (r *userRepository) byExternalID(ctx context.Context, externalID string) (*entity.User, error) {
	query, args := r.db.builder().Select(userColumns...).
		From(r.db.table(tableUsers)).
		Where(entsql.EQ("external_id", externalID)).
		Query()
	u, err := scanUser(r.db.SQL.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, notFound(err, "user")
	}
	return u, nil
}

func (r *userRepository) refresh(ctx context.Context, cur *entity.User, in entity.User) (*entity.User, error) {
	if cur.Email == in.Email && cur.FirstName == in.FirstName &&
		cur.LastName == in.LastName && cur.ProfileImage == in.ProfileImage {
		return cur, nil
	}
	cur.Email, cur.FirstName, cur.LastName, cur.ProfileImage = in.Email, in.FirstName, in.LastName, in.ProfileImage
	cur.UpdatedAt = r.db.now()

	query, args := r.db.builder().Update(tableUsers).
		Set("email", cur.Email).
		Set("first_name", cur.FirstName).
		Set("last_name", cur.LastName).
		Set("profile_image", cur.ProfileImage).
		Set("updated_at", cur.UpdatedAt).
		Where(entsql.EQ("id", cur.ID)).
		Query()
	if _, err := r.db.SQL.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("failed to update user", "user_id", cur.ID, "error", err)
		return nil, err
	}
	return cur, nil
}

func scanUser(s scanner) (*entity.User, error) {
	var u entity.User
	if err := s.Scan(&u.ID, &u.ExternalID, &u.Email, &u.FirstName, &u.LastName, &u.ProfileImage, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.CreatedAt, u.UpdatedAt = u.CreatedAt.UTC(), u.UpdatedAt.UTC()
	return &u, nil
}
