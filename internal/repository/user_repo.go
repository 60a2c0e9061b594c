package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mahamedadballa/circlechat-server/internal/apperr"
	"github.com/mahamedadballa/circlechat-server/internal/models"
)

type UserRepo struct {
	coll *mongo.Collection
}

func NewUserRepo(m *Mongo) *UserRepo {
	return &UserRepo{coll: m.Users}
}

func (r *UserRepo) Insert(ctx context.Context, u *models.User) error {
	_, err := r.coll.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return apperr.ErrAlreadyRegistered
	}
	return err
}

func (r *UserRepo) GetByUID(ctx context.Context, uid string) (*models.User, error) {
	var u models.User
	if err := r.coll.FindOne(ctx, bson.M{"_id": uid}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByShortID(ctx context.Context, shortID string) (*models.User, error) {
	var u models.User
	if err := r.coll.FindOne(ctx, bson.M{"short_id": shortID}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ShortIDExists backs the identifier generator's collision check.
func (r *UserRepo) ShortIDExists(ctx context.Context, shortID string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"short_id": shortID})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListOthers returns every registered user except uid, for the contacts view.
func (r *UserRepo) ListOthers(ctx context.Context, uid string) ([]models.User, error) {
	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$ne": uid}})
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateFields applies a partial $set to the user document.
func (r *UserRepo) UpdateFields(ctx context.Context, uid string, set map[string]any) error {
	set["updated_at"] = time.Now().UTC()
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": uid}, bson.M{"$set": bson.M(set)})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
