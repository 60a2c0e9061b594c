package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mahamedadballa/circlechat-server/internal/apperr"
	"github.com/mahamedadballa/circlechat-server/internal/models"
)

type MediaRepo struct {
	coll *mongo.Collection
}

func NewMediaRepo(m *Mongo) *MediaRepo {
	return &MediaRepo{coll: m.Media}
}

func (r *MediaRepo) Insert(ctx context.Context, media *models.Media) error {
	_, err := r.coll.InsertOne(ctx, media)
	return err
}

func (r *MediaRepo) GetByID(ctx context.Context, id string) (*models.Media, error) {
	var m models.Media
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}
