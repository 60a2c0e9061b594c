package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mahamedadballa/circlechat-server/config"
)

type Mongo struct {
	Client        *mongo.Client
	DB            *mongo.Database
	Users         *mongo.Collection
	Conversations *mongo.Collection
	Messages      *mongo.Collection
	Media         *mongo.Collection
}

// NewMongo connects, selects collections and ensures indexes.
func NewMongo(ctx context.Context, cfg *config.Config) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	db := client.Database(cfg.Mongo.Database)
	m := &Mongo{
		Client:        client,
		DB:            db,
		Users:         db.Collection("users"),
		Conversations: db.Collection("conversations"),
		Messages:      db.Collection("messages"),
		Media:         db.Collection("media"),
	}
	if err := m.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Mongo) ensureIndexes(ctx context.Context) error {
	// short_id uniqueness backs the identifier registry; the unique index is
	// the compare-and-set that closes the generate/check race.
	_, err := m.Users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "short_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("short_id_unique"),
	})
	if err != nil {
		return err
	}
	_, err = m.Conversations.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "participants", Value: 1}},
		Options: options.Index().SetName("participants_idx"),
	})
	if err != nil {
		return err
	}
	_, err = m.Messages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "conversation_id", Value: 1}, {Key: "seq", Value: 1}},
		Options: options.Index().SetName("conversation_seq_idx"),
	})
	return err
}

func (m *Mongo) Disconnect(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
