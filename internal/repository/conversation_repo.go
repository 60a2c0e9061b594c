package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mahamedadballa/circlechat-server/internal/apperr"
	"github.com/mahamedadballa/circlechat-server/internal/models"
)

type ConversationRepo struct {
	coll *mongo.Collection
}

func NewConversationRepo(m *Mongo) *ConversationRepo {
	return &ConversationRepo{coll: m.Conversations}
}

// Upsert creates the conversation for the pair if it does not exist yet and
// returns the stored record either way, plus whether this call created it.
// The write is keyed by the canonical id with $setOnInsert, so two clients
// racing on first contact converge on a single document.
func (r *ConversationRepo) Upsert(ctx context.Context, userA, userB string) (*models.Conversation, bool, error) {
	id := models.CanonicalConversationID(userA, userB)
	now := time.Now().UTC()

	update := bson.M{"$setOnInsert": bson.M{
		"participants": []string{userA, userB},
		"last_seq":     int64(0),
		"created_at":   now,
		"updated_at":   now,
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update, options.Update().SetUpsert(true))
	if err != nil {
		return nil, false, err
	}

	var conv models.Conversation
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&conv); err != nil {
		return nil, false, err
	}
	return &conv, res.UpsertedCount > 0, nil
}

func (r *ConversationRepo) Get(ctx context.Context, id string) (*models.Conversation, error) {
	var conv models.Conversation
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&conv); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrConversationNotFound
		}
		return nil, err
	}
	return &conv, nil
}

// ListForUser returns the user's conversations, most recent activity first.
func (r *ConversationRepo) ListForUser(ctx context.Context, uid string) ([]models.Conversation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"participants": uid}, opts)
	if err != nil {
		return nil, err
	}
	var out []models.Conversation
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ClaimSeq atomically increments the conversation's sequence counter and
// returns the claimed value. A missing conversation returns
// ErrConversationNotFound without writing anything, which is what makes an
// append to an unknown conversation leave no partial state.
func (r *ConversationRepo) ClaimSeq(ctx context.Context, id string) (int64, error) {
	update := bson.M{
		"$inc": bson.M{"last_seq": int64(1)},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var conv models.Conversation
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&conv); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, apperr.ErrConversationNotFound
		}
		return 0, err
	}
	return conv.LastSeq, nil
}

// RefreshLastMessage installs the message as the cached last message, but
// only while nothing newer is cached. Concurrent appends can land their
// refreshes out of claim order; the seq guard keeps the older write from
// clobbering the newer one.
func (r *ConversationRepo) RefreshLastMessage(ctx context.Context, id string, last *models.Message) error {
	filter := bson.M{
		"_id": id,
		"$or": []bson.M{
			{"last_message": bson.M{"$exists": false}},
			{"last_message.seq": bson.M{"$lt": last.Seq}},
		},
	}
	_, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"last_message": last}})
	return err
}
