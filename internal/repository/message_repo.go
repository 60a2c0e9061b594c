package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mahamedadballa/circlechat-server/internal/apperr"
	"github.com/mahamedadballa/circlechat-server/internal/models"
)

type MessageRepo struct {
	coll *mongo.Collection
}

func NewMessageRepo(m *Mongo) *MessageRepo {
	return &MessageRepo{coll: m.Messages}
}

func (r *MessageRepo) Insert(ctx context.Context, msg *models.Message) error {
	_, err := r.coll.InsertOne(ctx, msg)
	return err
}

func (r *MessageRepo) Get(ctx context.Context, id string) (*models.Message, error) {
	var msg models.Message
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&msg); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &msg, nil
}

// ListOrdered returns the conversation's messages ascending by timestamp,
// with seq as the tie-break, so the view is total and stable.
func (r *MessageRepo) ListOrdered(ctx context.Context, conversationID string) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "seq", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"conversation_id": conversationID}, opts)
	if err != nil {
		return nil, err
	}
	var out []models.Message
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AdvanceStatus moves a message's delivery status forward. The filter only
// matches statuses ranking below the target, so a request to move backward
// (or to the current status) matches nothing and is a no-op, never an error.
// The bool reports whether this call changed the document.
func (r *MessageRepo) AdvanceStatus(ctx context.Context, id, target string) (*models.Message, bool, error) {
	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$in": models.StatusesBelow(target)},
	}
	update := bson.M{"$set": bson.M{"status": target}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var msg models.Message
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&msg)
	if err == nil {
		return &msg, true, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, err
	}
	// Either absent or already at/past the target; tell them apart.
	cur, getErr := r.Get(ctx, id)
	if getErr != nil {
		return nil, false, getErr
	}
	return cur, false, nil
}

// AdvanceConversationRead marks every message in the conversation that was
// not sent by reader as read. Returns the ids that actually transitioned.
func (r *MessageRepo) AdvanceConversationRead(ctx context.Context, conversationID, reader string) ([]string, error) {
	filter := bson.M{
		"conversation_id": conversationID,
		"sender_id":       bson.M{"$ne": reader},
		"status":          bson.M{"$in": models.StatusesBelow(models.StatusRead)},
	}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	_, err = r.coll.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}, "status": bson.M{"$in": models.StatusesBelow(models.StatusRead)}},
		bson.M{"$set": bson.M{"status": models.StatusRead}},
	)
	if err != nil {
		return nil, err
	}
	return ids, nil
}
