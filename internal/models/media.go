package models

import "time"

type Media struct {
	ID          string    `bson:"_id" json:"id"`
	UserID      string    `bson:"user_id" json:"user_id"`
	Key         string    `bson:"key" json:"key"`
	URL         string    `bson:"url" json:"url"`
	Thumbnail   string    `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`
	ContentType string    `bson:"content_type" json:"content_type"`
	Size        int64     `bson:"size" json:"size"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}
