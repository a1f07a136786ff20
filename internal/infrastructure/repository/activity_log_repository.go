package repository

import (
	"context"
	"fmt"
	"time"

	"archie-core-auth-gateway/internal/domain"
	"archie-core-auth-gateway/internal/infrastructure/repository/entity"
	"archie-core-auth-gateway/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoActivityLogRepository implements ActivityLogRepository using MongoDB
type MongoActivityLogRepository struct {
	collection *mongo.Collection
}

// NewMongoActivityLogRepository creates a new MongoDB activity log repository
func NewMongoActivityLogRepository(db *mongo.Database) ports.ActivityLogRepository {
	return &MongoActivityLogRepository{
		collection: db.Collection(activityLogsCollection),
	}
}

// Create inserts a new entry
func (r *MongoActivityLogRepository) Create(ctx context.Context, entry *domain.ActivityLogEntry) (string, error) {
	doc := entity.MongoActivityLogDocFromDomain(entry)
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	if doc.Timestamp.IsZero() {
		doc.Timestamp = time.Now()
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("failed to create activity log: %w", err)
	}

	return doc.ID.Hex(), nil
}

// AppendMessage pushes a message. An error message also raises the entry level.
func (r *MongoActivityLogRepository) AppendMessage(ctx context.Context, logID string, message domain.ActivityLogMessage) error {
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now()
	}
	update := bson.M{"$push": bson.M{"messages": entity.MongoActivityMessageDocFromDomain(message)}}
	if message.Level == domain.LogLevelError {
		update["$set"] = bson.M{"level": string(domain.LogLevelError)}
	}
	return r.update(ctx, logID, update, "append activity log message")
}

// UpdateProvider records the resolved provider
func (r *MongoActivityLogRepository) UpdateProvider(ctx context.Context, logID string, provider string) error {
	return r.update(ctx, logID, bson.M{"$set": bson.M{"provider": provider}}, "update activity log provider")
}

// UpdateSuccess sets the terminal flag and the end time
func (r *MongoActivityLogRepository) UpdateSuccess(ctx context.Context, logID string, success bool) error {
	update := bson.M{"$set": bson.M{"success": success, "end": time.Now()}}
	return r.update(ctx, logID, update, "update activity log success")
}

func (r *MongoActivityLogRepository) update(ctx context.Context, logID string, update bson.M, op string) error {
	objID, err := primitive.ObjectIDFromHex(logID)
	if err != nil {
		return fmt.Errorf("failed to %s: invalid id %q", op, logID)
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("failed to %s: activity log %s not found", op, logID)
	}
	return nil
}
