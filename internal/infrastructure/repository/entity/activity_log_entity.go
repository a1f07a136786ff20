package entity

import (
	"time"

	"archie-core-auth-gateway/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoActivityLogDoc represents an activity log entry in MongoDB
type MongoActivityLogDoc struct {
	ID                primitive.ObjectID        `bson:"_id,omitempty"`
	Level             string                    `bson:"level"`
	Success           bool                      `bson:"success"`
	Action            string                    `bson:"action"`
	Start             time.Time                 `bson:"start"`
	End               *time.Time                `bson:"end,omitempty"`
	Timestamp         time.Time                 `bson:"timestamp"`
	ConnectionID      string                    `bson:"connectionId"`
	ProviderConfigKey string                    `bson:"providerConfigKey"`
	Provider          string                    `bson:"provider,omitempty"`
	EnvironmentID     string                    `bson:"environmentId"`
	Messages          []MongoActivityMessageDoc `bson:"messages"`
}

// MongoActivityMessageDoc is one message of an activity log entry
type MongoActivityMessageDoc struct {
	Level     string    `bson:"level"`
	Content   string    `bson:"content"`
	Timestamp time.Time `bson:"timestamp"`
}

// MongoActivityLogDocFromDomain converts a domain entity to a MongoDB document
func MongoActivityLogDocFromDomain(entry *domain.ActivityLogEntry) *MongoActivityLogDoc {
	doc := &MongoActivityLogDoc{
		Level:             string(entry.Level),
		Success:           entry.Success,
		Action:            entry.Action,
		Start:             entry.Start,
		Timestamp:         entry.Timestamp,
		ConnectionID:      entry.ConnectionID,
		ProviderConfigKey: entry.ProviderConfigKey,
		Provider:          entry.Provider,
		EnvironmentID:     entry.EnvironmentID,
		Messages:          []MongoActivityMessageDoc{},
	}
	if !entry.End.IsZero() {
		end := entry.End
		doc.End = &end
	}
	for _, m := range entry.Messages {
		doc.Messages = append(doc.Messages, MongoActivityMessageDocFromDomain(m))
	}

	if entry.ID != "" {
		if objID, err := primitive.ObjectIDFromHex(entry.ID); err == nil {
			doc.ID = objID
		}
	}

	return doc
}

// MongoActivityMessageDocFromDomain converts a domain message to a MongoDB document
func MongoActivityMessageDocFromDomain(message domain.ActivityLogMessage) MongoActivityMessageDoc {
	return MongoActivityMessageDoc{
		Level:     string(message.Level),
		Content:   message.Content,
		Timestamp: message.Timestamp,
	}
}
