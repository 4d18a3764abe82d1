package repositories

import (
	"chat-relay/domain"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const messagesCollection = "messages"

type mongoMessage struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	MessageID string             `bson:"message_id"`
	Sender    string             `bson:"sender"`
	Body      string             `bson:"body"`
	At        time.Time          `bson:"at"`
}

// MongoMessageRepository keeps the pending conversation in a MongoDB collection.
// Documents are read back by ObjectID, which grows with insertion order.
type MongoMessageRepository struct {
	coll *mongo.Collection
	log  *slog.Logger
}

func NewMongoMessageRepository(coll *mongo.Collection, log *slog.Logger) *MongoMessageRepository {
	return &MongoMessageRepository{coll: coll, log: log}
}

// OpenMongo connects to uri and checks the server answers before returning.
func OpenMongo(ctx context.Context, uri, database string) (*mongo.Client, *mongo.Collection, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("unable to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("mongo is unreachable: %w", err)
	}
	return client, client.Database(database).Collection(messagesCollection), nil
}

func (m *MongoMessageRepository) Append(ctx context.Context, message domain.Message) error {
	_, err := m.coll.InsertOne(ctx, mongoMessage{
		ID:        primitive.NewObjectID(),
		MessageID: message.ID.String(),
		Sender:    message.Sender,
		Body:      message.Body,
		At:        message.At.UTC(),
	})
	return err
}

func (m *MongoMessageRepository) ReadAll(ctx context.Context) ([]domain.Message, error) {
	cursor, err := m.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var documents []mongoMessage
	if err := cursor.All(ctx, &documents); err != nil {
		return nil, err
	}
	messages := make([]domain.Message, 0, len(documents))
	for _, d := range documents {
		parsedID, err := uuid.Parse(d.MessageID)
		if err != nil {
			return nil, err
		}
		messages = append(messages, domain.Message{
			ID:     parsedID,
			Sender: d.Sender,
			Body:   d.Body,
			At:     d.At.UTC(),
		})
	}
	return messages, nil
}

func (m *MongoMessageRepository) ClearAll(ctx context.Context) error {
	result, err := m.coll.DeleteMany(ctx, bson.D{})
	if err != nil {
		return err
	}
	m.log.Debug(fmt.Sprintf("Cleared %d messages", result.DeletedCount))
	return nil
}
