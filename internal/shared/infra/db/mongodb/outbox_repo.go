package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	sharedDomain "github.com/davicafu/maidlink/internal/shared/domain"
)

// OutboxRepoMongoDB implementa la interfaz sharedDomain.OutboxRepository.
type OutboxRepoMongoDB struct {
	outboxColl *mongo.Collection
}

var _ sharedDomain.OutboxRepository = (*OutboxRepoMongoDB)(nil)

func NewOutboxRepoMongoDB(client *mongo.Client, dbName string) *OutboxRepoMongoDB {
	return &OutboxRepoMongoDB{outboxColl: client.Database(dbName).Collection("outbox")}
}

// mongoOutboxRecord mapea los documentos de la colección a un struct.
type mongoOutboxRecord struct {
	ID           string                 `bson:"_id"`
	EventType    string                 `bson:"eventType"`
	AggregateID  string                 `bson:"aggregateId"`
	Payload      map[string]interface{} `bson:"payload"`
	Metadata     map[string]interface{} `bson:"metadata,omitempty"`
	Status       string                 `bson:"status"`
	ErrorMessage string                 `bson:"errorMessage,omitempty"`
	CreatedAt    time.Time              `bson:"createdAt"`
	ProcessedAt  *time.Time             `bson:"processedAt,omitempty"`
	UpdatedAt    time.Time              `bson:"updatedAt"`
}

func (r *OutboxRepoMongoDB) Insert(ctx context.Context, rec sharedDomain.OutboxRecord) error {
	doc := mongoOutboxRecord{
		ID:          rec.ID.String(),
		EventType:   rec.EventType,
		AggregateID: rec.AggregateID,
		Payload:     rec.Payload,
		Metadata:    rec.Metadata,
		Status:      string(rec.Status),
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
	_, err := r.outboxColl.InsertOne(ctx, doc)
	return err
}

// FetchPending obtiene los registros pending ordenados por createdAt.
func (r *OutboxRepoMongoDB) FetchPending(ctx context.Context, limit int) ([]sharedDomain.OutboxRecord, error) {
	filter := bson.M{"status": string(sharedDomain.OutboxPending)}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}).SetLimit(int64(limit))

	cursor, err := r.outboxColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []sharedDomain.OutboxRecord
	for cursor.Next(ctx) {
		var mo mongoOutboxRecord
		if err := cursor.Decode(&mo); err != nil {
			return nil, err
		}
		rec, err := fromMongoOutboxRecord(&mo)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, cursor.Err()
}

func (r *OutboxRepoMongoDB) MarkProcessed(ctx context.Context, id uuid.UUID, processedAt time.Time) error {
	filter := bson.M{"_id": id.String(), "status": string(sharedDomain.OutboxPending)}
	update := bson.M{"$set": bson.M{
		"status":      string(sharedDomain.OutboxProcessed),
		"processedAt": processedAt,
		"updatedAt":   processedAt,
	}}

	res, err := r.outboxColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("outbox record not found or not pending: %s", id)
	}
	return nil
}

func (r *OutboxRepoMongoDB) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	filter := bson.M{"_id": id.String(), "status": string(sharedDomain.OutboxPending)}
	update := bson.M{"$set": bson.M{
		"status":       string(sharedDomain.OutboxFailed),
		"errorMessage": errMsg,
		"updatedAt":    time.Now().UTC(),
	}}

	res, err := r.outboxColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("outbox record not found or not pending: %s", id)
	}
	return nil
}

func fromMongoOutboxRecord(mo *mongoOutboxRecord) (sharedDomain.OutboxRecord, error) {
	id, err := uuid.Parse(mo.ID)
	if err != nil {
		return sharedDomain.OutboxRecord{}, fmt.Errorf("invalid UUID in outbox document: %w", err)
	}
	return sharedDomain.OutboxRecord{
		ID:           id,
		EventType:    mo.EventType,
		AggregateID:  mo.AggregateID,
		Payload:      mo.Payload,
		Metadata:     mo.Metadata,
		Status:       sharedDomain.OutboxStatus(mo.Status),
		ErrorMessage: mo.ErrorMessage,
		CreatedAt:    mo.CreatedAt,
		ProcessedAt:  mo.ProcessedAt,
		UpdatedAt:    mo.UpdatedAt,
	}, nil
}
