package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/devagency/agency-api/internal/core/domain"
	"github.com/devagency/agency-api/internal/core/ports"
)

const collectionActivity = "activity_logs"

type activityDoc struct {
	UserID      string         `bson:"user_id,omitempty"`
	Action      string         `bson:"action"`
	EntityType  string         `bson:"entity_type,omitempty"`
	EntityID    string         `bson:"entity_id,omitempty"`
	Description string         `bson:"description,omitempty"`
	IPAddress   string         `bson:"ip_address,omitempty"`
	UserAgent   string         `bson:"user_agent,omitempty"`
	Metadata    map[string]any `bson:"metadata,omitempty"`
	CreatedAt   time.Time      `bson:"created_at"`
}

func toActivityDoc(e *domain.ActivityLog) activityDoc {
	return activityDoc{
		UserID:      e.UserID,
		Action:      e.Action,
		EntityType:  e.EntityType,
		EntityID:    e.EntityID,
		Description: e.Description,
		IPAddress:   e.IPAddress,
		UserAgent:   e.UserAgent,
		Metadata:    e.Metadata,
		CreatedAt:   e.CreatedAt.UTC(),
	}
}

func (d activityDoc) toDomain() *domain.ActivityLog {
	return &domain.ActivityLog{
		UserID:      d.UserID,
		Action:      d.Action,
		EntityType:  d.EntityType,
		EntityID:    d.EntityID,
		Description: d.Description,
		IPAddress:   d.IPAddress,
		UserAgent:   d.UserAgent,
		Metadata:    d.Metadata,
		CreatedAt:   d.CreatedAt,
	}
}

// ActivityRepository implements ports.ActivityRepository using MongoDB.
type ActivityRepository struct {
	col *mongo.Collection
}

func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{col: db.Collection(collectionActivity)}
}

var _ ports.ActivityRepository = (*ActivityRepository)(nil)

// Insert appends an entry to the audit trail.
func (r *ActivityRepository) Insert(ctx context.Context, entry *domain.ActivityLog) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, toActivityDoc(entry))
	return err
}

// ListByUser returns the newest entries for userID first.
func (r *ActivityRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.ActivityLog, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []activityDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]*domain.ActivityLog, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// EnsureIndexes creates the indexes used by ListByUser.
func (r *ActivityRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "action", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
