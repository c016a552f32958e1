package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/agritrack/internal/apperrors"
	"github.com/mamadbah2/agritrack/internal/domain/models"
)

const (
	farmDataCollection = "farm_data"
	usersCollection    = "users"

	// DefaultPageSize applies when a listing request carries no limit.
	DefaultPageSize = 50
)

// Filter narrows a record listing. Zero values mean unfiltered; provided
// fields combine with AND semantics.
type Filter struct {
	Category  string
	Crop      string
	StartDate time.Time
	EndDate   time.Time
}

// Repository defines the persistence operations backing the farm-data API.
type Repository interface {
	InsertRecord(ctx context.Context, record *models.FarmRecord) (*models.FarmRecord, error)
	QueryRecords(ctx context.Context, ownerID string, filter Filter, page, limit int64) ([]models.FarmRecord, int64, error)
	AggregateHealth(ctx context.Context, ownerID string) (models.HealthAggregate, error)
	ListStaleHealth(ctx context.Context, before time.Time, limit int64) ([]models.FarmRecord, error)
	UpdateHealth(ctx context.Context, id primitive.ObjectID, health models.DataHealth) error
	DistinctOwners(ctx context.Context) ([]string, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
}

// MongoDBRepository implements Repository on top of the official driver.
type MongoDBRepository struct {
	client *mongo.Client
	dbName string
	now    func() time.Time
}

// NewMongoDBRepository connects to MongoDB and verifies the connection.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client: client,
		dbName: dbName,
		now:    time.Now,
	}, nil
}

func (r *MongoDBRepository) records() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(farmDataCollection)
}

func (r *MongoDBRepository) users() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(usersCollection)
}

// EnsureIndexes creates the compound indexes the listing and aggregation
// paths rely on. Safe to call on every startup.
func (r *MongoDBRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "crop", Value: 1}}},
		{Keys: bson.D{{Key: "date", Value: 1}}},
	}

	if _, err := r.records().Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create farm data indexes: %w", err)
	}
	return nil
}

// InsertRecord stores exactly one record, assigning its identifier and
// creation timestamps.
func (r *MongoDBRepository) InsertRecord(ctx context.Context, record *models.FarmRecord) (*models.FarmRecord, error) {
	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}
	now := r.now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now

	if _, err := r.records().InsertOne(ctx, record); err != nil {
		return nil, apperrors.Persistence("insert farm record", err)
	}
	return record, nil
}

// QueryRecords returns the ownerID's records matching every provided filter,
// sorted by date descending, plus the total match count before pagination.
func (r *MongoDBRepository) QueryRecords(ctx context.Context, ownerID string, filter Filter, page, limit int64) ([]models.FarmRecord, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}

	query := bson.M{"userId": ownerID}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Crop != "" {
		query["crop"] = filter.Crop
	}
	dateRange := bson.M{}
	if !filter.StartDate.IsZero() {
		dateRange["$gte"] = filter.StartDate
	}
	if !filter.EndDate.IsZero() {
		dateRange["$lte"] = filter.EndDate
	}
	if len(dateRange) > 0 {
		query["date"] = dateRange
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := r.records().Find(ctx, query, findOptions)
	if err != nil {
		return nil, 0, apperrors.Persistence("query farm records", err)
	}

	records := []models.FarmRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, 0, apperrors.Persistence("decode farm records", err)
	}

	total, err := r.records().CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, apperrors.Persistence("count farm records", err)
	}

	return records, total, nil
}

// AggregateHealth computes the per-owner health aggregate in the database.
// Owners with no records get a zero aggregate, not an error.
func (r *MongoDBRepository) AggregateHealth(ctx context.Context, ownerID string) (models.HealthAggregate, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "userId", Value: ownerID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "avgHealth", Value: bson.D{{Key: "$avg", Value: "$dataHealth.score"}}},
			{Key: "totalRecords", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "verifiedRecords", Value: bson.D{{Key: "$sum", Value: bson.D{
				{Key: "$cond", Value: bson.A{"$isVerified", 1, 0}},
			}}}},
		}}},
	}

	cursor, err := r.records().Aggregate(ctx, pipeline)
	if err != nil {
		return models.HealthAggregate{}, apperrors.Persistence("aggregate data health", err)
	}

	var results []models.HealthAggregate
	if err := cursor.All(ctx, &results); err != nil {
		return models.HealthAggregate{}, apperrors.Persistence("decode data health aggregate", err)
	}

	if len(results) == 0 {
		return models.HealthAggregate{}, nil
	}
	return results[0], nil
}

// ListStaleHealth returns up to limit records whose health has not been
// re-checked since before, oldest check first.
func (r *MongoDBRepository) ListStaleHealth(ctx context.Context, before time.Time, limit int64) ([]models.FarmRecord, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "dataHealth.lastChecked", Value: 1}}).
		SetLimit(limit)

	cursor, err := r.records().Find(ctx, bson.M{"dataHealth.lastChecked": bson.M{"$lt": before}}, findOptions)
	if err != nil {
		return nil, apperrors.Persistence("list stale health records", err)
	}

	records := []models.FarmRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, apperrors.Persistence("decode stale health records", err)
	}
	return records, nil
}

// UpdateHealth replaces a record's dataHealth block. Nothing else on an
// accepted record is ever updated here.
func (r *MongoDBRepository) UpdateHealth(ctx context.Context, id primitive.ObjectID, health models.DataHealth) error {
	update := bson.M{"$set": bson.M{
		"dataHealth": health,
		"updatedAt":  r.now().UTC(),
	}}

	if _, err := r.records().UpdateByID(ctx, id, update); err != nil {
		return apperrors.Persistence("update record health", err)
	}
	return nil
}

// DistinctOwners lists every owner id with at least one stored record.
func (r *MongoDBRepository) DistinctOwners(ctx context.Context) ([]string, error) {
	values, err := r.records().Distinct(ctx, "userId", bson.M{})
	if err != nil {
		return nil, apperrors.Persistence("list record owners", err)
	}

	owners := make([]string, 0, len(values))
	for _, v := range values {
		if owner, ok := v.(string); ok {
			owners = append(owners, owner)
		}
	}
	return owners, nil
}

// FindUserByID looks up the account behind a verified token subject. A
// missing user returns (nil, nil) so callers can reject uniformly.
func (r *MongoDBRepository) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var user models.User
	err = r.users().FindOne(ctx, bson.M{"_id": objectID}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Persistence("find user", err)
	}
	return &user, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
