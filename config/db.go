package config

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var (
	mongoClient *mongo.Client
	mongoOnce   sync.Once
)

// ConnectDB establishes the process-wide MongoDB client. The client is safe
// for concurrent use and is shared by every request for the life of the
// process.
func ConnectDB() {
	mongoOnce.Do(func() {
		uri := GetEnv("MONGO_URI", "mongodb://localhost:27017")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		opts := options.Client().
			ApplyURI(uri).
			SetMaxPoolSize(uint64(envInt("MONGO_MAX_POOL_SIZE", 100)))

		client, err := mongo.Connect(ctx, opts)
		if err != nil {
			GetLogger().Fatal("Failed to connect to MongoDB", zap.Error(err))
		}

		if err := client.Ping(ctx, nil); err != nil {
			GetLogger().Fatal("Failed to ping MongoDB", zap.Error(err))
		}

		mongoClient = client
		GetLogger().Info("Connected to MongoDB")
	})
}

// Collection is the subset of *mongo.Collection the handlers use. The
// indirection exists so tests can stand in hand-written fakes for a live
// database.
type Collection interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	Aggregate(ctx context.Context, pipeline interface{}, opts ...*options.AggregateOptions) (*mongo.Cursor, error)
}

var collectionProvider func(name string) Collection

// SetCollectionProvider replaces the source of collections. Passing nil
// restores the shared MongoDB client.
func SetCollectionProvider(fn func(name string) Collection) {
	collectionProvider = fn
}

// GetCollection returns a handle to a collection in the configured database.
func GetCollection(name string) Collection {
	if collectionProvider != nil {
		return collectionProvider(name)
	}
	if mongoClient == nil {
		ConnectDB()
	}
	db := GetEnv("MONGO_DB", "saintsal")
	return mongoClient.Database(db).Collection(name)
}

// DisconnectDB closes the shared client. Used on shutdown.
func DisconnectDB() {
	if mongoClient == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mongoClient.Disconnect(ctx); err != nil {
		GetLogger().Error("Error disconnecting from MongoDB", zap.Error(err))
	}
}

func envInt(key string, fallback int) int {
	n, err := strconv.Atoi(GetEnv(key, ""))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
