package controllers

import (
	"context"
	"testing"

	"github.com/SaintVisionAi/saintsal-chat-sub001/config"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// withUserLocals injects the locals the auth guard would have set for a
// regular signed-in user.
func withUserLocals(userID, email string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		c.Locals("user_email", email)
		return c.Next()
	}
}

// fakeCollection implements config.Collection with injectable behavior per
// method. Hooks left nil fall back to empty results, so a test only wires
// the collections and calls its handler actually makes.
type fakeCollection struct {
	findOne   func(filter interface{}) *mongo.SingleResult
	find      func(filter interface{}) (*mongo.Cursor, error)
	insertOne func(document interface{}) (*mongo.InsertOneResult, error)
	updateOne func(filter, update interface{}) (*mongo.UpdateResult, error)
	deleteOne func(filter interface{}) (*mongo.DeleteResult, error)
	count     func(filter interface{}) (int64, error)
	aggregate func(pipeline interface{}) (*mongo.Cursor, error)
}

func (f *fakeCollection) FindOne(_ context.Context, filter interface{}, _ ...*options.FindOneOptions) *mongo.SingleResult {
	if f.findOne != nil {
		return f.findOne(filter)
	}
	return resultNotFound()
}

func (f *fakeCollection) Find(_ context.Context, filter interface{}, _ ...*options.FindOptions) (*mongo.Cursor, error) {
	if f.find != nil {
		return f.find(filter)
	}
	return resultCursor()
}

func (f *fakeCollection) InsertOne(_ context.Context, document interface{}, _ ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	if f.insertOne != nil {
		return f.insertOne(document)
	}
	return &mongo.InsertOneResult{}, nil
}

func (f *fakeCollection) UpdateOne(_ context.Context, filter interface{}, update interface{}, _ ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	if f.updateOne != nil {
		return f.updateOne(filter, update)
	}
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (f *fakeCollection) DeleteOne(_ context.Context, filter interface{}, _ ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	if f.deleteOne != nil {
		return f.deleteOne(filter)
	}
	return &mongo.DeleteResult{DeletedCount: 1}, nil
}

func (f *fakeCollection) CountDocuments(_ context.Context, filter interface{}, _ ...*options.CountOptions) (int64, error) {
	if f.count != nil {
		return f.count(filter)
	}
	return 0, nil
}

func (f *fakeCollection) Aggregate(_ context.Context, pipeline interface{}, _ ...*options.AggregateOptions) (*mongo.Cursor, error) {
	if f.aggregate != nil {
		return f.aggregate(pipeline)
	}
	return resultCursor()
}

// resultFound fabricates a SingleResult that decodes into doc.
func resultFound(t *testing.T, doc interface{}) *mongo.SingleResult {
	t.Helper()
	return mongo.NewSingleResultFromDocument(doc, nil, nil)
}

// resultNotFound fabricates a SingleResult whose Decode reports
// mongo.ErrNoDocuments.
func resultNotFound() *mongo.SingleResult {
	return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
}

// resultCursor fabricates a cursor over the given documents.
func resultCursor(docs ...interface{}) (*mongo.Cursor, error) {
	return mongo.NewCursorFromDocuments(docs, nil, nil)
}

// installFakeStore routes config.GetCollection to the given collections for
// the duration of the test. Collections not in the map answer with empty
// defaults, which keeps best-effort writes like audit logging harmless.
func installFakeStore(t *testing.T, store map[string]*fakeCollection) {
	t.Helper()
	config.SetCollectionProvider(func(name string) config.Collection {
		if col, ok := store[name]; ok {
			return col
		}
		return &fakeCollection{}
	})
	t.Cleanup(func() { config.SetCollectionProvider(nil) })
}
