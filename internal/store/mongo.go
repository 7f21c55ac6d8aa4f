package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"taskify/internal/task"
)

const (
	DefaultMongoDatabase = "taskify"

	tasksCollection    = "tasks"
	countersCollection = "counters"
)

// MongoStore keeps tasks as documents keyed by an integer _id drawn from a
// counter document, so ids stay numeric and ordered like the SQL backends.
type MongoStore struct {
	client   *mongo.Client
	tasks    *mongo.Collection
	counters *mongo.Collection
}

func OpenMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	if database == "" {
		database = DefaultMongoDatabase
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	db := client.Database(database)
	return &MongoStore{
		client:   client,
		tasks:    db.Collection(tasksCollection),
		counters: db.Collection(countersCollection),
	}, nil
}

func (s *MongoStore) Close() error { return s.client.Disconnect(context.Background()) }

func (s *MongoStore) nextID(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": tasksCollection},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next task id: %w", err)
	}
	return counter.Seq, nil
}

func (s *MongoStore) List(ctx context.Context) ([]task.Task, error) {
	cur, err := s.tasks.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	out := []task.Task{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return out, nil
}

func (s *MongoStore) Create(ctx context.Context, d task.Draft) (task.Task, error) {
	id, err := s.nextID(ctx)
	if err != nil {
		return task.Task{}, err
	}
	t := task.Task{ID: id, Text: d.Text, Completed: false}
	if _, err := s.tasks.InsertOne(ctx, t); err != nil {
		return task.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

func (s *MongoStore) Update(ctx context.Context, id int64, p task.Patch) error {
	set := bson.M{}
	if p.Text != nil {
		set["text"] = *p.Text
	}
	if p.Completed != nil {
		set["completed"] = *p.Completed
	}
	if len(set) == 0 {
		return p.Validate()
	}
	res, err := s.tasks.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update task %d: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("task %d: %w", id, task.ErrNotFound)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id int64) error {
	res, err := s.tasks.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("task %d: %w", id, task.ErrNotFound)
	}
	return nil
}

// drop removes both collections. Used by tests against a live server.
func (s *MongoStore) drop(ctx context.Context) error {
	return errors.Join(s.tasks.Drop(ctx), s.counters.Drop(ctx))
}
