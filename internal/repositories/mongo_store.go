package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// MongoStore keeps tasks and users in two collections of one database.
//
// WithinTx does not open a session transaction: standalone servers do not
// support them. fn runs directly against the collections, so a failure
// midway leaves the earlier steps applied. Callers order their steps so that
// a partial run is safe to repeat (the user cascade deletes tasks before the
// user record).
type MongoStore struct {
	client *mongo.Client
	tasks  *MongoTaskRepository
	users  *MongoUserRepository
}

func NewMongoStore(ctx context.Context, client *mongo.Client, database string) (*MongoStore, error) {
	db := client.Database(database)
	s := &MongoStore{
		client: client,
		tasks:  NewMongoTaskRepository(db),
		users:  NewMongoUserRepository(db),
	}

	if err := s.users.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("user indexes: %w", err)
	}
	if err := s.tasks.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("task indexes: %w", err)
	}

	return s, nil
}

func (s *MongoStore) Tasks() TaskRepository { return s.tasks }

func (s *MongoStore) Users() UserRepository { return s.users }

func (s *MongoStore) WithinTx(ctx context.Context, fn func(tasks TaskRepository, users UserRepository) error) error {
	return fn(s.tasks, s.users)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
