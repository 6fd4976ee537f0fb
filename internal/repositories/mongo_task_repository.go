package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	model "taskboard.com/taskboard/internal/models"
	"taskboard.com/taskboard/internal/policy"
)

type MongoTaskRepository struct {
	coll *mongo.Collection
}

func NewMongoTaskRepository(db *mongo.Database) *MongoTaskRepository {
	return &MongoTaskRepository{coll: db.Collection("tasks")}
}

func (r *MongoTaskRepository) Create(ctx context.Context, task *model.Task) error {
	if task.Tags == nil {
		task.Tags = model.StringList{}
	}
	if _, err := r.coll.InsertOne(ctx, task); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *MongoTaskRepository) FindByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find task: %w", err)
	}
	return &task, nil
}

func (r *MongoTaskRepository) List(ctx context.Context, filter policy.TaskFilter, offset, limit int) ([]model.Task, int64, error) {
	query := taskFilterDocument(filter)

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	tasks := []model.Task{}
	if total == 0 {
		return tasks, 0, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, 0, fmt.Errorf("decode tasks: %w", err)
	}

	return tasks, total, nil
}

func taskFilterDocument(filter policy.TaskFilter) bson.M {
	clauses := bson.A{}
	if filter.ParticipantID != "" {
		clauses = append(clauses, bson.M{"$or": bson.A{
			bson.M{"owner_id": filter.ParticipantID},
			bson.M{"assignee_id": filter.ParticipantID},
		}})
	}
	if filter.Search != "" {
		clauses = append(clauses, bson.M{"description": bson.M{
			"$regex":   regexp.QuoteMeta(filter.Search),
			"$options": "i",
		}})
	}
	if filter.Status != "" {
		clauses = append(clauses, bson.M{"status": string(filter.Status)})
	}
	if filter.Priority != "" {
		clauses = append(clauses, bson.M{"priority": string(filter.Priority)})
	}
	if len(filter.Tags) > 0 {
		clauses = append(clauses, bson.M{"tags": bson.M{"$in": filter.Tags}})
	}

	if len(clauses) == 0 {
		return bson.M{}
	}
	return bson.M{"$and": clauses}
}

func (r *MongoTaskRepository) Update(ctx context.Context, id string, changes policy.TaskChanges) (*model.Task, error) {
	return r.set(ctx, id, changes.Columns(time.Now().UTC()))
}

func (r *MongoTaskRepository) SetAssignee(ctx context.Context, id, assigneeID string) (*model.Task, error) {
	return r.set(ctx, id, map[string]any{
		"assignee_id": assigneeID,
		"updated_at":  time.Now().UTC(),
	})
}

func (r *MongoTaskRepository) set(ctx context.Context, id string, fields map[string]any) (*model.Task, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var task model.Task
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return &task, nil
}

func (r *MongoTaskRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoTaskRepository) DeleteByParticipant(ctx context.Context, userID string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"$or": bson.A{
		bson.M{"owner_id": userID},
		bson.M{"assignee_id": userID},
		bson.M{"creator_id": userID},
	}})
	if err != nil {
		return 0, fmt.Errorf("delete tasks of user: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *MongoTaskRepository) ensureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		{Keys: bson.D{{Key: "assignee_id", Value: 1}}},
		{Keys: bson.D{{Key: "creator_id", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
	})
	return err
}
