package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/thucvinguyen/coder-management/models"
	"github.com/thucvinguyen/coder-management/query"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TaskRepository struct {
	tasksCollection *mongo.Collection
}

func NewTaskRepository(tasksCollection *mongo.Collection) *TaskRepository {
	return &TaskRepository{tasksCollection: tasksCollection}
}

// Insert stores a new task and fills in its id and timestamps.
func (r *TaskRepository) Insert(ctx context.Context, task *models.Task) error {
	if task.ID.IsZero() {
		task.ID = primitive.NewObjectID()
	}
	task.CreatedAt = now()
	task.UpdatedAt = task.CreatedAt

	if _, err := r.tasksCollection.InsertOne(ctx, task); err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	err := r.tasksCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve task: %w", err)
	}
	return &task, nil
}

func (r *TaskRepository) Find(ctx context.Context, spec query.Spec) ([]models.Task, error) {
	opts := options.Find()
	if sort := sortFromSpec(spec); sort != nil {
		opts.SetSort(sort)
	}
	return r.find(ctx, filterFromSpec(spec), opts)
}

// FindByAssignees returns every task assigned to one of the given users.
func (r *TaskRepository) FindByAssignees(ctx context.Context, userIDs []primitive.ObjectID) ([]models.Task, error) {
	if len(userIDs) == 0 {
		return []models.Task{}, nil
	}
	return r.find(ctx, bson.M{"assignedTo": bson.M{"$in": userIDs}}, options.Find())
}

// Update applies change to the task if it matches guard, returning the updated
// document. ErrNotFound means either the task is missing or the guard did not hold.
func (r *TaskRepository) Update(ctx context.Context, id primitive.ObjectID, guard models.TaskGuard, change models.TaskChange) (*models.Task, error) {
	filter := bson.M{"_id": id}
	status := bson.M{}
	if guard.Status != "" {
		status["$eq"] = guard.Status
	}
	if guard.StatusNot != "" {
		status["$ne"] = guard.StatusNot
	}
	if len(status) > 0 {
		filter["status"] = status
	}

	set := bson.M{"updatedAt": now()}
	if change.Name != nil {
		set["name"] = *change.Name
	}
	if change.Description != nil {
		set["description"] = *change.Description
	}
	if change.Status != nil {
		set["status"] = *change.Status
	}
	if change.IsDeleted != nil {
		set["isDeleted"] = *change.IsDeleted
	}
	if change.AssignedTo != nil {
		set["assignedTo"] = *change.AssignedTo
	}
	if change.ClearAssignee {
		set["assignedTo"] = nil
	}

	var task models.Task
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.tasksCollection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return &task, nil
}

func (r *TaskRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Task, error) {
	cursor, err := r.tasksCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %w", err)
	}
	defer cursor.Close(ctx)

	tasks := []models.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}
	return tasks, nil
}
