package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/thucvinguyen/coder-management/models"
	"github.com/thucvinguyen/coder-management/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func userDoc(id primitive.ObjectID, name string, role models.Role) bson.D {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: name},
		{Key: "role", Value: string(role)},
		{Key: "createdAt", Value: created},
		{Key: "updatedAt", Value: created},
	}
}

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("ensure indexes", func(mt *mtest.T) {
		repo := NewUserRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		assert.NoError(mt, repo.EnsureIndexes(ctx))
	})

	mt.Run("insert", func(mt *mtest.T) {
		repo := NewUserRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		user := &models.User{Name: "Ann", Role: models.RoleManager}
		require.NoError(mt, repo.Insert(ctx, user))
		assert.False(mt, user.ID.IsZero())
		assert.False(mt, user.CreatedAt.IsZero())
	})

	mt.Run("insert maps duplicate key to ErrDuplicate", func(mt *mtest.T) {
		repo := NewUserRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: users index: name_unique",
		}))

		err := repo.Insert(ctx, &models.User{Name: "Ann", Role: models.RoleEmployee})
		assert.ErrorIs(mt, err, ErrDuplicate)
	})

	mt.Run("find by name", func(mt *mtest.T) {
		repo := NewUserRepository(mt.Coll)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			userDoc(id, "Ann", models.RoleManager)))

		user, err := repo.FindByName(ctx, "Ann")
		require.NoError(mt, err)
		assert.Equal(mt, id, user.ID)
		assert.Equal(mt, models.RoleManager, user.Role)
		assert.Nil(mt, user.TaskResponsible)
	})

	mt.Run("find by id not found", func(mt *mtest.T) {
		repo := NewUserRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		_, err := repo.FindByID(ctx, primitive.NewObjectID())
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("find", func(mt *mtest.T) {
		repo := NewUserRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			userDoc(primitive.NewObjectID(), "Ann", models.RoleManager),
			userDoc(primitive.NewObjectID(), "Dana", models.RoleEmployee),
		))

		users, err := repo.Find(ctx, query.NameContains("an"))
		require.NoError(mt, err)
		require.Len(mt, users, 2)
		assert.Equal(mt, "Dana", users[1].Name)
	})

	mt.Run("find by ids skips the store for no ids", func(mt *mtest.T) {
		repo := NewUserRepository(mt.Coll)

		users, err := repo.FindByIDs(ctx, []primitive.ObjectID{})
		require.NoError(mt, err)
		assert.Empty(mt, users)
	})
}
