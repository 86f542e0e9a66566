// Package repositories holds the MongoDB-backed entity stores for tasks and users.
package repositories

import (
	"errors"
	"time"

	"github.com/thucvinguyen/coder-management/query"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when no document matches an id, name or update guard.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when an insert violates a unique index.
	ErrDuplicate = errors.New("duplicate document")
)

// now is the timestamp source for createdAt/updatedAt. MongoDB keeps millisecond precision.
var now = func() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func filterFromSpec(spec query.Spec) bson.M {
	filter := bson.M{}
	for _, f := range spec.Filters {
		switch f.Operator {
		case query.ContainsFold:
			filter[f.Field] = primitive.Regex{Pattern: f.Value, Options: "i"}
		default:
			filter[f.Field] = f.Value
		}
	}
	return filter
}

func sortFromSpec(spec query.Spec) bson.D {
	if len(spec.Sort) == 0 {
		return nil
	}
	sort := bson.D{}
	for _, s := range spec.Sort {
		sort = append(sort, bson.E{Key: s.Field, Value: int(s.Direction)})
	}
	return sort
}
