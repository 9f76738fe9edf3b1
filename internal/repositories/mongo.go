package repositories

import (
	"errors"

	"github.com/anonto42/circleup/backend/internal/apperrors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrStaleDocument is returned by conditional updates whose state assertion no
// longer holds. Callers re-read the document and retry or translate to the
// taxonomy (the document may also have been deleted in the meantime).
var ErrStaleDocument = errors.New("document state changed")

func parseObjectID(id, what string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperrors.InvalidInput("invalid " + what + " id")
	}
	return objID, nil
}

func parseObjectIDs(ids []string, what string) ([]primitive.ObjectID, error) {
	objIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objID, err := parseObjectID(id, what)
		if err != nil {
			return nil, err
		}
		objIDs = append(objIDs, objID)
	}
	return objIDs, nil
}
