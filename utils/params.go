package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"fitshare/errs"
)

const maxBodyBytes = 1 << 20

// ParseObjectID parses a hex ObjectID, reporting field in the validation error.
func ParseObjectID(raw, field string) (primitive.ObjectID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return primitive.NilObjectID, errs.ValidationWithDetails(field+" is required", map[string]string{field: "is required"})
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, errs.ValidationWithDetails("invalid "+field, map[string]string{field: "must be a valid id"})
	}
	return id, nil
}

// DecodeJSON decodes a bounded JSON request body into dst.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errs.Validation("request body is required")
		}
		return errs.Validation("invalid JSON body").WithCause(err)
	}
	return nil
}

// ParseOptionalBool parses a query flag. Absent means nil.
func ParseOptionalBool(raw, field string) (*bool, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, errs.ValidationWithDetails("invalid "+field, map[string]string{field: "must be true or false"})
	}
	return &v, nil
}
