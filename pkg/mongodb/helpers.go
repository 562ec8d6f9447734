package mongodb

import (
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Now returns the current time in UTC truncated to milliseconds, the precision BSON dates keep
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// DateRange returns a range condition for field, or nil if both bounds are nil.
// The upper bound is inclusive.
func DateRange(from, to *time.Time) bson.M {
	if from == nil && to == nil {
		return nil
	}
	cond := bson.M{}
	if from != nil {
		cond["$gte"] = *from
	}
	if to != nil {
		cond["$lte"] = *to
	}
	return cond
}

// PrefixMatch builds a case-insensitive anchored regex for search-as-you-type fields
func PrefixMatch(value string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(value), Options: "i"}
}

// PageOptions builds find options for one page sorted by field, with _id as a tiebreaker
func PageOptions(skip, limit int64, field string, order int) *options.FindOptions {
	return options.Find().
		SetSkip(skip).
		SetLimit(limit).
		SetSort(bson.D{{Key: field, Value: order}, {Key: "_id", Value: order}})
}
