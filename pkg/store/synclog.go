package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	errs "github.com/mosfeqahamed/puprime-scraping/pkg/errors"
	"github.com/mosfeqahamed/puprime-scraping/pkg/logger"
	"github.com/mosfeqahamed/puprime-scraping/pkg/models"
)

// SyncLogRepo appends to and reads the sync_logs collection.
type SyncLogRepo struct {
	coll   *mongo.Collection
	logger logger.Logger
}

// Append records one sync run outcome. Every run writes exactly one entry.
func (r *SyncLogRepo) Append(ctx context.Context, entry models.SyncLogEntry) error {
	if _, err := r.coll.InsertOne(ctx, entry); err != nil {
		return errs.Wrap(errs.ErrorTypeStore, "failed to append sync log entry", err)
	}
	return nil
}

// LastSuccessfulSync returns the sync_time of the most recent successful
// run, or nil when no run has succeeded yet. A nil cutoff forces full-sync
// behavior.
func (r *SyncLogRepo) LastSuccessfulSync(ctx context.Context) (*time.Time, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "sync_time", Value: -1}})

	var entry models.SyncLogEntry
	err := r.coll.FindOne(ctx, bson.M{"status": models.SyncStatusSuccess}, opts).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeStore, "failed to look up last successful sync", err)
	}
	return &entry.SyncTime, nil
}

// Latest returns the most recent successful entry in full, for the health
// endpoint. Nil when none exists.
func (r *SyncLogRepo) Latest(ctx context.Context) (*models.SyncLogEntry, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "sync_time", Value: -1}})

	var entry models.SyncLogEntry
	err := r.coll.FindOne(ctx, bson.M{"status": models.SyncStatusSuccess}, opts).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeStore, "failed to look up latest sync", err)
	}
	return &entry, nil
}

// SyncCounts aggregates run outcomes for the stats endpoint.
type SyncCounts struct {
	Total      int64
	Successful int64
	Failed     int64
}

// Counts tallies total, successful and failed runs.
func (r *SyncLogRepo) Counts(ctx context.Context) (SyncCounts, error) {
	var counts SyncCounts
	var err error

	if counts.Total, err = r.coll.CountDocuments(ctx, bson.M{}); err != nil {
		return counts, errs.Wrap(errs.ErrorTypeStore, "failed to count sync runs", err)
	}
	if counts.Successful, err = r.coll.CountDocuments(ctx, bson.M{"status": models.SyncStatusSuccess}); err != nil {
		return counts, errs.Wrap(errs.ErrorTypeStore, "failed to count successful runs", err)
	}
	if counts.Failed, err = r.coll.CountDocuments(ctx, bson.M{"status": models.SyncStatusFailed}); err != nil {
		return counts, errs.Wrap(errs.ErrorTypeStore, "failed to count failed runs", err)
	}
	return counts, nil
}
