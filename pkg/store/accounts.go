package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	errs "github.com/mosfeqahamed/puprime-scraping/pkg/errors"
	"github.com/mosfeqahamed/puprime-scraping/pkg/logger"
	"github.com/mosfeqahamed/puprime-scraping/pkg/models"
)

// UpsertResult counts what an upsert batch did.
type UpsertResult struct {
	Inserted int
	Updated  int
}

// AccountRepo reads and writes the accounts collection.
type AccountRepo struct {
	coll   *mongo.Collection
	logger logger.Logger
}

// Upsert writes each record keyed by account_number. New accounts get
// scraped_at set once; existing accounts have every field except identity
// and scraped_at replaced. Idempotent per record: re-running with the same
// input changes nothing but last_updated.
func (r *AccountRepo) Upsert(ctx context.Context, records []models.AccountRecord) (UpsertResult, error) {
	var result UpsertResult
	now := time.Now().UTC()

	for _, rec := range records {
		update := bson.M{
			"$set": bson.M{
				"user_id":         rec.UserID,
				"name":            rec.Name,
				"email":           rec.Email,
				"campaign_source": rec.CampaignSource,
				"id_status":       rec.IDStatus,
				"poa_status":      rec.POAStatus,
				"date":            rec.Date,
				"date_string":     rec.DateString,
				"last_updated":    now,
			},
			"$setOnInsert": bson.M{
				"account_number": rec.AccountNumber,
				"scraped_at":     now,
			},
		}

		res, err := r.coll.UpdateOne(ctx,
			bson.M{"account_number": rec.AccountNumber},
			update,
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return result, errs.Wrap(errs.ErrorTypeStore, "account upsert failed", err)
		}
		if res.UpsertedCount > 0 {
			result.Inserted++
		} else {
			result.Updated++
		}
	}

	r.logger.InfoWithFields("Account upsert complete", map[string]interface{}{
		"inserted": result.Inserted,
		"updated":  result.Updated,
	})
	return result, nil
}

// ListAll returns every account, most recently scraped first.
func (r *AccountRepo) ListAll(ctx context.Context) ([]models.AccountRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "scraped_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeStore, "failed to list accounts", err)
	}
	defer cursor.Close(ctx)

	var accounts []models.AccountRecord
	if err := cursor.All(ctx, &accounts); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeStore, "failed to decode accounts", err)
	}
	return accounts, nil
}

// Count returns the total number of stored accounts.
func (r *AccountRepo) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, errs.Wrap(errs.ErrorTypeStore, "failed to count accounts", err)
	}
	return n, nil
}

// CountDateSince counts accounts whose report date is at or after t.
// Records with an unset date are never counted.
func (r *AccountRepo) CountDateSince(ctx context.Context, t time.Time) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"date": bson.M{"$gte": t}})
	if err != nil {
		return 0, errs.Wrap(errs.ErrorTypeStore, "failed to count accounts by date", err)
	}
	return n, nil
}
