package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/mosfeqahamed/puprime-scraping/pkg/config"
	errs "github.com/mosfeqahamed/puprime-scraping/pkg/errors"
	"github.com/mosfeqahamed/puprime-scraping/pkg/logger"
)

const (
	accountsCollection = "accounts"
	syncLogsCollection = "sync_logs"
)

// Store owns the MongoDB client and hands out collection repositories.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger logger.Logger
}

// Connect dials MongoDB, verifies it with a ping and ensures the indexes
// both collections rely on.
func Connect(ctx context.Context, cfg config.MongoConfig) (*Store, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(cfg.ConnectTimeout).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetSocketTimeout(cfg.SocketTimeout).
		SetRetryWrites(true).
		SetWriteConcern(writeconcern.Majority())

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeStore, "failed to connect to MongoDB", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errs.Wrap(errs.ErrorTypeStore, "MongoDB ping failed", err)
	}

	s := &Store{
		client: client,
		db:     client.Database(cfg.Database),
		logger: logger.GetLogger().WithField("component", "store"),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	s.logger.InfoWithFields("Connected to MongoDB", map[string]interface{}{
		"database": cfg.Database,
	})
	return s, nil
}

// Disconnect closes the client. Best-effort on shutdown paths.
func (s *Store) Disconnect(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return errs.Wrap(errs.ErrorTypeStore, "failed to disconnect from MongoDB", err)
	}
	return nil
}

// Accounts returns the account record repository.
func (s *Store) Accounts() *AccountRepo {
	return &AccountRepo{coll: s.db.Collection(accountsCollection), logger: s.logger}
}

// SyncLogs returns the sync log repository.
func (s *Store) SyncLogs() *SyncLogRepo {
	return &SyncLogRepo{coll: s.db.Collection(syncLogsCollection), logger: s.logger}
}

// Ping verifies store reachability, for health checks.
func (s *Store) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.client.Ping(pingCtx, readpref.Primary()); err != nil {
		return errs.Wrap(errs.ErrorTypeStore, "MongoDB ping failed", err)
	}
	return nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	accountIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "account_number", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("account_number_unique"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("user_id_idx"),
		},
		{
			Keys:    bson.D{{Key: "date", Value: 1}},
			Options: options.Index().SetName("date_idx"),
		},
		{
			Keys:    bson.D{{Key: "scraped_at", Value: -1}},
			Options: options.Index().SetName("scraped_at_idx"),
		},
	}
	if _, err := s.db.Collection(accountsCollection).Indexes().CreateMany(ctx, accountIndexes); err != nil {
		return errs.Wrap(errs.ErrorTypeStore, "failed to create account indexes", err)
	}

	syncIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sync_time", Value: -1}},
			Options: options.Index().SetName("sync_time_idx"),
		},
	}
	if _, err := s.db.Collection(syncLogsCollection).Indexes().CreateMany(ctx, syncIndexes); err != nil {
		return errs.Wrap(errs.ErrorTypeStore, "failed to create sync log indexes", err)
	}
	return nil
}
