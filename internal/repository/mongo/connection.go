// Package mongo implements the document store against MongoDB.
package mongo

import (
	"context"
	"fmt"

	"project-tracker/config"
	"project-tracker/internal/entities"
	"project-tracker/internal/repository/keylock"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Mongo wraps a client and the target database.
// Locking is process-local; run a single replica or use the postgres backend for cross-replica serialization.
type Mongo struct {
	*keylock.Locker

	baseCtx context.Context
	log     *zap.SugaredLogger
	cfg     config.MongoConfig
	client  *mongo.Client
	db      *mongo.Database
}

// New creates a Mongo repository instance.
func New(ctx context.Context, log *zap.SugaredLogger, cfg *config.Config) *Mongo {
	return &Mongo{
		Locker:  keylock.New(),
		baseCtx: ctx,
		log:     log.Named("repo.mongo"),
		cfg:     cfg.Mongo,
	}
}

// OnStart connects, pings and ensures indexes.
func (m *Mongo) OnStart(_ context.Context) error {
	ctx, cancel := context.WithTimeout(m.baseCtx, m.cfg.Timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(m.cfg.URI).
		SetBSONOptions(&options.BSONOptions{NilSliceAsEmpty: true})
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(m.cfg.Database)
	_, err = db.Collection(string(entities.CollectionUsers)).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("users_email_uniq"),
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("ensure email index: %w", err)
	}
	_, err = db.Collection(string(entities.CollectionTasks)).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "assigned_to", Value: 1}, {Key: "status", Value: 1}},
		Options: options.Index().SetName("tasks_assignee_status"),
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("ensure task index: %w", err)
	}

	m.client = client
	m.db = db
	m.log.Infow("mongo ready", "database", m.cfg.Database)
	return nil
}

// OnStop disconnects the client.
func (m *Mongo) OnStop(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}
