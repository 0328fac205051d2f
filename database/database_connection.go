package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/princinho/coursemarket/config"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"
)

const (
	UsersCollection     = "users"
	CoursesCollection   = "courses"
	PurchasesCollection = "purchases"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

// Store owns the mongo client. It is built once in main and handed to every repository.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	log    *zap.Logger
}

func Connect(ctx context.Context, cfg config.MongoConfig, log *zap.Logger) (*Store, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerAPIOptions(serverAPI).
		SetConnectTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	log.Info("connected to mongodb", zap.String("database", cfg.Database))

	return NewStore(client, cfg.Database, log), nil
}

func NewStore(client *mongo.Client, database string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{client: client, db: client.Database(database), log: log}
}

func (s *Store) Collection(name string) *mongo.Collection {
	return s.db.Collection(name)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// WithTransaction runs fn in a multi-document transaction. The session is ended on every
// path and the transaction is aborted whenever fn returns an error.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(txCtx context.Context) (any, error) {
		return nil, fn(txCtx)
	})
	return err
}

// EnsureIndexes creates the uniqueness and search indexes the services rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "refreshTokens.fingerprint", Value: 1}}},
		},
		CoursesCollection: {
			{
				Keys: bson.D{
					{Key: "title", Value: "text"},
					{Key: "description", Value: "text"},
					{Key: "instructor", Value: "text"},
				},
				Options: options.Index().SetName("course_text"),
			},
			{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		PurchasesCollection: {
			{
				Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "courseId", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
	}

	for col, models := range indexes {
		if _, err := s.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", col, err)
		}
	}
	return nil
}
