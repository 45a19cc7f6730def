package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/sanjitgh/authorization-server-side/internal/config"
	usermodel "github.com/sanjitgh/authorization-server-side/internal/models/user"
)

const (
	userNameIndex = "userName_unique"
	shopNameIndex = "shopNames_unique"
)

type MongoStorage struct {
	client *mongo.Client
	users  *mongo.Collection
}

func NewMongoStorage(ctx context.Context, cfg config.MongoConfig) (*MongoStorage, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return &MongoStorage{
		client: client,
		users:  client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// EnsureIndexes creates the unique indexes on userName and the shopNames
// multikey field. The shopNames index is what makes a shop name globally
// unique across all records, not just within one. It is partial on string
// elements: an empty shopNames array indexes as a single undefined entry, so
// without the filter every second shop-less user would collide.
func (s *MongoStorage) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userName", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(userNameIndex),
		},
		{
			Keys: bson.D{{Key: "shopNames", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName(shopNameIndex).
				SetPartialFilterExpression(bson.D{
					{Key: "shopNames", Value: bson.D{{Key: "$type", Value: "string"}}},
				}),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (s *MongoStorage) FindByUserName(ctx context.Context, userName string) (*usermodel.User, error) {
	return s.findOne(ctx, bson.M{"userName": userName})
}

func (s *MongoStorage) FindByShopNameAny(ctx context.Context, names []string) (*usermodel.User, error) {
	return s.findOne(ctx, bson.M{"shopNames": bson.M{"$in": names}})
}

func (s *MongoStorage) FindByID(ctx context.Context, id string) (*usermodel.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoStorage) findOne(ctx context.Context, filter bson.M) (*usermodel.User, error) {
	var u usermodel.User
	err := s.users.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &u, nil
}

func (s *MongoStorage) Insert(ctx context.Context, u *usermodel.User) (*usermodel.User, error) {
	stored := *u
	stored.ID = primitive.NewObjectID().Hex()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}

	if _, err := s.users.InsertOne(ctx, &stored); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if strings.Contains(err.Error(), shopNameIndex) {
				return nil, ErrDuplicateShopName
			}
			return nil, ErrDuplicateUserName
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return &stored, nil
}

func (s *MongoStorage) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
