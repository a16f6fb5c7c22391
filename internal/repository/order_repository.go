package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// orderFields is everything the client supplies. created_at is left to the server.
type orderFields struct {
	domain.CartLine `bson:",inline"`
	CustomerDetails domain.CustomerDetails `bson:"customer_details"`
	OwnerID         string                 `bson:"owner_id"`
}

type mongoOrderRepository struct {
	collection *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) OrderRepository {
	return &mongoOrderRepository{
		collection: db.Collection("orders"),
	}
}

func (m mongoOrderRepository) InsertOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if order.ID == "" {
		return nil, errors.New("order id is required")
	}

	// created_at must not exist yet, so a reused id can never rewrite the timestamp
	filter := bson.M{"_id": order.ID, "created_at": bson.M{"$exists": false}}
	update := bson.M{
		"$setOnInsert": orderFields{
			CartLine:        order.CartLine,
			CustomerDetails: order.CustomerDetails,
			OwnerID:         order.OwnerID,
		},
		"$currentDate": bson.M{"created_at": bson.M{"$type": "date"}},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var stored domain.Order
	err := m.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateOrder
		}
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	return &stored, nil
}

func (m mongoOrderRepository) ListOrdersByOwner(ctx context.Context, ownerID string) ([]*domain.Order, error) {
	filter := bson.M{"owner_id": ownerID}
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: 1},
	})

	cursor, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := make([]*domain.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}

	return orders, nil
}

func (m *mongoOrderRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// EnsureOrderIndexes creates the indexes the owner query relies on.
func EnsureOrderIndexes(ctx context.Context, repo OrderRepository) error {
	indexed, ok := repo.(*mongoOrderRepository)
	if !ok {
		return nil
	}
	return indexed.CreateIndexes(ctx)
}
