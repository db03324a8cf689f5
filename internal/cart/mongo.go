package cart

import (
	"context"
	"errors"
	"time"

	"github.com/safar/coffee-shop/internal/database"
	"github.com/safar/coffee-shop/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps the cart embedded in the user document. Every mutation is
// a single-document update, so concurrent requests for the same user never
// corrupt the array; two tabs racing on the same product resolve
// last-write-wins.
type MongoStore struct {
	users *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{users: db.Collection(database.UsersCollection)}
}

func (s *MongoStore) GetCart(ctx context.Context, userID string) ([]models.CartItem, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, database.ErrUserNotFound
	}

	var doc struct {
		Cart []models.CartItem `bson:"cart"`
	}
	opts := options.FindOne().SetProjection(bson.M{"cart": 1})
	if err := s.users.FindOne(ctx, bson.M{"_id": oid}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrUserNotFound
		}
		return nil, database.Persistence("get cart", err)
	}

	if doc.Cart == nil {
		return []models.CartItem{}, nil
	}
	return doc.Cart, nil
}

func (s *MongoStore) AddItem(ctx context.Context, userID, productID string, delta int) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return database.ErrUserNotFound
	}

	bumped, err := s.increment(ctx, oid, productID, delta)
	if err != nil || bumped {
		return err
	}

	if delta <= 0 {
		return s.ensureUser(ctx, oid)
	}

	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": oid, "cart.productId": bson.M{"$ne": productID}},
		bson.M{
			"$push": bson.M{"cart": models.CartItem{ProductID: productID, Quantity: delta}},
			"$set":  bson.M{"updatedAt": time.Now()},
		})
	if err != nil {
		return database.Persistence("push cart item", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	// Either the user is gone or a concurrent request pushed the same product
	// between the two updates; in the second case fold the delta into it.
	bumped, err = s.increment(ctx, oid, productID, delta)
	if err != nil {
		return err
	}
	if !bumped {
		return database.ErrUserNotFound
	}
	return nil
}

func (s *MongoStore) SetItemQuantity(ctx context.Context, userID, productID string, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(ctx, userID, productID)
	}

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return database.ErrUserNotFound
	}

	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": oid, "cart.productId": productID},
		bson.M{"$set": bson.M{"cart.$.quantity": quantity, "updatedAt": time.Now()}})
	if err != nil {
		return database.Persistence("set cart quantity", err)
	}
	if res.MatchedCount == 0 {
		return s.ensureUser(ctx, oid)
	}
	return nil
}

func (s *MongoStore) RemoveItem(ctx context.Context, userID, productID string) error {
	return s.update(ctx, userID, "remove cart item", bson.M{
		"$pull": bson.M{"cart": bson.M{"productId": productID}},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
}

func (s *MongoStore) Clear(ctx context.Context, userID string) error {
	return s.update(ctx, userID, "clear cart", bson.M{
		"$set": bson.M{"cart": []models.CartItem{}, "updatedAt": time.Now()},
	})
}

func (s *MongoStore) update(ctx context.Context, userID, op string, update bson.M) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return database.ErrUserNotFound
	}

	res, err := s.users.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return database.Persistence(op, err)
	}
	if res.MatchedCount == 0 {
		return database.ErrUserNotFound
	}
	return nil
}

// increment adds delta to an existing entry and drops it if it is no longer
// positive. Both happen in one pipeline update, so no reader ever sees a
// zero or negative quantity. It reports false when the cart has no entry for
// productID.
func (s *MongoStore) increment(ctx context.Context, oid primitive.ObjectID, productID string, delta int) (bool, error) {
	bumped := bson.D{{Key: "$map", Value: bson.D{
		{Key: "input", Value: "$cart"},
		{Key: "as", Value: "item"},
		{Key: "in", Value: bson.D{{Key: "$cond", Value: bson.A{
			bson.D{{Key: "$eq", Value: bson.A{"$$item.productId", bson.D{{Key: "$literal", Value: productID}}}}},
			bson.D{{Key: "$mergeObjects", Value: bson.A{
				"$$item",
				bson.D{{Key: "quantity", Value: bson.D{{Key: "$add", Value: bson.A{"$$item.quantity", delta}}}}},
			}}},
			"$$item",
		}}}},
	}}}

	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "cart", Value: bson.D{{Key: "$filter", Value: bson.D{
				{Key: "input", Value: bumped},
				{Key: "as", Value: "item"},
				{Key: "cond", Value: bson.D{{Key: "$gt", Value: bson.A{"$$item.quantity", 0}}}},
			}}}},
			{Key: "updatedAt", Value: time.Now()},
		}}},
	}

	res, err := s.users.UpdateOne(ctx, bson.M{"_id": oid, "cart.productId": productID}, update)
	if err != nil {
		return false, database.Persistence("increment cart item", err)
	}
	return res.MatchedCount > 0, nil
}

func (s *MongoStore) ensureUser(ctx context.Context, oid primitive.ObjectID) error {
	n, err := s.users.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return database.Persistence("find user", err)
	}
	if n == 0 {
		return database.ErrUserNotFound
	}
	return nil
}
