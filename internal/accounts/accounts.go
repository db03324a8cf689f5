package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/safar/coffee-shop/internal/database"
	"github.com/safar/coffee-shop/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrEmailTaken = errors.New("email already registered")

type Store struct {
	users *mongo.Collection
}

func NewStore(db *mongo.Database) *Store {
	return &Store{users: db.Collection(database.UsersCollection)}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

// CreateUser inserts a profile with an empty cart and favorites list.
func (s *Store) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	user.ID = primitive.NilObjectID
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.Cart = []models.CartItem{}
	user.Favorites = []string{}
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt

	res, err := s.users.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	user.ID = res.InsertedID.(primitive.ObjectID)
	return &user, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, database.ErrUserNotFound
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	user := &models.User{}
	if err := s.users.FindOne(ctx, filter).Decode(user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *Store) Favorites(ctx context.Context, id string) ([]string, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Favorites == nil {
		return []string{}, nil
	}
	return user.Favorites, nil
}

// ToggleFavorite removes productID from the user's favorites if present and
// adds it otherwise. It reports whether the product is a favorite afterwards.
func (s *Store) ToggleFavorite(ctx context.Context, id, productID string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, database.ErrUserNotFound
	}

	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": oid, "favorites": productID},
		bson.M{"$pull": bson.M{"favorites": productID}, "$set": bson.M{"updatedAt": time.Now()}})
	if err != nil {
		return false, fmt.Errorf("remove favorite: %w", err)
	}
	if res.MatchedCount > 0 {
		return false, nil
	}

	res, err = s.users.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$addToSet": bson.M{"favorites": productID}, "$set": bson.M{"updatedAt": time.Now()}})
	if err != nil {
		return false, fmt.Errorf("add favorite: %w", err)
	}
	if res.MatchedCount == 0 {
		return false, database.ErrUserNotFound
	}
	return true, nil
}

// Shipping copies the address and contact fields used for an order.
func Shipping(user *models.User) models.ShippingSnapshot {
	return models.ShippingSnapshot{
		Name:         strings.TrimSpace(user.FirstName + " " + user.LastName),
		Phone:        user.Phone,
		AddressLine1: user.AddressLine1,
		AddressLine2: user.AddressLine2,
		City:         user.City,
		State:        user.State,
		PostalCode:   user.PostalCode,
		Country:      user.Country,
	}
}
