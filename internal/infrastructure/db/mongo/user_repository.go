package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pixelmuse/imagevault/internal/core/domain"
	"github.com/pixelmuse/imagevault/internal/core/ports"
)

const collectionUsers = "users"

// UserRepository implements ports.UserRepository on MongoDB. The database
// handle is acquired lazily per operation through the shared Manager.
type UserRepository struct {
	mgr *Manager
}

func NewUserRepository(mgr *Manager) *UserRepository {
	return &UserRepository{mgr: mgr}
}

type userDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	ExternalID    string             `bson:"external_id"`
	FirstName     string             `bson:"first_name,omitempty"`
	LastName      string             `bson:"last_name,omitempty"`
	CreditBalance int64              `bson:"credit_balance"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

func (d *userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:            d.ID.Hex(),
		ExternalID:    d.ExternalID,
		FirstName:     d.FirstName,
		LastName:      d.LastName,
		CreditBalance: d.CreditBalance,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func (r *UserRepository) collection(ctx context.Context) (*mongo.Collection, error) {
	db, err := r.mgr.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return db.Collection(collectionUsers), nil
}

// Create inserts a new user. The unique index on external_id turns a
// duplicate insert into domain.ErrUserExists.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	col, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := userDoc{
		ExternalID:    u.ExternalID,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		CreditBalance: u.CreditBalance,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}

	res, err := col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	col, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDoc
	if err := col.FindOne(ctx, bson.M{"external_id": externalID}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

// UpdateByExternalID applies a partial profile update and returns the
// post-update record.
func (r *UserRepository) UpdateByExternalID(ctx context.Context, externalID string, patch ports.UserPatch) (*domain.User, error) {
	col, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.FirstName != nil {
		set["first_name"] = *patch.FirstName
	}
	if patch.LastName != nil {
		set["last_name"] = *patch.LastName
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDoc
	err = col.FindOneAndUpdate(ctx, bson.M{"external_id": externalID}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return doc.toDomain(), nil
}

// DeleteByExternalID removes the user and returns the deleted record. Images
// authored by the user are left in place.
func (r *UserRepository) DeleteByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	col, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDoc
	if err := col.FindOneAndDelete(ctx, bson.M{"external_id": externalID}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("delete user: %w", err)
	}
	return doc.toDomain(), nil
}

// AdjustCredits increments the balance in a single findAndModify keyed by the
// internal id - never read-modify-write - so parallel debits against the same
// user cannot lose an update. Returns the post-adjustment record.
func (r *UserRepository) AdjustCredits(ctx context.Context, userID string, delta int64) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	col, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$inc": bson.M{"credit_balance": delta},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDoc
	if err := col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("adjust credits: %w", err)
	}
	return doc.toDomain(), nil
}

// EnsureIndexes creates the uniqueness constraint on external_id.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	col, err := r.collection(ctx)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "external_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
