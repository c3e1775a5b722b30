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

const collectionImages = "images"

// ImageRepository implements ports.ImageRepository on MongoDB.
type ImageRepository struct {
	mgr *Manager
}

func NewImageRepository(mgr *Manager) *ImageRepository {
	return &ImageRepository{mgr: mgr}
}

type imageDoc struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	Title              string             `bson:"title"`
	TransformationType string             `bson:"transformation_type"`
	PublicID           string             `bson:"public_id"`
	SecureURL          string             `bson:"secure_url,omitempty"`
	TransformationURL  string             `bson:"transformation_url,omitempty"`
	AspectRatio        string             `bson:"aspect_ratio,omitempty"`
	Prompt             string             `bson:"prompt,omitempty"`
	Color              string             `bson:"color,omitempty"`
	Width              int                `bson:"width,omitempty"`
	Height             int                `bson:"height,omitempty"`
	Config             bson.M             `bson:"config,omitempty"`
	Author             primitive.ObjectID `bson:"author"`
	CreatedAt          time.Time          `bson:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at"`
}

// imageWithOwnerDoc is the aggregation result of joining users onto images.
type imageWithOwnerDoc struct {
	imageDoc `bson:",inline"`
	Owner    *userDoc `bson:"owner,omitempty"`
}

func (d *imageDoc) toDomain() *domain.Image {
	return &domain.Image{
		ID:                 d.ID.Hex(),
		Title:              d.Title,
		TransformationType: d.TransformationType,
		PublicID:           d.PublicID,
		SecureURL:          d.SecureURL,
		TransformationURL:  d.TransformationURL,
		AspectRatio:        d.AspectRatio,
		Prompt:             d.Prompt,
		Color:              d.Color,
		Width:              d.Width,
		Height:             d.Height,
		Config:             d.Config,
		Author:             d.Author.Hex(),
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

func (r *ImageRepository) collection(ctx context.Context) (*mongo.Collection, error) {
	db, err := r.mgr.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return db.Collection(collectionImages), nil
}

func (r *ImageRepository) Create(ctx context.Context, img *domain.Image) (*domain.Image, error) {
	authorID, err := primitive.ObjectIDFromHex(img.Author)
	if err != nil {
		return nil, domain.ErrOwnerNotFound
	}

	col, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := imageDoc{
		Title:              img.Title,
		TransformationType: img.TransformationType,
		PublicID:           img.PublicID,
		SecureURL:          img.SecureURL,
		TransformationURL:  img.TransformationURL,
		AspectRatio:        img.AspectRatio,
		Prompt:             img.Prompt,
		Color:              img.Color,
		Width:              img.Width,
		Height:             img.Height,
		Config:             bson.M(img.Config),
		Author:             authorID,
		CreatedAt:          img.CreatedAt,
		UpdatedAt:          img.UpdatedAt,
	}

	res, err := col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert image: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *ImageRepository) FindByID(ctx context.Context, id string) (*domain.Image, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrImageNotFound
	}

	col, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc imageDoc
	if err := col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrImageNotFound
		}
		return nil, fmt.Errorf("find image: %w", err)
	}
	return doc.toDomain(), nil
}

// FindWithOwner joins the owner summary onto the image via $lookup. An image
// whose author no longer exists decodes with a nil owner and is still
// returned - the summary fields just stay empty.
func (r *ImageRepository) FindWithOwner(ctx context.Context, id string) (*domain.ImageWithOwner, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrImageNotFound
	}

	col, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": oid}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionUsers,
			"localField":   "author",
			"foreignField": "_id",
			"as":           "owner",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$owner", "preserveNullAndEmptyArrays": true}}},
	}

	cur, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate image: %w", err)
	}
	defer cur.Close(ctx)

	if !cur.Next(ctx) {
		if err := cur.Err(); err != nil {
			return nil, fmt.Errorf("aggregate image: %w", err)
		}
		return nil, domain.ErrImageNotFound
	}

	var doc imageWithOwnerDoc
	if err := cur.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	out := &domain.ImageWithOwner{Image: *doc.imageDoc.toDomain()}
	if doc.Owner != nil {
		out.Owner = domain.OwnerSummary{
			ID:         doc.Owner.ID.Hex(),
			FirstName:  doc.Owner.FirstName,
			LastName:   doc.Owner.LastName,
			ExternalID: doc.Owner.ExternalID,
		}
	}
	return out, nil
}

// UpdateOwned patches the image through a single findAndModify whose filter
// matches both id and author, closing the check-then-write race. A miss
// (image absent or owned by someone else) comes back as ErrImageNotFound;
// the service layer disambiguates.
func (r *ImageRepository) UpdateOwned(ctx context.Context, id, authorID string, patch ports.ImagePatch) (*domain.Image, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrImageNotFound
	}
	author, err := primitive.ObjectIDFromHex(authorID)
	if err != nil {
		return nil, domain.ErrImageNotFound
	}

	col, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := patchToSet(patch)
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc imageDoc
	err = col.FindOneAndUpdate(ctx, bson.M{"_id": oid, "author": author}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrImageNotFound
		}
		return nil, fmt.Errorf("update image: %w", err)
	}
	return doc.toDomain(), nil
}

// DeleteOwned removes the image under the same conditional (id, author) filter.
func (r *ImageRepository) DeleteOwned(ctx context.Context, id, authorID string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrImageNotFound
	}
	author, err := primitive.ObjectIDFromHex(authorID)
	if err != nil {
		return domain.ErrImageNotFound
	}

	col, err := r.collection(ctx)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := col.DeleteOne(ctx, bson.M{"_id": oid, "author": author})
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrImageNotFound
	}
	return nil
}

// Delete removes the image by id without an ownership filter.
func (r *ImageRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrImageNotFound
	}

	col, err := r.collection(ctx)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrImageNotFound
	}
	return nil
}

// List returns one page sorted by updated_at descending with _id as the
// stable tiebreak, plus the total count matching the filter.
func (r *ImageRepository) List(ctx context.Context, filter ports.ListImagesFilter) ([]*domain.Image, int64, error) {
	col, err := r.collection(ctx)
	if err != nil {
		return nil, 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.AuthorID != "" {
		author, err := primitive.ObjectIDFromHex(filter.AuthorID)
		if err != nil {
			return nil, 0, domain.ErrOwnerNotFound
		}
		query["author"] = author
	}
	if filter.PublicIDs != nil {
		query["public_id"] = bson.M{"$in": filter.PublicIDs}
	}

	total, err := col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count images: %w", err)
	}

	skip := int64(filter.Page-1) * int64(filter.Limit)
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(skip).
		SetLimit(int64(filter.Limit))

	cur, err := col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list images: %w", err)
	}
	defer cur.Close(ctx)

	images := make([]*domain.Image, 0, filter.Limit)
	for cur.Next(ctx) {
		var doc imageDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("decode image: %w", err)
		}
		images = append(images, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("list images: %w", err)
	}

	return images, total, nil
}

// EnsureIndexes creates the catalog query indexes.
func (r *ImageRepository) EnsureIndexes(ctx context.Context) error {
	col, err := r.collection(ctx)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "author", Value: 1}}},
		{Keys: bson.D{{Key: "public_id", Value: 1}}},
		{Keys: bson.D{{Key: "updated_at", Value: -1}}},
	}

	_, err = col.Indexes().CreateMany(ctx, indexes)
	return err
}

func patchToSet(patch ports.ImagePatch) bson.M {
	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.TransformationType != nil {
		set["transformation_type"] = *patch.TransformationType
	}
	if patch.PublicID != nil {
		set["public_id"] = *patch.PublicID
	}
	if patch.SecureURL != nil {
		set["secure_url"] = *patch.SecureURL
	}
	if patch.TransformationURL != nil {
		set["transformation_url"] = *patch.TransformationURL
	}
	if patch.AspectRatio != nil {
		set["aspect_ratio"] = *patch.AspectRatio
	}
	if patch.Prompt != nil {
		set["prompt"] = *patch.Prompt
	}
	if patch.Color != nil {
		set["color"] = *patch.Color
	}
	if patch.Width != nil {
		set["width"] = *patch.Width
	}
	if patch.Height != nil {
		set["height"] = *patch.Height
	}
	if patch.Config != nil {
		set["config"] = bson.M(patch.Config)
	}
	return set
}
