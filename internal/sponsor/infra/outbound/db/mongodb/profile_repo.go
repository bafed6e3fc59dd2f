package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/davicafu/maidlink/internal/sponsor/domain"
)

// ProfileRepoMongoDB implementa domain.ProfileRepository sobre MongoDB.
type ProfileRepoMongoDB struct {
	coll *mongo.Collection
}

var _ domain.ProfileRepository = (*ProfileRepoMongoDB)(nil)

func NewProfileRepoMongoDB(client *mongo.Client, dbName string) *ProfileRepoMongoDB {
	return &ProfileRepoMongoDB{coll: client.Database(dbName).Collection("sponsor_profiles")}
}

// mongoProfile mapea los documentos de la colección a un struct.
type mongoProfile struct {
	ID                   string                 `bson:"_id"`
	UserID               string                 `bson:"userId"`
	Nombre               string                 `bson:"nombre,omitempty"`
	Phone                string                 `bson:"phone,omitempty"`
	Country              string                 `bson:"country,omitempty"`
	City                 string                 `bson:"city,omitempty"`
	Address              string                 `bson:"address,omitempty"`
	HouseholdSize        int                    `bson:"householdSize,omitempty"`
	Preferences          map[string]interface{} `bson:"preferences,omitempty"`
	Documents            map[string]string      `bson:"documents,omitempty"`
	Status               string                 `bson:"status"`
	CompletionPercentage int                    `bson:"completionPercentage"`
	IsVerified           bool                   `bson:"isVerified"`
	VerifiedAt           *time.Time             `bson:"verifiedAt,omitempty"`
	VerifiedBy           string                 `bson:"verifiedBy,omitempty"`
	RejectionReason      string                 `bson:"rejectionReason,omitempty"`
	ArchiveReason        string                 `bson:"archiveReason,omitempty"`
	CreatedAt            time.Time              `bson:"createdAt"`
	UpdatedAt            time.Time              `bson:"updatedAt"`
}

func (r *ProfileRepoMongoDB) Create(ctx context.Context, p *domain.SponsorProfile) error {
	_, err := r.coll.InsertOne(ctx, toMongoProfile(p))
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrInvalidProfile
	}
	return err
}

func (r *ProfileRepoMongoDB) GetByID(ctx context.Context, id uuid.UUID) (*domain.SponsorProfile, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

func (r *ProfileRepoMongoDB) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.SponsorProfile, error) {
	return r.findOne(ctx, bson.M{"userId": userID.String()})
}

func (r *ProfileRepoMongoDB) Update(ctx context.Context, p *domain.SponsorProfile) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": p.ID.String()}, toMongoProfile(p))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

func (r *ProfileRepoMongoDB) findOne(ctx context.Context, filter bson.M) (*domain.SponsorProfile, error) {
	var mp mongoProfile
	err := r.coll.FindOne(ctx, filter).Decode(&mp)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromMongoProfile(&mp)
}

func toMongoProfile(p *domain.SponsorProfile) mongoProfile {
	return mongoProfile{
		ID:                   p.ID.String(),
		UserID:               p.UserID.String(),
		Nombre:               p.Nombre,
		Phone:                p.Phone,
		Country:              p.Country,
		City:                 p.City,
		Address:              p.Address,
		HouseholdSize:        p.HouseholdSize,
		Preferences:          p.Preferences,
		Documents:            p.Documents,
		Status:               string(p.Status),
		CompletionPercentage: p.CompletionPercentage,
		IsVerified:           p.IsVerified,
		VerifiedAt:           p.VerifiedAt,
		VerifiedBy:           p.VerifiedBy,
		RejectionReason:      p.RejectionReason,
		ArchiveReason:        p.ArchiveReason,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}

func fromMongoProfile(mp *mongoProfile) (*domain.SponsorProfile, error) {
	id, err := uuid.Parse(mp.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid UUID in sponsor_profiles document: %w", err)
	}
	userID, err := uuid.Parse(mp.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user UUID in sponsor_profiles document: %w", err)
	}

	p := &domain.SponsorProfile{
		ID:                   id,
		UserID:               userID,
		Nombre:               mp.Nombre,
		Phone:                mp.Phone,
		Country:              mp.Country,
		City:                 mp.City,
		Address:              mp.Address,
		HouseholdSize:        mp.HouseholdSize,
		Preferences:          mp.Preferences,
		Documents:            mp.Documents,
		Status:               domain.ProfileStatus(mp.Status),
		CompletionPercentage: mp.CompletionPercentage,
		IsVerified:           mp.IsVerified,
		VerifiedAt:           mp.VerifiedAt,
		VerifiedBy:           mp.VerifiedBy,
		RejectionReason:      mp.RejectionReason,
		ArchiveReason:        mp.ArchiveReason,
		CreatedAt:            mp.CreatedAt,
		UpdatedAt:            mp.UpdatedAt,
	}
	if p.Documents == nil {
		p.Documents = make(map[string]string)
	}
	return p, nil
}
