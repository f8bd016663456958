package repositories

import (
	"context"
	"errors"
	"time"

	"hostel-leave-api/internal/adapters/persistence/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection names
const (
	UsersCollection  = "users"
	LeavesCollection = "leaves"
)

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}

func translateMongo(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	default:
		return err
	}
}

// EnsureMongoIndexes creates the unique email index and lookup indexes
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(UsersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "resetToken", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection(LeavesCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "student", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	return err
}

// ============================================================
// Users
// ============================================================

type mongoUserRepository struct {
	coll *mongo.Collection
}

// NewMongoUserRepository creates a user repository on a MongoDB database
func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{coll: db.Collection(UsersCollection)}
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, translateMongo(err)
	}
	return &user, nil
}

func (r *mongoUserRepository) Create(ctx context.Context, user *models.User) error {
	user.EnsureID()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, user)
	return translateMongo(err)
}

func (r *mongoUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUserRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	users := []*models.User{}
	if len(ids) == 0 {
		return users, nil
	}
	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, translateMongo(err)
	}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, translateMongo(err)
	}
	return users, nil
}

func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUserRepository) GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error) {
	return r.findOne(ctx, bson.M{
		"resetToken":       tokenHash,
		"resetTokenExpiry": bson.M{"$gt": now},
	})
}

// Update replaces the whole document; nil reset fields are dropped by omitempty
func (r *mongoUserRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		return translateMongo(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"email": email})
	return count > 0, translateMongo(err)
}

func (r *mongoUserRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"role": role})
	return count, translateMongo(err)
}

func (r *mongoUserRepository) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"resetTokenExpiry": bson.M{"$lte": now}},
		bson.M{"$unset": bson.M{"resetToken": "", "resetTokenExpiry": ""}},
	)
	if err != nil {
		return 0, translateMongo(err)
	}
	return res.ModifiedCount, nil
}

// ============================================================
// Leaves
// ============================================================

type mongoLeaveRepository struct {
	coll *mongo.Collection
}

// NewMongoLeaveRepository creates a leave repository on a MongoDB database
func NewMongoLeaveRepository(db *mongo.Database) LeaveRepository {
	return &mongoLeaveRepository{coll: db.Collection(LeavesCollection)}
}

func (r *mongoLeaveRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptionsBuilder) ([]*models.LeaveRequest, error) {
	leaves := []*models.LeaveRequest{}
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, translateMongo(err)
	}
	if err := cursor.All(ctx, &leaves); err != nil {
		return nil, translateMongo(err)
	}
	return leaves, nil
}

func (r *mongoLeaveRepository) Create(ctx context.Context, leave *models.LeaveRequest) error {
	leave.EnsureID()
	now := time.Now()
	leave.CreatedAt = now
	leave.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, leave)
	return translateMongo(err)
}

func (r *mongoLeaveRepository) GetByID(ctx context.Context, id string) (*models.LeaveRequest, error) {
	var leave models.LeaveRequest
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&leave); err != nil {
		return nil, translateMongo(err)
	}
	return &leave, nil
}

func (r *mongoLeaveRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.LeaveRequest, error) {
	return r.find(ctx, bson.M{"student": ownerID}, options.Find().SetSort(newestFirst))
}

func statusFilter(filter LeaveFilter) bson.M {
	q := bson.M{}
	if filter.Status != "" {
		q["status"] = filter.Status
	}
	return q
}

func (r *mongoLeaveRepository) List(ctx context.Context, filter LeaveFilter) ([]*models.LeaveRequest, error) {
	opts := options.Find().SetSort(newestFirst)
	if filter.Limit > 0 {
		opts = opts.SetSkip(int64(filter.Offset)).SetLimit(int64(filter.Limit))
	}
	return r.find(ctx, statusFilter(filter), opts)
}

func (r *mongoLeaveRepository) Count(ctx context.Context, filter LeaveFilter) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, statusFilter(filter))
	return count, translateMongo(err)
}

// UpdateStatus relies on the single-document atomic update; concurrent writers are last-write-wins
func (r *mongoLeaveRepository) UpdateStatus(ctx context.Context, id, status string, adminComment *string) (*models.LeaveRequest, error) {
	set := bson.M{"status": status, "updatedAt": time.Now()}
	if adminComment != nil {
		set["adminComment"] = *adminComment
	}

	var leave models.LeaveRequest
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&leave)
	if err != nil {
		return nil, translateMongo(err)
	}
	return &leave, nil
}
