package db

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/LightsoftTeam/baldoria-backend/internal/models"
)

// DefaultUsersCollection is used when no collection name is configured.
const DefaultUsersCollection = "users"

// ErrNotFound is returned (wrapped) when a document does not exist.
var ErrNotFound = errors.New("document not found")

// FirestoreUserRepository implements UserRepository using Firestore.
type FirestoreUserRepository struct {
	client     *firestore.Client
	collection string
	logger     *zap.Logger
}

// NewFirestoreUserRepository creates a new instance of FirestoreUserRepository.
func NewFirestoreUserRepository(client *firestore.Client, collection string, logger *zap.Logger) *FirestoreUserRepository {
	if client == nil {
		logger.Fatal("Firestore client is not initialized for UserRepository")
	}
	if collection == "" {
		collection = DefaultUsersCollection
	}
	return &FirestoreUserRepository{client: client, collection: collection, logger: logger}
}

func (r *FirestoreUserRepository) users() *firestore.CollectionRef {
	return r.client.Collection(r.collection)
}

// Create adds a new user document. A document ID is generated when user.ID is empty.
func (r *FirestoreUserRepository) Create(ctx context.Context, user *models.User) error {
	var ref *firestore.DocumentRef
	if user.ID == "" {
		ref = r.users().NewDoc()
		user.ID = ref.ID
	} else {
		ref = r.users().Doc(user.ID)
	}
	user.RefreshDerived()

	if _, err := ref.Create(ctx, user); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("user with ID '%s' already exists: %w", user.ID, err)
		}
		return fmt.Errorf("failed to create user with ID '%s': %w", user.ID, err)
	}
	return nil
}

// GetByID retrieves a user document by its ID.
func (r *FirestoreUserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, fmt.Errorf("user with empty ID not found: %w", ErrNotFound)
	}
	snap, err := r.users().Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("user with ID '%s' not found: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user with ID '%s': %w", userID, err)
	}
	return decodeUser(snap)
}

// GetClientByDocument looks up a client by document type and number.
func (r *FirestoreUserRepository) GetClientByDocument(ctx context.Context, documentType models.DocumentType, documentNumber string) (*models.User, error) {
	q := r.users().
		Where("role", "==", string(models.RoleClient)).
		Where("documentType", "==", string(documentType)).
		Where("documentNumber", "==", documentNumber)
	return r.first(ctx, q)
}

// GetAdminByEmail looks up an admin by email. Stored emails are normalized on
// write, so the lookup ignores case.
func (r *FirestoreUserRepository) GetAdminByEmail(ctx context.Context, email string) (*models.User, error) {
	q := r.users().
		Where("role", "==", string(models.RoleAdmin)).
		Where("email", "==", models.NormalizeEmail(email))
	return r.first(ctx, q)
}

// GetByReservationID finds the user embedding the reservation through the
// reservationIds index.
func (r *FirestoreUserRepository) GetByReservationID(ctx context.Context, reservationID string) (*models.User, error) {
	if reservationID == "" {
		return nil, nil
	}
	return r.first(ctx, r.users().Where("reservationIds", "array-contains", reservationID))
}

// FindByReservationKey queries the reservationKeys index.
func (r *FirestoreUserRepository) FindByReservationKey(ctx context.Context, enterprise models.Enterprise, day time.Time) ([]*models.User, error) {
	key := models.ReservationKey(enterprise, day)
	return r.all(ctx, r.users().Where("reservationKeys", "array-contains", key))
}

// ListClients returns every client document.
func (r *FirestoreUserRepository) ListClients(ctx context.Context) ([]*models.User, error) {
	return r.all(ctx, r.users().Where("role", "==", string(models.RoleClient)))
}

// List returns one page of clients. Without a search term ordering, offset and limit
// run in Firestore and the total comes from an aggregation count. Firestore has no
// substring matching, so searches load every client and shape the page in memory.
func (r *FirestoreUserRepository) List(ctx context.Context, params models.ListUsersParams) (*models.UserPage, error) {
	if params.Search != "" {
		clients, err := r.ListClients(ctx)
		if err != nil {
			return nil, err
		}
		matched := FilterUsers(clients, params.Search)
		SortUsers(matched, params.SortBy, params.Sort)
		return &models.UserPage{Users: Paginate(matched, params), Total: len(matched)}, nil
	}

	base := r.users().Where("role", "==", string(models.RoleClient))

	total, err := r.count(ctx, base)
	if err != nil {
		return nil, err
	}
	// Firestore offsets are int32; anything past the total is an empty page anyway.
	if params.Offset() >= total || params.Offset() > math.MaxInt32 || params.Limit <= 0 {
		return &models.UserPage{Users: []*models.User{}, Total: total}, nil
	}

	dir := firestore.Desc
	if params.Sort == models.SortAsc {
		dir = firestore.Asc
	}
	page, err := r.all(ctx, base.OrderBy(string(params.SortBy), dir).Offset(params.Offset()).Limit(params.Limit))
	if err != nil {
		return nil, err
	}
	return &models.UserPage{Users: page, Total: total}, nil
}

// Update performs the read-modify-write inside a Firestore transaction. Firestore
// aborts the commit if the document changed after it was read and RunTransaction
// retries the whole function.
func (r *FirestoreUserRepository) Update(ctx context.Context, userID string, fn UpdateFunc) (*models.User, error) {
	if userID == "" {
		return nil, fmt.Errorf("user with empty ID not found: %w", ErrNotFound)
	}
	ref := r.users().Doc(userID)

	var written *models.User
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("user with ID '%s' not found: %w", userID, ErrNotFound)
			}
			return fmt.Errorf("failed to get user with ID '%s': %w", userID, err)
		}
		user, err := decodeUser(snap)
		if err != nil {
			return err
		}
		if err := fn(user); err != nil {
			return err
		}
		user.RefreshDerived()
		if err := tx.Set(ref, user); err != nil {
			return fmt.Errorf("failed to write user with ID '%s': %w", userID, err)
		}
		written = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return written, nil
}

func (r *FirestoreUserRepository) first(ctx context.Context, q firestore.Query) (*models.User, error) {
	users, err := r.all(ctx, q.Limit(1))
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return users[0], nil
}

func (r *FirestoreUserRepository) all(ctx context.Context, q firestore.Query) ([]*models.User, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	users := make([]*models.User, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate users: %w", err)
		}
		user, err := decodeUser(doc)
		if err != nil {
			r.logger.Warn("Skipping undecodable user document",
				zap.String("user_id", doc.Ref.ID), zap.Error(err))
			continue
		}
		users = append(users, user)
	}
	return users, nil
}

func (r *FirestoreUserRepository) count(ctx context.Context, q firestore.Query) (int, error) {
	res, err := q.NewAggregationQuery().WithCount("total").Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	v, ok := res["total"]
	if !ok {
		return 0, errors.New("aggregation count 'total' missing from result")
	}
	pv, ok := v.(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("unexpected aggregation count type %T", v)
	}
	return int(pv.GetIntegerValue()), nil
}

func decodeUser(snap *firestore.DocumentSnapshot) (*models.User, error) {
	var user models.User
	if err := snap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user data for ID '%s': %w", snap.Ref.ID, err)
	}
	user.ID = snap.Ref.ID
	if user.Reservations == nil {
		user.Reservations = []models.Reservation{}
	}
	return &user, nil
}
