package mongodb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/edulane/gurukul/core/account"
)

type accountRepository struct {
	coll *mongo.Collection
}

var _ account.Repository = (*accountRepository)(nil)

func NewAccountRepository(db *mongo.Database) account.Repository {
	return &accountRepository{coll: db.Collection(accountCollection)}
}

func (repo *accountRepository) CheckEmailUniqueness(ctx context.Context, email string) error {
	n, err := repo.coll.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return errors.Wrap(err, "counting accounts by email")
	}
	if n > 0 {
		return account.ErrEmailExists
	}
	return nil
}

func (repo *accountRepository) CreateAccount(ctx context.Context, acct account.Account) (account.Account, error) {
	acct.ID = uuid.NewString()
	if _, err := repo.coll.InsertOne(ctx, acct); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return account.Account{}, account.ErrEmailExists
		}
		return account.Account{}, errors.Wrap(err, "inserting account")
	}
	return acct, nil
}

func (repo *accountRepository) getAccount(ctx context.Context, filter bson.M) (account.Account, error) {
	var acct account.Account
	if err := repo.coll.FindOne(ctx, filter).Decode(&acct); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return account.Account{}, account.ErrNotFound
		}
		return account.Account{}, errors.Wrap(err, "finding account")
	}
	return acct, nil
}

func (repo *accountRepository) GetAccountByID(ctx context.Context, id string) (account.Account, error) {
	return repo.getAccount(ctx, bson.M{"_id": id})
}

func (repo *accountRepository) GetAccountByEmail(ctx context.Context, email string) (account.Account, error) {
	return repo.getAccount(ctx, bson.M{"email": email})
}

func (repo *accountRepository) QueryAllAccounts(ctx context.Context) ([]account.Account, error) {
	cursor, err := repo.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(err, "querying accounts")
	}
	accounts := make([]account.Account, 0)
	if err = cursor.All(ctx, &accounts); err != nil {
		return nil, errors.Wrap(err, "decoding accounts")
	}
	return accounts, nil
}

func (repo *accountRepository) SetAccountProfile(ctx context.Context, id, profileID string) (account.Account, error) {
	update := bson.M{"$set": bson.M{
		"profileId": profileID,
		"updatedAt": time.Now().UTC(),
	}}
	res, err := repo.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return account.Account{}, errors.Wrap(err, "linking profile")
	}
	if res.MatchedCount == 0 {
		return account.Account{}, account.ErrNotFound
	}
	return repo.GetAccountByID(ctx, id)
}

func (repo *accountRepository) UpdateOrCreateAccount(ctx context.Context, acct account.Account) (account.Account, error) {
	existing, err := repo.GetAccountByEmail(ctx, acct.Email)
	if err != nil {
		if err != account.ErrNotFound {
			return account.Account{}, err
		}
		return repo.CreateAccount(ctx, acct)
	}

	acct.ID = existing.ID
	acct.CreatedAt = existing.CreatedAt
	acct.UpdatedAt = time.Now().UTC()
	if _, err = repo.coll.ReplaceOne(ctx, bson.M{"_id": acct.ID}, acct); err != nil {
		return account.Account{}, errors.Wrap(err, "replacing account")
	}
	return acct, nil
}

func (repo *accountRepository) DeleteAccountsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := repo.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return errors.Wrap(err, "deleting accounts")
}
