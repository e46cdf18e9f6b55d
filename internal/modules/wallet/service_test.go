package wallet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"mentorhub/internal/database"
)

func setupDB(t *testing.T) *gorm.DB {
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, Migrate(db))
	return db
}

func TestService_GetOrCreateWallet(t *testing.T) {
	svc := NewService(setupDB(t))

	w1, err := svc.GetOrCreateWallet(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), w1.Balance)

	w2, err := svc.GetOrCreateWallet(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, w1.ID, w2.ID)
}

func TestService_Credit(t *testing.T) {
	svc := NewService(setupDB(t))

	err := svc.Credit(context.Background(), 1, 10800, "release:booking:7")
	require.NoError(t, err)

	w, err := svc.GetOrCreateWallet(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10800), w.Balance)

	txns, err := svc.ListTransactions(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, TransactionTypeRelease, txns[0].Type)
	assert.Equal(t, "release:booking:7", txns[0].Reference)
}

func TestService_Credit_SameReferenceIsNoOp(t *testing.T) {
	svc := NewService(setupDB(t))

	require.NoError(t, svc.Credit(context.Background(), 1, 10800, "release:booking:7"))
	require.NoError(t, svc.Credit(context.Background(), 1, 10800, "release:booking:7"))

	w, err := svc.GetOrCreateWallet(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10800), w.Balance)

	txns, err := svc.ListTransactions(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, txns, 1)
}

func TestService_Credit_DistinctReferencesAccumulate(t *testing.T) {
	svc := NewService(setupDB(t))

	require.NoError(t, svc.Credit(context.Background(), 1, 4500, "release:booking:1"))
	require.NoError(t, svc.Credit(context.Background(), 1, 9000, "release:booking:2"))

	w, err := svc.GetOrCreateWallet(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(13500), w.Balance)
}

func TestService_Credit_Validation(t *testing.T) {
	svc := NewService(setupDB(t))

	assert.ErrorIs(t, svc.Credit(context.Background(), 1, 0, "release:booking:1"), ErrInvalidAmount)
	assert.ErrorIs(t, svc.Credit(context.Background(), 1, -100, "release:booking:1"), ErrInvalidAmount)
	assert.ErrorIs(t, svc.Credit(context.Background(), 1, 100, ""), ErrMissingReference)
}
