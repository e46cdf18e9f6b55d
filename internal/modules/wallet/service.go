package wallet

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrMissingReference = errors.New("reference is required")
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) GetOrCreateWallet(ctx context.Context, userID int64) (*PayoutWallet, error) {
	wallet, err := s.getWalletByUserID(ctx, userID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	wallet = &PayoutWallet{UserID: userID, Balance: 0}
	if err := s.db.WithContext(ctx).Create(wallet).Error; err != nil {
		if isUniqueConstraintError(err) {
			return s.getWalletByUserID(ctx, userID)
		}
		return nil, err
	}
	return wallet, nil
}

// Credit adds amountPence to the user's wallet. The reference
// deduplicates: crediting the same reference twice changes nothing.
func (s *Service) Credit(ctx context.Context, userID int64, amountPence int64, reference string) error {
	if amountPence <= 0 {
		return ErrInvalidAmount
	}
	if reference == "" {
		return ErrMissingReference
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var wallet PayoutWallet
		if err := getOrCreateWalletForUpdate(tx, userID, &wallet); err != nil {
			return err
		}

		txn := PayoutTransaction{
			WalletID:  wallet.ID,
			Amount:    amountPence,
			Type:      TransactionTypeRelease,
			Reference: reference,
		}
		if err := tx.Create(&txn).Error; err != nil {
			if isUniqueConstraintError(err) {
				// Already credited for this reference.
				return nil
			}
			return err
		}

		wallet.Balance += amountPence
		return tx.Model(&PayoutWallet{}).Where("id = ?", wallet.ID).Update("balance", wallet.Balance).Error
	})
}

func (s *Service) ListTransactions(ctx context.Context, userID int64) ([]PayoutTransaction, error) {
	wallet, err := s.GetOrCreateWallet(ctx, userID)
	if err != nil {
		return nil, err
	}

	var txns []PayoutTransaction
	if err := s.db.WithContext(ctx).Where("wallet_id = ?", wallet.ID).Order("created_at desc").Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

func (s *Service) getWalletByUserID(ctx context.Context, userID int64) (*PayoutWallet, error) {
	var wallet PayoutWallet
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

func getOrCreateWalletForUpdate(tx *gorm.DB, userID int64, wallet *PayoutWallet) error {
	if err := lockWallet(tx).Where("user_id = ?", userID).First(wallet).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		*wallet = PayoutWallet{UserID: userID, Balance: 0}
		if err := tx.Create(wallet).Error; err != nil {
			if isUniqueConstraintError(err) {
				return lockWallet(tx).Where("user_id = ?", userID).First(wallet).Error
			}
			return err
		}
	}
	return nil
}

func lockWallet(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique failed")
}
