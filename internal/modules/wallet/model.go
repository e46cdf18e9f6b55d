package wallet

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mentorhub/internal/domain"
)

const (
	TransactionTypeRelease    = "RELEASE"
	TransactionTypeAdjustment = "ADJUSTMENT"
)

// PayoutWallet accumulates a mentor's released earnings in pence until
// they are paid out externally.
type PayoutWallet struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID  int64     `json:"user_id" gorm:"not null;uniqueIndex"`
	Balance int64     `json:"balance" gorm:"not null;default:0"`

	User *domain.User `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (PayoutWallet) TableName() string {
	return "payout_wallets"
}

func (w *PayoutWallet) BeforeCreate(_ *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// PayoutTransaction records each balance change. Reference is unique,
// so re-running a release with the same reference is a no-op.
type PayoutTransaction struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	WalletID  uuid.UUID `json:"wallet_id" gorm:"type:uuid;not null;index"`
	Amount    int64     `json:"amount" gorm:"not null"`
	Type      string    `json:"type" gorm:"type:varchar(16);not null;index;check:type IN ('RELEASE','ADJUSTMENT')"`
	Reference string    `json:"reference" gorm:"type:varchar(64);not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	Wallet *PayoutWallet `json:"wallet,omitempty" gorm:"foreignKey:WalletID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (PayoutTransaction) TableName() string {
	return "payout_transactions"
}

func (t *PayoutTransaction) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Migrate creates the wallet tables; called from the entrypoints next
// to database.Migrate.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&PayoutWallet{}, &PayoutTransaction{})
}
