package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, account *PartnerAccount, tiers []DiscountTier) error
	FindByID(ctx context.Context, db *gorm.DB, networkID, id snowflake.ID) (*PartnerAccount, error)
	FindTiers(ctx context.Context, db *gorm.DB, networkID, partnerID snowflake.ID) ([]DiscountTier, error)
	List(ctx context.Context, db *gorm.DB, networkID snowflake.ID) ([]PartnerAccount, error)
}
