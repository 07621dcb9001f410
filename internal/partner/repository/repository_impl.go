package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	partnerdomain "github.com/washworks/fleetwash/internal/partner/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() partnerdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, account *partnerdomain.PartnerAccount, tiers []partnerdomain.DiscountTier) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			`INSERT INTO partner_accounts (id, network_id, name, billing_cycle, active, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			account.ID,
			account.NetworkID,
			account.Name,
			account.BillingCycle,
			account.Active,
			account.CreatedAt,
			account.UpdatedAt,
		).Error; err != nil {
			return err
		}

		for i := range tiers {
			tier := &tiers[i]
			if err := tx.Exec(
				`INSERT INTO partner_discount_tiers (id, network_id, partner_id, track, threshold_count, percent, position, created_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				tier.ID,
				tier.NetworkID,
				tier.PartnerID,
				tier.Track,
				tier.ThresholdCount,
				tier.Percent,
				tier.Position,
				tier.CreatedAt,
			).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, networkID, id snowflake.ID) (*partnerdomain.PartnerAccount, error) {
	var account partnerdomain.PartnerAccount
	err := db.WithContext(ctx).Raw(
		`SELECT id, network_id, name, billing_cycle, active, created_at, updated_at
		 FROM partner_accounts WHERE network_id = ? AND id = ?`,
		networkID,
		id,
	).Scan(&account).Error
	if err != nil {
		return nil, err
	}
	if account.ID == 0 {
		return nil, nil
	}
	return &account, nil
}

func (r *repo) FindTiers(ctx context.Context, db *gorm.DB, networkID, partnerID snowflake.ID) ([]partnerdomain.DiscountTier, error) {
	var tiers []partnerdomain.DiscountTier
	err := db.WithContext(ctx).Raw(
		`SELECT id, network_id, partner_id, track, threshold_count, percent, position, created_at
		 FROM partner_discount_tiers
		 WHERE network_id = ? AND partner_id = ?
		 ORDER BY track ASC, position ASC`,
		networkID,
		partnerID,
	).Scan(&tiers).Error
	if err != nil {
		return nil, err
	}
	return tiers, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, networkID snowflake.ID) ([]partnerdomain.PartnerAccount, error) {
	var accounts []partnerdomain.PartnerAccount
	err := db.WithContext(ctx).Raw(
		`SELECT id, network_id, name, billing_cycle, active, created_at, updated_at
		 FROM partner_accounts WHERE network_id = ? ORDER BY created_at ASC`,
		networkID,
	).Scan(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}
