package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ListFilter narrows session listings; zero values mean no filter.
type ListFilter struct {
	NetworkID snowflake.ID
	Status    Status
	PartnerID snowflake.ID
	Limit     int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, session *WashSession, items []WashSessionItem) error
	FindByID(ctx context.Context, db *gorm.DB, networkID, id snowflake.ID) (*WashSession, error)
	FindItems(ctx context.Context, db *gorm.DB, networkID, sessionID snowflake.ID) ([]WashSessionItem, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]WashSession, error)
	// FindLockedForPeriod returns the partner's LOCKED sessions whose
	// lock time falls inside [start, end), oldest first.
	FindLockedForPeriod(ctx context.Context, db *gorm.DB, networkID, partnerID snowflake.ID, start, end time.Time) ([]WashSession, error)
	// UpdateStatus persists the mutated session conditioned on fromVersion
	// still being the stored version. It returns the number of rows the
	// update touched; zero means a concurrent transition won.
	UpdateStatus(ctx context.Context, db *gorm.DB, session *WashSession, fromVersion int64) (int64, error)
}
