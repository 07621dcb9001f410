package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	billingdomain "github.com/washworks/fleetwash/internal/billingline/domain"
	catalogdomain "github.com/washworks/fleetwash/internal/catalog/domain"
	"github.com/washworks/fleetwash/internal/netcontext"
	partnerdomain "github.com/washworks/fleetwash/internal/partner/domain"
	sessiondomain "github.com/washworks/fleetwash/internal/washsession/domain"
	sessionrepo "github.com/washworks/fleetwash/internal/washsession/repository"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setup(t *testing.T) (billingdomain.Service, *gorm.DB, sessiondomain.Repository, *snowflake.Node, context.Context, snowflake.ID) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Exec(`CREATE TABLE IF NOT EXISTS wash_sessions (
		id BIGINT PRIMARY KEY,
		network_id BIGINT NOT NULL,
		location_id BIGINT NOT NULL,
		service_package_id BIGINT NOT NULL,
		partner_id BIGINT NOT NULL,
		driver_id BIGINT,
		track TEXT NOT NULL,
		entry_mode TEXT NOT NULL,
		status TEXT NOT NULL,
		version BIGINT NOT NULL,
		usage_count INTEGER NOT NULL,
		discount_percent INTEGER NOT NULL,
		total_cents BIGINT NOT NULL,
		currency TEXT NOT NULL,
		rejection_reason TEXT,
		created_at TIMESTAMP NOT NULL,
		authorized_at TIMESTAMP,
		started_at TIMESTAMP,
		completed_at TIMESTAMP,
		locked_at TIMESTAMP,
		rejected_at TIMESTAMP,
		updated_at TIMESTAMP NOT NULL
	)`).Error)
	require.NoError(t, db.Exec(`CREATE TABLE IF NOT EXISTS wash_session_items (
		id BIGINT PRIMARY KEY,
		network_id BIGINT NOT NULL,
		session_id BIGINT NOT NULL,
		position INTEGER NOT NULL,
		vehicle_type TEXT NOT NULL,
		plate_number TEXT NOT NULL,
		unit_price_cents BIGINT NOT NULL,
		line_total_cents BIGINT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`).Error)

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	repo := sessionrepo.Provide()
	svc := New(Params{DB: db, Log: zap.NewNop(), Sessions: repo})

	networkID := node.Generate()
	ctx := netcontext.WithNetworkID(context.Background(), int64(networkID))
	return svc, db, repo, node, ctx, networkID
}

func insertSession(t *testing.T, db *gorm.DB, repo sessiondomain.Repository, node *snowflake.Node, networkID snowflake.ID, status sessiondomain.Status) *sessiondomain.WashSession {
	t.Helper()
	now := time.Date(2024, time.March, 20, 9, 0, 0, 0, time.UTC)
	session := &sessiondomain.WashSession{
		ID:               node.Generate(),
		NetworkID:        networkID,
		LocationID:       node.Generate(),
		ServicePackageID: node.Generate(),
		PartnerID:        node.Generate(),
		Track:            partnerdomain.TrackOwn,
		EntryMode:        sessiondomain.EntryModeDriver,
		Status:           status,
		Version:          5,
		UsageCount:       50,
		DiscountPercent:  10,
		TotalCents:       14400,
		Currency:         "EUR",
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if status == sessiondomain.StatusLocked {
		lockedAt := now.Add(2 * time.Hour)
		session.LockedAt = &lockedAt
	}
	items := []sessiondomain.WashSessionItem{
		{
			ID: node.Generate(), NetworkID: networkID, SessionID: session.ID,
			Position: 0, VehicleType: catalogdomain.VehicleTypeTractor, PlateNumber: "WX-1042",
			UnitPriceCents: 10000, LineTotalCents: 9000, CreatedAt: now,
		},
		{
			ID: node.Generate(), NetworkID: networkID, SessionID: session.ID,
			Position: 1, VehicleType: catalogdomain.VehicleTypeTrailer, PlateNumber: "WX-7730",
			UnitPriceCents: 6000, LineTotalCents: 5400, CreatedAt: now,
		},
	}
	require.NoError(t, repo.Insert(context.Background(), db, session, items))
	return session
}

func TestComposeLockedSession(t *testing.T) {
	svc, db, repo, node, ctx, networkID := setup(t)
	session := insertSession(t, db, repo, node, networkID, sessiondomain.StatusLocked)

	resp, err := svc.Compose(ctx, session.ID.String())
	require.NoError(t, err)
	assert.Equal(t, session.ID.String(), resp.SessionID)
	assert.Equal(t, "EUR", resp.Currency)
	require.NotNil(t, resp.LockedAt)
	require.Len(t, resp.Lines, 2)

	assert.Equal(t, 0, resp.Lines[0].Position)
	assert.Equal(t, catalogdomain.VehicleTypeTractor, resp.Lines[0].VehicleType)
	assert.Equal(t, int64(10000), resp.Lines[0].UnitPriceCents)
	assert.Equal(t, int64(9000), resp.Lines[0].LineTotalCents)
	assert.Equal(t, 10, resp.Lines[0].DiscountPercent)
	assert.Equal(t, 1, resp.Lines[1].Position)

	// Line totals were fixed at creation; their sum matches the stored
	// session total with no recomputation drift.
	var sum int64
	for _, line := range resp.Lines {
		sum += line.LineTotalCents
	}
	assert.Equal(t, resp.TotalCents, sum)
}

func TestComposeRequiresLockedState(t *testing.T) {
	svc, db, repo, node, ctx, networkID := setup(t)

	for _, status := range []sessiondomain.Status{
		sessiondomain.StatusCreated,
		sessiondomain.StatusAuthorized,
		sessiondomain.StatusInProgress,
		sessiondomain.StatusCompleted,
		sessiondomain.StatusRejected,
	} {
		session := insertSession(t, db, repo, node, networkID, status)
		_, err := svc.Compose(ctx, session.ID.String())
		assert.ErrorIs(t, err, billingdomain.ErrSessionNotLocked, string(status))
	}
}

func TestComposeUnknownSession(t *testing.T) {
	svc, _, _, node, ctx, _ := setup(t)
	_, err := svc.Compose(ctx, node.Generate().String())
	assert.ErrorIs(t, err, sessiondomain.ErrNotFound)
}
