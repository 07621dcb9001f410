package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	auditdomain "github.com/washworks/fleetwash/internal/audit/domain"
	auditrepo "github.com/washworks/fleetwash/internal/audit/repository"
	auditsvc "github.com/washworks/fleetwash/internal/audit/service"
	catalogdomain "github.com/washworks/fleetwash/internal/catalog/domain"
	catalogrepo "github.com/washworks/fleetwash/internal/catalog/repository"
	catalogsvc "github.com/washworks/fleetwash/internal/catalog/service"
	"github.com/washworks/fleetwash/internal/clock"
	"github.com/washworks/fleetwash/internal/discount"
	"github.com/washworks/fleetwash/internal/netcontext"
	partnerdomain "github.com/washworks/fleetwash/internal/partner/domain"
	partnerrepo "github.com/washworks/fleetwash/internal/partner/repository"
	partnersvc "github.com/washworks/fleetwash/internal/partner/service"
	usagedomain "github.com/washworks/fleetwash/internal/usage/domain"
	usagerepo "github.com/washworks/fleetwash/internal/usage/repository"
	usagesvc "github.com/washworks/fleetwash/internal/usage/service"
	sessiondomain "github.com/washworks/fleetwash/internal/washsession/domain"
	sessionrepo "github.com/washworks/fleetwash/internal/washsession/repository"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// harness wires the session service against an in-memory database with
// real partner, catalog, usage, and audit collaborators.
type harness struct {
	db       *gorm.DB
	clk      *clock.FakeClock
	node     *snowflake.Node
	repo     sessiondomain.Repository
	svc      sessiondomain.Service
	partner  partnerdomain.Service
	catalog  catalogdomain.Service
	usageSvc usagedomain.Service
	auditSvc auditdomain.Service

	ctx       context.Context
	networkID snowflake.ID

	partnerID  string
	locationID string
	packageID  string
}

var testStart = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

func newHarness(t *testing.T, schedule discount.Schedule) *harness {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	createSchema(t, db)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	logger := zap.NewNop()
	clk := clock.NewFakeClock(testStart)

	pRepo := partnerrepo.Provide()
	partner := partnersvc.New(partnersvc.Params{DB: db, Log: logger, GenID: node, Repo: pRepo})
	catalog := catalogsvc.New(catalogsvc.Params{DB: db, Log: logger, GenID: node, Repo: catalogrepo.Provide()})
	usage := usagesvc.New(usagesvc.Params{DB: db, Log: logger, Repo: usagerepo.Provide(), PartnerRepo: pRepo})
	audit := auditsvc.New(auditsvc.Params{DB: db, Log: logger, GenID: node, Repo: auditrepo.Provide()})
	repo := sessionrepo.Provide()

	svc := New(Params{
		DB:      db,
		Log:     logger,
		GenID:   node,
		Clock:   clk,
		Repo:    repo,
		Partner: partner,
		Usage:   usage,
		Catalog: catalog,
		Audit:   audit,
	})

	networkID := node.Generate()
	ctx := netcontext.WithNetworkID(context.Background(), int64(networkID))

	h := &harness{
		db:        db,
		clk:       clk,
		node:      node,
		repo:      repo,
		svc:       svc,
		partner:   partner,
		catalog:   catalog,
		usageSvc:  usage,
		auditSvc:  audit,
		ctx:       ctx,
		networkID: networkID,
	}

	account, err := partner.Create(ctx, partnerdomain.CreateRequest{
		Name:         "Hansen Logistik",
		BillingCycle: partnerdomain.BillingCycleMonthly,
		OwnSchedule:  schedule,
		SubSchedule:  discount.Schedule{},
	})
	require.NoError(t, err)
	h.partnerID = account.ID

	h.locationID = node.Generate().String()
	h.packageID = node.Generate().String()
	_, err = catalog.Upsert(ctx, catalogdomain.UpsertRequest{
		LocationID:       h.locationID,
		ServicePackageID: h.packageID,
		VehicleType:      catalogdomain.VehicleTypeTractor,
		UnitPriceCents:   10000,
		Currency:         "EUR",
	})
	require.NoError(t, err)
	_, err = catalog.Upsert(ctx, catalogdomain.UpsertRequest{
		LocationID:       h.locationID,
		ServicePackageID: h.packageID,
		VehicleType:      catalogdomain.VehicleTypeTrailer,
		UnitPriceCents:   6000,
		Currency:         "EUR",
	})
	require.NoError(t, err)

	return h
}

func createSchema(t *testing.T, db *gorm.DB) {
	t.Helper()
	statements := []string{
		`CREATE TABLE IF NOT EXISTS partner_accounts (
			id BIGINT PRIMARY KEY,
			network_id BIGINT NOT NULL,
			name TEXT NOT NULL,
			billing_cycle TEXT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS partner_discount_tiers (
			id BIGINT PRIMARY KEY,
			network_id BIGINT NOT NULL,
			partner_id BIGINT NOT NULL,
			track TEXT NOT NULL,
			threshold_count INTEGER NOT NULL,
			percent INTEGER NOT NULL,
			position INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS location_prices (
			id BIGINT PRIMARY KEY,
			network_id BIGINT NOT NULL,
			location_id BIGINT NOT NULL,
			service_package_id BIGINT NOT NULL,
			vehicle_type TEXT NOT NULL,
			unit_price_cents BIGINT NOT NULL,
			currency TEXT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS wash_sessions (
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
		)`,
		`CREATE TABLE IF NOT EXISTS wash_session_items (
			id BIGINT PRIMARY KEY,
			network_id BIGINT NOT NULL,
			session_id BIGINT NOT NULL,
			position INTEGER NOT NULL,
			vehicle_type TEXT NOT NULL,
			plate_number TEXT NOT NULL,
			unit_price_cents BIGINT NOT NULL,
			line_total_cents BIGINT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS audit_entries (
			id BIGINT PRIMARY KEY,
			network_id BIGINT NOT NULL,
			session_id BIGINT NOT NULL,
			action TEXT NOT NULL,
			previous_status TEXT NOT NULL DEFAULT '',
			new_status TEXT NOT NULL DEFAULT '',
			actor_type TEXT NOT NULL,
			actor_id TEXT,
			metadata TEXT,
			ip_address TEXT,
			user_agent TEXT,
			created_at TIMESTAMP NOT NULL
		)`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
}

func (h *harness) createSession(t *testing.T, components ...sessiondomain.ComponentInput) *sessiondomain.Response {
	t.Helper()
	if len(components) == 0 {
		components = []sessiondomain.ComponentInput{
			{VehicleType: catalogdomain.VehicleTypeTractor, PlateNumber: "WX-1042"},
		}
	}
	resp, err := h.svc.Create(h.ctx, sessiondomain.CreateRequest{
		LocationID:       h.locationID,
		ServicePackageID: h.packageID,
		PartnerID:        h.partnerID,
		Track:            partnerdomain.TrackOwn,
		EntryMode:        sessiondomain.EntryModeDriver,
		Components:       components,
	})
	require.NoError(t, err)
	return resp
}

// seedPriorSessions inserts already-counted sessions directly so pricing
// tests do not have to walk each one through the lifecycle.
func (h *harness) seedPriorSessions(t *testing.T, n int, status sessiondomain.Status) {
	t.Helper()
	partnerID, err := snowflake.ParseString(h.partnerID)
	require.NoError(t, err)
	locationID, err := snowflake.ParseString(h.locationID)
	require.NoError(t, err)
	packageID, err := snowflake.ParseString(h.packageID)
	require.NoError(t, err)

	createdAt := testStart.AddDate(0, 0, -3)
	for i := 0; i < n; i++ {
		session := &sessiondomain.WashSession{
			ID:               h.node.Generate(),
			NetworkID:        h.networkID,
			LocationID:       locationID,
			ServicePackageID: packageID,
			PartnerID:        partnerID,
			Track:            partnerdomain.TrackOwn,
			EntryMode:        sessiondomain.EntryModeOperator,
			Status:           status,
			Version:          1,
			UsageCount:       i + 1,
			DiscountPercent:  0,
			TotalCents:       10000,
			Currency:         "EUR",
			CreatedAt:        createdAt,
			UpdatedAt:        createdAt,
		}
		require.NoError(t, h.repo.Insert(h.ctx, h.db, session, nil))
	}
}

type auditRow struct {
	Action         string
	PreviousStatus string
	NewStatus      string
	ActorType      string
}

func mustID(t *testing.T, value string) snowflake.ID {
	t.Helper()
	id, err := snowflake.ParseString(value)
	require.NoError(t, err)
	return id
}

func (h *harness) auditTrail(t *testing.T, sessionID string) []auditRow {
	t.Helper()
	id, err := snowflake.ParseString(sessionID)
	require.NoError(t, err)
	var rows []auditRow
	err = h.db.Raw(
		`SELECT action, previous_status, new_status, actor_type
		 FROM audit_entries WHERE session_id = ? ORDER BY id ASC`,
		id,
	).Scan(&rows).Error
	require.NoError(t, err)
	return rows
}
