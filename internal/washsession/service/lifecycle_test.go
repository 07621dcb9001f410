package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	catalogdomain "github.com/washworks/fleetwash/internal/catalog/domain"
	"github.com/washworks/fleetwash/internal/discount"
	sessiondomain "github.com/washworks/fleetwash/internal/washsession/domain"
)

func TestSessionLifecycle(t *testing.T) {
	h := newHarness(t, discount.Schedule{})

	created := h.createSession(t)
	assert.Equal(t, sessiondomain.StatusCreated, created.Status)
	assert.Equal(t, int64(1), created.Version)
	assert.Equal(t, int64(10000), created.TotalCents)
	assert.Equal(t, "EUR", created.Currency)
	require.Len(t, created.Components, 1)

	authorized, err := h.svc.Authorize(h.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, sessiondomain.StatusAuthorized, authorized.Status)
	assert.Equal(t, int64(2), authorized.Version)
	require.NotNil(t, authorized.AuthorizedAt)

	started, err := h.svc.Start(h.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, sessiondomain.StatusInProgress, started.Status)
	require.NotNil(t, started.StartedAt)

	completed, err := h.svc.Complete(h.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, sessiondomain.StatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)
	// Pricing fixed at creation survives the whole lifecycle untouched.
	assert.Equal(t, created.TotalCents, completed.TotalCents)
	assert.Equal(t, created.DiscountPercent, completed.DiscountPercent)

	locked, err := h.svc.Lock(h.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, sessiondomain.StatusLocked, locked.Status)
	assert.Equal(t, int64(5), locked.Version)
	require.NotNil(t, locked.LockedAt)

	trail := h.auditTrail(t, created.ID)
	require.Len(t, trail, 5)
	assert.Equal(t, "session.create", trail[0].Action)
	assert.Equal(t, "", trail[0].PreviousStatus)
	assert.Equal(t, "CREATED", trail[0].NewStatus)
	assert.Equal(t, "AUTHORIZED", trail[1].NewStatus)
	assert.Equal(t, "IN_PROGRESS", trail[2].NewStatus)
	assert.Equal(t, "COMPLETED", trail[3].NewStatus)
	assert.Equal(t, "session.lock", trail[4].Action)
	assert.Equal(t, "COMPLETED", trail[4].PreviousStatus)
	assert.Equal(t, "LOCKED", trail[4].NewStatus)
}

func TestTransitionValidation(t *testing.T) {
	h := newHarness(t, discount.Schedule{})
	created := h.createSession(t)

	_, err := h.svc.Start(h.ctx, created.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, sessiondomain.ErrInvalidTransition)
	assert.EqualError(t, err, "invalid transition: session in state CREATED cannot start")

	_, err = h.svc.Authorize(h.ctx, created.ID)
	require.NoError(t, err)

	_, err = h.svc.Authorize(h.ctx, created.ID)
	require.Error(t, err)
	assert.EqualError(t, err, "invalid transition: session in state AUTHORIZED cannot authorize")

	_, err = h.svc.Lock(h.ctx, created.ID)
	assert.ErrorIs(t, err, sessiondomain.ErrInvalidTransition)

	_, err = h.svc.Start(h.ctx, created.ID)
	require.NoError(t, err)
	_, err = h.svc.Complete(h.ctx, created.ID)
	require.NoError(t, err)
	_, err = h.svc.Lock(h.ctx, created.ID)
	require.NoError(t, err)

	// Terminal state: nothing moves a locked session.
	for name, op := range map[string]func() error{
		"authorize": func() error { _, err := h.svc.Authorize(h.ctx, created.ID); return err },
		"start":     func() error { _, err := h.svc.Start(h.ctx, created.ID); return err },
		"complete":  func() error { _, err := h.svc.Complete(h.ctx, created.ID); return err },
		"reject":    func() error { _, err := h.svc.Reject(h.ctx, created.ID, "too late"); return err },
		"lock":      func() error { _, err := h.svc.Lock(h.ctx, created.ID); return err },
	} {
		err := op()
		assert.ErrorIs(t, err, sessiondomain.ErrInvalidTransition, name)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	h := newHarness(t, discount.Schedule{})
	created := h.createSession(t)

	_, err := h.svc.Reject(h.ctx, created.ID, "   ")
	assert.ErrorIs(t, err, sessiondomain.ErrInvalidReason)

	rejected, err := h.svc.Reject(h.ctx, created.ID, "vehicle not presented")
	require.NoError(t, err)
	assert.Equal(t, sessiondomain.StatusRejected, rejected.Status)
	assert.Equal(t, "vehicle not presented", rejected.RejectionReason)
	require.NotNil(t, rejected.RejectedAt)
}

func TestRejectFromAuthorized(t *testing.T) {
	h := newHarness(t, discount.Schedule{})
	created := h.createSession(t)

	_, err := h.svc.Authorize(h.ctx, created.ID)
	require.NoError(t, err)

	rejected, err := h.svc.Reject(h.ctx, created.ID, "partner credit hold")
	require.NoError(t, err)
	assert.Equal(t, sessiondomain.StatusRejected, rejected.Status)

	trail := h.auditTrail(t, created.ID)
	require.Len(t, trail, 3)
	assert.Equal(t, "AUTHORIZED", trail[2].PreviousStatus)
	assert.Equal(t, "REJECTED", trail[2].NewStatus)
}

func TestCreateValidation(t *testing.T) {
	h := newHarness(t, discount.Schedule{})

	base := sessiondomain.CreateRequest{
		LocationID:       h.locationID,
		ServicePackageID: h.packageID,
		PartnerID:        h.partnerID,
		Track:            "OWN",
		EntryMode:        sessiondomain.EntryModeDriver,
		Components: []sessiondomain.ComponentInput{
			{VehicleType: catalogdomain.VehicleTypeTractor, PlateNumber: "WX-1042"},
		},
	}

	noComponents := base
	noComponents.Components = nil
	_, err := h.svc.Create(h.ctx, noComponents)
	assert.ErrorIs(t, err, sessiondomain.ErrInvalidComponents)

	blankPlate := base
	blankPlate.Components = []sessiondomain.ComponentInput{{VehicleType: catalogdomain.VehicleTypeTractor, PlateNumber: " "}}
	_, err = h.svc.Create(h.ctx, blankPlate)
	assert.ErrorIs(t, err, sessiondomain.ErrInvalidPlateNumber)

	badTrack := base
	badTrack.Track = "LEASED"
	_, err = h.svc.Create(h.ctx, badTrack)
	assert.ErrorIs(t, err, sessiondomain.ErrInvalidTrack)

	badMode := base
	badMode.EntryMode = "KIOSK"
	_, err = h.svc.Create(h.ctx, badMode)
	assert.ErrorIs(t, err, sessiondomain.ErrInvalidEntryMode)

	// VAN has no price configured at this location.
	unpriced := base
	unpriced.Components = []sessiondomain.ComponentInput{{VehicleType: catalogdomain.VehicleTypeVan, PlateNumber: "WX-2001"}}
	_, err = h.svc.Create(h.ctx, unpriced)
	assert.ErrorIs(t, err, catalogdomain.ErrPriceNotAvailable)

	unknownPartner := base
	unknownPartner.PartnerID = h.node.Generate().String()
	_, err = h.svc.Create(h.ctx, unknownPartner)
	require.Error(t, err)
}

func TestGetAndList(t *testing.T) {
	h := newHarness(t, discount.Schedule{})
	first := h.createSession(t)
	second := h.createSession(t)
	_, err := h.svc.Authorize(h.ctx, second.ID)
	require.NoError(t, err)

	got, err := h.svc.Get(h.ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	require.Len(t, got.Components, 1)

	_, err = h.svc.Get(h.ctx, h.node.Generate().String())
	assert.ErrorIs(t, err, sessiondomain.ErrNotFound)

	all, err := h.svc.List(h.ctx, sessiondomain.ListRequest{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	authorized, err := h.svc.List(h.ctx, sessiondomain.ListRequest{Status: "AUTHORIZED"})
	require.NoError(t, err)
	require.Len(t, authorized, 1)
	assert.Equal(t, second.ID, authorized[0].ID)
}

func TestTransitionErrorUnwrap(t *testing.T) {
	err := &sessiondomain.TransitionError{Status: sessiondomain.StatusLocked, Operation: "start"}
	assert.True(t, errors.Is(err, sessiondomain.ErrInvalidTransition))
	assert.Equal(t, "invalid transition: session in state LOCKED cannot start", err.Error())
}
