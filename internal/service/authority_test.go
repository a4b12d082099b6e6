package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/nickle23/DistriMundoEscolar/internal/entity"
	"github.com/nickle23/DistriMundoEscolar/internal/service"
	"github.com/nickle23/DistriMundoEscolar/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	vendors   *fakeVendorRepo
	sessions  *fakeSessionRepo
	events    *fakeEventRepo
	tokens    utils.SessionTokenManager
	authority *service.SessionAuthority
	directory *service.DirectoryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	vendors := newFakeVendorRepo()
	sessions := newFakeSessionRepo()
	events := newFakeEventRepo()
	tokens := utils.SessionTokenManager{
		Secret: []byte("test-secret"),
		Issuer: "distrimundo-test",
		TTL:    time.Hour,
	}
	logger := logrus.New()
	clock := fixedClock{at: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)}

	authority := service.NewSessionAuthority(vendors, sessions, events, tokens, clock, logger)
	uow := &fakeUnitOfWork{vendors: vendors, sessions: sessions}
	directory := service.NewDirectoryService(uow, vendors, events, clock, logger, "")

	return &fixture{
		vendors:   vendors,
		sessions:  sessions,
		events:    events,
		tokens:    tokens,
		authority: authority,
		directory: directory,
	}
}

func (f *fixture) addVendor(vendor entity.Vendor) {
	f.vendors.set(vendor)
}

// login runs a successful login and hands back the parsed claims the client
// would present on its next request.
func (f *fixture) login(t *testing.T, code, device string) (*utils.SessionClaims, uuid.UUID) {
	t.Helper()

	result, err := f.authority.Login(context.Background(), service.LoginInput{Code: code, Device: device})
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)

	claims, err := f.tokens.ParseSessionToken(result.Token)
	require.NoError(t, err)
	sessionID, err := uuid.Parse(claims.SessionID)
	require.NoError(t, err)
	return claims, sessionID
}

func (f *fixture) validate(claims *utils.SessionClaims) (*entity.Vendor, error) {
	sessionID, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return nil, err
	}
	return f.authority.Validate(context.Background(), claims.VendorCode, sessionID, claims.Fingerprint)
}

func TestLoginThenValidateSucceeds(t *testing.T) {
	f := newFixture(t)
	f.addVendor(entity.Vendor{Code: "V001", Name: "Vendor One", Active: true})

	claims, _ := f.login(t, "v001", "phoneA")

	vendor, err := f.validate(claims)
	require.NoError(t, err)
	assert.Equal(t, "V001", vendor.Code)
	assert.Equal(t, []entity.AccessOutcome{entity.LoginSuccess}, f.events.outcomes())
}

func TestLoginNormalizesCode(t *testing.T) {
	f := newFixture(t)
	f.addVendor(entity.Vendor{Code: "V001", Name: "Vendor One", Active: true})

	claims, _ := f.login(t, "  v001 ", "phoneA")
	assert.Equal(t, "V001", claims.VendorCode)
}

func TestLoginBumpsAccessCounters(t *testing.T) {
	f := newFixture(t)
	f.addVendor(entity.Vendor{Code: "V001", Name: "Vendor One", Active: true})

	f.login(t, "V001", "phoneA")
	f.login(t, "V001", "phoneA")

	vendor, err := f.vendors.FindByCode(context.Background(), "V001")
	require.NoError(t, err)
	assert.EqualValues(t, 2, vendor.AccessCount)
	require.NotNil(t, vendor.LastAccessAt)
}

func TestLoginUnknownCode(t *testing.T) {
	f := newFixture(t)

	_, err := f.authority.Login(context.Background(), service.LoginInput{Code: "NOPE", Device: "phoneA"})
	require.ErrorIs(t, err, service.ErrInvalidCredentials)

	event := f.events.last()
	require.NotNil(t, event)
	assert.Equal(t, entity.UnknownVendorCode, event.VendorCode)
	assert.Equal(t, entity.InvalidCredentials, event.Outcome)
}

func TestLoginDisabledAccount(t *testing.T) {
	f := newFixture(t)
	f.addVendor(entity.Vendor{Code: "V001", Name: "Vendor One", Active: false})

	_, err := f.authority.Login(context.Background(), service.LoginInput{Code: "V001", Device: "phoneA"})
	require.ErrorIs(t, err, service.ErrAccountDisabled)
	assert.Equal(t, 0, f.sessions.liveCount("V001"))
}

func TestLoginDeviceMismatchCreatesNoSession(t *testing.T) {
	f := newFixture(t)
	f.addVendor(entity.Vendor{Code: "V001", Name: "Vendor One", DeviceBinding: "phoneB", Active: true})

	_, err := f.authority.Login(context.Background(), service.LoginInput{Code: "V001", Device: "phoneA"})
	require.ErrorIs(t, err, service.ErrDeviceMismatch)
	assert.Equal(t, 0, f.sessions.liveCount("V001"))
	assert.Equal(t, []entity.AccessOutcome{entity.DeviceMismatch}, f.events.outcomes())
}

func TestLoginEmptyBindingAdmitsAnyDevice(t *testing.T) {
	f := newFixture(t)
	f.addVendor(entity.Vendor{Code: "V001", Name: "Vendor One", Active: true})

	f.login(t, "V001", "phoneA")
	f.login(t, "V001", "tablet7")
	assert.Equal(t, 2, f.sessions.liveCount("V001"))
}

func TestLoginMissingInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.authority.Login(context.Background(), service.LoginInput{Code: "", Device: "phoneA"})
	require.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = f.authority.Login(context.Background(), service.LoginInput{Code: "V001", Device: "   "})
	require.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestLoginStoreDownFailsClosed(t *testing.T) {
	f := newFixture(t)
	f.vendors.failAll = true

	_, err := f.authority.Login(context.Background(), service.LoginInput{Code: "V001", Device: "phoneA"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestDeactivationKillsSessionOnNextCheck(t *testing.T) {
	f := newFixture(t)
	f.addVendor(entity.Vendor{Code: "V001", Name: "Vendor One", Active: true})
	claims, _ := f.login(t, "V001", "phoneA")

	active := false
	_, err := f.directory.UpdateVendor(context.Background(), "V001", service.UpdateVendorInput{Active: &active})
	require.NoError(t, err)

	_, err = f.validate(claims)
	require.ErrorIs(t, err, service.ErrCredentialsChanged)
}

func TestBindingChangeScenario(t *testing.T) {
	// V001 starts with no binding; phoneA logs in; an admin then pins the
	// vendor to phoneB.
	f := newFixture(t)
	f.addVendor(entity.Vendor{Code: "V001", Name: "Vendor One", Active: true})

	s1, _ := f.login(t, "V001", "phoneA")

	binding := "phoneB"
	_, err := f.directory.UpdateVendor(context.Background(), "V001", service.UpdateVendorInput{DeviceBinding: &binding})
	require.NoError(t, err)

	_, err = f.validate(s1)
	require.ErrorIs(t, err, service.ErrCredentialsChanged)

	_, err = f.authority.Login(context.Background(), service.LoginInput{Code: "V001", Device: "phoneA"})
	require.ErrorIs(t, err, service.ErrDeviceMismatch)

	f.login(t, "V001", "phoneB")
}

func TestCredentialsChangedRevokesAllSiblings(t *testing.T) {
	f := newFixture(t)
	f.addVendor(entity.Vendor{Code: "V001", Name: "Vendor One", Active: true})

	s1, _ := f.login(t, "V001", "phoneA")
	f.login(t, "V001", "tablet7")
	require.Equal(t, 2, f.sessions.liveCount("V001"))

	// Mutate the row underneath the sessions, bypassing the cascade, as a
	// stale-propagation worst case.
	f.vendors.set(entity.Vendor{Code: "V001", Name: "Vendor One", DeviceBinding: "phoneZ", Active: true})

	_, err := f.validate(s1)
	require.ErrorIs(t, err, service.ErrCredentialsChanged)
	assert.Equal(t, 0, f.sessions.liveCount("V001"))
}

func TestValidateVendorGone(t *testing.T) {
	f := newFixture(t)
	f.addVendor(entity.Vendor{Code: "V001", Name: "Vendor One", Active: true})
	claims, _ := f.login(t, "V001", "phoneA")

	require.NoError(t, f.vendors.Delete(context.Background(), "V001"))

	_, err := f.validate(claims)
	require.ErrorIs(t, err, service.ErrVendorGone)
}

func TestValidateRevokedSession(t *testing.T) {
	f := newFixture(t)
	f.addVendor(entity.Vendor{Code: "V001", Name: "Vendor One", Active: true})
	claims, sessionID := f.login(t, "V001", "phoneA")

	require.NoError(t, f.sessions.End(context.Background(), sessionID))

	_, err := f.validate(claims)
	require.ErrorIs(t, err, service.ErrSessionRevoked)
}

func TestLogoutEndsOnlyOwnSession(t *testing.T) {
	f := newFixture(t)
	f.addVendor(entity.Vendor{Code: "V001", Name: "Vendor One", Active: true})

	s1, s1ID := f.login(t, "V001", "phoneA")
	s2, _ := f.login(t, "V001", "tablet7")

	require.NoError(t, f.authority.Logout(context.Background(), "V001", s1ID, nil))

	_, err := f.validate(s1)
	require.ErrorIs(t, err, service.ErrSessionRevoked)

	_, err = f.validate(s2)
	require.NoError(t, err)
}

func TestForceLogoutIdempotent(t *testing.T) {
	f := newFixture(t)
	f.addVendor(entity.Vendor{Code: "V001", Name: "Vendor One", Active: true})
	f.login(t, "V001", "phoneA")
	f.login(t, "V001", "tablet7")

	count, err := f.authority.ForceLogout(context.Background(), "V001", "DARKEYES", nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	count, err = f.authority.ForceLogout(context.Background(), "V001", "DARKEYES", nil)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestAdminSkipsLivenessCheck(t *testing.T) {
	f := newFixture(t)
	f.addVendor(entity.Vendor{Code: "DARKEYES", Name: "Administrador Principal", Active: true, IsAdmin: true})

	claims, sessionID := f.login(t, "DARKEYES", "laptop1")

	// Even with the registry session gone, the admin stays trusted.
	require.NoError(t, f.sessions.End(context.Background(), sessionID))
	_, err := f.validate(claims)
	require.NoError(t, err)
}

func TestAdminFingerprintMismatchStillRevokes(t *testing.T) {
	f := newFixture(t)
	f.addVendor(entity.Vendor{Code: "DARKEYES", Name: "Administrador Principal", Active: true, IsAdmin: true})

	claims, _ := f.login(t, "DARKEYES", "laptop1")

	f.vendors.set(entity.Vendor{Code: "DARKEYES", Name: "Administrador Principal", Active: false, IsAdmin: true})

	_, err := f.validate(claims)
	require.ErrorIs(t, err, service.ErrCredentialsChanged)
}

func TestTamperedFingerprintRejected(t *testing.T) {
	f := newFixture(t)
	f.addVendor(entity.Vendor{Code: "V001", Name: "Vendor One", Active: true})
	claims, sessionID := f.login(t, "V001", "phoneA")

	_, err := f.authority.Validate(context.Background(), claims.VendorCode, sessionID, "forged")
	require.ErrorIs(t, err, service.ErrCredentialsChanged)
	assert.Equal(t, 0, f.sessions.liveCount("V001"))
}
