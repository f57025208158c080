package user

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"easybook/database/repository/memory"
	userRepo "easybook/database/repository/user"
	"easybook/models"
	"easybook/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeCodes struct {
	mu    sync.Mutex
	codes map[string]string
}

func (f *fakeCodes) Issue(_ context.Context, purpose, subject string, _ time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.codes == nil {
		f.codes = map[string]string{}
	}
	f.codes[purpose+":"+subject] = "123456"
	return "123456", nil
}

func (f *fakeCodes) Consume(_ context.Context, purpose, subject, provided string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	code, ok := f.codes[purpose+":"+subject]
	if !ok {
		return utils.ErrCodeNotFound
	}
	if code != provided {
		return utils.ErrCodeMismatch
	}
	delete(f.codes, purpose+":"+subject)
	return nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []models.EmailMessage
}

func (m *recordingMailer) Send(_ context.Context, msg models.EmailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

type fakeIdentity struct {
	identities map[string]models.ExternalIdentity
	passwords  map[string]string
}

func (f *fakeIdentity) Verify(_ context.Context, idToken string) (*models.ExternalIdentity, error) {
	identity, ok := f.identities[idToken]
	if !ok {
		return nil, errors.New("token expired")
	}
	return &identity, nil
}

func (f *fakeIdentity) UpdatePassword(_ context.Context, uid, password string) error {
	if f.passwords == nil {
		f.passwords = map[string]string{}
	}
	f.passwords[uid] = password
	return nil
}

type fixture struct {
	svc      *DefaultUserService
	users    *memory.UserRepo
	codes    *fakeCodes
	mailer   *recordingMailer
	identity *fakeIdentity
}

func newFixture() *fixture {
	f := &fixture{
		users:    memory.NewUserRepo(),
		codes:    &fakeCodes{},
		mailer:   &recordingMailer{},
		identity: &fakeIdentity{identities: map[string]models.ExternalIdentity{}},
	}
	f.svc = NewDefaultUserService(f.users, memory.NewBookingRepo())
	f.svc.HashCost = bcrypt.MinCost
	f.svc.Codes = f.codes
	f.svc.Mailer = f.mailer
	f.svc.Identity = f.identity
	return f
}

func customerRequest() models.RegistrationRequest {
	return models.RegistrationRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "  Ada@Example.com ",
		Password:  "secret123",
	}
}

func assertKind(t *testing.T, err error, kind utils.ErrorKind) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, kind), "expected %s, got %v", kind, err)
}

func TestRegisterCustomer(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, customerRequest())
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", resp.User.Email)
	assert.Equal(t, models.RoleCustomer, resp.User.Role)
	assert.True(t, resp.User.IsActive)
	require.NotNil(t, resp.User.CustomerInfo)
	assert.True(t, resp.User.CustomerInfo.Preferences.Notifications)
	assert.NotNil(t, resp.User.LastLogin)

	claims, err := utils.ParseSessionToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "customer", claims.Role)

	require.Len(t, f.mailer.sent, 2)
	assert.Equal(t, "Welcome to EasyBook", f.mailer.sent[0].Subject)
	assert.Contains(t, f.mailer.sent[1].Text, "123456")

	_, err = f.svc.Register(ctx, customerRequest())
	assertKind(t, err, utils.KindConflict)
}

func TestRegisterProvider(t *testing.T) {
	f := newFixture()
	req := customerRequest()
	req.Role = models.RoleProvider

	_, err := f.svc.Register(context.Background(), req)
	assertKind(t, err, utils.KindValidation)

	req.ServiceCategory = models.CategoryPlumbing
	resp, err := f.svc.Register(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, resp.User.ProviderInfo)
	assert.Equal(t, models.CategoryPlumbing, resp.User.ServiceCategory)
	assert.Len(t, resp.User.ProviderInfo.WorkingHours, 7)
	assert.Nil(t, resp.User.CustomerInfo)
}

func TestLogin(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	reg, err := f.svc.Register(ctx, customerRequest())
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, models.LoginRequest{Email: "ada@example.com", Password: "wrong-pass"})
	assertKind(t, err, utils.KindUnauthorized)

	_, err = f.svc.Login(ctx, models.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assertKind(t, err, utils.KindUnauthorized)

	resp, err := f.svc.Login(ctx, models.LoginRequest{Email: "ADA@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, resp.User.ID)

	_, err = f.svc.SetStatus(ctx, reg.User.ID, models.AccountSuspended, "chargebacks")
	require.NoError(t, err)
	_, err = f.svc.Login(ctx, models.LoginRequest{Email: "ada@example.com", Password: "secret123"})
	assertKind(t, err, utils.KindForbidden)
}

func TestVerifyFirebaseToken(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.identity.identities["new-token"] = models.ExternalIdentity{
		UID:           "fb-1",
		Email:         "Grace@Example.com",
		EmailVerified: true,
		DisplayName:   "Grace Brewster Hopper",
	}

	resp, err := f.svc.VerifyFirebaseToken(ctx, "new-token")
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", resp.User.Email)
	assert.Equal(t, "Grace", resp.User.FirstName)
	assert.Equal(t, "Brewster Hopper", resp.User.LastName)
	assert.Equal(t, models.RoleCustomer, resp.User.Role)
	assert.True(t, resp.User.IsVerified)
	assert.Empty(t, resp.User.PasswordHash)

	again, err := f.svc.VerifyFirebaseToken(ctx, "new-token")
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, again.User.ID)

	_, err = f.svc.VerifyFirebaseToken(ctx, "forged")
	assertKind(t, err, utils.KindUnauthorized)

	_, err = f.svc.VerifyFirebaseToken(ctx, "")
	assertKind(t, err, utils.KindValidation)
}

func TestVerifyFirebaseTokenLinksExistingEmail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	reg, err := f.svc.Register(ctx, customerRequest())
	require.NoError(t, err)

	f.identity.identities["tok"] = models.ExternalIdentity{UID: "fb-ada", Email: "ada@example.com", EmailVerified: true}
	resp, err := f.svc.VerifyFirebaseToken(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, resp.User.ID)
	assert.Equal(t, "fb-ada", resp.User.FirebaseUID)
	assert.True(t, resp.User.IsVerified)

	f.svc.Identity = nil
	_, err = f.svc.VerifyFirebaseToken(ctx, "tok")
	assertKind(t, err, utils.KindUpstream)
}

func TestVerifyEmail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.svc.Register(ctx, customerRequest())
	require.NoError(t, err)

	err = f.svc.VerifyEmail(ctx, models.VerifyEmailRequest{Email: "ada@example.com", VerificationCode: "654321"})
	assertKind(t, err, utils.KindValidation)

	require.NoError(t, f.svc.VerifyEmail(ctx, models.VerifyEmailRequest{Email: "ada@example.com", VerificationCode: "123456"}))
	user, err := f.users.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.True(t, user.IsVerified)

	err = f.svc.ResendVerification(ctx, "ada@example.com")
	assertKind(t, err, utils.KindInvalidState)
}

func TestResetPassword(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	reg, err := f.svc.Register(ctx, customerRequest())
	require.NoError(t, err)
	uid := "fb-ada"
	_, err = f.users.Update(ctx, reg.User.ID, userPatchFirebase(uid))
	require.NoError(t, err)

	err = f.svc.ForgotPassword(ctx, "missing@example.com")
	assertKind(t, err, utils.KindNotFound)

	require.NoError(t, f.svc.ForgotPassword(ctx, "ada@example.com"))
	last := f.mailer.sent[len(f.mailer.sent)-1]
	assert.Equal(t, "Reset your password", last.Subject)

	req := models.ResetPasswordRequest{Email: "ada@example.com", ResetCode: "123456", NewPassword: "brand-new-pass"}
	require.NoError(t, f.svc.ResetPassword(ctx, req))
	assert.Equal(t, "brand-new-pass", f.identity.passwords[uid])

	err = f.svc.ResetPassword(ctx, req)
	assertKind(t, err, utils.KindValidation)

	_, err = f.svc.Login(ctx, models.LoginRequest{Email: "ada@example.com", Password: "brand-new-pass"})
	require.NoError(t, err)
}

func TestProfileAndPassword(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	reg, err := f.svc.Register(ctx, customerRequest())
	require.NoError(t, err)

	name := "  Augusta "
	updated, err := f.svc.UpdateProfile(ctx, reg.User.ID, models.ProfileUpdate{FirstName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Augusta", updated.FirstName)
	assert.Equal(t, models.RoleCustomer, updated.Role)

	short := "A"
	_, err = f.svc.UpdateProfile(ctx, reg.User.ID, models.ProfileUpdate{FirstName: &short})
	assertKind(t, err, utils.KindValidation)

	err = f.svc.ChangePassword(ctx, reg.User.ID, models.ChangePasswordRequest{CurrentPassword: "nope-nope", NewPassword: "another1"})
	assertKind(t, err, utils.KindUnauthorized)
	require.NoError(t, f.svc.ChangePassword(ctx, reg.User.ID, models.ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "another1"}))

	prefs := models.Preferences{Notifications: false, EmailUpdates: true}
	customer, err := f.svc.UpdateCustomerProfile(ctx, reg.User.ID, models.CustomerProfileUpdate{Preferences: &prefs})
	require.NoError(t, err)
	assert.False(t, customer.CustomerInfo.Preferences.Notifications)

	require.NoError(t, f.svc.UpdateFCMToken(ctx, reg.User.ID, "device-token"))
	stored, err := f.users.GetByID(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "device-token", stored.FCMToken)
	assert.False(t, stored.WantsPush())
}

func TestPasswordlessAccountCannotChangePassword(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.identity.identities["tok"] = models.ExternalIdentity{UID: "fb-2", Email: "linus@example.com"}
	resp, err := f.svc.VerifyFirebaseToken(ctx, "tok")
	require.NoError(t, err)

	err = f.svc.ChangePassword(ctx, resp.User.ID, models.ChangePasswordRequest{CurrentPassword: "x", NewPassword: "another1"})
	assertKind(t, err, utils.KindInvalidState)
}

func TestSetRole(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	reg, err := f.svc.Register(ctx, customerRequest())
	require.NoError(t, err)
	admin := models.Actor{ID: "admin-1", Role: models.RoleAdmin}

	_, err = f.svc.SetRole(ctx, models.Actor{ID: reg.User.ID, Role: models.RoleCustomer}, reg.User.ID, models.RoleAdmin)
	assertKind(t, err, utils.KindForbidden)

	_, err = f.svc.SetRole(ctx, admin, reg.User.ID, models.Role("owner"))
	assertKind(t, err, utils.KindValidation)

	promoted, err := f.svc.SetRole(ctx, admin, reg.User.ID, models.RoleProvider)
	require.NoError(t, err)
	assert.Equal(t, models.RoleProvider, promoted.Role)
	require.NotNil(t, promoted.ProviderInfo)
	assert.True(t, promoted.ProviderInfo.IsAvailable)

	_, err = f.svc.SetRole(ctx, admin, "ghost", models.RoleProvider)
	assertKind(t, err, utils.KindNotFound)
}

func userPatchFirebase(uid string) userRepo.UserPatch {
	return userRepo.UserPatch{FirebaseUID: &uid}
}

func TestBookingHistoryAndFavorites(t *testing.T) {
	f := newFixture()
	bookings := memory.NewBookingRepo()
	f.svc.Bookings = bookings
	ctx := context.Background()
	day := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	add := func(id, service, provider string, status models.BookingStatus, amount float64, offset int) {
		require.NoError(t, bookings.Create(ctx, &models.Booking{
			ID: id, BookingNumber: "BK-" + id, CustomerID: "cust-1",
			ServiceID: service, ServiceName: "Service " + service,
			ProviderID: provider, ProviderName: "Provider " + provider,
			Status: status, TotalAmount: amount,
			BookingDate: day.AddDate(0, 0, offset), CreatedAt: day.AddDate(0, 0, offset-7),
		}))
	}
	add("b1", "s1", "p1", models.StatusCompleted, 40, 1)
	add("b2", "s1", "p1", models.StatusCompleted, 60, 3)
	add("b3", "s2", "p2", models.StatusCompleted, 90, 2)
	add("b4", "s2", "p2", models.StatusCancelled, 90, 5)
	require.NoError(t, bookings.Create(ctx, &models.Booking{ID: "other", BookingNumber: "BK-other", CustomerID: "cust-2", Status: models.StatusCompleted}))

	history, total, err := f.svc.BookingHistory(ctx, "cust-1", "", models.Page{Page: 1, Limit: 3})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, history, 3)
	assert.Equal(t, []string{"b4", "b2", "b3"}, []string{history[0].ID, history[1].ID, history[2].ID})

	completed, total, err := f.svc.BookingHistory(ctx, "cust-1", models.StatusCompleted, models.Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, completed, 3)

	_, _, err = f.svc.BookingHistory(ctx, "cust-1", "lost", models.Page{Page: 1, Limit: 10})
	assertKind(t, err, utils.KindValidation)

	favs, err := f.svc.Favorites(ctx, "cust-1")
	require.NoError(t, err)
	require.Len(t, favs.Services, 2)
	assert.Equal(t, "s1", favs.Services[0].Key)
	assert.EqualValues(t, 2, favs.Services[0].BookingCount)
	assert.Equal(t, 100.0, favs.Services[0].TotalSpent)
	assert.Equal(t, "Provider p1", favs.Services[0].ProviderName)
	require.Len(t, favs.Providers, 2)
	assert.Equal(t, "p1", favs.Providers[0].Key)
	assert.EqualValues(t, 1, favs.Providers[1].BookingCount)
}
