package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"jaggery-store/internal/data/entity"
	"jaggery-store/internal/data/repository"
	"jaggery-store/internal/dto/request"
	"jaggery-store/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type phoneOTPFixture struct {
	svc    *phoneOTPService
	otps   *repository.MemoryPhoneOTPRepository
	users  *fakeUserRepo
	sender *fakeSender
	user   *entity.User
	now    time.Time
}

func newPhoneOTPFixture(t *testing.T, exposeCode bool) *phoneOTPFixture {
	t.Helper()

	user := &entity.User{
		Base:     entity.Base{ID: uuid.New()},
		Name:     "Asha",
		Email:    "asha@example.com",
		Role:     entity.RoleCustomer,
		IsActive: true,
	}

	f := &phoneOTPFixture{
		otps:   repository.NewMemoryPhoneOTPRepository(),
		users:  newFakeUserRepo(user),
		sender: &fakeSender{},
		user:   user,
		now:    time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	config := utils.OTPConfig{
		Store:      utils.OTPStoreMemory,
		Expiry:     10 * time.Minute,
		Retention:  time.Hour,
		ExposeCode: exposeCode,
	}
	f.svc = newPhoneOTPService(f.otps, f.users, f.sender, config, func() time.Time { return f.now }, zaptest.NewLogger(t))
	return f
}

func (f *phoneOTPFixture) send(t *testing.T, phone string) string {
	t.Helper()
	resp, err := f.svc.SendOTP(context.Background(), f.user.ID, &request.SendPhoneOTPRequest{Phone: phone})
	require.NoError(t, err)
	return resp.DebugOTP
}

func (f *phoneOTPFixture) verify(userID uuid.UUID, phone, code string) error {
	_, err := f.svc.VerifyOTP(context.Background(), userID, &request.VerifyPhoneOTPRequest{Phone: phone, OTP: code})
	return err
}

func TestPhoneOTPService_IssueThenVerify(t *testing.T) {
	f := newPhoneOTPFixture(t, true)
	ctx := context.Background()

	sendResp, err := f.svc.SendOTP(ctx, f.user.ID, &request.SendPhoneOTPRequest{Phone: "9998887777"})
	require.NoError(t, err)
	assert.Equal(t, "OTP sent successfully", sendResp.Message)
	assert.Equal(t, 600, sendResp.ExpiresIn)
	assert.Len(t, sendResp.DebugOTP, 6)
	assert.NotEmpty(t, sendResp.Note)

	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, sentOTP{phone: "9998887777", code: sendResp.DebugOTP}, f.sender.sent[0])

	stored, err := f.otps.Get(ctx, "9998887777")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, f.now.Add(10*time.Minute), stored.ExpiresAt)
	assert.Equal(t, f.user.ID, stored.OwnerUserID)

	verifyResp, err := f.svc.VerifyOTP(ctx, f.user.ID, &request.VerifyPhoneOTPRequest{
		Phone: "9998887777",
		OTP:   sendResp.DebugOTP,
	})
	require.NoError(t, err)
	assert.True(t, verifyResp.User.PhoneVerified)
	require.NotNil(t, verifyResp.User.Phone)
	assert.Equal(t, "9998887777", *verifyResp.User.Phone)
	assert.Equal(t, f.user.ID.String(), verifyResp.User.ID)
	assert.Equal(t, "asha@example.com", verifyResp.User.Email)

	saved, err := f.users.FindByID(ctx, f.user.ID)
	require.NoError(t, err)
	assert.True(t, saved.PhoneVerified)
	assert.Equal(t, f.now, saved.UpdatedAt)

	assert.Equal(t, 0, f.otps.Len())
	assert.ErrorIs(t, f.verify(f.user.ID, "9998887777", sendResp.DebugOTP), ErrOTPNotFound, "a code verifies at most once")
}

func TestPhoneOTPService_KnownCodeScenario(t *testing.T) {
	f := newPhoneOTPFixture(t, false)
	ctx := context.Background()

	require.NoError(t, f.otps.Put(ctx, &entity.PhoneOTP{
		Phone:       "9998887777",
		Code:        "482913",
		OwnerUserID: f.user.ID,
		ExpiresAt:   f.now.Add(10 * time.Minute),
		CreatedAt:   f.now,
	}))

	require.NoError(t, f.verify(f.user.ID, "9998887777", "482913"))
	assert.Equal(t, 1, f.users.updates)
}

func TestPhoneOTPService_SendHidesCodeByDefault(t *testing.T) {
	f := newPhoneOTPFixture(t, false)

	resp, err := f.svc.SendOTP(context.Background(), f.user.ID, &request.SendPhoneOTPRequest{Phone: "9998887777"})
	require.NoError(t, err)
	assert.Empty(t, resp.DebugOTP)
	assert.Empty(t, resp.Note)
	assert.Equal(t, 1, f.otps.Len())
}

func TestPhoneOTPService_SendMissingPhone(t *testing.T) {
	f := newPhoneOTPFixture(t, true)

	for _, phone := range []string{"", "   "} {
		_, err := f.svc.SendOTP(context.Background(), f.user.ID, &request.SendPhoneOTPRequest{Phone: phone})
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
	assert.Equal(t, 0, f.otps.Len())
	assert.Empty(t, f.sender.sent)
}

func TestPhoneOTPService_Unauthenticated(t *testing.T) {
	f := newPhoneOTPFixture(t, true)

	_, err := f.svc.SendOTP(context.Background(), uuid.Nil, &request.SendPhoneOTPRequest{Phone: "9998887777"})
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.ErrorIs(t, f.verify(uuid.Nil, "9998887777", "482913"), ErrUnauthenticated)
	assert.Equal(t, 0, f.otps.Len())
}

func TestPhoneOTPService_SendFailureDiscardsEntry(t *testing.T) {
	f := newPhoneOTPFixture(t, true)
	f.sender.err = errors.New("gateway timeout")

	_, err := f.svc.SendOTP(context.Background(), f.user.ID, &request.SendPhoneOTPRequest{Phone: "9998887777"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, 0, f.otps.Len())
}

func TestPhoneOTPService_VerifyNeverIssued(t *testing.T) {
	f := newPhoneOTPFixture(t, true)

	assert.ErrorIs(t, f.verify(f.user.ID, "0000000000", "123456"), ErrOTPNotFound)
}

func TestPhoneOTPService_VerifyMissingFields(t *testing.T) {
	f := newPhoneOTPFixture(t, true)
	code := f.send(t, "9998887777")

	assert.ErrorIs(t, f.verify(f.user.ID, "", code), ErrInvalidInput)
	assert.ErrorIs(t, f.verify(f.user.ID, "9998887777", ""), ErrInvalidInput)
	assert.Equal(t, 1, f.otps.Len())
}

func TestPhoneOTPService_VerifyExpired(t *testing.T) {
	f := newPhoneOTPFixture(t, true)
	code := f.send(t, "9998887777")

	f.now = f.now.Add(10*time.Minute + time.Millisecond)

	assert.ErrorIs(t, f.verify(f.user.ID, "9998887777", code), ErrOTPExpired)
	assert.Equal(t, 0, f.otps.Len(), "expired entry is removed by the verify that observed it")
	assert.ErrorIs(t, f.verify(f.user.ID, "9998887777", code), ErrOTPNotFound)
}

func TestPhoneOTPService_VerifyAtExpiryInstant(t *testing.T) {
	f := newPhoneOTPFixture(t, true)
	code := f.send(t, "9998887777")

	f.now = f.now.Add(10 * time.Minute)

	assert.NoError(t, f.verify(f.user.ID, "9998887777", code))
}

func TestPhoneOTPService_VerifyWrongCodeKeepsEntry(t *testing.T) {
	f := newPhoneOTPFixture(t, true)
	code := f.send(t, "9998887777")

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	assert.ErrorIs(t, f.verify(f.user.ID, "9998887777", wrong), ErrInvalidOTP)
	assert.Equal(t, 1, f.otps.Len())
	assert.Equal(t, 0, f.users.updates)

	assert.NoError(t, f.verify(f.user.ID, "9998887777", code))
}

func TestPhoneOTPService_ReissueInvalidatesPreviousCode(t *testing.T) {
	f := newPhoneOTPFixture(t, true)
	first := f.send(t, "9998887777")

	second := f.send(t, "9998887777")
	for second == first {
		second = f.send(t, "9998887777")
	}

	assert.Equal(t, 1, f.otps.Len())
	assert.ErrorIs(t, f.verify(f.user.ID, "9998887777", first), ErrInvalidOTP)
	assert.NoError(t, f.verify(f.user.ID, "9998887777", second))
}

func TestPhoneOTPService_VerifyByOtherUserRejected(t *testing.T) {
	f := newPhoneOTPFixture(t, true)
	other := &entity.User{Base: entity.Base{ID: uuid.New()}, Name: "Ravi", Email: "ravi@example.com", IsActive: true}
	require.NoError(t, f.users.Create(context.Background(), other))

	code := f.send(t, "9998887777")

	assert.ErrorIs(t, f.verify(other.ID, "9998887777", code), ErrInvalidOTP)
	assert.Equal(t, 1, f.otps.Len())

	saved, err := f.users.FindByID(context.Background(), other.ID)
	require.NoError(t, err)
	assert.False(t, saved.PhoneVerified)
}

func TestPhoneOTPService_VerifyUserMissing(t *testing.T) {
	f := newPhoneOTPFixture(t, true)
	code := f.send(t, "9998887777")
	require.NoError(t, f.users.Delete(context.Background(), f.user.ID))

	assert.ErrorIs(t, f.verify(f.user.ID, "9998887777", code), ErrUserNotFound)
}

func TestPhoneOTPService_VerifySaveFailure(t *testing.T) {
	f := newPhoneOTPFixture(t, true)
	code := f.send(t, "9998887777")
	f.users.updateErr = errors.New("disk full")

	err := f.verify(f.user.ID, "9998887777", code)
	require.Error(t, err)
	for _, sentinel := range []error{ErrInvalidInput, ErrOTPNotFound, ErrOTPExpired, ErrInvalidOTP, ErrUserNotFound} {
		assert.NotErrorIs(t, err, sentinel)
	}
}

func TestPhoneOTPService_ConcurrentVerifySucceedsOnce(t *testing.T) {
	f := newPhoneOTPFixture(t, true)
	code := f.send(t, "9998887777")

	const attempts = 20
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = f.verify(f.user.ID, "9998887777", code)
		}()
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.ErrorIs(t, err, ErrOTPNotFound)
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, f.users.updates)
}

func TestVerifyResult(t *testing.T) {
	assert.Equal(t, "verified", verifyResult(nil))
	assert.Equal(t, "expired", verifyResult(ErrOTPExpired))
	assert.Equal(t, "invalid_code", verifyResult(ErrInvalidOTP))
	assert.Equal(t, "error", verifyResult(errors.New("boom")))
}
