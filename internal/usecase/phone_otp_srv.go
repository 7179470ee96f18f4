package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"jaggery-store/internal/data/entity"
	"jaggery-store/internal/data/repository"
	"jaggery-store/internal/dto/request"
	"jaggery-store/internal/dto/response"
	"jaggery-store/pkg/metrics"
	"jaggery-store/pkg/sms"
	"jaggery-store/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const debugOTPNote = "debugOtp is returned because OTP_EXPOSE_CODE is enabled; disable it in production"

type PhoneOTPService interface {
	SendOTP(ctx context.Context, userID uuid.UUID, req *request.SendPhoneOTPRequest) (*response.SendPhoneOTPResponse, error)
	VerifyOTP(ctx context.Context, userID uuid.UUID, req *request.VerifyPhoneOTPRequest) (*response.VerifyPhoneOTPResponse, error)
}

type phoneOTPService struct {
	otps   repository.PhoneOTPRepository
	users  repository.UserRepository
	sender sms.Sender
	config utils.OTPConfig
	now    func() time.Time
	log    *zap.Logger
}

func NewPhoneOTPService(
	otps repository.PhoneOTPRepository,
	users repository.UserRepository,
	sender sms.Sender,
	config utils.OTPConfig,
	log *zap.Logger,
) PhoneOTPService {
	return newPhoneOTPService(otps, users, sender, config, time.Now, log)
}

func newPhoneOTPService(
	otps repository.PhoneOTPRepository,
	users repository.UserRepository,
	sender sms.Sender,
	config utils.OTPConfig,
	now func() time.Time,
	log *zap.Logger,
) *phoneOTPService {
	return &phoneOTPService{
		otps:   otps,
		users:  users,
		sender: sender,
		config: config,
		now:    now,
		log:    log.With(zap.String("service", "phone_otp")),
	}
}

func (s *phoneOTPService) SendOTP(ctx context.Context, userID uuid.UUID, req *request.SendPhoneOTPRequest) (*response.SendPhoneOTPResponse, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	// 1. Validate
	req.Phone = strings.TrimSpace(req.Phone)
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Send phone OTP validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, utils.FormatValidationErrors(errs))
	}

	// 2. Generate code
	code, err := utils.GenerateOTP()
	if err != nil {
		s.log.Error("Failed to generate OTP", zap.Error(err))
		return nil, fmt.Errorf("generate OTP: %w", err)
	}

	now := s.now()
	otp := &entity.PhoneOTP{
		Phone:       req.Phone,
		Code:        code,
		OwnerUserID: userID,
		ExpiresAt:   now.Add(s.config.Expiry),
		CreatedAt:   now,
	}

	// 3. Store, replacing any outstanding code for this phone
	if err := s.otps.Put(ctx, otp); err != nil {
		return nil, fmt.Errorf("store phone OTP: %w", err)
	}

	// 4. Deliver
	if err := s.sender.SendOTP(ctx, otp.Phone, code); err != nil {
		s.log.Error("Failed to deliver phone OTP",
			zap.Error(err),
			zap.String("phone", otp.Phone),
			zap.String("user_id", userID.String()))
		if delErr := s.otps.Delete(ctx, otp.Phone); delErr != nil {
			s.log.Warn("Failed to discard undelivered phone OTP", zap.Error(delErr))
		}
		return nil, fmt.Errorf("deliver phone OTP: %w", err)
	}

	metrics.PhoneOTPIssuedTotal.Inc()
	s.log.Info("Phone OTP issued",
		zap.String("phone", otp.Phone),
		zap.String("user_id", userID.String()),
		zap.Time("expires_at", otp.ExpiresAt))

	resp := &response.SendPhoneOTPResponse{
		Message:   "OTP sent successfully",
		ExpiresIn: int(s.config.Expiry / time.Second),
	}
	if s.config.ExposeCode {
		resp.DebugOTP = code
		resp.Note = debugOTPNote
	}

	return resp, nil
}

func (s *phoneOTPService) VerifyOTP(ctx context.Context, userID uuid.UUID, req *request.VerifyPhoneOTPRequest) (*response.VerifyPhoneOTPResponse, error) {
	resp, err := s.verify(ctx, userID, req)
	metrics.PhoneOTPVerificationsTotal.WithLabelValues(verifyResult(err)).Inc()
	return resp, err
}

func (s *phoneOTPService) verify(ctx context.Context, userID uuid.UUID, req *request.VerifyPhoneOTPRequest) (*response.VerifyPhoneOTPResponse, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	// 1. Validate
	req.Phone = strings.TrimSpace(req.Phone)
	req.OTP = strings.TrimSpace(req.OTP)
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Verify phone OTP validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, utils.FormatValidationErrors(errs))
	}

	// 2. Lookup outstanding code
	otp, err := s.otps.Get(ctx, req.Phone)
	if err != nil {
		return nil, fmt.Errorf("find phone OTP: %w", err)
	}
	if otp == nil {
		return nil, ErrOTPNotFound
	}

	// 3. Expiry, enforced on read
	now := s.now()
	if otp.IsExpired(now) {
		if err := s.otps.Delete(ctx, req.Phone); err != nil {
			s.log.Warn("Failed to delete expired phone OTP", zap.Error(err), zap.String("phone", req.Phone))
		}
		return nil, ErrOTPExpired
	}

	// 4. Code and issuer must both match; the entry stays for a retry
	codeMatches := subtle.ConstantTimeCompare([]byte(otp.Code), []byte(req.OTP)) == 1
	if !codeMatches || otp.OwnerUserID != userID {
		s.log.Warn("Phone OTP mismatch",
			zap.String("phone", req.Phone),
			zap.String("user_id", userID.String()),
			zap.Bool("owner_matches", otp.OwnerUserID == userID))
		return nil, ErrInvalidOTP
	}

	// 5. Load the caller
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	// 6. Claim the code; only one concurrent verify can win
	consumed, err := s.otps.Consume(ctx, req.Phone, req.OTP, userID, now)
	if err != nil {
		return nil, fmt.Errorf("consume phone OTP: %w", err)
	}
	if !consumed {
		s.log.Warn("Phone OTP consumed concurrently", zap.String("phone", req.Phone))
		return nil, ErrOTPNotFound
	}

	// 7. Persist
	phone := req.Phone
	user.Phone = &phone
	user.PhoneVerified = true
	user.UpdatedAt = now

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserNotUpdated) {
			return nil, ErrUserNotFound
		}
		s.log.Error("Failed to save verified phone",
			zap.Error(err),
			zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("save user phone: %w", err)
	}

	s.log.Info("Phone verified",
		zap.String("phone", phone),
		zap.String("user_id", userID.String()))

	return &response.VerifyPhoneOTPResponse{
		Message: "Phone number verified successfully",
		User:    response.UserToResponse(user),
	}, nil
}

func verifyResult(err error) string {
	switch {
	case err == nil:
		return "verified"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrOTPNotFound):
		return "not_found"
	case errors.Is(err, ErrOTPExpired):
		return "expired"
	case errors.Is(err, ErrInvalidOTP):
		return "invalid_code"
	case errors.Is(err, ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	default:
		return "error"
	}
}
