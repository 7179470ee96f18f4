package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"jaggery-store/internal/dto/request"
	"jaggery-store/internal/usecase"
	"jaggery-store/pkg/utils"

	"go.uber.org/zap"
)

type PhoneOTPHandler struct {
	service usecase.PhoneOTPService
	log     *zap.Logger
}

func NewPhoneOTPHandler(service usecase.PhoneOTPService, log *zap.Logger) *PhoneOTPHandler {
	return &PhoneOTPHandler{
		service: service,
		log:     log,
	}
}

// SendOTP handles POST /api/send-phone-otp
func (h *PhoneOTPHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.SendPhoneOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	resp, err := h.service.SendOTP(r.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(w, err, "send phone OTP")
		return
	}

	utils.WriteJSON(w, http.StatusOK, resp)
}

// VerifyOTP handles POST /api/verify-phone-otp
func (h *PhoneOTPHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.VerifyPhoneOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	resp, err := h.service.VerifyOTP(r.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(w, err, "verify phone OTP")
		return
	}

	utils.WriteJSON(w, http.StatusOK, resp)
}

// handleServiceError keeps client messages generic; details only go to the log
func (h *PhoneOTPHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, usecase.ErrUnauthenticated):
		utils.ResponseUnauthorized(w, "Authentication required")

	case errors.Is(err, usecase.ErrInvalidInput):
		h.log.Warn(operation+" validation failed", zap.Error(err))
		msg := strings.TrimPrefix(err.Error(), usecase.ErrInvalidInput.Error()+": ")
		utils.ResponseBadRequest(w, msg, nil)

	case errors.Is(err, usecase.ErrOTPNotFound):
		h.log.Warn(operation+" failed - no outstanding OTP", zap.Error(err))
		utils.ResponseBadRequest(w, "OTP not found. Please request a new OTP.", nil)

	case errors.Is(err, usecase.ErrOTPExpired):
		h.log.Warn(operation+" failed - OTP expired", zap.Error(err))
		utils.ResponseBadRequest(w, "OTP has expired. Please request a new OTP.", nil)

	case errors.Is(err, usecase.ErrInvalidOTP):
		h.log.Warn(operation+" failed - invalid OTP", zap.Error(err))
		utils.ResponseBadRequest(w, "Invalid OTP", nil)

	case errors.Is(err, usecase.ErrUserNotFound):
		h.log.Warn(operation+" failed - user not found", zap.Error(err))
		utils.ResponseNotFound(w, "User not found")

	default:
		h.log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
