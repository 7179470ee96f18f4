package request

type SendPhoneOTPRequest struct {
	Phone string `json:"phone" validate:"required,max=20"`
}

type VerifyPhoneOTPRequest struct {
	Phone string `json:"phone" validate:"required,max=20"`
	OTP   string `json:"otp" validate:"required"`
}
