package response

type SendPhoneOTPResponse struct {
	Message   string `json:"message"`
	ExpiresIn int    `json:"expiresIn"`
	// DebugOTP and Note are only set when code exposure is enabled.
	DebugOTP string `json:"debugOtp,omitempty"`
	Note     string `json:"note,omitempty"`
}

type VerifyPhoneOTPResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}
