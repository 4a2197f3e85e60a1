package domain

// AuthResult is returned by the operations that end an authentication step.
// When RequiresTwoFactor is set the token is provisional and only good for
// the second factor exchange; otherwise it is a full session token.
type AuthResult struct {
	User              Summary
	Token             string
	RequiresTwoFactor bool
}

// TwoFactorEnrollment is returned by the 2FA setup step. The secret at this
// point is pending: it only becomes active once the enable step verifies a
// code generated from it.
type TwoFactorEnrollment struct {
	Secret          string // base32 encoded, at least 160 bits
	ProvisioningURI string // otpauth:// URL for authenticator apps
}
