package session

// User is the client-side session record. It is replaced wholesale on
// every successful auth response and cleared on logout; nothing mutates
// individual fields in place.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`

	FullName  string `json:"fullName,omitempty"`
	Phone     string `json:"phone,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`

	// Provider profile.
	BusinessName string `json:"businessName,omitempty"`
	Verified     bool   `json:"verified,omitempty"`

	// Admin profile.
	AdminRole string `json:"adminRole,omitempty"`

	TwoFactorEnabled bool `json:"twoFactorEnabled"`
	EmailVerified    bool `json:"emailVerified"`
}

// Envelope is the JSON shape every auth endpoint responds with.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`

	Token        string `json:"token,omitempty"`
	PartialToken string `json:"partialToken,omitempty"`

	RequireOTP       bool `json:"requireOtp,omitempty"`
	NeedVerification bool `json:"needVerification,omitempty"`

	RedirectTo string `json:"redirectTo,omitempty"`
	Data       *User  `json:"data,omitempty"`
}

// Result is what store operations hand back to UI code. API and network
// failures are folded into Success=false with a displayable message;
// nothing throws past the store boundary.
type Result struct {
	Success bool
	Message string

	// Follow-up flags for multi-step flows.
	RequireOTP       bool
	NeedVerification bool
	PartialToken     string

	RedirectTo string
}

// RegisterInput is the sign-up payload.
type RegisterInput struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	FullName     string `json:"fullName"`
	Phone        string `json:"phone,omitempty"`
	Role         string `json:"role"`
	BusinessName string `json:"businessName,omitempty"`
}
