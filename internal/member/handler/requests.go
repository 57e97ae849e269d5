package handler

// registerRequest is the signup payload. Fields are raw strings; the service
// validates them.
type registerRequest struct {
	LoginID   string `json:"login_id"`
	Password  string `json:"password"`
	Name      string `json:"name"`
	BirthDate string `json:"birth_date"`
	Email     string `json:"email"`
}

type registerResponse struct {
	MemberID string `json:"member_id"`
	LoginID  string `json:"login_id"`
}

type loginRequest struct {
	LoginID  string `json:"login_id"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type availabilityResponse struct {
	LoginID   string `json:"login_id"`
	Available bool   `json:"available"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type profileResponse struct {
	MemberID  string `json:"member_id"`
	LoginID   string `json:"login_id"`
	Name      string `json:"name"`
	BirthDate string `json:"birth_date"`
	Email     string `json:"email"`
}
