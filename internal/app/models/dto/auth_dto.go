package dto

// SignUpRequest creates an account and the profile of the chosen role
type SignUpRequest struct {
	Email      string   `json:"email" binding:"required,email" example:"asha@college.edu"`
	Password   string   `json:"password" binding:"required,min=6" example:"secret1"`
	Role       string   `json:"role" binding:"required,oneof=student manager hod" example:"student"`
	Name       string   `json:"name" binding:"omitempty,max=100" example:"Asha Rao"`
	Department string   `json:"department" binding:"omitempty,max=100" example:"Computer Science"`
	Branch     string   `json:"branch" binding:"omitempty,max=100" example:"Computer Science"`
	Year       string   `json:"year" binding:"omitempty,max=10" example:"2025"`
	CGPA       *float64 `json:"cgpa" binding:"omitempty,gte=0,lte=10" example:"8.2"`
}

// SignInRequest signs in under a chosen role
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=student manager hod"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int    `json:"expiresIn" example:"86400"`
}

// SessionResponse describes the signed-in identity and its role profile
type SessionResponse struct {
	UID         string      `json:"uid"`
	Email       string      `json:"email"`
	DisplayName string      `json:"displayName"`
	Role        string      `json:"role" example:"student"`
	Profile     interface{} `json:"profile"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token   TokenResponse   `json:"token"`
	Session SessionResponse `json:"session"`
}
