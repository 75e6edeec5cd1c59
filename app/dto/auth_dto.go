package dto

// GoogleLoginRequest carries a Google ID token obtained by the frontend
type GoogleLoginRequest struct {
	Token string `json:"token" validate:"required,min=1"`
}

// UserResponse is the public view of a signed-in user
type UserResponse struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatar_url"`
}

// GoogleLoginResponse is returned after a successful login
type GoogleLoginResponse struct {
	Success bool         `json:"success"`
	User    UserResponse `json:"user"`
}
