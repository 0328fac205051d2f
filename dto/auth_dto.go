package dto

type RegisterDTO struct {
	Name     string `json:"name" binding:"required,min=2,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// LogoutDTO ends one session when RefreshToken is set, every session otherwise.
type LogoutDTO struct {
	RefreshToken string `json:"refreshToken"`
}
