package auth

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Actor       string `json:"actor"`
	ExpiresIn   int64  `json:"expires_in"`
}
