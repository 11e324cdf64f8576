package service

import (
	"github.com/clerk/clerk-sdk-go/v2"

	"github.com/deppfellow/go-marketplace/internal/server"
)

// AuthService configures the Clerk SDK with the backend secret key.
type AuthService struct {
	server *server.Server
}

func NewAuthService(s *server.Server) *AuthService {
	clerk.SetKey(s.Config.Auth.SecretKey)
	return &AuthService{
		server: s,
	}
}
