package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/model"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/repository"
	"github.com/jackc/pgx/v5"
)

// AdminService handles admin business logic.
type AdminService struct {
	adminRepo *repository.AdminRepository
	auth      *AuthService
}

// NewAdminService creates a new AdminService.
func NewAdminService(adminRepo *repository.AdminRepository, auth *AuthService) *AdminService {
	return &AdminService{adminRepo: adminRepo, auth: auth}
}

// GetByEmail retrieves an admin by email.
func (s *AdminService) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	return s.adminRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// GetByID retrieves an admin by ID.
func (s *AdminService) GetByID(ctx context.Context, id int) (*model.Admin, error) {
	return s.adminRepo.GetByID(ctx, id)
}

// Login checks an admin's credentials and returns a signed admin token.
func (s *AdminService) Login(ctx context.Context, email, password string) (*model.AdminLoginResponse, error) {
	admin, err := s.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.auth.CheckPassword(admin.PasswordHash, password); err != nil {
		return nil, err
	}

	token, err := s.auth.GenerateAdminToken(admin.ID, admin.Permissions)
	if err != nil {
		return nil, fmt.Errorf("sign admin token: %w", err)
	}
	return &model.AdminLoginResponse{Token: token, Admin: *admin, Permissions: admin.Permissions}, nil
}

// Create hashes the password and stores a new admin. Unknown permission codes are rejected.
func (s *AdminService) Create(ctx context.Context, name, email, password string, permissions []string) (*model.Admin, error) {
	known := make(map[string]bool, len(model.AllPermissions))
	for _, p := range model.AllPermissionCodes() {
		known[p] = true
	}
	for _, p := range permissions {
		if !known[p] {
			return nil, &ValidationError{Fields: map[string]string{"permissions": fmt.Sprintf("unknown permission %q", p)}}
		}
	}

	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	admin := &model.Admin{
		Name:         strings.TrimSpace(name),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		Permissions:  permissions,
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}
