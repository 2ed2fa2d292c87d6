package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chachabrian/tourhub-backend/internal/models"
	"github.com/google/uuid"
)

// UserFilter narrows the admin user listing.
type UserFilter struct {
	Role   models.UserRole
	Search string
	Page
}

type UserService struct {
	repo       UserRepository
	audit      AdminAuditor
	bcryptCost int
	now        func() time.Time
}

func NewUserService(repo UserRepository, audit AdminAuditor, bcryptCost int) *UserService {
	return &UserService{repo: repo, audit: audit, bcryptCost: bcryptCost, now: time.Now}
}

type ProfileUpdate struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Image     *string `json:"image" binding:"omitempty,url"`
}

func (s *UserService) Profile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, upd ProfileUpdate) (*models.User, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if upd.FirstName != nil {
		if strings.TrimSpace(*upd.FirstName) == "" {
			return nil, invalid("firstName", "firstName cannot be blank")
		}
		u.FirstName = strings.TrimSpace(*upd.FirstName)
	}
	if upd.LastName != nil {
		u.LastName = strings.TrimSpace(*upd.LastName)
	}
	if upd.Image != nil {
		u.Image = strings.TrimSpace(*upd.Image)
	}
	u.Name = strings.TrimSpace(u.FirstName + " " + u.LastName)

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

func (s *UserService) ChangePassword(ctx context.Context, userID uuid.UUID, in ChangePasswordInput) error {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := u.CheckPassword(in.CurrentPassword); err != nil {
		return invalid("currentPassword", "current password is incorrect")
	}
	if len(in.NewPassword) < 8 {
		return invalid("newPassword", "password must be at least 8 characters")
	}
	if err := u.HashPassword(in.NewPassword, s.bcryptCost); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.Update(ctx, u)
}

func (s *UserService) List(ctx context.Context, filter UserFilter) ([]models.User, int64, error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, 0, invalid("role", "role must be User or Admin")
	}
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Page = filter.Page.Normalize(50, 200)
	return s.repo.List(ctx, filter)
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.repo.FindByID(ctx, id)
}

type CreateUserInput struct {
	Name          string          `json:"name" binding:"required,notblank"`
	Email         string          `json:"email" binding:"required,email"`
	Password      string          `json:"password" binding:"required,min=8"`
	Role          models.UserRole `json:"role"`
	EmailVerified bool            `json:"emailVerified"`
}

func (s *UserService) Create(ctx context.Context, adminID uuid.UUID, in CreateUserInput) (*models.User, error) {
	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return nil, invalid("role", "role must be User or Admin")
	}
	u := &models.User{
		Email: normalizeEmail(in.Email),
		Name:  strings.TrimSpace(in.Name),
		Role:  role,
	}
	u.FirstName, u.LastName = u.SplitName()
	if in.EmailVerified {
		now := s.now()
		u.EmailVerified = &now
	}
	if err := u.HashPassword(in.Password, s.bcryptCost); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	s.audit.LogAdmin(ctx, adminID, "Created user "+u.Email, "user", u.ID.String())
	return u, nil
}

// UpdateRole changes a user's role. Admins cannot demote themselves.
func (s *UserService) UpdateRole(ctx context.Context, adminID, id uuid.UUID, role models.UserRole) (*models.User, error) {
	if !role.Valid() {
		return nil, invalid("role", "role must be User or Admin")
	}
	if id == adminID && role != models.RoleAdmin {
		return nil, ErrSelfAction
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Role = role
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	s.audit.LogAdmin(ctx, adminID, "Changed role of "+u.Email+" to "+string(role), "user", u.ID.String())
	return u, nil
}

func (s *UserService) SetEmailVerified(ctx context.Context, adminID, id uuid.UUID, verified bool) (*models.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	action := "Unverified email of "
	if verified {
		now := s.now()
		u.EmailVerified = &now
		action = "Verified email of "
	} else {
		u.EmailVerified = nil
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update user status: %w", err)
	}
	s.audit.LogAdmin(ctx, adminID, action+u.Email, "user", u.ID.String())
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, adminID, id uuid.UUID) error {
	if id == adminID {
		return ErrSelfAction
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.LogAdmin(ctx, adminID, "Deleted user "+u.Email, "user", id.String())
	return nil
}
