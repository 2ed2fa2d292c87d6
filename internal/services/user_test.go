package services

import (
	"context"
	"testing"

	"github.com/chachabrian/tourhub-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUserService_AdminGuards(t *testing.T) {
	admin := &models.User{Base: models.Base{ID: uuid.New()}, Email: "root@example.com", Role: models.RoleAdmin}
	member := &models.User{Base: models.Base{ID: uuid.New()}, Email: "m@example.com", Role: models.RoleUser}
	rec := &recorder{}
	svc := NewUserService(newMockUserRepository(admin, member), rec, bcrypt.MinCost)
	ctx := context.Background()

	_, err := svc.UpdateRole(ctx, admin.ID, admin.ID, models.RoleUser)
	assert.ErrorIs(t, err, ErrSelfAction)
	assert.ErrorIs(t, svc.Delete(ctx, admin.ID, admin.ID), ErrSelfAction)

	_, err = svc.UpdateRole(ctx, admin.ID, member.ID, "Owner")
	assert.ErrorIs(t, err, ErrInvalidInput)

	u, err := svc.UpdateRole(ctx, admin.ID, member.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)

	u, err = svc.SetEmailVerified(ctx, admin.ID, member.ID, true)
	require.NoError(t, err)
	assert.NotNil(t, u.EmailVerified)

	require.NoError(t, svc.Delete(ctx, admin.ID, member.ID))
	_, err = svc.Get(ctx, member.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, rec.adminActions, 3)
}

func TestUserService_CreateAndPasswords(t *testing.T) {
	repo := newMockUserRepository()
	svc := NewUserService(repo, &recorder{}, bcrypt.MinCost)
	ctx := context.Background()

	u, err := svc.Create(ctx, uuid.New(), CreateUserInput{Name: "Grace Brewster Hopper", Email: "Grace@Example.com", Password: "cobol-rules", EmailVerified: true})
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", u.Email)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.Equal(t, "Grace", u.FirstName)
	assert.Equal(t, "Brewster Hopper", u.LastName)
	assert.NotNil(t, u.EmailVerified)

	err = svc.ChangePassword(ctx, u.ID, ChangePasswordInput{CurrentPassword: "wrong", NewPassword: "new-password"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, svc.ChangePassword(ctx, u.ID, ChangePasswordInput{CurrentPassword: "cobol-rules", NewPassword: "new-password"}))
	stored, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NoError(t, stored.CheckPassword("new-password"))
}

func TestUserService_UpdateProfile(t *testing.T) {
	u := &models.User{Base: models.Base{ID: uuid.New()}, Email: "a@example.com", FirstName: "Ada", LastName: "L"}
	svc := NewUserService(newMockUserRepository(u), &recorder{}, bcrypt.MinCost)
	last := "Lovelace"
	blank := "  "

	got, err := svc.UpdateProfile(context.Background(), u.ID, ProfileUpdate{LastName: &last})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", got.Name)

	_, err = svc.UpdateProfile(context.Background(), u.ID, ProfileUpdate{FirstName: &blank})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
