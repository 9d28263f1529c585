package service

import (
	"context"
	"testing"
	"time"

	"medml-backend/internal/domain"
	"medml-backend/internal/repository"
	"medml-backend/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(t *testing.T) (*AuthService, *repository.MemoryUsersRepo, *repository.MemoryPatientsRepo) {
	t.Helper()
	users := repository.NewMemoryUsersRepo()
	patients := repository.NewMemoryPatientsRepo()
	svc := NewAuthService(users, patients, store.NewMemoryKV(),
		"test-secret", 15, 30, zap.NewNop())
	return svc, users, patients
}

func TestAdminRegisterAndLogin(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()

	u, err := svc.RegisterAdmin(ctx, "Dr. Rao", "rao@example.com", "s3cret", "Physician", "9999999999")
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, u.Role)
	require.NotEqual(t, "s3cret", u.PasswordHash)

	pair, logged, err := svc.LoginAdmin(ctx, "rao@example.com", "s3cret")
	require.NoError(t, err)
	require.Equal(t, u.UserID, logged.UserID)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	_, _, err = svc.LoginAdmin(ctx, "rao@example.com", "wrong")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, _, err = svc.LoginAdmin(ctx, "nobody@example.com", "s3cret")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestDuplicateAdminEmail(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.RegisterAdmin(ctx, "A", "dup@example.com", "pw", "", "")
	require.NoError(t, err)
	_, err = svc.RegisterAdmin(ctx, "B", "dup@example.com", "pw", "", "")
	require.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestPatientLoginByAbhaID(t *testing.T) {
	svc, _, patients := newAuthService(t)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("abha-pw"), bcrypt.DefaultCost)
	require.NoError(t, err)
	patientID := uuid.NewString()
	require.NoError(t, patients.CreatePatient(ctx, &domain.Patient{
		PatientID:    patientID,
		FullName:     "Test Patient",
		Age:          40,
		AbhaID:       "ABHA-1234",
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}))

	pair, p, err := svc.LoginPatient(ctx, "ABHA-1234", "abha-pw")
	require.NoError(t, err)
	require.Equal(t, patientID, p.PatientID)

	claims, err := svc.VerifyToken(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, domain.RolePatient, claims.Role)
	require.Equal(t, patientID, claims.Subject)

	_, _, err = svc.LoginPatient(ctx, "ABHA-1234", "nope")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	svc, _, _ := newAuthService(t)
	_, err := svc.VerifyToken(context.Background(), "not-a-jwt")
	require.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestLogoutBlocksToken(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.RegisterAdmin(ctx, "A", "a@example.com", "pw", "", "")
	require.NoError(t, err)
	pair, _, err := svc.LoginAdmin(ctx, "a@example.com", "pw")
	require.NoError(t, err)

	claims, err := svc.VerifyToken(ctx, pair.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims))
	_, err = svc.VerifyToken(ctx, pair.AccessToken)
	require.ErrorIs(t, err, domain.ErrInvalidToken)

	// The refresh token has a different jti and stays valid.
	_, err = svc.VerifyToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshRequiresRefreshToken(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.RegisterAdmin(ctx, "A", "r@example.com", "pw", "", "")
	require.NoError(t, err)
	pair, _, err := svc.LoginAdmin(ctx, "r@example.com", "pw")
	require.NoError(t, err)

	fresh, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, fresh.AccessToken)

	// Access tokens cannot be used to refresh.
	_, err = svc.Refresh(ctx, pair.AccessToken)
	require.ErrorIs(t, err, domain.ErrInvalidToken)
}
