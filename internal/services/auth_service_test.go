package services

import (
	"context"
	"testing"

	"ukbus/internal/apperrors"
	"ukbus/internal/config"
	"ukbus/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSecurityConfig() *config.SecurityConfig {
	return &config.SecurityConfig{
		JWTSecret:         "access-secret",
		JWTRefreshSecret:  "refresh-secret",
		PasswordMinLength: 6,
	}
}

type authFixture struct {
	students *fakeStudentRepo
	drivers  *fakeDriverRepo
	admins   *fakeAdminRepo
	auth     AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		students: newFakeStudentRepo(),
		drivers:  newFakeDriverRepo(),
		admins:   newFakeAdminRepo(),
	}
	f.auth = NewAuthService(f.students, f.drivers, f.admins, testSecurityConfig(), newTestLogger(t))
	return f
}

func TestRegisterStudentNormalizesPhone(t *testing.T) {
	f := newAuthFixture(t)

	student, err := f.auth.RegisterStudent(context.Background(), &RegisterRequest{
		FirstName: "Ama",
		LastName:  "Kossi",
		Phone:     "+228 90 12 34 56",
		Password:  "s3cret!",
	})
	require.NoError(t, err)
	assert.Equal(t, "90123456", student.Phone)
	assert.NotEqual(t, "s3cret!", student.Password, "password must be stored hashed")
	assert.Zero(t, student.Balance)
	assert.Zero(t, student.Tickets)
}

func TestRegisterStudentRejectsBadInput(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.auth.RegisterStudent(context.Background(), &RegisterRequest{
		FirstName: "Ama", LastName: "Kossi", Phone: "12345678", Password: "s3cret!",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.auth.RegisterStudent(context.Background(), &RegisterRequest{
		FirstName: "Ama", LastName: "Kossi", Phone: "90123456", Password: "abc",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestRegisterStudentDuplicatePhone(t *testing.T) {
	f := newAuthFixture(t)
	request := &RegisterRequest{FirstName: "Ama", LastName: "Kossi", Phone: "90123456", Password: "s3cret!"}

	_, err := f.auth.RegisterStudent(context.Background(), request)
	require.NoError(t, err)

	// Same number in a different accepted format still collides.
	request.Phone = "22890123456"
	_, err = f.auth.RegisterStudent(context.Background(), request)
	assert.ErrorIs(t, err, apperrors.ErrPhoneAlreadyUsed)
}

func TestLoginStudentRoundTrip(t *testing.T) {
	f := newAuthFixture(t)
	registered, err := f.auth.RegisterStudent(context.Background(), &RegisterRequest{
		FirstName: "Ama", LastName: "Kossi", Phone: "90123456", Password: "s3cret!",
	})
	require.NoError(t, err)

	student, tokens, err := f.auth.LoginStudent(context.Background(), "+22890123456", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, student.ID)
	require.NotNil(t, tokens)

	claims, err := utils.VerifyToken(tokens.AccessToken, "access-secret")
	require.NoError(t, err)
	assert.Equal(t, registered.ID.Hex(), claims.UserID)
	assert.Equal(t, RoleStudent, claims.Role)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.auth.RegisterStudent(context.Background(), &RegisterRequest{
		FirstName: "Ama", LastName: "Kossi", Phone: "90123456", Password: "s3cret!",
	})
	require.NoError(t, err)

	cases := map[string]struct {
		phone    string
		password string
	}{
		"wrong password": {"90123456", "wrong"},
		"unknown phone":  {"91111111", "s3cret!"},
		"invalid phone":  {"garbage", "s3cret!"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := f.auth.LoginStudent(context.Background(), tc.phone, tc.password)
			assert.ErrorIs(t, err, apperrors.ErrAuthentication)
		})
	}
}

func TestLoginDriverAndAdminRoles(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.auth.RegisterDriver(context.Background(), &RegisterRequest{
		FirstName: "Koffi", LastName: "Mensah", Phone: "91234567", Password: "s3cret!",
	})
	require.NoError(t, err)
	_, err = f.auth.RegisterAdmin(context.Background(), &RegisterRequest{
		FirstName: "Afi", LastName: "Lawson", Phone: "92345678", Password: "s3cret!",
	})
	require.NoError(t, err)

	_, driverTokens, err := f.auth.LoginDriver(context.Background(), "91234567", "s3cret!")
	require.NoError(t, err)
	claims, err := utils.VerifyToken(driverTokens.AccessToken, "access-secret")
	require.NoError(t, err)
	assert.Equal(t, RoleDriver, claims.Role)

	_, adminTokens, err := f.auth.LoginAdmin(context.Background(), "92345678", "s3cret!")
	require.NoError(t, err)
	claims, err = utils.VerifyToken(adminTokens.AccessToken, "access-secret")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestRefreshAccessToken(t *testing.T) {
	f := newAuthFixture(t)
	registered, err := f.auth.RegisterStudent(context.Background(), &RegisterRequest{
		FirstName: "Ama", LastName: "Kossi", Phone: "90123456", Password: "s3cret!",
	})
	require.NoError(t, err)

	_, tokens, err := f.auth.LoginStudent(context.Background(), "90123456", "s3cret!")
	require.NoError(t, err)

	accessToken, err := f.auth.RefreshAccessToken(context.Background(), tokens.RefreshToken)
	require.NoError(t, err)

	claims, err := utils.VerifyToken(accessToken, "access-secret")
	require.NoError(t, err)
	assert.Equal(t, registered.ID.Hex(), claims.UserID)

	// An access token is signed with the wrong secret for refreshing.
	_, err = f.auth.RefreshAccessToken(context.Background(), tokens.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrAuthentication)
}
