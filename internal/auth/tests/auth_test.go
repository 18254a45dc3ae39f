package tests

import (
	"fmt"
	"time"

	"github.com/valentinaBarreto18/marketplaceRepo/internal/auth/jwtutil"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/auth/repository"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/auth/service"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/auth/validator"
	"golang.org/x/crypto/bcrypt"
)

func (s *IntegrationTestSuite) TestRegister_Success() {
	user, req := s.register()

	s.Require().NotZero(user.ID)
	s.Require().Equal(req.Email, user.Email)
	s.Require().False(user.IsAdmin)

	// password is stored hashed
	stored, err := s.UserRepo.GetByEmail(s.Ctx, req.Email)
	s.Require().NoError(err)
	s.Require().NotEqual(req.Password, stored.Password)
	s.Require().NoError(bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte(req.Password)))
}

func (s *IntegrationTestSuite) TestRegister_DuplicateEmail() {
	_, req := s.register()

	dup := registerRequest()
	dup.Email = req.Email

	_, err := s.AuthService.Register(s.Ctx, dup)
	s.Require().ErrorIs(err, repository.ErrUserAlreadyExists)
}

func (s *IntegrationTestSuite) TestRegister_WeakPasswordPersistsNothing() {
	req := registerRequest()
	req.Password = "letters only"
	req.PasswordConfirm = "letters only"

	_, err := s.AuthService.Register(s.Ctx, req)
	s.Require().ErrorIs(err, validator.ErrPasswordTooWeak)

	_, err = s.UserRepo.GetByEmail(s.Ctx, req.Email)
	s.Require().ErrorIs(err, repository.ErrUserNotFound)
}

func (s *IntegrationTestSuite) TestRegister_OutboxEventPublished() {
	user, _ := s.register()

	var outboxId int64
	err := s.DbPool.QueryRow(
		s.Ctx,
		`SELECT id FROM outbox WHERE aggregate_id = $1 AND event_type = 'UserRegistered'`,
		fmt.Sprintf("%d", user.ID),
	).Scan(&outboxId)
	s.Require().NoError(err)

	s.Require().Eventually(func() bool {
		var publishedAt *time.Time

		err := s.DbPool.QueryRow(
			s.Ctx,
			`SELECT published_at FROM outbox WHERE id = $1`,
			outboxId,
		).Scan(&publishedAt)

		return err == nil && publishedAt != nil
	}, 5*time.Second, 100*time.Millisecond)
}

func (s *IntegrationTestSuite) TestLogin_Success() {
	user, req := s.register()

	pair, err := s.AuthService.Login(s.Ctx, req.Email, req.Password)
	s.Require().NoError(err)
	s.Require().NotEmpty(pair.AccessToken)
	s.Require().NotEmpty(pair.RefreshToken)

	claims, err := jwtutil.ValidateToken(pair.AccessToken, false)
	s.Require().NoError(err)
	s.Require().Equal(user.ID, claims.UserID)
	s.Require().False(claims.IsAdmin)

	session, err := s.UserRepo.FindSessionByToken(s.Ctx, pair.RefreshToken)
	s.Require().NoError(err)
	s.Require().Equal(user.ID, session.UserID)
}

func (s *IntegrationTestSuite) TestLogin_WrongPassword() {
	_, req := s.register()

	_, err := s.AuthService.Login(s.Ctx, req.Email, "wr0ngpassword")
	s.Require().ErrorIs(err, service.ErrInvalidCredentials)
}

func (s *IntegrationTestSuite) TestLogin_UnknownEmail() {
	_, err := s.AuthService.Login(s.Ctx, "nobody@example.com", "sup3rsecret")
	s.Require().ErrorIs(err, service.ErrInvalidCredentials)
}

func (s *IntegrationTestSuite) TestRefresh_RotatesSession() {
	_, req := s.register()

	pair, err := s.AuthService.Login(s.Ctx, req.Email, req.Password)
	s.Require().NoError(err)

	rotated, err := s.AuthService.Refresh(s.Ctx, pair.RefreshToken)
	s.Require().NoError(err)
	s.Require().NotEqual(pair.RefreshToken, rotated.RefreshToken)

	// old session is gone, the new one is live
	_, err = s.UserRepo.FindSessionByToken(s.Ctx, pair.RefreshToken)
	s.Require().ErrorIs(err, repository.ErrSessionNotFound)

	_, err = s.UserRepo.FindSessionByToken(s.Ctx, rotated.RefreshToken)
	s.Require().NoError(err)

	// a rotated-out token cannot be replayed
	_, err = s.AuthService.Refresh(s.Ctx, pair.RefreshToken)
	s.Require().ErrorIs(err, repository.ErrSessionNotFound)
}

func (s *IntegrationTestSuite) TestRefresh_RejectsAccessToken() {
	_, req := s.register()

	pair, err := s.AuthService.Login(s.Ctx, req.Email, req.Password)
	s.Require().NoError(err)

	_, err = s.AuthService.Refresh(s.Ctx, pair.AccessToken)
	s.Require().Error(err)
}

func (s *IntegrationTestSuite) TestLogout() {
	_, req := s.register()

	pair, err := s.AuthService.Login(s.Ctx, req.Email, req.Password)
	s.Require().NoError(err)

	s.Require().NoError(s.AuthService.Logout(s.Ctx, pair.RefreshToken))

	_, err = s.UserRepo.FindSessionByToken(s.Ctx, pair.RefreshToken)
	s.Require().ErrorIs(err, repository.ErrSessionNotFound)
}

func (s *IntegrationTestSuite) TestUpdateProfile() {
	user, _ := s.register()

	firstName := "Camila"
	city := "Medellin"
	bio := "coffee person"
	updated, err := s.AuthService.UpdateProfile(s.Ctx, user.ID, &service.UpdateProfileRequest{
		FirstName: &firstName,
		City:      &city,
		Bio:       &bio,
	})
	s.Require().NoError(err)
	s.Require().Equal("Camila", updated.FirstName)

	stored, err := s.AuthService.GetUserInfo(s.Ctx, user.ID)
	s.Require().NoError(err)
	s.Require().Equal("Camila", stored.FirstName)
	s.Require().Equal("Medellin", stored.City)
	s.Require().Equal("coffee person", stored.Bio)

	// untouched fields survive a partial update
	s.Require().Equal("Barreto", stored.LastName)
	s.Require().Equal("+57 300 000 0000", stored.Phone)
}
