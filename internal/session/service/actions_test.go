package service

import (
	"go.uber.org/mock/gomock"

	"webshop/internal/identity"
	"webshop/internal/session/models"
)

func (s *ManagerSuite) TestLoginWithEmailMapsProviderErrors() {
	s.start()
	s.idp.EXPECT().SignInWithPassword(gomock.Any(), "ola@example.com", "wrong").
		Return(&identity.ProviderError{Code: identity.CodeWrongPassword})

	s.manager.LoginWithEmail(s.ctx, "ola@example.com", "wrong")

	errs := s.notifier.ofType(models.NotifyEmailError)
	s.Require().Len(errs, 1)
	info := errs[0].Payload.(models.ErrorInfo)
	s.Equal(identity.CodeWrongPassword, info.Code)
	s.Equal(identity.UserMessage(identity.CodeWrongPassword), info.Message)
}

func (s *ManagerSuite) TestRegisterEmailFailure() {
	s.start()
	s.idp.EXPECT().SignUp(gomock.Any(), "ola@example.com", "pw").
		Return(&identity.ProviderError{Code: identity.CodeEmailExists})

	s.manager.RegisterEmail(s.ctx, "ola@example.com", "pw")

	s.Require().Len(s.notifier.ofType(models.NotifyEmailError), 1)
}

func (s *ManagerSuite) TestResetPassword() {
	s.start()
	s.idp.EXPECT().SendPasswordReset(gomock.Any(), "ola@example.com").Return(nil)

	s.manager.ResetPassword(s.ctx, "ola@example.com")

	sent := s.notifier.ofType(models.NotifyPasswordResetSent)
	s.Require().Len(sent, 1)
	s.Equal(models.PasswordResetSent{Email: "ola@example.com"}, sent[0].Payload)
}

func (s *ManagerSuite) TestStartPhoneLogin() {
	s.start()
	gomock.InOrder(
		s.idp.EXPECT().StartPhoneLogin(gomock.Any(), "99999999", "captcha").Return("+4799999999", nil),
		s.idp.EXPECT().StartPhoneLogin(gomock.Any(), "12", "captcha").
			Return("", &identity.ProviderError{Code: identity.CodeInvalidPhone}),
	)

	s.manager.StartPhoneLogin(s.ctx, "99999999", "captcha")
	s.manager.StartPhoneLogin(s.ctx, "12", "captcha")

	started := s.notifier.ofType(models.NotifyPhoneLoginStarted)
	s.Require().Len(started, 1)
	s.Equal(models.PhoneLoginStarted{Phone: "+4799999999"}, started[0].Payload)

	errs := s.notifier.ofType(models.NotifyPhoneError)
	s.Require().Len(errs, 1)
	s.Equal(identity.MessageInvalidPhone, errs[0].Payload.(models.ErrorInfo).Message)
}

func (s *ManagerSuite) TestConfirmPhoneLoginFailure() {
	s.start()
	s.idp.EXPECT().ConfirmPhoneLogin(gomock.Any(), "000000").
		Return(&identity.ProviderError{Code: identity.CodeInvalidCode})

	s.manager.ConfirmPhoneLogin(s.ctx, "000000")

	errs := s.notifier.ofType(models.NotifyPhoneError)
	s.Require().Len(errs, 1)
	s.Equal(identity.CodeInvalidCode, errs[0].Payload.(models.ErrorInfo).Code)
}

func (s *ManagerSuite) TestResendVerificationUsesHeldEmail() {
	s.start()
	user := testUser()
	s.idp.EXPECT().FetchCredential(gomock.Any(), user).Return(credential("42", models.ProviderPassword, false), nil)
	s.emit(&user)
	s.waitFor(models.NotifyVerifyUserStart, 1)

	s.idp.EXPECT().SendEmailVerification(gomock.Any()).Return(nil)
	s.manager.ResendVerification(s.ctx)

	verify := s.waitFor(models.NotifyVerifyUserStart, 2)
	s.Equal(models.VerifyUserStart{Email: "ola@example.com"}, verify[1].Payload)
}
