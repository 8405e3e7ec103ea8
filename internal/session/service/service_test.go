package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/mock/gomock"

	"webshop/internal/identity"
	"webshop/internal/session/models"
	"webshop/internal/session/scheduler"
	dErrors "webshop/pkg/domain-errors"
)

func (s *ManagerSuite) TestAuthenticatedSessionStreamsProfileAndFareContracts() {
	s.putProfile("42")
	s.putFareContract("42", "fc-1")
	s.start()
	user := testUser()
	s.idp.EXPECT().FetchCredential(gomock.Any(), user).Return(credential("42", models.ProviderPhone, false), nil)

	s.emit(&user)

	info := s.waitFor(models.NotifySignInInfo, 1)[0].Payload.(models.SignInInfo)
	s.Equal("42", info.AccountID)
	s.Equal("id-token", info.Token)
	s.Equal("Nordmann", info.Profile.LastName)

	contracts := s.waitFor(models.NotifyFareContracts, 1)[0].Payload.(models.FareContracts)
	s.Require().Len(contracts.Contracts, 1)
	s.Equal("fc-1", contracts.Contracts[0].ID)
	s.Equal(int64(1700000000000), contracts.Contracts[0].ValidFrom)
	s.Equal(int64(1700003600000), contracts.Contracts[0].ValidTo)

	s.Equal(models.StateAuthenticated, s.manager.State())
	s.True(loggedIn(s.T(), s.local, s.installID))
	s.True(s.manager.RefreshPending())
	deadline, ok := s.clock.NextDeadline()
	s.Require().True(ok)
	s.Equal(testNow.Add(time.Hour-scheduler.DefaultLead), deadline)
}

func (s *ManagerSuite) TestProfileChangesRepublishWithoutReopeningFareContracts() {
	s.putProfile("42")
	s.start()
	user := testUser()
	s.idp.EXPECT().FetchCredential(gomock.Any(), user).Return(credential("42", models.ProviderPhone, false), nil)
	s.emit(&user)
	s.waitFor(models.NotifySignInInfo, 1)
	s.waitFor(models.NotifyFareContracts, 1)

	s.putProfile("42")
	s.waitFor(models.NotifySignInInfo, 2)
	s.settle()
	s.Equal(1, s.notifier.count(models.NotifyFareContracts))
	s.Equal(1, s.docs.WatcherCount("customers/42/fareContracts"))
}

func (s *ManagerSuite) TestMissingAccountIDStartsOnboardingWithoutSubscriptions() {
	s.start()
	user := testUser()
	s.idp.EXPECT().FetchCredential(gomock.Any(), user).Return(credential("", models.ProviderPhone, false), nil)

	s.emit(&user)

	start := s.waitFor(models.NotifyOnboardingStart, 1)[0].Payload.(models.OnboardingStart)
	s.Equal(models.OnboardingStart{Token: "id-token", Email: "ola@example.com", Phone: "+4799999999"}, start)
	s.Equal(models.StateOnboarding, s.manager.State())
	s.False(s.profiles.Active())
	s.False(s.contracts.Active())
	s.False(s.manager.RefreshPending())
	s.False(loggedIn(s.T(), s.local, s.installID))
}

func (s *ManagerSuite) TestUnverifiedPasswordAccountMustVerifyEmail() {
	s.start()
	user := testUser()
	s.idp.EXPECT().FetchCredential(gomock.Any(), user).Return(credential("42", models.ProviderPassword, false), nil)

	s.emit(&user)

	verify := s.waitFor(models.NotifyVerifyUserStart, 1)[0].Payload.(models.VerifyUserStart)
	s.Equal("ola@example.com", verify.Email)
	s.Equal(models.StateVerifyEmail, s.manager.State())
	s.False(s.profiles.Active())
}

func (s *ManagerSuite) TestVerifiedPasswordAccountSignsIn() {
	s.putProfile("42")
	s.start()
	user := testUser()
	s.idp.EXPECT().FetchCredential(gomock.Any(), user).Return(credential("42", models.ProviderPassword, true), nil)

	s.emit(&user)

	s.waitFor(models.NotifySignInInfo, 1)
	s.Zero(s.notifier.count(models.NotifyVerifyUserStart))
}

func (s *ManagerSuite) TestMissingProfileStartsOnboarding() {
	s.start()
	user := testUser()
	s.idp.EXPECT().FetchCredential(gomock.Any(), user).Return(credential("42", models.ProviderPhone, false), nil)

	s.emit(&user)

	s.waitFor(models.NotifyOnboardingStart, 1)
	s.Eventually(func() bool { return s.manager.State() == models.StateOnboarding }, time.Second, 5*time.Millisecond)
	s.False(s.contracts.Active())
	s.Zero(s.notifier.count(models.NotifySignInInfo))
}

func (s *ManagerSuite) TestOnboardingDoneIgnoresStaleMissingProfile() {
	s.start()
	user := testUser()
	s.idp.EXPECT().FetchCredential(gomock.Any(), user).Return(credential("42", models.ProviderPhone, false), nil).Times(2)
	s.emit(&user)
	s.waitFor(models.NotifyOnboardingStart, 1)

	s.Require().NoError(s.manager.OnboardingDone(s.ctx))
	s.settle()
	s.Equal(1, s.notifier.count(models.NotifyOnboardingStart))

	s.putProfile("42")
	s.waitFor(models.NotifySignInInfo, 1)
	s.Equal(models.StateAuthenticated, s.manager.State())
}

func (s *ManagerSuite) TestOnboardingRefreshAuthRepromptsOnMissingProfile() {
	s.start()
	user := testUser()
	s.idp.EXPECT().FetchCredential(gomock.Any(), user).Return(credential("42", models.ProviderPhone, false), nil).Times(2)
	s.emit(&user)
	s.waitFor(models.NotifyOnboardingStart, 1)

	s.Require().NoError(s.manager.OnboardingRefreshAuth(s.ctx))
	s.waitFor(models.NotifyOnboardingStart, 2)
}

func (s *ManagerSuite) TestOnboardingCallsNeedAnIdentity() {
	s.start()
	s.ErrorIs(s.manager.OnboardingDone(s.ctx), ErrNoPendingIdentity)
	s.True(dErrors.HasCode(s.manager.OnboardingRefreshAuth(s.ctx), dErrors.CodeInvalidState))
}

func (s *ManagerSuite) TestStaleSessionEmitsSingleNotice() {
	s.Require().NoError(s.local.SetLoggedIn(s.ctx, s.installID, true))
	s.idp.EXPECT().Restore(gomock.Any()).DoAndReturn(func(ctx context.Context) error {
		s.emit(nil)
		return nil
	})

	s.Require().NoError(s.manager.Start(s.ctx))

	notices := s.notifier.ofType(models.NotifySignInError)
	s.Require().Len(notices, 1)
	s.Equal(models.LoggedOutNotice, notices[0].Payload.(models.ErrorInfo).Message)
	s.False(loggedIn(s.T(), s.local, s.installID))

	s.emit(nil)
	s.Equal(1, s.notifier.count(models.NotifySignInError))
}

func (s *ManagerSuite) TestNoUserWithoutMarkerIsSilent() {
	s.idp.EXPECT().Restore(gomock.Any()).DoAndReturn(func(ctx context.Context) error {
		s.emit(nil)
		return nil
	})
	s.Require().NoError(s.manager.Start(s.ctx))
	s.Empty(s.notifier.ofType(models.NotifySignInError))
	s.Equal(models.StateUnauthenticated, s.manager.State())
}

func (s *ManagerSuite) TestExplicitSignOutIsSilent() {
	s.putProfile("42")
	s.start()
	user := testUser()
	s.idp.EXPECT().FetchCredential(gomock.Any(), user).Return(credential("42", models.ProviderPhone, false), nil)
	s.emit(&user)
	s.waitFor(models.NotifyFareContracts, 1)

	s.idp.EXPECT().SignOut(gomock.Any()).DoAndReturn(func(ctx context.Context) error {
		s.emit(nil)
		return nil
	})
	s.Require().NoError(s.manager.SignOut(s.ctx))

	s.Zero(s.notifier.count(models.NotifySignInError))
	s.Equal(models.StateUnauthenticated, s.manager.State())
	s.False(s.profiles.Active())
	s.False(s.contracts.Active())
	s.False(s.manager.RefreshPending())
	s.False(loggedIn(s.T(), s.local, s.installID))
	s.Zero(s.docs.WatcherCount("customers/42"))
}

func (s *ManagerSuite) TestInsufficientPermissionsCleansUpWithSingleNotice() {
	s.putProfile("42")
	s.start()
	user := testUser()
	s.idp.EXPECT().FetchCredential(gomock.Any(), user).Return(credential("42", models.ProviderPhone, false), nil)
	s.emit(&user)
	s.waitFor(models.NotifyFareContracts, 1)

	signedOut := make(chan struct{})
	s.idp.EXPECT().SignOut(gomock.Any()).DoAndReturn(func(ctx context.Context) error {
		s.emit(nil)
		close(signedOut)
		return nil
	})
	s.Require().NoError(s.docs.Revoke(s.ctx, "customers/42"))

	select {
	case <-signedOut:
	case <-time.After(time.Second):
		s.FailNow("identity provider was not signed out")
	}
	s.settle()
	notices := s.notifier.ofType(models.NotifySignInError)
	s.Require().Len(notices, 1)
	s.Equal(models.LoggedOutNotice, notices[0].Payload.(models.ErrorInfo).Message)
	s.Equal(models.StateUnauthenticated, s.manager.State())
	s.False(s.manager.RefreshPending())
	s.False(loggedIn(s.T(), s.local, s.installID))
}

func (s *ManagerSuite) TestFetchFailureRetriesAfterDelay() {
	s.putProfile("42")
	s.start()
	user := testUser()
	gomock.InOrder(
		s.idp.EXPECT().FetchCredential(gomock.Any(), user).Return(models.Credential{}, &identity.ProviderError{Code: identity.CodeNetwork}),
		s.idp.EXPECT().FetchCredential(gomock.Any(), user).Return(credential("42", models.ProviderPhone, false), nil),
	)

	s.emit(&user)
	s.True(s.manager.RefreshPending())
	s.Zero(s.notifier.count(models.NotifySignInInfo))

	s.clock.Advance(scheduler.DefaultRetryDelay)
	s.waitFor(models.NotifySignInInfo, 1)
}

func (s *ManagerSuite) TestRejectedCredentialDoesNotRetry() {
	s.start()
	user := testUser()
	s.idp.EXPECT().FetchCredential(gomock.Any(), user).Return(models.Credential{}, identity.ErrNoCurrentUser)

	s.emit(&user)
	s.False(s.manager.RefreshPending())
}

func (s *ManagerSuite) TestRefreshTimerRefetchesCredential() {
	s.putProfile("42")
	s.start()
	user := testUser()
	first := credential("42", models.ProviderPhone, false)
	second := first
	second.Token = "id-token-2"
	second.ExpiresAt = testNow.Add(2 * time.Hour)
	gomock.InOrder(
		s.idp.EXPECT().FetchCredential(gomock.Any(), user).Return(first, nil),
		s.idp.EXPECT().FetchCredential(gomock.Any(), user).Return(second, nil),
	)
	s.emit(&user)
	s.waitFor(models.NotifySignInInfo, 1)

	s.clock.Advance(time.Hour - scheduler.DefaultLead - time.Nanosecond)
	s.settle()
	s.Equal(1, s.notifier.count(models.NotifySignInInfo))

	s.clock.Advance(time.Nanosecond)
	infos := s.waitFor(models.NotifySignInInfo, 2)
	s.Equal("id-token-2", infos[1].Payload.(models.SignInInfo).Token)
}

func (s *ManagerSuite) TestRefreshVerifyFailureRetries() {
	s.putProfile("42")
	s.start()
	user := testUser()
	refreshed := credential("42", models.ProviderPhone, false)
	refreshed.Token = "id-token-2"
	refreshed.ExpiresAt = testNow.Add(2 * time.Hour)
	gomock.InOrder(
		s.idp.EXPECT().FetchCredential(gomock.Any(), user).Return(credential("42", models.ProviderPhone, false), nil),
		s.idp.EXPECT().FetchCredential(gomock.Any(), user).Return(models.Credential{},
			&identity.ProviderError{Code: identity.CodeInvalidIDToken, Detail: "token has invalid claims: token used before issued"}),
		s.idp.EXPECT().FetchCredential(gomock.Any(), user).Return(refreshed, nil),
	)
	s.emit(&user)
	s.waitFor(models.NotifySignInInfo, 1)

	s.clock.Advance(time.Hour - scheduler.DefaultLead)
	s.True(s.manager.RefreshPending(), "verify failure must arm a retry")
	s.Zero(s.notifier.count(models.NotifySignInError))

	s.clock.Advance(scheduler.DefaultRetryDelay)
	infos := s.waitFor(models.NotifySignInInfo, 2)
	s.Equal("id-token-2", infos[1].Payload.(models.SignInInfo).Token)
	s.True(s.manager.RefreshPending())
	s.Equal(models.StateAuthenticated, s.manager.State())
}

func (s *ManagerSuite) TestRepeatedUserPresentKeepsSingleWatches() {
	s.putProfile("42")
	s.putFareContract("42", "fc-1")
	s.start()
	user := testUser()
	s.idp.EXPECT().FetchCredential(gomock.Any(), user).
		Return(credential("42", models.ProviderPhone, false), nil).Times(3)

	for i := 1; i <= 3; i++ {
		s.emit(&user)
		s.waitFor(models.NotifySignInInfo, i)
		s.waitFor(models.NotifyFareContracts, i)
	}
	s.settle()

	s.Equal(1, s.docs.WatcherCount("customers/42"))
	s.Equal(1, s.docs.WatcherCount("customers/42/fareContracts"))
	s.Equal(models.StateAuthenticated, s.manager.State())
}

func (s *ManagerSuite) TestDroppedWatchesAreReopened() {
	s.putProfile("42")
	s.putFareContract("42", "fc-1")
	s.start()
	user := testUser()
	s.idp.EXPECT().FetchCredential(gomock.Any(), user).Return(credential("42", models.ProviderPhone, false), nil)
	s.emit(&user)
	s.waitFor(models.NotifyFareContracts, 1)

	s.Equal(2, s.docs.Interrupt("customers/42", errors.New("connection reset")))
	s.settle()
	s.Equal(0, s.docs.WatcherCount("customers/42"))
	s.Equal(0, s.docs.WatcherCount("customers/42/fareContracts"))
	s.Equal(models.StateAuthenticated, s.manager.State())

	s.clock.Advance(scheduler.DefaultRetryDelay)
	s.waitFor(models.NotifySignInInfo, 2)
	s.waitFor(models.NotifyFareContracts, 2)
	s.Equal(1, s.docs.WatcherCount("customers/42"))
	s.Equal(1, s.docs.WatcherCount("customers/42/fareContracts"))
	s.Zero(s.notifier.count(models.NotifySignInError))
}

func (s *ManagerSuite) TestReopenAfterStopIsDropped() {
	s.putProfile("42")
	s.start()
	user := testUser()
	s.idp.EXPECT().FetchCredential(gomock.Any(), user).Return(credential("42", models.ProviderPhone, false), nil)
	s.emit(&user)
	s.waitFor(models.NotifySignInInfo, 1)

	s.docs.Interrupt("customers/42", errors.New("connection reset"))
	s.settle()
	s.manager.Stop()

	s.clock.Advance(scheduler.DefaultRetryDelay)
	s.settle()
	s.Equal(0, s.docs.WatcherCount("customers/42"))
	s.Equal(1, s.notifier.count(models.NotifySignInInfo))
}

func (s *ManagerSuite) TestSupersededFetchIsDiscarded() {
	s.putProfile("42")
	s.start()
	user := testUser()
	release := make(chan struct{})
	entered := make(chan struct{})
	s.idp.EXPECT().FetchCredential(gomock.Any(), user).DoAndReturn(func(ctx context.Context, u models.User) (models.Credential, error) {
		close(entered)
		<-release
		return credential("42", models.ProviderPhone, false), nil
	})
	s.idp.EXPECT().SignOut(gomock.Any()).Return(nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.emit(&user)
	}()
	<-entered
	s.Require().NoError(s.manager.SignOut(s.ctx))
	close(release)
	<-done
	s.settle()

	s.Zero(s.notifier.count(models.NotifySignInInfo))
	s.Equal(models.StateUnauthenticated, s.manager.State())
	s.False(s.profiles.Active())
	s.False(loggedIn(s.T(), s.local, s.installID))
}

func (s *ManagerSuite) TestStopKeepsMarker() {
	s.putProfile("42")
	s.start()
	user := testUser()
	s.idp.EXPECT().FetchCredential(gomock.Any(), user).Return(credential("42", models.ProviderPhone, false), nil)
	s.emit(&user)
	s.waitFor(models.NotifySignInInfo, 1)

	s.manager.Stop()

	s.True(loggedIn(s.T(), s.local, s.installID))
	s.False(s.profiles.Active())
	s.False(s.contracts.Active())
	s.False(s.manager.RefreshPending())
	s.Zero(s.clock.PendingCount())
}

func (s *ManagerSuite) TestStartTwiceFails() {
	s.start()
	s.ErrorIs(s.manager.Start(s.ctx), ErrAlreadyStarted)
}

func (s *ManagerSuite) TestRestoreFailureIsReported() {
	s.idp.EXPECT().Restore(gomock.Any()).Return(errors.New("dial tcp: timeout"))
	err := s.manager.Start(s.ctx)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
}
