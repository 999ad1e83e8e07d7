package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/noteshive_backend/models"
	"github.com/HSouheill/noteshive_backend/repositories"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// UserStore is the persistence the account lifecycle needs.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Save(ctx context.Context, user *models.User) error
	SaveIfOTP(ctx context.Context, user *models.User, expectedHash string) error
}

type SessionSigner interface {
	Sign(userID, email string) (string, error)
}

type OTPMailer interface {
	SendOTP(ctx context.Context, to, code string) error
}

// AuthMetrics receives OTP lifecycle events.
type AuthMetrics interface {
	OTPIssued(flow string)
	OTPVerification(outcome string)
	GoogleSignIn()
}

// VerifyResult is returned by a successful OTP verification.
type VerifyResult struct {
	Token   string
	Profile models.UserProfile
	// Created is true when this verification promoted signup data
	Created bool
}

type GoogleSignInResult struct {
	Token string
	User  *models.User
}

// AccountService owns the account record and its OTP transitions:
// signup, login, resend, verification and Google sign-in.
type AccountService struct {
	users    UserStore
	signer   SessionSigner
	mailer   OTPMailer
	verifier IdentityVerifier
	limiter  AttemptLimiter
	metrics  AuthMetrics
	logger   *logrus.Entry

	now          func() time.Time
	generateCode func() (string, error)
}

type AccountOption func(*AccountService)

func WithAttemptLimiter(l AttemptLimiter) AccountOption {
	return func(s *AccountService) {
		if l != nil {
			s.limiter = l
		}
	}
}

func WithAuthMetrics(m AuthMetrics) AccountOption {
	return func(s *AccountService) {
		if m != nil {
			s.metrics = m
		}
	}
}

func WithClock(now func() time.Time) AccountOption {
	return func(s *AccountService) { s.now = now }
}

func WithCodeGenerator(gen func() (string, error)) AccountOption {
	return func(s *AccountService) { s.generateCode = gen }
}

func NewAccountService(users UserStore, signer SessionSigner, mailer OTPMailer, verifier IdentityVerifier, logger *logrus.Logger, opts ...AccountOption) *AccountService {
	s := &AccountService{
		users:        users,
		signer:       signer,
		mailer:       mailer,
		verifier:     verifier,
		limiter:      noopLimiter{},
		metrics:      noopMetrics{},
		logger:       logger.WithField("component", "auth"),
		now:          time.Now,
		generateCode: models.GenerateOTPCode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) (string, error) {
	email = NormalizeEmail(email)
	if !emailPattern.MatchString(email) {
		return "", newError(ErrValidation, "Invalid email", nil)
	}
	return email, nil
}

// IssueOTPForLogin sends a fresh OTP to an existing account and returns its email.
func (s *AccountService) IssueOTPForLogin(ctx context.Context, email string) (string, error) {
	return s.issueOTP(ctx, email, "login", "User not found. Please sign up first.", "Login failed")
}

// ResendOTP re-issues an OTP for any existing account, verified or not.
func (s *AccountService) ResendOTP(ctx context.Context, email string) (string, error) {
	return s.issueOTP(ctx, email, "resend", "User not found", "Failed to resend OTP")
}

// issueOTP persists the new code before sending it, so a failed delivery
// still leaves a valid code behind.
func (s *AccountService) issueOTP(ctx context.Context, email, flow, notFoundMsg, failMsg string) (string, error) {
	email, err := validEmail(email)
	if err != nil {
		return "", err
	}
	log := s.logger.WithFields(logrus.Fields{"email": email, "flow": flow})

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", newError(ErrNotFound, notFoundMsg, nil)
		}
		log.WithError(err).Error("failed to load account")
		return "", newError(ErrDependency, failMsg, err)
	}

	code, otp, err := s.newOTP()
	if err != nil {
		log.WithError(err).Error("failed to generate OTP")
		return "", newError(ErrDependency, failMsg, err)
	}
	user.OTP = otp
	if err := s.users.Save(ctx, user); err != nil {
		log.WithError(err).Error("failed to store OTP")
		return "", newError(ErrDependency, failMsg, err)
	}

	if err := s.mailer.SendOTP(ctx, email, code); err != nil {
		log.WithError(err).Error("failed to send OTP email")
		return "", newError(ErrDelivery, "Failed to send OTP email", err)
	}

	s.metrics.OTPIssued(flow)
	log.Info("OTP issued")
	return user.Email, nil
}

// IssueOTPForSignup stages signup data on a new or still-pending account and
// sends it an OTP. Accounts that were verified before are rejected.
func (s *AccountService) IssueOTPForSignup(ctx context.Context, name, email, dob string) error {
	email, err := validEmail(email)
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	dob = strings.TrimSpace(dob)
	if name == "" || dob == "" {
		return newError(ErrValidation, "Name and date of birth are required", nil)
	}
	log := s.logger.WithFields(logrus.Fields{"email": email, "flow": "signup"})

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		log.WithError(err).Error("failed to load account")
		return newError(ErrDependency, "Signup failed", err)
	}
	if user != nil && user.IsActive() {
		return newError(ErrConflict, "Email already registered", nil)
	}

	code, otp, err := s.newOTP()
	if err != nil {
		log.WithError(err).Error("failed to generate OTP")
		return newError(ErrDependency, "Signup failed", err)
	}

	// nothing is stored for an address we cannot reach
	if err := s.mailer.SendOTP(ctx, email, code); err != nil {
		log.WithError(err).Error("failed to send OTP email")
		return newError(ErrDelivery, "Failed to send OTP email", err)
	}

	if user == nil {
		user = &models.User{Email: email}
		stagePending(user, name, dob, otp)
		err = s.users.Create(ctx, user)
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			// a concurrent signup created the account first
			user, err = s.users.FindByEmail(ctx, email)
			if err == nil {
				if user.IsActive() {
					return newError(ErrConflict, "Email already registered", nil)
				}
				stagePending(user, name, dob, otp)
				err = s.users.Save(ctx, user)
			}
		}
	} else {
		stagePending(user, name, dob, otp)
		err = s.users.Save(ctx, user)
	}
	if err != nil {
		log.WithError(err).Error("failed to store signup")
		return newError(ErrDependency, "Signup failed", err)
	}

	s.metrics.OTPIssued("signup")
	log.Info("signup OTP issued")
	return nil
}

func stagePending(user *models.User, name, dob string, otp *models.OTP) {
	user.PendingName = name
	user.PendingDateOfBirth = dob
	user.OTP = otp
}

// VerifyOTP consumes a valid OTP, promotes pending signup data and issues a
// session token.
func (s *AccountService) VerifyOTP(ctx context.Context, email, code string) (*VerifyResult, error) {
	email = NormalizeEmail(email)
	if email == "" || code == "" {
		return nil, newError(ErrValidation, "Email and OTP required", nil)
	}
	log := s.logger.WithField("email", email)
	invalid := newError(ErrInvalidOrExpired, "Invalid or expired OTP", nil)

	if err := s.limiter.Hit(ctx, email); err != nil {
		if errors.Is(err, ErrTooManyAttempts) {
			s.metrics.OTPVerification("throttled")
			return nil, newError(ErrTooManyAttempts, "Too many OTP attempts. Please try again later.", nil)
		}
		// limiter outages must not lock users out
		log.WithError(err).Warn("OTP attempt limiter unavailable")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.metrics.OTPVerification("invalid")
			return nil, invalid
		}
		log.WithError(err).Error("failed to load account")
		return nil, newError(ErrDependency, "OTP verification failed", err)
	}

	if user.OTP == nil || !user.OTP.Matches(code) || user.OTP.Expired(s.now()) {
		s.metrics.OTPVerification("invalid")
		return nil, invalid
	}
	matchedHash := user.OTP.CodeHash

	token, err := s.signer.Sign(user.ID.Hex(), user.Email)
	if err != nil {
		log.WithError(err).Error("failed to sign session token")
		return nil, newError(ErrDependency, "OTP verification failed", err)
	}

	created := user.PromotePendingProfile()
	user.OTP = nil
	user.SessionToken = token

	if err := s.users.SaveIfOTP(ctx, user, matchedHash); err != nil {
		if errors.Is(err, repositories.ErrStaleWrite) || errors.Is(err, repositories.ErrNotFound) {
			// the code was consumed or replaced by a concurrent request
			s.metrics.OTPVerification("invalid")
			return nil, invalid
		}
		log.WithError(err).Error("failed to store verification")
		return nil, newError(ErrDependency, "OTP verification failed", err)
	}

	if err := s.limiter.Reset(ctx, email); err != nil {
		log.WithError(err).Warn("failed to reset OTP attempts")
	}
	s.metrics.OTPVerification("success")
	log.WithField("created", created).Info("OTP verified")

	return &VerifyResult{Token: token, Profile: user.Profile(), Created: created}, nil
}

// GoogleSignIn verifies a Google ID token and signs the matching account in,
// creating it on first use. Stored name and picture take precedence over the
// ones provided by Google or the client.
func (s *AccountService) GoogleSignIn(ctx context.Context, idToken string, data *models.GoogleUserData) (*GoogleSignInResult, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return nil, newError(ErrValidation, "ID token required", nil)
	}

	identity, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		s.logger.WithError(err).Warn("Google token rejected")
		return nil, newError(ErrAuthFailed, "Google authentication failed", err)
	}
	email := NormalizeEmail(identity.Email)
	if email == "" {
		return nil, newError(ErrValidation, "Email not found in Google account", nil)
	}
	log := s.logger.WithFields(logrus.Fields{"email": email, "flow": "google"})

	if data == nil {
		data = &models.GoogleUserData{}
	}
	name := firstNonEmpty(data.Name, identity.Name)
	picture := firstNonEmpty(data.Picture, identity.Picture)

	user, err := s.users.FindByEmail(ctx, email)
	isNew := errors.Is(err, repositories.ErrNotFound)
	if err != nil && !isNew {
		log.WithError(err).Error("failed to load account")
		return nil, newError(ErrDependency, "Google authentication failed", err)
	}
	if isNew {
		user = &models.User{ID: primitive.NewObjectID(), Email: email}
	}
	if user.Name == "" {
		user.Name = name
	}
	if user.Picture == "" {
		user.Picture = picture
	}
	user.GoogleID = identity.Subject

	token, err := s.signer.Sign(user.ID.Hex(), user.Email)
	if err != nil {
		log.WithError(err).Error("failed to sign session token")
		return nil, newError(ErrDependency, "Google authentication failed", err)
	}
	user.SessionToken = token

	if isNew {
		err = s.users.Create(ctx, user)
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			// lost a creation race; sign in the winner instead
			return s.GoogleSignIn(ctx, idToken, data)
		}
	} else {
		err = s.users.Save(ctx, user)
	}
	if err != nil {
		log.WithError(err).Error("failed to store Google sign-in")
		return nil, newError(ErrDependency, "Google authentication failed", err)
	}

	s.metrics.GoogleSignIn()
	log.WithField("created", isNew).Info("Google sign-in")
	return &GoogleSignInResult{Token: token, User: user}, nil
}

func (s *AccountService) newOTP() (string, *models.OTP, error) {
	code, err := s.generateCode()
	if err != nil {
		return "", nil, err
	}
	otp, err := models.NewOTP(code, s.now())
	if err != nil {
		return "", nil, err
	}
	return code, otp, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

type noopMetrics struct{}

func (noopMetrics) OTPIssued(string)       {}
func (noopMetrics) OTPVerification(string) {}
func (noopMetrics) GoogleSignIn()          {}
