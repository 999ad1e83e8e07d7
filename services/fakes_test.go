package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/HSouheill/noteshive_backend/models"
	"github.com/HSouheill/noteshive_backend/repositories"
)

func init() {
	models.OTPHashCost = bcrypt.MinCost
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// memoryUsers is an in-memory UserStore keyed by email.
type memoryUsers struct {
	mu      sync.Mutex
	byEmail map[string]models.User
	failAll error
	writes  int

	// run once, just before the next Create or SaveIfOTP takes the lock
	beforeCreate    func()
	beforeSaveIfOTP func()
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byEmail: map[string]models.User{}}
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return nil, m.failAll
	}
	u, ok := m.byEmail[email]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if u.OTP != nil {
		otp := *u.OTP
		u.OTP = &otp
	}
	return &u, nil
}

func (m *memoryUsers) Create(_ context.Context, user *models.User) error {
	if hook := m.beforeCreate; hook != nil {
		m.beforeCreate = nil
		hook()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return m.failAll
	}
	if _, ok := m.byEmail[user.Email]; ok {
		return repositories.ErrDuplicateEmail
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	m.put(user)
	return nil
}

func (m *memoryUsers) Save(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return m.failAll
	}
	if _, ok := m.byEmail[user.Email]; !ok {
		return repositories.ErrNotFound
	}
	m.put(user)
	return nil
}

func (m *memoryUsers) SaveIfOTP(_ context.Context, user *models.User, expectedHash string) error {
	if hook := m.beforeSaveIfOTP; hook != nil {
		m.beforeSaveIfOTP = nil
		hook()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.byEmail[user.Email]
	if !ok {
		return repositories.ErrNotFound
	}
	if stored.OTP == nil || stored.OTP.CodeHash != expectedHash {
		return repositories.ErrStaleWrite
	}
	m.put(user)
	return nil
}

func (m *memoryUsers) put(user *models.User) {
	u := *user
	if u.OTP != nil {
		otp := *u.OTP
		u.OTP = &otp
	}
	m.byEmail[u.Email] = u
	m.writes++
}

func (m *memoryUsers) seed(user models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(&user)
}

func (m *memoryUsers) get(email string) (models.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byEmail[email]
	return u, ok
}

type fakeSigner struct {
	err error
	n   int
}

func (s *fakeSigner) Sign(userID, email string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.n++
	return fmt.Sprintf("token-%s-%d", userID, s.n), nil
}

type sentOTP struct {
	to   string
	code string
}

type fakeMailer struct {
	mu   sync.Mutex
	err  error
	sent []sentOTP
}

func (m *fakeMailer) SendOTP(_ context.Context, to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentOTP{to: to, code: code})
	return nil
}

func (m *fakeMailer) last() sentOTP {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentOTP{}
	}
	return m.sent[len(m.sent)-1]
}

type fakeVerifier struct {
	identity *GoogleIdentity
	err      error
}

func (v *fakeVerifier) Verify(_ context.Context, idToken string) (*GoogleIdentity, error) {
	if v.err != nil {
		return nil, v.err
	}
	if v.identity == nil {
		return nil, errors.New("no identity")
	}
	id := *v.identity
	return &id, nil
}

type countingLimiter struct {
	limit  int
	hits   map[string]int
	err    error
	resets int
}

func newCountingLimiter(limit int) *countingLimiter {
	return &countingLimiter{limit: limit, hits: map[string]int{}}
}

func (l *countingLimiter) Hit(_ context.Context, email string) error {
	if l.err != nil {
		return l.err
	}
	l.hits[email]++
	if l.hits[email] > l.limit {
		return ErrTooManyAttempts
	}
	return nil
}

func (l *countingLimiter) Reset(_ context.Context, email string) error {
	l.resets++
	delete(l.hits, email)
	return nil
}

type recordedMetrics struct {
	issued        []string
	verifications []string
	google        int
}

func (m *recordedMetrics) OTPIssued(flow string)          { m.issued = append(m.issued, flow) }
func (m *recordedMetrics) OTPVerification(outcome string) { m.verifications = append(m.verifications, outcome) }
func (m *recordedMetrics) GoogleSignIn()                  { m.google++ }

// sequenceCodes hands out the given codes in order.
func sequenceCodes(codes ...string) func() (string, error) {
	i := 0
	return func() (string, error) {
		if i >= len(codes) {
			return "", errors.New("no more codes")
		}
		code := codes[i]
		i++
		return code, nil
	}
}
