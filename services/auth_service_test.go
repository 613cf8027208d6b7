package services

import (
	"errors"
	"testing"
	"time"

	"repo-browser/database"
	"repo-browser/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// ==================== MOCKS ====================

// MockUserRepository is a mock implementation of UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

var _ UserRepository = (*MockUserRepository)(nil)

func (m *MockUserRepository) CreateUser(email, passwordHash string) (*models.User, error) {
	args := m.Called(email, passwordHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByID(id int64) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockSessionStore is a mock implementation of SessionStore interface
type MockSessionStore struct {
	mock.Mock
}

var _ SessionStore = (*MockSessionStore)(nil)

func (m *MockSessionStore) Create(userID int64, email string) (*models.Session, error) {
	args := m.Called(userID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionStore) Get(sessionID string) (*models.Session, error) {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionStore) Touch(sessionID string) error {
	return m.Called(sessionID).Error(0)
}

func (m *MockSessionStore) Delete(sessionID string) error {
	return m.Called(sessionID).Error(0)
}

func newTestAuthService(users *MockUserRepository, sessions *MockSessionStore) *AuthService {
	return &AuthService{users: users, sessionStore: sessions, hashCost: bcrypt.MinCost}
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

// ==================== TESTS ====================

func TestAuthService_SignUp(t *testing.T) {
	session := &models.Session{ID: "session123", UserID: 1, Email: "user@email.com", ExpiresAt: time.Now().Add(time.Hour)}

	tests := []struct {
		name          string
		email         string
		mockSetup     func(*MockUserRepository, *MockSessionStore)
		expectedError error
	}{
		{
			name:  "Success - Normalizes email and creates session",
			email: "  User@Email.com ",
			mockSetup: func(users *MockUserRepository, sessions *MockSessionStore) {
				users.On("GetUserByEmail", "user@email.com").Return(nil, nil)
				users.On("CreateUser", "user@email.com", mock.AnythingOfType("string")).
					Return(&models.User{ID: 1, Email: "user@email.com"}, nil)
				sessions.On("Create", int64(1), "user@email.com").Return(session, nil)
			},
		},
		{
			name:  "Error - Email already registered",
			email: "user@email.com",
			mockSetup: func(users *MockUserRepository, sessions *MockSessionStore) {
				users.On("GetUserByEmail", "user@email.com").Return(&models.User{ID: 1}, nil)
			},
			expectedError: ErrEmailTaken,
		},
		{
			name:  "Error - Concurrent sign up wins the insert",
			email: "user@email.com",
			mockSetup: func(users *MockUserRepository, sessions *MockSessionStore) {
				users.On("GetUserByEmail", "user@email.com").Return(nil, nil)
				users.On("CreateUser", "user@email.com", mock.AnythingOfType("string")).
					Return(nil, database.ErrDuplicateEmail)
			},
			expectedError: ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			sessions := new(MockSessionStore)
			tt.mockSetup(users, sessions)

			result, err := newTestAuthService(users, sessions).SignUp(tt.email, "password123")

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				assert.Equal(t, int64(1), result.User.ID)
				assert.Equal(t, "session123", result.Session.ID)
			}

			users.AssertExpectations(t)
			sessions.AssertExpectations(t)
		})
	}
}

func TestAuthService_SignUpStoresBcryptHash(t *testing.T) {
	users := new(MockUserRepository)
	sessions := new(MockSessionStore)

	var storedHash string
	users.On("GetUserByEmail", "user@email.com").Return(nil, nil)
	users.On("CreateUser", "user@email.com", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { storedHash = args.String(1) }).
		Return(&models.User{ID: 1, Email: "user@email.com"}, nil)
	sessions.On("Create", int64(1), "user@email.com").Return(&models.Session{ID: "s"}, nil)

	_, err := newTestAuthService(users, sessions).SignUp("user@email.com", "password123")
	require.NoError(t, err)

	assert.NotEqual(t, "password123", storedHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(storedHash), []byte("password123")))
}

func TestAuthService_SignIn(t *testing.T) {
	user := &models.User{ID: 1, Email: "user@email.com", PasswordHash: hashPassword(t, "password123")}

	tests := []struct {
		name          string
		password      string
		mockSetup     func(*MockUserRepository, *MockSessionStore)
		expectedError error
	}{
		{
			name:     "Success - Correct password",
			password: "password123",
			mockSetup: func(users *MockUserRepository, sessions *MockSessionStore) {
				users.On("GetUserByEmail", "user@email.com").Return(user, nil)
				sessions.On("Create", int64(1), "user@email.com").Return(&models.Session{ID: "session123"}, nil)
			},
		},
		{
			name:     "Error - Wrong password",
			password: "wrong-password",
			mockSetup: func(users *MockUserRepository, sessions *MockSessionStore) {
				users.On("GetUserByEmail", "user@email.com").Return(user, nil)
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name:     "Error - Unknown email",
			password: "password123",
			mockSetup: func(users *MockUserRepository, sessions *MockSessionStore) {
				users.On("GetUserByEmail", "user@email.com").Return(nil, nil)
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name:     "Error - Repository failure",
			password: "password123",
			mockSetup: func(users *MockUserRepository, sessions *MockSessionStore) {
				users.On("GetUserByEmail", "user@email.com").Return(nil, errors.New("db down"))
			},
			expectedError: errors.New("look up user: db down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			sessions := new(MockSessionStore)
			tt.mockSetup(users, sessions)

			result, err := newTestAuthService(users, sessions).SignIn("user@email.com", tt.password)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError.Error(), err.Error())
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "session123", result.Session.ID)
			}

			users.AssertExpectations(t)
			sessions.AssertExpectations(t)
		})
	}
}

func TestAuthService_SignOut(t *testing.T) {
	tests := []struct {
		name          string
		sessionID     string
		mockSetup     func(*MockSessionStore)
		expectedError error
	}{
		{
			name:      "Success - Sign out successfully",
			sessionID: "session123",
			mockSetup: func(store *MockSessionStore) {
				store.On("Delete", "session123").Return(nil)
			},
		},
		{
			name:          "Error - No session",
			sessionID:     "",
			mockSetup:     func(store *MockSessionStore) {},
			expectedError: ErrSessionNotFound,
		},
		{
			name:      "Error - Session store delete fails",
			sessionID: "session123",
			mockSetup: func(store *MockSessionStore) {
				store.On("Delete", "session123").Return(errors.New("session error"))
			},
			expectedError: errors.New("session error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := new(MockSessionStore)
			tt.mockSetup(sessions)

			err := newTestAuthService(new(MockUserRepository), sessions).SignOut(tt.sessionID)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError.Error(), err.Error())
			} else {
				assert.NoError(t, err)
			}

			sessions.AssertExpectations(t)
		})
	}
}

func TestAuthService_CurrentUser(t *testing.T) {
	user := &models.User{ID: 1, Email: "user@email.com"}

	tests := []struct {
		name      string
		sessionID string
		mockSetup func(*MockUserRepository, *MockSessionStore)
		wantUser  *models.User
		wantError bool
	}{
		{
			name:      "No cookie is signed out",
			sessionID: "",
			mockSetup: func(*MockUserRepository, *MockSessionStore) {},
		},
		{
			name:      "Unknown session is signed out",
			sessionID: "gone",
			mockSetup: func(users *MockUserRepository, sessions *MockSessionStore) {
				sessions.On("Get", "gone").Return(nil, nil)
			},
		},
		{
			name:      "Valid session resolves the user",
			sessionID: "session123",
			mockSetup: func(users *MockUserRepository, sessions *MockSessionStore) {
				sessions.On("Get", "session123").Return(&models.Session{ID: "session123", UserID: 1}, nil)
				users.On("GetUserByID", int64(1)).Return(user, nil)
				sessions.On("Touch", "session123").Return(nil)
			},
			wantUser: user,
		},
		{
			name:      "Deleted user is signed out",
			sessionID: "session123",
			mockSetup: func(users *MockUserRepository, sessions *MockSessionStore) {
				sessions.On("Get", "session123").Return(&models.Session{ID: "session123", UserID: 1}, nil)
				users.On("GetUserByID", int64(1)).Return(nil, nil)
			},
		},
		{
			name:      "Store failure is an error",
			sessionID: "session123",
			mockSetup: func(users *MockUserRepository, sessions *MockSessionStore) {
				sessions.On("Get", "session123").Return(nil, errors.New("db down"))
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			sessions := new(MockSessionStore)
			tt.mockSetup(users, sessions)

			got, err := newTestAuthService(users, sessions).CurrentUser(tt.sessionID)

			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantUser, got)
			}

			users.AssertExpectations(t)
			sessions.AssertExpectations(t)
		})
	}
}
