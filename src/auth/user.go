package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/crypto/argon2"

	"schemaforge/src/helpers"
)

type PasswordHash struct {
	Hash    []byte `json:"hash"`
	Salt    []byte `json:"salt"`
	Method  string `json:"method"`  // "argon2id"
	Time    uint32 `json:"time"`    // time parameter for Argon2
	Memory  uint32 `json:"memory"`  // memory parameter in KiB
	Threads uint8  `json:"threads"` // threads parameter
	KeyLen  uint32 `json:"keylen"`  // length of the hash in bytes
}

type User struct {
	ID             string
	Username       string
	PasswordHash   PasswordHash
	CreatedAt      time.Time
	LastModifiedAt time.Time
}

// UserStore holds the admin users allowed to open an editing session.
type UserStore struct {
	users []User
	mu    sync.RWMutex
}

func NewUserStore() *UserStore {
	return &UserStore{users: []User{}}
}

// AddUser adds a new user to the store
func (s *UserStore) AddUser(username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existingUser := range s.users {
		if existingUser.Username == username {
			return ErrUserAlreadyExists
		}
	}

	// Generate salt
	salt := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	// Argon2id parameters recommended by OWASP
	timeParam := uint32(1)
	memory := uint32(64 * 1024)
	threads := uint8(4)
	keyLen := uint32(32)
	hash := argon2.IDKey([]byte(password), salt, timeParam, memory, threads, keyLen)

	now := time.Now()
	s.users = append(s.users, User{
		ID:       helpers.GenerateUUID(),
		Username: username,
		PasswordHash: PasswordHash{
			Hash:    hash,
			Salt:    salt,
			Method:  "argon2id",
			Time:    timeParam,
			Memory:  memory,
			Threads: threads,
			KeyLen:  keyLen,
		},
		CreatedAt:      now,
		LastModifiedAt: now,
	})
	return nil
}

// VerifyPassword checks a username/password pair against the store.
func (s *UserStore) VerifyPassword(username, password string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Username != username {
			continue
		}
		ph := user.PasswordHash
		computed := argon2.IDKey([]byte(password), ph.Salt, ph.Time, ph.Memory, ph.Threads, ph.KeyLen)
		return subtle.ConstantTimeCompare(computed, ph.Hash) == 1
	}
	return false
}

// RemoveUser removes a user from the store
func (s *UserStore) RemoveUser(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, user := range s.users {
		if user.Username == username {
			s.users = append(s.users[:i], s.users[i+1:]...)
			return nil
		}
	}
	return ErrUserNotFound
}

// ListUsers returns a list of all usernames
func (s *UserStore) ListUsers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	usernames := make([]string, len(s.users))
	for i, user := range s.users {
		usernames[i] = user.Username
	}
	return usernames
}
