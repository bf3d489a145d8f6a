package auth

import (
	"errors"
	"log"
	"strings"

	"diradmin/internal/config"
	"diradmin/internal/model"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for every authentication failure. The
// caller cannot tell an unknown username from a wrong password; the process
// log still records which it was.
var ErrInvalidCredentials = errors.New("invalid username or password")

// dummyHash is compared against when the username is unknown, so both
// failure paths cost one bcrypt verification.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// AccountStore holds the console's administrative accounts. The table is
// built once from configuration and never changes for the process lifetime.
type AccountStore struct {
	accounts map[string]model.AdminAccount
}

func NewAccountStore(admins []config.AdminAccountConfig) *AccountStore {
	accounts := make(map[string]model.AdminAccount, len(admins))
	for _, a := range admins {
		username := strings.ToLower(strings.TrimSpace(a.Username))
		accounts[username] = model.AdminAccount{
			Username:     username,
			PasswordHash: a.PasswordHash,
			Role:         a.Role,
			DisplayName:  a.DisplayName,
		}
	}
	return &AccountStore{accounts: accounts}
}

// Get looks up an account by case-normalized username.
func (s *AccountStore) Get(username string) (model.AdminAccount, bool) {
	acct, ok := s.accounts[strings.ToLower(strings.TrimSpace(username))]
	return acct, ok
}

// Authenticate verifies a username/password pair against the account table.
func (s *AccountStore) Authenticate(username, password string) (model.AdminAccount, error) {
	acct, ok := s.Get(username)
	if !ok {
		// Burn a compare anyway so the two failures take the same time.
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		log.Printf("login failed: unknown account %q", username)
		return model.AdminAccount{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		log.Printf("login failed: bad password for %q", acct.Username)
		return model.AdminAccount{}, ErrInvalidCredentials
	}
	return acct, nil
}
