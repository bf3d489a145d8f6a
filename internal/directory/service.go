package directory

import (
	"fmt"
	"strings"

	"diradmin/internal/config"
	"diradmin/internal/model"

	"github.com/go-ldap/ldap/v3"
)

const (
	userFilter  = "(objectClass=inetOrgPerson)"
	groupFilter = "(objectClass=groupOfNames)"
)

// Service implements the console's directory operations. Every call opens
// one connection via the Dialer and closes it before returning; results are
// always a fresh read of the directory, never cached.
type Service struct {
	dialer Dialer
	cfg    config.LDAPConfig
}

func NewService(dialer Dialer, cfg config.LDAPConfig) *Service {
	return &Service{dialer: dialer, cfg: cfg}
}

// ListUsers returns every user entry under the users subtree, in the order
// the server returned them.
func (s *Service) ListUsers() ([]model.DirectoryUser, error) {
	conn, err := s.dialer.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer conn.Close()

	req := ldap.NewSearchRequest(
		s.cfg.UsersBase(), ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 0, 0, false,
		userFilter, userAttributes, nil,
	)
	res, err := conn.Search(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOperationFailed, err)
	}

	users := make([]model.DirectoryUser, 0, len(res.Entries))
	for _, entry := range res.Entries {
		users = append(users, UserFromEntry(entry))
	}
	return users, nil
}

// CreateUser validates the payload, refuses to overwrite an existing entry
// and adds the new user. Validation and conflict failures issue no mutation.
func (s *Service) CreateUser(req model.CreateUserRequest) error {
	if err := validateCreate(req); err != nil {
		return err
	}
	req.Username = normalizeUsername(req.Username)

	conn, err := s.dialer.Open()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer conn.Close()

	dn := s.userDN(req.Username)

	exists, err := entryExists(conn, dn)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOperationFailed, err)
	}
	if exists {
		return ErrConflict
	}

	if err := conn.Add(UserAddRequest(dn, req)); err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultEntryAlreadyExists) {
			return ErrConflict
		}
		return fmt.Errorf("%w: %v", ErrOperationFailed, err)
	}
	return nil
}

// DeleteUser removes the entry at the user's DN.
func (s *Service) DeleteUser(username string) error {
	conn, err := s.dialer.Open()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer conn.Close()

	dn := s.userDN(normalizeUsername(username))
	if err := conn.Del(ldap.NewDelRequest(dn, nil)); err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultNoSuchObject) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrOperationFailed, err)
	}
	return nil
}

// ListGroups returns every group entry under the groups subtree.
func (s *Service) ListGroups() ([]model.DirectoryGroup, error) {
	conn, err := s.dialer.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer conn.Close()

	req := ldap.NewSearchRequest(
		s.cfg.GroupsBase(), ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 0, 0, false,
		groupFilter, groupAttributes, nil,
	)
	res, err := conn.Search(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOperationFailed, err)
	}

	groups := make([]model.DirectoryGroup, 0, len(res.Entries))
	for _, entry := range res.Entries {
		groups = append(groups, GroupFromEntry(entry))
	}
	return groups, nil
}

// Probe opens and immediately closes a connection. It reports reachability
// of the directory and nothing else.
func (s *Service) Probe() error {
	conn, err := s.dialer.Open()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	conn.Close()
	return nil
}

// Stats counts user and group entries for the dashboard. An unreachable
// directory is not an error here: counts are zero and the status says so.
func (s *Service) Stats() model.DirectoryStats {
	stats := model.DirectoryStats{Status: "disconnected"}

	conn, err := s.dialer.Open()
	if err != nil {
		return stats
	}
	defer conn.Close()

	users, err := countEntries(conn, s.cfg.UsersBase(), userFilter)
	if err != nil {
		stats.Status = "error"
		return stats
	}
	groups, err := countEntries(conn, s.cfg.GroupsBase(), groupFilter)
	if err != nil {
		stats.Status = "error"
		return stats
	}

	stats.Users = users
	stats.Groups = groups
	stats.Status = "connected"
	return stats
}

func (s *Service) userDN(username string) string {
	return fmt.Sprintf("uid=%s,%s", ldap.EscapeDN(username), s.cfg.UsersBase())
}

// validateCreate checks required fields in a fixed order and reports the
// first one missing.
func validateCreate(req model.CreateUserRequest) error {
	checks := []struct {
		field string
		value string
	}{
		{"username", req.Username},
		{"first_name", req.FirstName},
		{"last_name", req.LastName},
		{"email", req.Email},
		{"password", req.Password},
	}
	for _, c := range checks {
		if strings.TrimSpace(c.value) == "" {
			return &ValidationError{Field: c.field}
		}
	}
	return nil
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// entryExists does a base-scoped search at dn. A NoSuchObject result means
// the position is free.
func entryExists(conn Conn, dn string) (bool, error) {
	req := ldap.NewSearchRequest(
		dn, ldap.ScopeBaseObject, ldap.NeverDerefAliases, 0, 0, false,
		"(objectClass=*)", []string{"dn"}, nil,
	)
	res, err := conn.Search(req)
	if err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultNoSuchObject) {
			return false, nil
		}
		return false, err
	}
	return len(res.Entries) > 0, nil
}

func countEntries(conn Conn, base, filter string) (int, error) {
	req := ldap.NewSearchRequest(
		base, ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 0, 0, false,
		filter, []string{"dn"}, nil,
	)
	res, err := conn.Search(req)
	if err != nil {
		return 0, err
	}
	return len(res.Entries), nil
}
