package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
server:
  port: 9090
ldap:
  server: ldaps://ldap.example.com:636
  base_dn: dc=example,dc=com
  admin_dn: cn=admin,dc=example,dc=com
  admin_password: hunter2
admins:
  - username: Admin
    password_hash: $2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW
    role: super_admin
    display_name: System Administrator
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "ldaps://ldap.example.com:636", cfg.LDAP.Server)
	assert.Equal(t, "ou=users", cfg.LDAP.UsersOU)
	assert.Equal(t, "ou=groups", cfg.LDAP.GroupsOU)
	assert.Equal(t, "ou=users,dc=example,dc=com", cfg.LDAP.UsersBase())
	assert.Equal(t, "ou=groups,dc=example,dc=com", cfg.LDAP.GroupsBase())
	require.Len(t, cfg.Admins, 1)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LDAP_ADMIN_PASSWORD", "from-env")
	t.Setenv("SESSION_SECRET", "env-secret")

	cfg, err := Load(writeConfig(t, validYAML))

	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.LDAP.AdminPassword)
	assert.Equal(t, "env-secret", cfg.SessionSecret)
}

func TestLoad_RequiresBaseDN(t *testing.T) {
	_, err := Load(writeConfig(t, `
ldap:
  admin_dn: cn=admin,dc=example,dc=com
  admin_password: hunter2
admins:
  - username: admin
    password_hash: $2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW
    role: super_admin
`))
	assert.ErrorContains(t, err, "base_dn")
}

func TestLoad_RequiresAccounts(t *testing.T) {
	_, err := Load(writeConfig(t, `
ldap:
  base_dn: dc=example,dc=com
  admin_dn: cn=admin,dc=example,dc=com
  admin_password: hunter2
`))
	assert.ErrorContains(t, err, "admins")
}

func TestLoad_RejectsBadRole(t *testing.T) {
	_, err := Load(writeConfig(t, `
ldap:
  base_dn: dc=example,dc=com
  admin_dn: cn=admin,dc=example,dc=com
  admin_password: hunter2
admins:
  - username: admin
    password_hash: $2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW
    role: root
`))
	assert.ErrorContains(t, err, "role")
}

func TestLoad_RejectsDuplicateUsernames(t *testing.T) {
	_, err := Load(writeConfig(t, `
ldap:
  base_dn: dc=example,dc=com
  admin_dn: cn=admin,dc=example,dc=com
  admin_password: hunter2
admins:
  - username: admin
    password_hash: $2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW
    role: super_admin
  - username: " ADMIN "
    password_hash: $2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW
    role: viewer
`))
	assert.ErrorContains(t, err, "duplicate")
}
