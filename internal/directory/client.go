package directory

import (
	"crypto/tls"
	"fmt"
	"strings"

	"diradmin/internal/config"

	"github.com/go-ldap/ldap/v3"
)

// Conn is the slice of *ldap.Conn the service needs. Connections are
// single-use: one per operation, closed before the operation returns.
type Conn interface {
	Search(req *ldap.SearchRequest) (*ldap.SearchResult, error)
	Add(req *ldap.AddRequest) error
	Del(req *ldap.DelRequest) error
	Close() error
}

// Dialer opens an authenticated directory connection.
type Dialer interface {
	Open() (Conn, error)
}

// Client dials the configured directory server and binds with the admin DN.
// There is no pooling and no retry: every Open is a fresh dial and bind, so
// a connection fault never leaks into an unrelated request.
type Client struct {
	cfg config.LDAPConfig
}

func NewClient(cfg config.LDAPConfig) *Client {
	return &Client{cfg: cfg}
}

func (c *Client) Open() (Conn, error) {
	conn, err := c.dial()
	if err != nil {
		return nil, fmt.Errorf("directory dial: %w", err)
	}
	if err := conn.Bind(c.cfg.AdminDN, c.cfg.AdminPassword); err != nil {
		conn.Close()
		return nil, fmt.Errorf("directory admin bind: %w", err)
	}
	return conn, nil
}

func (c *Client) dial() (*ldap.Conn, error) {
	tlsCfg := &tls.Config{InsecureSkipVerify: c.cfg.SkipVerify}

	if strings.HasPrefix(c.cfg.Server, "ldaps://") {
		return ldap.DialURL(c.cfg.Server, ldap.DialWithTLSConfig(tlsCfg))
	}

	conn, err := ldap.DialURL(c.cfg.Server)
	if err != nil {
		return nil, err
	}

	if c.cfg.StartTLS {
		if err := conn.StartTLS(tlsCfg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("starttls: %w", err)
		}
	}

	return conn, nil
}
