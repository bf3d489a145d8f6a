package model

import "time"

// AdminAccount is a console login account. The set of accounts is fixed at
// process start; the console never creates or modifies them at runtime.
type AdminAccount struct {
	Username     string
	PasswordHash string
	Role         string
	DisplayName  string
}

// DirectoryUser is a transient view of a directory entry. It is built from a
// search result (or an inbound create payload) and is not valid beyond the
// request that produced it; the directory server is the source of truth.
type DirectoryUser struct {
	Username  string   `json:"username"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Email     string   `json:"email"`
	Groups    []string `json:"groups"`
}

// CreateUserRequest is the payload for adding a directory user.
// Password is write-only and never appears in responses.
type CreateUserRequest struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type DirectoryGroup struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	MemberCount int    `json:"member_count"`
}

// DirectoryStats reports entry counts and reachability for the dashboard.
type DirectoryStats struct {
	Users  int    `json:"users"`
	Groups int    `json:"groups"`
	Status string `json:"status"`
}

type Session struct {
	Token     string
	Username  string
	Role      string
	CSRFToken string
	CreatedAt time.Time
	ExpiresAt time.Time
}

type AuditEntry struct {
	ID        int64
	Username  string
	Action    string
	Detail    string
	IPAddress string
	CreatedAt time.Time
}
