package directory

import (
	"fmt"
	"hash/fnv"
	"strings"

	"diradmin/internal/model"

	"github.com/go-ldap/ldap/v3"
)

// Attribute names used by the user and group schemas.
const (
	attrUID         = "uid"
	attrCN          = "cn"
	attrSN          = "sn"
	attrGivenName   = "givenName"
	attrMail        = "mail"
	attrDisplayName = "displayName"
	attrMemberOf    = "memberOf"
	attrDescription = "description"
	attrMember      = "member"
)

var (
	userAttributes  = []string{attrCN, attrSN, attrGivenName, attrMail, attrUID, attrDisplayName, attrMemberOf}
	groupAttributes = []string{attrCN, attrDescription, attrMember}
)

// UserFromEntry maps a directory entry to a DirectoryUser. It is total:
// missing attributes map to empty strings, never an error.
func UserFromEntry(entry *ldap.Entry) model.DirectoryUser {
	return model.DirectoryUser{
		Username:  entry.GetAttributeValue(attrUID),
		FirstName: entry.GetAttributeValue(attrGivenName),
		LastName:  entry.GetAttributeValue(attrSN),
		Email:     entry.GetAttributeValue(attrMail),
		Groups:    groupNames(entry.GetAttributeValues(attrMemberOf)),
	}
}

// GroupFromEntry maps a directory entry to a DirectoryGroup. A group with no
// member attribute has a member count of zero.
func GroupFromEntry(entry *ldap.Entry) model.DirectoryGroup {
	return model.DirectoryGroup{
		Name:        entry.GetAttributeValue(attrCN),
		Description: entry.GetAttributeValue(attrDescription),
		MemberCount: len(entry.GetAttributeValues(attrMember)),
	}
}

// groupNames reduces memberOf DNs to bare group names: the first RDN value
// with its cn= prefix stripped.
func groupNames(dns []string) []string {
	names := make([]string, 0, len(dns))
	for _, dn := range dns {
		rdn := strings.SplitN(dn, ",", 2)[0]
		names = append(names, strings.TrimPrefix(rdn, "cn="))
	}
	return names
}

// UserAddRequest builds the add request for a new user entry. The payload
// must already be validated; username must already be normalized.
func UserAddRequest(dn string, req model.CreateUserRequest) *ldap.AddRequest {
	add := ldap.NewAddRequest(dn, nil)
	add.Attribute("objectClass", []string{"inetOrgPerson", "posixAccount"})
	add.Attribute(attrUID, []string{req.Username})
	add.Attribute(attrCN, []string{req.FirstName + " " + req.LastName})
	add.Attribute(attrSN, []string{req.LastName})
	add.Attribute(attrGivenName, []string{req.FirstName})
	add.Attribute(attrMail, []string{req.Email})
	// The server hashes userPassword according to its password policy.
	add.Attribute("userPassword", []string{req.Password})
	add.Attribute("uidNumber", []string{fmt.Sprintf("%d", deriveUIDNumber(req.Username))})
	add.Attribute("gidNumber", []string{"1000"})
	add.Attribute("homeDirectory", []string{"/home/" + req.Username})
	add.Attribute("loginShell", []string{"/bin/bash"})
	return add
}

// deriveUIDNumber maps a username onto the 1000-10999 uidNumber range.
// Two usernames can collide; see DESIGN.md before changing the scheme, since
// replacing it alters the entries existing deployments have on disk.
func deriveUIDNumber(username string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(username))
	return h.Sum32()%10000 + 1000
}
