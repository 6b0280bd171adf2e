package tokens

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims is the payload of both token kinds. The claims are the sole source
// of identity and role downstream: authorization never re-reads the user row.
type Claims struct {
	Type    string `json:"type"`
	Fresh   bool   `json:"fresh"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
