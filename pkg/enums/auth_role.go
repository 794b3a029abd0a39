package enums

import "fmt"

// AuthRole is the role the identity provider assigned to the signed-in user.
type AuthRole string

const (
	AuthRoleUser  AuthRole = "user"
	AuthRoleAdmin AuthRole = "admin"
)

var validAuthRoles = []AuthRole{
	AuthRoleUser,
	AuthRoleAdmin,
}

// String implements fmt.Stringer.
func (a AuthRole) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AuthRole.
func (a AuthRole) IsValid() bool {
	for _, candidate := range validAuthRoles {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAuthRole converts raw input into a AuthRole.
func ParseAuthRole(value string) (AuthRole, error) {
	for _, candidate := range validAuthRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid auth role %q", value)
}
