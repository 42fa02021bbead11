package domain

import "fmt"

// UserRole enumerates the kinds of accounts tickets can reference.
type UserRole string

const (
	UserRoleUser    UserRole = "USER"
	UserRoleSupport UserRole = "SUPPORT"
	UserRoleProduct UserRole = "PRODUCT"
)

// ParseUserRole matches name exactly against the known roles.
func ParseUserRole(name string) (UserRole, error) {
	switch UserRole(name) {
	case UserRoleUser, UserRoleSupport, UserRoleProduct:
		return UserRole(name), nil
	}
	return "", fmt.Errorf("unknown user role %q", name)
}

// User is referenced by tickets as creator, modifier or assignee.
type User struct {
	ID         string
	Username   string
	Credential string
	Role       UserRole
}
