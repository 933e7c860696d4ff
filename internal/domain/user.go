package domain

import "time"

// User is the domain model for registered accounts.
type User struct {
	ID               string
	Username         string
	Email            string
	PasswordHash     string
	PermissionTypeID int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Permission is a row of the permission_types lookup table.
type Permission struct {
	ID   int
	Name string
}
