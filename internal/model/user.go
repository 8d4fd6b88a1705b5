package model

import "time"

// User is a staff account of the back office.  Permissions are dotted
// capability names such as "orders.update_status".
//
// Fields:
//
//	ID           – primary key identifier.
//	Username     – unique login name.
//	PasswordHash – bcrypt hashed password.
//	FullName     – display name.
//	Role         – admin, manager, employee or cashier.
//	Permissions  – capabilities granted to the user.
//	IsActive     – whether the account may log in.
//	CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	PasswordHash string    // users.password_hash
	FullName     string    // users.full_name
	Role         string    // users.role
	Permissions  []string  // users.permissions (JSON array)
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
}

// RoleAdmin is the role seeded at startup.
const RoleAdmin = "admin"

// DefaultPermissions lists the capabilities granted to each role when a
// user is created without an explicit list.
var DefaultPermissions = map[string][]string{
	"admin": {
		"products.view", "categories.view",
		"orders.view", "orders.create", "orders.edit", "orders.delete", "orders.update_status",
		"sales.view", "sales.create", "sales.delete", "sales.export",
		"tables.view", "tables.create", "tables.edit", "tables.delete", "tables.generate_qr",
		"analytics.view", "analytics.export",
		"users.view", "users.create", "users.edit", "users.delete",
		"config.view", "config.edit", "config.payment_methods",
		"archives.view", "archives.restore",
	},
	"manager": {
		"products.view", "categories.view",
		"orders.view", "orders.create", "orders.edit", "orders.update_status",
		"sales.view", "sales.create", "sales.delete", "sales.export",
		"tables.view", "tables.create", "tables.edit", "tables.generate_qr",
		"analytics.view", "analytics.export",
		"config.view", "config.edit",
		"archives.view", "archives.restore",
	},
	"employee": {
		"products.view", "categories.view",
		"orders.view", "orders.create", "orders.update_status",
		"sales.view", "sales.create",
		"tables.view", "analytics.view",
	},
	"cashier": {
		"products.view", "categories.view",
		"orders.view", "orders.update_status",
		"sales.view", "sales.create", "sales.export",
		"tables.view", "analytics.view",
	},
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA‑256 hash of the token value is stored.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
