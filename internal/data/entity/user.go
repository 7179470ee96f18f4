package entity

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleAdmin    UserRole = "admin"
)

type User struct {
	Base
	Name          string   `db:"name"`
	Email         string   `db:"email"`
	PasswordHash  string   `db:"password"`
	Phone         *string  `db:"phone"`
	PhoneVerified bool     `db:"phone_verified"`
	Role          UserRole `db:"role"`
	IsActive      bool     `db:"is_active"`
}
