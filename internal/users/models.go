package users

import (
	"time"

	"github.com/shophub/ecommerce-api/internal/apierr"
)

var (
	ErrNotFound           = apierr.NotFound("User not found")
	ErrEmailTaken         = apierr.Conflict("User with email already exists.")
	ErrInvalidCredentials = apierr.Unauthorized("Invalid email or password")
	ErrNotAdmin           = apierr.Forbidden("User is not an admin")
	ErrNotInCart          = apierr.NotFound("Product not found in cart")
	ErrAddressNotFound    = apierr.NotFound("Address not found")
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID           string     `json:"id"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	ProfileImage string     `json:"profile_image"`
	Roles        []string   `json:"roles"`
	CartItems    []CartItem `json:"cart_items"`
	AddressIDs   []string   `json:"address"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	for _, r := range u.Roles {
		if r == RoleAdmin {
			return true
		}
	}
	return false
}

// CartItem quantity is always >= 1; removing the last unit removes the
// entry instead.
type CartItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type Address struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phone_number"`
	Country     string    `json:"country"`
	PinCode     string    `json:"pin_code"`
	HouseNo     string    `json:"house_no"`
	Area        string    `json:"area"`
	Landmark    string    `json:"landmark"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	CreatedAt   time.Time `json:"created_at"`
}

// Session is what a successful login hands back: the bearer token plus a
// snapshot of the user it authenticates.
type Session struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
