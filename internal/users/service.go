package users

import (
	"context"
	"errors"
	"strings"

	"github.com/shophub/ecommerce-api/internal/apierr"
	"github.com/shophub/ecommerce-api/internal/auth"
	"github.com/shophub/ecommerce-api/internal/catalog"
	"github.com/shophub/ecommerce-api/internal/events"
)

type Service struct {
	Repo     Repository
	Catalog  catalog.Repository
	Sessions SessionStore
	Tokens   *auth.Manager
	Events   events.Publisher
	Producer string
}

func (s *Service) Register(ctx context.Context, firstName, lastName, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	taken, err := s.Repo.EmailTaken(ctx, email)
	if err != nil {
		return err
	}
	if taken {
		return ErrEmailTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	u := &User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: hash,
		Roles:        []string{RoleUser},
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return err
	}

	events.Emit(s.Events, s.Producer, events.TypeUserRegistered, u.ID, events.UserRegisteredPayload{
		UserID:    u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	})
	return nil
}

// Login deliberately reports the same error for an unknown email and a
// wrong password.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	return s.login(ctx, email, password, false)
}

func (s *Service) AdminLogin(ctx context.Context, email, password string) (*Session, error) {
	return s.login(ctx, email, password, true)
}

func (s *Service) login(ctx context.Context, email, password string, adminOnly bool) (*Session, error) {
	u, err := s.Repo.ByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if adminOnly && !u.IsAdmin() {
		return nil, ErrNotAdmin
	}

	token, err := s.Tokens.Generate(u.ID, u.Email, u.FirstName, u.LastName)
	if err != nil {
		return nil, err
	}
	if err := s.Sessions.SaveSession(ctx, u.ID, token); err != nil {
		return nil, err
	}
	return &Session{Token: token, User: u}, nil
}

func (s *Service) Logout(ctx context.Context, userID string) error {
	return s.Sessions.ClearSession(ctx, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, firstName, lastName, profileImage *string) (*User, error) {
	return s.Repo.UpdateProfile(ctx, userID, firstName, lastName, profileImage)
}

func (s *Service) AddAddress(ctx context.Context, userID string, a *Address) (*Address, error) {
	if _, err := s.Repo.ByID(ctx, userID); err != nil {
		return nil, err
	}
	a.UserID = userID
	if a.Country == "" {
		a.Country = "India"
	}
	if err := s.Repo.AddAddress(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// AddToCart merges quantity into an existing entry for the same product
// rather than appending a duplicate.
func (s *Service) AddToCart(ctx context.Context, userID, productID string, qty int) ([]CartItem, error) {
	if qty < 1 {
		return nil, apierr.BadRequest("Quantity must be at least 1")
	}
	if _, err := s.Repo.ByID(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.Catalog.ByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.Repo.AddCartItem(ctx, userID, productID, qty)
}

func (s *Service) UpdateCartQuantity(ctx context.Context, userID, productID string, qty int) ([]CartItem, error) {
	if qty < 1 {
		return nil, apierr.BadRequest("Quantity must be at least 1")
	}
	if _, err := s.Repo.ByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.Repo.SetCartQuantity(ctx, userID, productID, qty)
}

// RemoveCartItem succeeds even when the product is not in the cart.
func (s *Service) RemoveCartItem(ctx context.Context, userID, productID string) error {
	if _, err := s.Repo.ByID(ctx, userID); err != nil {
		return err
	}
	return s.Repo.RemoveCartItem(ctx, userID, productID)
}

func (s *Service) Users(ctx context.Context) ([]User, error) {
	return s.Repo.All(ctx)
}

// DeleteUser also revokes the user's active session, so a deleted
// account's token stops working immediately rather than at token expiry.
func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	if err := s.Repo.Delete(ctx, userID); err != nil {
		return err
	}
	return s.Sessions.ClearSession(ctx, userID)
}
