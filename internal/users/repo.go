package users

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the persisted user store. Implemented by Repo (Postgres)
// and by the demo store.
type Repository interface {
	Create(ctx context.Context, u *User) error
	ByEmail(ctx context.Context, email string) (*User, error)
	ByID(ctx context.Context, id string) (*User, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, userID string, firstName, lastName, profileImage *string) (*User, error)
	All(ctx context.Context) ([]User, error)
	Delete(ctx context.Context, userID string) error

	// Cart. AddCartItem merges quantity into an existing entry for the
	// same product. SetCartQuantity fails with ErrNotInCart when the
	// product is not in the cart. RemoveCartItem on an absent product is
	// a no-op.
	AddCartItem(ctx context.Context, userID, productID string, qty int) ([]CartItem, error)
	SetCartQuantity(ctx context.Context, userID, productID string, qty int) ([]CartItem, error)
	RemoveCartItem(ctx context.Context, userID, productID string) error
	ClearCart(ctx context.Context, userID string) error

	AddAddress(ctx context.Context, a *Address) error
	Addresses(ctx context.Context, userID string) ([]Address, error)
	Address(ctx context.Context, id string) (*Address, error)
}

// SessionStore records the active token per user so logout actually
// invalidates. Redis in production, the demo store otherwise.
type SessionStore interface {
	SaveSession(ctx context.Context, userID, token string) error
	ActiveSession(ctx context.Context, userID string) (string, error)
	ClearSession(ctx context.Context, userID string) error
}

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Create(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	if len(u.Roles) == 0 {
		u.Roles = []string{RoleUser}
	}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO users(id, first_name, last_name, email, password_hash, profile_image, roles, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		u.ID, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.ProfileImage, u.Roles, u.CreatedAt, u.UpdatedAt)
	return err
}

func (r *Repo) byWhere(ctx context.Context, where string, arg any) (*User, error) {
	var u User
	err := r.DB.QueryRow(ctx, `
		SELECT id, first_name, last_name, email, password_hash, profile_image, roles, created_at, updated_at
		FROM users WHERE `+where, arg).
		Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash,
			&u.ProfileImage, &u.Roles, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := r.cartItems(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	u.CartItems = items

	rows, err := r.DB.Query(ctx, `SELECT id FROM addresses WHERE user_id=$1 ORDER BY created_at`, u.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		u.AddressIDs = append(u.AddressIDs, id)
	}
	return &u, rows.Err()
}

func (r *Repo) ByEmail(ctx context.Context, email string) (*User, error) {
	return r.byWhere(ctx, "email=$1", email)
}

func (r *Repo) ByID(ctx context.Context, id string) (*User, error) {
	return r.byWhere(ctx, "id=$1", id)
}

func (r *Repo) EmailTaken(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE email=$1`, email).Scan(&n)
	return n > 0, err
}

func (r *Repo) UpdateProfile(ctx context.Context, userID string, firstName, lastName, profileImage *string) (*User, error) {
	u, err := r.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if firstName != nil && *firstName != "" {
		u.FirstName = *firstName
	}
	if lastName != nil && *lastName != "" {
		u.LastName = *lastName
	}
	if profileImage != nil {
		u.ProfileImage = *profileImage
	}
	_, err = r.DB.Exec(ctx, `
		UPDATE users SET first_name=$2, last_name=$3, profile_image=$4, updated_at=now()
		WHERE id=$1`, userID, u.FirstName, u.LastName, u.ProfileImage)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *Repo) All(ctx context.Context) ([]User, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, first_name, last_name, email, profile_image, roles, created_at, updated_at
		FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email,
			&u.ProfileImage, &u.Roles, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *Repo) Delete(ctx context.Context, userID string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM users WHERE id=$1`, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) cartItems(ctx context.Context, userID string) ([]CartItem, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT product_id, qty FROM cart_items WHERE user_id=$1 ORDER BY added_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CartItem
	for rows.Next() {
		var it CartItem
		if err := rows.Scan(&it.ProductID, &it.Quantity); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *Repo) AddCartItem(ctx context.Context, userID, productID string, qty int) ([]CartItem, error) {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO cart_items(user_id, product_id, qty)
		VALUES ($1,$2,$3)
		ON CONFLICT (user_id, product_id) DO UPDATE SET qty = cart_items.qty + EXCLUDED.qty`,
		userID, productID, qty)
	if err != nil {
		return nil, err
	}
	return r.cartItems(ctx, userID)
}

func (r *Repo) SetCartQuantity(ctx context.Context, userID, productID string, qty int) ([]CartItem, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE cart_items SET qty=$3 WHERE user_id=$1 AND product_id=$2`,
		userID, productID, qty)
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, ErrNotInCart
	}
	return r.cartItems(ctx, userID)
}

func (r *Repo) RemoveCartItem(ctx context.Context, userID, productID string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM cart_items WHERE user_id=$1 AND product_id=$2`, userID, productID)
	return err
}

func (r *Repo) ClearCart(ctx context.Context, userID string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM cart_items WHERE user_id=$1`, userID)
	return err
}

func (r *Repo) AddAddress(ctx context.Context, a *Address) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = time.Now().UTC()
	_, err := r.DB.Exec(ctx, `
		INSERT INTO addresses(id, user_id, name, phone_number, country, pin_code, house_no, area, landmark, city, state, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		a.ID, a.UserID, a.Name, a.PhoneNumber, a.Country, a.PinCode, a.HouseNo,
		a.Area, a.Landmark, a.City, a.State, a.CreatedAt)
	return err
}

func (r *Repo) Addresses(ctx context.Context, userID string) ([]Address, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, user_id, name, phone_number, country, pin_code, house_no, area, landmark, city, state, created_at
		FROM addresses WHERE user_id=$1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Address
	for rows.Next() {
		var a Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.PhoneNumber, &a.Country,
			&a.PinCode, &a.HouseNo, &a.Area, &a.Landmark, &a.City, &a.State, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *Repo) Address(ctx context.Context, id string) (*Address, error) {
	var a Address
	err := r.DB.QueryRow(ctx, `
		SELECT id, user_id, name, phone_number, country, pin_code, house_no, area, landmark, city, state, created_at
		FROM addresses WHERE id=$1`, id).
		Scan(&a.ID, &a.UserID, &a.Name, &a.PhoneNumber, &a.Country, &a.PinCode,
			&a.HouseNo, &a.Area, &a.Landmark, &a.City, &a.State, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAddressNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
