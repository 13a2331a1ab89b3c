package adminsdk

import (
	"context"
	"net/http"
	"strconv"
)

// Me returns the account behind the session.
func (a *APIClient) Me(ctx context.Context) (*User, error) {
	var out User
	if err := a.do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword changes the password of the session's account.
func (a *APIClient) ChangePassword(ctx context.Context, current, next string) error {
	return a.do(ctx, http.MethodPost, "/auth/change-password", PasswordChange{
		CurrentPassword: current,
		NewPassword:     next,
	}, nil)
}

// UserListOptions filters ListUsers. A nil IsActive lists every account.
type UserListOptions struct {
	Page     int
	PageSize int
	IsActive *bool
}

// ListUsers requires an admin session.
func (a *APIClient) ListUsers(ctx context.Context, opts UserListOptions) ([]User, error) {
	q := ListOptions{Page: opts.Page, PageSize: opts.PageSize}.values()
	if opts.IsActive != nil {
		q.Set("is_active", strconv.FormatBool(*opts.IsActive))
	}

	var out []User
	if err := a.do(ctx, http.MethodGet, withQuery("/auth/users", q), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *APIClient) CreateUser(ctx context.Context, req UserCreate) (*User, error) {
	var out User
	if err := a.do(ctx, http.MethodPost, "/auth/users", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *APIClient) UpdateUser(ctx context.Context, id string, req UserUpdate) (*User, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	var out User
	if err := a.do(ctx, http.MethodPatch, "/auth/users/"+id, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeactivateUser disables an account. The API keeps the record.
func (a *APIClient) DeactivateUser(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return a.do(ctx, http.MethodDelete, "/auth/users/"+id, nil, nil)
}
