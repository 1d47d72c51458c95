/*
usuarios.go - Wrappers for the /usuarios/ resource

Covers member and staff management: listing with estado/grupo filters,
creation, partial update, soft delete, group assignment and password change.
The upstream differentiates members from staff through group membership, so
ListStaff is just ListUsers with the staff group filter plus the staff
adapter.
*/
package clubapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/warp/club-engine/club"
)

// Group filter values understood by the upstream.
const (
	GroupMembers = "socios"
	GroupStaff   = "staff"
	GroupAdmins  = "administradores"
)

// UserFilter narrows a user listing. Zero values mean "no filter".
type UserFilter struct {
	State club.UserState
	Group string
}

func (f UserFilter) query() url.Values {
	q := url.Values{}
	if f.State != "" {
		q.Set("estado", string(f.State))
	}
	if f.Group != "" {
		q.Set("grupo", f.Group)
	}
	return q
}

// ListUsers lists users as normalized members.
func (c *Client) ListUsers(ctx context.Context, filter UserFilter) ([]club.Member, error) {
	raws, err := fetchList[club.RawUser](ctx, c, "usuarios.list", "usuarios/", filter.query())
	if err != nil {
		return nil, err
	}
	members := make([]club.Member, 0, len(raws))
	for _, raw := range raws {
		members = append(members, club.AdaptMember(raw))
	}
	return members, nil
}

// ListStaff lists the staff catalog, already adapted for instructor-name
// resolution. Activity adaptation depends on this call completing first.
func (c *Client) ListStaff(ctx context.Context) ([]club.StaffMember, error) {
	raws, err := fetchList[club.RawUser](ctx, c, "usuarios.staff", "usuarios/", UserFilter{Group: GroupStaff}.query())
	if err != nil {
		return nil, err
	}
	staff := make([]club.StaffMember, 0, len(raws))
	for _, raw := range raws {
		staff = append(staff, club.AdaptStaff(raw))
	}
	return staff, nil
}

// GetUser fetches one user.
func (c *Client) GetUser(ctx context.Context, id club.ID) (club.Member, error) {
	data, err := c.do(ctx, "usuarios.get", http.MethodGet, fmt.Sprintf("usuarios/%s/", id), nil, nil)
	if err != nil {
		return club.Member{}, err
	}
	raw, err := decodeOne[club.RawUser]("usuarios.get", data)
	if err != nil {
		return club.Member{}, err
	}
	return club.AdaptMember(raw), nil
}

// CreateUserRequest is the payload for user creation.
type CreateUserRequest struct {
	Username   string `json:"username"    validate:"required"`
	Email      string `json:"email"       validate:"required,email"`
	Password   string `json:"password"    validate:"required,min=8"`
	FirstName  string `json:"first_name"  validate:"required"`
	LastName   string `json:"last_name"   validate:"required"`
	NationalID string `json:"dni"         validate:"omitempty,numeric"`
	Phone      string `json:"telefono"    validate:"omitempty"`
	Group      string `json:"grupo"       validate:"omitempty,oneof=socios staff administradores"`
}

// CreateUser creates a user. The payload is validated locally first.
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (club.Member, error) {
	if err := c.checkPayload(req); err != nil {
		return club.Member{}, err
	}
	data, err := c.do(ctx, "usuarios.create", http.MethodPost, "usuarios/", nil, req)
	if err != nil {
		return club.Member{}, err
	}
	raw, err := decodeOne[club.RawUser]("usuarios.create", data)
	if err != nil {
		return club.Member{}, err
	}
	return club.AdaptMember(raw), nil
}

// UpdateUserRequest is a partial update; nil fields are left untouched.
type UpdateUserRequest struct {
	Email      *string `json:"email,omitempty"      validate:"omitempty,email"`
	FirstName  *string `json:"first_name,omitempty"`
	LastName   *string `json:"last_name,omitempty"`
	NationalID *string `json:"dni,omitempty"        validate:"omitempty,numeric"`
	Phone      *string `json:"telefono,omitempty"`
	State      *string `json:"estado,omitempty"     validate:"omitempty,oneof=activo inactivo baja"`
}

// UpdateUser PATCHes one user.
func (c *Client) UpdateUser(ctx context.Context, id club.ID, req UpdateUserRequest) (club.Member, error) {
	if err := c.checkPayload(req); err != nil {
		return club.Member{}, err
	}
	data, err := c.do(ctx, "usuarios.update", http.MethodPatch, fmt.Sprintf("usuarios/%s/", id), nil, req)
	if err != nil {
		return club.Member{}, err
	}
	raw, err := decodeOne[club.RawUser]("usuarios.update", data)
	if err != nil {
		return club.Member{}, err
	}
	return club.AdaptMember(raw), nil
}

// DeleteUser soft-deletes a user; upstream transitions them to "baja".
func (c *Client) DeleteUser(ctx context.Context, id club.ID) error {
	_, err := c.do(ctx, "usuarios.delete", http.MethodDelete, fmt.Sprintf("usuarios/%s/", id), nil, nil)
	return err
}

// AssignGroup moves a user into a role group.
func (c *Client) AssignGroup(ctx context.Context, id club.ID, group string) error {
	payload := struct {
		Group string `json:"grupo" validate:"required,oneof=socios staff administradores"`
	}{Group: group}
	if err := c.checkPayload(payload); err != nil {
		return err
	}
	_, err := c.do(ctx, "usuarios.asignar_grupo", http.MethodPost,
		fmt.Sprintf("usuarios/%s/asignar_grupo/", id), nil, payload)
	return err
}

// ChangePassword sets a new password for the user.
func (c *Client) ChangePassword(ctx context.Context, id club.ID, newPassword string) error {
	payload := struct {
		Password string `json:"password" validate:"required,min=8"`
	}{Password: newPassword}
	if err := c.checkPayload(payload); err != nil {
		return err
	}
	_, err := c.do(ctx, "usuarios.cambiar_password", http.MethodPost,
		fmt.Sprintf("usuarios/%s/cambiar_password/", id), nil, payload)
	return err
}
