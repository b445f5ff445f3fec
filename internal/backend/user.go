// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
)

// User is the profile record the API returns for an account.
type User struct {
	ID          ID     `json:"id"`
	Name        string `json:"name,omitempty"`
	FullName    string `json:"full_name,omitempty"`
	Email       string `json:"email"`
	Role        string `json:"role,omitempty"`
	Institution string `json:"institution,omitempty"`
}

// DisplayName picks the friendliest non-empty identifier.
func (u User) DisplayName() string {
	switch {
	case strings.TrimSpace(u.FullName) != "":
		return u.FullName
	case strings.TrimSpace(u.Name) != "":
		return u.Name
	case u.Email != "":
		return u.Email
	default:
		return string(u.ID)
	}
}

// ID is an account identifier. The API sends UUID strings or integers.
type ID string

// UnmarshalJSON accepts a JSON string, number or null.
func (i *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*i = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*i = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*i = ID(n.String())
	return nil
}

// GetMe calls GET /api/v1/auth/me with Authorization header.
func (h *HTTP) GetMe(ctx context.Context, accessToken string) (*User, error) {
	var u User
	if _, err := h.get(ctx, h.m.HTTP.Me, accessToken, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
