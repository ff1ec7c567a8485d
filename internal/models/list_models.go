package models

import (
	"math"
	"strings"
)

// SortField is a user field the listing can be ordered by.
type SortField string

const (
	SortByFirstName SortField = "firstName"
	SortByEmail     SortField = "email"
	SortByCreatedAt SortField = "createdAt"
)

func (f SortField) IsValid() bool {
	switch f {
	case SortByFirstName, SortByEmail, SortByCreatedAt:
		return true
	default:
		return false
	}
}

// SortDirection is asc or desc.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxPage      = 100000
	MaxLimit     = 100
)

// ListUsersParams are normalized pagination, search and ordering parameters.
type ListUsersParams struct {
	Page   int
	Limit  int
	Search string
	SortBy SortField
	Sort   SortDirection
}

// NewListUsersParams applies defaults and whitelists to raw query values.
func NewListUsersParams(q GetUsersQuery) ListUsersParams {
	p := ListUsersParams{
		Page:   q.Page,
		Limit:  q.Limit,
		Search: strings.TrimSpace(q.Search),
		SortBy: SortField(q.SortBy),
		Sort:   SortDirection(strings.ToLower(q.Sort)),
	}
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if !p.SortBy.IsValid() {
		p.SortBy = SortByCreatedAt
	}
	if p.Sort != SortAsc {
		p.Sort = SortDesc
	}
	return p
}

// Offset is the number of records skipped before the requested page. It saturates
// at math.MaxInt instead of overflowing.
func (p ListUsersParams) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// PageMeta describes a returned page.
type PageMeta struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// UserPage is one page of users plus the total matching count.
type UserPage struct {
	Users []*User
	Total int
}

// UserListResponse is the body of GET /users.
type UserListResponse struct {
	Data []UserListItem `json:"data"`
	Meta PageMeta       `json:"meta"`
}
