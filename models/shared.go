package models

import (
	"math"
	"time"
)

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// Address is used for booking delivery addresses, customer homes and provider businesses.
type Address struct {
	Street      string    `bson:"street" json:"street"`
	City        string    `bson:"city" json:"city"`
	State       string    `bson:"state,omitempty" json:"state,omitempty"`
	ZipCode     string    `bson:"zipCode,omitempty" json:"zipCode,omitempty"`
	Coordinates *GeoPoint `bson:"coordinates,omitempty" json:"coordinates,omitempty"`
}

// Page is a 1-based page request.
type Page struct {
	Page  int
	Limit int
}

// Normalize clamps the page into [1, ...] and the limit into [1, max].
func (p Page) Normalize(defaultLimit, max int) Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	if p.Limit > max {
		p.Limit = max
	}
	// keep Skip inside int32 so it never wraps or overflows a Mongo skip
	if maxPage := math.MaxInt32 / p.Limit; p.Page > maxPage {
		p.Page = maxPage
	}
	return p
}

// Skip returns the number of documents to skip for this page.
func (p Page) Skip() int {
	return (p.Page - 1) * p.Limit
}

// Pagination is returned next to every paginated list.
type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
	HasNext      bool  `json:"hasNext"`
	HasPrev      bool  `json:"hasPrev"`
}

// NewPagination builds the pagination block for a normalized page.
func NewPagination(p Page, total int64) Pagination {
	pages := 0
	if p.Limit > 0 {
		pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return Pagination{
		CurrentPage:  p.Page,
		TotalPages:   pages,
		TotalItems:   total,
		ItemsPerPage: p.Limit,
		HasNext:      p.Page < pages,
		HasPrev:      p.Page > 1,
	}
}

// DateRange is a closed-open [From, To) interval. Zero values mean unbounded.
type DateRange struct {
	From time.Time `json:"startDate"`
	To   time.Time `json:"endDate"`
}

func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && !t.Before(r.To) {
		return false
	}
	return true
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   string
	Role Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
