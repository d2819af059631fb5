package categories

import "time"

type TopCategory struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	ParentIDs    []int64   `json:"parents"`
	IsActive     bool      `json:"isActive"`
	ShowInNavbar bool      `json:"showInNavbar"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type ParentCategory struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	TopID        *int64    `json:"top"`
	ChildIDs     []int64   `json:"children"`
	IsActive     bool      `json:"isActive"`
	ShowInNavbar bool      `json:"showInNavbar"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type ChildCategory struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	ParentIDs    []int64   `json:"parents"`
	ProductIDs   []int64   `json:"products"`
	IsActive     bool      `json:"isActive"`
	ShowInNavbar bool      `json:"showInNavbar"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
