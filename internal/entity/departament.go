package entity

import "time"

type Department struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	OwnerAdminID int64     `json:"-" db:"owner_admin_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type DepartmentRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}
