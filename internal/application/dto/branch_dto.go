package dto

import "time"

// CreateBranchRequest body para POST /api/branches.
type CreateBranchRequest struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// BranchResponse representación HTTP de una sucursal.
type BranchResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BranchListResponse listado paginado de sucursales.
type BranchListResponse struct {
	Items []BranchResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}
