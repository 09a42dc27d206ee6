package dto

import "time"

// CreateCustomerRequest entrada para registrar un cliente.
// TaxIDType "RNC" o "CEDULA"; ambos campos opcionales para consumidor final.
type CreateCustomerRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=200"`
	TaxIDType string `json:"tax_id_type" validate:"omitempty,oneof=RNC CEDULA"`
	TaxID     string `json:"tax_id" validate:"omitempty,max=20"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone" validate:"omitempty,max=30"`
}

// CustomerResponse salida de un cliente.
type CustomerResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Name      string    `json:"name"`
	TaxIDType string    `json:"tax_id_type,omitempty"`
	TaxID     string    `json:"tax_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CustomerListResponse listado paginado de clientes.
type CustomerListResponse struct {
	Items []CustomerResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
