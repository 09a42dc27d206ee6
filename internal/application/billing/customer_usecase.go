package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/facturacion-rd/internal/application/dto"
	"github.com/jhoicas/facturacion-rd/internal/domain"
	"github.com/jhoicas/facturacion-rd/internal/domain/entity"
	"github.com/jhoicas/facturacion-rd/internal/domain/repository"
	"github.com/jhoicas/facturacion-rd/pkg/dgii"
)

// CustomerUseCase casos de uso CRUD para clientes (facturación).
type CustomerUseCase struct {
	repo repository.CustomerRepository
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(repo repository.CustomerRepository) *CustomerUseCase {
	return &CustomerUseCase{repo: repo}
}

// Create registra un cliente. Si trae identificación tributaria se valida el
// dígito verificador (RNC módulo 11 o cédula Luhn) antes de persistir.
func (uc *CustomerUseCase) Create(companyID string, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.TaxID != "" {
		switch in.TaxIDType {
		case entity.TaxIDTypeRNC:
			if err := dgii.ValidateRNC(in.TaxID); err != nil {
				return nil, domain.NewValidationError(err.Error())
			}
		case entity.TaxIDTypeCedula:
			if err := dgii.ValidateCedula(in.TaxID); err != nil {
				return nil, domain.NewValidationError(err.Error())
			}
		default:
			return nil, domain.NewValidationError("tax_id_type debe ser RNC o CEDULA cuando se envía tax_id")
		}
	}

	now := time.Now()
	customer := &entity.Customer{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Name:      in.Name,
		TaxIDType: in.TaxIDType,
		TaxID:     in.TaxID,
		Email:     in.Email,
		Phone:     in.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(customer); err != nil {
		return nil, err
	}
	return toCustomerResponse(customer), nil
}

// GetByID obtiene un cliente de la empresa.
func (uc *CustomerUseCase) GetByID(companyID, id string) (*dto.CustomerResponse, error) {
	customer, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if customer == nil || customer.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return toCustomerResponse(customer), nil
}

// List lista clientes por empresa con paginación.
func (uc *CustomerUseCase) List(companyID string, limit, offset int) (*dto.CustomerListResponse, error) {
	list, err := uc.repo.ListByCompany(companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := &dto.CustomerListResponse{
		Items: make([]dto.CustomerResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}
	for _, c := range list {
		out.Items = append(out.Items, *toCustomerResponse(c))
	}
	return out, nil
}

func toCustomerResponse(c *entity.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:        c.ID,
		CompanyID: c.CompanyID,
		Name:      c.Name,
		TaxIDType: c.TaxIDType,
		TaxID:     c.TaxID,
		Email:     c.Email,
		Phone:     c.Phone,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
