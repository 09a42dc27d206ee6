package repository

import (
	"context"

	"github.com/jhoicas/facturacion-rd/internal/domain/entity"
)

// NCFBatchRepository define el puerto de persistencia para lotes NCF.
type NCFBatchRepository interface {
	Create(ctx context.Context, batch *entity.NCFBatch) error
	GetByID(ctx context.Context, id string) (*entity.NCFBatch, error)

	// GetAllocationTarget devuelve el lote activo del que se asigna para
	// (empresa, tipo). Si hay varios activos el desempate es determinista:
	// el más antiguo por created_at y luego por id. Retorna nil, nil si no hay.
	GetAllocationTarget(ctx context.Context, companyID, typeCode string) (*entity.NCFBatch, error)

	// ListByCompany lista todos los lotes de una empresa (activos e inactivos).
	ListByCompany(ctx context.Context, companyID string) ([]*entity.NCFBatch, error)

	// Update persiste rango, vencimiento y bandera de activo. Retorna false si
	// el guard de commit falla: el last_used actual ya superó el nuevo
	// range_end (una asignación concurrente ganó la carrera).
	Update(ctx context.Context, batch *entity.NCFBatch) (bool, error)

	// AdvanceCursor incrementa last_used en 1 solo si su valor persistido
	// sigue siendo expected (compare-and-swap). Retorna false si otro proceso
	// movió el cursor primero; el asignador decide reintentar.
	AdvanceCursor(ctx context.Context, id string, expected int64) (bool, error)

	Delete(ctx context.Context, id string) error
}
