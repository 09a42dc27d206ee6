package entity

import "time"

// Acciones registradas en la pista de auditoría fiscal.
const (
	AuditNCFAllocated = "ncf.allocated"
	AuditBatchCreated = "ncf.batch.created"
	AuditBatchUpdated = "ncf.batch.updated"
	AuditBatchDeleted = "ncf.batch.deleted"
	AuditInvoiceIssued = "invoice.issued"
)

// AuditEntry es un evento de la pista de auditoría fiscal: quién hizo qué
// sobre qué recurso, con el estado anterior y posterior serializado en JSON.
// Los snapshots preservan la historia aun cuando el recurso se borra.
type AuditEntry struct {
	ID         string
	CompanyID  string
	ActorID    string // usuario que ejecutó la operación
	Action     string // ver constantes Audit*
	Resource   string // "ncf_batch", "invoice"
	ResourceID string
	Before     string // JSON del estado previo; vacío en creaciones
	After      string // JSON del estado resultante; vacío en borrados
	CreatedAt  time.Time
}
