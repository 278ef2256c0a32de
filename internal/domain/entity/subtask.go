package entity

import "time"

// Checkpoint es uno de los seis valores fijos de progreso de una subtarea.
// No existen valores intermedios asignables desde la interfaz.
type Checkpoint int

const (
	CheckpointNew  Checkpoint = 0
	CheckpointIFI  Checkpoint = 20 // Issued for Information
	CheckpointIFR  Checkpoint = 40 // Issued for Review
	CheckpointIFA  Checkpoint = 60 // Issued for Approval
	CheckpointIFC  Checkpoint = 80 // Issued for Construction
	CheckpointDone Checkpoint = 100
)

// Checkpoints devuelve los seis valores en orden ascendente.
func Checkpoints() []Checkpoint {
	return []Checkpoint{CheckpointNew, CheckpointIFI, CheckpointIFR, CheckpointIFA, CheckpointIFC, CheckpointDone}
}

// Valid reporta si c es uno de los seis valores permitidos.
func (c Checkpoint) Valid() bool {
	switch c {
	case CheckpointNew, CheckpointIFI, CheckpointIFR, CheckpointIFA, CheckpointIFC, CheckpointDone:
		return true
	}
	return false
}

// Label devuelve la etiqueta corta de la etapa (NEW, IFI, ..., DONE).
func (c Checkpoint) Label() string {
	switch c {
	case CheckpointDone:
		return "DONE"
	case CheckpointIFC:
		return "IFC"
	case CheckpointIFA:
		return "IFA"
	case CheckpointIFR:
		return "IFR"
	case CheckpointIFI:
		return "IFI"
	default:
		return "NEW"
	}
}

// CreatedBy identifica al autor de una subtarea.
type CreatedBy struct {
	ID       string
	Username string
}

// Subtask es una unidad de trabajo con deadline y checkpoint de progreso.
// Cuelga de un proyecto o de un prospecto (checklist pre-venta).
type Subtask struct {
	ID          string
	ProjectID   string // vacío si cuelga de un prospecto
	ProspectID  string // vacío si cuelga de un proyecto
	Name        string
	Description string
	Deadline    time.Time
	Progress    Checkpoint
	Link        string
	CreatedBy   CreatedBy
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
