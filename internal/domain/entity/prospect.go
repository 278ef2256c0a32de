package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProspectStatus es el estado de un prospecto en el embudo de ventas.
type ProspectStatus string

const (
	StatusLead     ProspectStatus = "LEAD"
	StatusProposal ProspectStatus = "PROPOSAL"
	StatusWon      ProspectStatus = "WON"
	StatusLoss     ProspectStatus = "LOSS"
	StatusHold     ProspectStatus = "HOLD"
	// StatusRealLoss es terminal: solo alcanzable desde LOSS y nunca
	// visible en el tablero.
	StatusRealLoss ProspectStatus = "REAL_LOSS"
)

// BoardStatuses son las columnas del tablero kanban, en orden de despliegue.
func BoardStatuses() []ProspectStatus {
	return []ProspectStatus{StatusLead, StatusProposal, StatusWon, StatusLoss, StatusHold}
}

// Valid reporta si el estado pertenece al conjunto cerrado.
func (s ProspectStatus) Valid() bool {
	switch s {
	case StatusLead, StatusProposal, StatusWon, StatusLoss, StatusHold, StatusRealLoss:
		return true
	}
	return false
}

// BoardVisible reporta si el estado tiene columna en el tablero.
func (s ProspectStatus) BoardVisible() bool {
	return s.Valid() && s != StatusRealLoss
}

// ProjectRef es el resumen del proyecto asociado que viaja embebido en el
// detalle de un prospecto ganado (o cerrado como Real Loss).
type ProjectRef struct {
	ID     string
	IsDone bool
}

// Prospect es un lead de venta. NoProject es la clave natural (ej. "IMX.2026.001").
type Prospect struct {
	NoProject   string
	NameProject string
	ClientName  string
	ContactName string
	Status      ProspectStatus
	DealValue   decimal.Decimal
	Project     *ProjectRef // solo en fetches de detalle
	Subtasks    []Subtask   // checklist pre-venta; solo en fetches de detalle
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ID devuelve la clave natural del prospecto.
func (p Prospect) ID() string { return p.NoProject }
