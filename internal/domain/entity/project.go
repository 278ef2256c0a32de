package entity

import "time"

// Project es el compromiso de entrega creado cuando un prospecto se gana
// (o se castiga como Real Loss). Progress e IsDone son agregados que computa
// el backend sobre las subtareas; el cliente nunca los deriva por su cuenta,
// salvo el toggle manual de IsDone que es una vía independiente.
type Project struct {
	ID        string
	Prospect  Prospect // referencia embebida (no_project es la unión)
	Link      string
	Progress  int      // 0-100, media de las subtareas
	IsDone    bool
	Order     int      // posición en el tablero "en curso"; solo la muta el reordenamiento
	Subtasks  []Subtask
	CreatedAt time.Time
	UpdatedAt time.Time
}
