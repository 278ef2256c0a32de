// Package view contiene cálculos puros derivados del estado cacheado.
// Se recomputan en cada lectura y no guardan estado propio.
package view

import (
	"fmt"
	"time"

	"github.com/tu-usuario/prospect-board/internal/domain/entity"
)

// IsOverdue reporta si la subtarea está vencida: deadline en el pasado y
// progreso estrictamente menor a 100. Una subtarea terminada nunca está
// vencida, por antiguo que sea su deadline.
func IsOverdue(st entity.Subtask, now time.Time) bool {
	return st.Deadline.Before(now) && st.Progress < entity.CheckpointDone
}

// ProjectStatusLabel etiqueta de estado de un proyecto para listados.
func ProjectStatusLabel(p entity.Project) string {
	if p.Prospect.Status == entity.StatusRealLoss {
		return "REAL LOSS"
	}
	if p.IsDone {
		return "COMPLETED"
	}
	return "IN PROGRESS"
}

// RelativeDeadline describe la distancia al deadline en lenguaje natural
// ("en 3 días", "hace 2 horas"), como la vista original.
func RelativeDeadline(deadline, now time.Time) string {
	d := deadline.Sub(now)
	past := d < 0
	if past {
		d = -d
	}

	var phrase string
	switch {
	case d < time.Minute:
		phrase = "menos de un minuto"
	case d < time.Hour:
		phrase = plural(int(d.Round(time.Minute)/time.Minute), "minuto", "minutos")
	case d < 24*time.Hour:
		phrase = plural(int(d.Round(time.Hour)/time.Hour), "hora", "horas")
	case d < 30*24*time.Hour:
		phrase = plural(int(d/(24*time.Hour)), "día", "días")
	default:
		phrase = plural(int(d/(30*24*time.Hour)), "mes", "meses")
	}

	if past {
		return "hace " + phrase
	}
	return "en " + phrase
}

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return "1 " + singular
	}
	return fmt.Sprintf("%d %s", n, pluralForm)
}
