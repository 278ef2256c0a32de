package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tu-usuario/prospect-board/internal/application/capability"
	"github.com/tu-usuario/prospect-board/internal/application/dto"
	"github.com/tu-usuario/prospect-board/internal/application/view"
	"github.com/tu-usuario/prospect-board/internal/domain"
	"github.com/tu-usuario/prospect-board/internal/domain/entity"
)

// detailModel es el detalle de un proyecto: cabecera con agregados, link y
// la lista de subtareas con sus checkpoints. Los checkpoints no se aplican
// en optimista: la fila muestra "guardando" hasta que llegue el refetch.
type detailModel struct {
	project entity.Project
	cursor  int
	modal   modalKind
	inputs  []textinput.Model
	focus   int
	saving  bool
	errMsg  string
}

func newDetailModel(p entity.Project) detailModel {
	return detailModel{project: p}
}

func (m detailModel) update(msg tea.Msg, deps Deps) (detailModel, tea.Cmd) {
	if m.modal == modalNewSubtask || m.modal == modalEditLink {
		return m.updateModal(msg, deps)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		role := currentRole(deps)
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.project.Subtasks)-1 {
				m.cursor++
			}
		case "+", "=", "-", "_":
			if m.saving || m.cursor >= len(m.project.Subtasks) {
				return m, nil
			}
			if !capability.CanPerform(role, capability.ActionEditSubtask) {
				m.errMsg = "tu rol no puede editar subtareas"
				return m, nil
			}
			st := m.project.Subtasks[m.cursor]
			next := neighborCheckpoint(st.Progress, msg.String() == "+" || msg.String() == "=")
			if next == st.Progress {
				return m, nil
			}
			m.saving = true
			m.errMsg = ""
			return m, deps.setCheckpointCmd(m.project.ID, st.ID, next)
		case "a":
			if !capability.CanPerform(role, capability.ActionCreateSubtask) {
				m.errMsg = "tu rol no puede crear subtareas"
				return m, nil
			}
			m.modal = modalNewSubtask
			m.inputs = subtaskInputs()
			m.focus = 0
			m.errMsg = ""
		case "D":
			if m.cursor >= len(m.project.Subtasks) {
				return m, nil
			}
			if !capability.CanPerform(role, capability.ActionDeleteSubtask) {
				m.errMsg = "tu rol no puede borrar subtareas"
				return m, nil
			}
			m.saving = true
			return m, deps.deleteSubtaskCmd(m.project.ID, m.project.Subtasks[m.cursor].ID)
		case "e":
			if !capability.CanPerform(role, capability.ActionEditProjectLink) {
				m.errMsg = "tu rol no puede editar el link"
				return m, nil
			}
			m.modal = modalEditLink
			in := textinput.New()
			in.Placeholder = "https://..."
			in.SetValue(m.project.Link)
			in.CharLimit = 300
			in.Focus()
			m.inputs = []textinput.Model{in}
			m.focus = 0
			m.errMsg = ""
		case "r":
			return m, deps.openProjectCmd(m.project.ID)
		}

	case projectLoadedMsg:
		m.saving = false
		if msg.err != nil {
			m.errMsg = "no se pudo recargar el proyecto"
			return m, nil
		}
		if msg.project.ID == m.project.ID {
			m.project = msg.project
			if m.cursor >= len(m.project.Subtasks) {
				m.cursor = max(0, len(m.project.Subtasks)-1)
			}
		}

	case subtaskMutatedMsg:
		m.saving = false
		if msg.err != nil {
			if domain.IsValidationError(msg.err) {
				m.errMsg = "el backend rechazó el cambio"
			} else {
				m.errMsg = "no se pudo guardar la subtarea"
			}
			return m, nil
		}
		m.modal = modalNone
		// El motor ya refrescó el caché; recargar el detalle para pintar los
		// agregados que recomputó el backend.
		return m, deps.openProjectCmd(m.project.ID)

	case linkSavedMsg:
		if msg.err != nil {
			m.errMsg = "no se pudo guardar el link"
			return m, nil
		}
		m.modal = modalNone
		return m, deps.openProjectCmd(m.project.ID)
	}
	return m, nil
}

func (m detailModel) updateModal(msg tea.Msg, deps Deps) (detailModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "esc":
		m.modal = modalNone
		return m, nil
	case "tab", "down":
		if len(m.inputs) > 1 {
			m.focus = (m.focus + 1) % len(m.inputs)
			m.syncFocus()
		}
		return m, nil
	case "shift+tab", "up":
		if len(m.inputs) > 1 {
			m.focus = (m.focus + len(m.inputs) - 1) % len(m.inputs)
			m.syncFocus()
		}
		return m, nil
	case "enter":
		if m.modal == modalEditLink {
			return m, deps.saveLinkCmd(m.project.ID, strings.TrimSpace(m.inputs[0].Value()))
		}
		return m.submitSubtask(deps)
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *detailModel) syncFocus() {
	for i := range m.inputs {
		if i == m.focus {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

func subtaskInputs() []textinput.Model {
	labels := []string{"nombre", "descripción", "deadline (2026-09-15)", "link"}
	inputs := make([]textinput.Model, len(labels))
	for i, l := range labels {
		in := textinput.New()
		in.Placeholder = l
		in.CharLimit = 200
		inputs[i] = in
	}
	inputs[0].Focus()
	return inputs
}

func (m detailModel) submitSubtask(deps Deps) (detailModel, tea.Cmd) {
	name := strings.TrimSpace(m.inputs[0].Value())
	if name == "" {
		m.errMsg = "el nombre es requerido"
		return m, nil
	}
	var deadline time.Time
	if raw := strings.TrimSpace(m.inputs[2].Value()); raw != "" {
		var err error
		deadline, err = time.Parse("2006-01-02", raw)
		if err != nil {
			m.errMsg = "deadline inválido; formato 2026-09-15"
			return m, nil
		}
	}
	m.errMsg = ""
	m.saving = true
	return m, deps.createSubtaskCmd(dto.CreateSubtaskRequest{
		ProjectID:   m.project.ID,
		Name:        name,
		Description: strings.TrimSpace(m.inputs[1].Value()),
		Deadline:    deadline,
		Link:        strings.TrimSpace(m.inputs[3].Value()),
	})
}

// neighborCheckpoint devuelve el checkpoint adyacente en la escala. La API
// acepta cualquier salto, pero con teclado se avanza de uno en uno.
func neighborCheckpoint(cp entity.Checkpoint, up bool) entity.Checkpoint {
	all := entity.Checkpoints()
	for i, c := range all {
		if c == cp {
			if up && i < len(all)-1 {
				return all[i+1]
			}
			if !up && i > 0 {
				return all[i-1]
			}
			return cp
		}
	}
	return cp
}

func (m detailModel) view() string {
	if m.modal == modalNewSubtask {
		return m.modalView("Nueva subtarea", "tab: campo · enter: crear · esc: cancelar")
	}
	if m.modal == modalEditLink {
		return m.modalView("Link del proyecto", "enter: guardar · esc: cancelar")
	}

	var b strings.Builder
	p := m.project
	b.WriteString(columnHeaderStyle.Render(fmt.Sprintf("%s · %s", p.Prospect.NoProject, p.Prospect.NameProject)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %3d%%  %s\n", renderBar(p.Progress, 24), p.Progress, view.ProjectStatusLabel(p)))
	if p.Link != "" {
		b.WriteString(dimStyle.Render("link: "+p.Link) + "\n")
	}
	b.WriteString("\n")

	now := time.Now()
	if len(p.Subtasks) == 0 {
		b.WriteString(dimStyle.Render("  (sin subtareas)") + "\n")
	}
	for i, st := range p.Subtasks {
		deadline := ""
		if !st.Deadline.IsZero() {
			deadline = view.RelativeDeadline(st.Deadline, now)
		}
		line := fmt.Sprintf("[%-4s] %-30s %s", st.Progress.Label(), truncate(st.Name, 30), deadline)
		switch {
		case i == m.cursor && m.saving:
			b.WriteString(selectedCardStyle.Render(line + "  guardando..."))
		case i == m.cursor:
			b.WriteString(selectedCardStyle.Render(line))
		case view.IsOverdue(st, now):
			b.WriteString(overdueStyle.Render(line + "  VENCIDA"))
		case st.Progress == entity.CheckpointDone:
			b.WriteString(doneStyle.Render(line))
		default:
			b.WriteString(cardStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if m.errMsg != "" {
		b.WriteString("\n" + errorStyle.Render(m.errMsg))
	}
	b.WriteString("\n" + helpStyle.Render("j/k: mover · +/-: checkpoint · a: nueva · D: borrar · e: link · r: recargar · esc: volver"))
	return b.String()
}

func (m detailModel) modalView(title, help string) string {
	var b strings.Builder
	b.WriteString(columnHeaderStyle.Render(title))
	b.WriteString("\n\n")
	for i := range m.inputs {
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}
	if m.errMsg != "" {
		b.WriteString("\n" + errorStyle.Render(m.errMsg))
	}
	b.WriteString("\n" + helpStyle.Render(help))
	return modalStyle.Render(b.String())
}
