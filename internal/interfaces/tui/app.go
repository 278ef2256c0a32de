// Package tui es la interfaz de terminal del tablero: login, kanban de
// prospectos, lista de proyectos y detalle con subtareas. Es una capa fina:
// el estado compartido vive en los cachés y las políticas de sincronización
// en los motores de aplicación.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tu-usuario/prospect-board/internal/application/dto"
	"github.com/tu-usuario/prospect-board/internal/domain/entity"
	"github.com/tu-usuario/prospect-board/pkg/logger"
)

// Model es el modelo raíz. Enruta mensajes a la vista activa y vigila la
// sesión: si cualquier respuesta derriba la sesión, todas las vistas
// colapsan al login.
type Model struct {
	deps Deps

	view     screen
	login    loginModel
	board    boardModel
	projects projectsModel
	detail   detailModel
	prospect prospectDetailModel

	stats    dto.StatsResponse
	hasStats bool
	width    int
	height   int
	notice   string
	log      *logger.Logger
}

// New construye el modelo raíz. Si hay una sesión persistida válida se entra
// directo al tablero.
func New(deps Deps) Model {
	m := Model{
		deps:     deps,
		view:     viewLogin,
		login:    newLoginModel(),
		board:    newBoardModel(),
		projects: projectsModel{},
		log:      deps.Log.Component("tui"),
	}
	if deps.Session.Current().Authenticated() {
		m.view = viewBoard
	}
	return m
}

func (m Model) Init() tea.Cmd {
	if m.view == viewBoard {
		return tea.Batch(m.deps.fetchBoardCmd(), m.deps.fetchStatsCmd())
	}
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.view != viewLogin && !m.inModal() {
			switch msg.String() {
			case "1":
				m.view = viewBoard
				return m, tea.Batch(m.deps.fetchBoardCmd(), m.deps.fetchStatsCmd())
			case "2":
				m.view = viewProjects
				return m, m.deps.fetchProjectsCmd(m.projects.showDone)
			case "q":
				return m, tea.Quit
			case "ctrl+l":
				m.deps.Session.Logout()
				m.view = viewLogin
				m.login = newLoginModel()
				m.notice = ""
				return m, nil
			case "esc":
				switch m.view {
				case viewProjectDetail:
					m.view = viewProjects
					return m, m.deps.fetchProjectsCmd(m.projects.showDone)
				case viewProspectDetail:
					m.view = viewBoard
					return m, m.deps.fetchBoardCmd()
				}
			case "enter":
				switch m.view {
				case viewBoard:
					if p, ok := m.board.selected(m.deps); ok {
						return m, m.deps.openProspectCmd(p.NoProject)
					}
				case viewProjects:
					items := m.projects.visible(m.deps)
					if m.projects.cursor < len(items) {
						return m, m.deps.openProjectCmd(items[m.projects.cursor].ID)
					}
				}
			}
		}

	case loginResultMsg:
		var cmd tea.Cmd
		m.login, cmd = m.login.update(msg, m.deps)
		if msg.err == nil {
			m.view = viewBoard
			return m, tea.Batch(m.deps.fetchBoardCmd(), m.deps.fetchStatsCmd())
		}
		return m, cmd

	case projectLoadedMsg:
		// Abrir el detalle solo si venimos de una lista; si ya está abierto,
		// el mensaje es un refetch y lo consume la vista.
		if m.view != viewProjectDetail {
			if msg.err != nil {
				return m.afterError(msg.err), nil
			}
			m.view = viewProjectDetail
			m.detail = newDetailModel(msg.project)
			return m, nil
		}

	case prospectLoadedMsg:
		if m.view != viewProspectDetail {
			if msg.err != nil {
				return m.afterError(msg.err), nil
			}
			m.view = viewProspectDetail
			m.prospect = newProspectDetailModel(msg.prospect)
			return m, nil
		}

	case statsLoadedMsg:
		if msg.err == nil {
			m.stats = msg.stats
			m.hasStats = true
		}
		return m, nil
	}

	// Cualquier error de sesión colapsa al login, venga de donde venga.
	if err := errFrom(msg); err != nil {
		if next, ok := m.routeSessionLoss(); ok {
			return next, nil
		}
	}

	var cmd tea.Cmd
	switch m.view {
	case viewLogin:
		m.login, cmd = m.login.update(msg, m.deps)
	case viewBoard:
		m.board, cmd = m.board.update(msg, m.deps)
	case viewProjects:
		m.projects, cmd = m.projects.update(msg, m.deps)
	case viewProjectDetail:
		m.detail, cmd = m.detail.update(msg, m.deps)
	case viewProspectDetail:
		m.prospect, cmd = m.prospect.update(msg, m.deps)
	}
	return m, cmd
}

func (m Model) inModal() bool {
	switch m.view {
	case viewBoard:
		return m.board.modal != modalNone
	case viewProjectDetail:
		return m.detail.modal != modalNone
	case viewProspectDetail:
		return m.prospect.modal != modalNone
	}
	return false
}

// routeSessionLoss detecta que el gestor de sesión ya hizo el logout global
// (lo dispara el cliente HTTP ante cualquier 401/403) y devuelve el modelo en
// la vista de login.
func (m Model) routeSessionLoss() (Model, bool) {
	if m.view == viewLogin || m.deps.Session.Current().Authenticated() {
		return m, false
	}
	m.log.Warn().Msg("sesión terminada por el backend; volviendo al login")
	m.view = viewLogin
	m.login = newLoginModel()
	m.login.errMsg = "la sesión expiró; vuelve a entrar"
	return m, true
}

func (m Model) afterError(err error) Model {
	if next, ok := m.routeSessionLoss(); ok {
		return next
	}
	m.notice = "error: " + err.Error()
	return m
}

// errFrom extrae el error de los mensajes de resultado que lo transportan.
func errFrom(msg tea.Msg) error {
	switch msg := msg.(type) {
	case boardLoadedMsg:
		return msg.err
	case projectsLoadedMsg:
		return msg.err
	case moveResultMsg:
		return msg.err
	case realLossResultMsg:
		return msg.err
	case projectLoadedMsg:
		return msg.err
	case prospectLoadedMsg:
		return msg.err
	case subtaskMutatedMsg:
		return msg.err
	case prospectCreatedMsg:
		return msg.err
	case statsLoadedMsg:
		return msg.err
	case linkSavedMsg:
		return msg.err
	}
	return nil
}

func (m Model) View() string {
	if m.view == viewLogin {
		return "\n" + m.login.view() + "\n"
	}

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n\n")
	switch m.view {
	case viewBoard:
		b.WriteString(m.board.view(m.deps, m.width))
	case viewProjects:
		b.WriteString(m.projects.view(m.deps))
	case viewProjectDetail:
		b.WriteString(m.detail.view())
	case viewProspectDetail:
		b.WriteString(m.prospect.view())
	}
	if m.notice != "" {
		b.WriteString("\n" + noticeStyle.Render(m.notice))
	}
	return b.String()
}

func (m Model) header() string {
	sess := m.deps.Session.Current()
	who := ""
	if sess.User != nil {
		who = fmt.Sprintf("%s (%s)", sess.User.Username, sess.User.Role)
	}
	title := titleStyle.Render("Prospect Board")
	tabs := dimStyle.Render("  [1] tablero  [2] proyectos")
	stats := ""
	if m.hasStats {
		stats = dimStyle.Render(fmt.Sprintf("  prospectos: %d · activos: %d · revenue: %s",
			m.stats.TotalProspects, m.stats.ActiveProjects, m.stats.Revenue))
	}
	return title + tabs + stats + dimStyle.Render("  ·  "+who)
}

// currentRole es el rol de la sesión vigente; vacío si no hay login.
func currentRole(deps Deps) entity.Role {
	sess := deps.Session.Current()
	if sess.User == nil {
		return ""
	}
	return sess.User.Role
}
