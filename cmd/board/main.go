package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tu-usuario/prospect-board/internal/application/kanban"
	"github.com/tu-usuario/prospect-board/internal/application/ordering"
	"github.com/tu-usuario/prospect-board/internal/application/progress"
	"github.com/tu-usuario/prospect-board/internal/application/session"
	"github.com/tu-usuario/prospect-board/internal/application/store"
	"github.com/tu-usuario/prospect-board/internal/domain/entity"
	"github.com/tu-usuario/prospect-board/internal/infrastructure/rest"
	"github.com/tu-usuario/prospect-board/internal/infrastructure/sessionfile"
	"github.com/tu-usuario/prospect-board/internal/interfaces/tui"
	"github.com/tu-usuario/prospect-board/pkg/config"
	"github.com/tu-usuario/prospect-board/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}

	// stdout es de la interfaz; los logs van a archivo si se configura, o se
	// descartan para no romper el render.
	log := logger.Nop()
	if path := os.Getenv("BOARD_LOG"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err == nil {
			defer f.Close()
			log = logger.New(logger.Config{Env: cfg.App.Env, Level: "debug", Out: f})
		}
	}

	sessionStore := sessionfile.NewStore(cfg.Session.Path)

	// El cliente y el gestor de sesión se referencian mutuamente: el gestor
	// provee el token y el cliente le notifica los 401/403.
	var manager *session.Manager
	client := rest.NewClient(cfg.API.BaseURL, log,
		rest.WithTimeout(time.Duration(cfg.API.TimeoutSeconds)*time.Second),
		rest.WithTokenProvider(tokenFunc(func() string {
			if manager == nil {
				return ""
			}
			return manager.Token()
		})),
		rest.WithUnauthorizedObserver(observerFunc(func(status int) {
			if manager != nil {
				manager.OnUnauthorized(status)
			}
		})),
	)
	manager = session.NewManager(client, sessionStore, log)

	prospects := store.New(func(p entity.Prospect) string { return p.NoProject })
	projects := store.New(func(p entity.Project) string { return p.ID })

	deps := tui.Deps{
		Session:   manager,
		Prospects: prospects,
		Projects:  projects,
		Board:     kanban.New(prospects, client.Prospects(), log),
		Ordering:  ordering.New(projects, client.Projects(), log),
		Progress:  progress.New(projects, client.Subtasks(), client.Projects(), log),
		Client:    client,
		Log:       log,
	}

	p := tea.NewProgram(tui.New(deps), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "error de interfaz:", err)
		os.Exit(1)
	}
}

type tokenFunc func() string

func (f tokenFunc) Token() string { return f() }

type observerFunc func(int)

func (f observerFunc) OnUnauthorized(status int) { f(status) }
