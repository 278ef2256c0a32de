package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tu-usuario/prospect-board/internal/application/dto"
	"github.com/tu-usuario/prospect-board/internal/domain/entity"
	"github.com/tu-usuario/prospect-board/internal/infrastructure/sqlite"
	apphttp "github.com/tu-usuario/prospect-board/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Arranque de la API completa sobre una base en memoria
// ──────────────────────────────────────────────────────────────────────────────

type testAPI struct {
	app *fiber.App
	t   *testing.T
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	db, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := sqlite.NewUserRepository(db)
	hash, err := bcrypt.GenerateFromPassword([]byte("secreto123"), bcrypt.DefaultCost)
	require.NoError(t, err)
	for i, role := range []entity.Role{entity.RoleSuperadmin, entity.RoleManager, entity.RoleSales, entity.RoleEngineer} {
		require.NoError(t, users.Create(context.Background(), sqlite.UserRecord{
			ID:           "u-" + string(rune('1'+i)),
			Username:     string(role),
			PasswordHash: string(hash),
			Role:         role,
			CreatedAt:    time.Now().UTC(),
		}))
	}

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Users:      users,
		Prospects:  sqlite.NewProspectRepository(db),
		Projects:   sqlite.NewProjectRepository(db),
		Subtasks:   sqlite.NewSubtaskRepository(db),
		JWTSecret:  testJWTSecret,
		JWTIssuer:  testIssuer,
		JWTMinutes: testExpMin,
	})
	return &testAPI{app: app, t: t}
}

// do lanza una petición con token opcional y decodifica la respuesta en out.
func (a *testAPI) do(method, path, token string, body, out any) int {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		require.NoError(a.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// login obtiene un token real vía POST /api/auth/login.
func (a *testAPI) login(role entity.Role) string {
	a.t.Helper()
	var out dto.LoginResponse
	code := a.do(http.MethodPost, "/api/auth/login", "",
		dto.LoginRequest{Username: string(role), Password: "secreto123"}, &out)
	require.Equal(a.t, http.StatusOK, code)
	require.NotEmpty(a.t, out.Token)
	return out.Token
}

func (a *testAPI) createProspect(token, no string) {
	a.t.Helper()
	code := a.do(http.MethodPost, "/api/prospects", token, dto.CreateProspectRequest{
		NoProject: no, NameProject: "Planta " + no, ClientName: "Cliente",
	}, nil)
	require.Equal(a.t, http.StatusCreated, code)
}

func (a *testAPI) setStatus(token, no string, status entity.ProspectStatus) int {
	a.t.Helper()
	s := string(status)
	return a.do(http.MethodPut, "/api/prospects/"+no, token,
		dto.UpdateProspectRequest{Status: &s}, nil)
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujos de la API
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_LoginRechazaCredencialesMalas(t *testing.T) {
	api := newTestAPI(t)

	code := api.do(http.MethodPost, "/api/auth/login", "",
		dto.LoginRequest{Username: "Manager", Password: "incorrecta"}, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	// Usuario inexistente responde igual que contraseña mala.
	code = api.do(http.MethodPost, "/api/auth/login", "",
		dto.LoginRequest{Username: "fantasma", Password: "secreto123"}, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestAPI_RutasProtegidasSinToken(t *testing.T) {
	api := newTestAPI(t)
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/prospects", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/stats", "", nil, nil))
}

func TestAPI_GanarProspectoCreaProyectoActivo(t *testing.T) {
	api := newTestAPI(t)
	token := api.login(entity.RoleManager)

	api.createProspect(token, "IMX.001")
	require.Equal(t, http.StatusOK, api.setStatus(token, "IMX.001", entity.StatusWon))

	var projects []dto.ProjectResponse
	code := api.do(http.MethodGet, "/api/projects?is_done=false", token, nil, &projects)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, projects, 1)
	assert.Equal(t, "IMX.001", projects[0].Prospect.NoProject)
	assert.False(t, projects[0].IsDone)
}

func TestAPI_RealLossExigeRolYOrigen(t *testing.T) {
	api := newTestAPI(t)
	manager := api.login(entity.RoleManager)
	sales := api.login(entity.RoleSales)

	api.createProspect(manager, "IMX.001")

	// Sales puede mover columnas normales pero no castigar.
	require.Equal(t, http.StatusOK, api.setStatus(sales, "IMX.001", entity.StatusLoss))
	assert.Equal(t, http.StatusForbidden, api.setStatus(sales, "IMX.001", entity.StatusRealLoss))

	// Manager sí, pero solo desde LOSS.
	require.Equal(t, http.StatusOK, api.setStatus(manager, "IMX.001", entity.StatusRealLoss))

	// El proyecto nace cerrado al 100% y el prospecto queda terminal.
	var done []dto.ProjectResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/projects?is_done=true", manager, nil, &done))
	require.Len(t, done, 1)
	assert.Equal(t, "REAL_LOSS", done[0].Prospect.Status)
	assert.Equal(t, 100, done[0].Progress)

	assert.Equal(t, http.StatusConflict, api.setStatus(manager, "IMX.001", entity.StatusLead))
}

func TestAPI_CrearProspectoRequiereRolDeVentas(t *testing.T) {
	api := newTestAPI(t)
	engineer := api.login(entity.RoleEngineer)

	code := api.do(http.MethodPost, "/api/prospects", engineer, dto.CreateProspectRequest{
		NoProject: "IMX.001", NameProject: "x", ClientName: "y",
	}, nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestAPI_AgregadosViaSubtareas(t *testing.T) {
	api := newTestAPI(t)
	token := api.login(entity.RoleEngineer)
	manager := api.login(entity.RoleManager)

	api.createProspect(manager, "IMX.001")
	require.Equal(t, http.StatusOK, api.setStatus(manager, "IMX.001", entity.StatusWon))

	var projects []dto.ProjectResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/projects?is_done=false", token, nil, &projects))
	projectID := projects[0].ID

	// Dos subtareas: el proyecto promedia y no cierra hasta que ambas lleguen a 100.
	var st1, st2 dto.SubtaskResponse
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/projects/subtasks", token,
		dto.CreateSubtaskRequest{ProjectID: projectID, Name: "planos"}, &st1))
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/projects/subtasks", token,
		dto.CreateSubtaskRequest{ProjectID: projectID, Name: "montaje"}, &st2))

	cien := 100
	require.Equal(t, http.StatusOK, api.do(http.MethodPut, "/api/projects/subtasks/"+st1.ID, token,
		dto.UpdateSubtaskRequest{Progress: &cien}, nil))

	var pj dto.ProjectResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/projects/"+projectID, token, nil, &pj))
	assert.Equal(t, 50, pj.Progress)
	assert.False(t, pj.IsDone)

	require.Equal(t, http.StatusOK, api.do(http.MethodPut, "/api/projects/subtasks/"+st2.ID, token,
		dto.UpdateSubtaskRequest{Progress: &cien}, nil))
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/projects/"+projectID, token, nil, &pj))
	assert.Equal(t, 100, pj.Progress)
	assert.True(t, pj.IsDone)

	// El autor sale del token.
	assert.Equal(t, "Engineer", pj.Subtasks[0].CreatedBy.Username)

	// Un checkpoint intermedio se rechaza.
	raro := 55
	code := api.do(http.MethodPut, "/api/projects/subtasks/"+st1.ID, token,
		dto.UpdateSubtaskRequest{Progress: &raro}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAPI_BorrarSubtareaSoloGestion(t *testing.T) {
	api := newTestAPI(t)
	manager := api.login(entity.RoleManager)
	engineer := api.login(entity.RoleEngineer)

	api.createProspect(manager, "IMX.001")
	require.Equal(t, http.StatusOK, api.setStatus(manager, "IMX.001", entity.StatusWon))

	var projects []dto.ProjectResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/projects?is_done=false", manager, nil, &projects))

	var st dto.SubtaskResponse
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/projects/subtasks", engineer,
		dto.CreateSubtaskRequest{ProjectID: projects[0].ID, Name: "temporal"}, &st))

	assert.Equal(t, http.StatusForbidden,
		api.do(http.MethodDelete, "/api/projects/subtasks/"+st.ID, engineer, nil, nil))
	assert.Equal(t, http.StatusOK,
		api.do(http.MethodDelete, "/api/projects/subtasks/"+st.ID, manager, nil, nil))
}

func TestAPI_ReorderPersisteElOrden(t *testing.T) {
	api := newTestAPI(t)
	token := api.login(entity.RoleManager)

	for _, no := range []string{"IMX.001", "IMX.002", "IMX.003"} {
		api.createProspect(token, no)
		require.Equal(t, http.StatusOK, api.setStatus(token, no, entity.StatusWon))
	}

	var projects []dto.ProjectResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/projects?is_done=false", token, nil, &projects))
	require.Len(t, projects, 3)

	reordered := []string{projects[2].ID, projects[0].ID, projects[1].ID}
	require.Equal(t, http.StatusOK, api.do(http.MethodPut, "/api/projects/reorder", token,
		dto.ReorderRequest{OrderedIDs: reordered}, nil))

	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/projects?is_done=false", token, nil, &projects))
	assert.Equal(t, "IMX.003", projects[0].Prospect.NoProject)
	assert.Equal(t, "IMX.001", projects[1].Prospect.NoProject)
	assert.Equal(t, "IMX.002", projects[2].Prospect.NoProject)
}

func TestAPI_EditarLinkSegunRol(t *testing.T) {
	api := newTestAPI(t)
	manager := api.login(entity.RoleManager)
	sales := api.login(entity.RoleSales)
	engineer := api.login(entity.RoleEngineer)

	api.createProspect(manager, "IMX.001")
	require.Equal(t, http.StatusOK, api.setStatus(manager, "IMX.001", entity.StatusWon))

	var projects []dto.ProjectResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/projects?is_done=false", manager, nil, &projects))
	id := projects[0].ID

	link := "https://drive.example.com/carpeta"
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodPut, "/api/projects/"+id, sales,
		dto.UpdateProjectRequest{Link: &link}, nil))

	var pj dto.ProjectResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodPut, "/api/projects/"+id, engineer,
		dto.UpdateProjectRequest{Link: &link}, &pj))
	assert.Equal(t, link, pj.Link)

	// El cierre manual es otra tabla: Engineer no puede.
	done := true
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodPut, "/api/projects/"+id, engineer,
		dto.UpdateProjectRequest{IsDone: &done}, nil))
	require.Equal(t, http.StatusOK, api.do(http.MethodPut, "/api/projects/"+id, manager,
		dto.UpdateProjectRequest{IsDone: &done}, &pj))
	assert.True(t, pj.IsDone)
}

func TestAPI_StatsDelDashboard(t *testing.T) {
	api := newTestAPI(t)
	token := api.login(entity.RoleManager)

	code := api.do(http.MethodPost, "/api/prospects", token, dto.CreateProspectRequest{
		NoProject: "IMX.001", NameProject: "Planta", ClientName: "Cliente",
		DealValue: decimal.NewFromInt(2500),
	}, nil)
	require.Equal(t, http.StatusCreated, code)
	api.createProspect(token, "IMX.002")

	require.Equal(t, http.StatusOK, api.setStatus(token, "IMX.001", entity.StatusWon))

	var stats dto.StatsResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/stats", token, nil, &stats))
	assert.Equal(t, 2, stats.TotalProspects)
	assert.Equal(t, 1, stats.ActiveProjects)
	assert.Equal(t, "2500", stats.Revenue)
}

func TestAPI_ChecklistDeProspecto(t *testing.T) {
	api := newTestAPI(t)
	token := api.login(entity.RoleSales)

	api.createProspect(token, "IMX.001")

	var st dto.SubtaskResponse
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/projects/subtasks", token,
		dto.CreateSubtaskRequest{ProspectID: "IMX.001", Name: "visita técnica"}, &st))

	var p dto.ProspectResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/prospects/IMX.001", token, nil, &p))
	require.Len(t, p.Subtasks, 1)
	assert.Equal(t, "visita técnica", p.Subtasks[0].Name)
}
