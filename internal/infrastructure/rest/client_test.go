package rest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/prospect-board/internal/application/dto"
	"github.com/tu-usuario/prospect-board/internal/domain"
	"github.com/tu-usuario/prospect-board/internal/domain/entity"
	"github.com/tu-usuario/prospect-board/internal/infrastructure/rest"
	"github.com/tu-usuario/prospect-board/pkg/logger"
)

type staticToken string

func (t staticToken) Token() string { return string(t) }

type spyObserver struct {
	statuses []int
}

func (o *spyObserver) OnUnauthorized(status int) { o.statuses = append(o.statuses, status) }

func TestDo_AdjuntaBearerCuandoHayToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]dto.ProspectResponse{})
	}))
	defer srv.Close()

	c := rest.NewClient(srv.URL, logger.Nop(), rest.WithTokenProvider(staticToken("tok-abc")))
	_, err := c.Prospects().List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-abc", gotAuth)
}

func TestDo_SinTokenSaleSinAuth(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]dto.ProspectResponse{})
	}))
	defer srv.Close()

	c := rest.NewClient(srv.URL, logger.Nop(), rest.WithTokenProvider(staticToken("")))
	_, err := c.Prospects().List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestDo_403EnLecturaNotificaAlObservador(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"})
	}))
	defer srv.Close()

	obs := &spyObserver{}
	c := rest.NewClient(srv.URL, logger.Nop(), rest.WithUnauthorizedObserver(obs))

	// Una lectura cualquiera basta: el interceptor es global.
	_, err := c.Projects().List(context.Background(), false)
	require.Error(t, err)
	assert.True(t, domain.IsAuthError(err))
	assert.Equal(t, []int{403}, obs.statuses)

	var api *domain.APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, 403, api.Status)
	assert.Equal(t, "FORBIDDEN", api.Code)
}

func TestDo_4xxEsValidationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(dto.ErrorResponse{Code: "VALIDATION", Message: "progress inválido"})
	}))
	defer srv.Close()

	obs := &spyObserver{}
	c := rest.NewClient(srv.URL, logger.Nop(), rest.WithUnauthorizedObserver(obs))

	err := c.Subtasks().Update(context.Background(), "st-1", dto.UpdateSubtaskRequest{})
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	assert.Empty(t, obs.statuses, "un 422 no dispara el observador de sesión")
}

func TestDo_FalloDeTransporteEsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // servidor caído

	c := rest.NewClient(srv.URL, logger.Nop())
	_, err := c.Prospects().List(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsNetworkError(err))
}

func TestLogin_DecodificaLaSesion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)
		var in dto.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "budi", in.Username)
		_ = json.NewEncoder(w).Encode(dto.LoginResponse{
			Token: "tok-123",
			User:  dto.UserResponse{ID: "u-1", Username: "budi", Role: "Sales"},
		})
	}))
	defer srv.Close()

	c := rest.NewClient(srv.URL, logger.Nop())
	sess, err := c.Login(context.Background(), "budi", "secreto")
	require.NoError(t, err)
	assert.True(t, sess.Authenticated())
	assert.Equal(t, entity.RoleSales, sess.User.Role)
}

func TestReorder_EnviaLaListaCompleta(t *testing.T) {
	var got dto.ReorderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/projects/reorder", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := rest.NewClient(srv.URL, logger.Nop())
	require.NoError(t, c.Projects().Reorder(context.Background(), []string{"P2", "P3", "P1"}))
	assert.Equal(t, []string{"P2", "P3", "P1"}, got.OrderedIDs)
}

func TestUpdateStatus_CuerpoParcial(t *testing.T) {
	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/prospects/IMX.001", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := rest.NewClient(srv.URL, logger.Nop())
	require.NoError(t, c.Prospects().UpdateStatus(context.Background(), "IMX.001", entity.StatusWon))
	assert.Equal(t, map[string]any{"status": "WON"}, raw, "solo viaja el campo mutado")
}
