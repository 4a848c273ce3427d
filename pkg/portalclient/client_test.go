package portalclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-portal/backend/internal/dto"
	pkgerrors "campus-portal/backend/pkg/errors"
	"campus-portal/backend/pkg/response"
)

func writeEnvelope(w http.ResponseWriter, status int, resp response.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", WithHTTPClient(srv.Client()))
}

func TestLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var req dto.LoginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "rao@campus.edu", req.Email)

		writeEnvelope(w, http.StatusOK, response.Response{Code: 0, Message: "success", Data: dto.SessionResponse{
			AccessToken: "tok",
			ExpiresIn:   900,
			SessionView: dto.SessionView{
				User:  &dto.UserResponse{ID: "fac-1", Role: "faculty"},
				Stage: "ready",
			},
		}})
	})

	resp, err := c.Login(context.Background(), "rao@campus.edu", "demo")
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.AccessToken)
	assert.Equal(t, 900, resp.ExpiresIn)
	require.NotNil(t, resp.User)
	assert.Equal(t, "fac-1", resp.User.ID)
	assert.Equal(t, "ready", resp.Stage)
}

func TestAPIErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		status int
		code   int
		kind   error
	}{
		{"未认证", http.StatusUnauthorized, 10002, pkgerrors.ErrAuth},
		{"无权限", http.StatusForbidden, 10003, pkgerrors.ErrForbidden},
		{"不存在", http.StatusNotFound, 10007, pkgerrors.ErrNotFound},
		{"冲突", http.StatusConflict, 10009, pkgerrors.ErrConflict},
		{"越界", http.StatusUnprocessableEntity, 10008, pkgerrors.ErrRange},
		{"参数错误", http.StatusBadRequest, 10001, pkgerrors.ErrValidation},
		{"请求体过大", http.StatusRequestEntityTooLarge, 10005, pkgerrors.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(w, tt.status, response.Response{Code: tt.code, Message: "失败", Details: "detail"})
			})

			_, err := c.Session(context.Background(), "tok")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.code, apiErr.Code)
			assert.Equal(t, "detail", apiErr.Details)
		})
	}
}

func TestInternalErrorHasNoKind(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusInternalServerError, response.Response{Code: 50000, Message: "服务器内部错误"})
	})

	err := c.Logout(context.Background(), "tok")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Nil(t, apiErr.Unwrap())
	assert.NotErrorIs(t, err, pkgerrors.ErrAuth)
}

func TestUndecodableBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})

	_, err := c.Classes(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
}

func TestBearerToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "/api/v1/auth/select-class", r.URL.Path)

		var req dto.SelectClassRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "IT-B", req.ClassName)

		writeEnvelope(w, http.StatusOK, response.Response{Data: dto.SessionView{
			User:  &dto.UserResponse{ID: "stu-1", Role: "student", ClassName: "IT-B"},
			Stage: "ready",
		}})
	})

	view, err := c.SelectClass(context.Background(), "tok", "IT-B")
	require.NoError(t, err)
	assert.Equal(t, "IT-B", view.User.ClassName)
}

func TestListNotesQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/api/v1/notes", r.URL.Path)
		assert.Equal(t, "graph theory", q.Get("search"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "5", q.Get("page_size"))
		assert.False(t, q.Has("status"))

		writeEnvelope(w, http.StatusOK, response.Response{Data: response.PageData{
			List:       []dto.NoteResponse{{ID: "n1", Title: "Graphs"}},
			Pagination: response.Pagination{Page: 2, PageSize: 5, Total: 6, TotalPages: 2},
		}})
	})

	page, err := c.ListNotes(context.Background(), "tok", ListQuery{Search: "graph theory", Page: 2, PageSize: 5})
	require.NoError(t, err)
	require.Len(t, page.List, 1)
	assert.Equal(t, "n1", page.List[0].ID)
	assert.Equal(t, int64(6), page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)
}

func TestUpdateMaintenanceStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v1/maintenance/m-1/status", r.URL.Path)

		var req dto.UpdateMaintenanceStatusRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "In Progress", req.Status)

		writeEnvelope(w, http.StatusOK, response.Response{Data: dto.MaintenanceResponse{ID: "m-1", Status: "In Progress"}})
	})

	out, err := c.UpdateMaintenanceStatus(context.Background(), "tok", "m-1", &dto.UpdateMaintenanceStatusRequest{Status: "In Progress"})
	require.NoError(t, err)
	assert.Equal(t, "In Progress", out.Status)
}

func TestTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(block)
		srv.Close()
	})

	c := New(srv.URL, WithTimeout(20*time.Millisecond))
	_, err := c.Classes(context.Background())
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr), "超时属于传输错误，不应包装为 APIError")
}
