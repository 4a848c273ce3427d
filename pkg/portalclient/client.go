// Package portalclient 门户 API 的类型化 HTTP 客户端，供命令行工具与集成测试使用。
package portalclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"campus-portal/backend/internal/dto"
	pkgerrors "campus-portal/backend/pkg/errors"
	"campus-portal/backend/pkg/response"
)

// APIError 服务端返回的错误响应
type APIError struct {
	Status  int
	Code    int
	Message string
	Details string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s (%d/%d): %s", e.Message, e.Status, e.Code, e.Details)
	}
	return fmt.Sprintf("%s (%d/%d)", e.Message, e.Status, e.Code)
}

// Unwrap 按 HTTP 状态归入 pkg/errors 的错误分类
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return pkgerrors.ErrAuth
	case http.StatusForbidden:
		return pkgerrors.ErrForbidden
	case http.StatusNotFound:
		return pkgerrors.ErrNotFound
	case http.StatusConflict:
		return pkgerrors.ErrConflict
	case http.StatusUnprocessableEntity:
		return pkgerrors.ErrRange
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		return pkgerrors.ErrValidation
	default:
		return nil
	}
}

// Page 分页列表
type Page[T any] struct {
	List       []T                 `json:"list"`
	Pagination response.Pagination `json:"pagination"`
}

// ListQuery 通用列表查询
type ListQuery struct {
	Search   string
	Category string
	Status   string
	Page     int
	PageSize int
}

func (q ListQuery) values() url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(q.PageSize))
	}
	return v
}

// Client API 客户端；零值不可用，请使用 New
type Client struct {
	baseURL string
	hc      *http.Client
}

// Option 客户端选项
type Option func(*Client)

// WithHTTPClient 替换底层 http.Client（测试中注入 httptest 服务器的客户端）
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithTimeout 设置单次请求超时
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.hc.Timeout = d }
}

// New 创建客户端，baseURL 形如 http://localhost:8080
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/") + "/api/v1",
		hc:      &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ── 认证 ──

// Login 登录
func (c *Client) Login(ctx context.Context, email, password string) (*dto.SessionResponse, error) {
	var out dto.SessionResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", "", dto.LoginRequest{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Register 注册并登录
func (c *Client) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.SessionResponse, error) {
	var out dto.SessionResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh 用 Refresh Token 换取新的 Access Token
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*dto.SessionResponse, error) {
	var out dto.SessionResponse
	err := c.do(ctx, http.MethodPost, "/auth/refresh", "", dto.RefreshTokenRequest{RefreshToken: refreshToken}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Session 会话重建
func (c *Client) Session(ctx context.Context, token string) (*dto.SessionView, error) {
	var out dto.SessionView
	if err := c.do(ctx, http.MethodGet, "/auth/session", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SelectClass 学生选择班级
func (c *Client) SelectClass(ctx context.Context, token, className string) (*dto.SessionView, error) {
	var out dto.SessionView
	err := c.do(ctx, http.MethodPost, "/auth/select-class", token, dto.SelectClassRequest{ClassName: className}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout 登出
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
}

// Classes 可选班级
func (c *Client) Classes(ctx context.Context) ([]string, error) {
	var out dto.ClassesResponse
	if err := c.do(ctx, http.MethodGet, "/auth/classes", "", nil, &out); err != nil {
		return nil, err
	}
	return out.Classes, nil
}

// ── 笔记 ──

// ListNotes 笔记列表
func (c *Client) ListNotes(ctx context.Context, token string, q ListQuery) (*Page[dto.NoteResponse], error) {
	var out Page[dto.NoteResponse]
	if err := c.do(ctx, http.MethodGet, withQuery("/notes", q.values()), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateNote 上传笔记
func (c *Client) CreateNote(ctx context.Context, token string, req *dto.CreateNoteRequest) (*dto.NoteResponse, error) {
	var out dto.NoteResponse
	if err := c.do(ctx, http.MethodPost, "/notes", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ── 报修 ──

// ListMaintenance 工单列表
func (c *Client) ListMaintenance(ctx context.Context, token string, q ListQuery) (*Page[dto.MaintenanceResponse], error) {
	var out Page[dto.MaintenanceResponse]
	if err := c.do(ctx, http.MethodGet, withQuery("/maintenance", q.values()), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateMaintenance 报修
func (c *Client) CreateMaintenance(ctx context.Context, token string, req *dto.CreateMaintenanceRequest) (*dto.MaintenanceResponse, error) {
	var out dto.MaintenanceResponse
	if err := c.do(ctx, http.MethodPost, "/maintenance", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMaintenanceStatus 变更工单状态（教师）
func (c *Client) UpdateMaintenanceStatus(ctx context.Context, token, id string, req *dto.UpdateMaintenanceStatusRequest) (*dto.MaintenanceResponse, error) {
	var out dto.MaintenanceResponse
	if err := c.do(ctx, http.MethodPut, "/maintenance/"+url.PathEscape(id)+"/status", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ── 传输 ──

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Details string          `json:"details"`
}

func withQuery(path string, v url.Values) string {
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}

// do 发送请求并解开统一响应信封；out 为 nil 时忽略 data
func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("序列化请求失败: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("构造请求失败: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("请求 %s %s 失败: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("无法解析响应: %v", err)}
	}
	if resp.StatusCode >= http.StatusBadRequest || env.Code != 0 {
		return &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Message, Details: env.Details}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("解析响应数据失败: %w", err)
	}
	return nil
}
