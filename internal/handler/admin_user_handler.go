package handler

import (
	"net/http"
	"strconv"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/usecase"
	auth "app/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

// /admin/usersのHTTP
type AdminUserHandler struct {
	uc         *usecase.AdminUserUsecase
	registerUC *auth.RegisterUserUsecase
}

// DI
func NewAdminUserHandler(uc *usecase.AdminUserUsecase, registerUC *auth.RegisterUserUsecase) *AdminUserHandler {
	return &AdminUserHandler{uc: uc, registerUC: registerUC}
}

type UpdateUserRoleRequest struct {
	Role string `json:"role"`
}

// 従業員アカウント作成のリクエストボディ。
type CreateStaffUserRequest struct {
	Email     string         `json:"email"`
	Username  string         `json:"username"`
	Password  string         `json:"password"`
	Role      string         `json:"role"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Phone     string         `json:"phone"`
	HireDate  *time.Time     `json:"hire_date"`
	Salary    int64          `json:"salary"`
	Address   AddressRequest `json:"address"`
}

func (h *AdminUserHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/admin/users")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))
	g.Use(middleware.RequireOperation(model.OpManageUsers))

	g.GET("", h.list)
	g.POST("", h.createStaff)
	g.PATCH("/:id/role", h.updateRole)
	g.POST("/:id/deactivate", h.deactivate)
}

// 従業員アカウント作成（admin/manager/cashier）
func (h *AdminUserHandler) createStaff(c echo.Context) error {
	var req CreateStaffUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	role := model.Role(req.Role)
	if !role.IsValid() || !role.IsStaff() {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid role"})
	}

	out, err := h.registerUC.Execute(c.Request().Context(), auth.RegisterUserInput{
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
		Role:      role,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		HireDate:  req.HireDate,
		Salary:    req.Salary,
		Address: model.Address{
			Line1:      req.Address.Line1,
			Line2:      req.Address.Line2,
			City:       req.Address.City,
			State:      req.Address.State,
			PostalCode: req.Address.PostalCode,
			Country:    req.Address.Country,
		},
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *AdminUserHandler) list(c echo.Context) error {
	page, pageSize, err := parsePageParams(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	activeOnly := false
	if v := c.QueryParam("active_only"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid active_only"})
		}
		activeOnly = b
	}

	out, err := h.uc.List(c.Request().Context(), usecase.UserListInput{
		Page:       page,
		PageSize:   pageSize,
		Role:       c.QueryParam("role"),
		ActiveOnly: activeOnly,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AdminUserHandler) updateRole(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	targetID, err := parsePathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req UpdateUserRoleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.UpdateRole(c.Request().Context(), actorID, targetID, model.Role(req.Role))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AdminUserHandler) deactivate(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	targetID, err := parsePathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.Deactivate(c.Request().Context(), actorID, targetID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
