package handler

import (
	"errors"
	"net/http"

	"srm-service/internal/model"
	"srm-service/internal/service"
	"srm-service/pkg/logger"
	"srm-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Action selects the behavior of the single dispatch endpoint. The set is
// closed: every constant below has a branch in Dispatch, and anything else
// is rejected before any service is touched.
type Action string

const (
	ActionGetUserMenus Action = "get_user_menus"

	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionSuspend Action = "suspend"
	ActionRestore Action = "restore"
	ActionDelete  Action = "delete"

	ActionBlacklist       Action = "blacklist"
	ActionUnblacklist     Action = "unblacklist"
	ActionRecommend       Action = "recommend"
	ActionUnrecommend     Action = "unrecommend"
	ActionAddObjection    Action = "add_objection"
	ActionRemoveObjection Action = "remove_objection"

	ActionCreateRole      Action = "create_role"
	ActionUpdateRole      Action = "update_role"
	ActionDeleteRole      Action = "delete_role"
	ActionAssignUserRoles Action = "assign_user_roles"

	ActionLinkSupplier Action = "link_supplier"
)

// ActionRequest is the body of the dispatch endpoint. Fields beyond Action
// are read per branch; unused ones are ignored.
type ActionRequest struct {
	Action      Action             `json:"action"`
	Terminal    model.Terminal     `json:"terminal,omitempty"`
	SupplierID  uint               `json:"supplier_id,omitempty"`
	Reason      string             `json:"reason,omitempty"`
	Role        *service.RoleInput `json:"role,omitempty"`
	RoleID      uint               `json:"role_id,omitempty"`
	UserID      uint               `json:"user_id,omitempty"`
	RoleIDs     []uint             `json:"role_ids,omitempty"`
	LibraryType string             `json:"library_type,omitempty"`
}

// Dispatcher routes dispatch-endpoint requests into the core services.
// Authorization happens here, once per request, through the access gate;
// the services behind it do not re-check.
type Dispatcher struct {
	gate       *service.Gate
	menus      *service.MenuResolver
	lifecycle  *service.Lifecycle
	reputation *service.Reputation
	roles      *service.Roles
	library    *service.Library
}

// NewDispatcher wires the dispatcher over the core services.
func NewDispatcher(gate *service.Gate, menus *service.MenuResolver, lifecycle *service.Lifecycle, reputation *service.Reputation, roles *service.Roles, library *service.Library) *Dispatcher {
	return &Dispatcher{
		gate:       gate,
		menus:      menus,
		lifecycle:  lifecycle,
		reputation: reputation,
		roles:      roles,
		library:    library,
	}
}

// Dispatch handles POST /api/actions.
func (d *Dispatcher) Dispatch(c echo.Context) error {
	log := logger.FromContext(c)

	principalID, ok := c.Get("principal_id").(uint)
	if !ok || principalID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req ActionRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	ctx := c.Request().Context()
	log.Info("Dispatching action",
		zap.String("action", string(req.Action)),
		zap.Uint("principal_id", principalID))

	switch req.Action {
	case ActionGetUserMenus:
		// Open to any authenticated principal; a missing terminal role
		// yields an empty menu list, not an error.
		if !model.ValidTerminal(req.Terminal) {
			return d.fail(c, req.Action, &service.ValidationError{Msg: "unknown terminal"})
		}
		menus, err := d.menus.ResolveMenus(ctx, principalID, req.Terminal)
		if err != nil {
			return d.fail(c, req.Action, err)
		}
		prometheus.RecordAction(string(req.Action), "ok")
		return c.JSON(http.StatusOK, echo.Map{"menus": menus})

	case ActionApprove:
		return d.mutate(c, req.Action, principalID, model.TerminalAdmin, func() error {
			return d.lifecycle.Approve(ctx, principalID, req.SupplierID)
		})
	case ActionReject:
		return d.mutate(c, req.Action, principalID, model.TerminalAdmin, func() error {
			return d.lifecycle.Reject(ctx, principalID, req.SupplierID, req.Reason)
		})
	case ActionSuspend:
		return d.mutate(c, req.Action, principalID, model.TerminalAdmin, func() error {
			return d.lifecycle.Suspend(ctx, principalID, req.SupplierID, req.Reason)
		})
	case ActionRestore:
		return d.mutate(c, req.Action, principalID, model.TerminalAdmin, func() error {
			return d.lifecycle.Restore(ctx, principalID, req.SupplierID)
		})
	case ActionDelete:
		return d.mutate(c, req.Action, principalID, model.TerminalAdmin, func() error {
			return d.lifecycle.Delete(ctx, principalID, req.SupplierID)
		})

	case ActionBlacklist:
		return d.mutate(c, req.Action, principalID, model.TerminalAdmin, func() error {
			return d.reputation.SetBlacklisted(ctx, principalID, req.SupplierID, req.Reason)
		})
	case ActionUnblacklist:
		return d.mutate(c, req.Action, principalID, model.TerminalAdmin, func() error {
			return d.reputation.ClearBlacklisted(ctx, principalID, req.SupplierID)
		})
	case ActionRecommend:
		return d.mutate(c, req.Action, principalID, model.TerminalAdmin, func() error {
			return d.reputation.SetRecommended(ctx, principalID, req.SupplierID)
		})
	case ActionUnrecommend:
		return d.mutate(c, req.Action, principalID, model.TerminalAdmin, func() error {
			return d.reputation.ClearRecommended(ctx, principalID, req.SupplierID)
		})
	case ActionAddObjection:
		return d.mutate(c, req.Action, principalID, model.TerminalAdmin, func() error {
			return d.reputation.SetObjection(ctx, principalID, req.SupplierID, req.Reason)
		})
	case ActionRemoveObjection:
		return d.mutate(c, req.Action, principalID, model.TerminalAdmin, func() error {
			return d.reputation.ClearObjection(ctx, principalID, req.SupplierID)
		})

	case ActionCreateRole:
		if req.Role == nil {
			return d.fail(c, req.Action, &service.ValidationError{Msg: "role payload is required"})
		}
		return d.mutate(c, req.Action, principalID, model.TerminalAdmin, func() error {
			_, err := d.roles.CreateRole(ctx, principalID, *req.Role)
			return err
		})
	case ActionUpdateRole:
		if req.Role == nil {
			return d.fail(c, req.Action, &service.ValidationError{Msg: "role payload is required"})
		}
		return d.mutate(c, req.Action, principalID, model.TerminalAdmin, func() error {
			return d.roles.UpdateRole(ctx, principalID, req.RoleID, *req.Role)
		})
	case ActionDeleteRole:
		return d.mutate(c, req.Action, principalID, model.TerminalAdmin, func() error {
			return d.roles.DeleteRole(ctx, principalID, req.RoleID)
		})
	case ActionAssignUserRoles:
		return d.mutate(c, req.Action, principalID, model.TerminalAdmin, func() error {
			return d.roles.AssignUserRoles(ctx, principalID, req.UserID, req.RoleIDs)
		})

	case ActionLinkSupplier:
		return d.mutate(c, req.Action, principalID, model.TerminalDepartment, func() error {
			return d.library.LinkSupplier(ctx, principalID, req.SupplierID, req.LibraryType, req.Reason)
		})
	}

	log.Warn("Unknown action", zap.String("action", string(req.Action)))
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown action"})
}

// mutate gates op on requiredTerminal, runs it, and writes the uniform
// success/error body.
func (d *Dispatcher) mutate(c echo.Context, action Action, principalID uint, requiredTerminal model.Terminal, op func() error) error {
	if err := d.gate.Authorize(c.Request().Context(), principalID, requiredTerminal, ""); err != nil {
		return d.fail(c, action, err)
	}
	if err := op(); err != nil {
		return d.fail(c, action, err)
	}
	prometheus.RecordAction(string(action), "ok")
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (d *Dispatcher) fail(c echo.Context, action Action, err error) error {
	log := logger.FromContext(c)

	var invalid *service.InvalidTransitionError
	var validation *service.ValidationError

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.As(err, &invalid):
		status = http.StatusConflict
	case errors.As(err, &validation):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		log.Error("Action failed", zap.String("action", string(action)), zap.Error(err))
		prometheus.RecordAction(string(action), "error")
		return c.JSON(status, echo.Map{"error": "internal error"})
	}

	log.Warn("Action denied",
		zap.String("action", string(action)),
		zap.Int("status", status),
		zap.Error(err))
	prometheus.RecordAction(string(action), "denied")
	return c.JSON(status, echo.Map{"error": err.Error()})
}
