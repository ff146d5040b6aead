package admin

import (
	"net/url"
	"strings"

	"github.com/reseller-hub/internal/http/response"

	"github.com/gin-gonic/gin"
)

type authzPolicyPayload struct {
	Role   string `json:"role" binding:"required"`
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

// GetAuthzMe 当前账号的角色与策略
func (h *Handler) GetAuthzMe(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	role := c.GetString("user_role")
	policies, err := h.AuthzService.GetRolePolicies(role)
	if err != nil {
		respondErrorWithMsg(c, response.CodeInternal, "Failed to load permissions", err)
		return
	}
	response.Success(c, gin.H{
		"user_id":  userID,
		"role":     role,
		"policies": policies,
	})
}

// ListAuthzRoles 获取角色列表
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondErrorWithMsg(c, response.CodeInternal, "Failed to load roles", err)
		return
	}
	response.Success(c, roles)
}

// GetAuthzRolePolicies 获取角色策略
func (h *Handler) GetAuthzRolePolicies(c *gin.Context) {
	role := decodeRoleParam(c.Param("role"))
	if role == "" {
		response.BadRequest(c, "role is required")
		return
	}
	policies, err := h.AuthzService.GetRolePolicies(role)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, policies)
}

// GrantAuthzPolicy 授予角色策略
func (h *Handler) GrantAuthzPolicy(c *gin.Context) {
	var req authzPolicyPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "role, object and action are required")
		return
	}
	if err := h.AuthzService.GrantRolePolicy(req.Role, req.Object, req.Action); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	requestLog(c).Infow("admin_authz_policy_granted",
		"operator_user_id", c.GetUint("user_id"),
		"role", req.Role,
		"object", req.Object,
		"action", req.Action,
	)
	response.Success(c, gin.H{"granted": true})
}

// RevokeAuthzPolicy 撤销角色策略
func (h *Handler) RevokeAuthzPolicy(c *gin.Context) {
	var req authzPolicyPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "role, object and action are required")
		return
	}
	if err := h.AuthzService.RevokeRolePolicy(req.Role, req.Object, req.Action); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	requestLog(c).Infow("admin_authz_policy_revoked",
		"operator_user_id", c.GetUint("user_id"),
		"role", req.Role,
		"object", req.Object,
		"action", req.Action,
	)
	response.Success(c, gin.H{"revoked": true})
}

func decodeRoleParam(raw string) string {
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return strings.TrimSpace(raw)
	}
	return strings.TrimSpace(decoded)
}
