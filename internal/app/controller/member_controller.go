package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sudays/sudays-backend/internal/app/model"
	"github.com/sudays/sudays-backend/internal/app/service"
	apperrors "github.com/sudays/sudays-backend/internal/errors"
	"github.com/sudays/sudays-backend/internal/middleware"
)

// MemberController exposes member administration to admins
type MemberController struct {
	authService service.AuthService
}

func NewMemberController(authService service.AuthService) *MemberController {
	return &MemberController{authService: authService}
}

type AdminUpdateMemberRequest struct {
	Nickname *string            `json:"nickname"`
	Password *string            `json:"password"`
	Role     *model.MemberRole  `json:"role"`
	Grade    *model.MemberGrade `json:"grade"`
}

func parseMemberID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "올바르지 않은 회원 ID입니다")
		return 0, false
	}
	return uint(id), true
}

// UpdateMember
// PATCH /admin/members/:id
func (ctrl *MemberController) UpdateMember(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseMemberID(c)
	if !ok {
		return
	}

	var req AdminUpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력 정보가 올바르지 않습니다")
		return
	}

	member, err := ctrl.authService.UpdateMember(id, model.MemberUpdate{
		Nickname: req.Nickname,
		Password: req.Password,
		Role:     req.Role,
		Grade:    req.Grade,
	})
	if err != nil {
		apperrors.Respond(c, log, err, "admin update member")
		return
	}

	adminID, _ := middleware.GetMemberID(c)
	log.Info("Member updated by admin", map[string]interface{}{
		"admin_id":  adminID,
		"member_id": id,
	})

	c.JSON(http.StatusOK, gin.H{
		"member": memberResponse(member),
	})
}

// DeleteMember
// DELETE /admin/members/:id
func (ctrl *MemberController) DeleteMember(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseMemberID(c)
	if !ok {
		return
	}

	if err := ctrl.authService.DeleteMember(id); err != nil {
		apperrors.Respond(c, log, err, "admin delete member")
		return
	}

	adminID, _ := middleware.GetMemberID(c)
	log.Info("Member deleted by admin", map[string]interface{}{
		"admin_id":  adminID,
		"member_id": id,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "회원이 삭제되었습니다",
	})
}
