package controller

import (
	"errors"

	"thinkjava_backend/internal/service"
	"thinkjava_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService   *service.AuthService
	RosterService *service.RosterService
}

func NewAuthController(authService *service.AuthService, rosterService *service.RosterService) *AuthController {
	return &AuthController{AuthService: authService, RosterService: rosterService}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// @Summary 统一登录（学生/教师/管理员）
// @Tags 认证
// @Accept json
// @Produce json
// @Param credentials body loginRequest true "学号/工号/用户名 + 密码"
// @Success 200 {object} util.Response
// @Failure 401 {object} util.Response
// @Router /api/auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req loginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.AuthService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, util.ErrInvalidCredentials) {
			util.Error(ctx, 401, "Invalid credentials.")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 学生自助注册（需要段位加入码）
// @Tags 认证
// @Accept json
// @Produce json
// @Param student body service.RegisterStudentInput true "注册信息"
// @Success 201 {object} util.Response
// @Router /api/auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var input service.RegisterStudentInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	student, err := c.RosterService.RegisterStudent(input)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrInvalidJoinCode), errors.Is(err, util.ErrStudentNoTaken):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, student)
}
