package controller

import (
	"errors"
	"strconv"
	"strings"

	"thinkjava_backend/internal/model"
	"thinkjava_backend/internal/repository"
	"thinkjava_backend/internal/service"
	"thinkjava_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type RankingController struct {
	RankingService *service.RankingService
	StudentRepo    *repository.StudentRepository
	TeacherRepo    *repository.TeacherRepository
}

func NewRankingController(rankingService *service.RankingService, studentRepo *repository.StudentRepository, teacherRepo *repository.TeacherRepository) *RankingController {
	return &RankingController{
		RankingService: rankingService,
		StudentRepo:    studentRepo,
		TeacherRepo:    teacherRepo,
	}
}

// parseRankingQuery 排行榜公共查询参数
func parseRankingQuery(ctx *gin.Context) (service.RankingOptions, int, int, bool) {
	opts := service.RankingOptions{
		FilterBy:         ctx.Query("filter_by"),
		DepartmentFilter: ctx.Query("department"),
		Search:           ctx.Query("search"),
		Descending:       !strings.EqualFold(ctx.Query("sort_order"), "asc"),
	}

	sortBy, err := service.ParseSortKey(ctx.Query("sort_by"))
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return opts, 0, 0, false
	}
	opts.SortBy = sortBy

	page := util.DefaultPage
	perPage := util.DefaultPerPage
	if v, err := strconv.Atoi(ctx.Query("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(ctx.Query("per_page")); err == nil && v > 0 {
		perPage = v
	}
	if perPage > util.MaxPerPage {
		perPage = util.MaxPerPage
	}
	return opts, page, perPage, true
}

// paginate 过滤排序之后再切页
func paginate(rows []service.StudentPerformance, page, perPage int) ([]service.StudentPerformance, int64) {
	total := int64(len(rows))
	start := (page - 1) * perPage
	if start >= len(rows) {
		return []service.StudentPerformance{}, total
	}
	end := start + perPage
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end], total
}

// @Summary 全站学生排行榜（管理员）
// @Tags 排行榜
// @Security BearerAuth
// @Produce json
// @Param sort_by query string false "score|time_remaining|achievements|name|section"
// @Param sort_order query string false "asc|desc" default(desc)
// @Param filter_by query string false "段位码，如 3A 或 CS3A"
// @Param department query string false "系别名称"
// @Param search query string false "姓名模糊匹配"
// @Param page query int false "页码" default(1)
// @Param per_page query int false "每页数量" default(25)
// @Success 200 {object} util.Response
// @Router /api/admin/rankings [get]
func (c *RankingController) AdminRankings(ctx *gin.Context) {
	opts, page, perPage, ok := parseRankingQuery(ctx)
	if !ok {
		return
	}
	c.respond(ctx, opts, page, perPage)
}

// @Summary 教师所带段位的排行榜
// @Tags 排行榜
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/teacher/rankings [get]
func (c *RankingController) TeacherRankings(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	opts, page, perPage, ok := parseRankingQuery(ctx)
	if !ok {
		return
	}

	sectionIDs, err := c.TeacherRepo.HandledSectionIDs(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	studentIDs, err := c.StudentRepo.ListIDsBySections(sectionIDs)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if studentIDs == nil {
		studentIDs = []uint{}
	}
	opts.LimitToStudents = studentIDs

	c.respond(ctx, opts, page, perPage)
}

// @Summary 学生本段位排行榜
// @Tags 排行榜
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/student/rankings [get]
func (c *RankingController) StudentRankings(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	opts, page, perPage, ok := parseRankingQuery(ctx)
	if !ok {
		return
	}

	student, err := c.StudentRepo.FindByID(user.UserID)
	if err != nil {
		util.NotFound(ctx)
		return
	}
	classmates, err := c.StudentRepo.ListIDsBySections([]uint{student.SectionID})
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if classmates == nil {
		classmates = []uint{}
	}
	opts.LimitToStudents = classmates

	c.respond(ctx, opts, page, perPage)
}

// @Summary 单个学生的成绩聚合
// @Tags 排行榜
// @Security BearerAuth
// @Produce json
// @Param student_id path int true "学生ID"
// @Success 200 {object} util.Response
// @Router /api/rankings/students/{student_id} [get]
func (c *RankingController) StudentPerformance(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("student_id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid student id")
		return
	}

	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	if user.Role == model.RoleStudent && user.UserID != uint(id) {
		util.Forbidden(ctx)
		return
	}

	performance, err := c.RankingService.GetStudentPerformance(uint(id))
	if err != nil {
		if errors.Is(err, util.ErrStudentNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, performance)
}

// @Summary 段位平均分排行
// @Tags 排行榜
// @Security BearerAuth
// @Produce json
// @Param sort_order query string false "asc|desc" default(desc)
// @Param limit query int false "返回前N名" default(10)
// @Success 200 {object} util.Response
// @Router /api/rankings/sections [get]
func (c *RankingController) SectionRankings(ctx *gin.Context) {
	descending := !strings.EqualFold(ctx.Query("sort_order"), "asc")
	limit := 10
	if v, err := strconv.Atoi(ctx.Query("limit")); err == nil && v > 0 {
		limit = v
	}

	rankings, err := c.RankingService.GetSectionRankings(ctx.Request.Context(), descending, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, rankings)
}

func (c *RankingController) respond(ctx *gin.Context, opts service.RankingOptions, page, perPage int) {
	rankings, err := c.RankingService.GetAllStudentRankings(opts)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	pageRows, total := paginate(rankings, page, perPage)
	util.Success(ctx, util.PageResponse{
		List:  pageRows,
		Total: total,
		Page:  page,
		Limit: perPage,
	})
}
