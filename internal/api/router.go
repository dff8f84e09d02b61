package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Auth         *AuthHandler
	Project      *ProjectHandler
	Task         *TaskHandler
	Expenditure  *ExpenditureHandler
	RiskIssue    *RiskIssueHandler
	Member       *MemberHandler
	Notification *NotificationHandler
}

// NewRouter 组装全部路由。除注册登录和探针外都要求 JWT。
func NewRouter(h Handlers, jwtSecret string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(MetricsMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/register", h.Auth.Register)
	r.POST("/login", h.Auth.Login)

	authed := r.Group("/")
	authed.Use(AuthMiddleware(jwtSecret))
	{
		authed.GET("/me", h.Auth.Me)
		authed.GET("/users", h.Auth.ListUsers)

		authed.GET("/projects", h.Project.ListProjects)
		authed.POST("/projects", h.Project.CreateProject)
		authed.GET("/projects/:id", h.Project.GetProject)
		authed.PUT("/projects/:id", h.Project.UpdateProject)
		authed.DELETE("/projects/:id", h.Project.DeleteProject)
		authed.GET("/projects/:id/report", h.Project.GetReport)

		authed.GET("/projects/:id/tasks", h.Task.ListTasks)
		authed.POST("/projects/:id/tasks", h.Task.CreateTask)
		authed.GET("/tasks/:id", h.Task.GetTask)
		authed.PUT("/tasks/:id/status", h.Task.UpdateTaskStatus)
		authed.DELETE("/tasks/:id", h.Task.DeleteTask)

		authed.GET("/projects/:id/expenditures", h.Expenditure.ListExpenditures)
		authed.GET("/projects/:id/expenditures/total", h.Expenditure.GetExpendituresTotal)
		authed.POST("/projects/:id/expenditures", h.Expenditure.CreateExpenditure)
		authed.DELETE("/expenditures/:id", h.Expenditure.DeleteExpenditure)

		authed.GET("/projects/:id/risks-issues", h.RiskIssue.ListRiskIssues)
		authed.POST("/projects/:id/risks-issues", h.RiskIssue.CreateRiskIssue)
		authed.PUT("/risks-issues/:id/status", h.RiskIssue.UpdateRiskIssueStatus)

		authed.GET("/projects/:id/members", h.Member.ListMembers)
		authed.POST("/projects/:id/members", h.Member.AddMember)
		authed.DELETE("/projects/:id/members/:userId", h.Member.RemoveMember)

		authed.GET("/notifications", h.Notification.GetNotifications)
		authed.POST("/notifications/ack", h.Notification.AcknowledgeNotifications)
	}

	return r
}
