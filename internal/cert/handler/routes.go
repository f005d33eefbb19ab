package handler

import (
	"net/http"

	"github.com/Rostreet/printsystem/internal/cert/entity"
	"github.com/Rostreet/printsystem/internal/middleware"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes 注册全部API路由
func RegisterRoutes(r *gin.Engine, h *Handlers, jwtSecret string) {
	// 健康检查
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		// 认证（无需登录）
		v1.POST("/user/login", h.Auth.Login)
		v1.POST("/user/refresh", h.Auth.Refresh)

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtSecret))
		{
			authorized.POST("/user/logout", h.Auth.Logout)
			authorized.GET("/user/profile", h.Auth.Profile)
			authorized.PUT("/user/password", h.Auth.ChangePassword)
			authorized.POST("/user",
				middleware.RequireRole(entity.RoleSystemAdmin), h.Auth.CreateOperator)

			// 车辆参数表维护
			vehicles := authorized.Group("/warehousingcar")
			{
				vehicles.GET("/getbyvin/:vin", h.Vehicle.GetByVIN)
				vehicles.GET("", h.Vehicle.List)
				vehicles.GET("/export", h.Vehicle.Export)
				vehicles.GET("/export/csv", h.Vehicle.ExportCSV)

				maintain := vehicles.Group("")
				maintain.Use(middleware.RequireRole(entity.RoleParameterMaintainer))
				{
					maintain.POST("", h.Vehicle.Create)
					maintain.POST("/copy", h.Vehicle.Copy)
					maintain.PUT("/:vin", h.Vehicle.Update)
					maintain.PUT("/:vin/type", h.Vehicle.UpdateType)
					maintain.DELETE("/:vin", h.Vehicle.Delete)
				}
			}

			// 订单车维护
			orders := authorized.Group("/order")
			{
				orders.GET("/:vin", h.Order.GetByVIN)
				orders.GET("", h.Order.List)

				maintain := orders.Group("")
				maintain.Use(middleware.RequireRole(entity.RoleOrderMaintainer))
				{
					maintain.POST("", h.Order.Create)
					maintain.PUT("/:vin", h.Order.Update)
					maintain.DELETE("/:vin", h.Order.Delete)
				}
			}

			// 二类底盘配置维护
			chassis := authorized.Group("/chassis")
			{
				chassis.GET("/:id", h.Chassis.Get)
				chassis.GET("", h.Chassis.List)

				maintain := chassis.Group("")
				maintain.Use(middleware.RequireRole(entity.RoleChassisMaintainer))
				{
					maintain.POST("", h.Chassis.Create)
					maintain.PUT("/:id", h.Chassis.Update)
					maintain.DELETE("/:id", h.Chassis.Delete)
				}
			}

			// 合格证打印工作流，仅限质量部
			printing := authorized.Group("/print")
			printing.Use(middleware.RequireDepartment(entity.DepartmentQuality))
			{
				printing.POST("/validate", h.Print.Validate)
				printing.POST("/confirm", h.Print.Confirm)
				printing.POST("/back", h.Print.Back)
				printing.POST("/commit", h.Print.Commit)
				printing.POST("/reset", h.Print.Reset)
				printing.GET("/session", h.Print.Session)
				printing.GET("/preview/pdf", h.Print.PreviewPDF)
			}

			// 报表
			report := authorized.Group("/report")
			report.Use(middleware.RequireRole(entity.RoleReportViewer))
			{
				report.GET("/print", h.Report.Search)
				report.GET("/history/:vin", h.Report.History)
				report.GET("/certificate/:no", h.Report.CertificateInfo)
				report.GET("/daily", h.Report.Daily)
				report.GET("/operator/:id", h.Report.ByOperator)
				report.GET("/orders", h.Report.OrderChanges)
				report.GET("/export", h.Report.Export)
			}
		}
	}
}
