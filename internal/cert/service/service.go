package service

// Services 服务集合
type Services struct {
	Auth     *AuthService
	Vehicle  *VehicleService
	Order    *OrderService
	Chassis  *ChassisService
	Workflow *WorkflowService
	Report   *ReportService
}
