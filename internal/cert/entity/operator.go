package entity

import "time"

// Operator 操作员账号
type Operator struct {
	OperatorID   string    `json:"operatorId" gorm:"primaryKey;size:32;column:operator_id"`
	Username     string    `json:"username" gorm:"size:64"`
	PasswordHash string    `json:"-" gorm:"size:64"`
	Department   string    `json:"department" gorm:"size:32"` // 如"质量部"
	Role         string    `json:"role" gorm:"size:32"`
	Status       string    `json:"status" gorm:"size:16;default:ENABLED"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Operator) TableName() string {
	return "operators"
}

// DepartmentQuality 质量部，合格证流程的校验环节仅限该部门操作员
const DepartmentQuality = "质量部"

// 操作员角色
const (
	RoleParameterMaintainer = "PARAMETER_MAINTAINER" // 参数表维护员
	RoleOrderMaintainer     = "ORDER_MAINTAINER"     // 订单车维护员
	RolePrinter             = "PRINTER"              // 打印操作员
	RoleReprinter           = "REPRINTER"            // 补打操作员
	RoleChassisMaintainer   = "CHASSIS_MAINTAINER"   // 二类底盘维护员
	RoleSystemAdmin         = "SYSTEM_ADMIN"         // 系统管理员
	RoleReportViewer        = "REPORT_VIEWER"        // 报表查询员
)

// RoleNames 角色中文名
var RoleNames = map[string]string{
	RoleParameterMaintainer: "参数表维护员",
	RoleOrderMaintainer:     "订单车维护员",
	RolePrinter:             "打印操作员",
	RoleReprinter:           "补打操作员",
	RoleChassisMaintainer:   "二类底盘维护员",
	RoleSystemAdmin:         "系统管理员",
	RoleReportViewer:        "报表查询员",
}

// 操作员状态
const (
	OperatorStatusEnabled  = "ENABLED"
	OperatorStatusDisabled = "DISABLED"
)
