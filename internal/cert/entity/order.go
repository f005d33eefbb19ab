package entity

import "time"

// OrderVehicle 订单车记录。订单定制项（颜色、座位数增减）在打印预览时覆盖参数表模板值。
type OrderVehicle struct {
	VIN            string    `json:"vin" gorm:"primaryKey;size:17;column:vin"`
	OrderNo        string    `json:"orderNo" gorm:"size:32;uniqueIndex"`
	ModelCode      string    `json:"modelCode" gorm:"size:32;index"`
	CustomerName   string    `json:"customerName" gorm:"size:64"`
	VehicleColor   string    `json:"vehicleColor" gorm:"size:32"` // 订单指定颜色，覆盖模板
	SeatCountDelta int       `json:"seatCountDelta"`              // 座位数增减
	Status         string    `json:"status" gorm:"size:20;default:pending"`
	Remark         string    `json:"remark" gorm:"size:500"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (OrderVehicle) TableName() string {
	return "order_vehicles"
}

// 订单状态
const (
	OrderStatusPending      = "pending"       // 待审核
	OrderStatusApproved     = "approved"      // 已批准
	OrderStatusInProduction = "in_production" // 生产中
	OrderStatusCompleted    = "completed"     // 已完成
)

// OrderStatusNames 订单状态中文名
var OrderStatusNames = map[string]string{
	OrderStatusPending:      "待审核",
	OrderStatusApproved:     "已批准",
	OrderStatusInProduction: "生产中",
	OrderStatusCompleted:    "已完成",
}
