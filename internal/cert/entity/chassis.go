package entity

import "time"

// ChassisConfig 二类底盘配置。VSN前缀形态区分底盘件与整车件。
type ChassisConfig struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	VINPrefix    string    `json:"vinPrefix" gorm:"size:8;index"` // VIN前8位
	VSNPrefix    string    `json:"vsnPrefix" gorm:"size:2;index"` // VSN前2位
	ChassisModel string    `json:"chassisModel" gorm:"size:64"`
	Description  string    `json:"description" gorm:"size:256"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (ChassisConfig) TableName() string {
	return "chassis_configs"
}
