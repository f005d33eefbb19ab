package entity

import "time"

// VehicleRecord 车辆参数表记录，一辆车一行，以VIN为主键
type VehicleRecord struct {
	VIN          string `json:"vin" gorm:"primaryKey;size:17;column:vin"`
	VSNCode      string `json:"vsnCode" gorm:"size:13;column:vsn_code;index"`
	ModelCode    string `json:"modelCode" gorm:"size:32;index"`
	VehicleBrand string `json:"vehicleBrand" gorm:"size:64"`
	VehicleModel string `json:"vehicleModel" gorm:"size:64"`
	ChassisModel string `json:"chassisModel" gorm:"size:64"`
	EngineInfo   string `json:"engineInfo" gorm:"size:64"` // 发动机型号
	VehicleColor string `json:"vehicleColor" gorm:"size:32"`

	FuelType         string  `json:"fuelType" gorm:"size:32"`
	Displacement     float64 `json:"displacement"`
	Power            float64 `json:"power"`
	EmissionStandard string  `json:"emissionStandard" gorm:"size:32"`

	OutlineSize       string `json:"outlineSize" gorm:"size:64"`       // 外廓尺寸
	CargoBoxInnerSize string `json:"cargoBoxInnerSize" gorm:"size:64"` // 货箱内部尺寸

	SteelSpringLeafCount int    `json:"steelSpringLeafCount"`
	TireCount            int    `json:"tireCount"`
	TireSpec             string `json:"tireSpec" gorm:"size:64"`
	VehicleType          string `json:"vehicleType" gorm:"size:32"`              // 乘用车/货车/专用车/二类底盘
	TrackWidth           string `json:"track" gorm:"size:32;column:track_width"` // 轮距
	WheelLoad            string `json:"wheelLoad" gorm:"size:32"`
	AxleCount            int    `json:"axleCount"`
	SteeringType         string `json:"steeringType" gorm:"size:32"`

	TotalMass                      float64 `json:"totalMass"`
	CurbWeight                     float64 `json:"curbWeight"`
	RatedLoadMass                  float64 `json:"ratedLoadMass"`
	LoadMassUtilizationCoefficient float64 `json:"loadMassUtilizationCoefficient"`
	QuasiTractionTotalMass         float64 `json:"quasiTractionTotalMass"`
	SemiTrailerSaddleMaxMass       float64 `json:"semiTrailerSaddleMaxMass"`
	CabSeatingCapacity             int     `json:"cabSeatingCapacity"`
	RatedPassengerCapacity         int     `json:"ratedPassengerCapacity"`
	MaxSpeed                       int     `json:"maxSpeed"`

	ManufactureDate    string `json:"manufactureDate" gorm:"size:16"`
	Remark             string `json:"remark" gorm:"size:500"`
	EnterpriseStandard string `json:"enterpriseStandard" gorm:"size:128"`
	ProductionAddress  string `json:"productionAddress" gorm:"size:128"`

	// 装套类型（打印轨道标记）。由状态变更流程显式设置，打印时只读取、不推断。
	Type string `json:"type" gorm:"size:16;default:-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (VehicleRecord) TableName() string {
	return "vehicle_params"
}

// 装套类型
const (
	TypeQualified    = "qualified"    // 合格（未细分）
	TypeChassis      = "chassis"      // 二类底盘
	TypeOrder        = "order"        // 订单车
	TypeReprint      = "reprint"      // 重打
	TypeSupplement   = "supplement"   // 补打
	TypeWhole        = "whole"        // 整车
	TypeNotQualified = "notqualified" // 不合格
	TypeUnset        = "-"            // 未设置
)

// TypeNames 装套类型中文名
var TypeNames = map[string]string{
	TypeQualified:    "合格",
	TypeChassis:      "二类底盘",
	TypeOrder:        "订单车",
	TypeReprint:      "重打",
	TypeSupplement:   "补打",
	TypeWhole:        "整车",
	TypeNotQualified: "不合格",
	TypeUnset:        "未设置",
}

// 车辆类型
const (
	VehicleTypePassenger = "乘用车"
	VehicleTypeTruck     = "货车"
	VehicleTypeSpecial   = "专用车"
	VehicleTypeChassis   = "二类底盘"
)
