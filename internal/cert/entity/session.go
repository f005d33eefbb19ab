package entity

import "time"

// WorkflowSession 一次合格证打印操作的内存会话，由单个操作员独占、顺序变更。
// 打印确认成功或重置后销毁。
type WorkflowSession struct {
	OperatorID     string            `json:"operatorId"`
	Stage          string            `json:"stage"`
	VIN            string            `json:"vin"`
	VSN            string            `json:"vsn"`
	Track          Track             `json:"track"`
	Vehicle        *VehicleRecord    `json:"vehicle,omitempty"`
	Order          *OrderVehicle     `json:"order,omitempty"`
	PreviewPayload map[string]string `json:"previewPayload,omitempty"`
	CertificateNo  string            `json:"certificateNo,omitempty"`
	ModifiedFields map[string]string `json:"modifiedFields,omitempty"` // 补打流程操作员改过的字段
	StartedAt      time.Time         `json:"startedAt"`
}

// 会话阶段
const (
	StageLocate     = "locate"     // 录入VIN
	StageValidating = "validating" // 已取到记录，等待操作员确认
	StagePreview    = "preview"    // 已取号，预览中
	StageCommitted  = "committed"  // 打印已确认（终态）
)

// ValidStageTransitions 合法的阶段流转
var ValidStageTransitions = map[string][]string{
	StageLocate:     {StageValidating},
	StageValidating: {StagePreview, StageLocate},
	StagePreview:    {StageCommitted, StageValidating},
	StageCommitted:  {},
}

// CanTransition 判断阶段流转是否合法
func CanTransition(from, to string) bool {
	for _, s := range ValidStageTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
