package entity

import (
	"fmt"
	"regexp"
	"time"
)

// CertificatePrintEvent 合格证打印审计记录，每次用户确认打印成功后追加一条。
// 结构化字段始终写入；OperateDesc同时写入旧格式的自由文本，兼容历史数据的报表查询。
type CertificatePrintEvent struct {
	ID            string    `json:"id" gorm:"primaryKey;size:36"`
	VIN           string    `json:"vin" gorm:"size:17;index"`
	EngineNo      string    `json:"engineNo" gorm:"size:64"`
	CertificateNo string    `json:"certificateNo" gorm:"size:14;uniqueIndex"`
	PrintType     string    `json:"printType" gorm:"size:16;index"` // 打印时的轨道
	OperateType   string    `json:"operateType" gorm:"size:16"`     // NORMAL/REPRINT/SUPPLEMENT
	OperateUser   string    `json:"operateUser" gorm:"size:32;index"`
	OperateTime   time.Time `json:"operateTime" gorm:"index"`
	OperateDesc   string    `json:"operateDesc" gorm:"size:256"` // 旧格式："…类型：X…证号：Y"
	CreatedAt     time.Time `json:"created_at"`
}

func (CertificatePrintEvent) TableName() string {
	return "print_events"
}

// 操作类型（旧系统的打印类型枚举）
const (
	OperateTypeNormal     = "NORMAL"
	OperateTypeReprint    = "REPRINT"
	OperateTypeSupplement = "SUPPLEMENT"
)

// OperateTypeNames 操作类型中文名
var OperateTypeNames = map[string]string{
	OperateTypeNormal:     "正常打印",
	OperateTypeReprint:    "重打",
	OperateTypeSupplement: "补打",
}

var (
	descTypeRe = regexp.MustCompile(`类型：([^，,；;]+)`)
	descCertRe = regexp.MustCompile(`证号：([A-Za-z0-9]+)`)
)

// LegacyDesc 按旧格式拼装审计描述
func LegacyDesc(typeName, certificateNo string) string {
	return fmt.Sprintf("合格证打印，类型：%s，证号：%s", typeName, certificateNo)
}

// ParseDescType 从旧格式描述中解析打印类型，解析不到返回空串
func ParseDescType(desc string) string {
	m := descTypeRe.FindStringSubmatch(desc)
	if m == nil {
		return ""
	}
	return m[1]
}

// ParseDescCertNo 从旧格式描述中解析合格证编号，解析不到返回空串
func ParseDescCertNo(desc string) string {
	m := descCertRe.FindStringSubmatch(desc)
	if m == nil {
		return ""
	}
	return m[1]
}
