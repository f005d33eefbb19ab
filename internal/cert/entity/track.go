package entity

// Track 本次打印流程的路由决策，由装套类型派生、不落库
type Track string

const (
	TrackChassis     Track = "chassis"
	TrackOrder       Track = "order"
	TrackReprint     Track = "reprint"
	TrackSupplement  Track = "supplement"
	TrackWhole       Track = "whole"
	TrackUnqualified Track = "unqualified"
)

// TrackNames 轨道中文名（用于审计描述与报表展示）
var TrackNames = map[Track]string{
	TrackChassis:     "二类底盘打印",
	TrackOrder:       "订单车打印",
	TrackReprint:     "重打",
	TrackSupplement:  "补打",
	TrackWhole:       "整车打印",
	TrackUnqualified: "不合格",
}

// Classify 根据记录存储的装套类型映射打印轨道。
// 只看type字段，不参考VSN；VSN仅在进入预览前做交叉校验。
func Classify(rec *VehicleRecord) Track {
	switch rec.Type {
	case TypeChassis:
		return TrackChassis
	case TypeOrder:
		return TrackOrder
	case TypeReprint:
		return TrackReprint
	case TypeSupplement:
		return TrackSupplement
	case TypeNotQualified:
		return TrackUnqualified
	default:
		// qualified、未设置或未知值都走整车默认路径
		return TrackWhole
	}
}
