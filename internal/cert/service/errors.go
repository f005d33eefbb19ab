package service

import "errors"

// 工作流错误分类。所有错误在发生的阶段边界被拦截并带中文消息返回给操作员，
// 不推进会话阶段。
var (
	ErrNotFound     = errors.New("record not found")            // VIN/记录不存在
	ErrUnauthorized = errors.New("operator unauthorized")       // 部门门禁拦截
	ErrBlocked      = errors.New("vehicle blocked")             // 不合格车辆，需线下处理
	ErrMismatch     = errors.New("chassis/whole mismatch")      // 底盘/整车交叉校验失败
	ErrConflict     = errors.New("persist before issue failed") // 补打先存后取号失败
	ErrUpstream     = errors.New("upstream call failed")        // 存储/取号/归档调用失败或超时
	ErrInvalidInput = errors.New("invalid input")               // VIN/VSN格式校验失败
	ErrInvalidStage = errors.New("invalid session stage")       // 会话阶段不允许该操作
)
