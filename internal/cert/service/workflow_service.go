package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/Rostreet/printsystem/internal/cert/entity"
	"github.com/Rostreet/printsystem/internal/cert/pdf"
	"github.com/Rostreet/printsystem/internal/cert/repository"
	"github.com/Rostreet/printsystem/internal/cert/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WorkflowService 合格证打印工作流。
// 每个操作员同一时刻只持有一个会话，阶段流转为
// locate -> validating -> preview -> committed，回退只允许 preview -> validating。
// 取号只在 validating -> preview 的流转上发生一次，预览重入不重复取号。
type WorkflowService struct {
	vehicleRepo *repository.VehicleRepository
	orderRepo   *repository.OrderRepository
	chassisRepo *repository.ChassisRepository
	eventRepo   *repository.PrintEventRepository
	issuer      CertificateIssuer
	archiver    *storage.Archiver
	renderer    *pdf.Renderer
	logger      *zap.Logger
	strictVIN   bool
	callTimeout time.Duration // 取号、归档等外部调用的超时，0表示不限

	mu       sync.Mutex
	sessions map[string]*entity.WorkflowSession // 按操作员ID索引
	inflight map[string]bool                    // 会话级互斥，拦截同一操作员的并发重复提交
}

func NewWorkflowService(
	repos *repository.Repositories,
	issuer CertificateIssuer,
	archiver *storage.Archiver,
	renderer *pdf.Renderer,
	logger *zap.Logger,
	strictVIN bool,
	callTimeout time.Duration,
) *WorkflowService {
	return &WorkflowService{
		vehicleRepo: repos.Vehicle,
		orderRepo:   repos.Order,
		chassisRepo: repos.Chassis,
		eventRepo:   repos.PrintEvent,
		issuer:      issuer,
		archiver:    archiver,
		renderer:    renderer,
		logger:      logger,
		strictVIN:   strictVIN,
		callTimeout: callTimeout,
		sessions:    make(map[string]*entity.WorkflowSession),
		inflight:    make(map[string]bool),
	}
}

// acquire 取出会话并标记在途，同一操作员的并发请求被拒绝
func (s *WorkflowService) acquire(operatorID string) (*entity.WorkflowSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[operatorID]
	if !ok {
		return nil, fmt.Errorf("%w: 无进行中的打印会话", ErrInvalidStage)
	}
	if s.inflight[operatorID] {
		return nil, fmt.Errorf("%w: 上一次操作尚未完成", ErrConflict)
	}
	s.inflight[operatorID] = true
	return sess, nil
}

func (s *WorkflowService) release(operatorID string) {
	s.mu.Lock()
	delete(s.inflight, operatorID)
	s.mu.Unlock()
}

func (s *WorkflowService) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.callTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.callTimeout)
}

// 各轨道允许的打印角色。系统管理员不受限。
var trackRoles = map[entity.Track][]string{
	entity.TrackChassis:    {entity.RolePrinter},
	entity.TrackOrder:      {entity.RolePrinter},
	entity.TrackWhole:      {entity.RolePrinter},
	entity.TrackReprint:    {entity.RoleReprinter},
	entity.TrackSupplement: {entity.RoleReprinter},
}

func roleAllowed(track entity.Track, role string) bool {
	if role == entity.RoleSystemAdmin {
		return true
	}
	for _, r := range trackRoles[track] {
		if r == role {
			return true
		}
	}
	return false
}

// Locate 录入VIN/VSN，定位车辆并分类打印轨道，创建待确认会话。
// 部门与账号状态门禁在任何存储访问之前完成。
func (s *WorkflowService) Locate(ctx context.Context, op *entity.Operator, vin, vsn string) (*entity.WorkflowSession, error) {
	if op == nil || op.Status != entity.OperatorStatusEnabled {
		return nil, fmt.Errorf("%w: 账号不可用", ErrUnauthorized)
	}
	if op.Department != entity.DepartmentQuality {
		return nil, fmt.Errorf("%w: 合格证校验仅限%s操作员", ErrUnauthorized, entity.DepartmentQuality)
	}
	if s.strictVIN {
		if !entity.ValidVIN(vin) {
			return nil, fmt.Errorf("%w: VIN格式非法", ErrInvalidInput)
		}
		if vsn != "" && !entity.ValidVSN(vsn) {
			return nil, fmt.Errorf("%w: VSN格式非法", ErrInvalidInput)
		}
	} else if vin == "" {
		return nil, fmt.Errorf("%w: VIN不能为空", ErrInvalidInput)
	}

	rec, err := s.vehicleRepo.FindByVIN(ctx, vin)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: 车辆 %s 不存在", ErrNotFound, vin)
		}
		return nil, fmt.Errorf("%w: 查询车辆失败: %v", ErrUpstream, err)
	}

	track := entity.Classify(rec)
	if track == entity.TrackUnqualified {
		// 不合格车辆拒绝进入流程，不创建会话
		return nil, fmt.Errorf("%w: 车辆 %s 状态为不合格，不能打印合格证", ErrBlocked, vin)
	}
	if !roleAllowed(track, op.Role) {
		return nil, fmt.Errorf("%w: 角色%s不允许%s", ErrUnauthorized,
			entity.RoleNames[op.Role], entity.TrackNames[track])
	}

	sess := &entity.WorkflowSession{
		OperatorID: op.OperatorID,
		Stage:      entity.StageValidating,
		VIN:        vin,
		VSN:        vsn,
		Track:      track,
		Vehicle:    rec,
		StartedAt:  time.Now(),
	}
	if sess.VSN == "" {
		sess.VSN = rec.VSNCode
	}

	if track == entity.TrackOrder {
		order, err := s.orderRepo.FindByVIN(ctx, vin)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: 车辆 %s 标记为订单车但无订单记录", ErrNotFound, vin)
			}
			return nil, fmt.Errorf("%w: 查询订单失败: %v", ErrUpstream, err)
		}
		sess.Order = order
	}

	s.mu.Lock()
	s.sessions[op.OperatorID] = sess
	s.mu.Unlock()

	s.logger.Info("定位车辆成功",
		zap.String("operator", op.OperatorID),
		zap.String("vin", vin),
		zap.String("track", string(track)))
	return sess, nil
}

// Confirm 操作员确认校验数据，进入预览并取号。
// 已在预览阶段重复调用时原样返回会话，不重复取号。
func (s *WorkflowService) Confirm(ctx context.Context, operatorID string, edits map[string]string) (*entity.WorkflowSession, error) {
	sess, err := s.acquire(operatorID)
	if err != nil {
		return nil, err
	}
	defer s.release(operatorID)
	if sess.Stage == entity.StagePreview {
		return sess, nil
	}
	if sess.Stage != entity.StageValidating {
		return nil, fmt.Errorf("%w: 当前阶段%s不能进入预览", ErrInvalidStage, sess.Stage)
	}

	// 底盘/整车交叉校验，失败停留在校验阶段且不取号
	if err := s.crossCheck(ctx, sess); err != nil {
		return nil, err
	}

	// 补打会先持久化操作员改动再取号，保证落库的数据与证面一致
	if sess.Track == entity.TrackSupplement && len(edits) > 0 {
		applyEdits(sess.Vehicle, edits)
		sess.ModifiedFields = edits
		if err := s.vehicleRepo.Update(ctx, sess.Vehicle); err != nil {
			return nil, fmt.Errorf("%w: 补打信息保存失败: %v", ErrConflict, err)
		}
	}

	ictx, cancel := s.callCtx(ctx)
	defer cancel()
	no, err := s.issuer.Issue(ictx, sess.VIN, sess.Vehicle.EngineInfo, sess.Track)
	if err != nil {
		return nil, fmt.Errorf("%w: 合格证取号失败: %v", ErrUpstream, err)
	}

	sess.CertificateNo = no
	sess.PreviewPayload = buildPreview(sess)
	sess.Stage = entity.StagePreview

	s.logger.Info("进入打印预览",
		zap.String("operator", operatorID),
		zap.String("vin", sess.VIN),
		zap.String("certificateNo", no))
	return sess, nil
}

// crossCheck 底盘与整车轨道的VSN前缀交叉校验。
// 有VSN的底盘件前缀必须命中底盘配置，整车件必须不命中。
// 底盘件可以合法地没有VSN，此时跳过前缀校验。
func (s *WorkflowService) crossCheck(ctx context.Context, sess *entity.WorkflowSession) error {
	switch sess.Track {
	case entity.TrackChassis, entity.TrackWhole:
	default:
		return nil
	}

	if sess.VSN == "" {
		if sess.Track == entity.TrackChassis {
			return nil
		}
		return fmt.Errorf("%w: 车辆 %s 缺少VSN码", ErrMismatch, sess.VIN)
	}
	hit, err := s.chassisRepo.MatchPrefix(ctx, entity.VINPrefix(sess.VIN), entity.VSNPrefix(sess.VSN))
	if err != nil {
		return fmt.Errorf("%w: 底盘配置查询失败: %v", ErrUpstream, err)
	}
	if sess.Track == entity.TrackChassis && !hit {
		return fmt.Errorf("%w: VIN/VSN前缀未命中任何二类底盘配置", ErrMismatch)
	}
	if sess.Track == entity.TrackWhole && hit {
		return fmt.Errorf("%w: 整车打印的VIN/VSN前缀命中了二类底盘配置", ErrMismatch)
	}
	return nil
}

// 补打允许操作员修改的字段
func applyEdits(rec *entity.VehicleRecord, edits map[string]string) {
	for k, v := range edits {
		switch k {
		case "vehicleColor":
			rec.VehicleColor = v
		case "engineInfo":
			rec.EngineInfo = v
		case "manufactureDate":
			rec.ManufactureDate = v
		case "remark":
			rec.Remark = v
		}
	}
}

// buildPreview 组装证面数据。订单车应用定制覆盖，二类底盘不输出整车项。
func buildPreview(sess *entity.WorkflowSession) map[string]string {
	rec := sess.Vehicle
	p := map[string]string{
		"合格证编号": sess.CertificateNo,
		"车辆识别代号": sess.VIN,
		"车辆型号":  rec.VehicleModel,
		"车辆品牌":  rec.VehicleBrand,
		"车辆类型":  rec.VehicleType,
		"发动机型号": rec.EngineInfo,
		"车身颜色":  rec.VehicleColor,
		"燃料种类":  rec.FuelType,
		"排放标准":  rec.EmissionStandard,
		"外廓尺寸":  rec.OutlineSize,
		"轮胎规格":  rec.TireSpec,
		"轮胎数":   strconv.Itoa(rec.TireCount),
		"总质量":   formatMass(rec.TotalMass),
		"整备质量":  formatMass(rec.CurbWeight),
		"最高设计车速": strconv.Itoa(rec.MaxSpeed),
		"制造日期":  rec.ManufactureDate,
		"生产地址":  rec.ProductionAddress,
	}

	seats := rec.RatedPassengerCapacity
	switch sess.Track {
	case entity.TrackOrder:
		if sess.Order != nil {
			if sess.Order.VehicleColor != "" {
				p["车身颜色"] = sess.Order.VehicleColor
			}
			seats += sess.Order.SeatCountDelta
			p["订单编号"] = sess.Order.OrderNo
		}
		p["VSN码"] = sess.VSN
	case entity.TrackChassis:
		// 底盘件不输出整车装配项
		p["车辆型号"] = rec.ChassisModel
		delete(p, "车身颜色")
	default:
		p["VSN码"] = sess.VSN
	}
	p["额定载客"] = strconv.Itoa(seats)
	return p
}

func formatMass(m float64) string {
	return strconv.FormatFloat(m, 'f', -1, 64)
}

// Back 从预览退回校验阶段，作废已取的编号与证面数据
func (s *WorkflowService) Back(operatorID string) (*entity.WorkflowSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[operatorID]
	if !ok {
		return nil, fmt.Errorf("%w: 无进行中的打印会话", ErrInvalidStage)
	}
	if !entity.CanTransition(sess.Stage, entity.StageValidating) {
		return nil, fmt.Errorf("%w: 当前阶段%s不能回退", ErrInvalidStage, sess.Stage)
	}
	sess.Stage = entity.StageValidating
	sess.CertificateNo = ""
	sess.PreviewPayload = nil
	return sess, nil
}

// Commit 操作员确认本次打印结果。printed为false表示实际未打出，
// 会话停留在预览，可回退或重试；printed为true时写入审计记录并结束流程。
func (s *WorkflowService) Commit(ctx context.Context, operatorID string, printed bool) (*entity.WorkflowSession, error) {
	sess, err := s.acquire(operatorID)
	if err != nil {
		return nil, err
	}
	defer s.release(operatorID)
	if sess.Stage != entity.StagePreview {
		return nil, fmt.Errorf("%w: 当前阶段%s不能确认打印", ErrInvalidStage, sess.Stage)
	}
	if !printed {
		s.logger.Warn("操作员报告打印失败",
			zap.String("operator", operatorID),
			zap.String("certificateNo", sess.CertificateNo))
		return sess, nil
	}

	operateType := entity.OperateTypeNormal
	switch sess.Track {
	case entity.TrackReprint:
		operateType = entity.OperateTypeReprint
	case entity.TrackSupplement:
		operateType = entity.OperateTypeSupplement
	}

	ev := &entity.CertificatePrintEvent{
		ID:            uuid.NewString(),
		VIN:           sess.VIN,
		EngineNo:      sess.Vehicle.EngineInfo,
		CertificateNo: sess.CertificateNo,
		PrintType:     string(sess.Track),
		OperateType:   operateType,
		OperateUser:   operatorID,
		OperateTime:   time.Now(),
		OperateDesc:   entity.LegacyDesc(entity.TrackNames[sess.Track], sess.CertificateNo),
	}
	if err := s.eventRepo.Create(ctx, ev); err != nil {
		return nil, fmt.Errorf("%w: 打印记录写入失败: %v", ErrUpstream, err)
	}

	s.archive(ctx, sess)

	sess.Stage = entity.StageCommitted
	s.logger.Info("打印确认完成",
		zap.String("operator", operatorID),
		zap.String("vin", sess.VIN),
		zap.String("certificateNo", sess.CertificateNo),
		zap.String("operateType", operateType))
	return sess, nil
}

// archive 渲染并归档合格证PDF。归档失败只记日志，不影响打印流程。
func (s *WorkflowService) archive(ctx context.Context, sess *entity.WorkflowSession) {
	if s.renderer == nil || !s.archiver.Enabled() {
		return
	}
	data, err := s.renderer.Render(sess.CertificateNo, sess.VIN, sess.PreviewPayload)
	if err != nil {
		s.logger.Warn("合格证PDF渲染失败", zap.String("vin", sess.VIN), zap.Error(err))
		return
	}
	actx, cancel := s.callCtx(ctx)
	defer cancel()
	if _, err := s.archiver.PutCertificate(actx, sess.CertificateNo, data); err != nil {
		s.logger.Warn("合格证PDF归档失败", zap.String("vin", sess.VIN), zap.Error(err))
	}
}

// RenderPreviewPDF 渲染当前预览的合格证PDF（预览下载用）
func (s *WorkflowService) RenderPreviewPDF(operatorID string) ([]byte, error) {
	s.mu.Lock()
	sess, ok := s.sessions[operatorID]
	s.mu.Unlock()
	if !ok || sess.Stage != entity.StagePreview {
		return nil, fmt.Errorf("%w: 当前无可预览的合格证", ErrInvalidStage)
	}
	if s.renderer == nil {
		return nil, fmt.Errorf("%w: 未配置PDF渲染", ErrUpstream)
	}
	return s.renderer.Render(sess.CertificateNo, sess.VIN, sess.PreviewPayload)
}

// Reset 放弃当前会话
func (s *WorkflowService) Reset(operatorID string) {
	s.mu.Lock()
	delete(s.sessions, operatorID)
	s.mu.Unlock()
}

// Session 查询操作员当前会话，不存在返回ErrNotFound
func (s *WorkflowService) Session(operatorID string) (*entity.WorkflowSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[operatorID]
	if !ok {
		return nil, fmt.Errorf("%w: 无进行中的打印会话", ErrNotFound)
	}
	return sess, nil
}
