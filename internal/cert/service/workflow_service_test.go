package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Rostreet/printsystem/internal/cert/entity"
	"github.com/Rostreet/printsystem/internal/cert/repository"
	"github.com/Rostreet/printsystem/internal/cert/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fakeIssuer 记录取号次数，便于断言取号恰好一次
type fakeIssuer struct {
	calls int
	fail  bool
}

func (f *fakeIssuer) Issue(ctx context.Context, vin, engineNo string, printType entity.Track) (string, error) {
	if f.fail {
		return "", errors.New("issuer unavailable")
	}
	f.calls++
	return fmt.Sprintf("WD260901%06d", f.calls), nil
}

func setupWorkflowTest(t *testing.T) (*WorkflowService, *fakeIssuer, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	issuer := &fakeIssuer{}
	svc := NewWorkflowService(repository.NewRepositories(db), issuer, nil, nil, zap.NewNop(), false, 0)
	return svc, issuer, db
}

func printer() *entity.Operator {
	return &entity.Operator{
		OperatorID: "p001",
		Department: entity.DepartmentQuality,
		Role:       entity.RolePrinter,
		Status:     entity.OperatorStatusEnabled,
	}
}

func reprinter() *entity.Operator {
	return &entity.Operator{
		OperatorID: "r001",
		Department: entity.DepartmentQuality,
		Role:       entity.RoleReprinter,
		Status:     entity.OperatorStatusEnabled,
	}
}

func TestLocateDepartmentGate(t *testing.T) {
	svc, issuer, db := setupWorkflowTest(t)
	testutil.SeedVehicle(t, db, "LFAN1ABC2D345678X", "WH12345678901", entity.TypeWhole)

	op := printer()
	op.Department = "生产部"
	_, err := svc.Locate(context.Background(), op, "LFAN1ABC2D345678X", "")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Expected ErrUnauthorized, got %v", err)
	}
	if issuer.calls != 0 {
		t.Errorf("Expected no issuance, got %d", issuer.calls)
	}
}

func TestLocateDisabledOperator(t *testing.T) {
	svc, _, _ := setupWorkflowTest(t)
	op := printer()
	op.Status = entity.OperatorStatusDisabled
	_, err := svc.Locate(context.Background(), op, "LFAN1ABC2D345678X", "")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Expected ErrUnauthorized, got %v", err)
	}
}

func TestLocateNotFound(t *testing.T) {
	svc, _, _ := setupWorkflowTest(t)
	_, err := svc.Locate(context.Background(), printer(), "LFAN1ABC2D345678X", "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestLocateBlockedUnqualified(t *testing.T) {
	svc, _, db := setupWorkflowTest(t)
	testutil.SeedVehicle(t, db, "LFAN1ABC2D345678X", "WH12345678901", entity.TypeNotQualified)

	_, err := svc.Locate(context.Background(), printer(), "LFAN1ABC2D345678X", "")
	if !errors.Is(err, ErrBlocked) {
		t.Fatalf("Expected ErrBlocked, got %v", err)
	}
	if _, err := svc.Session("p001"); !errors.Is(err, ErrNotFound) {
		t.Error("Blocked vehicle should not leave a session behind")
	}
}

func TestLocateRoleGate(t *testing.T) {
	svc, _, db := setupWorkflowTest(t)
	testutil.SeedVehicle(t, db, "LFAN1ABC2D345678X", "WH12345678901", entity.TypeReprint)

	// 打印操作员不能走重打轨道
	_, err := svc.Locate(context.Background(), printer(), "LFAN1ABC2D345678X", "")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Expected ErrUnauthorized, got %v", err)
	}

	// 补打操作员可以
	sess, err := svc.Locate(context.Background(), reprinter(), "LFAN1ABC2D345678X", "")
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if sess.Track != entity.TrackReprint {
		t.Errorf("Expected reprint track, got %v", sess.Track)
	}
	if sess.Stage != entity.StageValidating {
		t.Errorf("Expected validating stage, got %v", sess.Stage)
	}
}

func TestConfirmIssuesExactlyOnce(t *testing.T) {
	svc, issuer, db := setupWorkflowTest(t)
	testutil.SeedVehicle(t, db, "LFAN1ABC2D345678X", "WH12345678901", entity.TypeWhole)

	op := printer()
	if _, err := svc.Locate(context.Background(), op, "LFAN1ABC2D345678X", ""); err != nil {
		t.Fatalf("Locate failed: %v", err)
	}

	sess, err := svc.Confirm(context.Background(), op.OperatorID, nil)
	if err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if sess.Stage != entity.StagePreview {
		t.Errorf("Expected preview stage, got %v", sess.Stage)
	}
	first := sess.CertificateNo
	if len(first) != entity.CertificateNoLength {
		t.Errorf("Expected %d-char certificate number, got %q", entity.CertificateNoLength, first)
	}

	// 预览阶段重复确认不再取号
	sess2, err := svc.Confirm(context.Background(), op.OperatorID, nil)
	if err != nil {
		t.Fatalf("Repeated confirm failed: %v", err)
	}
	if sess2.CertificateNo != first {
		t.Errorf("Certificate number changed on re-confirm: %q -> %q", first, sess2.CertificateNo)
	}
	if issuer.calls != 1 {
		t.Errorf("Expected exactly 1 issuance, got %d", issuer.calls)
	}
}

func TestConfirmWholeMismatch(t *testing.T) {
	svc, issuer, db := setupWorkflowTest(t)
	// 整车的VSN前缀命中了底盘配置
	testutil.SeedVehicle(t, db, "LFAN1ABC2D345678X", "CA12345678901", entity.TypeWhole)
	testutil.SeedChassisConfig(t, db, "XXXXXXXX", "CA")

	op := printer()
	if _, err := svc.Locate(context.Background(), op, "LFAN1ABC2D345678X", ""); err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	_, err := svc.Confirm(context.Background(), op.OperatorID, nil)
	if !errors.Is(err, ErrMismatch) {
		t.Fatalf("Expected ErrMismatch, got %v", err)
	}
	if issuer.calls != 0 {
		t.Errorf("Mismatch must not consume a certificate number, got %d issuances", issuer.calls)
	}
	sess, _ := svc.Session(op.OperatorID)
	if sess.Stage != entity.StageValidating {
		t.Errorf("Session should stay in validating, got %v", sess.Stage)
	}
}

func TestConfirmWholeMissingVSN(t *testing.T) {
	svc, issuer, db := setupWorkflowTest(t)
	testutil.SeedVehicle(t, db, "LFAN1ABC2D345678X", "", entity.TypeWhole)

	op := printer()
	if _, err := svc.Locate(context.Background(), op, "LFAN1ABC2D345678X", ""); err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	_, err := svc.Confirm(context.Background(), op.OperatorID, nil)
	if !errors.Is(err, ErrMismatch) {
		t.Fatalf("Expected ErrMismatch for missing VSN, got %v", err)
	}
	if issuer.calls != 0 {
		t.Errorf("Expected no issuance, got %d", issuer.calls)
	}
}

func TestConfirmChassisRequiresPrefixHit(t *testing.T) {
	svc, issuer, db := setupWorkflowTest(t)
	testutil.SeedVehicle(t, db, "LFAN1ABC2D345678X", "CA12345678901", entity.TypeChassis)

	op := printer()
	if _, err := svc.Locate(context.Background(), op, "LFAN1ABC2D345678X", ""); err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	// 没有底盘配置，前缀无法命中
	_, err := svc.Confirm(context.Background(), op.OperatorID, nil)
	if !errors.Is(err, ErrMismatch) {
		t.Fatalf("Expected ErrMismatch, got %v", err)
	}

	// 登记配置后放行
	testutil.SeedChassisConfig(t, db, "LFAN1ABC", "CA")
	sess, err := svc.Confirm(context.Background(), op.OperatorID, nil)
	if err != nil {
		t.Fatalf("Confirm failed after config seeded: %v", err)
	}
	if sess.Stage != entity.StagePreview {
		t.Errorf("Expected preview stage, got %v", sess.Stage)
	}
	if issuer.calls != 1 {
		t.Errorf("Expected exactly 1 issuance, got %d", issuer.calls)
	}
}

func TestConfirmChassisWithoutVSN(t *testing.T) {
	svc, issuer, db := setupWorkflowTest(t)
	// 底盘件可以合法地没有VSN，此时不做前缀校验直接放行
	testutil.SeedVehicle(t, db, "LFAN1ABC2D345678X", "", entity.TypeChassis)

	op := printer()
	if _, err := svc.Locate(context.Background(), op, "LFAN1ABC2D345678X", ""); err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	sess, err := svc.Confirm(context.Background(), op.OperatorID, nil)
	if err != nil {
		t.Fatalf("Chassis without VSN must reach preview, got %v", err)
	}
	if sess.Stage != entity.StagePreview {
		t.Errorf("Expected preview stage, got %v", sess.Stage)
	}
	if issuer.calls != 1 {
		t.Errorf("Expected exactly 1 issuance, got %d", issuer.calls)
	}
}

func TestSupplementPersistsBeforeIssue(t *testing.T) {
	db := testutil.SetupTestDB(t)
	issuer := &fakeIssuer{fail: true}
	svc := NewWorkflowService(repository.NewRepositories(db), issuer, nil, nil, zap.NewNop(), false, 0)
	testutil.SeedVehicle(t, db, "LFAN1ABC2D345678X", "WH12345678901", entity.TypeSupplement)

	op := reprinter()
	if _, err := svc.Locate(context.Background(), op, "LFAN1ABC2D345678X", ""); err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	_, err := svc.Confirm(context.Background(), op.OperatorID, map[string]string{"vehicleColor": "红色"})
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("Expected ErrUpstream from failing issuer, got %v", err)
	}

	// 取号虽失败，补打修改必须已经落库
	var rec entity.VehicleRecord
	if err := db.Where("vin = ?", "LFAN1ABC2D345678X").First(&rec).Error; err != nil {
		t.Fatalf("Reload vehicle failed: %v", err)
	}
	if rec.VehicleColor != "红色" {
		t.Errorf("Supplement edit should persist before issuance, got color %q", rec.VehicleColor)
	}
}

func TestSupplementPersistFailureBlocksIssuance(t *testing.T) {
	svc, issuer, db := setupWorkflowTest(t)
	testutil.SeedVehicle(t, db, "LFAN1ABC2D345678X", "WH12345678901", entity.TypeSupplement)

	op := reprinter()
	if _, err := svc.Locate(context.Background(), op, "LFAN1ABC2D345678X", ""); err != nil {
		t.Fatalf("Locate failed: %v", err)
	}

	// 让落库失败，补打改动保存不了就不允许取号
	if err := db.Migrator().DropTable(&entity.VehicleRecord{}); err != nil {
		t.Fatalf("Drop table failed: %v", err)
	}
	_, err := svc.Confirm(context.Background(), op.OperatorID, map[string]string{"vehicleColor": "红色"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("Expected ErrConflict from failing persist, got %v", err)
	}
	if issuer.calls != 0 {
		t.Errorf("Persist failure must block issuance, got %d calls", issuer.calls)
	}
	sess, _ := svc.Session(op.OperatorID)
	if sess.Stage != entity.StageValidating {
		t.Errorf("Session should stay in validating, got %v", sess.Stage)
	}
}

// deadlineIssuer 记录取号时上下文是否带截止时间
type deadlineIssuer struct {
	hasDeadline bool
}

func (d *deadlineIssuer) Issue(ctx context.Context, vin, engineNo string, printType entity.Track) (string, error) {
	_, d.hasDeadline = ctx.Deadline()
	return "WD260901000001", nil
}

func TestConfirmBoundsIssuerCall(t *testing.T) {
	db := testutil.SetupTestDB(t)
	issuer := &deadlineIssuer{}
	svc := NewWorkflowService(repository.NewRepositories(db), issuer, nil, nil, zap.NewNop(), false, 10*time.Second)
	testutil.SeedVehicle(t, db, "LFAN1ABC2D345678X", "WH12345678901", entity.TypeWhole)

	op := printer()
	if _, err := svc.Locate(context.Background(), op, "LFAN1ABC2D345678X", ""); err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if _, err := svc.Confirm(context.Background(), op.OperatorID, nil); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if !issuer.hasDeadline {
		t.Error("Issuer call should carry a deadline when a call timeout is configured")
	}
}

// gateIssuer 在取号时阻塞，用于模拟慢调用期间的重复提交
type gateIssuer struct {
	entered chan struct{}
	release chan struct{}
	calls   int
}

func (g *gateIssuer) Issue(ctx context.Context, vin, engineNo string, printType entity.Track) (string, error) {
	g.calls++
	close(g.entered)
	<-g.release
	return "WD260901000001", nil
}

func TestConfirmRejectsConcurrentDoubleSubmit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	issuer := &gateIssuer{entered: make(chan struct{}), release: make(chan struct{})}
	svc := NewWorkflowService(repository.NewRepositories(db), issuer, nil, nil, zap.NewNop(), false, 0)
	testutil.SeedVehicle(t, db, "LFAN1ABC2D345678X", "WH12345678901", entity.TypeWhole)

	op := printer()
	if _, err := svc.Locate(context.Background(), op, "LFAN1ABC2D345678X", ""); err != nil {
		t.Fatalf("Locate failed: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := svc.Confirm(context.Background(), op.OperatorID, nil)
		done <- err
	}()
	<-issuer.entered

	// 第一次确认还卡在取号上，第二次提交必须被拒绝
	if _, err := svc.Confirm(context.Background(), op.OperatorID, nil); !errors.Is(err, ErrConflict) {
		t.Errorf("Expected ErrConflict for double submit, got %v", err)
	}

	close(issuer.release)
	if err := <-done; err != nil {
		t.Fatalf("First confirm failed: %v", err)
	}
	if issuer.calls != 1 {
		t.Errorf("Expected exactly 1 issuance, got %d", issuer.calls)
	}
}

func TestLocateAdminOutsideQualityDenied(t *testing.T) {
	svc, _, db := setupWorkflowTest(t)
	testutil.SeedVehicle(t, db, "LFAN1ABC2D345678X", "WH12345678901", entity.TypeWhole)

	// 部门门禁对管理员同样生效
	op := &entity.Operator{
		OperatorID: "a001",
		Department: "信息部",
		Role:       entity.RoleSystemAdmin,
		Status:     entity.OperatorStatusEnabled,
	}
	_, err := svc.Locate(context.Background(), op, "LFAN1ABC2D345678X", "")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Expected ErrUnauthorized, got %v", err)
	}
}

func TestBackInvalidatesNumberAndReissues(t *testing.T) {
	svc, issuer, db := setupWorkflowTest(t)
	testutil.SeedVehicle(t, db, "LFAN1ABC2D345678X", "WH12345678901", entity.TypeWhole)

	op := printer()
	if _, err := svc.Locate(context.Background(), op, "LFAN1ABC2D345678X", ""); err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	sess, err := svc.Confirm(context.Background(), op.OperatorID, nil)
	if err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	first := sess.CertificateNo

	back, err := svc.Back(op.OperatorID)
	if err != nil {
		t.Fatalf("Back failed: %v", err)
	}
	if back.CertificateNo != "" || back.PreviewPayload != nil {
		t.Error("Back should clear certificate number and preview payload")
	}

	sess2, err := svc.Confirm(context.Background(), op.OperatorID, nil)
	if err != nil {
		t.Fatalf("Re-confirm failed: %v", err)
	}
	if sess2.CertificateNo == first {
		t.Error("Re-entry into preview must issue a fresh certificate number")
	}
	if issuer.calls != 2 {
		t.Errorf("Expected 2 issuances, got %d", issuer.calls)
	}
}

func TestCommitWritesAuditEvent(t *testing.T) {
	svc, _, db := setupWorkflowTest(t)
	testutil.SeedVehicle(t, db, "LFAN1ABC2D345678X", "WH12345678901", entity.TypeReprint)

	op := reprinter()
	if _, err := svc.Locate(context.Background(), op, "LFAN1ABC2D345678X", ""); err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	sess, err := svc.Confirm(context.Background(), op.OperatorID, nil)
	if err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}

	committed, err := svc.Commit(context.Background(), op.OperatorID, true)
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if committed.Stage != entity.StageCommitted {
		t.Errorf("Expected committed stage, got %v", committed.Stage)
	}

	var events []entity.CertificatePrintEvent
	db.Find(&events)
	if len(events) != 1 {
		t.Fatalf("Expected exactly 1 audit event, got %d", len(events))
	}
	ev := events[0]
	if ev.OperateType != entity.OperateTypeReprint {
		t.Errorf("Expected REPRINT operate type, got %q", ev.OperateType)
	}
	if ev.CertificateNo != sess.CertificateNo {
		t.Errorf("Event certificate %q != session %q", ev.CertificateNo, sess.CertificateNo)
	}
	if entity.ParseDescCertNo(ev.OperateDesc) != sess.CertificateNo {
		t.Errorf("Legacy desc should carry the certificate number: %q", ev.OperateDesc)
	}

	// 终态后不能再次确认
	if _, err := svc.Commit(context.Background(), op.OperatorID, true); !errors.Is(err, ErrInvalidStage) {
		t.Errorf("Expected ErrInvalidStage on double commit, got %v", err)
	}
}

func TestCommitNotPrinted(t *testing.T) {
	svc, _, db := setupWorkflowTest(t)
	testutil.SeedVehicle(t, db, "LFAN1ABC2D345678X", "WH12345678901", entity.TypeWhole)

	op := printer()
	if _, err := svc.Locate(context.Background(), op, "LFAN1ABC2D345678X", ""); err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if _, err := svc.Confirm(context.Background(), op.OperatorID, nil); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}

	sess, err := svc.Commit(context.Background(), op.OperatorID, false)
	if err != nil {
		t.Fatalf("Commit(false) failed: %v", err)
	}
	if sess.Stage != entity.StagePreview {
		t.Errorf("Unprinted commit should stay in preview, got %v", sess.Stage)
	}
	var count int64
	db.Model(&entity.CertificatePrintEvent{}).Count(&count)
	if count != 0 {
		t.Errorf("Unprinted commit must not write audit events, got %d", count)
	}
}

func TestOrderTrackAppliesOverrides(t *testing.T) {
	svc, _, db := setupWorkflowTest(t)
	testutil.SeedVehicle(t, db, "LFAN1ABC2D345678X", "WH12345678901", entity.TypeOrder)
	order := &entity.OrderVehicle{
		VIN:            "LFAN1ABC2D345678X",
		OrderNo:        "ORD-2026-001",
		ModelCode:      "CA1041",
		VehicleColor:   "蓝色",
		SeatCountDelta: 2,
		Status:         entity.OrderStatusInProduction,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("Seed order failed: %v", err)
	}

	op := printer()
	if _, err := svc.Locate(context.Background(), op, "LFAN1ABC2D345678X", ""); err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	sess, err := svc.Confirm(context.Background(), op.OperatorID, nil)
	if err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if sess.PreviewPayload["车身颜色"] != "蓝色" {
		t.Errorf("Order color override missing, got %q", sess.PreviewPayload["车身颜色"])
	}
	// 模板3座 + 订单增2
	if sess.PreviewPayload["额定载客"] != "5" {
		t.Errorf("Seat delta not applied, got %q", sess.PreviewPayload["额定载客"])
	}
}

func TestLocateOrderWithoutRecord(t *testing.T) {
	svc, _, db := setupWorkflowTest(t)
	testutil.SeedVehicle(t, db, "LFAN1ABC2D345678X", "WH12345678901", entity.TypeOrder)

	_, err := svc.Locate(context.Background(), printer(), "LFAN1ABC2D345678X", "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for missing order record, got %v", err)
	}
}

func TestStrictVINValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewWorkflowService(repository.NewRepositories(db), &fakeIssuer{}, nil, nil, zap.NewNop(), true, 0)

	_, err := svc.Locate(context.Background(), printer(), "BADVIN", "")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Expected ErrInvalidInput under strict mode, got %v", err)
	}
}
