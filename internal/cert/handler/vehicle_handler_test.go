package handler

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/Rostreet/printsystem/internal/cert/entity"
	"github.com/Rostreet/printsystem/internal/cert/testutil"
	"github.com/gin-gonic/gin"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

func maintainerToken() string {
	return testutil.GenerateTestToken("m001", "参数维护员", "", entity.RoleParameterMaintainer)
}

func TestVehicleCreateAndGet(t *testing.T) {
	router, _, _ := setupAppTest(t)
	token := maintainerToken()

	w := testutil.DoRequest(router, "POST", "/api/v1/warehousingcar", gin.H{
		"vin":          "LFAN1ABC2D345678X",
		"vsnCode":      "WH12345678901",
		"modelCode":    "CA1041",
		"vehicleBrand": "解放",
		"vehicleModel": "CA1041P40K2L1E5A84",
		"vehicleType":  entity.VehicleTypeTruck,
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(router, "GET",
		"/api/v1/warehousingcar/getbyvin/LFAN1ABC2D345678X", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["modelCode"] != "CA1041" {
		t.Errorf("Expected model CA1041, got %v", data["modelCode"])
	}
	// 新记录装套类型默认未设置
	if data["type"] != entity.TypeUnset {
		t.Errorf("Expected unset type, got %v", data["type"])
	}
}

func TestVehicleCreateForbiddenForPrinter(t *testing.T) {
	router, _, _ := setupAppTest(t)
	token := testutil.GenerateTestToken("p001", "打印员", entity.DepartmentQuality, entity.RolePrinter)

	w := testutil.DoRequest(router, "POST", "/api/v1/warehousingcar",
		gin.H{"vin": "LFAN1ABC2D345678X"}, token)
	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403 for printer role, got %d", w.Code)
	}
}

func TestVehicleUpdateType(t *testing.T) {
	router, db, _ := setupAppTest(t)
	testutil.SeedVehicle(t, db, "LFAN1ABC2D345678X", "WH12345678901", entity.TypeUnset)
	token := maintainerToken()

	w := testutil.DoRequest(router, "PUT",
		"/api/v1/warehousingcar/LFAN1ABC2D345678X/type",
		gin.H{"type": entity.TypeWhole}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var rec entity.VehicleRecord
	db.Where("vin = ?", "LFAN1ABC2D345678X").First(&rec)
	if rec.Type != entity.TypeWhole {
		t.Errorf("Expected whole type, got %q", rec.Type)
	}

	// 非法类型被拒绝
	w = testutil.DoRequest(router, "PUT",
		"/api/v1/warehousingcar/LFAN1ABC2D345678X/type",
		gin.H{"type": "nonsense"}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for unknown type, got %d", w.Code)
	}
}

func TestVehicleCopy(t *testing.T) {
	router, db, _ := setupAppTest(t)
	seeded := testutil.SeedVehicle(t, db, "LFAN1ABC2D345678X", "WH12345678901", entity.TypeWhole)
	token := maintainerToken()

	w := testutil.DoRequest(router, "POST", "/api/v1/warehousingcar/copy", gin.H{
		"sourceModelCode": seeded.ModelCode,
		"newVin":          "LFAN1XYZ9E876543W",
		"newVsn":          "WH98765432109",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["vehicleModel"] != seeded.VehicleModel {
		t.Errorf("Copy should carry template fields, got %v", data["vehicleModel"])
	}
	if data["type"] != entity.TypeUnset {
		t.Errorf("Copied record must reset type to unset, got %v", data["type"])
	}

	// 目标VIN已存在时拒绝
	w = testutil.DoRequest(router, "POST", "/api/v1/warehousingcar/copy", gin.H{
		"sourceModelCode": seeded.ModelCode,
		"newVin":          "LFAN1XYZ9E876543W",
	}, token)
	if w.Code != http.StatusConflict {
		t.Fatalf("Expected 409 for duplicate VIN, got %d", w.Code)
	}
}

func TestVehicleListPagination(t *testing.T) {
	router, db, _ := setupAppTest(t)
	testutil.SeedVehicle(t, db, "LFAN1ABC2D345678X", "WH12345678901", entity.TypeWhole)
	testutil.SeedVehicle(t, db, "LFAN1XYZ9E876543W", "WH98765432109", entity.TypeWhole)
	token := maintainerToken()

	w := testutil.DoRequest(router, "GET", "/api/v1/warehousingcar?page=1&page_size=1", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	pagination := data["pagination"].(map[string]interface{})
	if pagination["total"].(float64) != 2 {
		t.Errorf("Expected total 2, got %v", pagination["total"])
	}
	if pagination["total_pages"].(float64) != 2 {
		t.Errorf("Expected 2 pages, got %v", pagination["total_pages"])
	}
	items := data["items"].([]interface{})
	if len(items) != 1 {
		t.Errorf("Expected 1 item per page, got %d", len(items))
	}
}

func TestVehicleExport(t *testing.T) {
	router, db, _ := setupAppTest(t)
	testutil.SeedVehicle(t, db, "LFAN1ABC2D345678X", "WH12345678901", entity.TypeWhole)
	token := maintainerToken()

	w := testutil.DoRequest(router, "GET", "/api/v1/warehousingcar/export", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if w.Body.Len() == 0 {
		t.Error("Expected non-empty xlsx payload")
	}
}

func TestVehicleExportCSVIsGBK(t *testing.T) {
	router, db, _ := setupAppTest(t)
	testutil.SeedVehicle(t, db, "LFAN1ABC2D345678X", "WH12345678901", entity.TypeWhole)
	token := maintainerToken()

	w := testutil.DoRequest(router, "GET", "/api/v1/warehousingcar/export/csv", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	raw := w.Body.String()
	// 表头是GBK字节，不应以UTF-8原样出现
	if strings.Contains(raw, "车型代码") {
		t.Error("CSV payload should be GBK encoded, found UTF-8 header")
	}

	decoded, err := io.ReadAll(transform.NewReader(w.Body, simplifiedchinese.GBK.NewDecoder()))
	if err != nil {
		t.Fatalf("GBK decode failed: %v", err)
	}
	text := string(decoded)
	if !strings.Contains(text, "车型代码") {
		t.Error("Decoded CSV should contain the header row")
	}
	if !strings.Contains(text, "LFAN1ABC2D345678X") {
		t.Error("Decoded CSV should contain the seeded VIN")
	}
}

func TestOrderLifecycle(t *testing.T) {
	router, db, _ := setupAppTest(t)
	testutil.SeedVehicle(t, db, "LFAN1ABC2D345678X", "WH12345678901", entity.TypeUnset)
	token := testutil.GenerateTestToken("o001", "订单维护员", "", entity.RoleOrderMaintainer)

	w := testutil.DoRequest(router, "POST", "/api/v1/order", gin.H{
		"vin":          "LFAN1ABC2D345678X",
		"orderNo":      "ORD-2026-001",
		"vehicleColor": "蓝色",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	// 登记订单后装套类型自动置为订单车
	var rec entity.VehicleRecord
	db.Where("vin = ?", "LFAN1ABC2D345678X").First(&rec)
	if rec.Type != entity.TypeOrder {
		t.Errorf("Expected order type after registration, got %q", rec.Type)
	}

	// 无参数记录的VIN不能登记订单
	w = testutil.DoRequest(router, "POST", "/api/v1/order", gin.H{
		"vin":     "LFAN1QRS5F112233V",
		"orderNo": "ORD-2026-002",
	}, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 for unknown vehicle, got %d", w.Code)
	}

	// 删除订单后类型退回未设置
	w = testutil.DoRequest(router, "DELETE", "/api/v1/order/LFAN1ABC2D345678X", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	db.Where("vin = ?", "LFAN1ABC2D345678X").First(&rec)
	if rec.Type != entity.TypeUnset {
		t.Errorf("Expected type reset after order deletion, got %q", rec.Type)
	}
}

func TestChassisConfigValidation(t *testing.T) {
	router, _, _ := setupAppTest(t)
	token := testutil.GenerateTestToken("c001", "底盘维护员", "", entity.RoleChassisMaintainer)

	// 前缀长度校验
	w := testutil.DoRequest(router, "POST", "/api/v1/chassis", gin.H{
		"vinPrefix": "SHORT",
		"vsnPrefix": "CA",
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for bad VIN prefix, got %d", w.Code)
	}

	w = testutil.DoRequest(router, "POST", "/api/v1/chassis", gin.H{
		"vinPrefix":    "LFAN1ABC",
		"vsnPrefix":    "CA",
		"chassisModel": "CA1041底盘",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
}
