package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Rostreet/printsystem/internal/cert/entity"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const JWTSecret = "printsystem-test-jwt-secret"

// SetupTestDB 打开内存SQLite并迁移全部表，每个测试独立一份
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&entity.VehicleRecord{},
		&entity.OrderVehicle{},
		&entity.ChassisConfig{},
		&entity.CertificatePrintEvent{},
		&entity.Operator{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	})

	return db
}

// SetupRouter 创建测试路由
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// GenerateTestToken 生成测试JWT
func GenerateTestToken(operatorID, name, department, role string) string {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  operatorID,
		"oid":  operatorID,
		"name": name,
		"dept": department,
		"role": role,
		"iss":  "printsystem",
		"iat":  now.Unix(),
		"exp":  now.Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(JWTSecret))
	return tokenString
}

// DoRequest 向测试路由发起请求
func DoRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse 解析JSON响应体
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// SeedOperator 写入一个测试操作员，密码为 "test123"
func SeedOperator(t *testing.T, db *gorm.DB, operatorID, department, role string) *entity.Operator {
	t.Helper()
	hash, _ := bcrypt.GenerateFromPassword([]byte("test123"), bcrypt.MinCost)
	op := &entity.Operator{
		OperatorID:   operatorID,
		Username:     "操作员" + operatorID,
		PasswordHash: string(hash),
		Department:   department,
		Role:         role,
		Status:       entity.OperatorStatusEnabled,
	}
	if err := db.Create(op).Error; err != nil {
		t.Fatalf("Failed to seed operator: %v", err)
	}
	return op
}

// SeedVehicle 写入一辆测试车
func SeedVehicle(t *testing.T, db *gorm.DB, vin, vsn, vehicleType string) *entity.VehicleRecord {
	t.Helper()
	rec := &entity.VehicleRecord{
		VIN:                    vin,
		VSNCode:                vsn,
		ModelCode:              "CA1041",
		VehicleBrand:           "解放",
		VehicleModel:           "CA1041P40K2L1E5A84",
		EngineInfo:             "CA4DB1-13E5",
		VehicleColor:           "白色",
		VehicleType:            entity.VehicleTypeTruck,
		FuelType:               "柴油",
		TotalMass:              4495,
		CurbWeight:             2300,
		RatedPassengerCapacity: 3,
		MaxSpeed:               95,
		ManufactureDate:        "2026-08-01",
		Type:                   vehicleType,
	}
	if err := db.Create(rec).Error; err != nil {
		t.Fatalf("Failed to seed vehicle: %v", err)
	}
	return rec
}

// SeedChassisConfig 写入一条底盘配置
func SeedChassisConfig(t *testing.T, db *gorm.DB, vinPrefix, vsnPrefix string) *entity.ChassisConfig {
	t.Helper()
	cfg := &entity.ChassisConfig{
		ID:           fmt.Sprintf("chassis-%s", vsnPrefix),
		VINPrefix:    vinPrefix,
		VSNPrefix:    vsnPrefix,
		ChassisModel: "CA1041底盘",
	}
	if err := db.Create(cfg).Error; err != nil {
		t.Fatalf("Failed to seed chassis config: %v", err)
	}
	return cfg
}
