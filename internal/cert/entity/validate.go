package entity

import "regexp"

// 编码长度
const (
	VINLength           = 17
	VSNLength           = 13
	CertificateNoLength = 14
)

var (
	vinRe    = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`) // VIN不含I/O/Q
	vsnRe    = regexp.MustCompile(`^[A-Z0-9]{13}$`)
	certNoRe = regexp.MustCompile(`^[A-Z0-9]{14}$`)
)

// ValidVIN 严格校验VIN格式
func ValidVIN(vin string) bool {
	return vinRe.MatchString(vin)
}

// ValidVSN 严格校验VSN格式
func ValidVSN(vsn string) bool {
	return vsnRe.MatchString(vsn)
}

// ValidCertificateNo 校验合格证编号格式
func ValidCertificateNo(no string) bool {
	return certNoRe.MatchString(no)
}

// VINPrefix 取VIN前8位，不足返回空串
func VINPrefix(vin string) string {
	if len(vin) < 8 {
		return ""
	}
	return vin[:8]
}

// VSNPrefix 取VSN前2位，不足返回空串
func VSNPrefix(vsn string) string {
	if len(vsn) < 2 {
		return ""
	}
	return vsn[:2]
}
