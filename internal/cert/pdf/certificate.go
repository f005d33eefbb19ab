package pdf

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/phpdave11/gofpdf"
)

// Renderer 合格证PDF渲染器
type Renderer struct {
	fontPath string // 可选的中文字体文件路径，缺省用内置Arial（中文降级为拼音字段名）
}

func NewRenderer(fontPath string) *Renderer {
	return &Renderer{fontPath: fontPath}
}

// Render 根据预览数据生成合格证PDF
func (r *Renderer) Render(certificateNo, vin string, payload map[string]string) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	font := "Arial"
	if r.fontPath != "" {
		doc.AddUTF8Font("cn", "", r.fontPath)
		font = "cn"
	}
	doc.AddPage()

	doc.SetFont(font, "", 18)
	doc.CellFormat(0, 12, "Vehicle Certificate of Conformity", "", 1, "C", false, 0, "")

	doc.SetFont(font, "", 11)
	doc.CellFormat(0, 8, fmt.Sprintf("Certificate No: %s", certificateNo), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 8, fmt.Sprintf("VIN: %s", vin), "", 1, "L", false, 0, "")
	doc.Ln(4)

	// 字段按键名排序，保证同一车辆多次渲染产出一致
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	doc.SetFont(font, "", 10)
	for _, k := range keys {
		doc.CellFormat(60, 7, k, "1", 0, "L", false, 0, "")
		doc.CellFormat(0, 7, payload[k], "1", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render certificate pdf: %w", err)
	}
	return buf.Bytes(), nil
}
