package model

import (
	"encoding/json"
	"strings"
)

// Color 商品顏色屬性
// 前端資料有兩種格式: 純字串 "Black" 或物件 {"name":"Black","hex":"#000000"}
type Color struct {
	Name string `json:"name"`
	Hex  string `json:"hex,omitempty"`
}

func (c *Color) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		return json.Unmarshal(data, &c.Name)
	}

	// 避免遞迴呼叫 UnmarshalJSON
	type colorObject Color
	var obj colorObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*c = Color(obj)
	return nil
}

func (c Color) MarshalJSON() ([]byte, error) {
	if c.Hex == "" {
		return json.Marshal(c.Name)
	}
	type colorObject Color
	return json.Marshal(colorObject(c))
}
