package tiptap

import (
	"strconv"
	"strings"
)

// numericAttrs сериализуются числами, как их отдает TipTap.
var numericAttrs = map[string]bool{
	"level":   true,
	"start":   true,
	"colspan": true,
	"rowspan": true,
}

// getAttrString безопасно извлекает атрибут из map и приводит его к строке.
// Числа из JSON приходят как float64.
func getAttrString(attrs map[string]interface{}, key string) string {
	if attrs == nil {
		return ""
	}
	val, ok := attrs[key]
	if !ok || val == nil {
		return ""
	}

	switch v := val.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

// attrValue возвращает значение для JSON: числовые атрибуты как int, остальные как строки.
func attrValue(key, value string) interface{} {
	if numericAttrs[key] {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return value
}
