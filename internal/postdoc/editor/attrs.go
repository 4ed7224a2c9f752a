package editor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/agencia-site/postdoc/internal/postdoc/editor/edtypes"
)

var (
	fontFamilyReg = regexp.MustCompile(`^[\w\s"',-]+$`)
	languageReg   = regexp.MustCompile(`^[\w+#.-]+$`)
)

// NormalizeAttr проверяет значение атрибута узла и возвращает его в том виде, в котором
// оно переживает RenderHTML и ParseHTML без изменений. Используется и при импорте TipTap JSON.
func NormalizeAttr(kind edtypes.Kind, key, value string) (string, error) {
	a, ok := kind.Spec().Attr(key)
	if !ok {
		return "", ErrInvalidAttribute
	}
	value = strings.TrimSpace(value)
	if !a.Valid(value) {
		return "", ErrInvalidAttribute
	}

	switch key {
	case "url":
		if !IsAllowedURI(value) {
			return "", ErrInvalidHref
		}
	case "src":
		if !isAllowedImageSrc(value) {
			return "", ErrInvalidHref
		}
	case "color", "bgColor":
		c, ok := normalizeColor(value)
		if !ok {
			return "", ErrInvalidAttribute
		}
		value = c
	case "start":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return "", ErrInvalidAttribute
		}
		value = strconv.Itoa(n)
	case "colspan", "rowspan":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return "", ErrInvalidAttribute
		}
		value = strconv.Itoa(n)
	case "language":
		if !languageReg.MatchString(value) {
			return "", ErrInvalidAttribute
		}
	}
	return value, nil
}

// NormalizeMarkAttr - то же для атрибутов марок. Неизвестный ключ отклоняется.
func NormalizeMarkAttr(mark edtypes.MarkType, key, value string) (string, bool) {
	value = strings.TrimSpace(value)
	switch {
	case mark == edtypes.MarkTextStyle:
		return normalizeTextStyle(key, value)
	case mark == edtypes.MarkHighlight && key == "color":
		return normalizeColor(value)
	case mark == edtypes.MarkLink && key == "href":
		return value, IsAllowedURI(value)
	}
	for _, spec := range mark.Spec().Attrs {
		if spec.Key == key {
			return value, value != ""
		}
	}
	return "", false
}

// normalizeColor снимает обрамляющие кавычки. Значение с разделителями CSS отклоняется.
func normalizeColor(value string) (string, bool) {
	value = unquote(value)
	if value == "" || strings.ContainsAny(value, `"';:{}<>`) {
		return "", false
	}
	if _, err := edtypes.ParseColor(value); err != nil {
		return "", false
	}
	return value, true
}

// normalizeFontFamily допускает список семейств вида `"Times New Roman", serif`.
// Одно семейство в кавычках хранится без них.
func normalizeFontFamily(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if u := unquote(value); u != value {
		if strings.ContainsAny(u, `"'`) {
			return "", false
		}
		value = u
	}
	if value == "" || !fontFamilyReg.MatchString(value) {
		return "", false
	}
	if strings.Count(value, `"`)%2 != 0 || strings.Count(value, "'")%2 != 0 {
		return "", false
	}
	return value, true
}
