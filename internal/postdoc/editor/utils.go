package editor

import (
	"net/url"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/net/html"
)

var (
	allowedProtocols = []string{"http", "https", "ftp", "ftps", "mailto", "tel", "callto", "sms", "cid", "xmpp"}
	fontSizeReg      = regexp.MustCompile(`^\d+(\.\d+)?(px|em|rem|pt|%)$`)
	lineBreakReg     = regexp.MustCompile(`[ \t]*[\r\n][ \t\r\n]*`)
	languageClassReg = regexp.MustCompile(`(?:^|\s)language-([\w+#.-]+)`)
)

// IsAllowedURI проверяет ссылку: относительные адреса и перечисленные протоколы разрешены,
// javascript:, vbscript:, data: и прочие отклоняются.
func IsAllowedURI(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	if strings.HasPrefix(raw, "#") || strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "?") {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme == "" {
		return !strings.Contains(strings.ToLower(raw), ":")
	}
	return slices.Contains(allowedProtocols, strings.ToLower(u.Scheme))
}

// isAllowedImageSrc дополнительно разрешает base64-картинки.
func isAllowedImageSrc(raw string) bool {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(raw)), "data:image/") {
		return true
	}
	return IsAllowedURI(raw)
}

func getAttrValue(key string, attrs []html.Attribute) string {
	for _, attr := range attrs {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// parseStyleAttr парсит CSS style строку в map key-value пар.
// Например: "background-color: red; color: blue;" -> {"background-color": "red", "color": "blue"}
func parseStyleAttr(style string) map[string]string {
	result := make(map[string]string)
	if style == "" {
		return result
	}

	for part := range strings.SplitSeq(style, ";") {
		kv := strings.SplitN(part, ":", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(kv[0]))
		value := strings.TrimSpace(kv[1])
		if key != "" && value != "" {
			result[key] = value
		}
	}

	return result
}

type styleDecl struct {
	key, value string
}

func renderStyle(decls ...styleDecl) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		if d.value == "" {
			continue
		}
		parts = append(parts, d.key+": "+d.value)
	}
	return strings.Join(parts, "; ")
}

// unquote снимает кавычки, только если они обрамляют все значение.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

func isBoldWeight(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "bold", "bolder", "600", "700", "800", "900":
		return true
	}
	return false
}
