// Типы полей моделей, которые хранятся в базе.
package types

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"

	policy "github.com/agencia-site/postdoc/internal/postdoc/redactor-policy"
)

// RedactorHTML - разметка поста. При записи в базу и при разборе JSON очищается политикой постов.
type RedactorHTML struct {
	Body             string
	stripped         string
	AlreadySanitized bool
}

func NewRedactorHTML(markup string) RedactorHTML {
	return RedactorHTML{Body: RemoveInvisibleChars(policy.SanitizeContent(markup)), AlreadySanitized: true}
}

func (RedactorHTML) GormDataType() string {
	return "text"
}

func (r RedactorHTML) Value() (driver.Value, error) {
	if !r.AlreadySanitized {
		return policy.SanitizeContent(r.Body), nil
	}
	return r.Body, nil
}

func (r *RedactorHTML) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		r.Body = v
	case []byte:
		r.Body = string(v)
	case nil:
		r.Body = ""
	default:
		return errors.New("unsupported type")
	}
	r.AlreadySanitized = true
	return nil
}

func (r RedactorHTML) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(r.Body); err != nil {
		return nil, err
	}

	return bytes.TrimSpace(buf.Bytes()), nil
}

func (r *RedactorHTML) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &r.Body); err != nil {
		return err
	}
	r.Body = RemoveInvisibleChars(policy.SanitizeContent(r.Body))
	r.AlreadySanitized = true

	return nil
}

// StripTags возвращает текст без разметки.
func (r *RedactorHTML) StripTags() string {
	if r.stripped == "" {
		r.stripped = policy.PlainText(r.Body)
	}
	return r.stripped
}

func RemoveInvisibleChars(s string) string {
	invisible := []string{
		"\u200B",
		"\u200C",
		"\u200D",
		"\uFEFF",
	}

	for _, ch := range invisible {
		s = strings.ReplaceAll(s, ch, "")
	}
	return s
}
