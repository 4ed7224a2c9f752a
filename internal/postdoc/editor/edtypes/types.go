package edtypes

import (
	"database/sql/driver"
	"encoding/hex"
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// MarkupParser - функция разбора HTML в Document, устанавливается пакетом editor
var MarkupParser func(markup string) *Document

// MarkupRenderer - функция рендера Document в HTML, устанавливается пакетом editor
var MarkupRenderer func(*Document) string

var ErrRendererNotRegistered = errors.New("MarkupRenderer not registered, import editor package to enable markup serialization")

// Value реализует интерфейс driver.Valuer: в базе документ хранится как канонический HTML.
func (d Document) Value() (driver.Value, error) {
	if MarkupRenderer == nil {
		return nil, ErrRendererNotRegistered
	}
	if len(d.nodes) == 0 {
		return MarkupRenderer(NewDocument()), nil
	}
	return MarkupRenderer(&d), nil
}

// Scan реализует интерфейс sql.Scanner для чтения HTML колонки content.
func (d *Document) Scan(value interface{}) error {
	if MarkupParser == nil {
		return errors.New("MarkupParser not registered, import editor package to enable markup parsing")
	}
	var raw string
	switch v := value.(type) {
	case nil:
		*d = *NewDocument()
		return nil
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return errors.New(fmt.Sprint("Failed to scan document value:", value))
	}
	*d = *MarkupParser(raw)
	return nil
}

// GormDataType указывает GORM хранить документ в текстовой колонке.
func (Document) GormDataType() string {
	return "text"
}

type Color color.RGBA

// ParseColor разбирает цвета вида #rgb, #rrggbb, #rrggbbaa и rgb()/rgba().
func ParseColor(raw string) (Color, error) {
	raw = strings.Trim(strings.TrimSpace(raw), `"`)
	if len(raw) < 2 {
		return Color{}, errors.New("unsupported color format")
	}
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "rgb(") || strings.HasPrefix(lower, "rgba(") {
		inner := lower[strings.Index(lower, "(")+1:]
		inner, ok := strings.CutSuffix(inner, ")")
		if !ok {
			return Color{}, errors.New("unsupported color format")
		}
		c := Color{A: 255}
		parts := strings.Split(inner, ",")
		if len(parts) < 3 || len(parts) > 4 {
			return c, errors.New("unsupported color format")
		}
		for i, n := range parts {
			n = strings.TrimSpace(n)
			if i == 3 {
				f, err := strconv.ParseFloat(n, 64)
				if err != nil || f < 0 || f > 1 {
					return c, errors.New("unsupported alpha value")
				}
				c.A = uint8(f * 255)
				continue
			}
			nn, err := strconv.ParseUint(n, 10, 8)
			if err != nil {
				return c, err
			}

			switch i {
			case 0:
				c.R = uint8(nn)
			case 1:
				c.G = uint8(nn)
			case 2:
				c.B = uint8(nn)
			}
		}
		return c, nil
	} else if raw[0] == '#' {
		// HEX
		raw = raw[1:]
		if len(raw) == 3 || len(raw) == 4 {
			var sb strings.Builder
			for _, r := range raw {
				sb.WriteRune(r)
				sb.WriteRune(r)
			}
			raw = sb.String()
		}
		b, err := hex.DecodeString(raw)
		if err != nil {
			return Color{}, err
		}
		if len(b) != 3 && len(b) != 4 {
			return Color{}, errors.New("unsupported color format")
		}
		c := Color{
			R: b[0],
			G: b[1],
			B: b[2],
			A: 255,
		}
		if len(b) > 3 {
			c.A = b[3]
		}
		return c, nil
	}
	return Color{}, errors.New("unsupported color format")
}

// Hex возвращает цвет в виде #rrggbb (или #rrggbbaa для прозрачных цветов).
func (c Color) Hex() string {
	if c.A == 255 {
		return "#" + hex.EncodeToString([]byte{c.R, c.G, c.B})
	}
	return "#" + hex.EncodeToString([]byte{c.R, c.G, c.B, c.A})
}

func (c Color) MarshalJSON() ([]byte, error) {
	return fmt.Appendf(nil, "%q", c.Hex()), nil
}

func (c *Color) UnmarshalJSON(data []byte) error {
	if string(data) == "null" || string(data) == `""` {
		return nil
	}

	cc, err := ParseColor(string(data))
	*c = cc

	return err
}
