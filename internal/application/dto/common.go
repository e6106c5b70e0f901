package dto

import (
	"encoding/json"
	"time"
)

// DateLayout formato ISO 8601 de las fechas de respuesta (UTC, milisegundos, sufijo Z).
const DateLayout = "2006-01-02T15:04:05.000Z"

// ISOTime fecha serializada siempre con DateLayout.
type ISOTime time.Time

// MarshalJSON implementa json.Marshaler.
func (t ISOTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).UTC().Format(DateLayout))
}

// UnmarshalJSON acepta cualquier fecha RFC 3339 (con o sin fracción de segundo).
func (t *ISOTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*t = ISOTime(parsed)
	return nil
}

// Time devuelve el valor como time.Time.
func (t ISOTime) Time() time.Time { return time.Time(t) }

// ParseDate interpreta una fecha ISO 8601 / RFC 3339 y la normaliza a UTC.
func ParseDate(s string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return parsed.UTC(), nil
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// MessageResponse cuerpo de confirmación simple.
type MessageResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
