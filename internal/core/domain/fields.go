package domain

import (
	"errors"
	"regexp"
	"time"
)

// MaxFieldEdits caps how many times an editable profile field may change.
const MaxFieldEdits = 3

// ErrUnknownField indicates the requested field is not editable.
var ErrUnknownField = errors.New("field is not editable")

// FormatError reports a raw value that could not be parsed into the
// field's native type.
type FormatError struct {
	Field   ProfileField
	Message string
}

func (e *FormatError) Error() string { return e.Message }

// ValidationError reports a parsed value that violates the field's rules.
type ValidationError struct {
	Field   ProfileField
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ProfileField enumerates the editable profile attributes. The value is the
// wire name used by clients; each variant carries its own parser, validator,
// and column accessors so an invalid field name can never reach the store.
type ProfileField string

const (
	FieldDisplayName ProfileField = "nombre_completo"
	FieldPhone       ProfileField = "telefono"
	FieldBirthDate   ProfileField = "fecha_nacimiento"
)

// EditableFields lists every field the mutation guard accepts.
var EditableFields = []ProfileField{FieldDisplayName, FieldPhone, FieldBirthDate}

// ParseProfileField resolves a wire name against the closed allow-list.
func ParseProfileField(name string) (ProfileField, error) {
	switch ProfileField(name) {
	case FieldDisplayName, FieldPhone, FieldBirthDate:
		return ProfileField(name), nil
	}
	return "", ErrUnknownField
}

// Column returns the value column backing the field.
func (f ProfileField) Column() string {
	switch f {
	case FieldDisplayName:
		return "nombre_completo"
	case FieldPhone:
		return "telefono"
	case FieldBirthDate:
		return "fecha_nacimiento"
	}
	return ""
}

// CounterColumn returns the edit-counter column backing the field.
func (f ProfileField) CounterColumn() string {
	switch f {
	case FieldDisplayName:
		return "ediciones_nombre"
	case FieldPhone:
		return "ediciones_telefono"
	case FieldBirthDate:
		return "ediciones_fecha_nacimiento"
	}
	return ""
}

// Label is the human-readable field name used in response messages.
func (f ProfileField) Label() string {
	switch f {
	case FieldDisplayName:
		return "Nombre"
	case FieldPhone:
		return "Teléfono"
	case FieldBirthDate:
		return "Fecha de nacimiento"
	}
	return string(f)
}

const birthDateLayout = "2006-01-02"

var (
	nameAlphabetRe   = regexp.MustCompile(`^[a-zA-ZáéíóúÁÉÍÓÚñÑüÜ ]+$`)
	nameDoubleSpace  = regexp.MustCompile(`  `)
	nameEdgeSpace    = regexp.MustCompile(`^ | $`)
	phoneDigitsRe    = regexp.MustCompile(`^[0-9]+$`)
	phoneExactRe     = regexp.MustCompile(`^[0-9]{8}$`)
	phoneMobileLead  = regexp.MustCompile(`^[67]`)
)

// FieldValue is a parsed, validated value for one editable field.
type FieldValue struct {
	Field ProfileField

	name      string
	phone     int64
	birthDate time.Time
}

// Parse converts the raw wire value into the field's native type and applies
// the field's validation rules. Parse failures yield *FormatError; rule
// violations yield *ValidationError.
func (f ProfileField) Parse(raw string) (FieldValue, error) {
	switch f {
	case FieldDisplayName:
		return parseDisplayName(raw)
	case FieldPhone:
		return parsePhone(raw)
	case FieldBirthDate:
		return parseBirthDate(raw)
	}
	return FieldValue{}, ErrUnknownField
}

func parseDisplayName(raw string) (FieldValue, error) {
	runes := []rune(raw)
	if len(runes) < 3 || len(runes) > 50 {
		return FieldValue{}, &ValidationError{Field: FieldDisplayName, Message: "El nombre debe tener entre 3 y 50 caracteres."}
	}
	if !nameAlphabetRe.MatchString(raw) {
		return FieldValue{}, &ValidationError{Field: FieldDisplayName, Message: "El nombre solo puede contener letras y espacios."}
	}
	if nameDoubleSpace.MatchString(raw) {
		return FieldValue{}, &ValidationError{Field: FieldDisplayName, Message: "El nombre no debe tener más de un espacio consecutivo."}
	}
	if nameEdgeSpace.MatchString(raw) {
		return FieldValue{}, &ValidationError{Field: FieldDisplayName, Message: "El nombre no debe comenzar ni terminar con espacios."}
	}
	return FieldValue{Field: FieldDisplayName, name: raw}, nil
}

func parsePhone(raw string) (FieldValue, error) {
	if !phoneDigitsRe.MatchString(raw) {
		return FieldValue{}, &FormatError{Field: FieldPhone, Message: "Formato inválido, ingrese solo números."}
	}
	if !phoneExactRe.MatchString(raw) {
		return FieldValue{}, &ValidationError{Field: FieldPhone, Message: "El teléfono debe ser un número de 8 dígitos."}
	}
	if !phoneMobileLead.MatchString(raw) {
		return FieldValue{}, &ValidationError{Field: FieldPhone, Message: "El teléfono debe comenzar con 6 o 7."}
	}
	var n int64
	for _, r := range raw {
		n = n*10 + int64(r-'0')
	}
	return FieldValue{Field: FieldPhone, phone: n}, nil
}

func parseBirthDate(raw string) (FieldValue, error) {
	t, err := time.Parse(birthDateLayout, raw)
	if err != nil {
		return FieldValue{}, &FormatError{Field: FieldBirthDate, Message: "La fecha debe tener el formato AAAA-MM-DD."}
	}
	return FieldValue{Field: FieldBirthDate, birthDate: t}, nil
}

// Arg returns the value in the shape the store adapter persists.
func (v FieldValue) Arg() any {
	switch v.Field {
	case FieldDisplayName:
		return v.name
	case FieldPhone:
		return v.phone
	case FieldBirthDate:
		return v.birthDate
	}
	return nil
}

// Equals reports whether the account already holds this exact value.
// Equal submissions are idempotent and must not consume an edit.
func (v FieldValue) Equals(a *Account) bool {
	switch v.Field {
	case FieldDisplayName:
		return a.DisplayName == v.name
	case FieldPhone:
		return a.Phone != nil && *a.Phone == v.phone
	case FieldBirthDate:
		return a.BirthDate != nil && a.BirthDate.Equal(v.birthDate)
	}
	return false
}

// ApplyTo mirrors the committed value onto an in-memory account.
func (v FieldValue) ApplyTo(a *Account) {
	switch v.Field {
	case FieldDisplayName:
		a.DisplayName = v.name
	case FieldPhone:
		phone := v.phone
		a.Phone = &phone
	case FieldBirthDate:
		date := v.birthDate
		a.BirthDate = &date
	}
}
