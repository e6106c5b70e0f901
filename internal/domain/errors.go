package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound   = errors.New("recurso no encontrado")
	ErrValidation = errors.New("validación fallida")
	ErrConflict   = errors.New("registro duplicado")
)

// ValidationKind identifica la regla concreta que rechazó una petición.
type ValidationKind string

const (
	KindDuplicateID       ValidationKind = "DuplicateId"
	KindUnknownParent     ValidationKind = "UnknownParent"
	KindParentNotCategory ValidationKind = "ParentNotCategory"
	KindTypeMismatch      ValidationKind = "TypeMismatch"
	KindCycleDetected     ValidationKind = "CycleDetected"
	KindInvalidDateRange  ValidationKind = "InvalidDateRange"
	KindInvalidUnit       ValidationKind = "InvalidUnit"     // reglas de campo: id/nombre vacíos, precio de OFFER, etc.
	KindDuplicateRecord   ValidationKind = "DuplicateRecord" // ya hay una estadística de la unidad con esa fecha
)

// ValidationError rechazo de una petición completa. Nunca se aplica parcialmente.
// errors.Is(err, ErrValidation) es verdadero para cualquier kind.
type ValidationError struct {
	Kind   ValidationKind
	UnitID string
	Detail string
}

// NewValidationError construye el error con formato opcional para el detalle.
func NewValidationError(kind ValidationKind, unitID, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, UnitID: unitID, Detail: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.UnitID == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
	return fmt.Sprintf("%s (id %s): %s", e.Kind, e.UnitID, e.Detail)
}

// Is permite errors.Is(err, domain.ErrValidation).
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ValidationKindOf devuelve el kind si err contiene un *ValidationError.
func ValidationKindOf(err error) (ValidationKind, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind, true
	}
	return "", false
}
