package entity

import "time"

// UnitType tipo de nodo del catálogo. Inmutable una vez creado.
type UnitType string

const (
	UnitTypeCategory UnitType = "CATEGORY" // contenedor, precio derivado de sus descendientes
	UnitTypeOffer    UnitType = "OFFER"    // hoja con precio propio
)

// Valid indica si el valor es uno de los tipos conocidos.
func (t UnitType) Valid() bool {
	return t == UnitTypeCategory || t == UnitTypeOffer
}

// Unit nodo del árbol de catálogo (categoría u oferta).
// ParentID nil = raíz. Price nil = sin precio (categoría sin ofertas con precio).
type Unit struct {
	ID       string
	Name     string
	Type     UnitType
	ParentID *string
	Price    *int64
	Date     time.Time // fecha del último lote que tocó la unidad
}

// IsCategory atajo para Type == CATEGORY.
func (u *Unit) IsCategory() bool { return u.Type == UnitTypeCategory }

// IsRoot indica si la unidad no tiene padre.
func (u *Unit) IsRoot() bool { return u.ParentID == nil }

// Clone copia profunda (los punteros no se comparten).
func (u Unit) Clone() Unit {
	if u.ParentID != nil {
		p := *u.ParentID
		u.ParentID = &p
	}
	if u.Price != nil {
		p := *u.Price
		u.Price = &p
	}
	return u
}
