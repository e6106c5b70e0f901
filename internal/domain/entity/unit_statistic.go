package entity

import "time"

// UnitStatistic registro histórico inmutable de una unidad en un instante (UnitID, Date).
// Solo se crea al insertar o reemplazar la unidad en un lote; se elimina en cascada con ella.
type UnitStatistic struct {
	UnitID   string
	Name     string
	Type     UnitType
	ParentID *string
	Price    *int64
	Date     time.Time
}

// NewUnitStatistic toma una instantánea de los campos actuales de la unidad.
func NewUnitStatistic(u Unit) *UnitStatistic {
	c := u.Clone()
	return &UnitStatistic{
		UnitID:   c.ID,
		Name:     c.Name,
		Type:     c.Type,
		ParentID: c.ParentID,
		Price:    c.Price,
		Date:     c.Date,
	}
}
