package dto

// UnitImport unidad dentro de un lote de importación.
type UnitImport struct {
	ID       string  `json:"id" yaml:"id" validate:"required"`
	Name     string  `json:"name" yaml:"name" validate:"required"`
	ParentID *string `json:"parentId" yaml:"parentId"`
	Type     string  `json:"type" yaml:"type" validate:"required,oneof=OFFER CATEGORY"`
	Price    *int64  `json:"price" yaml:"price" validate:"omitempty,gte=0"`
}

// UnitImportRequest lote completo: todas las unidades comparten UpdateDate.
type UnitImportRequest struct {
	Items      []UnitImport `json:"items" yaml:"items" validate:"required,dive"`
	UpdateDate *ISOTime     `json:"updateDate" yaml:"-" validate:"required"`
}

// ImportResult resumen de un lote aceptado.
type ImportResult struct {
	BatchID  string `json:"batchId"`
	Inserted int    `json:"inserted"`
	Replaced int    `json:"replaced"`
	Roots    int    `json:"roots"`
}

// UnitResponse unidad con su subárbol. Children es null para OFFER y [] para CATEGORY sin hijos.
type UnitResponse struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Date     ISOTime        `json:"date"`
	ParentID *string        `json:"parentId"`
	Type     string         `json:"type"`
	Price    *int64         `json:"price"`
	Children []UnitResponse `json:"children"`
}

// UnitStatisticResponse unidad sin hijos (ventas) o registro histórico (estadísticas).
type UnitStatisticResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Date     ISOTime `json:"date"`
	ParentID *string `json:"parentId"`
	Type     string  `json:"type"`
	Price    *int64  `json:"price"`
}

// UnitStatisticListResponse lista de unidades o registros históricos.
type UnitStatisticListResponse struct {
	Items []UnitStatisticResponse `json:"items"`
}
