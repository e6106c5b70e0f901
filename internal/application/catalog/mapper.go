package catalog

import (
	"github.com/jhoicas/catalogo-api/internal/application/dto"
	"github.com/jhoicas/catalogo-api/internal/domain/catalog"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
)

func toUnitResponse(n *catalog.UnitNode) dto.UnitResponse {
	out := dto.UnitResponse{
		ID:       n.Unit.ID,
		Name:     n.Unit.Name,
		Date:     dto.ISOTime(n.Unit.Date),
		ParentID: n.Unit.ParentID,
		Type:     string(n.Unit.Type),
		Price:    n.Unit.Price,
	}
	if n.Children != nil {
		out.Children = make([]dto.UnitResponse, 0, len(n.Children))
		for _, c := range n.Children {
			out.Children = append(out.Children, toUnitResponse(c))
		}
	}
	return out
}

func toUnitStatisticResponseFromUnit(u *entity.Unit) dto.UnitStatisticResponse {
	return dto.UnitStatisticResponse{
		ID:       u.ID,
		Name:     u.Name,
		Date:     dto.ISOTime(u.Date),
		ParentID: u.ParentID,
		Type:     string(u.Type),
		Price:    u.Price,
	}
}

func toUnitStatisticResponse(s *entity.UnitStatistic) dto.UnitStatisticResponse {
	return dto.UnitStatisticResponse{
		ID:       s.UnitID,
		Name:     s.Name,
		Date:     dto.ISOTime(s.Date),
		ParentID: s.ParentID,
		Type:     string(s.Type),
		Price:    s.Price,
	}
}
