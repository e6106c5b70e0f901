package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jhoicas/catalogo-api/internal/application/dto"
)

// yamlBatch forma YAML del lote; updateDate llega como texto para aceptar cualquier RFC 3339.
type yamlBatch struct {
	Items      []dto.UnitImport `yaml:"items"`
	UpdateDate string           `yaml:"updateDate"`
}

// parseBatchFile decodifica el lote según la extensión (.yaml/.yml o JSON) y lo valida igual que la API.
// override, si no es nil, reemplaza el updateDate del archivo.
func parseBatchFile(path string, raw []byte, override *time.Time) (*dto.UnitImportRequest, error) {
	var req dto.UnitImportRequest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var y yamlBatch
		if err := yaml.Unmarshal(raw, &y); err != nil {
			return nil, fmt.Errorf("leer %s: %w", path, err)
		}
		req.Items = y.Items
		if y.UpdateDate != "" {
			t, err := dto.ParseDate(y.UpdateDate)
			if err != nil {
				return nil, fmt.Errorf("updateDate: %w", err)
			}
			d := dto.ISOTime(t)
			req.UpdateDate = &d
		}
	default:
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, fmt.Errorf("leer %s: %w", path, err)
		}
	}
	if override != nil {
		d := dto.ISOTime(override.UTC())
		req.UpdateDate = &d
	}
	if err := validator.New().Struct(req); err != nil {
		return nil, fmt.Errorf("lote inválido: %w", err)
	}
	return &req, nil
}

func parseFlagDate(s string) (time.Time, error) {
	t, err := dto.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--date: %w", err)
	}
	return t, nil
}

// renderTree imprime el subárbol con sangría, una unidad por línea.
func renderTree(w io.Writer, n *dto.UnitResponse) {
	renderNode(w, n, "", true, true)
}

func renderNode(w io.Writer, n *dto.UnitResponse, prefix string, last, root bool) {
	price := "-"
	if n.Price != nil {
		price = fmt.Sprintf("%d", *n.Price)
	}
	branch := ""
	if !root {
		branch = "├── "
		if last {
			branch = "└── "
		}
	}
	fmt.Fprintf(w, "%s%s%s [%s] %s (%s)\n", prefix, branch, n.Name, n.Type, price, n.ID)

	childPrefix := prefix
	if !root {
		if last {
			childPrefix += "    "
		} else {
			childPrefix += "│   "
		}
	}
	for i := range n.Children {
		renderNode(w, &n.Children[i], childPrefix, i == len(n.Children)-1, false)
	}
}
