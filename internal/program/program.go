// Package program decodes `<program.json>` (SPEC_FULL.md §6.5): a minimal
// JSON encoding of an ir.Project (module name -> interface -> label-indexed
// instructions) that cmd/ahorn and tests use to construct a module without
// a front-end parser. It is not spec.md §6.2's XML test-suite schema —
// that one is test-suite output, not program input — and it is explicitly
// a stand-in for the out-of-scope front-end, not a language of its own.
package program

import (
	"encoding/json"
	"fmt"

	"github.com/sunholo/ahorn/internal/errors"
	"github.com/sunholo/ahorn/internal/ir"
)

// Document is the top-level JSON shape: a named set of modules plus which
// one is the root program.
type Document struct {
	Main    string                `json:"main"`
	Modules map[string]*moduleDTO `json:"modules"`
}

type moduleDTO struct {
	Kind         string                     `json:"kind"`
	Entry        int                        `json:"entry"`
	Exit         int                        `json:"exit"`
	Vars         []varDTO                   `json:"vars"`
	Instructions map[string]json.RawMessage `json:"instructions"`
}

type varDTO struct {
	Name    string  `json:"name"`
	Storage string  `json:"storage"`
	Type    typeDTO `json:"type"`
}

type typeDTO struct {
	Kind string   `json:"kind"`
	Tags []string `json:"tags,omitempty"`
	Name string   `json:"name,omitempty"`
}

// Decode parses data into a name -> *ir.Module map plus the designated
// main module's name, ready for passes.LowerProject.
func Decode(data []byte) (map[string]*ir.Module, string, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, "", errors.InvalidIR("program", "malformed program.json: %s", err)
	}
	if doc.Main == "" {
		return nil, "", errors.InvalidIR("program", "program.json has no \"main\" module name")
	}

	modules := make(map[string]*ir.Module, len(doc.Modules))
	for name, m := range doc.Modules {
		mod, err := decodeModule(name, m)
		if err != nil {
			return nil, "", err
		}
		modules[name] = mod
	}
	if _, ok := modules[doc.Main]; !ok {
		return nil, "", errors.InvalidIR("program", "main module %q not found among decoded modules", doc.Main)
	}
	return modules, doc.Main, nil
}

func decodeModule(name string, dto *moduleDTO) (*ir.Module, error) {
	kind, err := decodeModuleKind(dto.Kind)
	if err != nil {
		return nil, err
	}
	m := ir.NewModule(kind, name)
	m.Entry, m.Exit = ir.Label(dto.Entry), ir.Label(dto.Exit)

	for _, v := range dto.Vars {
		storage, err := decodeStorage(v.Storage)
		if err != nil {
			return nil, err
		}
		ty, err := decodeType(v.Type)
		if err != nil {
			return nil, err
		}
		m.Iface.Add(&ir.Variable{Name: v.Name, Type: ty, Storage: storage})
	}

	for labelStr, raw := range dto.Instructions {
		var label int
		if _, err := fmt.Sscanf(labelStr, "%d", &label); err != nil {
			return nil, errors.InvalidIR("program", "module %q: non-numeric instruction label %q", name, labelStr)
		}
		instr, err := decodeInstr(raw)
		if err != nil {
			return nil, fmt.Errorf("module %q, label %d: %w", name, label, err)
		}
		m.Instructions[ir.Label(label)] = instr
	}
	return m, nil
}

func decodeModuleKind(s string) (ir.ModuleKind, error) {
	switch s {
	case "PROGRAM":
		return ir.ProgramKind, nil
	case "FUNCTION_BLOCK":
		return ir.FunctionBlockKind, nil
	case "FUNCTION":
		return ir.FunctionKind, nil
	default:
		return 0, errors.NotImplemented("program", "unknown module kind %q", s)
	}
}

func decodeStorage(s string) (ir.StorageType, error) {
	switch s {
	case "INPUT":
		return ir.Input, nil
	case "OUTPUT":
		return ir.Output, nil
	case "LOCAL":
		return ir.Local, nil
	case "TEMP", "TEMPORARY":
		return ir.Temporary, nil
	default:
		return 0, errors.NotImplemented("program", "unknown storage kind %q", s)
	}
}

func decodeType(dto typeDTO) (ir.DataType, error) {
	switch dto.Kind {
	case "INT":
		return ir.Elem(ir.Int), nil
	case "REAL":
		return ir.Elem(ir.Real), nil
	case "BOOL":
		return ir.Elem(ir.Bool), nil
	case "TIME":
		return ir.Elem(ir.Time), nil
	case "SAFEBOOL":
		return ir.SafeBool(), nil
	case "ENUM":
		return ir.Enumerated(dto.Name, dto.Tags), nil
	case "DERIVED":
		return ir.Derived(dto.Name), nil
	default:
		return ir.DataType{}, errors.NotImplemented("program", "unknown type kind %q", dto.Kind)
	}
}
