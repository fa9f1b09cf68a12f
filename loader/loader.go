// Package loader parses the YAML tabular task description from
// SPEC_FULL.md §6 and deploys it onto a host-role rtlink.Link.
package loader

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/atsika/rtlink"
	"gopkg.in/yaml.v3"
)

// TaskSpec is one entry of the tasks mapping.
type TaskSpec struct {
	Driver   string                 `yaml:"driver"`
	Stream   bool                   `yaml:"stream"`
	Rate     uint16                 `yaml:"rate"`
	NOutputs int                    `yaml:"n_outputs"`
	Inputs   []string               `yaml:"inputs"`
	Data     map[string]interface{} `yaml:"data"`
}

// Document is the top-level file shape:
//
//	tasks:
//	  const_gate:
//	    driver: constant
//	    data: {value: 1.0}
//	  sw:
//	    driver: switch
//	    stream: true
//	    rate: 100
//	    n_outputs: 2
//	    inputs: [const_gate.0, const_gate.0, const_gate.0]
//
// Node ids are assigned in file order, not alphabetically — yaml.v3's
// mapping nodes preserve source order, which UnmarshalYAML below reads
// off the raw yaml.Node tree instead of decoding straight into a Go
// map (whose iteration order Go deliberately randomizes).
type Document struct {
	Tasks map[string]TaskSpec `yaml:"-"`
	Order []string            `yaml:"-"`
}

func (d *Document) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Tasks yaml.Node `yaml:"tasks"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.Tasks.Kind != yaml.MappingNode {
		return fmt.Errorf("loader: tasks must be a mapping")
	}

	d.Tasks = make(map[string]TaskSpec, len(raw.Tasks.Content)/2)
	for i := 0; i+1 < len(raw.Tasks.Content); i += 2 {
		name := raw.Tasks.Content[i].Value
		var spec TaskSpec
		if err := raw.Tasks.Content[i+1].Decode(&spec); err != nil {
			return fmt.Errorf("loader: task %q: %w", name, err)
		}
		d.Tasks[name] = spec
		d.Order = append(d.Order, name)
	}
	return nil
}

// Load reads path and deploys every declared task onto host.
func Load(path string, host *rtlink.Link) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("loader: %w", err)
	}
	return LoadBytes(b, host)
}

// LoadBytes parses raw YAML bytes and deploys every declared task onto
// host, assigning node ids in file order and resolving "name.index"
// input references against that assignment.
func LoadBytes(raw []byte, host *rtlink.Link) error {
	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("loader: %w", err)
	}

	ids := make(map[string]int, len(doc.Order))
	for i, name := range doc.Order {
		ids[name] = i
	}

	for _, name := range doc.Order {
		spec := doc.Tasks[name]

		driverID, err := driverIDFor(spec.Driver)
		if err != nil {
			return fmt.Errorf("loader: task %q: %w", name, err)
		}

		task, err := buildTask(driverID, spec)
		if err != nil {
			return fmt.Errorf("loader: task %q: %w", name, err)
		}

		inputs := make([]rtlink.InputRef, 0, len(spec.Inputs))
		for _, ref := range spec.Inputs {
			parsed, err := resolveInput(ref, ids)
			if err != nil {
				return fmt.Errorf("loader: task %q: %w", name, err)
			}
			inputs = append(inputs, parsed)
		}

		if err := host.InitNode(ids[name], driverID, spec.Stream, spec.Rate, inputs, task); err != nil {
			return fmt.Errorf("loader: task %q: %w", name, err)
		}
	}
	return nil
}

func driverIDFor(name string) (byte, error) {
	switch name {
	case "constant":
		return rtlink.DriverConstant, nil
	case "switch":
		return rtlink.DriverSwitch, nil
	default:
		return 0, fmt.Errorf("%w: %s", rtlink.ErrUnknownDriver, name)
	}
}

func buildTask(driverID byte, spec TaskSpec) (rtlink.Task, error) {
	switch driverID {
	case rtlink.DriverConstant:
		v, _ := spec.Data["value"].(float64)
		return &rtlink.ConstantTask{Value: float32(v)}, nil
	case rtlink.DriverSwitch:
		return &rtlink.SwitchTask{NOutputs: spec.NOutputs}, nil
	default:
		return nil, rtlink.ErrUnknownDriver
	}
}

func resolveInput(ref string, ids map[string]int) (rtlink.InputRef, error) {
	dot := strings.LastIndexByte(ref, '.')
	if dot < 0 {
		return rtlink.InputRef{}, fmt.Errorf("malformed input reference %q", ref)
	}
	name, indexStr := ref[:dot], ref[dot+1:]
	index, err := strconv.Atoi(indexStr)
	if err != nil {
		return rtlink.InputRef{}, fmt.Errorf("malformed input reference %q: %w", ref, err)
	}
	id, ok := ids[name]
	if !ok {
		return rtlink.InputRef{}, fmt.Errorf("%w: %s", rtlink.ErrNodeUnknown, name)
	}
	return rtlink.InputRef{NodeID: id, OutputIndex: index}, nil
}
