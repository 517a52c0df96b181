// Package multiscale resolves NGFF "multiscales" attributes into a
// resolution-pyramid descriptor and an axis-order map.
package multiscale

import (
	"strings"

	"github.com/TuSKan/ngff-pixelbuffer/pberrors"
)

// Axis names the five canonical dimensions this engine understands.
type Axis int

const (
	AxisT Axis = iota
	AxisC
	AxisZ
	AxisY
	AxisX
)

func (a Axis) String() string {
	switch a {
	case AxisT:
		return "t"
	case AxisC:
		return "c"
	case AxisZ:
		return "z"
	case AxisY:
		return "y"
	case AxisX:
		return "x"
	default:
		return "?"
	}
}

// AxisMap maps each axis this array actually has onto its index in the
// array's native shape/chunks vectors. Axes absent from the map have an
// implicit size of 1.
type AxisMap map[Axis]int

// Has reports whether the array has axis a.
func (m AxisMap) Has(a Axis) bool { _, ok := m[a]; return ok }

// defaultAxisMap is used when "axes" is absent from multiscales[0]:
// T=0, C=1, Z=2, Y=3, X=4.
func defaultAxisMap() AxisMap {
	return AxisMap{AxisT: 0, AxisC: 1, AxisZ: 2, AxisY: 3, AxisX: 4}
}

// Dataset is one entry of multiscales[0].datasets: a resolution level's
// relative path beneath the multiscale root group.
type Dataset struct {
	Path string
}

// Descriptor is the resolved multiscale pyramid: resolution levels in
// on-disk order (entry 0 is the array referenced by datasets[0], which
// package pixelbuffer treats as the full-resolution level) plus the
// shared axis map.
type Descriptor struct {
	Datasets []Dataset
	Axes     AxisMap
}

// Resolve builds a Descriptor from a multiscale root group's parsed
// ".zattrs" (already unwrapped of any top-level "ome" key). Only
// multiscales[0] is consulted.
func Resolve(attrs map[string]any) (Descriptor, error) {
	raw, ok := attrs["multiscales"]
	if !ok {
		return Descriptor{}, pberrors.New(pberrors.InvalidMultiscales, "no \"multiscales\" key in root attributes")
	}
	list, ok := raw.([]any)
	if !ok || len(list) == 0 {
		return Descriptor{}, pberrors.New(pberrors.InvalidMultiscales, "\"multiscales\" is not a non-empty array")
	}
	entry, ok := list[0].(map[string]any)
	if !ok {
		return Descriptor{}, pberrors.New(pberrors.InvalidMultiscales, "multiscales[0] is not an object")
	}

	datasets, err := parseDatasets(entry)
	if err != nil {
		return Descriptor{}, err
	}

	axes, err := parseAxes(entry)
	if err != nil {
		return Descriptor{}, err
	}

	return Descriptor{Datasets: datasets, Axes: axes}, nil
}

func parseDatasets(entry map[string]any) ([]Dataset, error) {
	raw, ok := entry["datasets"]
	if !ok {
		return nil, pberrors.New(pberrors.InvalidMultiscales, "multiscales[0] has no \"datasets\"")
	}
	list, ok := raw.([]any)
	if !ok || len(list) == 0 {
		return nil, pberrors.New(pberrors.InvalidMultiscales, "multiscales[0].datasets is not a non-empty array")
	}
	out := make([]Dataset, 0, len(list))
	for _, d := range list {
		obj, ok := d.(map[string]any)
		if !ok {
			return nil, pberrors.New(pberrors.InvalidMultiscales, "dataset entry is not an object")
		}
		path, ok := obj["path"].(string)
		if !ok {
			return nil, pberrors.New(pberrors.InvalidMultiscales, "dataset entry has no string \"path\"")
		}
		out = append(out, Dataset{Path: path})
	}
	return out, nil
}

func parseAxes(entry map[string]any) (AxisMap, error) {
	raw, ok := entry["axes"]
	if !ok {
		return defaultAxisMap(), nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, pberrors.New(pberrors.InvalidMultiscales, "multiscales[0].axes is not an array")
	}

	axes := AxisMap{}
	for i, a := range list {
		obj, ok := a.(map[string]any)
		if !ok {
			return nil, pberrors.New(pberrors.InvalidMultiscales, "axes entry is not an object")
		}
		name, ok := obj["name"].(string)
		if !ok {
			return nil, pberrors.New(pberrors.InvalidMultiscales, "axes entry has no string \"name\"")
		}
		axis, err := parseAxisName(name)
		if err != nil {
			return nil, err
		}
		axes[axis] = i
	}

	if !axes.Has(AxisX) || !axes.Has(AxisY) {
		return nil, pberrors.New(pberrors.InvalidMultiscales, "axes must include both X and Y")
	}
	return axes, nil
}

func parseAxisName(name string) (Axis, error) {
	switch strings.ToLower(name) {
	case "t":
		return AxisT, nil
	case "c":
		return AxisC, nil
	case "z":
		return AxisZ, nil
	case "y":
		return AxisY, nil
	case "x":
		return AxisX, nil
	default:
		return 0, pberrors.New(pberrors.InvalidMultiscales, "unknown axis name %q", name)
	}
}
