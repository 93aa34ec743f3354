package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SetParam assigns value to the scalar parameter named by path. Paths are
// "dt", "duration", "mass", or an indexed field such as "forces[0].k",
// "sources[1].rate" or "sinks[0].offset". A sink offset moves the plane
// point along its normal.
func (c *Config) SetParam(path string, value float64) error {
	switch path {
	case "dt":
		c.Dt = value
		return nil
	case "duration":
		c.Duration = value
		return nil
	case "mass":
		c.Ensemble.Mass = value
		return nil
	}

	list, idx, field, err := splitParam(path)
	if err != nil {
		return err
	}

	switch list {
	case "forces":
		if idx >= len(c.Forces) {
			return fmt.Errorf("param %s: index out of range", path)
		}
		f := &c.Forces[idx]
		switch field {
		case "k":
			f.K = value
		case "gamma":
			f.Gamma = value
		default:
			return fmt.Errorf("param %s: unknown force field %q", path, field)
		}
	case "sources":
		if idx >= len(c.Sources) {
			return fmt.Errorf("param %s: index out of range", path)
		}
		s := &c.Sources[idx]
		switch field {
		case "rate":
			s.Rate = value
		case "spread":
			s.Spread = value
		case "count":
			s.Count = int(value)
		case "mass":
			s.Mass = value
		default:
			return fmt.Errorf("param %s: unknown source field %q", path, field)
		}
	case "sinks":
		if idx >= len(c.Sinks) {
			return fmt.Errorf("param %s: index out of range", path)
		}
		if field != "offset" {
			return fmt.Errorf("param %s: unknown sink field %q", path, field)
		}
		s := &c.Sinks[idx]
		var norm float64
		for _, n := range s.Normal {
			norm += n * n
		}
		if norm == 0 {
			return fmt.Errorf("param %s: sink normal is zero", path)
		}
		for i := range s.Point {
			s.Point[i] += value * s.Normal[i] / math.Sqrt(norm)
		}
	default:
		return fmt.Errorf("param %s: unknown parameter", path)
	}
	return nil
}

func splitParam(path string) (list string, idx int, field string, err error) {
	head, field, ok := strings.Cut(path, ".")
	if !ok {
		return "", 0, "", fmt.Errorf("param %s: unknown parameter", path)
	}
	list, rest, ok := strings.Cut(head, "[")
	if !ok || !strings.HasSuffix(rest, "]") {
		return "", 0, "", fmt.Errorf("param %s: want list[index].field", path)
	}
	idx, err = strconv.Atoi(strings.TrimSuffix(rest, "]"))
	if err != nil || idx < 0 {
		return "", 0, "", fmt.Errorf("param %s: bad index", path)
	}
	return list, idx, field, nil
}
