package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/tileboard/internal/state"
)

// Measurement is the InfluxDB measurement every data point is written to.
const Measurement = "datapoint"

// Field type tags. A data point can carry either over its lifetime, so the
// tag keeps numeric and boolean series apart.
const (
	TypeNumber = "number"
	TypeBool   = "bool"
)

// Observe writes one value change. Strings and structured values are
// skipped; only numbers and booleans are meaningful as time series.
func (c *Client) Observe(id string, st state.DataPointState) {
	if !c.IsConnected() {
		return
	}
	point, ok := c.pointFor(id, st)
	if !ok {
		return
	}
	c.writeAPI.WritePoint(point)
}

// pointFor converts a value change into a point. ok is false for values
// that have no numeric reading.
func (c *Client) pointFor(id string, st state.DataPointState) (*write.Point, bool) {
	value, typ, ok := numericValue(st.Value)
	if !ok {
		return nil, false
	}

	tags := map[string]string{
		"id":   id,
		"type": typ,
	}
	if c.site != "" {
		tags["site"] = c.site
	}

	ts := time.Now()
	if st.Timestamp > 0 {
		ts = time.UnixMilli(st.Timestamp)
	}

	return write.NewPoint(c.measurement, tags, map[string]any{"value": value}, ts), true
}

// numericValue maps a dynamically typed value to a float reading.
// Booleans become 1 or 0.
func numericValue(v any) (float64, string, bool) {
	switch x := v.(type) {
	case bool:
		if x {
			return 1, TypeBool, true
		}
		return 0, TypeBool, true
	case float64:
		return x, TypeNumber, true
	case float32:
		return float64(x), TypeNumber, true
	case int:
		return float64(x), TypeNumber, true
	case int64:
		return float64(x), TypeNumber, true
	case int32:
		return float64(x), TypeNumber, true
	default:
		return 0, "", false
	}
}
