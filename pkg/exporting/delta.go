package exporting

import (
	"SystemMonitor/pkg/utils"
)

// DeltaRecord subtracts initial from final for every numeric column present
// in both. Non-numeric columns take the final value; columns present in only
// one record are copied as is. The result carries the window bounds and its
// length in milliseconds.
func DeltaRecord(initial, final Record, durationMs int64) Record {
	if initial == nil || final == nil {
		return final
	}

	result := make(Record, len(final)+3)
	if ts, ok := initial[ColTimestamp]; ok {
		result["_delta_start_ts"] = ts
	}
	if ts, ok := final[ColTimestamp]; ok {
		result["_delta_end_ts"] = ts
		result[ColTimestamp] = ts
	}
	result["_delta_duration_ms"] = durationMs

	for key, finalVal := range final {
		if key == ColTimestamp {
			continue
		}
		initialVal, ok := initial[key]
		if !ok {
			result[key] = finalVal
			continue
		}
		a, okA := numeric(initialVal)
		b, okB := numeric(finalVal)
		if okA && okB {
			result[key] = b - a
		} else {
			result[key] = finalVal
		}
	}

	for key, initialVal := range initial {
		if _, exists := result[key]; !exists && key != ColTimestamp {
			result[key] = initialVal
		}
	}

	return result
}

// numeric accepts real numbers only; numeric-looking strings such as session
// ids are left alone.
func numeric(v interface{}) (float64, bool) {
	if _, isString := v.(string); isString {
		return 0, false
	}
	return utils.ToFloat64Ok(v)
}
