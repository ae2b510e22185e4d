package dedup

import (
	"encoding/json"
	"fmt"
)

// Side selects which half of a pair is authoritative for a field.
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// Field is a mergeable summary field.
type Field string

const (
	FieldName      Field = "name"
	FieldType      Field = "type"
	FieldStartTime Field = "startTime"
	FieldDuration  Field = "duration"
	FieldDistance  Field = "distance"
	FieldCalories  Field = "calories"
	FieldHeartRate Field = "heartRate"
)

// fieldJSONKeys maps each mergeable field to its key in the raw summary
// document.
var fieldJSONKeys = map[Field]string{
	FieldName:      "activityName",
	FieldType:      "activityType",
	FieldStartTime: "startTimeLocal",
	FieldDuration:  "duration",
	FieldDistance:  "distance",
	FieldCalories:  "calories",
	FieldHeartRate: "averageHR",
}

// Decision chooses the authoritative side per field. Fields not present
// keep the survivor's value.
type Decision map[Field]Side

// Validate rejects decisions naming unknown fields or sides.
func (d Decision) Validate() error {
	for field, side := range d {
		if _, ok := fieldJSONKeys[field]; !ok {
			return fmt.Errorf("unknown merge field %q", field)
		}
		if side != SideA && side != SideB {
			return fmt.Errorf("merge field %q has invalid side %q", field, side)
		}
	}
	return nil
}

// ApplyDecision returns a copy of the survivor's summary document with the
// decision applied. survivorSide names which half of the pair the survivor
// is; for fields decided toward the other side, the loser document's value
// is copied in. The nested activity type object is shallow-overlaid so
// sub-fields only the survivor carries are preserved. Applying the same
// decision twice yields the same document as applying it once.
func ApplyDecision(survivorDoc, loserDoc []byte, decision Decision, survivorSide Side) ([]byte, error) {
	if err := decision.Validate(); err != nil {
		return nil, err
	}

	var survivor, loser map[string]any
	if err := json.Unmarshal(survivorDoc, &survivor); err != nil {
		return nil, fmt.Errorf("decoding survivor document: %w", err)
	}
	if err := json.Unmarshal(loserDoc, &loser); err != nil {
		return nil, fmt.Errorf("decoding loser document: %w", err)
	}

	for field, side := range decision {
		if side == survivorSide {
			continue // survivor already holds the chosen value
		}

		key := fieldJSONKeys[field]
		value, ok := loser[key]
		if !ok {
			continue // chosen side has nothing to contribute
		}

		if field == FieldType {
			survivor[key] = overlayObject(survivor[key], value)
			continue
		}
		survivor[key] = value
	}

	out, err := json.Marshal(survivor)
	if err != nil {
		return nil, fmt.Errorf("encoding merged document: %w", err)
	}
	return out, nil
}

// overlayObject shallow-merges src's keys over dst when both are objects.
// Otherwise src replaces dst wholesale.
func overlayObject(dst, src any) any {
	dstMap, dstOK := dst.(map[string]any)
	srcMap, srcOK := src.(map[string]any)
	if !dstOK || !srcOK {
		return src
	}
	merged := make(map[string]any, len(dstMap)+len(srcMap))
	for k, v := range dstMap {
		merged[k] = v
	}
	for k, v := range srcMap {
		merged[k] = v
	}
	return merged
}
