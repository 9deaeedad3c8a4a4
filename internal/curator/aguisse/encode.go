package aguisse

import "encoding/json"

// marshalWithType flattens payload's fields alongside a "type" field,
// matching the AG-UI wire shape where every event is a single JSON object
// discriminated by "type" rather than a {"type":..., "data":...} envelope.
func marshalWithType(t EventType, payload any) ([]byte, error) {
	fields, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(fields, &merged); err != nil {
		return nil, err
	}
	typeJSON, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	merged["type"] = typeJSON
	return json.Marshal(merged)
}
