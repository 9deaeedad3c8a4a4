// Package wire implements the camelCase, case-insensitive-decode JSON
// codec used for all Temporal workflow and activity payloads. Every
// curator input/output struct carries
// camelCase `json:"fieldName"` tags, so Marshal always emits camelCase
// keys. encoding/json's Unmarshal already matches object keys to struct
// tags case-insensitively when no exact match is found, which is exactly
// the "accepts either case on input" requirement -- this package exists
// to make that behavior explicit and give the Temporal data converter one
// place to depend on, rather than relying on every call site to know it.
package wire

import "encoding/json"

// Marshal encodes v as camelCase JSON per its struct tags.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes data into v. Object keys are matched to struct
// fields case-insensitively (a standard encoding/json guarantee), so a
// payload using "EntryId" or "entryid" still populates the field tagged
// `json:"entryId"`.
func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
