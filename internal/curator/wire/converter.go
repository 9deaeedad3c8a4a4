package wire

import (
	commonpb "go.temporal.io/api/common/v1"
	"go.temporal.io/sdk/converter"
)

// curatorJSONPayloadConverter wraps Temporal's JSON payload converter,
// substituting this package's case-insensitive Unmarshal for payload
// decoding. Encoding is left to the embedded converter since our structs
// already emit camelCase via their json tags.
//
// Grounded on the composite-converter pattern in
// runtime/agent/engine/temporal/data_converter.go, simplified: that
// converter rehydrates concrete tool-result types behind `any`
// fields, a problem this domain doesn't have (every curator payload is a
// concrete struct), so only the decode path is overridden.
type curatorJSONPayloadConverter struct {
	*converter.JSONPayloadConverter
}

func (c *curatorJSONPayloadConverter) FromPayload(p *commonpb.Payload, valuePtr any) error {
	return Unmarshal(p.GetData(), valuePtr)
}

// NewDataConverter returns the Temporal data converter used by both the
// worker and agent clients, so that every workflow/activity payload in
// this module round-trips through the camelCase/case-insensitive codec.
func NewDataConverter() converter.DataConverter {
	return converter.NewCompositeDataConverter(
		converter.NewNilPayloadConverter(),
		converter.NewByteSlicePayloadConverter(),
		converter.NewProtoPayloadConverter(),
		converter.NewProtoJSONPayloadConverter(),
		&curatorJSONPayloadConverter{
			JSONPayloadConverter: converter.NewJSONPayloadConverter(),
		},
	)
}
