package schema

import (
	"time"

	"github.com/hamba/avro/v2"
)

const ActivityEventSchemaTextV1 = `{
	"type": "record",
	"namespace": "techstore",
	"name": "activity_event",
	"fields" : [
		{"name": "type", "type": "string"},
		{"name": "username", "type": "string"},
		{"name": "product_id", "type": "long"},
		{"name": "product_name", "type": "string"},
		{"name": "quantity", "type": "long"},
		{"name": "occurred_at", "type": {"type": "long", "logicalType": "timestamp-millis"}}
	]
}`

type ActivityEventV1 struct {
	Type        string    `avro:"type"`
	Username    string    `avro:"username"`
	ProductID   int64     `avro:"product_id"`
	ProductName string    `avro:"product_name"`
	Quantity    int       `avro:"quantity"`
	OccurredAt  time.Time `avro:"occurred_at"`
}

// ActivityEventV1Avro panics if the schema text does not parse.
func ActivityEventV1Avro() avro.Schema {
	return avro.MustParse(ActivityEventSchemaTextV1)
}
