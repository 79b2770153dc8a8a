package models

import (
	"encoding/json"
	"strconv"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/pkg/errors"
)

// Decimal is the exact-decimal numeric representation required by the record
// store. It keeps the textual form of the number, so a value like 12.5 never
// picks up binary floating-point noise between extraction and storage.
type Decimal string

func DecimalFromFloat(f float64) Decimal {
	return Decimal(strconv.FormatFloat(f, 'f', -1, 64))
}

func DecimalFromNumber(n json.Number) Decimal {
	return Decimal(n.String())
}

func (d Decimal) Float64() (float64, error) {
	return strconv.ParseFloat(string(d), 64)
}

func (d Decimal) String() string {
	return string(d)
}

// MarshalDynamoDBAttributeValue stores the value as a DynamoDB number.
func (d Decimal) MarshalDynamoDBAttributeValue(av *dynamodb.AttributeValue) error {
	if _, err := d.Float64(); err != nil {
		return errors.Wrapf(err, "decimal %q is not numeric", string(d))
	}
	av.N = aws.String(string(d))
	return nil
}

func (d *Decimal) UnmarshalDynamoDBAttributeValue(av *dynamodb.AttributeValue) error {
	switch {
	case av.N != nil:
		*d = Decimal(*av.N)
	case av.S != nil:
		*d = Decimal(*av.S)
	case av.NULL != nil && *av.NULL:
		*d = ""
	default:
		return errors.New("attribute value is not a number")
	}
	return nil
}

// MarshalJSON renders the value as a plain JSON number, which is what API
// clients expect for amounts.
func (d Decimal) MarshalJSON() ([]byte, error) {
	if d == "" {
		return []byte("null"), nil
	}
	if _, err := d.Float64(); err != nil {
		return json.Marshal(string(d))
	}
	return []byte(d), nil
}

func (d *Decimal) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = Decimal(s)
		return nil
	}
	*d = Decimal(n.String())
	return nil
}

// NormalizeNumbers walks an arbitrarily nested decoded JSON value and
// replaces every floating-point leaf with its Decimal form. Applied to the
// extraction payload before anything is persisted.
func NormalizeNumbers(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		normalized := make(map[string]interface{}, len(v))
		for key, item := range v {
			normalized[key] = NormalizeNumbers(item)
		}
		return normalized
	case []interface{}:
		normalized := make([]interface{}, len(v))
		for i, item := range v {
			normalized[i] = NormalizeNumbers(item)
		}
		return normalized
	case float64:
		return DecimalFromFloat(v)
	case json.Number:
		return DecimalFromNumber(v)
	default:
		return value
	}
}
