package zones

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/leozw/pdns-rest/internal/core"
)

// recordField copies one key of a record spec onto a Record. Keys absent
// from a record spec are never touched, so the column stays NULL.
type recordField struct {
	key string
	set func(r *core.Record, v any) error
}

var recordFields = []recordField{
	{"name", func(r *core.Record, v any) error {
		s, err := stringValue(v, core.MaxRecordNameLength)
		r.Name = s
		return err
	}},
	{"type", func(r *core.Record, v any) error {
		s, err := stringValue(v, core.MaxRecordTypeLength)
		r.Type = s
		return err
	}},
	{"content", func(r *core.Record, v any) error {
		if v == nil {
			r.Content = nil
			return nil
		}
		s, err := stringValue(v, core.MaxRecordContentLength)
		r.Content = &s
		return err
	}},
	{"ttl", func(r *core.Record, v any) error {
		n, err := intValue(v)
		r.TTL = n
		return err
	}},
	{"prio", func(r *core.Record, v any) error {
		n, err := intValue(v)
		r.Prio = n
		return err
	}},
}

// newRecord builds an unsaved record for domain from one record spec.
func newRecord(domain *core.Domain, spec Object) (*core.Record, error) {
	if spec["name"] == nil || spec["type"] == nil {
		return nil, ErrMissingRecordFields
	}

	record := &core.Record{DomainID: domain.ID}
	for _, f := range recordFields {
		v, ok := spec[f.key]
		if !ok {
			continue
		}
		if err := f.set(record, v); err != nil {
			return nil, fmt.Errorf("%w: %s %v", ErrInvalidRecordField, f.key, err)
		}
	}

	return record, nil
}

// recordSpecs returns the record specs carried by data: the "records" list
// when present, otherwise data itself.
func recordSpecs(data Object) ([]Object, error) {
	raw, ok := data["records"]
	if !ok {
		return []Object{data}, nil
	}

	list, ok := raw.([]any)
	if !ok {
		return nil, ErrInvalidRecords
	}

	specs := make([]Object, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, ErrInvalidRecords
		}
		specs = append(specs, Object(m))
	}

	return specs, nil
}

func stringValue(v any, limit int) (string, error) {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case json.Number:
		s = t.String()
	default:
		return "", errors.New("must be a string")
	}
	if utf8.RuneCountInString(s) > limit {
		return "", fmt.Errorf("exceeds %d characters", limit)
	}
	return s, nil
}

func intValue(v any) (*int, error) {
	var n int64
	switch t := v.(type) {
	case nil:
		return nil, nil
	case json.Number:
		i, err := t.Int64()
		if err != nil {
			f, ferr := t.Float64()
			if ferr != nil || f != math.Trunc(f) {
				return nil, errors.New("must be an integer")
			}
			if f < math.MinInt32 || f > math.MaxInt32 {
				return nil, errors.New("out of range")
			}
			i = int64(f)
		}
		n = i
	case string:
		i, err := strconv.ParseInt(t, 10, 32)
		if err != nil {
			return nil, errors.New("must be an integer")
		}
		n = i
	default:
		return nil, errors.New("must be an integer")
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return nil, errors.New("out of range")
	}

	i := int(n)
	return &i, nil
}
