package zones

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Object is a decoded JSON request body. Numbers are kept as json.Number
// so integers survive decoding intact.
type Object map[string]any

func (o Object) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// Parser turns raw request bodies into Objects.
type Parser struct {
	logger *zap.Logger
}

func NewParser(logger *zap.Logger) *Parser {
	return &Parser{logger: logger}
}

// Parse decodes body as a single JSON object.
func (p *Parser) Parse(body []byte) (Object, error) {
	if len(body) == 0 {
		p.logger.Warn("body of request is empty")
		return nil, ErrEmptyBody
	}

	p.logger.Debug("request body", zap.ByteString("body", body))

	data, err := decodeObject(body)
	if err != nil {
		p.logger.Warn("could not parse request body", zap.Error(err), zap.ByteString("body", body))
		return nil, fmt.Errorf("%w: %s", ErrMalformedBody, body)
	}

	return data, nil
}

func decodeObject(body []byte) (Object, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var data Object
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	if data == nil {
		return nil, errors.New("expected a JSON object")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after JSON object")
	}

	return data, nil
}
