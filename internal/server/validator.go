package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

const schemaBaseURL = "https://rockpaperscissors.local/schemas/"

// ErrUnknownMessageType is returned for a well-formed message of a type the
// server does not accept
var ErrUnknownMessageType = errors.New("unknown message type")

// Validator checks client messages against the embedded JSON schemas
type Validator struct {
	envelope *jsonschema.Schema
	data     map[MessageType]*jsonschema.Schema
}

// NewValidator compiles the embedded schemas
func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	compile := func(name string) (*jsonschema.Schema, error) {
		raw, err := schemaFiles.ReadFile("schemas/" + name + ".json")
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", name, err)
		}
		url := schemaBaseURL + name + ".json"
		if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("failed to add schema %s: %w", name, err)
		}
		schema, err := compiler.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
		}
		return schema, nil
	}

	envelope, err := compile("message")
	if err != nil {
		return nil, err
	}

	v := &Validator{
		envelope: envelope,
		data:     make(map[MessageType]*jsonschema.Schema),
	}
	for _, msgType := range []MessageType{MessageTypePick, MessageTypeReset} {
		schema, err := compile(msgType.String())
		if err != nil {
			return nil, err
		}
		v.data[msgType] = schema
	}
	return v, nil
}

// ValidateMessage checks a raw client message and decodes it. Unknown types
// wrap ErrUnknownMessageType; everything else is a malformed message.
func (v *Validator) ValidateMessage(raw []byte) (*Message, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := v.envelope.Validate(doc); err != nil {
		return nil, fmt.Errorf("invalid message: %w", err)
	}

	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("invalid message: %w", err)
	}

	schema, ok := v.data[msg.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMessageType, msg.Type)
	}

	var data any
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return nil, fmt.Errorf("invalid %s data: %w", msg.Type, err)
		}
	}
	if err := schema.Validate(data); err != nil {
		return nil, fmt.Errorf("invalid %s data: %w", msg.Type, err)
	}
	return &msg, nil
}

var messageValidator = mustValidator()

func mustValidator() *Validator {
	v, err := NewValidator()
	if err != nil {
		panic(err)
	}
	return v
}
