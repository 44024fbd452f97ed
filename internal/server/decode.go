package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/piwi3910/matcalc/internal/model"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// Wire aliases accepted on requests, mapped to their canonical names.
// Responses only ever use the canonical names.
var (
	rodAliases = map[string]string{
		"scrapPrice": "scrapUnitPrice",
	}
	plateAliases = map[string]string{
		"thickness":    "plateThickness",
		"width_plate":  "plateWidth",
		"length_plate": "plateLength",
	}
	scrapAliases = map[string]string{
		"materialCost":  "totalCost",
		"costPerPiece":  "unitCost",
		"scrapPrice":    "scrapUnitPrice",
		"stockWeightKg": "totalWeight",
	}
)

// readObject reads the request body as a JSON object and renames alias
// keys. When both an alias and its canonical key are present, the
// canonical key wins.
func readObject(c *gin.Context, aliases ...map[string]string) (map[string]json.RawMessage, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes+1))
	if err != nil {
		return nil, model.InvalidInput("body", "cannot read request body: %v", err)
	}
	if len(body) > maxBodyBytes {
		return nil, model.InvalidInput("body", "request body exceeds %d bytes", maxBodyBytes)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, model.InvalidInput("body", "request body is required")
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, decodeError(err)
	}
	for _, set := range aliases {
		for alias, canonical := range set {
			v, ok := raw[alias]
			if !ok {
				continue
			}
			if _, exists := raw[canonical]; !exists {
				raw[canonical] = v
			}
			delete(raw, alias)
		}
	}
	return raw, nil
}

// decodeObject decodes an alias-resolved object into dst.
func decodeObject(raw map[string]json.RawMessage, dst any) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return decodeError(err)
	}
	return nil
}

// bindJSON reads, alias-resolves and decodes the request body into dst.
func bindJSON(c *gin.Context, dst any, aliases ...map[string]string) error {
	raw, err := readObject(c, aliases...)
	if err != nil {
		return err
	}
	return decodeObject(raw, dst)
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return model.InvalidInput(field, "expected %s, got %s", typeErr.Type, typeErr.Value)
	}
	return model.InvalidInput("body", "malformed JSON: %v", err)
}
