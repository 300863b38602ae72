package corrector

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ParseEntities decodes the model's entity JSON into a category → values
// mapping. Unknown categories are preserved. Fenced output is
// tolerated; anything that is not a JSON object of string arrays is
// malformed.
func ParseEntities(raw string) (map[string][]string, error) {
	raw = stripFences(raw)

	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("%w: invalid json", ErrMalformed)
	}

	parsed := gjson.Parse(raw)

	if !parsed.IsObject() {
		return nil, fmt.Errorf("%w: expected a json object", ErrMalformed)
	}

	entities := map[string][]string{}

	var parseErr error

	parsed.ForEach(func(key, value gjson.Result) bool {
		if !value.IsArray() {
			parseErr = fmt.Errorf("%w: category %q is not a list", ErrMalformed, key.String())
			return false
		}

		values := []string{}

		for _, item := range value.Array() {
			if item.Type != gjson.String {
				parseErr = fmt.Errorf("%w: category %q contains a non-string value", ErrMalformed, key.String())
				return false
			}

			values = append(values, item.String())
		}

		entities[key.String()] = values
		return true
	})

	if parseErr != nil {
		return nil, parseErr
	}

	return entities, nil
}

func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)

	if after, ok := strings.CutPrefix(raw, "```json"); ok {
		raw = after
	} else if after, ok := strings.CutPrefix(raw, "```"); ok {
		raw = after
	}

	raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")

	return strings.TrimSpace(raw)
}
