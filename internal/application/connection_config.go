package application

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// ParseConnectionConfig turns the optional params query value into a flat
// key/value mapping. Both "a=1&b=2" and `{"a":"1","b":2}` are accepted.
// A malformed value yields an empty mapping.
func ParseConnectionConfig(raw string) map[string]string {
	config := map[string]string{}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return config
	}

	if strings.HasPrefix(raw, "{") {
		values, err := decodeJSONObject(raw)
		if err != nil {
			return config
		}
		for key, value := range values {
			switch v := value.(type) {
			case string:
				config[key] = v
			case nil:
			default:
				config[key] = fmt.Sprint(v)
			}
		}
		return config
	}

	values, err := url.ParseQuery(raw)
	if err != nil {
		return config
	}
	for key := range values {
		if key == "" {
			continue
		}
		config[key] = values.Get(key)
	}
	return config
}

// decodeJSONObject keeps numbers as their literal text
func decodeJSONObject(raw string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var values map[string]any
	if err := dec.Decode(&values); err != nil {
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after params object")
	}
	return values, nil
}
