package config

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from the spellings config
// files actually use: duration strings, integer seconds, float seconds.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// UnmarshalYAML decodes a YAML scalar into a Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := parseDuration(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// UnmarshalJSON decodes a JSON string or number into a Duration.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := parseDuration(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalYAML emits the canonical duration string form.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// MarshalJSON emits the canonical duration string form.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// parseDuration converts a decoded scalar to a Duration.
//
// Accepts:
//   - string: parsed with time.ParseDuration
//   - int: interpreted as seconds
//   - int64: interpreted as seconds
//   - float64: interpreted as seconds
func parseDuration(v any) (Duration, error) {
	switch val := v.(type) {
	case string:
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", val, err)
		}
		return Duration(parsed), nil
	case int:
		return Duration(time.Duration(val) * time.Second), nil
	case int64:
		return Duration(time.Duration(val) * time.Second), nil
	case float64:
		return Duration(val * float64(time.Second)), nil
	}
	return 0, fmt.Errorf("invalid duration value %v (%T)", v, v)
}
