package llm

import (
	"errors"
	"strings"
)

// ErrNoJSONObject is returned when a reply holds no {...} span.
var ErrNoJSONObject = errors.New("no JSON object in model reply")

// ExtractJSONObject returns the span from the first '{' to the last '}'.
// Models wrap JSON in prose or markdown fences often enough that the reply is
// never parsed whole.
func ExtractJSONObject(reply string) (string, error) {
	start := strings.IndexByte(reply, '{')
	end := strings.LastIndexByte(reply, '}')
	if start < 0 || end < start {
		return "", ErrNoJSONObject
	}
	return reply[start : end+1], nil
}

// Parse extracts, normalizes and validates a raw model reply.
func Parse(reply string) (Result, error) {
	obj, err := ExtractJSONObject(reply)
	if err != nil {
		return Result{}, err
	}
	res, err := Normalize([]byte(obj))
	if err != nil {
		return Result{}, err
	}
	if err := Validate(res); err != nil {
		return Result{}, err
	}
	return res, nil
}
