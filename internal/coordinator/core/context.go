package core

import (
	"fmt"
	"time"

	"petsitter/pkg/client"
	"petsitter/pkg/logger"
)

// FlowContext carries a flow execution: Input is the caller's payload,
// Process holds intermediate step results, Output is what the caller
// gets back.
type FlowContext struct {
	Input   map[string]any
	Process map[string]any
	Output  map[string]any
	Client  *client.Client
	Log     *logger.Logger
}

func NewFlowContext(input map[string]any, client *client.Client, log *logger.Logger) *FlowContext {
	return &FlowContext{
		Input:   input,
		Process: make(map[string]any),
		Output:  make(map[string]any),
		Client:  client,
		Log:     log,
	}
}

// ExtractString returns the input value for key, or "" when absent or
// not a string.
func (ctx *FlowContext) ExtractString(key string) string {
	value, _ := ctx.Input[key].(string)
	return value
}

// ExtractTime parses the input value for key as RFC3339 or YYYY-MM-DD.
func (ctx *FlowContext) ExtractTime(key string) (time.Time, error) {
	raw, ok := ctx.Input[key].(string)
	if !ok || raw == "" {
		return time.Time{}, MissingParamErr(key)
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("param [%v] must be RFC3339 or YYYY-MM-DD, got %q", key, raw)
	}
	return parsed, nil
}

func IsMissing(str string) bool {
	return len(str) == 0
}

func MissingParamErr(paramName string) error {
	return fmt.Errorf("required param [%v] is missing", paramName)
}
