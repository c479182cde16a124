package core

import "fmt"

// Step is one unit of a flow pipeline.
type Step struct {
	Name    string
	Execute func(ctx *FlowContext) error
}

func NewStep(name string, execute func(ctx *FlowContext) error) *Step {
	return &Step{
		Name:    name,
		Execute: execute,
	}
}

// Flow is a named pipeline of steps run in order. A step error aborts
// the pipeline.
type Flow interface {
	Name() string
	Steps() []*Step
}

type Engine struct {
	flows map[string]Flow
}

func NewEngine(flows ...Flow) *Engine {
	m := map[string]Flow{}
	for _, f := range flows {
		m[f.Name()] = f
	}
	return &Engine{flows: m}
}

func (e *Engine) Run(flowName string, ctx *FlowContext) error {
	f, exists := e.flows[flowName]
	if !exists {
		return fmt.Errorf("unsupported flow: %v", flowName)
	}
	for _, step := range f.Steps() {
		if err := step.Execute(ctx); err != nil {
			return fmt.Errorf("%s step failed, pipeline errored: %s", step.Name, err)
		}
	}
	return nil
}

func (e *Engine) FlowNames() []string {
	names := make([]string, 0, len(e.flows))
	for name := range e.flows {
		names = append(names, name)
	}
	return names
}
