package service

import (
	"fmt"
	"sort"

	"petsitter/internal/coordinator/core"
	"petsitter/internal/coordinator/flows"
	"petsitter/pkg/client"
	"petsitter/pkg/logger"
)

type CoordinatorService struct {
	engine *core.Engine
	client *client.Client
	log    *logger.Logger
}

func NewCoordinatorService(client *client.Client, log *logger.Logger) *CoordinatorService {
	return &CoordinatorService{
		engine: core.NewEngine(
			flows.AcceptApplication{},
			flows.SitterCalendar{},
			flows.RequestOverview{},
		),
		client: client,
		log:    log,
	}
}

func (s *CoordinatorService) ExecuteFlow(flowName string, input map[string]any) (map[string]any, error) {
	ctx := core.NewFlowContext(input, s.client, s.log)
	if err := s.engine.Run(flowName, ctx); err != nil {
		return nil, fmt.Errorf("flow execution failed: %v", err)
	}
	return ctx.Output, nil
}

func (s *CoordinatorService) AvailableFlows() []string {
	names := s.engine.FlowNames()
	sort.Strings(names)
	return names
}
