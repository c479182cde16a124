package flows

import (
	"fmt"
	"net/http"
	"time"

	"petsitter/internal/coordinator/core"
	"petsitter/pkg/client"
	"petsitter/pkg/model"
)

const (
	RequestID = "request_id"

	overviewRequest      = "overview_request"
	overviewApplications = "overview_applications"

	maxOverviewApplications = 100
)

// ApplicationSummary is one sitter application annotated with whether
// the sitter is still free for the request window.
type ApplicationSummary struct {
	Booking         *model.Booking `json:"booking"`
	SitterAvailable bool           `json:"sitter_available"`
}

// RequestOverview gathers a care request together with every application
// it has received, so an owner can compare sitters in one call.
type RequestOverview struct{}

func (RequestOverview) Name() string { return "request_overview" }

func (RequestOverview) Steps() []*core.Step {
	return []*core.Step{
		core.NewStep("validate_input", validateOverviewInput),
		core.NewStep("fetch_request", fetchCareRequest),
		core.NewStep("fetch_applications", fetchApplications),
		core.NewStep("check_sitter_availability", checkSitterAvailability),
		core.NewStep("organize_output", organizeOverviewOutput),
	}
}

func validateOverviewInput(ctx *core.FlowContext) error {
	if core.IsMissing(ctx.ExtractString(RequestID)) {
		return core.MissingParamErr(RequestID)
	}
	return nil
}

func fetchCareRequest(ctx *core.FlowContext) error {
	requestID := ctx.ExtractString(RequestID)

	resp, err := ctx.Client.Requests.GetByID(requestID)
	if err != nil {
		return fmt.Errorf("failed to fetch care request %s: %w", requestID, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("care request fetch returned %d: %s", resp.StatusCode, client.GetErrorMessage(resp))
	}

	request, err := ctx.Client.Requests.DecodeRequest(resp)
	if err != nil {
		return err
	}

	ctx.Process[overviewRequest] = request
	return nil
}

func fetchApplications(ctx *core.FlowContext) error {
	requestID := ctx.ExtractString(RequestID)

	resp, err := ctx.Client.Bookings.Search(requestID, "", "", "", maxOverviewApplications, 0)
	if err != nil {
		return fmt.Errorf("failed to list applications for request %s: %w", requestID, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("application search returned %d: %s", resp.StatusCode, client.GetErrorMessage(resp))
	}

	applications, _, err := ctx.Client.Bookings.DecodeBookings(resp)
	if err != nil {
		return err
	}

	ctx.Process[overviewApplications] = applications
	return nil
}

// checkSitterAvailability annotates each pending application with the
// sitter's current availability for the request window. Applications in
// other states keep the availability their state implies.
func checkSitterAvailability(ctx *core.FlowContext) error {
	request := ctx.Process[overviewRequest].(*model.CareRequest)
	applications := ctx.Process[overviewApplications].([]*model.Booking)

	start := request.StartDate.Format(time.RFC3339)
	end := request.EndDate.Format(time.RFC3339)

	summaries := make([]*ApplicationSummary, 0, len(applications))
	for _, booking := range applications {
		summary := &ApplicationSummary{
			Booking:         booking,
			SitterAvailable: booking.Status.IsActive(),
		}

		if booking.Status == model.BookingPending {
			resp, err := ctx.Client.Bookings.SitterAvailability(booking.SitterID, start, end)
			if err != nil {
				return fmt.Errorf("availability check for sitter %s failed: %w", booking.SitterID, err)
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("availability check returned %d: %s", resp.StatusCode, client.GetErrorMessage(resp))
			}

			var payload struct {
				Data struct {
					Available bool `json:"available"`
				} `json:"data"`
			}
			if err := resp.DecodeJSON(&payload); err != nil {
				return err
			}
			summary.SitterAvailable = payload.Data.Available
		}

		summaries = append(summaries, summary)
	}

	ctx.Process[overviewApplications] = summaries
	return nil
}

func organizeOverviewOutput(ctx *core.FlowContext) error {
	ctx.Output["request"] = ctx.Process[overviewRequest]
	ctx.Output["applications"] = ctx.Process[overviewApplications]
	return nil
}
