package flows

import (
	"fmt"
	"net/http"
	"sync"

	"petsitter/internal/coordinator/core"
	"petsitter/pkg/client"
	"petsitter/pkg/model"
)

const (
	BookingID = "booking_id"
	ActorID   = "actor_id"

	acceptedBooking     = "accepted_booking"
	pendingApplications = "pending_applications"

	rejectionReason        = "Request was fulfilled by another sitter"
	maxApplicationsPerScan = 100
)

// AcceptApplication accepts one application and sweeps the request's
// remaining pending applications, rejecting each on the owner's behalf.
// Individual rejection failures do not abort the flow; their IDs are
// reported so the caller can retry.
type AcceptApplication struct{}

func (AcceptApplication) Name() string { return "accept_application" }

func (AcceptApplication) Steps() []*core.Step {
	return []*core.Step{
		core.NewStep("validate_input", validateAcceptInput),
		core.NewStep("accept_booking", acceptBooking),
		core.NewStep("list_pending_applications", listPendingApplications),
		core.NewStep("reject_remaining", rejectRemaining),
		core.NewStep("organize_output", organizeAcceptOutput),
	}
}

func validateAcceptInput(ctx *core.FlowContext) error {
	if core.IsMissing(ctx.ExtractString(BookingID)) {
		return core.MissingParamErr(BookingID)
	}
	if core.IsMissing(ctx.ExtractString(ActorID)) {
		return core.MissingParamErr(ActorID)
	}
	return nil
}

func acceptBooking(ctx *core.FlowContext) error {
	bookingID := ctx.ExtractString(BookingID)
	actorID := ctx.ExtractString(ActorID)

	resp, err := ctx.Client.Bookings.Accept(bookingID, map[string]string{"actor_id": actorID})
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("accept failed: %s", client.GetErrorMessage(resp))
	}

	booking, err := ctx.Client.Bookings.DecodeBooking(resp)
	if err != nil {
		return err
	}

	ctx.Process[acceptedBooking] = booking
	return nil
}

func listPendingApplications(ctx *core.FlowContext) error {
	booking := ctx.Process[acceptedBooking].(*model.Booking)

	resp, err := ctx.Client.Bookings.Search(booking.RequestID, "", "", string(model.BookingPending), maxApplicationsPerScan, 0)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pending application search failed: %s", client.GetErrorMessage(resp))
	}

	pending, _, err := ctx.Client.Bookings.DecodeBookings(resp)
	if err != nil {
		return err
	}

	ctx.Process[pendingApplications] = pending
	return nil
}

func rejectRemaining(ctx *core.FlowContext) error {
	accepted := ctx.Process[acceptedBooking].(*model.Booking)
	pending := ctx.Process[pendingApplications].([]*model.Booking)
	actorID := ctx.ExtractString(ActorID)

	var mu sync.Mutex
	var wg sync.WaitGroup
	rejected := []string{}
	failed := []string{}

	for _, application := range pending {
		if application.ID == accepted.ID {
			continue
		}

		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			core.RunWithRateLimitedConcurrency(func() {
				resp, err := ctx.Client.Bookings.Reject(id, map[string]string{
					"actor_id": actorID,
					"reason":   rejectionReason,
				})

				mu.Lock()
				defer mu.Unlock()
				if err != nil || resp.StatusCode != http.StatusOK {
					ctx.Log.Warn("Failed to reject application", "booking_id", id, "error", err)
					failed = append(failed, id)
					return
				}
				rejected = append(rejected, id)
			})
		}(application.ID)
	}

	wg.Wait()

	ctx.Process["rejected_ids"] = rejected
	ctx.Process["failed_ids"] = failed
	return nil
}

func organizeAcceptOutput(ctx *core.FlowContext) error {
	ctx.Output[acceptedBooking] = ctx.Process[acceptedBooking]
	ctx.Output["rejected_ids"] = ctx.Process["rejected_ids"]
	ctx.Output["failed_ids"] = ctx.Process["failed_ids"]
	return nil
}
