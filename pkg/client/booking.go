package client

import (
	"encoding/json"
	"fmt"
	"net/url"

	"petsitter/pkg/model"
)

type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(baseURL string) *BookingClient {
	return &BookingClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *BookingClient) Apply(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/bookings", body)
}

func (c *BookingClient) Accept(id string, body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/bookings/id/"+url.PathEscape(id)+"/accept", body)
}

func (c *BookingClient) Reject(id string, body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/bookings/id/"+url.PathEscape(id)+"/reject", body)
}

func (c *BookingClient) Cancel(id string, body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/bookings/id/"+url.PathEscape(id)+"/cancel", body)
}

func (c *BookingClient) Start(id string, body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/bookings/id/"+url.PathEscape(id)+"/start", body)
}

func (c *BookingClient) Complete(id string, body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/bookings/id/"+url.PathEscape(id)+"/complete", body)
}

func (c *BookingClient) GetByID(id string) (*Response, error) {
	return c.httpClient.GET("/api/v1/bookings/id/" + url.PathEscape(id))
}

func (c *BookingClient) GetAll(limit int, offset int64) (*Response, error) {
	path := fmt.Sprintf("/api/v1/bookings?limit=%d&offset=%d", limit, offset)
	return c.httpClient.GET(path)
}

func (c *BookingClient) Search(requestID, sitterID, ownerID, status string, limit int, offset int64) (*Response, error) {
	q := url.Values{}
	if requestID != "" {
		q.Set("request_id", requestID)
	}
	if sitterID != "" {
		q.Set("sitter_id", sitterID)
	}
	if ownerID != "" {
		q.Set("owner_id", ownerID)
	}
	if status != "" {
		q.Set("status", status)
	}
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))

	return c.httpClient.GET("/api/v1/bookings/search?" + q.Encode())
}

func (c *BookingClient) SitterAvailability(sitterID, start, end string) (*Response, error) {
	q := url.Values{}
	q.Set("start", start)
	q.Set("end", end)
	path := "/api/v1/sitters/" + url.PathEscape(sitterID) + "/availability?" + q.Encode()
	return c.httpClient.GET(path)
}

func (c *BookingClient) SitterAvailableDates(sitterID, start, end string) (*Response, error) {
	q := url.Values{}
	q.Set("start", start)
	q.Set("end", end)
	path := "/api/v1/sitters/" + url.PathEscape(sitterID) + "/available-dates?" + q.Encode()
	return c.httpClient.GET(path)
}

func (c *BookingClient) SitterBookingCounts(sitterID, start, end string) (*Response, error) {
	q := url.Values{}
	q.Set("start", start)
	q.Set("end", end)
	path := "/api/v1/sitters/" + url.PathEscape(sitterID) + "/booking-counts?" + q.Encode()
	return c.httpClient.GET(path)
}

func (c *BookingClient) DecodeBooking(resp *Response) (*model.Booking, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode booking wrapper:\n%+v\n%s", resp.ToString(), err)
	}

	var booking model.Booking
	if err := json.Unmarshal(wrapper.Data, &booking); err != nil {
		return nil, fmt.Errorf("could not decode booking json:\n%+v\n%s", resp.ToString(), err)
	}

	return &booking, nil
}

func (c *BookingClient) DecodeBookings(resp *Response) ([]*model.Booking, *Metadata, error) {
	var wrapper struct {
		Data       json.RawMessage `json:"data"`
		TotalCount int64           `json:"total_count"`
		Limit      int             `json:"limit"`
		Offset     int64           `json:"offset"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, nil, fmt.Errorf("could not decode paginated resp:\n%+v\n%s", resp.ToString(), err)
	}

	var bookings []*model.Booking
	if err := json.Unmarshal(wrapper.Data, &bookings); err != nil {
		return nil, nil, fmt.Errorf("could not decode booking list:\n%+v\n%s", resp.ToString(), err)
	}

	metadata := &Metadata{
		TotalCount: wrapper.TotalCount,
		Limit:      wrapper.Limit,
		Offset:     wrapper.Offset,
	}

	return bookings, metadata, nil
}
