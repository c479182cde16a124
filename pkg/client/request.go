package client

import (
	"encoding/json"
	"fmt"
	"net/url"

	"petsitter/pkg/model"
)

type RequestClient struct {
	httpClient *HttpClient
}

func NewRequestClient(baseURL string) *RequestClient {
	return &RequestClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *RequestClient) Create(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/requests", body)
}

func (c *RequestClient) GetAll(limit int, offset int64) (*Response, error) {
	path := fmt.Sprintf("/api/v1/requests?limit=%d&offset=%d", limit, offset)
	return c.httpClient.GET(path)
}

func (c *RequestClient) Search(ownerID, status, careType string, limit int, offset int64) (*Response, error) {
	q := url.Values{}
	if ownerID != "" {
		q.Set("owner_id", ownerID)
	}
	if status != "" {
		q.Set("status", status)
	}
	if careType != "" {
		q.Set("care_type", careType)
	}
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))

	return c.httpClient.GET("/api/v1/requests/search?" + q.Encode())
}

func (c *RequestClient) GetByID(id string) (*Response, error) {
	return c.httpClient.GET("/api/v1/requests/id/" + url.PathEscape(id))
}

func (c *RequestClient) Update(id string, body any) (*Response, error) {
	return c.httpClient.PATCH("/api/v1/requests/id/"+url.PathEscape(id), body)
}

func (c *RequestClient) Delete(id string) (*Response, error) {
	return c.httpClient.DELETE("/api/v1/requests/id/" + url.PathEscape(id))
}

func (c *RequestClient) DecodeRequest(resp *Response) (*model.CareRequest, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode request wrapper:\n%+v\n%s", resp.ToString(), err)
	}

	var request model.CareRequest
	if err := json.Unmarshal(wrapper.Data, &request); err != nil {
		return nil, fmt.Errorf("could not decode request json:\n%+v\n%s", resp.ToString(), err)
	}

	return &request, nil
}

func (c *RequestClient) DecodeRequests(resp *Response) ([]*model.CareRequest, *Metadata, error) {
	var wrapper struct {
		Data       json.RawMessage `json:"data"`
		TotalCount int64           `json:"total_count"`
		Limit      int             `json:"limit"`
		Offset     int64           `json:"offset"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, nil, fmt.Errorf("could not decode paginated resp:\n%+v\n%s", resp.ToString(), err)
	}

	var requests []*model.CareRequest
	if err := json.Unmarshal(wrapper.Data, &requests); err != nil {
		return nil, nil, fmt.Errorf("could not decode request list:\n%+v\n%s", resp.ToString(), err)
	}

	metadata := &Metadata{
		TotalCount: wrapper.TotalCount,
		Limit:      wrapper.Limit,
		Offset:     wrapper.Offset,
	}

	return requests, metadata, nil
}
