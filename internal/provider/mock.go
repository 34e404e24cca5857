package provider

import "context"

// MockClient is a scripted Client for tests. Each call consumes the next
// response; when Responses runs out the last entry repeats.
type MockClient struct {
	NameValue string
	Responses []*BatchResponse
	Errors    []error
	Requests  []BatchRequest
}

func (m *MockClient) Name() string {
	if m.NameValue == "" {
		return "mock"
	}
	return m.NameValue
}

func (m *MockClient) TranslateBatch(_ context.Context, req BatchRequest) (*BatchResponse, error) {
	m.Requests = append(m.Requests, req)
	i := len(m.Requests) - 1
	var err error
	if len(m.Errors) > 0 {
		if i < len(m.Errors) {
			err = m.Errors[i]
		} else {
			err = m.Errors[len(m.Errors)-1]
		}
	}
	if err != nil {
		return nil, err
	}
	if len(m.Responses) == 0 {
		return &BatchResponse{}, nil
	}
	if i < len(m.Responses) {
		return m.Responses[i], nil
	}
	return m.Responses[len(m.Responses)-1], nil
}

// Echo returns a response translating every item of req by prefixing its
// text, a convenient default for pipeline-level tests.
func Echo(req BatchRequest, prefix string) *BatchResponse {
	items := make([]ResponseItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, ResponseItem{ID: it.ID, Field: it.Field, Text: prefix + it.Text})
	}
	return &BatchResponse{
		Items: items,
		Usage: Usage{PromptTokens: 10 * len(req.Items), OutputTokens: 12 * len(req.Items), TotalTokens: 22 * len(req.Items)},
	}
}
