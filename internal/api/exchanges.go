package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/studx/homefeed/internal/model"
)

// dateLayout is the DD-MM-YYYY format the backend expects.
const dateLayout = "02-01-2006"

// ListExchanges returns the exchange collection in server order. A non-empty
// userID restricts it to offers owned by that user.
func (c *Client) ListExchanges(ctx context.Context, userID string) ([]model.ExchangeOffer, error) {
	var query url.Values
	if userID != "" {
		query = url.Values{"userId": {userID}}
	}
	data, err := c.do(ctx, http.MethodGet, ExchangesPath, query, nil, nil)
	if err != nil {
		return nil, err
	}
	var offers []model.ExchangeOffer
	if err := json.Unmarshal(data, &offers); err != nil {
		return nil, fmt.Errorf("decode exchanges: %w", err)
	}
	return offers, nil
}

// DeleteExchange deletes one offer and returns the server's message.
func (c *Client) DeleteExchange(ctx context.Context, id, token string) (string, error) {
	query := url.Values{"id": {id}, "token": {token}}
	data, err := c.do(ctx, http.MethodDelete, ExchangesPath+"/", query, nil, nil)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// EditRequest is the full replacement record sent when editing an offer.
type EditRequest struct {
	Token            string              `json:"token"`
	NativeLanguage   string              `json:"nativeLanguage"`
	TargetLanguage   string              `json:"targetLanguage"`
	AcademicLevel    model.AcademicLevel `json:"academicLevel"`
	QuantityStudents int                 `json:"quantityStudents"`
	BeginDate        string              `json:"beginDate"`
	EndDate          string              `json:"endDate"`
}

// FormatDate renders t as DD-MM-YYYY. The zero time renders as "".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// EditExchange replaces one offer and returns the server's message.
func (c *Client) EditExchange(ctx context.Context, id string, req EditRequest) (string, error) {
	query := url.Values{"id": {id}}
	data, err := c.do(ctx, http.MethodPut, ExchangesPath+"/", query, req, nil)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
