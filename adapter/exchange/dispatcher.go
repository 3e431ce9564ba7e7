package exchange

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/nilswx/ccxt/entity"
	"github.com/sirupsen/logrus"
)

// dispatcher sends one signed request per call and decodes the body. It
// never retries.
type dispatcher struct {
	exchangeId string
	signer     Signer
	client     *resty.Client
	logger     *logrus.Entry
}

func newDispatcher(exchangeId string, signer Signer, timeout time.Duration, logger *logrus.Entry) *dispatcher {
	client := resty.New().
		SetTimeout(timeout).
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)

	return &dispatcher{
		exchangeId: exchangeId,
		signer:     signer,
		client:     client,
		logger:     logger,
	}
}

func (d *dispatcher) call(ctx context.Context, endpoint entity.Endpoint, params map[string]any, out any) error {
	req, err := d.signer.Sign(endpoint.Path, endpoint.Api, endpoint.Method, params)
	if err != nil {
		return err
	}

	r := d.client.R().
		SetContext(ctx).
		SetHeaders(req.Headers)
	if req.Body != "" {
		r.SetBody(req.Body)
	}

	start := time.Now()

	resp, err := r.Execute(req.Method, req.Url)
	if err != nil {
		e := newError(ErrNetwork, d.exchangeId, "%s %s %v", req.Method, req.Url, err)
		e.Cause = err
		return e
	}

	d.logger.WithFields(logrus.Fields{
		"method":  req.Method,
		"url":     req.Url,
		"status":  resp.StatusCode(),
		"elapsed": time.Since(start),
	}).Debug("request done")

	if err := d.signer.HandleErrors(resp.StatusCode(), resp.Body()); err != nil {
		return err
	}

	if err := d.handleHttpStatus(req, resp); err != nil {
		return err
	}

	if out == nil || len(bytes.TrimSpace(resp.Body())) == 0 {
		return nil
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		e := newError(ErrBadResponse, d.exchangeId, "%s %s could not decode body: %v [raw_body: %s]", req.Method, req.Url, err, string(resp.Body()))
		e.Cause = err
		return e
	}

	return nil
}

// handleHttpStatus is the fallback for statuses the signer left alone.
func (d *dispatcher) handleHttpStatus(req Request, resp *resty.Response) error {
	code := resp.StatusCode()
	if code < http.StatusBadRequest {
		return nil
	}

	var kind error
	switch code {
	case http.StatusUnauthorized, http.StatusNetworkAuthenticationRequired:
		kind = ErrAuthentication
	case http.StatusTooManyRequests, http.StatusTeapot:
		kind = ErrRateLimited
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		kind = ErrNetwork
	case http.StatusUnprocessableEntity:
		kind = ErrExchange
	default:
		kind = ErrExchangeNotAvailable
	}

	return newError(kind, d.exchangeId, "%s %s %d %s %s", req.Method, req.Url, code, http.StatusText(code), string(resp.Body()))
}
