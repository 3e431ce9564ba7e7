package exchange

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/nilswx/ccxt/common"
	"github.com/nilswx/ccxt/entity"
	"github.com/valyala/fastjson"
)

// Sign builds the outbound request for an endpoint. Path placeholders are
// filled from params and removed from the remaining parameters.
func (c *cryptophyl) Sign(path, api, method string, params map[string]any) (Request, error) {
	url := c.baseUrl + "/" + common.ImplodeParams(path, params)
	query := common.Omit(params, common.ExtractParams(path)...)

	req := Request{
		Method:  method,
		Headers: map[string]string{},
	}

	if api != entity.ApiPrivate {
		if len(query) > 0 {
			url += "?" + common.UrlEncode(query)
		}
		req.Url = url
		return req, nil
	}

	if err := c.checkRequiredCredentials(); err != nil {
		return Request{}, err
	}

	req.Headers["X-API-KEY"] = c.apiKey
	req.Headers["Content-Type"] = "application/json"

	switch method {
	case http.MethodGet, http.MethodDelete:
		if len(query) > 0 {
			url += "?" + common.UrlEncode(query)
		}
	default:
		// map keys are encoded in ascending order
		body, err := json.Marshal(query)
		if err != nil {
			return Request{}, newError(ErrExchange, c.id, "could not encode request body: %v", err)
		}
		req.Body = string(body)
	}

	req.Url = url

	return req, nil
}

func (c *cryptophyl) checkRequiredCredentials() error {
	if c.apiKey == "" {
		return newError(ErrMissingCredentials, c.id, "requires \"apiKey\" credential")
	}
	return nil
}

// HandleErrors classifies a body-level message. Status 200 always passes and
// statuses from 400 up are left to the dispatcher.
func (c *cryptophyl) HandleErrors(statusCode int, body []byte) error {
	if len(body) == 0 || statusCode == http.StatusOK || statusCode >= http.StatusBadRequest {
		return nil
	}

	var p fastjson.Parser

	v, err := p.ParseBytes(body)
	if err != nil {
		return nil
	}

	msg := v.Get("message")
	if msg == nil || msg.Type() == fastjson.TypeNull {
		return nil
	}

	var message string
	if msg.Type() == fastjson.TypeString {
		message = string(msg.GetStringBytes())
	} else {
		message = msg.String()
	}

	c.logger.WithField("message", message).Debug("exchange error message")

	if kind, ok := cryptophylExceptions[message]; ok {
		return newError(kind, c.id, "%s", message)
	}

	return newError(ErrExchange, c.id, "%s", message)
}
