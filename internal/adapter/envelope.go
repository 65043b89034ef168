package adapter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/julianstephens/resdesk/internal/constants"
)

// result is the closed outcome of one API response: okResult or errResult
type result interface {
	isResult()
}

type okResult struct {
	data     json.RawMessage
	total    int
	hasTotal bool
}

type errResult struct {
	message string
}

func (okResult) isResult()  {}
func (errResult) isResult() {}

type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Total   *int            `json:"total"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

// parseEnvelope classifies a response body. Anything that is not a 2xx
// success=true envelope becomes an errResult, with the server message
// when there is one and fallback otherwise.
func parseEnvelope(status int, body []byte, fallback string) result {
	var env envelope
	decodeErr := json.Unmarshal(body, &env)

	message := fallback
	if decodeErr == nil {
		if env.Error != "" {
			message = env.Error
		} else if env.Message != "" {
			message = env.Message
		}
	}

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return errResult{message: message}
	}
	if decodeErr != nil || env.Success == nil || !*env.Success {
		return errResult{message: message}
	}

	ok := okResult{data: env.Data}
	if env.Total != nil {
		ok.total, ok.hasTotal = *env.Total, true
	}
	return ok
}

// parseBare classifies a response from an endpoint that does not wrap its
// body in an envelope. Any 2xx is a success carrying the whole body.
func parseBare(status int, body []byte, fallback string) result {
	if status >= http.StatusOK && status < http.StatusMultipleChoices {
		return okResult{data: json.RawMessage(body)}
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil {
		if env.Message != "" {
			return errResult{message: env.Message}
		}
		if env.Error != "" {
			return errResult{message: env.Error}
		}
	}
	return errResult{message: fallback}
}

// normalizeRecord decodes one wire record and moves "_id" to "id"
func normalizeRecord(raw json.RawMessage) (Record, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var rec Record
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("record is not an object: %w", err)
	}

	if id, ok := rec[constants.ServerIdentityField]; ok {
		if n, isNum := id.(json.Number); isNum {
			id = n.String()
		}
		rec[constants.IdentityField] = id
		delete(rec, constants.ServerIdentityField)
	}
	return rec, nil
}

func normalizeRecords(raw json.RawMessage) ([]Record, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []Record{}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("list data is not an array: %w", err)
	}

	records := make([]Record, 0, len(items))
	for _, item := range items {
		rec, err := normalizeRecord(item)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			records = append(records, rec)
		}
	}
	return records, nil
}

// ParseRecord normalizes a single record received outside of an envelope,
// e.g. a real-time event payload
func ParseRecord(raw []byte) (Record, error) {
	rec, err := normalizeRecord(raw)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return Record{}, nil
	}
	return rec, nil
}
