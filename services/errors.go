package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"jobsbreeze-backend/calculator"
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrClientNotFound      = errors.New("client not found")
	ErrItemNotFound        = errors.New("catalog item not found")
	ErrEstimateLocked      = errors.New("estimate is no longer a draft")
	ErrEstimateNotApproved = errors.New("only approved estimates can be invoiced")
	ErrEstimateIDExhausted = errors.New("could not allocate a unique estimate id")
	ErrInvoiceNumber       = errors.New("could not allocate a unique invoice number")
)

// ValidationError carries field level messages for the API boundary.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = message
}

func (e *ValidationError) addField(prefix string, err error) {
	var fe *calculator.FieldError
	if errors.As(err, &fe) {
		e.add(prefix+fe.Field, fe.Message)
		return
	}
	e.add(strings.TrimSuffix(prefix, "."), err.Error())
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func linePrefix(i int) string {
	return fmt.Sprintf("lineItems[%d].", i)
}
