package service

import (
	"strings"
	"time"

	"stockwise/internal/model"
	"stockwise/internal/repository"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// saleQueryInput is the raw filter shared by the sales list and the sales report.
type saleQueryInput struct {
	Search        string
	DateFrom      string
	DateTo        string
	PaymentMethod string
	MinAmount     string
	MaxAmount     string
}

// buildSaleQuery parses dates as calendar days in loc. DateTo is inclusive,
// so the upper bound becomes the start of the following day.
func buildSaleQuery(in saleQueryInput, loc *time.Location) (repository.SaleQuery, error) {
	verr := newValidation("Invalid filter")
	q := repository.SaleQuery{Search: strings.TrimSpace(in.Search)}

	if in.DateFrom != "" {
		d, err := time.ParseInLocation(dateLayout, in.DateFrom, loc)
		if err != nil {
			verr.add("date_from", "Use the format YYYY-MM-DD.")
		} else {
			from := d.UTC()
			q.From = &from
		}
	}
	if in.DateTo != "" {
		d, err := time.ParseInLocation(dateLayout, in.DateTo, loc)
		if err != nil {
			verr.add("date_to", "Use the format YYYY-MM-DD.")
		} else {
			to := d.AddDate(0, 0, 1).UTC()
			q.To = &to
		}
	}
	if in.PaymentMethod != "" {
		if !model.IsValidPaymentMethod(in.PaymentMethod) {
			verr.add("payment_method", "Unknown payment method.")
		} else {
			q.PaymentMethod = in.PaymentMethod
		}
	}
	if in.MinAmount != "" {
		v, err := decimal.NewFromString(in.MinAmount)
		if err != nil {
			verr.add("min_amount", "Must be a number.")
		} else {
			q.MinAmount = &v
		}
	}
	if in.MaxAmount != "" {
		v, err := decimal.NewFromString(in.MaxAmount)
		if err != nil {
			verr.add("max_amount", "Must be a number.")
		} else {
			q.MaxAmount = &v
		}
	}
	return q, verr.orNil()
}

// dayBounds returns the start of t's calendar day in loc and the start of the next one.
func dayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start.UTC(), start.AddDate(0, 0, 1).UTC()
}
