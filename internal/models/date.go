package models

import (
	"bytes"
	"fmt"
	"time"
)

// DateLayout is the format tour start dates are stored in.
const DateLayout = "2006-01-02"

// Date is a request date that accepts both a catalog date (2006-01-02, read
// as UTC midnight) and a full RFC3339 timestamp.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("date must be a string, got %s", data)
	}
	s := string(data[1 : len(data)-1])
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("date %q must be YYYY-MM-DD or RFC3339", s)
	}
	d.Time = t
	return nil
}
