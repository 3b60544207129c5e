// Package fulfillment formats the service date and time of an order and the
// service summary shown at checkout.
package fulfillment

import (
	"fmt"
	"time"

	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/catalog"
)

const (
	// DateLayout is the wire format of a selected service date.
	DateLayout = "20060102"
	// ServiceDateDisplayLayout renders a service date for customers.
	ServiceDateDisplayLayout = "Monday January 02, 2006"
	timeDisplayLayout        = "3:04PM"
)

// ServiceDateTime combines a yyyyMMdd date with minutes since midnight in loc.
func ServiceDateTime(selectedDate string, selectedTime int, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	day, err := time.ParseInLocation(DateLayout, selectedDate, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse service date %q: %w", selectedDate, err)
	}
	if selectedTime < 0 || selectedTime >= 24*60 {
		return time.Time{}, fmt.Errorf("service time %d out of range", selectedTime)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), selectedTime/60, selectedTime%60, 0, 0, loc), nil
}

// MinutesToPrintTime renders minutes since midnight as "11:30AM".
func MinutesToPrintTime(minutes int) string {
	t := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(minutes) * time.Minute)
	return t.Format(timeDisplayLayout)
}

// ServiceTimeDisplay renders the service time, or a window when the
// fulfillment has a minimum duration.
func ServiceTimeDisplay(minDuration, selectedTime int) string {
	if minDuration > 0 {
		return MinutesToPrintTime(selectedTime) + " to " + MinutesToPrintTime(selectedTime+minDuration)
	}
	return MinutesToPrintTime(selectedTime)
}

// CustomerInfo identifies who the order is for.
type CustomerInfo struct {
	GivenName  string `json:"givenName"`
	FamilyName string `json:"familyName"`
	MobileNum  string `json:"mobileNum"`
	Email      string `json:"email"`
}

// DineInInfo is present for dine in orders.
type DineInInfo struct {
	PartySize int `json:"partySize"`
}

// DeliveryInfo is present for delivery orders.
type DeliveryInfo struct {
	Address  string `json:"address"`
	Address2 string `json:"address2"`
	Zipcode  string `json:"zipcode"`
}

// Selection is the customer's chosen fulfillment.
type Selection struct {
	SelectedService string        `json:"selectedService"`
	SelectedDate    string        `json:"selectedDate"`
	SelectedTime    int           `json:"selectedTime"`
	DineInInfo      *DineInInfo   `json:"dineInInfo,omitempty"`
	DeliveryInfo    *DeliveryInfo `json:"deliveryInfo,omitempty"`
}

// Row is one labeled line of the service summary.
type Row struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ServiceInfo builds the service summary rows. Party size, delivery address,
// and special instructions appear only when present.
func ServiceInfo(customer CustomerInfo, cfg catalog.Fulfillment, sel Selection, specialInstructions string, loc *time.Location) ([]Row, error) {
	when, err := ServiceDateTime(sel.SelectedDate, sel.SelectedTime, loc)
	if err != nil {
		return nil, err
	}
	rows := []Row{
		{Label: "Name", Value: customer.GivenName + " " + customer.FamilyName},
		{Label: "Mobile Number", Value: customer.MobileNum},
		{Label: "E-Mail", Value: customer.Email},
		{Label: "Service", Value: fmt.Sprintf("%s on %s at %s", cfg.DisplayName, when.Format(ServiceDateDisplayLayout), ServiceTimeDisplay(cfg.MinDuration, sel.SelectedTime))},
	}
	if sel.DineInInfo != nil {
		rows = append(rows, Row{Label: "Party Size", Value: fmt.Sprint(sel.DineInInfo.PartySize)})
	}
	if d := sel.DeliveryInfo; d != nil {
		address := d.Address
		if d.Address2 != "" {
			address += " " + d.Address2
		}
		rows = append(rows, Row{Label: "Delivery Address", Value: address + ", " + d.Zipcode})
	}
	if specialInstructions != "" {
		rows = append(rows, Row{Label: "Special Instructions", Value: specialInstructions})
	}
	return rows, nil
}
