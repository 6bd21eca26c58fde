package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

// Terminal reports whether the appointment can no longer occur and must not
// generate reminders.
func (s AppointmentStatus) Terminal() bool {
	return s == AppointmentStatusCancelled || s == AppointmentStatusCompleted
}

// Appointment keeps the booking's calendar fields as the booking UI records
// them: a date string plus an HH:MM slot, combined lazily into a concrete
// time only when a scheduler needs one.
type Appointment struct {
	Base
	DoctorID        uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	PatientID       *uuid.UUID        `db:"patient_id" json:"patient_id,omitempty"`
	PatientName     string            `db:"patient_name" json:"patient_name"`
	AppointmentDate string            `db:"appointment_date" json:"appointment_date"`
	TimeSlot        string            `db:"time_slot" json:"time_slot"`
	Status          AppointmentStatus `db:"status" json:"status"`
	Department      string            `db:"department" json:"department"`
	Location        string            `db:"location" json:"location"`
}

// RecipientKey is the identity reminders are addressed to. Falls back to the
// patient name when no patient record is linked; ambiguous for duplicate
// names, kept for compatibility with unlinked walk-in bookings.
func (a *Appointment) RecipientKey() string {
	if a.PatientID != nil {
		return a.PatientID.String()
	}
	return a.PatientName
}

// StartTime combines AppointmentDate and TimeSlot into a wall-clock time in
// the given location.
func (a *Appointment) StartTime(loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", a.AppointmentDate, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse appointment date %q: %w", a.AppointmentDate, err)
	}

	parts := strings.SplitN(a.TimeSlot, ":", 2)
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("invalid time slot %q", a.TimeSlot)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time slot %q: %w", a.TimeSlot, err)
	}
	minute, err := strconv.Atoi(strings.Fields(parts[1])[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time slot %q: %w", a.TimeSlot, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("time slot %q out of range", a.TimeSlot)
	}

	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc), nil
}

type CreateAppointmentRequest struct {
	DoctorID        uuid.UUID  `json:"doctor_id" binding:"required"`
	PatientID       *uuid.UUID `json:"patient_id"`
	PatientName     string     `json:"patient_name" binding:"required"`
	AppointmentDate string     `json:"appointment_date" binding:"required"`
	TimeSlot        string     `json:"time_slot" binding:"required"`
	Department      string     `json:"department"`
	Location        string     `json:"location"`
}

type UpdateAppointmentRequest struct {
	AppointmentDate *string            `json:"appointment_date"`
	TimeSlot        *string            `json:"time_slot"`
	Status          *AppointmentStatus `json:"status"`
	Location        *string            `json:"location"`
}
