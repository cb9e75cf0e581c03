package repo

import (
	"time"

	"github.com/google/uuid"
)

// NewID returns a fresh document id.
func NewID() string { return uuid.NewString() }

type Shift string

const (
	ShiftMorning   Shift = "morning"
	ShiftAfternoon Shift = "afternoon"
)

func (s Shift) Valid() bool { return s == ShiftMorning || s == ShiftAfternoon }

// Order sorts morning before afternoon.
func (s Shift) Order() int {
	if s == ShiftAfternoon {
		return 1
	}
	return 0
}

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCanceled  AppointmentStatus = "canceled"
	StatusCompleted AppointmentStatus = "completed"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCanceled, StatusCompleted:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed.
func (s AppointmentStatus) Terminal() bool {
	return s == StatusCanceled || s == StatusCompleted
}

type RecipientType string

const (
	RecipientPatient RecipientType = "patient"
	RecipientDoctor  RecipientType = "doctor"
)

type User struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email" json:"email"`
	Password  string    `bson:"password" json:"-"`
	Phone     string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Image     string    `bson:"image,omitempty" json:"image,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

type Role struct {
	ID   string `bson:"_id" json:"id"`
	Name string `bson:"name" json:"name"`
}

type UserRole struct {
	ID     string `bson:"_id" json:"id"`
	UserID string `bson:"user_id" json:"user_id"`
	RoleID string `bson:"role_id" json:"role_id"`
}

type Doctor struct {
	ID               string    `bson:"_id" json:"id"`
	UserID           string    `bson:"user_id" json:"user_id"`
	SpecializationID string    `bson:"specialization_id" json:"specialization_id"`
	Description      string    `bson:"description,omitempty" json:"description,omitempty"`
	Price            int64     `bson:"price" json:"price"`
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time `bson:"updated_at" json:"updated_at"`
}

type Patient struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

type Specialization struct {
	ID          string `bson:"_id" json:"id"`
	Name        string `bson:"name" json:"name"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	Image       string `bson:"image,omitempty" json:"image,omitempty"`
}

type Schedule struct {
	ID        string    `bson:"_id" json:"id"`
	DoctorID  string    `bson:"doctor_id" json:"doctor_id"`
	WorkDate  time.Time `bson:"work_date" json:"work_date"`
	WorkShift Shift     `bson:"work_shift" json:"work_shift"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

type Appointment struct {
	ID        string            `bson:"_id" json:"id"`
	PatientID string            `bson:"patient_id" json:"patient_id"`
	DoctorID  string            `bson:"doctor_id" json:"doctor_id"`
	WorkDate  time.Time         `bson:"work_date" json:"work_date"`
	WorkShift Shift             `bson:"work_shift" json:"work_shift"`
	Status    AppointmentStatus `bson:"status" json:"status"`
	// Active mirrors status != canceled; the partial unique index filters on it.
	Active    bool      `bson:"active" json:"-"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

func (a *Appointment) SyncActive() { a.Active = a.Status != StatusCanceled }

type AppointmentHistory struct {
	ID            string            `bson:"_id" json:"id"`
	AppointmentID string            `bson:"appointment_id" json:"appointment_id"`
	PatientID     string            `bson:"patient_id" json:"patient_id"`
	DoctorID      string            `bson:"doctor_id" json:"doctor_id"`
	Status        AppointmentStatus `bson:"status" json:"status"`
	Date          time.Time         `bson:"date" json:"date"`
}

type Notification struct {
	ID            string        `bson:"_id" json:"id"`
	UserID        string        `bson:"user_id" json:"user_id"`
	PatientID     string        `bson:"patient_id,omitempty" json:"patient_id,omitempty"`
	DoctorID      string        `bson:"doctor_id,omitempty" json:"doctor_id,omitempty"`
	AppointmentID string        `bson:"appointment_id,omitempty" json:"appointment_id,omitempty"`
	Content       string        `bson:"content" json:"content"`
	RecipientType RecipientType `bson:"recipient_type" json:"recipient_type"`
	IsRead        bool          `bson:"is_read" json:"is_read"`
	NewDate       *time.Time    `bson:"new_date,omitempty" json:"new_date,omitempty"`
	NewWorkShift  Shift         `bson:"new_work_shift,omitempty" json:"new_work_shift,omitempty"`
	CreatedAt     time.Time     `bson:"created_at" json:"created_at"`
}

type Payment struct {
	ID            string    `bson:"_id" json:"id"`
	OrderID       string    `bson:"order_id" json:"order_id"`
	RequestID     string    `bson:"request_id" json:"request_id"`
	AppointmentID string    `bson:"appointment_id" json:"appointment_id"`
	Amount        int64     `bson:"amount" json:"amount"`
	Status        bool      `bson:"status" json:"status"`
	ResultCode    int       `bson:"result_code" json:"result_code"`
	Message       string    `bson:"message,omitempty" json:"message,omitempty"`
	TransID       int64     `bson:"trans_id,omitempty" json:"trans_id,omitempty"`
	PayURL        string    `bson:"pay_url,omitempty" json:"pay_url,omitempty"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updated_at"`
}
