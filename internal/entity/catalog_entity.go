package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type UserRole string

const (
	UserRoleStudent    UserRole = "student"
	UserRoleInstructor UserRole = "instructor"
	UserRoleAdmin      UserRole = "admin"
)

// Course is the slice of the catalog the payment core reads.
type Course struct {
	Id           uuid.UUID
	Title        string
	Price        decimal.Decimal
	Currency     string
	InstructorId uuid.UUID
}

type User struct {
	Id       uuid.UUID
	Email    string
	FullName string
	Role     UserRole
	IsActive bool
}

type CourseAccess struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	CourseId  uuid.UUID
	PaymentId uuid.UUID
	GrantedAt time.Time
}
