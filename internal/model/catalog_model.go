package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Course and User are owned by the catalog/auth side; the payment core only reads them.
type Course struct {
	Id           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Title        string          `gorm:"type:varchar(255);not null"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency     string          `gorm:"type:varchar(10);not null"`
	InstructorId uuid.UUID       `gorm:"type:uuid;not null;index"`
	CreatedAt    time.Time       `gorm:"autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime"`
}

func (Course) TableName() string {
	return "courses"
}

type User struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	FullName  string    `gorm:"type:varchar(255);not null"`
	Role      string    `gorm:"type:varchar(50);not null;default:'student'"`
	IsActive  bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

type CourseAccess struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_course_access_user_course"`
	CourseId  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_course_access_user_course"`
	PaymentId uuid.UUID `gorm:"type:uuid;not null"`
	GrantedAt time.Time `gorm:"not null"`
}

func (CourseAccess) TableName() string {
	return "course_accesses"
}

func (c *CourseAccess) BeforeCreate(tx *gorm.DB) error {
	if c.Id == uuid.Nil {
		c.Id = uuid.New()
	}
	return nil
}
