package mapper

import (
	"course-marketplace-be/internal/entity"
	"course-marketplace-be/internal/model"
)

type CatalogMapper struct{}

func NewCatalogMapper() *CatalogMapper {
	return &CatalogMapper{}
}

func (m *CatalogMapper) CourseToEntity(c *model.Course) *entity.Course {
	if c == nil {
		return nil
	}
	return &entity.Course{
		Id:           c.Id,
		Title:        c.Title,
		Price:        c.Price,
		Currency:     c.Currency,
		InstructorId: c.InstructorId,
	}
}

func (m *CatalogMapper) UserToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	return &entity.User{
		Id:       u.Id,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     entity.UserRole(u.Role),
		IsActive: u.IsActive,
	}
}
