package services

import (
	"errors"

	"campus-news-api/models"
	"campus-news-api/repositories"

	"gorm.io/gorm"
)

type RoleService interface {
	// EnsureDefaultRoles creates the built-in structured roles when they do
	// not exist yet. Existing rows are left alone so local permission edits
	// survive restarts.
	EnsureDefaultRoles() error
	GetRoles() ([]models.Role, error)
}

type roleService struct {
	roleRepo repositories.RoleRepository
}

func NewRoleService(roleRepo repositories.RoleRepository) RoleService {
	return &roleService{roleRepo: roleRepo}
}

var defaultRoles = []models.Role{
	{
		Name:        "admin_global",
		Description: "Full control, including invalidation and direct publish",
		Permissions: `{"can_manage_all": true, "can_moderate": true, "can_create_content": true, "can_view_content": true}`,
	},
	{
		Name:        "moderator",
		Description: "Approves and rejects submitted articles",
		Permissions: `{"can_moderate": true, "can_create_content": true, "can_view_content": true}`,
	},
	{
		Name:        "teacher",
		Description: "Publishes announcements without passing moderation",
		Permissions: `{"can_create_content": true, "can_publish_without_moderation": true, "can_view_content": true}`,
	},
	{
		Name:        "publisher",
		Description: "Creates content subject to moderation",
		Permissions: `{"can_create_content": true, "can_view_content": true}`,
	},
	{
		Name:        "student",
		Description: "Reads published articles",
		Permissions: `{"can_view_content": true}`,
	},
}

func (s *roleService) EnsureDefaultRoles() error {
	for i := range defaultRoles {
		_, err := s.roleRepo.GetByName(defaultRoles[i].Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		role := defaultRoles[i]
		role.IsActive = true
		if err := s.roleRepo.Create(&role); err != nil {
			return err
		}
	}
	return nil
}

func (s *roleService) GetRoles() ([]models.Role, error) {
	return s.roleRepo.GetAll()
}
