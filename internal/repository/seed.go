package repository

import (
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/dev-directory/internal/model"
)

// Default admin account created on first start. The password is a
// development convenience; deployments should sign up real accounts
// and can ignore it.
const (
	SeedAdminName     = "Admin"
	SeedAdminEmail    = "admin@devdirectory.local"
	SeedAdminPassword = "admin123"
)

// seedDeveloper is one row of the fixture dataset.
type seedDeveloper struct {
	name       string
	role       model.Role
	techStack  []string
	experience int
}

// The example directory the store ships with: 11 developers, 3 Backend.
var seedDevelopers = []seedDeveloper{
	{"Aman Roy", model.RoleFullStack, []string{"React", "Node.js", "MongoDB"}, 3},
	{"Priya Singh", model.RoleFrontend, []string{"React", "Tailwind"}, 2},
	{"Vikram Patel", model.RoleBackend, []string{"Node.js", "Express", "SQLite"}, 4},
	{"Sarah Chen", model.RoleFrontend, []string{"Vue.js", "Sass", "Firebase"}, 5},
	{"David Kim", model.RoleBackend, []string{"Python", "Django", "PostgreSQL"}, 3},
	{"Emma Wilson", model.RoleFullStack, []string{"Next.js", "Prisma", "AWS"}, 4},
	{"James Lee", model.RoleFrontend, []string{"React", "Redux", "Material UI"}, 2},
	{"Maria Garcia", model.RoleBackend, []string{"Java", "Spring Boot", "MySQL"}, 6},
	{"Robert Taylor", model.RoleFullStack, []string{"Angular", ".NET Core", "Azure"}, 7},
	{"Lisa Wong", model.RoleFrontend, []string{"Svelte", "Tailwind", "Vercel"}, 1},
	{"Michael Brown", model.RoleFullStack, []string{"Go", "Docker", "Kubernetes"}, 4},
}

// SeedData builds the default dataset a backend persists when it finds
// no existing store: one admin user plus the example developers, all
// owned by the admin.
//
// Creation timestamps are staggered one minute apart with the first
// record newest, so the default "newest" listing shows the fixture in
// its authored order regardless of backend.
func SeedData(hasher PasswordHasher) (model.User, []model.Developer, error) {
	now := time.Now().UTC().Truncate(time.Second)

	hash, err := hasher.Hash(SeedAdminPassword)
	if err != nil {
		return model.User{}, nil, fmt.Errorf("repository: hashing seed admin password: %w", err)
	}

	admin := model.User{
		ID:           xid.New().String(),
		Name:         SeedAdminName,
		Email:        SeedAdminEmail,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	devs := make([]model.Developer, 0, len(seedDevelopers))
	for i, s := range seedDevelopers {
		ts := now.Add(-time.Duration(i) * time.Minute)
		devs = append(devs, model.Developer{
			ID:         xid.New().String(),
			Name:       s.name,
			Role:       s.role,
			TechStack:  append([]string(nil), s.techStack...),
			Experience: s.experience,
			CreatedBy:  admin.ID,
			CreatedAt:  ts,
			UpdatedAt:  ts,
		})
	}

	return admin, devs, nil
}
